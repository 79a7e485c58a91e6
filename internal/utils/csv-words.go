package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadCsvFile loads a word list from a CSV file. The first column is the
// word; any further columns are ignored.
func ReadCsvFile(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read word file %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadCsv(f)
}

// ReadCsv parses words from r, skipping blank rows and repeated words.
func ReadCsv(r io.Reader) ([]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse word list as CSV: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	words := make([]string, 0, len(records))
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		word := strings.TrimSpace(record[0])
		if word == "" {
			log.Debug().Strs("record", record).Msg("[ReadCsv] skipping blank record")
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}

	return words, nil
}

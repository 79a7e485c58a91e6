package game

import (
	"bytes"
	"context"
	_ "embed"
	"math/rand/v2"
	"slices"

	"github.com/scythe504/spywords-backend/internal"
	"github.com/scythe504/spywords-backend/internal/utils"
)

//go:embed words.csv
var defaultWordsCsv []byte

// StaticPool serves a fixed word list loaded at startup.
type StaticPool struct {
	words []string
}

func NewStaticPool(words []string) *StaticPool {
	return &StaticPool{words: slices.Clone(words)}
}

// DefaultPool is the word list shipped with the binary.
func DefaultPool() (*StaticPool, error) {
	words, err := utils.ReadCsv(bytes.NewReader(defaultWordsCsv))
	if err != nil {
		return nil, err
	}
	return NewStaticPool(words), nil
}

// CsvPool loads a word list from a CSV file on disk.
func CsvPool(path string) (*StaticPool, error) {
	words, err := utils.ReadCsvFile(path)
	if err != nil {
		return nil, err
	}
	return NewStaticPool(words), nil
}

func (p *StaticPool) Words(ctx context.Context) ([]string, error) {
	return slices.Clone(p.words), nil
}

func (p *StaticPool) Len() int {
	return len(p.words)
}

// ValidatePool deals a throwaway board from pool so a list that cannot fill
// one is caught at startup. Fails with internal.ErrInsufficientWords.
func ValidatePool(ctx context.Context, pool WordPool) error {
	words, err := pool.Words(ctx)
	if err != nil {
		return err
	}
	_, err = internal.GenerateBoard(words, internal.TeamRed, rand.New(rand.NewPCG(0, 0)))
	return err
}

package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/spywords-backend/internal"
)

func TestDefaultPoolCoversABoard(t *testing.T) {
	pool, err := DefaultPool()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pool.Len(), internal.BoardSize)

	words, err := pool.Words(context.Background())
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, w := range words {
		assert.NotEmpty(t, w)
		assert.False(t, seen[w], "duplicate word %q", w)
		seen[w] = true
	}
}

func TestStaticPoolReturnsCopies(t *testing.T) {
	pool := NewStaticPool([]string{"apple", "bridge"})

	words, err := pool.Words(context.Background())
	require.NoError(t, err)
	words[0] = "changed"

	again, err := pool.Words(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "bridge"}, again)
}

func TestCsvPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte("apple\nbridge,extra\n\n  castle \napple\n"), 0o644))

	pool, err := CsvPool(path)
	require.NoError(t, err)

	words, err := pool.Words(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "bridge", "castle"}, words)
}

func TestCsvPoolMissingFile(t *testing.T) {
	_, err := CsvPool(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestValidatePool(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidatePool(ctx, NewStaticPool(testWords(internal.BoardSize))))

	dupes := append(testWords(internal.BoardSize-1), "word00", "word01")
	err := ValidatePool(ctx, NewStaticPool(dupes))
	assert.ErrorIs(t, err, internal.ErrInsufficientWords)

	var iwe *internal.InsufficientWordsError
	require.ErrorAs(t, err, &iwe)
	assert.Equal(t, internal.BoardSize-1, iwe.Have)
}

func TestValidatePoolPassesSourceErrors(t *testing.T) {
	pool := &MockWordPool{}
	pool.On("Words", mock.Anything).Return(nil, errors.New("db down"))
	assert.EqualError(t, ValidatePool(context.Background(), pool), "db down")
}

package internal

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrInsufficientWords = errors.New("word pool too small for a board")

type InsufficientWordsError struct {
	Have int
	Need int
}

func (e *InsufficientWordsError) Error() string {
	return fmt.Sprintf("word pool has %d distinct words, need %d", e.Have, e.Need)
}

func (e *InsufficientWordsError) Is(target error) bool {
	return target == ErrInsufficientWords
}

// =============================================================================
// BOARD GENERATION
// =============================================================================

// GenerateBoard deals a fresh 25 cell board. The starting team gets 9 cells,
// the other team 8, plus 7 neutral cells and one assassin. Words and roles
// are shuffled independently of each other.
func GenerateBoard(pool []string, starting Team, rng *rand.Rand) ([]Cell, error) {
	if !starting.Valid() {
		return nil, fmt.Errorf("invalid starting team %q", starting)
	}

	words := distinctWords(pool)
	if len(words) < BoardSize {
		return nil, &InsufficientWordsError{Have: len(words), Need: BoardSize}
	}

	// Partial Fisher-Yates: the first BoardSize entries end up a uniform sample.
	for i := 0; i < BoardSize; i++ {
		j := i + rng.IntN(len(words)-i)
		words[i], words[j] = words[j], words[i]
	}

	roles := make([]CellRole, 0, BoardSize)
	roles = append(roles, CellAssassin)
	roles = appendN(roles, CellRoleFor(starting), StartingTeamCells)
	roles = appendN(roles, CellRoleFor(starting.Other()), OtherTeamCells)
	roles = appendN(roles, CellNeutral, NeutralCells)

	for i := len(roles) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}

	board := make([]Cell, BoardSize)
	for i := range board {
		board[i] = Cell{Word: words[i], Role: roles[i]}
	}
	return board, nil
}

// CountUnrevealed returns how many hidden cells still belong to role.
func CountUnrevealed(board []Cell, role CellRole) int {
	n := 0
	for _, c := range board {
		if c.Role == role && !c.Revealed {
			n++
		}
	}
	return n
}

func distinctWords(pool []string) []string {
	seen := make(map[string]struct{}, len(pool))
	words := make([]string, 0, len(pool))
	for _, w := range pool {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

func appendN(roles []CellRole, role CellRole, n int) []CellRole {
	for range n {
		roles = append(roles, role)
	}
	return roles
}

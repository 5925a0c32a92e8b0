package clue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/mcoot/treasurehunt-go/internal/model"
)

// ErrInvalidTable is returned when clue levels are not the contiguous sequence 1..N
var ErrInvalidTable = errors.New("invalid clue table")

// Table is the ordered, immutable list of hunt levels
type Table struct {
	clues []model.Clue
}

// NewTable validates and sorts the given clues.
// Levels must be unique and cover 1..N with no gaps.
func NewTable(clues []model.Clue) (*Table, error) {
	if len(clues) == 0 {
		return nil, fmt.Errorf("%w: no clues", ErrInvalidTable)
	}

	sorted := make([]model.Clue, len(clues))
	copy(sorted, clues)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	codes := make(map[string]int, len(sorted))
	for i, c := range sorted {
		if c.Level != i+1 {
			return nil, fmt.Errorf("%w: expected level %d, found %d", ErrInvalidTable, i+1, c.Level)
		}
		if c.Code == "" {
			return nil, fmt.Errorf("%w: level %d has no code", ErrInvalidTable, c.Level)
		}
		if prev, ok := codes[c.Code]; ok {
			return nil, fmt.Errorf("%w: levels %d and %d share a code", ErrInvalidTable, prev, c.Level)
		}
		codes[c.Code] = c.Level
	}

	return &Table{clues: sorted}, nil
}

// fileClue is the on-disk JSON shape of a clue
type fileClue struct {
	Level    int    `json:"level"`
	Location string `json:"location"`
	Clue     string `json:"clue"`
	Hint     string `json:"hint"`
	Code     string `json:"code"`
}

// LoadFromFile reads a JSON array of clues
func LoadFromFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []fileClue
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse clue file: %w", err)
	}

	clues := make([]model.Clue, len(entries))
	for i, e := range entries {
		clues[i] = model.Clue{
			Level:    e.Level,
			Location: e.Location,
			Text:     e.Clue,
			Hint:     e.Hint,
			Code:     e.Code,
		}
	}
	return NewTable(clues)
}

// Get returns the clue for a level
func (t *Table) Get(level int) (model.Clue, bool) {
	if level < 1 || level > len(t.clues) {
		return model.Clue{}, false
	}
	return t.clues[level-1], true
}

// Len returns the number of levels (N)
func (t *Table) Len() int {
	return len(t.clues)
}

// IsFinal reports whether level is the last one
func (t *Table) IsFinal(level int) bool {
	return level == len(t.clues)
}

// All returns a copy of every clue in level order
func (t *Table) All() []model.Clue {
	result := make([]model.Clue, len(t.clues))
	copy(result, t.clues)
	return result
}

// Package qtable provides the tabular knowledge store for Q-learning: a flat
// mapping of (board key, move) pairs to learned value estimates.
package qtable

import (
	"bytes"
	"encoding/gob"
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/tabq/tabq/game"
)

// Table maps (state key, move) pairs to learned value estimates. Absent
// entries read as 0 - an unseen pair is an expected condition, not an error.
//
// A Table is not safe for concurrent use. Training owns it exclusively.
type Table struct {
	values map[game.Key]map[game.Single]float32
}

// New creates an empty Table.
func New() *Table {
	return &Table{values: make(map[game.Key]map[game.Single]float32)}
}

// Get returns the stored value for (k, move), or 0 if no value was stored.
func (t *Table) Get(k game.Key, move game.Single) float32 {
	if actions, ok := t.values[k]; ok {
		return actions[move]
	}
	return 0
}

// Set stores v for (k, move), overwriting any previous value.
func (t *Table) Set(k game.Key, move game.Single, v float32) {
	actions, ok := t.values[k]
	if !ok {
		actions = make(map[game.Single]float32)
		t.values[k] = actions
	}
	actions[move] = v
}

// BestMove returns the move in legal with the highest stored value, and that
// value. Ties go to the move that appears first in legal; since game states
// list their legal moves in ascending order, repeated calls on the same state
// always pick the same move. An empty legal slice - a terminal state, with no
// further reward to estimate - returns (-1, 0).
func (t *Table) BestMove(k game.Key, legal []game.Single) (game.Single, float32) {
	if len(legal) == 0 {
		return -1, 0
	}
	best := legal[0]
	bestVal := math32.Inf(-1)
	for _, move := range legal {
		if v := t.Get(k, move); v > bestVal {
			best = move
			bestVal = v
		}
	}
	return best, bestVal
}

// BestValue returns the value of BestMove. 0 if legal is empty.
func (t *Table) BestValue(k game.Key, legal []game.Single) float32 {
	_, v := t.BestMove(k, legal)
	return v
}

// Each calls fn for every stored (key, move, value) triple, in no particular
// order.
func (t *Table) Each(fn func(k game.Key, move game.Single, v float32)) {
	for k, actions := range t.values {
		for move, v := range actions {
			fn(k, move, v)
		}
	}
}

// States returns the number of distinct states with at least one stored value.
func (t *Table) States() int { return len(t.values) }

// Visited reports whether any value was stored for the state.
func (t *Table) Visited(k game.Key) bool {
	_, ok := t.values[k]
	return ok
}

// Unexplored returns how many of the 3^cells possible boards have no entry
// yet. The count is returned as a float64 because it overflows integers for
// anything much larger than a 4x4 board.
func (t *Table) Unexplored(cells int) float64 {
	return math.Pow(3, float64(cells)) - float64(len(t.values))
}

// tableEntry is the on-wire form of one stored value.
type tableEntry struct {
	Key   game.Key
	Move  game.Single
	Value float32
}

// GobEncode implements gob.GobEncoder. The encoding round-trips every stored
// (key, move, value) triple exactly; it is not a stable interchange format.
func (t *Table) GobEncode() ([]byte, error) {
	entries := make([]tableEntry, 0, len(t.values))
	for k, actions := range t.values {
		for move, v := range actions {
			entries = append(entries, tableEntry{Key: k, Move: move, Value: v})
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *Table) GobDecode(p []byte) error {
	var entries []tableEntry
	if err := gob.NewDecoder(bytes.NewReader(p)).Decode(&entries); err != nil {
		return errors.WithStack(err)
	}
	t.values = make(map[game.Key]map[game.Single]float32)
	for _, e := range entries {
		t.Set(e.Key, e.Move, e.Value)
	}
	return nil
}

package qtable

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/tabq/tabq/game"
	"github.com/tabq/tabq/game/mnk"
)

func TestGetDefault(t *testing.T) {
	assert := assert.New(t)
	tbl := New()
	k := mnk.TicTacToe().Key()

	// absent entries read as 0, repeatedly, without creating anything
	assert.Equal(float32(0), tbl.Get(k, 4))
	assert.Equal(float32(0), tbl.Get(k, 4))
	assert.Equal(0, tbl.States())
	assert.False(tbl.Visited(k))
}

func TestSetGet(t *testing.T) {
	assert := assert.New(t)
	tbl := New()
	k := mnk.TicTacToe().Key()

	tbl.Set(k, 4, 0.25)
	assert.Equal(float32(0.25), tbl.Get(k, 4))
	assert.True(tbl.Visited(k))

	// later writes replace earlier ones
	tbl.Set(k, 4, -1)
	assert.Equal(float32(-1), tbl.Get(k, 4))

	// other moves at the same state are unaffected
	assert.Equal(float32(0), tbl.Get(k, 0))
	assert.Equal(1, tbl.States())
}

func TestBestMove(t *testing.T) {
	assert := assert.New(t)
	tbl := New()
	g := mnk.TicTacToe()
	k := g.Key()
	legal := g.LegalMoves()

	// empty table: everything reads 0, so the first legal move wins
	best, v := tbl.BestMove(k, legal)
	assert.Equal(game.Single(0), best)
	assert.Equal(float32(0), v)

	tbl.Set(k, 4, 0.5)
	tbl.Set(k, 8, 0.5) // tied with 4, but 4 comes first in legal order
	best, v = tbl.BestMove(k, legal)
	assert.Equal(game.Single(4), best)
	assert.Equal(float32(0.5), v)

	// the tie-break is stable under repeated calls
	for i := 0; i < 10; i++ {
		again, _ := tbl.BestMove(k, legal)
		assert.Equal(best, again)
	}

	// a stored negative value loses to an unexplored 0
	tbl2 := New()
	tbl2.Set(k, 0, -1)
	best, v = tbl2.BestMove(k, legal)
	assert.Equal(game.Single(1), best)
	assert.Equal(float32(0), v)

	// best move always comes from the supplied legal set
	best, _ = tbl.BestMove(k, []game.Single{2, 3})
	assert.Contains([]game.Single{2, 3}, best)

	// no legal moves: terminal state, nothing left to estimate
	best, v = tbl.BestMove(k, nil)
	assert.Equal(game.Single(-1), best)
	assert.Equal(float32(0), v)
	assert.Equal(float32(0), tbl.BestValue(k, nil))
}

func TestUnexplored(t *testing.T) {
	tbl := New()
	if got := tbl.Unexplored(9); got != 19683 { // 3^9
		t.Errorf("expected 19683 unexplored states, got %v", got)
	}
	tbl.Set(mnk.TicTacToe().Key(), 0, 1)
	if got := tbl.Unexplored(9); got != 19682 {
		t.Errorf("expected 19682 unexplored states, got %v", got)
	}
}

func TestGobRoundTrip(t *testing.T) {
	g := mnk.TicTacToe()
	tbl := New()
	tbl.Set(g.Key(), 4, 0.5)
	g.Apply(game.PlayerMove{Player: mnk.Cross, Single: 4})
	tbl.Set(g.Key(), 0, -0.25)
	tbl.Set(g.Key(), 8, 0.125)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tbl); err != nil {
		t.Fatal(err)
	}
	tbl2 := New()
	if err := gob.NewDecoder(&buf).Decode(tbl2); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(dump(tbl), dump(tbl2)); diff != "" {
		t.Errorf("table did not round-trip (-want +got):\n%s", diff)
	}
}

type entry struct {
	Key  game.Key
	Move game.Single
}

func dump(t *Table) map[entry]float32 {
	retVal := make(map[entry]float32)
	t.Each(func(k game.Key, move game.Single, v float32) {
		retVal[entry{k, move}] = v
	})
	return retVal
}

func TestToDot(t *testing.T) {
	assert := assert.New(t)
	g := mnk.TicTacToe()
	tbl := New()
	tbl.Set(g.Key(), 4, 0.75)

	dot, err := tbl.ToDot(g, 1)
	assert.NoError(err)
	assert.Contains(dot, "digraph")
	assert.Contains(dot, "4: 0.750")
	// one node for the root, one per legal first move
	assert.Contains(dot, "n9")
}

package tabq

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabq/tabq/game"
	"github.com/tabq/tabq/game/mnk"
	"github.com/tabq/tabq/qtable"
)

func TestSelect(t *testing.T) {
	assert := assert.New(t)
	conf := DefaultConfig()
	tbl := qtable.New()
	a := newAgent("A", tbl, conf, rand.New(rand.NewSource(42)))
	g := mnk.TicTacToe()

	// fully greedy: always the best known move
	a.Eps = 0
	tbl.Set(g.Key(), 4, 1)
	for i := 0; i < 10; i++ {
		move, err := a.Select(g)
		assert.NoError(err)
		assert.Equal(game.Single(4), move)
	}

	// fully random: always a member of the legal set
	a.Eps = 1
	legal := make(map[game.Single]bool)
	for _, m := range g.LegalMoves() {
		legal[m] = true
	}
	for i := 0; i < 50; i++ {
		move, err := a.Select(g)
		assert.NoError(err)
		assert.True(legal[move], "move %d is not legal", move)
	}
}

func TestSelectTerminal(t *testing.T) {
	conf := DefaultConfig()
	a := newAgent("A", qtable.New(), conf, rand.New(rand.NewSource(42)))

	g := mnk.TicTacToe()
	moves := []game.Single{0, 1, 2, 4, 3, 5, 7, 6, 8}
	players := []game.Player{mnk.Cross, mnk.Nought}
	for i, m := range moves {
		if _, err := g.Apply(game.PlayerMove{Player: players[i%2], Single: m}); err != nil {
			t.Fatal(err)
		}
	}
	if legal := g.LegalMoves(); len(legal) != 0 {
		t.Fatalf("expected a full board, got legal moves %v", legal)
	}
	if _, err := a.Select(g); err == nil {
		t.Error("expected selecting on a full board to error")
	}
	if _, err := a.BestMove(g); err == nil {
		t.Error("expected best move on a full board to error")
	}
}

func TestLearnBackwardPass(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	conf := DefaultConfig()
	conf.Alpha = 0.5
	conf.Gamma = 0.5
	tbl := qtable.New()
	a := newAgent("A", tbl, conf, rand.New(rand.NewSource(42)))
	a.Player = mnk.Cross

	// X plays 0 and 1; O plays 3 and 4. X's trajectory is two steps.
	g := mnk.TicTacToe()
	k0 := g.Key()
	a.observe(g, 0)
	_, err := g.Apply(game.PlayerMove{Player: mnk.Cross, Single: 0})
	require.NoError(err)
	_, err = g.Apply(game.PlayerMove{Player: mnk.Nought, Single: 3})
	require.NoError(err)

	k1 := g.Key()
	a.observe(g, 1)
	_, err = g.Apply(game.PlayerMove{Player: mnk.Cross, Single: 1})
	require.NoError(err)

	a.learn(1)

	// last step: Q = 0 + 0.5·(0.5·1 − 0) = 0.25
	assert.InDelta(0.25, tbl.Get(k1, 1), 1e-6)
	// first step bootstraps from the just-updated later state:
	// Q = 0 + 0.5·(0.5·0.25 − 0) = 0.0625
	assert.InDelta(0.0625, tbl.Get(k0, 0), 1e-6)

	// the trajectory is consumed
	assert.Len(a.trajectory, 0)

	// a second episode through k1 blends, not overwrites:
	// Q = 0.25 + 0.5·(0.5·(−1) − 0.25) = −0.125
	a.observe(g2state(t, k1), 1)
	a.learn(-1)
	assert.InDelta(-0.125, tbl.Get(k1, 1), 1e-6)
}

// g2state rebuilds a tic-tac-toe state whose key is k.
func g2state(t *testing.T, k game.Key) game.State {
	t.Helper()
	g := mnk.TicTacToe()
	board := g.Board()
	for i := range k {
		board[i] = game.Colour(k[i])
	}
	return g
}

func TestDecayEpsilon(t *testing.T) {
	conf := DefaultConfig()
	conf.Epsilon = 0.5
	conf.EpsilonDecay = 0.2
	conf.EpsilonMin = 0.2
	a := newAgent("A", qtable.New(), conf, rand.New(rand.NewSource(42)))

	a.decayEpsilon()
	if a.Eps != 0.3 {
		t.Errorf("expected eps 0.3, got %v", a.Eps)
	}
	a.decayEpsilon()
	a.decayEpsilon()
	if a.Eps != 0.2 {
		t.Errorf("expected eps floored at 0.2, got %v", a.Eps)
	}
}

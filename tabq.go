// Package tabq trains a tabular Q-learning agent to play m,n,k games
// (tic-tac-toe and its larger cousins) through self-play. The learned policy
// lives in a flat table of (board, move) value estimates; there is no search
// tree and no function approximation, which keeps the whole thing tractable
// only for small boards.
package tabq

import (
	"encoding/gob"
	"log"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"github.com/tabq/tabq/game"
	"github.com/tabq/tabq/game/mnk"
	"github.com/tabq/tabq/qtable"
)

// TQ is the top level structure and the entry point of the API. It wraps the
// arena the agents play in and the table they learn into.
type TQ struct {
	// state
	Arena
	Statistics
	Table *qtable.Table

	// config
	conf Config

	// io
	outEnc OutputEncoder
}

// New creates a training setup from a Config: a fresh empty table, a board of
// the configured size, and two agents sharing the table.
func New(conf Config) (*TQ, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("invalid config %+v", conf)
	}
	g, err := mnk.New(conf.M, conf.N, conf.K)
	if err != nil {
		return nil, err
	}

	tbl := qtable.New()
	r := rand.New(rand.NewSource(conf.Seed))
	retVal := &TQ{
		Arena:      MakeArena(g, tbl, conf, r),
		Statistics: makeStatistics(),
		Table:      tbl,
		conf:       conf,
		outEnc:     conf.OutputEncoder,
	}
	retVal.logger = log.New(&retVal.buf, "", log.Ltime)
	return retVal, nil
}

// Learn runs the given number of self-play episodes. Each episode is one game
// played ε-greedily to termination followed by a backward pass over both
// agents' trajectories. The exploration rate decays once per episode. Win
// rates are sampled into Statistics every conf.StatsEvery episodes.
func (t *TQ) Learn(episodes int) error {
	for t.episode = 0; t.episode < episodes; t.episode++ {
		if _, err := t.Play(true, nil); err != nil {
			return errors.WithMessagef(err, "episode %d", t.episode)
		}
		t.game.Reset()
		t.A.decayEpsilon()
		t.B.decayEpsilon()

		if (t.episode+1)%t.conf.StatsEvery == 0 {
			t.Statistics.update(t.episode+1, t.A, t.B)
			t.A.resetStats()
			t.B.resetStats()
		}
	}
	return nil
}

// Exhibition plays one game with both agents at their best known moves, with
// no learning. When an OutputEncoder was configured it records every position
// of the game.
func (t *TQ) Exhibition() (winner game.Player, err error) {
	if winner, err = t.Play(false, t.outEnc); err != nil {
		return winner, err
	}
	t.game.Reset()
	if t.outEnc != nil {
		err = t.outEnc.Flush()
	}
	return winner, err
}

// Save writes the learned table into filename.
func (t *TQ) Save(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	return errors.WithStack(enc.Encode(t.Table))
}

// Load replaces the learned table with the one stored in filename. Both
// agents keep pointing at the table, so a Load followed by Exhibition plays
// with the loaded knowledge.
func (t *TQ) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	if err = dec.Decode(t.Table); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

package tabq

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/tabq/tabq/game"
	"github.com/tabq/tabq/qtable"
)

// Arena is where two agents play against each other. During training both
// agents draw from, and write back to, the same shared table.
type Arena struct {
	r    *rand.Rand
	game game.State
	A, B *Agent

	// state
	currentPlayer *Agent
	buf           bytes.Buffer
	logger        *log.Logger

	// only relevant to training
	name       string
	episode    int // training episode
	gameNumber int // which game is this in
}

// MakeArena makes an arena given a game and a shared table.
func MakeArena(g game.State, tbl *qtable.Table, conf Config, r *rand.Rand) Arena {
	name := conf.Name
	if name == "" {
		name = "UNKNOWN GAME"
	}
	return Arena{
		r:    r,
		game: g,
		A:    newAgent("A", tbl, conf, r),
		B:    newAgent("B", tbl, conf, r),
		name: name,
	}
}

// NewArena makes an arena, and initializes its logger.
func NewArena(g game.State, tbl *qtable.Table, conf Config, r *rand.Rand) *Arena {
	ar := MakeArena(g, tbl, conf, r)
	ar.logger = log.New(&ar.buf, "", log.Ltime)
	return &ar
}

// Play plays one game to termination and returns the winner - None for a
// draw. When record is true the agents select ε-greedily, their moves are
// recorded, and the terminal reward (+1 win, −1 loss, 0 draw) is propagated
// backward through both trajectories. When record is false both agents play
// their best known moves and nothing is learned.
func (a *Arena) Play(record bool, enc OutputEncoder) (winner game.Player, err error) {
	// who plays black is decided by a coin flip, so neither agent
	// specializes in going first
	if a.r.Intn(2) == 0 {
		a.A.Player = game.Player(game.Black)
		a.B.Player = game.Player(game.White)
		a.currentPlayer = a.A
	} else {
		a.A.Player = game.Player(game.White)
		a.B.Player = game.Player(game.Black)
		a.currentPlayer = a.B
	}
	a.game.SetToMove(a.currentPlayer.Player)

	if a.logger != nil {
		a.logger.Printf("Playing game %d. Recording %t\n", a.gameNumber, record)
	}

	var ended bool
	for ended, winner = a.game.Ended(); !ended; ended, winner = a.game.Ended() {
		var move game.Single
		if record {
			if move, err = a.currentPlayer.Select(a.game); err != nil {
				return winner, err
			}
			a.currentPlayer.observe(a.game, move)
		} else {
			if move, err = a.currentPlayer.BestMove(a.game); err != nil {
				return winner, err
			}
		}
		if a.logger != nil {
			a.logger.Printf("Current Player: %v. Move %v\n", a.currentPlayer.Player, move)
		}

		pm := game.PlayerMove{Player: a.currentPlayer.Player, Single: move}
		if a.game, err = a.game.Apply(pm); err != nil {
			return winner, errors.WithMessagef(err, "game %d", a.gameNumber)
		}
		a.switchPlayer()
		if enc != nil {
			if err = enc.Encode(a); err != nil {
				return winner, err
			}
		}
	}

	switch {
	case winner == game.Player(game.None):
		a.A.Draw++
		a.B.Draw++
		if record {
			a.A.learn(0)
			a.B.learn(0)
		}
	case winner == a.A.Player:
		a.A.Wins++
		a.B.Loss++
		if record {
			a.A.learn(1)
			a.B.learn(-1)
		}
	case winner == a.B.Player:
		a.B.Wins++
		a.A.Loss++
		if record {
			a.B.learn(1)
			a.A.learn(-1)
		}
	}
	a.gameNumber++
	return winner, nil
}

func (a *Arena) Episode() int      { return a.episode }
func (a *Arena) GameNumber() int   { return a.gameNumber }
func (a *Arena) Name() string      { return a.name }
func (a *Arena) State() game.State { return a.game }

func (a *Arena) Log(w io.Writer) {
	fmt.Fprint(w, a.buf.String())
}

func (a *Arena) switchPlayer() {
	switch a.currentPlayer {
	case a.A:
		a.currentPlayer = a.B
	case a.B:
		a.currentPlayer = a.A
	}
}

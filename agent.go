package tabq

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/tabq/tabq/game"
	"github.com/tabq/tabq/qtable"
)

// An Agent is one seat at the board. Both seats share the same Table during
// self-play; each keeps its own trajectory and its own scoreboard.
type Agent struct {
	Table  *qtable.Table
	Player game.Player
	Eps    float64 // live exploration rate

	// Statistics
	Wins float32
	Loss float32
	Draw float32

	name       string
	alpha      float32
	gamma      float32
	epsDecay   float64
	epsMin     float64
	rng        *rand.Rand
	trajectory []step
}

// step is one (state, move) choice of this agent, together with the legal
// moves of that state. The legal set is kept so the backward pass can ask the
// table for the best value of the state without reconstructing the board.
type step struct {
	key   game.Key
	move  game.Single
	legal []game.Single
}

func newAgent(name string, tbl *qtable.Table, conf Config, rng *rand.Rand) *Agent {
	return &Agent{
		Table:    tbl,
		name:     name,
		alpha:    conf.Alpha,
		gamma:    conf.Gamma,
		Eps:      conf.Epsilon,
		epsDecay: conf.EpsilonDecay,
		epsMin:   conf.EpsilonMin,
		rng:      rng,
	}
}

// Select picks a move ε-greedily: with probability Eps a uniformly random
// legal move, otherwise the best known move. Calling Select on a state with
// no legal moves is a caller error - terminality must be checked first.
func (a *Agent) Select(g game.State) (game.Single, error) {
	legal := g.LegalMoves()
	if len(legal) == 0 {
		return -1, errors.Errorf("agent %v: no legal moves to select from", a.name)
	}
	if a.rng.Float64() < a.Eps {
		return legal[a.rng.Intn(len(legal))], nil
	}
	best, _ := a.Table.BestMove(g.Key(), legal)
	return best, nil
}

// BestMove picks the best known move, with no exploration. This is the policy
// used for interactive play after training.
func (a *Agent) BestMove(g game.State) (game.Single, error) {
	legal := g.LegalMoves()
	if len(legal) == 0 {
		return -1, errors.Errorf("agent %v: no legal moves to select from", a.name)
	}
	best, _ := a.Table.BestMove(g.Key(), legal)
	return best, nil
}

// observe records the (state, move) pair into the trajectory. It must be
// called before the move is applied, while g is still the state the choice
// was made in.
func (a *Agent) observe(g game.State, move game.Single) {
	a.trajectory = append(a.trajectory, step{
		key:   g.Key(),
		move:  move,
		legal: g.LegalMoves(),
	})
}

// learn runs the backward pass over the recorded trajectory. The final move
// is updated against the terminal reward; every earlier move is updated
// against the best value of the state that followed it, which has itself just
// been updated - so a single pass propagates the outcome from the last move
// back to the first. Each update blends as Q ← Q + α·(γ·target − Q).
// The trajectory is consumed.
func (a *Agent) learn(reward float32) {
	target := reward
	for i := len(a.trajectory) - 1; i >= 0; i-- {
		st := a.trajectory[i]
		q := a.Table.Get(st.key, st.move)
		q += a.alpha * (a.gamma*target - q)
		a.Table.Set(st.key, st.move, q)
		target = a.Table.BestValue(st.key, st.legal)
	}
	a.trajectory = a.trajectory[:0]
}

// decayEpsilon shrinks the exploration rate by one episode's worth.
func (a *Agent) decayEpsilon() {
	a.Eps -= a.epsDecay
	if a.Eps < a.epsMin {
		a.Eps = a.epsMin
	}
}

func (a *Agent) resetStats() {
	a.Wins = 0
	a.Loss = 0
	a.Draw = 0
}

package mnk

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tabq/tabq/game"
)

var (
	Cross  = game.Player(game.Black)
	Nought = game.Player(game.White)
)

var _ game.State = &MNK{}

// MNK is a representation of M,N,K games - a game is played on a MxN board. K in a row to win.
type MNK struct {
	board   []game.Colour
	m, n, k int

	nextToMove game.Player
	history    []game.PlayerMove
}

// New creates a new MNK game. The dimensions are fixed at construction: m rows,
// n columns, k consecutive marks to win.
func New(m, n, k int) (*MNK, error) {
	if m <= 0 || n <= 0 || k <= 0 {
		return nil, errors.Errorf("nonpositive dimensions (%d, %d, %d)", m, n, k)
	}
	if k > m && k > n {
		return nil, errors.Errorf("no %d-in-a-row fits on a %dx%d board", k, m, n)
	}
	return &MNK{
		board:      make([]game.Colour, m*n),
		history:    make([]game.PlayerMove, 0, m*n),
		m:          m,
		n:          n,
		k:          k,
		nextToMove: Cross,
	}, nil
}

// TicTacToe creates a new MNK game for Tic Tac Toe
func TicTacToe() *MNK {
	g, _ := New(3, 3, 3)
	return g
}

func (g *MNK) Format(s fmt.State, c rune) {
	for i, c := range g.board {
		if i%g.n == 0 {
			fmt.Fprint(s, "⎢ ")
		}
		fmt.Fprintf(s, "%s ", c)
		if (i+1)%g.n == 0 && i != 0 {
			fmt.Fprint(s, "⎥\n")
		}
	}
}

func (g *MNK) BoardSize() (int, int) { return g.m, g.n }
func (g *MNK) Board() []game.Colour  { return g.board }

func (g *MNK) Key() game.Key { return game.KeyOf(g) }

func (g *MNK) ActionSpace() int { return g.m * g.n }

func (g *MNK) SetToMove(p game.Player) { g.nextToMove = p }

func (g *MNK) ToMove() game.Player { return g.nextToMove }

func (g *MNK) LastMove() game.PlayerMove {
	if len(g.history) > 0 {
		return g.history[len(g.history)-1]
	}
	return game.PlayerMove{Player: game.Player(game.None), Single: -1}
}

func (g *MNK) MoveNumber() int { return len(g.history) }

// LegalMoves returns the indices of all the empty cells, in ascending order.
// The slice is empty iff the board is full.
func (g *MNK) LegalMoves() []game.Single {
	retVal := make([]game.Single, 0, len(g.board)-len(g.history))
	for i, c := range g.board {
		if c == game.None {
			retVal = append(retVal, game.Single(i))
		}
	}
	return retVal
}

func (g *MNK) Check(m game.PlayerMove) bool {
	if m.Single.IsNone() {
		return false
	}
	if int(m.Single) >= len(g.board) {
		return false
	}
	if g.board[int(m.Single)] != game.None {
		return false
	}
	return true
}

// Apply places the mark of m.Player at m.Single. It returns an invalid-move
// error when the cell is occupied or out of range, leaving the state untouched.
func (g *MNK) Apply(m game.PlayerMove) (game.State, error) {
	if !g.Check(m) {
		return g, errors.WithStack(moveError(m))
	}

	g.board[int(m.Single)] = game.Colour(m.Player)
	g.history = append(g.history, m)
	g.nextToMove = m.Player.Opponent()
	return g, nil
}

// Ended checks if the game has ended. If it has, who is the winner? A draw
// (full board, no k-in-a-row) reports ended with winner None.
func (g *MNK) Ended() (ended bool, winner game.Player) {
	if g.isWinner(Cross) {
		return true, Cross
	}
	if g.isWinner(Nought) {
		return true, Nought
	}
	for _, c := range g.board {
		if c == game.None {
			return false, game.Player(game.None)
		}
	}
	return true, game.Player(game.None)
}

func (g *MNK) Reset() {
	for i := range g.board {
		g.board[i] = game.None
	}
	g.history = g.history[:0]
	g.nextToMove = Cross
}

func (g *MNK) Eq(other game.State) bool {
	ot, ok := other.(*MNK)
	if !ok {
		return false
	}
	if len(g.board) != len(ot.board) {
		return false
	}
	for i := range g.board {
		if g.board[i] != ot.board[i] {
			return false
		}
	}
	return true
}

func (g *MNK) Clone() game.State {
	retVal := &MNK{
		board:      make([]game.Colour, len(g.board)),
		history:    make([]game.PlayerMove, len(g.history), g.m*g.n),
		m:          g.m,
		n:          g.n,
		k:          g.k,
		nextToMove: g.nextToMove,
	}
	copy(retVal.board, g.board)
	copy(retVal.history, g.history)
	return retVal
}

func (g *MNK) isWinner(p game.Player) bool {
	colour := game.Colour(p)
	// check rows
	for i := 0; i < g.m; i++ {
		var count int
		for j := 0; j < g.n; j++ {
			if g.board[i*g.n+j] == colour {
				count++
				if count >= g.k {
					return true
				}
			} else {
				count = 0
			}
		}
	}
	// check cols
	for j := 0; j < g.n; j++ {
		var count int
		for i := 0; i < g.m; i++ {
			if g.board[i*g.n+j] == colour {
				count++
				if count >= g.k {
					return true
				}
			} else {
				count = 0
			}
		}
	}
	// check ↘ diagonals, starting from every cell of the top row and left column
	for i := 0; i < g.m; i++ {
		for j := 0; j < g.n; j++ {
			if i != 0 && j != 0 {
				continue
			}
			var count int
			for r, c := i, j; r < g.m && c < g.n; r, c = r+1, c+1 {
				if g.board[r*g.n+c] == colour {
					count++
					if count >= g.k {
						return true
					}
				} else {
					count = 0
				}
			}
		}
	}
	// check ↙ diagonals, starting from every cell of the top row and right column
	for i := 0; i < g.m; i++ {
		for j := 0; j < g.n; j++ {
			if i != 0 && j != g.n-1 {
				continue
			}
			var count int
			for r, c := i, j; r < g.m && c >= 0; r, c = r+1, c-1 {
				if g.board[r*g.n+c] == colour {
					count++
					if count >= g.k {
						return true
					}
				} else {
					count = 0
				}
			}
		}
	}
	return false
}

package game

import (
	"fmt"
)

type Colour byte

const (
	None Colour = iota
	Black
	White
)

func (cl Colour) Format(s fmt.State, c rune) {
	switch c {
	case 'v': // used in debug
		switch cl {
		case None:
			fmt.Fprint(s, "None")
		case Black:
			fmt.Fprint(s, "Black")
		case White:
			fmt.Fprint(s, "White")
		}
	case 's': // used in board games
		switch cl {
		case None:
			fmt.Fprint(s, "·")
		case Black:
			fmt.Fprint(s, "X")
		case White:
			fmt.Fprint(s, "O")
		}
	}
}

// Player represents a player. It's also a colour.
type Player Colour

func (p Player) Format(s fmt.State, c rune) { Colour(p).Format(s, c) }

// Opponent returns the other player. None has no opponent.
func (p Player) Opponent() Player {
	switch Colour(p) {
	case Black:
		return Player(White)
	case White:
		return Player(Black)
	}
	return Player(None)
}

// PlayerMove is a tuple indicating the player and the move to be made.
type PlayerMove struct {
	Player
	Single
}

// Eq returns true if both are equal
func (p PlayerMove) Eq(other PlayerMove) bool {
	return p.Player == other.Player && p.Single == other.Single
}

func (p PlayerMove) Format(s fmt.State, c rune) { fmt.Fprintf(s, "%v@%d", p.Player, p.Single) }

// Single represents a cell as a single number, utilized in a rowmajor fashion.
//   - 0 represents the top left
//   - 2 represents the top right of a 3x3 board
//   - 3 represents (1, 0)
//   - -1 represents "no move"
type Single int32

// IsNone returns true when the number does not represent a placement.
func (c Single) IsNone() bool { return c < 0 }

// Key is a stable, order-sensitive encoding of a board - one byte per cell, in
// row-major order. Two boards encode to the same Key if and only if every cell
// matches, which makes it safe as a lookup key for learned values.
type Key string

// KeyOf encodes the board of a State into a Key.
func KeyOf(s State) Key {
	board := s.Board()
	buf := make([]byte, len(board))
	for i, c := range board {
		buf[i] = byte(c)
	}
	return Key(buf)
}

// State is any game that implements these and is able to report back
type State interface {
	// These methods represent the game state
	BoardSize() (int, int) // returns the board size
	Board() []Colour       // returns the board state
	ActionSpace() int      // returns the number of permissible actions
	Key() Key              // returns the table key of the board
	ToMove() Player        // returns the player whose turn it is
	SetToMove(Player)      // set the player whose turn it is
	MoveNumber() int       // returns count of moves so far that led to this point.
	LastMove() PlayerMove  // returns the last move that was made

	// rules
	LegalMoves() []Single               // all legal placements for the player to move, in ascending order
	Check(m PlayerMove) bool            // check if the placement is legal
	Apply(m PlayerMove) (State, error)  // applies the move. The required side effect is ToMove has to change.
	Ended() (ended bool, winner Player) // has the game ended? if yes, then who's the winner?
	Reset()                             // reset state

	// generics
	Eq(other State) bool
	Clone() State
}

// MetaState is the state of a training run wrapped around a game state.
type MetaState interface {
	Name() string // name of the game
	Episode() int
	GameNumber() int
	State() State
}

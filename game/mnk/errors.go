package mnk

import (
	"fmt"

	"github.com/tabq/tabq/game"
)

type moveError game.PlayerMove

func (err moveError) Error() string {
	return fmt.Sprintf("unable to make %v: cell is occupied or out of range", game.PlayerMove(err))
}

func (err moveError) InvalidMove() bool { return true }

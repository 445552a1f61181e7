package game

import "github.com/pkg/errors"

type invalidMover interface {
	InvalidMove() bool
}

// IsInvalidMove reports whether err was caused by an illegal placement - a
// move that targets an occupied cell or an out-of-range index. These are
// always recoverable: the caller re-prompts or re-selects.
func IsInvalidMove(err error) bool {
	if err == nil {
		return false
	}
	im, ok := errors.Cause(err).(invalidMover)
	return ok && im.InvalidMove()
}

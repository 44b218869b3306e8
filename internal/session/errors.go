package session

import (
	"errors"
	"fmt"
)

// Gesture and submission rejections. These are recoverable: the caller gets
// a reason, the board re-syncs, nothing else changes.
var (
	ErrNotInGame         = errors.New("no game in progress")
	ErrOffBoard          = errors.New("dropped off the board")
	ErrSameSquare        = errors.New("source equals target")
	ErrMoveInFlight      = errors.New("a move is already on its way to the server")
	ErrPromotionPending  = errors.New("waiting for a promotion choice")
	ErrNoPiece           = errors.New("no piece on source square")
	ErrWrongColor        = errors.New("that piece is not yours to move")
	ErrIllegalMove       = errors.New("illegal move")
	ErrEngineBusy        = errors.New("engine reply already requested")
	ErrMissingCapability = errors.New("missing capability")
)

// RejectionError is a semantic rejection from the server: the move (or
// request) was understood and refused.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("server rejected request: %s", e.Reason)
}

// TransportError is a network-level failure: the server could not be
// reached or did not answer sensibly. Distinct from RejectionError so the
// user can tell "illegal" from "couldn't reach server".
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

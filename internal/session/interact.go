package session

import (
	"context"
	"strings"

	"github.com/notnil/chess"

	"chesstutor/internal/logging"
)

// OffBoard is the sentinel target the board widget reports when a piece is
// dragged off the board.
const OffBoard = "offboard"

// DropResult tells the board widget what became of a drag gesture.
type DropResult struct {
	// Snapback is true when the widget should return the piece to its
	// source square.
	Snapback bool
	// PromotionPending is true when the gesture is provisionally accepted
	// and submission waits on a promotion choice.
	PromotionPending bool
	Reason           error
}

// PendingPromotion is a pawn move waiting for its promotion piece. At most
// one exists at a time; while it does, all other submission is blocked.
type PendingPromotion struct {
	From     string
	To       string
	Piece    string // moving piece, e.g. "wP"
	Snapshot string // position before the move, for rollback
}

// Pending returns the promotion waiting on the user, or nil.
func (s *Session) Pending() *PendingPromotion {
	return s.pending
}

// HandleDrop resolves a drag-drop gesture into a candidate move. On any
// rejection the displayed position is restored to the last known-good
// snapshot, since the widget may have already moved the piece visually.
func (s *Session) HandleDrop(ctx context.Context, from, to string) DropResult {
	if to == OffBoard || to == "" {
		return s.rejectGesture(ErrOffBoard)
	}
	if from == to {
		return s.rejectGesture(ErrSameSquare)
	}
	if err := s.vetGesture(from, to); err != nil {
		return s.rejectGesture(err)
	}
	return s.acceptGesture(ctx, from, to)
}

// HandleTap resolves the two-tap input modality. The first tap on an
// own-side piece selects it; the second tap either deselects (same
// square), reselects (another own piece) or attempts the move. A move
// attempt always clears the selection, win or lose.
func (s *Session) HandleTap(ctx context.Context, square string) DropResult {
	if s.selected == "" {
		p := s.rules.PieceAt(square)
		if p.Color() == s.rules.Turn() && s.moveAllowed() == nil {
			s.selected = square
			s.board.Highlight(square)
		}
		return DropResult{}
	}
	if s.selected == square {
		s.clearSelection()
		return DropResult{}
	}
	if p := s.rules.PieceAt(square); p.Color() == s.rules.Turn() {
		s.clearSelection()
		s.selected = square
		s.board.Highlight(square)
		return DropResult{}
	}

	from := s.selected
	s.clearSelection()
	if err := s.vetGesture(from, square); err != nil {
		return s.rejectGesture(err)
	}
	return s.acceptGesture(ctx, from, square)
}

func (s *Session) clearSelection() {
	s.selected = ""
	s.board.ClearHighlights()
}

// Selected returns the square highlighted by the tap modality, if any.
func (s *Session) Selected() string { return s.selected }

// moveAllowed is the lifecycle gate shared by both modalities.
func (s *Session) moveAllowed() error {
	if s.freeBoard {
		return nil
	}
	if s.phase != PhaseInGame {
		return ErrNotInGame
	}
	if s.pending != nil {
		return ErrPromotionPending
	}
	if s.moveInFlight {
		return ErrMoveInFlight
	}
	return nil
}

// vetGesture applies identical legality and turn-order rules regardless of
// input modality. The legality probe never mutates shared position state.
func (s *Session) vetGesture(from, to string) error {
	if err := s.moveAllowed(); err != nil {
		return err
	}
	p := s.rules.PieceAt(from)
	if p == chess.NoPiece {
		return ErrNoPiece
	}
	if p.Color() != s.rules.Turn() {
		return ErrWrongColor
	}
	probe := from + to
	if s.rules.IsPromotion(from, to) {
		probe += "q"
	}
	if err := s.rules.Probe(probe); err != nil {
		return ErrIllegalMove
	}
	return nil
}

// acceptGesture hands a vetted move to the submission pipeline, deferring
// through the promotion sub-flow when the pawn reaches its terminal rank.
// The promotion case returns immediately so the rendering layer does not
// block on the modal.
func (s *Session) acceptGesture(ctx context.Context, from, to string) DropResult {
	if s.rules.IsPromotion(from, to) {
		piece := s.rules.PieceAt(from).String()
		s.pending = &PendingPromotion{From: from, To: to, Piece: piece, Snapshot: s.rules.Fen()}
		s.status("Choose a promotion piece (q/r/b/n, or cancel)")
		return DropResult{PromotionPending: true}
	}
	if err := s.submitMove(ctx, from+to); err != nil {
		return DropResult{Snapback: true, Reason: err}
	}
	return DropResult{}
}

// rejectGesture re-syncs the display and reports why the gesture died.
func (s *Session) rejectGesture(reason error) DropResult {
	s.board.SetPosition(s.rules.Fen())
	return DropResult{Snapback: true, Reason: reason}
}

// ChoosePromotion completes a pending promotion with the chosen piece
// ("q", "r", "b" or "n") and submits the move. A choice arriving after the
// pending record is gone is a recoverable inconsistency: logged, ignored.
func (s *Session) ChoosePromotion(ctx context.Context, piece string) error {
	pending := s.pending
	if pending == nil {
		logging.Debugf("stale promotion choice %q ignored", piece)
		return nil
	}
	piece = strings.ToLower(strings.TrimSpace(piece))
	switch piece {
	case "q", "r", "b", "n":
	default:
		return ErrIllegalMove
	}
	s.pending = nil
	return s.submitMove(ctx, pending.From+pending.To+piece)
}

// CancelPromotion abandons the pending promotion; the ledger is untouched
// and the display returns to the pre-move position.
func (s *Session) CancelPromotion() {
	if s.pending == nil {
		logging.Debugf("promotion cancel with nothing pending")
		return
	}
	snapshot := s.pending.Snapshot
	s.pending = nil
	s.board.SetPosition(snapshot)
	s.status("Promotion cancelled")
}

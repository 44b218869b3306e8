package session

import "chesstutor/internal/logging"

// Back steps the replay cursor one position older. At the oldest snapshot
// it is a no-op apart from a status line.
func (s *Session) Back() {
	if !s.ledger.Back() {
		s.status("Already at the oldest position")
		return
	}
	s.showCursor()
}

// Forward steps the replay cursor one position newer.
func (s *Session) Forward() {
	if !s.ledger.Forward() {
		s.status("Already at the newest position")
		return
	}
	s.showCursor()
}

// JumpStart rewinds the replay cursor to the game's first position.
func (s *Session) JumpStart() {
	if !s.ledger.JumpStart() {
		s.status("No positions recorded")
		return
	}
	s.showCursor()
}

// JumpEnd returns the replay cursor to the live position.
func (s *Session) JumpEnd() {
	if !s.ledger.JumpEnd() {
		s.status("No positions recorded")
		return
	}
	s.showCursor()
}

// showCursor loads the snapshot under the cursor into the position model
// and redraws. Navigation never pushes: the ledger only changes when a new
// move is confirmed (which then truncates any abandoned future).
func (s *Session) showCursor() {
	entry, ok := s.ledger.Current()
	if !ok {
		return
	}
	if err := s.rules.LoadFEN(entry.FEN); err != nil {
		logging.Errorf("replay snapshot %q: %v", entry.FEN, err)
		return
	}
	s.clearSelection()
	s.board.SetPosition(entry.FEN)
	if s.ledger.AtEnd() {
		s.status("Live position")
	} else {
		s.status("Reviewing earlier position")
	}
}

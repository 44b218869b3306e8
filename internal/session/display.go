package session

import "strings"

// Captured holds the pieces each side has taken, derived by diffing the
// displayed position against the game's starting position. Letters are FEN
// piece letters; ByWhite holds captured black pieces (lowercase) and
// ByBlack captured white pieces (uppercase).
type Captured struct {
	ByWhite []string
	ByBlack []string
}

// fenCounts tallies piece letters in the board field of a FEN.
func fenCounts(fen string) map[rune]int {
	counts := make(map[rune]int)
	board := strings.Fields(fen)
	if len(board) == 0 {
		return counts
	}
	for _, r := range board[0] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			counts[r]++
		}
	}
	return counts
}

// CapturedPieces diffs the displayed position against the starting one.
// Promotion is folded back into pawns: a surplus of any piece kind is
// counted against the pawn deficit so a promoted queen is not reported as
// a captured one.
func (s *Session) CapturedPieces() Captured {
	start := fenCounts(s.initialFEN)
	now := fenCounts(s.rules.Fen())

	return Captured{
		ByWhite: missingPieces(start, now, "pnbrq"),
		ByBlack: missingPieces(start, now, "PNBRQ"),
	}
}

// missingPieces lists letters present in start but gone in now, for one
// side's letters given pawn-first. A surplus of a promoted piece kind is
// subtracted from the pawn deficit so the promoted pawn is not reported
// as captured.
func missingPieces(start, now map[rune]int, letters string) []string {
	promoted := 0
	for _, r := range letters[1:] {
		if extra := now[r] - start[r]; extra > 0 {
			promoted += extra
		}
	}
	var out []string
	for i, r := range letters {
		missing := start[r] - now[r]
		if i == 0 {
			missing -= promoted
		}
		for j := 0; j < missing; j++ {
			out = append(out, string(r))
		}
	}
	return out
}

// MoveList returns the SAN moves up to and including the replay cursor,
// in the order they were played.
func (s *Session) MoveList() []string {
	return s.ledger.MovesThrough(s.ledger.Cursor())
}

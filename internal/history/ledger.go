// Package history keeps the ordered record of confirmed board positions a
// session has passed through, together with a read cursor for replay
// navigation. The ledger is linear: pushing while the cursor sits behind the
// end discards the abandoned future instead of branching.
package history

// Entry is one confirmed position with the SAN moves that produced it from
// the previous entry (usually one move, two when an engine reply arrived in
// the same server response).
type Entry struct {
	FEN   string
	Moves []string
}

// Ledger is an append/truncate sequence of confirmed position snapshots with
// a cursor. The zero value is an empty ledger with cursor -1.
type Ledger struct {
	entries []Entry
	cursor  int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{cursor: -1}
}

// Len reports the number of snapshots.
func (l *Ledger) Len() int { return len(l.entries) }

// Cursor reports the current cursor index, or -1 when empty.
func (l *Ledger) Cursor() int { return l.cursor }

// AtEnd reports whether the cursor sits on the newest snapshot.
func (l *Ledger) AtEnd() bool { return l.cursor == len(l.entries)-1 }

// Current returns the entry under the cursor. ok is false when empty.
func (l *Ledger) Current() (Entry, bool) {
	if l.cursor < 0 || l.cursor >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[l.cursor], true
}

// At returns the entry at index i. ok is false when out of range.
func (l *Ledger) At(i int) (Entry, bool) {
	if i < 0 || i >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Push appends a confirmed snapshot and moves the cursor onto it. If the
// cursor is behind the end, everything after it is truncated first: a new
// move erases the alternate future.
func (l *Ledger) Push(fen string, moves ...string) {
	if l.cursor < len(l.entries)-1 {
		l.entries = l.entries[:l.cursor+1]
	}
	ms := make([]string, len(moves))
	copy(ms, moves)
	l.entries = append(l.entries, Entry{FEN: fen, Moves: ms})
	l.cursor = len(l.entries) - 1
}

// Back moves the cursor one snapshot older. Returns false when already at
// the oldest snapshot (or empty); the ledger is unchanged in that case.
func (l *Ledger) Back() bool {
	if l.cursor <= 0 {
		return false
	}
	l.cursor--
	return true
}

// Forward moves the cursor one snapshot newer. Returns false when already
// at the newest snapshot (or empty).
func (l *Ledger) Forward() bool {
	if l.cursor < 0 || l.cursor >= len(l.entries)-1 {
		return false
	}
	l.cursor++
	return true
}

// JumpStart sets the cursor to the oldest snapshot. Returns false when empty.
func (l *Ledger) JumpStart() bool {
	if len(l.entries) == 0 {
		return false
	}
	l.cursor = 0
	return true
}

// JumpEnd sets the cursor to the newest snapshot. Returns false when empty.
func (l *Ledger) JumpEnd() bool {
	if len(l.entries) == 0 {
		return false
	}
	l.cursor = len(l.entries) - 1
	return true
}

// RollbackTo discards speculative entries by truncating the ledger back to
// the most recent snapshot equal to fen, searching from the end. When no
// entry matches, the newest entry alone is popped. The cursor lands on the
// new last entry. Reports whether a matching snapshot was found.
func (l *Ledger) RollbackTo(fen string) bool {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].FEN == fen {
			l.entries = l.entries[:i+1]
			l.cursor = i
			return true
		}
	}
	if n := len(l.entries); n > 0 {
		l.entries = l.entries[:n-1]
	}
	l.cursor = len(l.entries) - 1
	return false
}

// Clear empties the ledger and resets the cursor.
func (l *Ledger) Clear() {
	l.entries = nil
	l.cursor = -1
}

// MovesThrough returns the SAN moves of all entries up to and including
// index i, flattened in order. Used to rebuild the move list display.
func (l *Ledger) MovesThrough(i int) []string {
	if i >= len(l.entries) {
		i = len(l.entries) - 1
	}
	var out []string
	for j := 0; j <= i; j++ {
		out = append(out, l.entries[j].Moves...)
	}
	return out
}

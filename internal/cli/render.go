// Package cli is the terminal front end: a board renderer and a command
// loop driving a session against a remote server.
package cli

import (
	"fmt"
	"io"
	"strings"
)

var glyphs = map[byte]rune{
	'K': '♔', 'Q': '♕', 'R': '♖', 'B': '♗', 'N': '♘', 'P': '♙',
	'k': '♚', 'q': '♛', 'r': '♜', 'b': '♝', 'n': '♞', 'p': '♟',
}

// TermBoard renders positions as a unicode diagram with coordinates. It is
// the board widget of a terminal session: every position update redraws.
type TermBoard struct {
	w          io.Writer
	fen        string
	reversed   bool
	highlights map[string]bool
}

// NewTermBoard returns a board drawing to w, oriented for white.
func NewTermBoard(w io.Writer) *TermBoard {
	return &TermBoard{w: w, highlights: make(map[string]bool)}
}

// SetPosition stores the position and redraws.
func (b *TermBoard) SetPosition(fen string) {
	b.fen = fen
	b.Render()
}

// Orientation flips the diagram so color's pieces are at the bottom.
func (b *TermBoard) Orientation(color string) {
	b.reversed = color == "black"
}

// Highlight marks a square on the next redraw.
func (b *TermBoard) Highlight(square string) {
	b.highlights[square] = true
	b.Render()
}

// ClearHighlights drops all square marks.
func (b *TermBoard) ClearHighlights() {
	if len(b.highlights) == 0 {
		return
	}
	b.highlights = make(map[string]bool)
}

// grid expands the FEN board field into [rank][file] piece letters, rank 0
// being rank 1. Zero bytes are empty squares.
func grid(fen string) [8][8]byte {
	var g [8][8]byte
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return g
	}
	rank := 7
	file := 0
	for i := 0; i < len(fields[0]); i++ {
		c := fields[0][i]
		switch {
		case c == '/':
			rank--
			file = 0
		case c >= '1' && c <= '8':
			file += int(c - '0')
		default:
			if rank >= 0 && rank < 8 && file >= 0 && file < 8 {
				g[rank][file] = c
			}
			file++
		}
	}
	return g
}

// Render draws the current position.
func (b *TermBoard) Render() {
	if b.fen == "" {
		return
	}
	g := grid(b.fen)
	ranks := []int{7, 6, 5, 4, 3, 2, 1, 0}
	files := []int{0, 1, 2, 3, 4, 5, 6, 7}
	if b.reversed {
		ranks = []int{0, 1, 2, 3, 4, 5, 6, 7}
		files = []int{7, 6, 5, 4, 3, 2, 1, 0}
	}
	var sb strings.Builder
	sb.WriteString("\n")
	for _, r := range ranks {
		fmt.Fprintf(&sb, " %d ", r+1)
		for _, f := range files {
			sq := string(rune('a'+f)) + string(rune('1'+r))
			cell := "·"
			if p := g[r][f]; p != 0 {
				cell = string(glyphs[p])
			}
			if b.highlights[sq] {
				fmt.Fprintf(&sb, "[%s]", cell)
			} else {
				fmt.Fprintf(&sb, " %s ", cell)
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   ")
	for _, f := range files {
		fmt.Fprintf(&sb, " %c ", 'a'+f)
	}
	sb.WriteString("\n")
	fmt.Fprint(b.w, sb.String())
}

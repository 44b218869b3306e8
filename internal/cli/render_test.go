package cli

import (
	"strings"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestGrid(t *testing.T) {
	g := grid(startFEN)
	if g[0][4] != 'K' {
		t.Fatalf("e1 = %q, want K", g[0][4])
	}
	if g[7][3] != 'q' {
		t.Fatalf("d8 = %q, want q", g[7][3])
	}
	if g[3][3] != 0 {
		t.Fatalf("d4 = %q, want empty", g[3][3])
	}
}

func TestRenderOrientation(t *testing.T) {
	var out strings.Builder
	b := NewTermBoard(&out)
	b.SetPosition(startFEN)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if !strings.HasPrefix(lines[0], " 8 ") {
		t.Fatalf("white orientation starts with %q", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "a") || !strings.Contains(lines[len(lines)-1], "h") {
		t.Fatalf("no file coordinates: %q", lines[len(lines)-1])
	}

	out.Reset()
	b.Orientation("black")
	b.Render()
	lines = strings.Split(strings.TrimSpace(out.String()), "\n")
	if !strings.HasPrefix(lines[0], " 1 ") {
		t.Fatalf("black orientation starts with %q", lines[0])
	}
}

func TestRenderHighlight(t *testing.T) {
	var out strings.Builder
	b := NewTermBoard(&out)
	b.SetPosition(startFEN)
	out.Reset()
	b.Highlight("e2")
	if !strings.Contains(out.String(), "[♙]") {
		t.Fatal("highlighted square not bracketed")
	}
}

func TestParseMove(t *testing.T) {
	if from, to, promo, ok := parseMove("e2e4"); !ok || from != "e2" || to != "e4" || promo != "" {
		t.Fatalf("e2e4 parsed as %s %s %s %v", from, to, promo, ok)
	}
	if _, _, promo, ok := parseMove("e7e8q"); !ok || promo != "q" {
		t.Fatalf("e7e8q promo = %q ok = %v", promo, ok)
	}
	for _, bad := range []string{"e2", "e2e9", "x2e4", "e7e8k", "helloo"} {
		if _, _, _, ok := parseMove(bad); ok {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestFormatMoveList(t *testing.T) {
	if got := formatMoveList(nil); got != "(no moves)" {
		t.Fatalf("empty list = %q", got)
	}
	got := formatMoveList([]string{"e4", "e5", "Nf3"})
	if got != "1. e4 e5  2. Nf3" {
		t.Fatalf("formatted = %q", got)
	}
}

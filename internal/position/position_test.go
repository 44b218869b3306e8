package position

import (
	"testing"

	"github.com/notnil/chess"
)

func TestApplyUCIReturnsSan(t *testing.T) {
	m := New()
	san, err := m.ApplyUCI("g1f3")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if san != "Nf3" {
		t.Fatalf("san = %q, want Nf3", san)
	}
	if m.Turn() != chess.Black {
		t.Fatalf("turn = %v, want black", m.Turn())
	}
}

func TestApplyUCIIllegal(t *testing.T) {
	m := New()
	if _, err := m.ApplyUCI("e2e5"); err == nil {
		t.Fatalf("expected error for illegal move")
	}
}

func TestProbeDoesNotMutate(t *testing.T) {
	m := New()
	before := m.Fen()
	if err := m.Probe("e2e4"); err != nil {
		t.Fatalf("probe legal move: %v", err)
	}
	if err := m.Probe("e2e5"); err == nil {
		t.Fatalf("expected probe to reject illegal move")
	}
	if m.Fen() != before {
		t.Fatalf("probe mutated position: %s -> %s", before, m.Fen())
	}
}

func TestPieceAt(t *testing.T) {
	m := New()
	if p := m.PieceAt("e2"); p.Type() != chess.Pawn || p.Color() != chess.White {
		t.Fatalf("e2 = %v, want white pawn", p)
	}
	if p := m.PieceAt("e4"); p != chess.NoPiece {
		t.Fatalf("e4 = %v, want empty", p)
	}
	if p := m.PieceAt("z9"); p != chess.NoPiece {
		t.Fatalf("bad square = %v, want NoPiece", p)
	}
}

func TestIsPromotion(t *testing.T) {
	m, err := NewFromFEN("8/4P3/8/8/8/8/4p2k/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("fen: %v", err)
	}
	if !m.IsPromotion("e7", "e8") {
		t.Fatalf("white pawn to e8 should promote")
	}
	if m.IsPromotion("e7", "e6") {
		t.Fatalf("pawn staying off the last rank should not promote")
	}
	if m.IsPromotion("a1", "a2") {
		t.Fatalf("king move flagged as promotion")
	}
}

func TestTerminalCheckmate(t *testing.T) {
	m := New()
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if _, err := m.ApplyUCI(uci); err != nil {
			t.Fatalf("apply %s: %v", uci, err)
		}
	}
	result, reason, over := m.Terminal()
	if !over || result != "0-1" || reason != "checkmate" {
		t.Fatalf("terminal = %q/%q/%v, want 0-1/checkmate/true", result, reason, over)
	}
}

func TestTerminalOngoing(t *testing.T) {
	m := New()
	if _, _, over := m.Terminal(); over {
		t.Fatalf("start position reported as over")
	}
}

func TestLoadFENReplacesPosition(t *testing.T) {
	m := New()
	fen := "8/4P3/8/8/8/8/7k/K7 w - - 0 1"
	if err := m.LoadFEN(fen); err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Fen() != fen {
		t.Fatalf("fen = %q, want %q", m.Fen(), fen)
	}
	if err := m.LoadFEN("not a fen"); err == nil {
		t.Fatalf("expected error for junk fen")
	}
}

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare("a1")
	if err != nil || sq != chess.A1 {
		t.Fatalf("a1 = %v/%v", sq, err)
	}
	sq, err = ParseSquare("h8")
	if err != nil || sq != chess.H8 {
		t.Fatalf("h8 = %v/%v", sq, err)
	}
	if _, err := ParseSquare("i9"); err == nil {
		t.Fatalf("expected error for off-board square")
	}
}

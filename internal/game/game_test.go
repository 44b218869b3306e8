package game

import (
	"strings"
	"testing"

	"chesstutor/internal/persona"
)

func newTestGame() *Game {
	reg, _ := persona.NewRegistry("")
	return New(reg, nil)
}

func TestMakeMoveValid(t *testing.T) {
	g := newTestGame()
	if err := g.MakeMove("e2e4"); err != nil {
		t.Fatalf("expected move to be valid, got error: %v", err)
	}
}

func TestMakeMoveInvalid(t *testing.T) {
	g := newTestGame()
	if err := g.MakeMove("e2e5"); err == nil {
		t.Fatalf("expected error for illegal move, got nil")
	}
}

func TestMakeMoveAfterEndRejected(t *testing.T) {
	g := newTestGame()
	g.End("resign", "black")
	if err := g.MakeMove("e2e4"); err == nil {
		t.Fatalf("expected move on ended game to fail")
	}
}

func TestLegalMovesAtStart(t *testing.T) {
	g := newTestGame()
	moves := g.LegalMoves()
	if len(moves) != 20 {
		t.Fatalf("start position has %d moves, want 20", len(moves))
	}
}

func TestCheckGameOverCheckmate(t *testing.T) {
	g := newTestGame()
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if err := g.MakeMove(uci); err != nil {
			t.Fatalf("move %s: %v", uci, err)
		}
	}
	over, reason, winner := g.CheckGameOver()
	if !over || reason != "checkmate" || winner != "black" {
		t.Fatalf("game over = %v/%q/%q", over, reason, winner)
	}
}

func TestEndIdempotent(t *testing.T) {
	g := newTestGame()
	g.SetPlayers("Wil", "white", "Sensei")
	_ = g.MakeMove("e2e4")

	first := g.End("resign", "black")
	if first.Result != "0-1" || first.Reason != "resign" {
		t.Fatalf("end = %+v", first)
	}
	second := g.End("checkmate", "white")
	if second != first {
		t.Fatalf("second end differs: %+v vs %+v", second, first)
	}
}

func TestEndStateIfEnded(t *testing.T) {
	g := newTestGame()
	g.SetPlayers("Wil", "white", "Sensei")
	_ = g.MakeMove("e2e4")

	if _, ok := g.EndStateIfEnded(); ok {
		t.Fatal("active game reported an end state")
	}
	end := g.End("resign", "black")
	got, ok := g.EndStateIfEnded()
	if !ok || got != end {
		t.Fatalf("end state = %+v/%v, want %+v", got, ok, end)
	}
}

func TestEndPGNPlacesUserOnTheirSide(t *testing.T) {
	g := newTestGame()
	g.SetPlayers("Wil", "black", "Ninja")
	_ = g.MakeMove("e2e4")
	end := g.End("resign", "white")
	if !strings.Contains(end.PGN, `[White "Ninja"]`) || !strings.Contains(end.PGN, `[Black "Wil"]`) {
		t.Fatalf("pgn headers wrong:\n%s", end.PGN)
	}
	if !strings.Contains(end.PGN, `[Termination "resign"]`) {
		t.Fatalf("missing termination header:\n%s", end.PGN)
	}
	if !strings.Contains(end.PGN, "1. e4") {
		t.Fatalf("missing moves:\n%s", end.PGN)
	}
}

func TestResetClearsEndState(t *testing.T) {
	g := newTestGame()
	_ = g.MakeMove("e2e4")
	g.End("resign", "black")
	g.Reset()
	if g.Status != StatusActive || g.Result != "" || g.FinalPGN != "" {
		t.Fatalf("reset left end state: %+v", g)
	}
	if err := g.MakeMove("e2e4"); err != nil {
		t.Fatalf("move after reset: %v", err)
	}
}

func TestLoadFEN(t *testing.T) {
	g := newTestGame()
	fen := "8/4P3/8/8/8/8/7k/K7 w - - 0 1"
	if err := g.LoadFEN(fen); err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.Fen() != fen {
		t.Fatalf("fen = %q", g.Fen())
	}
	if err := g.LoadFEN("garbage"); err == nil {
		t.Fatalf("expected error for bad fen")
	}
}

func TestFullmoveNumber(t *testing.T) {
	if n := fullmoveNumber("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"); n != 1 {
		t.Fatalf("n = %d", n)
	}
	if n := fullmoveNumber("8/8/8/8/8/8/7k/K7 w - - 30 42"); n != 42 {
		t.Fatalf("n = %d", n)
	}
	if n := fullmoveNumber("truncated"); n != 1 {
		t.Fatalf("n = %d", n)
	}
}

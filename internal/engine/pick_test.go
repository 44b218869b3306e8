package engine

import (
	"math/rand"
	"testing"

	"chesstutor/internal/persona"
)

func candidates() []Candidate {
	return []Candidate{
		{UCI: "e2e4", CP: 50},
		{UCI: "d2d4", CP: 40},
		{UCI: "g1f3", CP: 30},
	}
}

func TestPickMoveZeroTemperatureTakesBest(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sel, ok := PickMove(candidates(), PickParams{Temperature: 0}, rng)
	if !ok || sel.UCI != "e2e4" || sel.BestCP != 50 {
		t.Fatalf("selection = %+v ok=%v", sel, ok)
	}
}

func TestPickMoveEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, ok := PickMove(nil, PickParams{}, rng); ok {
		t.Fatalf("expected no selection for empty candidates")
	}
}

func TestPickMoveSamplesNonBest(t *testing.T) {
	// Hot sampling over near-equal moves must eventually leave the top line.
	rng := rand.New(rand.NewSource(42))
	sawOther := false
	for i := 0; i < 200; i++ {
		sel, ok := PickMove(candidates(), PickParams{Temperature: 3.0}, rng)
		if !ok {
			t.Fatalf("pick failed")
		}
		if sel.UCI != "e2e4" {
			sawOther = true
		}
	}
	if !sawOther {
		t.Fatalf("hot sampling never left the best move")
	}
}

func TestPickMoveEnforceNoBlunder(t *testing.T) {
	cands := []Candidate{
		{UCI: "e2e4", CP: 500},
		{UCI: "a2a3", CP: -200},
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		sel, _ := PickMove(cands, PickParams{
			Temperature:      5.0,
			EnforceNoBlunder: true,
			BlunderThreshold: 150,
		}, rng)
		if sel.Blunder {
			t.Fatalf("blunder slipped through enforcement")
		}
		if sel.UCI == "a2a3" {
			t.Fatalf("blunder move selected under enforcement")
		}
	}
}

func TestPickMoveFlagsBlunder(t *testing.T) {
	cands := []Candidate{
		{UCI: "e2e4", CP: 500},
		{UCI: "a2a3", CP: -200},
	}
	rng := rand.New(rand.NewSource(7))
	sawBlunder := false
	for i := 0; i < 200; i++ {
		sel, _ := PickMove(cands, PickParams{Temperature: 8.0, BlunderThreshold: 150}, rng)
		if sel.UCI == "a2a3" {
			if !sel.Blunder {
				t.Fatalf("700cp drop not flagged as blunder")
			}
			sawBlunder = true
		}
	}
	if !sawBlunder {
		t.Fatalf("sampling never produced the trailing move")
	}
}

func TestPickMoveMercyMate(t *testing.T) {
	cands := []Candidate{
		{UCI: "d8h4", CP: mateScore, Mate: true, MateIn: 2},
		{UCI: "a2a3", CP: 10},
	}
	cfg := persona.Config{Mercy: &persona.Mercy{MateIn: 3, MateKeepProb: 0}}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		sel, _ := PickMove(cands, PickParams{Config: cfg, Temperature: 1.0}, rng)
		if sel.UCI == "d8h4" {
			t.Fatalf("mate kept despite zero keep probability")
		}
	}
}

func TestPhaseAdjust(t *testing.T) {
	cfg := persona.Config{EndgameDepthDelta: -2, EndgameTempDelta: 0.3, PiecesThreshold: 10}
	endgame := "8/4P3/8/8/8/8/7k/K7 w - - 0 1"
	depth, temp := PhaseAdjust(cfg, endgame, 6, 1.0)
	if depth != 4 || temp != 1.3 {
		t.Fatalf("endgame adjust = %d/%v", depth, temp)
	}
	middle := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	depth, temp = PhaseAdjust(cfg, middle, 6, 1.0)
	if depth != 6 || temp != 1.0 {
		t.Fatalf("middlegame adjust = %d/%v", depth, temp)
	}
}

func TestMoodAdjust(t *testing.T) {
	if got := MoodAdjust(1.2, 300); got != 0.7 {
		t.Fatalf("shark adjust = %v, want 0.7", got)
	}
	if got := MoodAdjust(0.7, -400); got != 1.2 {
		t.Fatalf("tilt adjust = %v, want 1.2", got)
	}
	if got := MoodAdjust(0.3, 300); got != 0.3 {
		t.Fatalf("calm persona shifted = %v", got)
	}
}

func TestPieceCount(t *testing.T) {
	if n := PieceCount("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"); n != 30 {
		t.Fatalf("start count = %d, want 30", n)
	}
	if n := PieceCount("8/4P3/8/8/8/8/7k/K7 w - - 0 1"); n != 1 {
		t.Fatalf("endgame count = %d, want 1", n)
	}
}

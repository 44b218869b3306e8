package engine

import (
	"testing"

	"github.com/freeeve/uci"
)

func TestKeepDeepestDropsShallowIterations(t *testing.T) {
	res := &uci.Results{Results: []uci.ScoreResult{
		{Depth: 4, Score: 10, BestMoves: []string{"a2a3"}},
		{Depth: 8, Score: 35, BestMoves: []string{"e2e4", "e7e5"}},
		{Depth: 8, Score: 20, BestMoves: []string{"d2d4"}},
		{Depth: 6, Score: 60, BestMoves: []string{"b2b4"}},
	}}
	keepDeepest(res)
	if len(res.Results) != 2 {
		t.Fatalf("kept %d results, want 2", len(res.Results))
	}
	for _, r := range res.Results {
		if r.Depth != 8 {
			t.Fatalf("shallow result survived: depth %d", r.Depth)
		}
	}

	cands := convertResults(res)
	if len(cands) != 2 || cands[0].UCI != "e2e4" {
		t.Fatalf("candidates = %+v", cands)
	}
}

func TestKeepDeepestNilAndEmpty(t *testing.T) {
	keepDeepest(nil)
	empty := &uci.Results{}
	keepDeepest(empty)
	if len(empty.Results) != 0 {
		t.Fatalf("empty results grew: %d", len(empty.Results))
	}
}

func TestConvertResultsMateScores(t *testing.T) {
	res := &uci.Results{Results: []uci.ScoreResult{
		{Depth: 8, Score: 3, Mate: true, BestMoves: []string{"h5f7"}},
		{Depth: 8, Score: 120, BestMoves: []string{"d2d4"}},
	}}
	cands := convertResults(res)
	if len(cands) != 2 {
		t.Fatalf("candidates = %+v", cands)
	}
	if !cands[0].Mate || cands[0].UCI != "h5f7" || cands[0].CP != mateScore {
		t.Fatalf("mate candidate = %+v", cands[0])
	}
	if cands[0].MateIn != 3 {
		t.Fatalf("mate-in = %d", cands[0].MateIn)
	}
}

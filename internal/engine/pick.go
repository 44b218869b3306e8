package engine

import (
	"math"
	"math/rand"
	"strings"

	"chesstutor/internal/persona"
)

// defaultBlunderThreshold is the centipawn gap to best that counts a
// sampled move as a blunder when the persona has no mercy config.
const defaultBlunderThreshold = 150

// Selection is the outcome of a persona pick: the chosen move plus the
// evaluations needed for blunder accounting.
type Selection struct {
	UCI     string
	SelCP   int
	BestCP  int
	Blunder bool
}

// PickParams carries the per-request knobs for PickMove.
type PickParams struct {
	Config           persona.Config
	Temperature      float64 // effective temperature after phase/mood shifts
	EnforceNoBlunder bool
	BlunderThreshold int
}

// PickMove samples a move from best-first candidates. Temperature zero (or
// a single candidate) picks the best move outright. Otherwise weights decay
// softmax-like with the centipawn gap to best, scaled by the persona's rank
// curve, with mercy rules shaving probability off short mates and crushing
// moves.
func PickMove(cands []Candidate, p PickParams, rng *rand.Rand) (Selection, bool) {
	if len(cands) == 0 {
		return Selection{}, false
	}
	best := cands[0]
	if p.Temperature <= 0 || len(cands) == 1 {
		return Selection{UCI: best.UCI, SelCP: best.CP, BestCP: best.CP}, true
	}

	scale := p.Temperature
	if scale < 0.0001 {
		scale = 0.0001
	}
	weights := make([]float64, len(cands))
	for i, c := range cands {
		delta := float64(best.CP - c.CP)
		weights[i] = math.Exp(-(delta / 100.0) / scale)
	}

	if m := p.Config.Mercy; m != nil {
		if m.MateIn > 0 {
			for i, c := range cands {
				if c.Mate && abs(c.MateIn) <= m.MateIn {
					weights[i] *= m.MateKeepProb
				}
			}
		}
		if m.EvalGapThreshold > 0 && len(cands) > 1 {
			if best.CP-cands[1].CP >= m.EvalGapThreshold {
				weights[0] *= m.EvalKeepProb
			}
		}
	}

	curve := persona.CurveWeights(p.Config.Curve, len(weights))
	for i := range weights {
		weights[i] *= curve[i]
	}
	weights = persona.NormalizeWeights(weights)

	idx := sampleIndex(weights, rng)
	sel := cands[idx]

	threshold := p.BlunderThreshold
	if threshold <= 0 {
		threshold = defaultBlunderThreshold
	}
	blunder := best.CP-sel.CP >= threshold
	if p.EnforceNoBlunder && blunder {
		sel = best
		blunder = false
	}
	return Selection{UCI: sel.UCI, SelCP: sel.CP, BestCP: best.CP, Blunder: blunder}, true
}

func sampleIndex(weights []float64, rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// PhaseAdjust applies the persona's endgame rules: once few pieces remain,
// search shallower and sample hotter.
func PhaseAdjust(cfg persona.Config, fen string, depth int, temperature float64) (int, float64) {
	threshold := cfg.PiecesThreshold
	if threshold == 0 {
		threshold = 10
	}
	if PieceCount(fen) <= threshold {
		depth += cfg.EndgameDepthDelta
		if depth < 1 {
			depth = 1
		}
		temperature += cfg.EndgameTempDelta
	}
	return depth, temperature
}

// MoodAdjust shifts temperature from the engine's running evaluation:
// a clearly winning stochastic persona tightens up (shark instinct), a
// badly losing one loosens (tilt).
func MoodAdjust(temperature float64, lastBestEval int) float64 {
	if lastBestEval > 200 && temperature > 0.5 {
		temperature -= 0.5
		if temperature < 0 {
			temperature = 0
		}
	}
	if lastBestEval < -300 {
		temperature += 0.5
	}
	return temperature
}

// PieceCount counts the non-king pieces in a FEN board field.
func PieceCount(fen string) int {
	board := fen
	if i := strings.IndexByte(fen, ' '); i >= 0 {
		board = fen[:i]
	}
	n := 0
	for _, r := range board {
		switch r {
		case 'k', 'K', '/', '1', '2', '3', '4', '5', '6', '7', '8':
		default:
			n++
		}
	}
	return n
}

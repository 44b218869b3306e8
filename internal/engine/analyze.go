package engine

import "fmt"

// Analysis is a position evaluation for the study tools: best move, a
// white-perspective score and the first moves of the principal variation.
type Analysis struct {
	BestMove     string   `json:"best_move"`
	Score        any      `json:"score"` // centipawn int, or "M3"/"M-3" for mates
	Continuation []string `json:"continuation"`
}

// Analyze evaluates fen for roughly timeLimit seconds and reports the best
// line. Scores are normalized to White's point of view using the side to
// move encoded in the FEN.
func Analyze(s Searcher, fen string, timeLimit float64) (Analysis, error) {
	out := Analysis{Continuation: []string{}}
	if s == nil {
		return out, ErrNoEngine
	}
	ms := int(timeLimit * 1000)
	cands, err := s.SearchTime(fen, ms)
	if err != nil {
		return out, fmt.Errorf("analyze: %w", err)
	}
	if len(cands) == 0 {
		return out, nil
	}
	best := cands[0]
	out.BestMove = best.UCI
	for i, mv := range best.PV {
		if i >= 3 {
			break
		}
		out.Continuation = append(out.Continuation, mv)
	}

	// Engine scores are side-to-move relative; flip when Black moves.
	whiteToMove := sideToMove(fen) != "b"
	if best.Mate {
		mate := best.MateIn
		if !whiteToMove {
			mate = -mate
		}
		if mate >= 0 {
			out.Score = fmt.Sprintf("M%d", mate)
		} else {
			out.Score = fmt.Sprintf("M-%d", -mate)
		}
	} else {
		cp := best.CP
		if !whiteToMove {
			cp = -cp
		}
		out.Score = cp
	}
	return out, nil
}

func sideToMove(fen string) string {
	fields := make([]string, 0, 2)
	start := 0
	for i := 0; i <= len(fen) && len(fields) < 2; i++ {
		if i == len(fen) || fen[i] == ' ' {
			fields = append(fields, fen[start:i])
			start = i + 1
		}
	}
	if len(fields) < 2 {
		return "w"
	}
	return fields[1]
}

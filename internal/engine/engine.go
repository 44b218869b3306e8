// Package engine drives an external UCI chess engine (Stockfish or
// compatible) for opponent replies and position analysis. Persona behavior
// lives in the move picker, which samples among the engine's MultiPV
// candidates instead of always playing the top line.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/freeeve/uci"

	"chesstutor/internal/persona"
)

// mateScore is the centipawn stand-in for a forced mate when ranking
// candidates.
const mateScore = 100000

// ErrNoEngine is returned when no engine binary is configured.
var ErrNoEngine = errors.New("no engine configured")

// Candidate is one engine-suggested move with its evaluation from the side
// to move's point of view.
type Candidate struct {
	UCI    string
	CP     int // centipawns; mateScore-based when Mate
	MateIn int
	Mate   bool
	PV     []string
}

// Searcher is the engine capability the game layer depends on. A nil or
// fake Searcher stands in during tests and when the tutor runs engineless.
type Searcher interface {
	// Search evaluates fen to depth with multipv candidate lines,
	// best-first.
	Search(fen string, depth, multipv int) ([]Candidate, error)
	// SearchTime evaluates fen for roughly ms milliseconds, single line.
	SearchTime(fen string, ms int) ([]Candidate, error)
	// SetStrength applies strength-limiting options (Skill Level,
	// UCI_LimitStrength/UCI_Elo) before the next search.
	SetStrength(opts persona.UCIOptions) error
	Close()
}

// UCIEngine is a Searcher backed by a freeeve/uci engine process.
type UCIEngine struct {
	eng  *uci.Engine
	path string
}

// NewUCIEngine starts the engine binary at path.
func NewUCIEngine(path string) (*UCIEngine, error) {
	if path == "" {
		return nil, ErrNoEngine
	}
	eng, err := uci.NewEngine(path)
	if err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}
	return &UCIEngine{eng: eng, path: path}, nil
}

// Search implements Searcher.
func (e *UCIEngine) Search(fen string, depth, multipv int) ([]Candidate, error) {
	if multipv < 1 {
		multipv = 1
	}
	if depth < 1 {
		depth = 1
	}
	err := e.eng.SetOptions(uci.Options{
		MultiPV: multipv,
		Hash:    128,
		Ponder:  false,
		OwnBook: true,
	})
	if err != nil {
		return nil, fmt.Errorf("engine options: %w", err)
	}
	if err := e.eng.SetFEN(fen); err != nil {
		return nil, fmt.Errorf("engine setfen: %w", err)
	}
	res, err := e.eng.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return nil, fmt.Errorf("engine search: %w", err)
	}
	return convertResults(res), nil
}

// SearchTime implements Searcher.
func (e *UCIEngine) SearchTime(fen string, ms int) ([]Candidate, error) {
	if ms < 1 {
		ms = 1
	}
	err := e.eng.SetOptions(uci.Options{
		MultiPV: 1,
		Hash:    128,
		Ponder:  false,
		OwnBook: true,
	})
	if err != nil {
		return nil, fmt.Errorf("engine options: %w", err)
	}
	if err := e.eng.SetFEN(fen); err != nil {
		return nil, fmt.Errorf("engine setfen: %w", err)
	}
	// Timed search reports every iteration's info line; the final depth
	// is not known up front, so the deepest results are filtered here
	// instead of through HighestDepthOnly.
	res, err := e.eng.Go(0, "", int64(ms))
	if err != nil {
		return nil, fmt.Errorf("engine search: %w", err)
	}
	keepDeepest(res)
	return convertResults(res), nil
}

// SetStrength implements Searcher. Unknown options are ignored by the
// engine per the UCI protocol, so sending all three is safe.
func (e *UCIEngine) SetStrength(opts persona.UCIOptions) error {
	if err := e.eng.SendOption("Skill Level", opts.SkillLevel); err != nil {
		return fmt.Errorf("engine skill: %w", err)
	}
	if err := e.eng.SendOption("UCI_LimitStrength", opts.LimitStrength); err != nil {
		return fmt.Errorf("engine limit strength: %w", err)
	}
	if opts.LimitStrength && opts.Elo > 0 {
		if err := e.eng.SendOption("UCI_Elo", opts.Elo); err != nil {
			return fmt.Errorf("engine elo: %w", err)
		}
	}
	return nil
}

// keepDeepest drops all but the deepest iteration's results.
func keepDeepest(res *uci.Results) {
	if res == nil || len(res.Results) == 0 {
		return
	}
	max := res.Results[0].Depth
	for _, r := range res.Results {
		if r.Depth > max {
			max = r.Depth
		}
	}
	kept := res.Results[:0]
	for _, r := range res.Results {
		if r.Depth == max {
			kept = append(kept, r)
		}
	}
	res.Results = kept
}

// Close shuts the engine process down.
func (e *UCIEngine) Close() {
	e.eng.Close()
}

func convertResults(res *uci.Results) []Candidate {
	if res == nil {
		return nil
	}
	cands := make([]Candidate, 0, len(res.Results))
	for _, r := range res.Results {
		if len(r.BestMoves) == 0 {
			continue
		}
		c := Candidate{UCI: r.BestMoves[0], PV: r.BestMoves}
		if r.Mate {
			c.Mate = true
			c.MateIn = r.Score
			if r.Score >= 0 {
				c.CP = mateScore
			} else {
				c.CP = -mateScore
			}
		} else {
			c.CP = r.Score
		}
		cands = append(cands, c)
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].CP > cands[j].CP })
	if len(cands) == 0 && res.BestMove != "" {
		cands = append(cands, Candidate{UCI: res.BestMove})
	}
	return cands
}

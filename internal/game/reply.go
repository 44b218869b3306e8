package game

import (
	"fmt"
	"math/rand"
	"time"

	"chesstutor/internal/engine"
	"chesstutor/internal/logging"
	"chesstutor/internal/persona"
)

// ReplyParams are the engine knobs accepted by the move and engine-reply
// endpoints.
type ReplyParams struct {
	Time    float64 // seconds; DefaultEngineTime when zero
	Skill   *int    // optional skill level, used without a persona
	Persona string  // persona name; empty for raw engine play
	Seed    *int64  // optional RNG seed for reproducible sampling
}

// EngineReply asks the engine for the bot's move and applies it. Returns
// the chosen move in UCI form.
func (g *Game) EngineReply(p ReplyParams) (string, error) {
	g.mu.Lock()
	if g.Status == StatusEnded {
		g.mu.Unlock()
		return "", ErrGameEnded
	}
	searcher := g.searcher
	fen := g.g.Position().String()
	lastEval := g.LastBestEval
	g.mu.Unlock()

	if searcher == nil {
		return "", engine.ErrNoEngine
	}

	if p.Persona != "" {
		uci, err := g.personaReply(searcher, fen, lastEval, p)
		if err == nil {
			return uci, g.applyReply(uci)
		}
		logging.Errorf("persona reply failed, falling back to timed play: %v", err)
	}

	uci, err := g.fallbackReply(searcher, fen, p)
	if err != nil {
		return "", err
	}
	return uci, g.applyReply(uci)
}

func (g *Game) personaReply(searcher engine.Searcher, fen string, lastEval int, p ReplyParams) (string, error) {
	cfg, err := g.personas.Get(p.Persona)
	if err != nil {
		return "", err
	}

	var rng *rand.Rand
	if p.Seed != nil {
		rng = rand.New(rand.NewSource(*p.Seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if err := searcher.SetStrength(cfg.UCI); err != nil {
		return "", err
	}

	depth, temp := engine.PhaseAdjust(cfg, fen, cfg.Depth, cfg.PickTemperature)
	temp = engine.MoodAdjust(temp, lastEval)

	multipv := cfg.MultiPV
	if temp <= 0 {
		multipv = 1
	}
	cands, err := searcher.Search(fen, depth, multipv)
	if err != nil {
		return "", err
	}

	remaining := g.blunderBudgetFor(p.Persona, cfg)
	threshold := 150
	if cfg.Mercy != nil && cfg.Mercy.EvalGapThreshold > 0 {
		threshold = cfg.Mercy.EvalGapThreshold
	}
	sel, ok := engine.PickMove(cands, engine.PickParams{
		Config:           cfg,
		Temperature:      temp,
		EnforceNoBlunder: remaining <= 0,
		BlunderThreshold: threshold,
	}, rng)
	if !ok {
		return "", fmt.Errorf("engine returned no candidates")
	}

	g.mu.Lock()
	g.LastBestEval = sel.BestCP
	if sel.Blunder && g.blunderBudget[p.Persona] > 0 {
		g.blunderBudget[p.Persona]--
	}
	g.mu.Unlock()
	return sel.UCI, nil
}

// fallbackReply is raw engine play at a time limit, playing faster through
// the opening the way a human would. A skill level configures the engine's
// own strength limiting (Skill Level plus UCI_Elo at 1200 + 50 per level)
// rather than changing the search itself.
func (g *Game) fallbackReply(searcher engine.Searcher, fen string, p ReplyParams) (string, error) {
	if p.Skill != nil {
		skill := *p.Skill
		if skill < 0 {
			skill = 0
		}
		if skill > 20 {
			skill = 20
		}
		opts := persona.UCIOptions{SkillLevel: skill}
		if skill < 20 {
			opts.LimitStrength = true
			opts.Elo = 1200 + 50*skill
		}
		if err := searcher.SetStrength(opts); err != nil {
			return "", err
		}
	}

	limit := p.Time
	if limit <= 0 {
		limit = persona.DefaultEngineTime
	}
	if fullmoveNumber(fen) < 10 {
		limit *= 0.6
	}
	cands, err := searcher.SearchTime(fen, int(limit*1000))
	if err != nil {
		return "", err
	}
	if len(cands) == 0 {
		return "", fmt.Errorf("engine returned no candidates")
	}
	return cands[0].UCI, nil
}

func (g *Game) applyReply(uci string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.g.MoveStr(uci); err != nil {
		return fmt.Errorf("apply engine move %s: %w", uci, err)
	}
	return nil
}

func (g *Game) blunderBudgetFor(name string, cfg persona.Config) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.blunderBudget[name]; !ok {
		g.blunderBudget[name] = cfg.AllowedBlunders
	}
	return g.blunderBudget[name]
}

// Package persona defines the tutor's opponent personalities: engine
// configuration plus the sampling rules that make a bot play like a beginner
// rather than a 3500-rated machine. Defaults are compiled in; a YAML
// overrides file can retune any persona without a rebuild.
package persona

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultEngineTime is the search time (seconds) used for persona-driven
// replies when the caller does not pass one.
const DefaultEngineTime = 0.35

// Mercy softens a persona: forced mates and crushing moves get their
// selection probability scaled down so weak bots miss them sometimes.
type Mercy struct {
	MateIn           int     `yaml:"mate_in"`
	MateKeepProb     float64 `yaml:"mate_keep_prob"`
	EvalGapThreshold int     `yaml:"eval_gap_threshold"`
	EvalKeepProb     float64 `yaml:"eval_keep_prob"`
}

// Curve biases move selection by candidate rank.
type Curve struct {
	Type    string    `yaml:"type"` // "table" or "power"
	Weights []float64 `yaml:"weights,omitempty"`
	Alpha   float64   `yaml:"alpha,omitempty"`
}

// UCIOptions are the engine options a persona configures.
type UCIOptions struct {
	LimitStrength bool `yaml:"limit_strength"`
	Elo           int  `yaml:"elo"`
	SkillLevel    int  `yaml:"skill_level"`
	MultiPV       int  `yaml:"multipv"`
}

// Config is the full tuning for one persona.
type Config struct {
	UCI               UCIOptions `yaml:"uci"`
	Depth             int        `yaml:"depth"`
	PickTemperature   float64    `yaml:"pick_temperature"`
	MultiPV           int        `yaml:"multipv"`
	Mercy             *Mercy     `yaml:"mercy"`
	EndgameDepthDelta int        `yaml:"endgame_depth_delta"`
	EndgameTempDelta  float64    `yaml:"endgame_temp_delta"`
	PiecesThreshold   int        `yaml:"pieces_threshold"`
	Curve             *Curve     `yaml:"curve"`
	AllowedBlunders   int        `yaml:"allowed_blunders"`
}

// Preset maps a UI opponent choice to canonical engine parameters.
type Preset struct {
	DisplayName string
	Persona     string // empty for a human opponent
	Skill       int
	SkillSet    bool
	EngineTime  float64 // seconds
}

// Presets is the canonical opponent table shown by the UI, keyed by
// lowercase preset name.
var Presets = map[string]Preset{
	"human":       {DisplayName: "Human"},
	"grasshopper": {DisplayName: "Grasshopper", Persona: "grasshopper", Skill: 0, SkillSet: true, EngineTime: 0.25},
	"student":     {DisplayName: "Student", Persona: "student", Skill: 2, SkillSet: true, EngineTime: 0.30},
	"adept":       {DisplayName: "Adept", Persona: "adept", Skill: 5, SkillSet: true, EngineTime: 0.35},
	"ninja":       {DisplayName: "Ninja", Persona: "ninja", Skill: 8, SkillSet: true, EngineTime: 0.40},
	"sensei":      {DisplayName: "Sensei", Persona: "sensei", Skill: 12, SkillSet: true, EngineTime: 0.5},
}

func defaults() map[string]Config {
	return map[string]Config{
		"grasshopper": {
			UCI:               UCIOptions{LimitStrength: true, Elo: 450, SkillLevel: 0, MultiPV: 10},
			Depth:             4,
			PickTemperature:   2.5,
			MultiPV:           10,
			Mercy:             &Mercy{MateIn: 4, MateKeepProb: 0.03, EvalGapThreshold: 300, EvalKeepProb: 0.15},
			EndgameDepthDelta: -2,
			EndgameTempDelta:  0.3,
			PiecesThreshold:   10,
			Curve:             &Curve{Type: "table", Weights: []float64{1, 2, 6, 10, 14, 14, 10, 6, 4, 3}},
			AllowedBlunders:   3,
		},
		"student": {
			UCI:               UCIOptions{LimitStrength: true, Elo: 750, SkillLevel: 2, MultiPV: 10},
			Depth:             6,
			PickTemperature:   1.6,
			MultiPV:           10,
			Mercy:             &Mercy{MateIn: 3, MateKeepProb: 0.15, EvalGapThreshold: 400, EvalKeepProb: 0.30},
			EndgameDepthDelta: -2,
			EndgameTempDelta:  0.3,
			PiecesThreshold:   10,
			Curve:             &Curve{Type: "table", Weights: []float64{8, 10, 10, 8, 6, 4, 2, 1, 1, 1}},
			AllowedBlunders:   2,
		},
		"adept": {
			UCI:               UCIOptions{LimitStrength: true, Elo: 1175, SkillLevel: 5, MultiPV: 10},
			Depth:             8,
			PickTemperature:   1.2,
			MultiPV:           10,
			Mercy:             &Mercy{MateIn: 2, MateKeepProb: 0.55, EvalGapThreshold: 525, EvalKeepProb: 0.60},
			EndgameDepthDelta: -1,
			EndgameTempDelta:  0.3,
			PiecesThreshold:   10,
			Curve:             &Curve{Type: "table", Weights: []float64{16, 14, 10, 6, 4, 2, 1, 1, 1, 1}},
			AllowedBlunders:   1,
		},
		"ninja": {
			UCI:               UCIOptions{LimitStrength: true, Elo: 1450, SkillLevel: 8, MultiPV: 10},
			Depth:             10,
			PickTemperature:   0.7,
			MultiPV:           10,
			Mercy:             &Mercy{MateIn: 1, MateKeepProb: 0.90, EvalGapThreshold: 700, EvalKeepProb: 0.85},
			EndgameDepthDelta: -1,
			EndgameTempDelta:  0.3,
			PiecesThreshold:   10,
			Curve:             &Curve{Type: "table", Weights: []float64{28, 20, 12, 6, 3, 1, 1, 1, 1, 1}},
			AllowedBlunders:   1,
		},
		"sensei": {
			UCI:               UCIOptions{LimitStrength: true, Elo: 1700, SkillLevel: 12, MultiPV: 10},
			Depth:             14,
			PickTemperature:   0.0,
			MultiPV:           10,
			EndgameDepthDelta: -1,
			EndgameTempDelta:  0.0,
			PiecesThreshold:   10,
			Curve:             &Curve{Type: "table", Weights: []float64{64, 16, 4, 1, 1, 1, 1, 1, 1, 1}},
			AllowedBlunders:   0,
		},
	}
}

// Registry resolves persona names to configs, applying overrides loaded
// from a YAML file on top of the compiled-in defaults.
type Registry struct {
	mu        sync.RWMutex
	configs   map[string]Config
	overrides map[string]Config
	path      string
}

// ErrUnknownPersona is returned for names not present in the registry.
var ErrUnknownPersona = errors.New("unknown persona")

// NewRegistry returns a registry with default personas. When path is
// non-empty, overrides are loaded from it; a missing file is not an error.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{configs: defaults(), overrides: map[string]Config{}, path: path}
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read persona overrides: %w", err)
	}
	loaded := map[string]Config{}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse persona overrides: %w", err)
	}
	for name, cfg := range loaded {
		r.overrides[strings.ToLower(name)] = cfg
	}
	return r, nil
}

// List returns the known persona names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make(map[string]struct{}, len(r.configs)+len(r.overrides))
	for n := range r.configs {
		names[n] = struct{}{}
	}
	for n := range r.overrides {
		names[n] = struct{}{}
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Allowed reports whether name resolves to a persona.
func (r *Registry) Allowed(name string) bool {
	if name == "" {
		return false
	}
	_, err := r.Get(name)
	return err == nil
}

// Get resolves a persona config by name (case-insensitive). Overrides take
// precedence over defaults whole-persona.
func (r *Registry) Get(name string) (Config, error) {
	key := strings.ToLower(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cfg, ok := r.overrides[key]; ok {
		return cfg, nil
	}
	if cfg, ok := r.configs[key]; ok {
		return cfg, nil
	}
	return Config{}, fmt.Errorf("%w: %s", ErrUnknownPersona, name)
}

// SetOverride installs (and persists) an override for name.
func (r *Registry) SetOverride(name string, cfg Config) error {
	key := strings.ToLower(name)
	if key == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownPersona)
	}
	r.mu.Lock()
	r.overrides[key] = cfg
	r.mu.Unlock()
	return r.save()
}

// ResetOverride removes the override for name, restoring the default.
func (r *Registry) ResetOverride(name string) error {
	r.mu.Lock()
	delete(r.overrides, strings.ToLower(name))
	r.mu.Unlock()
	return r.save()
}

// save writes the override map to the YAML file atomically.
func (r *Registry) save() error {
	if r.path == "" {
		return nil
	}
	r.mu.RLock()
	data, err := yaml.Marshal(r.overrides)
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode persona overrides: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("persona overrides dir: %w", err)
		}
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write persona overrides: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace persona overrides: %w", err)
	}
	return nil
}

// Package session is the client core of the tutor: it turns board gestures
// into server-acknowledged moves while keeping the local position, the move
// history and the game lifecycle consistent with what the server confirms.
//
// A Session mirrors a single-threaded UI event loop: its methods must be
// called from one goroutine. The only suspension points are server
// round-trips, guarded by in-flight flags rather than locks.
package session

import (
	"context"
	"fmt"

	"chesstutor/internal/history"
	"chesstutor/internal/logging"
	"chesstutor/internal/position"
)

// Phase is the UI lifecycle state gating which interactions are allowed.
type Phase int

const (
	// PhaseSetup is pre-game configuration: side and opponent may change,
	// no moves are accepted.
	PhaseSetup Phase = iota
	// PhaseInGame accepts moves.
	PhaseInGame
	// PhaseResult is terminal: read-only, with replay and export allowed.
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "SETUP"
	case PhaseInGame:
		return "IN_GAME"
	case PhaseResult:
		return "RESULT"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Config is the per-game setup chosen during SETUP.
type Config struct {
	UserName       string
	UserSide       string // "white" or "black"
	OpponentName   string
	EnginePersona  string
	OpponentPreset string
	EngineTime     float64
	EngineSkill    *int
	EngineEnabled  bool // false for human-vs-human on one board
}

// StatusFunc receives human-readable status line updates. Observability
// only; never part of the state contract.
type StatusFunc func(text string)

// Session owns the client-side game state: position model, history ledger,
// lifecycle phase and the flags serializing server traffic.
type Session struct {
	rules  *position.Model
	ledger *history.Ledger
	board  Board
	server GameServer
	status StatusFunc

	phase     Phase
	freeBoard bool
	cfg       Config

	moveInFlight bool
	engineBusy   bool
	saved        bool
	resultText   string

	pending  *PendingPromotion
	selected string

	// Monotonic request sequence; a response whose sequence is stale is
	// discarded instead of written into current state.
	seq uint64

	// initialFEN is the confirmed position the current game started from,
	// used for captured-piece diffing.
	initialFEN string
}

// New builds a session around its collaborators. A missing board or server
// is a fatal initialization error: nothing downstream can work without
// them.
func New(board Board, server GameServer, cfg Config, status StatusFunc) (*Session, error) {
	if board == nil {
		return nil, fmt.Errorf("%w: board widget", ErrMissingCapability)
	}
	if server == nil {
		return nil, fmt.Errorf("%w: game server", ErrMissingCapability)
	}
	if status == nil {
		status = func(string) {}
	}
	if cfg.UserSide != "black" {
		cfg.UserSide = "white"
	}
	if cfg.UserName == "" {
		cfg.UserName = "Player"
	}
	if cfg.OpponentName == "" {
		cfg.OpponentName = "Opponent"
	}
	s := &Session{
		rules:  position.New(),
		ledger: history.New(),
		board:  board,
		server: server,
		status: status,
		phase:  PhaseSetup,
		cfg:    cfg,
	}
	s.initialFEN = s.rules.Fen()
	board.SetPosition(s.initialFEN)
	board.Orientation(cfg.UserSide)
	return s, nil
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase { return s.phase }

// Config returns the current game setup.
func (s *Session) Config() Config { return s.cfg }

// SetConfig replaces the game setup. Only valid during SETUP.
func (s *Session) SetConfig(cfg Config) error {
	if s.phase != PhaseSetup {
		return fmt.Errorf("configuration is only editable before the game starts")
	}
	if cfg.UserSide != "black" {
		cfg.UserSide = "white"
	}
	s.cfg = cfg
	return nil
}

// Fen returns the position currently displayed.
func (s *Session) Fen() string { return s.rules.Fen() }

// ResultText returns the terminal result line, empty until RESULT.
func (s *Session) ResultText() string { return s.resultText }

// Ledger exposes the history for read-only display (move list, counts).
func (s *Session) Ledger() *history.Ledger { return s.ledger }

// StartGame runs SETUP -> IN_GAME: clears history, asks the server for a
// fresh position (keeping a custom one loaded in free-board mode when
// keepPosition is set) and, when the human plays second, requests one
// automated reply before yielding control.
func (s *Session) StartGame(ctx context.Context, keepPosition bool) error {
	if s.phase == PhaseInGame {
		return fmt.Errorf("game already in progress")
	}
	// Invalidate any response still in flight for the previous game.
	s.seq++
	s.ledger.Clear()
	s.pending = nil
	s.selected = ""
	s.saved = false
	s.resultText = ""
	s.freeBoard = false

	var fen string
	if keepPosition {
		fen = s.rules.Fen()
		if err := s.server.SetFEN(ctx, fen); err != nil {
			s.status("Could not start: " + err.Error())
			return err
		}
	} else {
		state, err := s.server.Reset(ctx)
		if err != nil {
			s.status("Could not start: " + err.Error())
			return err
		}
		fen = state.FEN
	}
	if err := s.rules.LoadFEN(fen); err != nil {
		return fmt.Errorf("server sent unusable position: %w", err)
	}
	s.initialFEN = fen
	s.ledger.Push(fen)
	s.board.SetPosition(fen)
	s.board.Orientation(s.cfg.UserSide)
	s.phase = PhaseInGame
	s.status("Game on — you play " + s.cfg.UserSide)

	if s.cfg.UserSide == "black" && s.cfg.EngineEnabled {
		if err := s.RequestEngineReply(ctx); err != nil {
			logging.Errorf("opening engine reply: %v", err)
		}
	}
	return nil
}

// NewGame runs RESULT -> SETUP (also usable from IN_GAME as an abort):
// clears all game and termination state.
func (s *Session) NewGame() {
	s.phase = PhaseSetup
	s.seq++
	s.ledger.Clear()
	s.pending = nil
	s.selected = ""
	s.moveInFlight = false
	s.engineBusy = false
	s.saved = false
	s.resultText = ""
	s.freeBoard = false
	s.rules = position.New()
	s.initialFEN = s.rules.Fen()
	s.board.ClearHighlights()
	s.board.SetPosition(s.initialFEN)
	s.status("Set up the next game")
}

// Resign concedes the game for the user's side.
func (s *Session) Resign(ctx context.Context) error {
	if s.phase != PhaseInGame {
		return ErrNotInGame
	}
	out, err := s.server.Resign(ctx, s.cfg.UserSide, s.cfg.UserSide, s.cfg.UserName, s.cfg.OpponentName, s.cfg.EngineEnabled)
	if err != nil {
		s.status(describeError(err))
		return err
	}
	s.finishGame(ctx, out.Result, out.Reason, out.PGN)
	return nil
}

// EnterFreeBoard switches to position-editing mode. Mutually exclusive
// with an active game; move submission is disabled until the next start.
func (s *Session) EnterFreeBoard() error {
	if s.phase == PhaseInGame {
		return fmt.Errorf("finish or abandon the game before editing the board")
	}
	s.freeBoard = true
	s.phase = PhaseSetup
	s.status("Free board: set up a position, then start the game")
	return nil
}

// LoadPosition sets an arbitrary FEN while in free-board mode.
func (s *Session) LoadPosition(fen string) error {
	if !s.freeBoard {
		return fmt.Errorf("not in free-board mode")
	}
	if err := s.rules.LoadFEN(fen); err != nil {
		return err
	}
	s.initialFEN = fen
	s.board.SetPosition(fen)
	return nil
}

// FreeBoard reports whether position editing is active.
func (s *Session) FreeBoard() bool { return s.freeBoard }

// finishGame is the single convergence point of all three terminal paths
// (local detection, server-reported game over, resignation).
func (s *Session) finishGame(ctx context.Context, result, reason, pgn string) {
	if s.phase == PhaseResult {
		// Already terminal; the same response processed twice must not
		// save twice or rewrite the result.
		return
	}
	s.phase = PhaseResult
	s.pending = nil
	s.selected = ""
	s.board.ClearHighlights()
	if result == "" {
		result = "*"
	}
	s.resultText = result
	if reason != "" {
		s.resultText = result + " (" + reason + ")"
	}
	s.status("Game over: " + s.resultText)
	s.saveRecordOnce(ctx, result, pgn)
}

// saveRecordOnce persists the finished game on the server exactly once.
func (s *Session) saveRecordOnce(ctx context.Context, result, pgn string) {
	if s.saved {
		return
	}
	s.saved = true
	file, err := s.server.SavePGN(ctx, SaveRequest{
		PGNText:      pgn,
		Result:       result,
		UserSide:     s.cfg.UserSide,
		UserName:     s.cfg.UserName,
		OpponentName: s.cfg.OpponentName,
		Engine:       s.cfg.EngineEnabled,
	})
	if err != nil {
		logging.Errorf("save game record: %v", err)
		return
	}
	s.status("Saved " + file)
}

// describeError renders the error taxonomy as a status line.
func describeError(err error) string {
	switch e := err.(type) {
	case *TransportError:
		return "Network error — could not reach the server"
	case *RejectionError:
		return "Move rejected: " + e.Reason
	default:
		return err.Error()
	}
}

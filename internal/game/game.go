// Package game holds the server-authoritative chess game: one game per
// process, validated with notnil/chess, finalized exactly once into a PGN
// record.
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"

	"chesstutor/internal/engine"
	"chesstutor/internal/persona"
)

// Status is the game lifecycle on the server side.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusEnded  Status = "ENDED"
)

var (
	// ErrInvalidUCI is returned for unparseable or illegal move strings.
	ErrInvalidUCI = errors.New("invalid_uci")
	// ErrIllegalMove is returned when the move is not legal in the
	// current position.
	ErrIllegalMove = errors.New("illegal")
	// ErrGameEnded is returned for mutations after finalization.
	ErrGameEnded = errors.New("game_ended")
)

// EndState is the payload of a finalized game.
type EndState struct {
	Reason string
	Result string
	PGN    string
}

// Game is the single authoritative chess game with its engine and persona
// wiring. All exported methods are safe for concurrent use.
type Game struct {
	mu sync.Mutex

	g  *chess.Game
	ID uuid.UUID

	Status    Status
	EndReason string
	Result    string
	FinalPGN  string
	EndedAt   *time.Time
	LastSeen  time.Time

	// Player info for PGN headers.
	UserName     string
	OpponentName string
	UserSide     string // "white" or "black"

	// Running engine evaluation (white-agnostic, side-to-move cp of the
	// best line) used for shark/tilt temperature shifts.
	LastBestEval int

	personas      *persona.Registry
	searcher      engine.Searcher
	blunderBudget map[string]int
}

// New creates a fresh game at the starting position. searcher may be nil
// (engine endpoints then degrade gracefully).
func New(personas *persona.Registry, searcher engine.Searcher) *Game {
	return &Game{
		g:             chess.NewGame(chess.UseNotation(chess.UCINotation{})),
		ID:            uuid.New(),
		Status:        StatusActive,
		LastSeen:      time.Now(),
		UserName:      "Player",
		OpponentName:  "Opponent",
		UserSide:      "white",
		personas:      personas,
		searcher:      searcher,
		blunderBudget: map[string]int{},
	}
}

// Touch updates the last seen timestamp.
func (g *Game) Touch() {
	g.mu.Lock()
	g.LastSeen = time.Now()
	g.mu.Unlock()
}

// Fen returns the current position.
func (g *Game) Fen() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.g.Position().String()
}

// LegalMoves lists the legal moves in UCI form.
func (g *Game) LegalMoves() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	pos := g.g.Position()
	notation := chess.UCINotation{}
	moves := pos.ValidMoves()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, notation.Encode(pos, m))
	}
	return out
}

// MovesUCI returns the played moves in UCI notation by replaying them on a
// scratch game, so each move is encoded against the position it was played
// from.
func (g *Game) MovesUCI() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.movesUCILocked()
}

func (g *Game) movesUCILocked() []string {
	ms := g.g.Moves()
	out := make([]string, 0, len(ms))
	tmp := chess.NewGame()
	notation := chess.UCINotation{}
	for _, m := range ms {
		s := notation.Encode(tmp.Position(), m)
		out = append(out, s)
		if mv2, err := notation.Decode(tmp.Position(), s); err == nil {
			_ = tmp.Move(mv2)
		}
	}
	return out
}

// SetPlayers records player identities for the eventual PGN headers.
// Empty values keep the current ones.
func (g *Game) SetPlayers(userName, userSide, opponentName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if userName != "" {
		g.UserName = userName
	}
	if userSide == "white" || userSide == "black" {
		g.UserSide = userSide
	}
	if opponentName != "" {
		g.OpponentName = opponentName
	}
}

// MakeMove validates and applies a UCI move.
func (g *Game) MakeMove(uci string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status == StatusEnded {
		return ErrGameEnded
	}
	uci = strings.ToLower(strings.TrimSpace(uci))
	if len(uci) != 4 && len(uci) != 5 {
		return fmt.Errorf("%w: %q", ErrInvalidUCI, uci)
	}
	if err := g.g.MoveStr(uci); err != nil {
		return fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	return nil
}

// LoadFEN replaces the position for free-board study, discarding history.
func (g *Game) LoadFEN(fen string) error {
	opt, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("load fen: %w", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.g = chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	g.Status = StatusActive
	g.EndReason = ""
	g.Result = ""
	g.FinalPGN = ""
	g.EndedAt = nil
	return nil
}

// CheckGameOver reports whether the position is terminal, claiming eligible
// rule-based draws first. winner is "white", "black" or "" for a draw.
func (g *Game) CheckGameOver() (over bool, reason, winner string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkGameOverLocked()
}

func (g *Game) checkGameOverLocked() (bool, string, string) {
	if g.g.Outcome() == chess.NoOutcome {
		for _, method := range g.g.EligibleDraws() {
			if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
				_ = g.g.Draw(method)
				break
			}
		}
	}
	outcome := g.g.Outcome()
	if outcome == chess.NoOutcome {
		return false, "", ""
	}
	reason := reasonForMethod(g.g.Method())
	switch outcome {
	case chess.WhiteWon:
		return true, reason, "white"
	case chess.BlackWon:
		return true, reason, "black"
	default:
		return true, reason, ""
	}
}

// End finalizes the game exactly once and returns the terminal payload.
// Repeated calls return the stored payload unchanged.
func (g *Game) End(reason, winner string) EndState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status == StatusEnded {
		return EndState{Reason: g.EndReason, Result: g.Result, PGN: g.FinalPGN}
	}
	g.Status = StatusEnded

	if reason == "resign" {
		g.EndReason = "resign"
		switch strings.ToLower(winner) {
		case "white":
			g.g.Resign(chess.Black)
			g.Result = "1-0"
		case "black":
			g.g.Resign(chess.White)
			g.Result = "0-1"
		default:
			g.Result = "*"
		}
	} else if over, derivedReason, _ := g.checkGameOverLocked(); over {
		g.EndReason = derivedReason
		g.Result = g.g.Outcome().String()
	} else {
		g.EndReason = reason
		g.Result = "*"
	}

	g.FinalPGN = g.buildPGNLocked()
	now := time.Now()
	g.EndedAt = &now
	return EndState{Reason: g.EndReason, Result: g.Result, PGN: g.FinalPGN}
}

// EndStateIfEnded reports the finalized outcome, or false while the game
// is still running.
func (g *Game) EndStateIfEnded() (EndState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusEnded {
		return EndState{}, false
	}
	return EndState{Reason: g.EndReason, Result: g.Result, PGN: g.FinalPGN}, true
}

// buildPGNLocked serializes the game with headers that place the user on
// the side they played.
func (g *Game) buildPGNLocked() string {
	g.g.AddTagPair("Event", "Casual Game")
	g.g.AddTagPair("Site", "Chess Tutor")
	g.g.AddTagPair("Date", time.Now().Format("2006.01.02"))
	g.g.AddTagPair("Round", "1")
	if g.EndReason != "" {
		g.g.AddTagPair("Termination", g.EndReason)
	}
	switch g.UserSide {
	case "white":
		g.g.AddTagPair("White", g.UserName)
		g.g.AddTagPair("Black", g.OpponentName)
	case "black":
		g.g.AddTagPair("White", g.OpponentName)
		g.g.AddTagPair("Black", g.UserName)
	default:
		g.g.AddTagPair("White", "White")
		g.g.AddTagPair("Black", "Black")
	}
	return strings.TrimSpace(g.g.String())
}

// Reset restores the starting position and clears all finalization state so
// previous end data cannot leak into the next game.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.g = chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	g.Status = StatusActive
	g.EndReason = ""
	g.Result = ""
	g.FinalPGN = ""
	g.EndedAt = nil
	g.LastBestEval = 0
	g.blunderBudget = map[string]int{}
	g.UserName = "Player"
	g.OpponentName = "Opponent"
	g.UserSide = "white"
	g.LastSeen = time.Now()
}

func reasonForMethod(method chess.Method) string {
	switch method {
	case chess.Checkmate:
		return "checkmate"
	case chess.Stalemate:
		return "stalemate"
	case chess.InsufficientMaterial:
		return "insufficient_material"
	case chess.ThreefoldRepetition, chess.FivefoldRepetition:
		return "threefold_repetition"
	case chess.FiftyMoveRule, chess.SeventyFiveMoveRule:
		return "fifty_moves"
	case chess.Resignation:
		return "resign"
	default:
		return "draw"
	}
}

// fullmoveNumber parses the fullmove counter from a FEN string.
func fullmoveNumber(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

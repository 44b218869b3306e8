package session

import "context"

// StateInfo is the server's view of the current position.
type StateInfo struct {
	FEN        string
	LegalMoves []string
}

// MoveSubmission is a move on its way to the server, with the engine
// parameters for the optional automated reply.
type MoveSubmission struct {
	UCI            string
	EngineReply    bool
	EngineTime     float64
	EngineSkill    *int
	EnginePersona  string
	OpponentPreset string
	RngSeed        *int64
	UserName       string
	UserSide       string
	OpponentName   string
}

// EngineParams requests a standalone automated reply.
type EngineParams struct {
	EngineTime     float64
	EngineSkill    *int
	EnginePersona  string
	OpponentPreset string
	RngSeed        *int64
}

// MoveResult is the server's answer to a move or engine-reply request.
type MoveResult struct {
	FEN         string
	MoveUCI     string
	EngineReply string // UCI of the automated reply, empty if none
	GameOver    bool
	Reason      string
	Result      string
	PGN         string
}

// ResignOutcome is the server's answer to a resignation.
type ResignOutcome struct {
	Winner string
	Reason string
	Result string
	PGN    string
}

// SaveRequest asks the server to persist the game record.
type SaveRequest struct {
	PGNText      string
	Result       string
	UserSide     string
	UserName     string
	OpponentName string
	Engine       bool
}

// Analysis is a server-side position evaluation.
type Analysis struct {
	BestMove     string
	Score        string
	Continuation []string
}

// GameServer is the remote game authority the session talks to. Errors are
// either *RejectionError (semantic) or *TransportError (network); anything
// else is treated as transport.
type GameServer interface {
	State(ctx context.Context) (StateInfo, error)
	SubmitMove(ctx context.Context, sub MoveSubmission) (MoveResult, error)
	Reset(ctx context.Context) (StateInfo, error)
	EngineMove(ctx context.Context, p EngineParams) (MoveResult, error)
	Resign(ctx context.Context, resignedSide, userSide, userName, opponentName string, engine bool) (ResignOutcome, error)
	SavePGN(ctx context.Context, req SaveRequest) (string, error)
	SetFEN(ctx context.Context, fen string) error
	Analyze(ctx context.Context, fen string, timeLimit float64) (Analysis, error)
}

// Board is the rendering widget the session drives. Implementations must
// tolerate redundant SetPosition calls; the session re-syncs defensively
// after every rejection.
type Board interface {
	SetPosition(fen string)
	Orientation(color string)
	Highlight(square string)
	ClearHighlights()
}

package handlers

// MoveRequest is the body of /api/move.
type MoveRequest struct {
	UCI            string   `json:"uci"`
	EngineReply    bool     `json:"engine_reply"`
	EngineTime     *float64 `json:"engine_time"`
	EngineSkill    *int     `json:"engine_skill"`
	EnginePersona  string   `json:"engine_persona"`
	OpponentPreset string   `json:"opponent_preset"`
	RngSeed        *int64   `json:"rng_seed"`
	UserName       string   `json:"user_name"`
	UserSide       string   `json:"user_side"`
	OpponentName   string   `json:"opponent_name"`
}

// EngineMoveRequest is the body of /api/engine_move.
type EngineMoveRequest struct {
	EngineTime     *float64 `json:"engine_time"`
	EngineSkill    *int     `json:"engine_skill"`
	EnginePersona  string   `json:"engine_persona"`
	OpponentPreset string   `json:"opponent_preset"`
	RngSeed        *int64   `json:"rng_seed"`
}

// ResignRequest is the body of /api/resign.
type ResignRequest struct {
	ResignedSide string `json:"resigned_side"`
	UserSide     string `json:"user_side"`
	UserName     string `json:"user_name"`
	OpponentName string `json:"opponent_name"`
	Engine       bool   `json:"engine"`
}

// SavePGNRequest is the body of /api/save_pgn.
type SavePGNRequest struct {
	PGNText      string `json:"pgn_text"`
	Result       string `json:"result"`
	UserSide     string `json:"user_side"`
	UserName     string `json:"user_name"`
	OpponentName string `json:"opponent_name"`
	Engine       bool   `json:"engine"`
}

// SetFENRequest is the body of /api/set_fen.
type SetFENRequest struct {
	FEN string `json:"fen"`
}

// AnalyzeRequest is the body of /api/analyze.
type AnalyzeRequest struct {
	FEN       string   `json:"fen"`
	TimeLimit *float64 `json:"time_limit"`
}

// MoveResponse is the shared success shape of /api/move and
// /api/engine_move.
type MoveResponse struct {
	OK          bool    `json:"ok"`
	FEN         string  `json:"fen"`
	MoveUCI     string  `json:"move_uci,omitempty"`
	EngineReply *string `json:"engine_reply"`
	GameOver    bool    `json:"game_over"`
	Reason      *string `json:"reason"`
	Result      *string `json:"result"`
	PGN         *string `json:"pgn"`
}

// StateResponse is the shape of /api/state and /api/reset.
type StateResponse struct {
	FEN        string   `json:"fen"`
	LegalMoves []string `json:"legal_moves"`
}

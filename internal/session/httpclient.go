package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient is the GameServer implementation speaking the /api/* JSON
// protocol. A non-2xx answer with a decodable error field becomes a
// RejectionError; anything else (dial failure, timeout, garbage body)
// becomes a TransportError.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPClient returns a client for the server at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

// call runs one JSON round-trip. body == nil sends a GET.
func (c *HTTPClient) call(ctx context.Context, path string, body, out any) error {
	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		method = http.MethodPost
		buf, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return &TransportError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return &RejectionError{Reason: e.Error}
		}
		return &TransportError{Err: fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Err: fmt.Errorf("decode %s response: %w", path, err)}
	}
	return nil
}

type wireState struct {
	FEN        string   `json:"fen"`
	LegalMoves []string `json:"legal_moves"`
}

type wireMove struct {
	OK          bool    `json:"ok"`
	FEN         string  `json:"fen"`
	MoveUCI     string  `json:"move_uci"`
	EngineReply *string `json:"engine_reply"`
	GameOver    bool    `json:"game_over"`
	Reason      *string `json:"reason"`
	Result      *string `json:"result"`
	PGN         *string `json:"pgn"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (m wireMove) toResult() MoveResult {
	return MoveResult{
		FEN:         m.FEN,
		MoveUCI:     m.MoveUCI,
		EngineReply: deref(m.EngineReply),
		GameOver:    m.GameOver,
		Reason:      deref(m.Reason),
		Result:      deref(m.Result),
		PGN:         deref(m.PGN),
	}
}

// State fetches the server's current position.
func (c *HTTPClient) State(ctx context.Context) (StateInfo, error) {
	var w wireState
	if err := c.call(ctx, "/api/state", nil, &w); err != nil {
		return StateInfo{}, err
	}
	return StateInfo{FEN: w.FEN, LegalMoves: w.LegalMoves}, nil
}

// SubmitMove sends a move and returns the server's verdict.
func (c *HTTPClient) SubmitMove(ctx context.Context, sub MoveSubmission) (MoveResult, error) {
	body := map[string]any{
		"uci":           sub.UCI,
		"engine_reply":  sub.EngineReply,
		"user_name":     sub.UserName,
		"user_side":     sub.UserSide,
		"opponent_name": sub.OpponentName,
	}
	if sub.EngineTime > 0 {
		body["engine_time"] = sub.EngineTime
	}
	if sub.EngineSkill != nil {
		body["engine_skill"] = *sub.EngineSkill
	}
	if sub.EnginePersona != "" {
		body["engine_persona"] = sub.EnginePersona
	}
	if sub.OpponentPreset != "" {
		body["opponent_preset"] = sub.OpponentPreset
	}
	if sub.RngSeed != nil {
		body["rng_seed"] = *sub.RngSeed
	}
	var w wireMove
	if err := c.call(ctx, "/api/move", body, &w); err != nil {
		return MoveResult{}, err
	}
	return w.toResult(), nil
}

// Reset asks the server for a fresh game.
func (c *HTTPClient) Reset(ctx context.Context) (StateInfo, error) {
	var w wireState
	if err := c.call(ctx, "/api/reset", struct{}{}, &w); err != nil {
		return StateInfo{}, err
	}
	return StateInfo{FEN: w.FEN, LegalMoves: w.LegalMoves}, nil
}

// EngineMove requests a standalone automated move.
func (c *HTTPClient) EngineMove(ctx context.Context, p EngineParams) (MoveResult, error) {
	body := map[string]any{}
	if p.EngineTime > 0 {
		body["engine_time"] = p.EngineTime
	}
	if p.EngineSkill != nil {
		body["engine_skill"] = *p.EngineSkill
	}
	if p.EnginePersona != "" {
		body["engine_persona"] = p.EnginePersona
	}
	if p.OpponentPreset != "" {
		body["opponent_preset"] = p.OpponentPreset
	}
	if p.RngSeed != nil {
		body["rng_seed"] = *p.RngSeed
	}
	var w wireMove
	if err := c.call(ctx, "/api/engine_move", body, &w); err != nil {
		return MoveResult{}, err
	}
	return w.toResult(), nil
}

// Resign reports a resignation and returns the finalized record.
func (c *HTTPClient) Resign(ctx context.Context, resignedSide, userSide, userName, opponentName string, engine bool) (ResignOutcome, error) {
	body := map[string]any{
		"resigned_side": resignedSide,
		"user_side":     userSide,
		"user_name":     userName,
		"opponent_name": opponentName,
		"engine":        engine,
	}
	var w struct {
		Winner string `json:"winner"`
		Reason string `json:"reason"`
		Result string `json:"result"`
		PGN    string `json:"pgn"`
	}
	if err := c.call(ctx, "/api/resign", body, &w); err != nil {
		return ResignOutcome{}, err
	}
	return ResignOutcome{Winner: w.Winner, Reason: w.Reason, Result: w.Result, PGN: w.PGN}, nil
}

// SavePGN persists the game record and returns the stored filename.
func (c *HTTPClient) SavePGN(ctx context.Context, req SaveRequest) (string, error) {
	body := map[string]any{
		"pgn_text":      req.PGNText,
		"result":        req.Result,
		"user_side":     req.UserSide,
		"user_name":     req.UserName,
		"opponent_name": req.OpponentName,
		"engine":        req.Engine,
	}
	var w struct {
		PGNFile string `json:"pgn_file"`
	}
	if err := c.call(ctx, "/api/save_pgn", body, &w); err != nil {
		return "", err
	}
	return w.PGNFile, nil
}

// SetFEN loads an arbitrary position on the server.
func (c *HTTPClient) SetFEN(ctx context.Context, fen string) error {
	return c.call(ctx, "/api/set_fen", map[string]any{"fen": fen}, nil)
}

// Analyze evaluates a position server-side.
func (c *HTTPClient) Analyze(ctx context.Context, fen string, timeLimit float64) (Analysis, error) {
	body := map[string]any{"fen": fen}
	if timeLimit > 0 {
		body["time_limit"] = timeLimit
	}
	var w struct {
		BestMove     string   `json:"best_move"`
		Score        any      `json:"score"`
		Continuation []string `json:"continuation"`
	}
	if err := c.call(ctx, "/api/analyze", body, &w); err != nil {
		return Analysis{}, err
	}
	score := ""
	switch v := w.Score.(type) {
	case string:
		score = v
	case float64:
		score = fmt.Sprintf("%+d", int(v))
	}
	return Analysis{BestMove: w.BestMove, Score: score, Continuation: w.Continuation}, nil
}

var _ GameServer = (*HTTPClient)(nil)

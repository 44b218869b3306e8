package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chesstutor/internal/engine"
	"chesstutor/internal/game"
	"chesstutor/internal/logging"
	"chesstutor/internal/persona"
	"chesstutor/internal/storage"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Game     *game.Game
	Personas *persona.Registry
	Searcher engine.Searcher
	Store    *storage.Store
	GamesDir string
}

// NewHandler creates a new handler instance
func NewHandler(g *game.Game, reg *persona.Registry, searcher engine.Searcher, store *storage.Store, gamesDir string) *Handler {
	if gamesDir == "" {
		gamesDir = "games"
	}
	return &Handler{Game: g, Personas: reg, Searcher: searcher, Store: store, GamesDir: gamesDir}
}

// Register installs the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", h.HandleState)
	mux.HandleFunc("/api/move", h.HandleMove)
	mux.HandleFunc("/api/reset", h.HandleReset)
	mux.HandleFunc("/api/set_fen", h.HandleSetFEN)
	mux.HandleFunc("/api/engine_move", h.HandleEngineMove)
	mux.HandleFunc("/api/resign", h.HandleResign)
	mux.HandleFunc("/api/save_pgn", h.HandleSavePGN)
	mux.HandleFunc("/api/analyze", h.HandleAnalyze)
	mux.HandleFunc("/api/personas", h.HandlePersonas)
	mux.HandleFunc("/api/stats", h.HandleStats)
}

func (h *Handler) state() StateResponse {
	return StateResponse{FEN: h.Game.Fen(), LegalMoves: h.Game.LegalMoves()}
}

// HandleState reports the current position and legal moves.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.state())
}

// HandleMove processes the player's move and optionally the engine's reply.
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "bad json")
		return
	}
	if strings.TrimSpace(req.UCI) == "" {
		errorJSON(w, http.StatusBadRequest, "missing_uci")
		return
	}

	params, opponentName, ok := h.resolveEngineParams(req.EnginePersona, req.OpponentPreset, req.EngineTime, req.EngineSkill, req.RngSeed)
	if !ok {
		errorJSON(w, http.StatusBadRequest, "unknown_persona")
		return
	}
	if req.OpponentName != "" {
		opponentName = req.OpponentName
	}
	h.Game.SetPlayers(req.UserName, req.UserSide, opponentName)
	h.Game.Touch()

	uci := strings.ToLower(strings.TrimSpace(req.UCI))
	if err := h.Game.MakeMove(uci); err != nil {
		errorJSON(w, http.StatusBadRequest, apiError(err))
		return
	}

	resp := MoveResponse{OK: true, MoveUCI: uci}
	if req.EngineReply {
		if over, _, _ := h.Game.CheckGameOver(); !over {
			reply, err := h.Game.EngineReply(params)
			if err != nil {
				logging.Errorf("engine reply: %v", err)
			} else {
				resp.EngineReply = &reply
			}
		}
	}
	h.finishMoveResponse(w, resp)
}

// HandleEngineMove requests a bot move without a player move.
func (h *Handler) HandleEngineMove(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req EngineMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "bad json")
		return
	}
	params, _, ok := h.resolveEngineParams(req.EnginePersona, req.OpponentPreset, req.EngineTime, req.EngineSkill, req.RngSeed)
	if !ok {
		errorJSON(w, http.StatusBadRequest, "unknown_persona")
		return
	}
	h.Game.Touch()

	resp := MoveResponse{OK: true}
	reply, err := h.Game.EngineReply(params)
	if err != nil {
		if errors.Is(err, game.ErrGameEnded) {
			errorJSON(w, http.StatusBadRequest, apiError(err))
			return
		}
		logging.Errorf("engine move: %v", err)
	} else {
		resp.EngineReply = &reply
	}
	h.finishMoveResponse(w, resp)
}

// finishMoveResponse fills in the position and terminal fields shared by
// the move endpoints.
func (h *Handler) finishMoveResponse(w http.ResponseWriter, resp MoveResponse) {
	if over, reason, winner := h.Game.CheckGameOver(); over {
		end := h.Game.End(reason, winner)
		resp.GameOver = true
		resp.Reason = &end.Reason
		resp.Result = &end.Result
		resp.PGN = &end.PGN
	}
	resp.FEN = h.Game.Fen()
	WriteJSON(w, http.StatusOK, resp)
}

// resolveEngineParams maps preset and explicit fields to canonical engine
// parameters. Presets fill in persona, skill and time only where the
// caller did not pass them explicitly.
func (h *Handler) resolveEngineParams(personaName, preset string, engineTime *float64, skill *int, seed *int64) (game.ReplyParams, string, bool) {
	opponentName := ""
	params := game.ReplyParams{Persona: personaName, Skill: skill, Seed: seed}
	if engineTime != nil {
		params.Time = *engineTime
	}
	if preset != "" {
		if p, ok := persona.Presets[strings.ToLower(preset)]; ok {
			opponentName = p.DisplayName
			if params.Persona == "" {
				params.Persona = p.Persona
			}
			if engineTime == nil {
				params.Time = p.EngineTime
			}
			if skill == nil && p.SkillSet {
				s := p.Skill
				params.Skill = &s
			}
		}
	}
	if params.Persona != "" {
		if !h.Personas.Allowed(params.Persona) {
			return params, "", false
		}
		// Personas use the internal default search time.
		params.Time = persona.DefaultEngineTime
	}
	return params, opponentName, true
}

// HandleReset restores the starting position.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	h.Game.Reset()
	WriteJSON(w, http.StatusOK, h.state())
}

// HandleSetFEN loads an arbitrary position for free-board study.
func (h *Handler) HandleSetFEN(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req SetFENRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.FEN == "" {
		errorJSON(w, http.StatusBadRequest, "missing_fen")
		return
	}
	if err := h.Game.LoadFEN(req.FEN); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "fen": h.Game.Fen()})
}

// HandleResign finalizes the game with the opposite side as winner.
func (h *Handler) HandleResign(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req ResignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "bad json")
		return
	}
	resigned := strings.ToLower(req.ResignedSide)
	if resigned != "white" && resigned != "black" {
		resigned = ""
	}
	winner := ""
	switch resigned {
	case "white":
		winner = "black"
	case "black":
		winner = "white"
	}

	userSide := req.UserSide
	if userSide == "" {
		userSide = resigned
	}
	opponentName := req.OpponentName
	if opponentName == "" {
		if req.Engine {
			opponentName = "Engine"
		} else {
			opponentName = "Opponent"
		}
	}
	h.Game.SetPlayers(req.UserName, userSide, opponentName)

	end := h.Game.End("resign", winner)
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"resign":        true,
		"resigned_side": resigned,
		"winner":        winner,
		"game_over":     true,
		"reason":        end.Reason,
		"result":        end.Result,
		"pgn":           end.PGN,
	})
}

// HandleSavePGN writes the game record to the games directory and archives
// it in the database when one is configured.
func (h *Handler) HandleSavePGN(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req SavePGNRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "bad json")
		return
	}
	h.Game.SetPlayers(req.UserName, req.UserSide, req.OpponentName)

	pgnText := req.PGNText
	result := req.Result
	reason := ""
	if end, ok := h.Game.EndStateIfEnded(); ok {
		if pgnText == "" {
			pgnText = end.PGN
		}
		if result == "" {
			result = end.Result
		}
		reason = end.Reason
	}
	if result == "" {
		result = "*"
	}
	if pgnText == "" {
		pgnText = h.Game.SnapshotPGN(result)
	}

	name, err := storage.SavePGNFile(h.GamesDir, pgnText)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	rec := &storage.GameRecord{
		Result:       result,
		Reason:       reason,
		PGN:          pgnText,
		PGNFile:      name,
		UserName:     req.UserName,
		UserSide:     req.UserSide,
		OpponentName: req.OpponentName,
		EngineGame:   req.Engine,
	}
	if err := h.Store.SaveCompleted(r.Context(), rec); err != nil {
		logging.Errorf("archive game record: %v", err)
	} else if err := h.Store.RecordMoves(r.Context(), rec.ID, h.Game.MovesUCI()); err != nil {
		logging.Errorf("archive move records: %v", err)
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "pgn_file": name})
}

// HandleAnalyze evaluates an arbitrary position.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.FEN == "" {
		errorJSON(w, http.StatusBadRequest, "missing_fen")
		return
	}
	timeLimit := 0.5
	if req.TimeLimit != nil {
		timeLimit = *req.TimeLimit
	}
	res, err := engine.Analyze(h.Searcher, req.FEN, timeLimit)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"best_move":    res.BestMove,
		"score":        res.Score,
		"continuation": res.Continuation,
	})
}

// HandlePersonas lists persona names and the opponent preset table.
func (h *Handler) HandlePersonas(w http.ResponseWriter, r *http.Request) {
	presets := make(map[string]any, len(persona.Presets))
	for key, p := range persona.Presets {
		presets[key] = map[string]any{
			"display_name":   p.DisplayName,
			"engine_persona": p.Persona,
			"engine_time":    p.EngineTime,
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"personas": h.Personas.List(),
		"presets":  presets,
	})
}

// HandleStats reports archive aggregates.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.FetchStats(r.Context())
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": stats})
}

// apiError maps game errors to the wire vocabulary.
func apiError(err error) string {
	switch {
	case errors.Is(err, game.ErrGameEnded):
		return "game_ended"
	case errors.Is(err, game.ErrInvalidUCI):
		return "invalid_uci"
	case errors.Is(err, game.ErrIllegalMove):
		return "illegal"
	default:
		return err.Error()
	}
}

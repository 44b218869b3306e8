package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"chesstutor/internal/engine"
	"chesstutor/internal/game"
	"chesstutor/internal/persona"
)

type cannedSearcher struct {
	uci string
}

func (c *cannedSearcher) Search(fen string, depth, multipv int) ([]engine.Candidate, error) {
	return []engine.Candidate{{UCI: c.uci, CP: 25, PV: []string{c.uci}}}, nil
}

func (c *cannedSearcher) SearchTime(fen string, ms int) ([]engine.Candidate, error) {
	return []engine.Candidate{{UCI: c.uci, CP: 25, PV: []string{c.uci}}}, nil
}

func (c *cannedSearcher) SetStrength(opts persona.UCIOptions) error { return nil }

func (c *cannedSearcher) Close() {}

func newHandler(t *testing.T, searcher engine.Searcher) *Handler {
	t.Helper()
	reg, err := persona.NewRegistry("")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	g := game.New(reg, searcher)
	return NewHandler(g, reg, searcher, nil, t.TempDir())
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestHandleStateStartPosition(t *testing.T) {
	h := newHandler(t, nil)
	req := httptest.NewRequest("GET", "/api/state", nil)
	w := httptest.NewRecorder()
	h.HandleState(w, req)

	resp := decode(t, w)
	if !strings.HasPrefix(resp["fen"].(string), "rnbqkbnr/pppppppp") {
		t.Fatalf("fen = %v", resp["fen"])
	}
	if moves := resp["legal_moves"].([]any); len(moves) != 20 {
		t.Fatalf("legal moves = %d, want 20", len(moves))
	}
}

func TestHandleMoveSuccess(t *testing.T) {
	h := newHandler(t, nil)
	req := httptest.NewRequest("POST", "/api/move", strings.NewReader(`{"uci":"e2e4"}`))
	w := httptest.NewRecorder()
	h.HandleMove(w, req)

	resp := decode(t, w)
	if !resp["ok"].(bool) {
		t.Fatalf("expected move to succeed: %v", resp)
	}
	if resp["move_uci"] != "e2e4" || resp["game_over"].(bool) {
		t.Fatalf("resp = %v", resp)
	}
	if !strings.Contains(resp["fen"].(string), " b ") {
		t.Fatalf("fen after e4 = %v", resp["fen"])
	}
}

func TestHandleMoveIllegal(t *testing.T) {
	h := newHandler(t, nil)
	req := httptest.NewRequest("POST", "/api/move", strings.NewReader(`{"uci":"e2e5"}`))
	w := httptest.NewRecorder()
	h.HandleMove(w, req)

	resp := decode(t, w)
	if resp["ok"].(bool) || resp["error"] != "illegal" {
		t.Fatalf("resp = %v", resp)
	}
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleMoveMissingUCI(t *testing.T) {
	h := newHandler(t, nil)
	req := httptest.NewRequest("POST", "/api/move", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.HandleMove(w, req)

	resp := decode(t, w)
	if resp["ok"].(bool) || resp["error"] != "missing_uci" {
		t.Fatalf("resp = %v", resp)
	}
}

func TestHandleMoveUnknownPersona(t *testing.T) {
	h := newHandler(t, &cannedSearcher{uci: "e7e5"})
	body := `{"uci":"e2e4","engine_reply":true,"engine_persona":"hustler"}`
	req := httptest.NewRequest("POST", "/api/move", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleMove(w, req)

	resp := decode(t, w)
	if resp["ok"].(bool) || resp["error"] != "unknown_persona" {
		t.Fatalf("resp = %v", resp)
	}
}

func TestHandleMoveWithEngineReply(t *testing.T) {
	h := newHandler(t, &cannedSearcher{uci: "e7e5"})
	body := `{"uci":"e2e4","engine_reply":true,"engine_persona":"sensei","rng_seed":7}`
	req := httptest.NewRequest("POST", "/api/move", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleMove(w, req)

	resp := decode(t, w)
	if !resp["ok"].(bool) {
		t.Fatalf("resp = %v", resp)
	}
	if resp["engine_reply"] != "e7e5" {
		t.Fatalf("engine reply = %v", resp["engine_reply"])
	}
	// after e4 e5 it's white to move again
	if !strings.Contains(resp["fen"].(string), " w ") {
		t.Fatalf("fen = %v", resp["fen"])
	}
}

func TestHandleMoveCheckmateEndsGame(t *testing.T) {
	h := newHandler(t, nil)
	for _, uci := range []string{"f2f3", "e7e5", "g2g4"} {
		req := httptest.NewRequest("POST", "/api/move", strings.NewReader(`{"uci":"`+uci+`"}`))
		h.HandleMove(httptest.NewRecorder(), req)
	}
	req := httptest.NewRequest("POST", "/api/move", strings.NewReader(`{"uci":"d8h4"}`))
	w := httptest.NewRecorder()
	h.HandleMove(w, req)

	resp := decode(t, w)
	if !resp["ok"].(bool) || !resp["game_over"].(bool) {
		t.Fatalf("resp = %v", resp)
	}
	if resp["result"] != "0-1" || resp["reason"] != "checkmate" {
		t.Fatalf("result = %v reason = %v", resp["result"], resp["reason"])
	}
	if resp["pgn"] == nil || !strings.Contains(resp["pgn"].(string), "Qh4#") {
		t.Fatalf("pgn = %v", resp["pgn"])
	}
}

func TestHandleResetRestoresStart(t *testing.T) {
	h := newHandler(t, nil)
	req := httptest.NewRequest("POST", "/api/move", strings.NewReader(`{"uci":"e2e4"}`))
	h.HandleMove(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	h.HandleReset(w, httptest.NewRequest("POST", "/api/reset", nil))
	resp := decode(t, w)
	if !strings.HasPrefix(resp["fen"].(string), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Fatalf("fen = %v", resp["fen"])
	}
}

func TestHandleSetFEN(t *testing.T) {
	h := newHandler(t, nil)
	body := `{"fen":"8/4P3/8/8/8/8/7k/K7 w - - 0 1"}`
	w := httptest.NewRecorder()
	h.HandleSetFEN(w, httptest.NewRequest("POST", "/api/set_fen", strings.NewReader(body)))
	resp := decode(t, w)
	if !resp["ok"].(bool) || !strings.HasPrefix(resp["fen"].(string), "8/4P3") {
		t.Fatalf("resp = %v", resp)
	}

	w = httptest.NewRecorder()
	h.HandleSetFEN(w, httptest.NewRequest("POST", "/api/set_fen", strings.NewReader(`{"fen":"junk"}`)))
	if resp := decode(t, w); resp["ok"].(bool) {
		t.Fatalf("junk fen accepted: %v", resp)
	}
}

func TestHandleResign(t *testing.T) {
	h := newHandler(t, nil)
	body := `{"resigned_side":"white","user_side":"white","user_name":"Wil","opponent_name":"Ninja","engine":true}`
	w := httptest.NewRecorder()
	h.HandleResign(w, httptest.NewRequest("POST", "/api/resign", strings.NewReader(body)))

	resp := decode(t, w)
	if !resp["ok"].(bool) || resp["winner"] != "black" || resp["result"] != "0-1" {
		t.Fatalf("resp = %v", resp)
	}
	if resp["reason"] != "resign" {
		t.Fatalf("reason = %v", resp["reason"])
	}
	if !strings.Contains(resp["pgn"].(string), `[White "Wil"]`) {
		t.Fatalf("pgn = %v", resp["pgn"])
	}
}

func TestHandleSavePGN(t *testing.T) {
	h := newHandler(t, nil)
	req := httptest.NewRequest("POST", "/api/move", strings.NewReader(`{"uci":"e2e4"}`))
	h.HandleMove(httptest.NewRecorder(), req)

	body := `{"user_side":"white","user_name":"Wil","opponent_name":"Student"}`
	w := httptest.NewRecorder()
	h.HandleSavePGN(w, httptest.NewRequest("POST", "/api/save_pgn", strings.NewReader(body)))

	resp := decode(t, w)
	if !resp["ok"].(bool) {
		t.Fatalf("resp = %v", resp)
	}
	name := resp["pgn_file"].(string)
	if !strings.HasPrefix(name, "game_") || !strings.HasSuffix(name, ".pgn") {
		t.Fatalf("pgn_file = %q", name)
	}
}

func TestHandleAnalyze(t *testing.T) {
	h := newHandler(t, &cannedSearcher{uci: "e2e4"})
	body := `{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"}`
	w := httptest.NewRecorder()
	h.HandleAnalyze(w, httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body)))

	resp := decode(t, w)
	if !resp["ok"].(bool) || resp["best_move"] != "e2e4" {
		t.Fatalf("resp = %v", resp)
	}
}

func TestHandleAnalyzeNoEngine(t *testing.T) {
	h := newHandler(t, nil)
	body := `{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"}`
	w := httptest.NewRecorder()
	h.HandleAnalyze(w, httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body)))
	if w.Code != 500 {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestHandlePersonas(t *testing.T) {
	h := newHandler(t, nil)
	w := httptest.NewRecorder()
	h.HandlePersonas(w, httptest.NewRequest("GET", "/api/personas", nil))
	resp := decode(t, w)
	if len(resp["personas"].([]any)) != 5 {
		t.Fatalf("personas = %v", resp["personas"])
	}
	if _, ok := resp["presets"].(map[string]any)["grasshopper"]; !ok {
		t.Fatalf("presets = %v", resp["presets"])
	}
}

package session

import (
	"context"
	"fmt"

	"chesstutor/internal/logging"
)

// submitMove runs the full pipeline for one vetted move: speculative local
// apply, server round-trip, then either reconciliation or rollback. At most
// one submission is ever in flight; the second caller is rejected
// synchronously before anything is touched.
func (s *Session) submitMove(ctx context.Context, uci string) error {
	if s.freeBoard {
		return s.applyFreeMove(uci)
	}
	if s.moveInFlight {
		return ErrMoveInFlight
	}

	preFEN := s.rules.Fen()
	san, err := s.rules.ApplyUCI(uci)
	if err != nil {
		// vetGesture already probed the move; failing here means the
		// local model drifted from what was displayed.
		s.board.SetPosition(preFEN)
		return fmt.Errorf("apply %s: %w", uci, err)
	}

	// Speculative: show the move immediately, record it as if confirmed.
	// The rollback below undoes both if the server says otherwise.
	s.ledger.Push(s.rules.Fen(), san)
	s.board.SetPosition(s.rules.Fen())
	s.status("Sent " + san)

	s.moveInFlight = true
	s.seq++
	mySeq := s.seq
	res, err := s.server.SubmitMove(ctx, MoveSubmission{
		UCI:            uci,
		EngineReply:    s.cfg.EngineEnabled,
		EngineTime:     s.cfg.EngineTime,
		EngineSkill:    s.cfg.EngineSkill,
		EnginePersona:  s.cfg.EnginePersona,
		OpponentPreset: s.cfg.OpponentPreset,
		UserName:       s.cfg.UserName,
		UserSide:       s.cfg.UserSide,
		OpponentName:   s.cfg.OpponentName,
	})
	s.moveInFlight = false

	if mySeq != s.seq {
		// The game was reset while the request was out; this answer
		// belongs to a position that no longer exists.
		logging.Debugf("discarding stale move response for %s", uci)
		return nil
	}
	if err != nil {
		s.rollbackTo(preFEN)
		s.status(describeError(err))
		return err
	}
	return s.confirmMove(ctx, san, res)
}

// confirmMove reconciles local state with the server's answer to an
// accepted move, including any bundled automated reply.
func (s *Session) confirmMove(ctx context.Context, san string, res MoveResult) error {
	if res.EngineReply != "" {
		replySAN, err := s.rules.ApplyUCI(res.EngineReply)
		if err != nil {
			// The server played something we cannot reproduce; its
			// position wins.
			logging.Errorf("server reply %s does not apply locally: %v", res.EngineReply, err)
			s.adoptServerPosition(res.FEN, san, res.EngineReply)
		} else {
			s.ledger.Push(s.rules.Fen(), replySAN)
			s.status("Opponent played " + replySAN)
		}
	}
	if res.FEN != "" && res.FEN != s.rules.Fen() {
		logging.Errorf("position drift after %s: local %q server %q", san, s.rules.Fen(), res.FEN)
		s.adoptServerPosition(res.FEN)
	}
	s.board.SetPosition(s.rules.Fen())

	if res.GameOver {
		s.finishGame(ctx, res.Result, res.Reason, res.PGN)
		return nil
	}
	// Double-check termination locally so a checkmate never leaves the
	// UI playable even if the server response omitted it.
	if result, reason, over := s.rules.Terminal(); over {
		s.finishGame(ctx, result, reason, "")
	}
	return nil
}

// adoptServerPosition replaces the local model with the server's confirmed
// FEN when reconciliation fails. The moves recorded for the entry are
// whatever spellings are available; the FEN is authoritative.
func (s *Session) adoptServerPosition(fen string, moves ...string) {
	if err := s.rules.LoadFEN(fen); err != nil {
		logging.Errorf("server sent unusable position %q: %v", fen, err)
		return
	}
	s.ledger.Push(fen, moves...)
}

// rollbackTo restores local state to the pre-submission snapshot after a
// rejected or failed move.
func (s *Session) rollbackTo(preFEN string) {
	s.ledger.RollbackTo(preFEN)
	if err := s.rules.LoadFEN(preFEN); err != nil {
		logging.Errorf("rollback to %q: %v", preFEN, err)
	}
	s.board.SetPosition(preFEN)
}

// applyFreeMove plays a move locally in free-board mode. Nothing is sent to
// the server and nothing is recorded for replay.
func (s *Session) applyFreeMove(uci string) error {
	san, err := s.rules.ApplyUCI(uci)
	if err != nil {
		s.board.SetPosition(s.rules.Fen())
		return err
	}
	s.board.SetPosition(s.rules.Fen())
	s.status("Free board: " + san)
	return nil
}

// RequestEngineReply asks the server for a standalone automated move, for
// when it is the engine's turn without a user move preceding it. The busy
// flag keeps a second request from piling onto the first; it is independent
// of the move-in-flight flag since the two never share a turn.
func (s *Session) RequestEngineReply(ctx context.Context) error {
	if s.phase != PhaseInGame {
		return ErrNotInGame
	}
	if !s.cfg.EngineEnabled {
		return fmt.Errorf("no engine opponent configured")
	}
	if s.engineBusy {
		return ErrEngineBusy
	}
	s.engineBusy = true
	s.seq++
	mySeq := s.seq
	s.status("Thinking...")
	res, err := s.server.EngineMove(ctx, EngineParams{
		EngineTime:     s.cfg.EngineTime,
		EngineSkill:    s.cfg.EngineSkill,
		EnginePersona:  s.cfg.EnginePersona,
		OpponentPreset: s.cfg.OpponentPreset,
	})
	s.engineBusy = false
	if mySeq != s.seq {
		logging.Debugf("discarding stale engine reply")
		return nil
	}
	if err != nil {
		s.status(describeError(err))
		return err
	}
	// A standalone automated move arrives in the reply field, the same
	// slot a move-response bundles it in.
	if res.EngineReply != "" {
		san, aerr := s.rules.ApplyUCI(res.EngineReply)
		if aerr != nil {
			logging.Errorf("engine move %s does not apply locally: %v", res.EngineReply, aerr)
			s.adoptServerPosition(res.FEN, res.EngineReply)
		} else {
			s.ledger.Push(s.rules.Fen(), san)
			s.status("Opponent played " + san)
		}
	}
	if res.FEN != "" && res.FEN != s.rules.Fen() {
		logging.Errorf("position drift after engine reply: local %q server %q", s.rules.Fen(), res.FEN)
		s.adoptServerPosition(res.FEN)
	}
	s.board.SetPosition(s.rules.Fen())
	if res.GameOver {
		s.finishGame(ctx, res.Result, res.Reason, res.PGN)
	}
	return nil
}

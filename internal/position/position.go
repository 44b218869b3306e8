// Package position wraps a notnil/chess game as the single locally-mirrored
// board position a session renders and mutates. The model always reflects
// either the last server-confirmed position or one speculative position
// pending confirmation.
package position

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"
)

var (
	// ErrBadSquare is returned for strings that do not name a board square.
	ErrBadSquare = errors.New("bad square")
	// ErrIllegalMove is returned when the rules library rejects a move.
	ErrIllegalMove = errors.New("illegal move")
)

// Model owns the rules-library game object for the current position.
type Model struct {
	game *chess.Game
}

// New returns a model at the standard starting position.
func New() *Model {
	return &Model{game: chess.NewGame(chess.UseNotation(chess.UCINotation{}))}
}

// NewFromFEN returns a model loaded from fen.
func NewFromFEN(fen string) (*Model, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("load fen: %w", err)
	}
	return &Model{game: chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))}, nil
}

// Fen returns the current position in FEN.
func (m *Model) Fen() string {
	return m.game.Position().String()
}

// Turn returns the side to move.
func (m *Model) Turn() chess.Color {
	return m.game.Position().Turn()
}

// PieceAt returns the piece on the named square, or chess.NoPiece for an
// empty square or an unparseable name.
func (m *Model) PieceAt(square string) chess.Piece {
	sq, err := ParseSquare(square)
	if err != nil {
		return chess.NoPiece
	}
	return m.game.Position().Board().Piece(sq)
}

// LoadFEN replaces the position wholesale, discarding move history.
func (m *Model) LoadFEN(fen string) error {
	opt, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("load fen: %w", err)
	}
	m.game = chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	return nil
}

// ApplyUCI plays the move on the model and returns its SAN spelling.
func (m *Model) ApplyUCI(uci string) (string, error) {
	pos := m.game.Position()
	mv, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	san := chess.AlgebraicNotation{}.Encode(pos, mv)
	if err := m.game.Move(mv); err != nil {
		return "", fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	return san, nil
}

// Probe checks move legality without touching the model: the position is
// cloned into a scratch game and the move attempted there, so the shared
// state is never mutated by a pre-check.
func (m *Model) Probe(uci string) error {
	opt, err := chess.FEN(m.Fen())
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	scratch := chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	if err := scratch.MoveStr(uci); err != nil {
		return fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	return nil
}

// IsPromotion reports whether moving the piece on from to to is a pawn move
// onto the terminal rank for the side to move, i.e. needs a promotion piece.
func (m *Model) IsPromotion(from, to string) bool {
	p := m.PieceAt(from)
	if p.Type() != chess.Pawn || p.Color() != m.Turn() {
		return false
	}
	if len(to) != 2 {
		return false
	}
	switch p.Color() {
	case chess.White:
		return to[1] == '8'
	case chess.Black:
		return to[1] == '1'
	}
	return false
}

// Terminal reports whether the position is game over under local rules,
// claiming eligible rule-based draws the way the server does. On game over
// it returns the PGN result string and a short termination reason.
func (m *Model) Terminal() (result, reason string, over bool) {
	if m.game.Outcome() == chess.NoOutcome {
		for _, method := range m.game.EligibleDraws() {
			if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
				_ = m.game.Draw(method)
				break
			}
		}
	}
	outcome := m.game.Outcome()
	if outcome == chess.NoOutcome {
		return "", "", false
	}
	return outcome.String(), ReasonForMethod(m.game.Method()), true
}

// ReasonForMethod maps a rules-library termination method to the short
// reason strings the server vocabulary uses.
func ReasonForMethod(method chess.Method) string {
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

// ParseSquare converts an algebraic square name ("e4") to a board square.
func ParseSquare(s string) (chess.Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return chess.NoSquare, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	return chess.Square(rank*8 + file), nil
}

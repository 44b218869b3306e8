package game

import (
	"strings"
	"time"

	"github.com/notnil/chess"
)

// SnapshotPGN serializes the game as played so far without finalizing it.
// result is used for the Result header ("*" while undecided). The moves are
// replayed onto a scratch game so tag pairs never leak into the live one
// before End runs.
func (g *Game) SnapshotPGN(result string) string {
	if result == "" {
		result = "*"
	}
	g.mu.Lock()
	moves := g.movesUCILocked()
	userName, userSide, oppName := g.UserName, g.UserSide, g.OpponentName
	g.mu.Unlock()

	tmp := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	for _, uci := range moves {
		_ = tmp.MoveStr(uci)
	}
	tmp.AddTagPair("Event", "Casual Game")
	tmp.AddTagPair("Site", "Chess Tutor")
	tmp.AddTagPair("Date", time.Now().Format("2006.01.02"))
	tmp.AddTagPair("Round", "1")
	tmp.AddTagPair("Result", result)
	switch userSide {
	case "white":
		tmp.AddTagPair("White", userName)
		tmp.AddTagPair("Black", oppName)
	case "black":
		tmp.AddTagPair("White", oppName)
		tmp.AddTagPair("Black", userName)
	default:
		tmp.AddTagPair("White", "White")
		tmp.AddTagPair("Black", "Black")
	}
	return strings.TrimSpace(tmp.String())
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"chesstutor/internal/session"
)

const helpText = `commands:
  start            begin a game from the initial position
  start keep       begin a game from the loaded position
  e2e4 / e7e8q     play a move (coordinate notation)
  tap <square>     two-tap input: select or move
  promote <q|r|b|n> complete a pending promotion
  cancel           abandon a pending promotion
  back / fwd       step through the game record
  first / last     jump to the oldest / newest position
  moves            show the move list
  captured         show captured pieces
  free             enter free-board mode
  load <fen>       set up a position (free board only)
  analyze          evaluate the current position
  resign           concede the game
  new              back to setup
  quit             exit`

// Run drives an interactive session over stdin-like input until the input
// ends or the user quits.
func Run(ctx context.Context, serverURL string, cfg session.Config, in io.Reader, out io.Writer) error {
	board := NewTermBoard(out)
	client := session.NewHTTPClient(serverURL)
	s, err := session.New(board, client, cfg, func(text string) {
		fmt.Fprintln(out, text)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "connected to "+serverURL)
	fmt.Fprintln(out, helpText)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "[%s] > ", s.Phase())
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(strings.ToLower(line))
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(out, helpText)
		case "start":
			keep := len(args) > 0 && args[0] == "keep"
			if err := s.StartGame(ctx, keep); err != nil {
				fmt.Fprintln(out, err)
			}
		case "new":
			s.NewGame()
		case "resign":
			if err := s.Resign(ctx); err != nil {
				fmt.Fprintln(out, err)
			}
		case "tap":
			if len(args) != 1 {
				fmt.Fprintln(out, "usage: tap <square>")
				continue
			}
			reportDrop(out, s.HandleTap(ctx, args[0]))
		case "promote":
			if len(args) != 1 {
				fmt.Fprintln(out, "usage: promote <q|r|b|n>")
				continue
			}
			if err := s.ChoosePromotion(ctx, args[0]); err != nil {
				fmt.Fprintln(out, err)
			}
		case "cancel":
			s.CancelPromotion()
		case "back":
			s.Back()
		case "fwd", "forward":
			s.Forward()
		case "first":
			s.JumpStart()
		case "last":
			s.JumpEnd()
		case "moves":
			fmt.Fprintln(out, formatMoveList(s.MoveList()))
		case "captured":
			c := s.CapturedPieces()
			fmt.Fprintf(out, "white took: %s\nblack took: %s\n",
				strings.Join(c.ByWhite, " "), strings.Join(c.ByBlack, " "))
		case "free":
			if err := s.EnterFreeBoard(); err != nil {
				fmt.Fprintln(out, err)
			}
		case "load":
			// FEN is case-sensitive; take it from the raw line.
			fen := strings.TrimSpace(strings.TrimPrefix(line, "load"))
			if fen == "" {
				fmt.Fprintln(out, "usage: load <fen>")
				continue
			}
			if err := s.LoadPosition(fen); err != nil {
				fmt.Fprintln(out, err)
			}
		case "analyze":
			a, err := client.Analyze(ctx, s.Fen(), 0.5)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintf(out, "best %s  score %s  line %s\n",
				a.BestMove, a.Score, strings.Join(a.Continuation, " "))
		default:
			if from, to, promo, ok := parseMove(cmd); ok {
				res := s.HandleDrop(ctx, from, to)
				if res.PromotionPending && promo != "" {
					if err := s.ChoosePromotion(ctx, promo); err != nil {
						fmt.Fprintln(out, err)
					}
					continue
				}
				reportDrop(out, res)
				continue
			}
			fmt.Fprintf(out, "unknown command %q (try help)\n", cmd)
		}
	}
}

func reportDrop(out io.Writer, res session.DropResult) {
	if res.Reason != nil {
		fmt.Fprintln(out, res.Reason)
	}
	if res.PromotionPending {
		fmt.Fprintln(out, "promotion pending: promote <q|r|b|n> or cancel")
	}
}

// parseMove recognizes coordinate moves like e2e4 and e7e8q.
func parseMove(s string) (from, to, promo string, ok bool) {
	if len(s) != 4 && len(s) != 5 {
		return "", "", "", false
	}
	if !validSquare(s[0:2]) || !validSquare(s[2:4]) {
		return "", "", "", false
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n':
			promo = string(s[4])
		default:
			return "", "", "", false
		}
	}
	return s[0:2], s[2:4], promo, true
}

func validSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// formatMoveList pairs SAN moves into numbered rows.
func formatMoveList(moves []string) string {
	if len(moves) == 0 {
		return "(no moves)"
	}
	var sb strings.Builder
	for i := 0; i < len(moves); i += 2 {
		fmt.Fprintf(&sb, "%d. %s", i/2+1, moves[i])
		if i+1 < len(moves) {
			sb.WriteString(" " + moves[i+1])
		}
		if i+2 < len(moves) {
			sb.WriteString("  ")
		}
	}
	return sb.String()
}

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"chesstutor/internal/cli"
	"chesstutor/internal/engine"
	"chesstutor/internal/game"
	"chesstutor/internal/handlers"
	"chesstutor/internal/logging"
	"chesstutor/internal/persona"
	"chesstutor/internal/session"
	"chesstutor/internal/storage"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address (server mode)")
	debug := flag.Bool("debug", false, "enable debug logging")
	stockfish := flag.String("stockfish", "stockfish", "path to a UCI engine binary")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "postgres DSN for the game archive (optional)")
	personasPath := flag.String("personas", "personas.yaml", "persona overrides file")
	gamesDir := flag.String("games", "games", "directory for saved PGN files")
	connect := flag.String("connect", "", "server URL; when set, run the terminal client instead")
	name := flag.String("name", "Player", "player name (client mode)")
	side := flag.String("side", "white", "side to play, white or black (client mode)")
	personaName := flag.String("persona", "", "engine persona (client mode)")
	preset := flag.String("preset", "", "opponent preset (client mode)")
	flag.Parse()
	logging.Debug = *debug

	if *connect != "" {
		cfg := session.Config{
			UserName:       *name,
			UserSide:       *side,
			EnginePersona:  *personaName,
			OpponentPreset: *preset,
			EngineEnabled:  true,
		}
		if err := cli.Run(context.Background(), *connect, cfg, os.Stdin, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	reg, err := persona.NewRegistry(*personasPath)
	if err != nil {
		log.Fatalf("persona registry: %v", err)
	}

	var searcher engine.Searcher
	if *stockfish != "" {
		eng, err := engine.NewUCIEngine(*stockfish)
		if err != nil {
			log.Printf("engine unavailable (%v); play continues without one", err)
		} else {
			searcher = eng
			defer eng.Close()
		}
	}

	var store *storage.Store
	if *dsn != "" {
		db, err := storage.New(*dsn)
		if err != nil {
			log.Printf("database unavailable (%v); games are kept on disk only", err)
		} else {
			store = storage.NewStore(db)
		}
	}

	g := game.New(reg, searcher)
	h := handlers.NewHandler(g, reg, searcher, store, *gamesDir)

	mux := http.NewServeMux()
	h.Register(mux)

	log.Printf("chesstutor %s listening on %s …", versionString(), *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

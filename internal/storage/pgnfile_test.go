package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSavePGNFile(t *testing.T) {
	dir := t.TempDir()
	name, err := SavePGNFile(dir, "1. e4 e5 *\n")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(name, "game_") || !strings.HasSuffix(name, ".pgn") {
		t.Fatalf("filename = %q", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "1. e4 e5 *\n" {
		t.Fatalf("content = %q", data)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestNilStoreIsNoOp(t *testing.T) {
	var s *Store
	ctx := context.Background()
	if err := s.SaveCompleted(ctx, &GameRecord{}); err != nil {
		t.Fatalf("nil store save: %v", err)
	}
	if err := s.RecordMoves(ctx, uuid.Nil, []string{"e2e4"}); err != nil {
		t.Fatalf("nil store moves: %v", err)
	}
	stats, err := s.FetchStats(ctx)
	if err != nil || stats.Completed != 0 {
		t.Fatalf("nil store stats: %+v %v", stats, err)
	}
}

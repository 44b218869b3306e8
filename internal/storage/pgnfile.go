package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// randomSuffix returns n random bytes hex-encoded, for temp file names.
func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// SavePGNFile writes pgnText to a timestamped file under dir and returns
// the bare filename. The write goes through a temp file and rename so a
// crash never leaves a half-written game record.
func SavePGNFile(dir, pgnText string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pgn dir: %w", err)
	}
	name := fmt.Sprintf("game_%s.pgn", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	tmp := path + "." + randomSuffix(4) + ".tmp"
	if err := os.WriteFile(tmp, []byte(pgnText), 0o644); err != nil {
		return "", fmt.Errorf("write pgn: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("replace pgn: %w", err)
	}
	return name, nil
}

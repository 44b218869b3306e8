package storage

import (
	"time"

	"github.com/google/uuid"
)

// GameRecord is a finished game as persisted for the tutor's archive.
type GameRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Result       string
	Reason       string
	PGN          string
	PGNFile      string
	UserName     string
	UserSide     string
	OpponentName string
	EngineGame   bool `gorm:"index"`
	CompletedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Moves        []MoveRecord
}

// MoveRecord stores a single move of a persisted game.
type MoveRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GameID    uuid.UUID `gorm:"type:uuid;index"`
	Number    int
	UCI       string
	Color     string
	CreatedAt time.Time
}

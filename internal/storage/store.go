package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store wraps a gorm DB instance and provides helper methods for persisting
// finished games. A nil Store is valid and makes every method a no-op, so
// the server runs fine without a database.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// SaveCompleted inserts the archive row for a finished game.
func (s *Store) SaveCompleted(ctx context.Context, rec *GameRecord) error {
	if s == nil {
		return nil
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// RecordMoves inserts the move rows of a finished game.
func (s *Store) RecordMoves(ctx context.Context, gameID uuid.UUID, uciMoves []string) error {
	if s == nil || len(uciMoves) == 0 {
		return nil
	}
	rows := make([]MoveRecord, 0, len(uciMoves))
	for i, uci := range uciMoves {
		color := "white"
		if i%2 == 1 {
			color = "black"
		}
		rows = append(rows, MoveRecord{GameID: gameID, Number: i + 1, UCI: uci, Color: color})
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

// Stats represents aggregate counts for completed games.
type Stats struct {
	Completed int64 `json:"completed"`
	Wins      int64 `json:"wins"`
	Losses    int64 `json:"losses"`
	Draws     int64 `json:"draws"`
}

// FetchStats aggregates the archive from the user's point of view.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&GameRecord{}).Count(&stats.Completed).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&GameRecord{}).
		Where("(user_side = ? AND result = ?) OR (user_side = ? AND result = ?)", "white", "1-0", "black", "0-1").
		Count(&stats.Wins).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&GameRecord{}).
		Where("(user_side = ? AND result = ?) OR (user_side = ? AND result = ?)", "white", "0-1", "black", "1-0").
		Count(&stats.Losses).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&GameRecord{}).
		Where("result = ?", "1/2-1/2").
		Count(&stats.Draws).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// LoadRecent returns up to limit most recently completed games.
func (s *Store) LoadRecent(ctx context.Context, limit int) ([]GameRecord, error) {
	if s == nil {
		return nil, nil
	}
	var recs []GameRecord
	err := s.db.WithContext(ctx).
		Order("completed_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// Package store persists daily entries. Every record is scoped to one user.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily-checkin/internal/entry"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entries is the per-user document store the service depends on.
type Entries interface {
	Get(ctx context.Context, userID, id string) (*entry.DailyEntry, error)
	Query(ctx context.Context, userID string, t entry.FormType, since time.Time) ([]entry.DailyEntry, error)
	Upsert(ctx context.Context, e *entry.DailyEntry) error
}

type GormEntries struct{ db *gorm.DB }

func NewGormEntries(db *gorm.DB) *GormEntries { return &GormEntries{db: db} }

// Get returns *entry.NotFoundError when the id does not exist for userID.
func (s *GormEntries) Get(ctx context.Context, userID, id string) (*entry.DailyEntry, error) {
	var e entry.DailyEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &entry.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return &e, nil
}

// Query returns entries of type t updated at or after since, newest first.
func (s *GormEntries) Query(ctx context.Context, userID string, t entry.FormType, since time.Time) ([]entry.DailyEntry, error) {
	entries := []entry.DailyEntry{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND updated_at >= ?", userID, t, since.UTC()).
		Order("updated_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return entries, nil
}

// Upsert replaces the whole record at (UserID, ID). CreatedAt of an existing
// row is kept; every other column comes from e.
func (s *GormEntries) Upsert(ctx context.Context, e *entry.DailyEntry) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "date_key", "form", "updated_at"}),
	}).Create(e).Error
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", e.ID, err)
	}
	return nil
}

// Migrate creates or updates the tables this package and the auth service use.
func Migrate(db *gorm.DB, models ...any) error {
	all := append([]any{&entry.DailyEntry{}}, models...)
	if err := db.AutoMigrate(all...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"daily-checkin/internal/entry"
	"daily-checkin/internal/logger"
	"daily-checkin/internal/model"
	"daily-checkin/internal/schema"
	"daily-checkin/internal/store"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// ErrNoUser is returned when an operation runs without a signed-in user.
var ErrNoUser = errors.New("no current user")

// DailyService looks up, lists and submits daily entries. Every method takes
// the user id explicitly.
type DailyService struct {
	store    store.Entries
	registry *schema.Registry
	cache    *QueryCache
	loc      *time.Location
	now      func() time.Time
}

func NewDailyService(st store.Entries, reg *schema.Registry, cache *QueryCache, loc *time.Location) *DailyService {
	if loc == nil {
		loc = time.Local
	}
	return &DailyService{store: st, registry: reg, cache: cache, loc: loc, now: time.Now}
}

// SetClock replaces the wall clock, for tests and replays.
func (s *DailyService) SetClock(now func() time.Time) {
	s.now = now
	s.cache.now = now
}

func (s *DailyService) Location() *time.Location { return s.loc }

// Today is the current time in the service's calendar location.
func (s *DailyService) Today() time.Time { return s.now().In(s.loc) }

func (s *DailyService) Registry() *schema.Registry { return s.registry }

// GetEntry reads the entry for (t, userID, day) by its deterministic id.
func (s *DailyService) GetEntry(ctx context.Context, t entry.FormType, userID string, day time.Time) (*entry.DailyEntry, error) {
	if err := checkArgs(t, userID); err != nil {
		return nil, err
	}
	id := entry.MakeEntryID(t, day)
	v, err := s.cache.Do(ctx, t, userID, "entry:"+id, func(ctx context.Context) (any, error) {
		return s.store.Get(ctx, userID, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry.DailyEntry), nil
}

// ListEntries returns entries of type t updated inside window, newest first.
func (s *DailyService) ListEntries(ctx context.Context, t entry.FormType, userID string, w entry.Window) ([]entry.DailyEntry, error) {
	if err := checkArgs(t, userID); err != nil {
		return nil, err
	}
	v, err := s.cache.Do(ctx, t, userID, "list:"+string(w), func(ctx context.Context) (any, error) {
		return s.store.Query(ctx, userID, t, entry.WindowStart(w, s.now()))
	})
	if err != nil {
		return nil, err
	}
	return v.([]entry.DailyEntry), nil
}

// History lists entries and splits them into today's and the past.
func (s *DailyService) History(ctx context.Context, t entry.FormType, userID string, w entry.Window) ([]entry.DailyEntry, entry.Partition, error) {
	entries, err := s.ListEntries(ctx, t, userID, w)
	if err != nil {
		return nil, entry.Partition{}, err
	}
	return entries, entry.Classify(entries, s.Today()), nil
}

// Submit validates payload and writes it as the entry for (t, userID, day),
// replacing any earlier entry for that day wholesale. Validation failures are
// *schema.ValidationError and nothing is written; store failures are
// *entry.WriteError.
func (s *DailyService) Submit(ctx context.Context, t entry.FormType, userID string, day time.Time, payload schema.Payload) (*entry.DailyEntry, error) {
	if err := checkArgs(t, userID); err != nil {
		return nil, err
	}
	form, err := s.registry.Validate(t, payload)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	now := s.now().UTC()
	e := &entry.DailyEntry{
		UserID:    userID,
		ID:        entry.MakeEntryID(t, day),
		Type:      t,
		DateKey:   entry.DateKey(day),
		Form:      datatypes.JSON(raw),
		UpdatedAt: now,
		CreatedAt: now,
	}
	if err := s.store.Upsert(ctx, e); err != nil {
		return nil, &entry.WriteError{ID: e.ID, Err: err}
	}
	s.Invalidate(t, userID)
	logger.Debug("entry.upsert", "uid", userID, "id", e.ID)
	return e, nil
}

// Invalidate drops cached queries for (t, userID). Submit calls it after
// every successful write.
func (s *DailyService) Invalidate(t entry.FormType, userID string) {
	s.cache.Invalidate(t, userID)
}

// TodayOverview reports, for every form type, whether today's entry exists.
func (s *DailyService) TodayOverview(ctx context.Context, userID string) ([]model.TodayStatus, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	today := s.Today()
	out := make([]model.TodayStatus, len(entry.FormTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range entry.FormTypes {
		g.Go(func() error {
			out[i] = model.TodayStatus{Type: t, Path: entry.PagePath(t)}
			_, err := s.GetEntry(gctx, t, userID, today)
			var nf *entry.NotFoundError
			switch {
			case err == nil:
				out[i].HasTodayEntry = true
			case errors.As(err, &nf):
			default:
				return fmt.Errorf("today %s: %w", t, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func checkArgs(t entry.FormType, userID string) error {
	if !t.Valid() {
		return &entry.InvalidTypeError{Value: string(t)}
	}
	if userID == "" {
		return ErrNoUser
	}
	return nil
}

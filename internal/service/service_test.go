package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"daily-checkin/internal/entry"
	"daily-checkin/internal/model"
	"daily-checkin/internal/schema"
	"daily-checkin/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, store.Migrate(db, &model.User{}))
	return db
}

// countingStore wraps a store and counts calls so tests can assert on cache
// hits and on calls that must never happen.
type countingStore struct {
	inner   store.Entries
	gets    atomic.Int32
	queries atomic.Int32
	upserts atomic.Int32
	failUp  error
}

func (c *countingStore) Get(ctx context.Context, uid, id string) (*entry.DailyEntry, error) {
	c.gets.Add(1)
	return c.inner.Get(ctx, uid, id)
}

func (c *countingStore) Query(ctx context.Context, uid string, t entry.FormType, since time.Time) ([]entry.DailyEntry, error) {
	c.queries.Add(1)
	return c.inner.Query(ctx, uid, t, since)
}

func (c *countingStore) Upsert(ctx context.Context, e *entry.DailyEntry) error {
	c.upserts.Add(1)
	if c.failUp != nil {
		return c.failUp
	}
	return c.inner.Upsert(ctx, e)
}

type fixture struct {
	svc   *DailyService
	store *countingStore
	clock *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cs := &countingStore{inner: store.NewGormEntries(openTestDB(t))}
	svc := NewDailyService(cs, schema.Default(), NewQueryCache(24*time.Hour), time.UTC)
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	f := &fixture{svc: svc, store: cs, clock: &now}
	svc.SetClock(func() time.Time { return *f.clock })
	return f
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func painPayload(intensity int) schema.Payload {
	return schema.Payload{
		"painLocations":  []any{"glute_area"},
		"painIntensity":  float64(intensity),
		"painTypes":      []any{"dull_aching"},
		"painWorsenedBy": map[string]any{"reasons": []any{}},
		"painRelievedBy": map[string]any{"methods": []any{"walking"}},
		"emotionalState": map[string]any{"mood": "accepting"},
	}
}

func intensityOf(t *testing.T, e entry.DailyEntry) int {
	t.Helper()
	var form map[string]any
	require.NoError(t, json.Unmarshal(e.Form, &form))
	return int(form["painIntensity"].(float64))
}

func TestSubmitOverwritesSameDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	today := f.svc.Today()

	_, err := f.svc.GetEntry(ctx, entry.Pain, "u1", today)
	var nf *entry.NotFoundError
	require.True(t, errors.As(err, &nf))

	e1, err := f.svc.Submit(ctx, entry.Pain, "u1", today, painPayload(4))
	require.NoError(t, err)
	assert.Equal(t, "pain_20240305", e1.ID)
	assert.Equal(t, "20240305", e1.DateKey)

	_, p, err := f.svc.History(ctx, entry.Pain, "u1", entry.Weekly)
	require.NoError(t, err)
	assert.True(t, p.HasTodayEntry)

	f.advance(2 * time.Hour)
	e2, err := f.svc.Submit(ctx, entry.Pain, "u1", today, painPayload(8))
	require.NoError(t, err)
	assert.Equal(t, e1.ID, e2.ID)

	entries, p, err := f.svc.History(ctx, entry.Pain, "u1", entry.Weekly)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 8, intensityOf(t, entries[0]))
	require.NotNil(t, p.TodayEntry)
	assert.Equal(t, "pain_20240305", p.TodayEntry.ID)
	assert.Empty(t, p.HistoricEntries)

	got, err := f.svc.GetEntry(ctx, entry.Pain, "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 8, intensityOf(t, *got))
}

func TestSubmitValidationSkipsWrite(t *testing.T) {
	f := newFixture(t)
	p := painPayload(3)
	p["painWorsenedBy"] = map[string]any{"reasons": []any{"other"}, "otherReason": ""}

	_, err := f.svc.Submit(context.Background(), entry.Pain, "u1", f.svc.Today(), p)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "painWorsenedBy.otherReason", ve.Field)
	assert.Zero(t, f.store.upserts.Load())
}

func TestSubmitWriteError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("backend unavailable")
	f.store.failUp = boom

	_, err := f.svc.Submit(context.Background(), entry.Pain, "u1", f.svc.Today(), painPayload(3))
	var we *entry.WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "pain_20240305", we.ID)
	assert.ErrorIs(t, err, boom)
}

func TestInvalidTypeBeforeStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ListEntries(ctx, entry.FormType("bogus"), "u1", entry.Weekly)
	var ite *entry.InvalidTypeError
	require.True(t, errors.As(err, &ite))

	_, err = f.svc.GetEntry(ctx, entry.FormType(""), "u1", f.svc.Today())
	require.True(t, errors.As(err, &ite))

	_, err = f.svc.Submit(ctx, entry.FormType("mood"), "u1", f.svc.Today(), schema.Payload{})
	require.True(t, errors.As(err, &ite))

	assert.Zero(t, f.store.queries.Load())
	assert.Zero(t, f.store.gets.Load())
	assert.Zero(t, f.store.upserts.Load())
}

func TestNoUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListEntries(context.Background(), entry.Pain, "", entry.Weekly)
	assert.ErrorIs(t, err, ErrNoUser)
	_, err = f.svc.TodayOverview(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestListCachedUntilSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.svc.ListEntries(ctx, entry.Sleep, "u1", entry.Monthly)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, f.store.queries.Load())

	// a different user or type is a different cache bucket
	_, err := f.svc.ListEntries(ctx, entry.Pain, "u1", entry.Monthly)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.store.queries.Load())

	_, err = f.svc.Submit(ctx, entry.Pain, "u1", f.svc.Today(), painPayload(1))
	require.NoError(t, err)

	list, err := f.svc.ListEntries(ctx, entry.Pain, "u1", entry.Monthly)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 3, f.store.queries.Load())

	// sleep bucket was not touched by the pain submission
	_, err = f.svc.ListEntries(ctx, entry.Sleep, "u1", entry.Monthly)
	require.NoError(t, err)
	assert.EqualValues(t, 3, f.store.queries.Load())

	f.advance(25 * time.Hour)
	_, err = f.svc.ListEntries(ctx, entry.Sleep, "u1", entry.Monthly)
	require.NoError(t, err)
	assert.EqualValues(t, 4, f.store.queries.Load(), "ttl expired")
}

func TestHistoryWindows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	start := *f.clock

	// one entry 10 days ago, one 40 days ago, one today
	for _, back := range []int{40, 10, 0} {
		*f.clock = start.AddDate(0, 0, -back)
		_, err := f.svc.Submit(ctx, entry.Stress, "u1", f.svc.Today(), schema.Payload{
			"stressLevel": "2", "stressTriggers": []any{"work"}, "stressLocation": []any{},
			"stressHelpers": []any{}, "painImpact": "no_impact", "reflectionFeeling": "aware",
		})
		require.NoError(t, err)
	}
	*f.clock = start

	tests := []struct {
		w    entry.Window
		want int
	}{
		{entry.Monthly, 1}, // one week back
		{entry.Weekly, 2},  // one month back
		{entry.Yearly, 3},
	}
	for _, tt := range tests {
		list, p, err := f.svc.History(ctx, entry.Stress, "u1", tt.w)
		require.NoError(t, err)
		assert.Len(t, list, tt.want, string(tt.w))
		assert.True(t, p.HasTodayEntry)
		assert.Len(t, p.HistoricEntries, tt.want-1)
	}
}

func TestTodayOverview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Submit(ctx, entry.Habit, "u1", f.svc.Today(), schema.Payload{
		"mobilityRoutine": true, "strengthRoutine": false, "preBedRoutine": true,
		"sleepingPosition": "no_need_to", "breathingPractice": true, "aerobicExercise": false,
	})
	require.NoError(t, err)

	got, err := f.svc.TodayOverview(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, len(entry.FormTypes))
	for _, st := range got {
		assert.Equal(t, st.Type == entry.Habit, st.HasTodayEntry, st.Type)
		assert.NotEmpty(t, st.Path)
	}
}

func TestQueryCacheCollapsesMisses(t *testing.T) {
	c := NewQueryCache(time.Hour)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Do(context.Background(), entry.Pain, "u1", "list:weekly", func(context.Context) (any, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Equal(t, 1, c.Len())
}

func TestQueryCacheInvalidateDuringFetch(t *testing.T) {
	c := NewQueryCache(time.Hour)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		c.Do(context.Background(), entry.Pain, "u1", "list:weekly", func(context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()
	<-started
	c.Invalidate(entry.Pain, "u1")
	close(release)
	<-done

	assert.Zero(t, c.Len(), "a fetch that raced an invalidation must not be cached")

	v, err := c.Do(context.Background(), entry.Pain, "u1", "list:weekly", func(context.Context) (any, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestQueryCacheErrorsNotCached(t *testing.T) {
	c := NewQueryCache(time.Hour)
	_, err := c.Do(context.Background(), entry.Pain, "u1", "x", func(context.Context) (any, error) { return nil, errors.New("down") })
	require.Error(t, err)
	assert.Zero(t, c.Len())
}

func TestQueryCacheCancelOnlyAffectsCaller(t *testing.T) {
	c := NewQueryCache(time.Hour)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return "rows", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Do(ctxA, entry.Pain, "u1", "entry:pain_20240305", fetch)
		errA <- err
	}()
	<-started

	type result struct {
		v   any
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := c.Do(context.Background(), entry.Pain, "u1", "entry:pain_20240305", fetch)
		resB <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "rows", b.v)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestGetEntrySurvivesOtherCallersCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Submit(ctx, entry.Pain, "u1", f.svc.Today(), painPayload(3))
	require.NoError(t, err)

	gate := &gatedStore{Entries: f.svc.store, entered: make(chan struct{}), release: make(chan struct{})}
	f.svc.store = gate

	ctxA, cancelA := context.WithCancel(ctx)
	errA := make(chan error, 1)
	go func() {
		_, err := f.svc.GetEntry(ctxA, entry.Pain, "u1", f.svc.Today())
		errA <- err
	}()
	<-gate.entered

	resB := make(chan error, 1)
	go func() {
		e, err := f.svc.GetEntry(ctx, entry.Pain, "u1", f.svc.Today())
		if err == nil && e.ID != "pain_20240305" {
			err = errors.New("unexpected entry " + e.ID)
		}
		resB <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)
	close(gate.release)
	assert.NoError(t, <-resB)
}

// gatedStore blocks Get until release is closed and fails if the fetch
// context was cancelled in the meantime.
type gatedStore struct {
	store.Entries
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Get(ctx context.Context, uid, id string) (*entry.DailyEntry, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Entries.Get(ctx, uid, id)
}

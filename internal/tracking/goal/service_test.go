// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package goal_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/constants"
	"github.com/taibuivan/readtrack/internal/tracking/goal"
	"github.com/taibuivan/readtrack/internal/tracking/progress"
	"github.com/taibuivan/readtrack/pkg/pointer"
	"github.com/taibuivan/readtrack/pkg/uuid"
)

type fakeRepository struct {
	mu            sync.Mutex
	goals         map[string]*goal.Goal
	entries       map[string][]goal.EntrySnapshot
	snapshotCalls int

	// afterSnapshot runs once the snapshot is taken, outside the lock.
	afterSnapshot func()
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{goals: map[string]*goal.Goal{}, entries: map[string][]goal.EntrySnapshot{}}
}

func (repository *fakeRepository) Create(_ context.Context, g *goal.Goal) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	copied := *g
	repository.goals[g.ID] = &copied
	return nil
}

func (repository *fakeRepository) FindByID(_ context.Context, userID, goalID string) (*goal.Goal, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	g, ok := repository.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, apperr.NotFound("Reading goal")
	}
	copied := *g
	return &copied, nil
}

func (repository *fakeRepository) List(_ context.Context, userID string, filter goal.Filter) ([]*goal.Goal, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	goals := []*goal.Goal{}
	for _, g := range repository.goals {
		if g.UserID != userID || (filter.Period != "" && g.Period != filter.Period) || (filter.GoalType != "" && g.GoalType != filter.GoalType) {
			continue
		}
		copied := *g
		goals = append(goals, &copied)
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].StartDate.After(goals[j].StartDate) })
	return goals, nil
}

func (repository *fakeRepository) Update(_ context.Context, g *goal.Goal) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	stored, ok := repository.goals[g.ID]
	if !ok || stored.UserID != g.UserID {
		return apperr.NotFound("Reading goal")
	}
	copied := *g
	copied.CreatedAt = stored.CreatedAt
	repository.goals[g.ID] = &copied
	return nil
}

func (repository *fakeRepository) Delete(_ context.Context, userID, goalID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	g, ok := repository.goals[goalID]
	if !ok || g.UserID != userID {
		return apperr.NotFound("Reading goal")
	}
	delete(repository.goals, goalID)
	return nil
}

func (repository *fakeRepository) Snapshot(_ context.Context, userID string, _, _ time.Time) ([]goal.EntrySnapshot, error) {
	repository.mu.Lock()
	repository.snapshotCalls++
	snapshot := append([]goal.EntrySnapshot(nil), repository.entries[userID]...)
	hook := repository.afterSnapshot
	repository.mu.Unlock()

	if hook != nil {
		hook()
	}
	return snapshot, nil
}

func (repository *fakeRepository) setEntries(userID string, entries []goal.EntrySnapshot) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.entries[userID] = entries
}

// memoryCache is an in-memory [goal.ProgressCache]; failing makes every call error.
type memoryCache struct {
	mu          sync.Mutex
	values      map[string]map[string]goal.Progress
	generations map[string]int64
	skipped     int
	failing     bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]map[string]goal.Progress{}, generations: map[string]int64{}}
}

var errCacheDown = errors.New("cache unavailable")

func (cache *memoryCache) Get(_ context.Context, userID, goalID string) (*goal.Progress, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.failing {
		return nil, false, errCacheDown
	}
	value, ok := cache.values[userID][goalID]
	if !ok {
		return nil, false, nil
	}
	return &value, true, nil
}

func (cache *memoryCache) Generation(_ context.Context, userID string) (int64, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.failing {
		return 0, errCacheDown
	}
	return cache.generations[userID], nil
}

func (cache *memoryCache) Set(_ context.Context, userID string, generation int64, p *goal.Progress) (bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.failing {
		return false, errCacheDown
	}
	if cache.generations[userID] != generation {
		cache.skipped++
		return false, nil
	}
	if cache.values[userID] == nil {
		cache.values[userID] = map[string]goal.Progress{}
	}
	cache.values[userID][p.GoalID] = *p
	return true, nil
}

func (cache *memoryCache) InvalidateUser(_ context.Context, userID string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.failing {
		return errCacheDown
	}
	cache.generations[userID]++
	delete(cache.values, userID)
	return nil
}

func (cache *memoryCache) InvalidateGoal(_ context.Context, userID, goalID string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.failing {
		return errCacheDown
	}
	cache.generations[userID]++
	delete(cache.values[userID], goalID)
	return nil
}

func newService(repo *fakeRepository, cache goal.ProgressCache) *goal.Service {
	return goal.NewService(repo, cache, goal.BasisDateAdded, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestCreateGoalValidation covers input rules and end-date defaults.
*/
func TestCreateGoalValidation(t *testing.T) {
	service := newService(newFakeRepository(), nil)
	ctx := context.Background()
	userID := uuid.New()
	start := day(time.January, 1)

	tests := []struct {
		name  string
		input goal.Input
		field string
	}{
		{"zero target", goal.Input{GoalType: goal.TypePages, Period: goal.PeriodMonthly, Target: 0, StartDate: start}, goal.FieldTarget},
		{"negative target", goal.Input{GoalType: goal.TypePages, Period: goal.PeriodMonthly, Target: -3, StartDate: start}, goal.FieldTarget},
		{"target beyond integer column", goal.Input{GoalType: goal.TypePages, Period: goal.PeriodMonthly, Target: constants.MaxCount + 1, StartDate: start}, goal.FieldTarget},
		{"unknown type", goal.Input{GoalType: "MINUTES", Period: goal.PeriodMonthly, Target: 1, StartDate: start}, goal.FieldGoalType},
		{"unknown period", goal.Input{GoalType: goal.TypeBooks, Period: "HOURLY", Target: 1, StartDate: start}, goal.FieldPeriod},
		{"missing start", goal.Input{GoalType: goal.TypeBooks, Period: goal.PeriodDaily, Target: 1}, goal.FieldStartDate},
		{"reversed window", goal.Input{GoalType: goal.TypeBooks, Period: goal.PeriodDaily, Target: 1, StartDate: start,
			EndDate: pointer.To(start.AddDate(0, 0, -1))}, goal.FieldEndDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateGoal(ctx, userID, tt.input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperr.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}

	created, err := service.CreateGoal(ctx, userID, goal.Input{GoalType: goal.TypePages, Period: goal.PeriodMonthly, Target: 200, StartDate: day(time.February, 3)})
	require.NoError(t, err)
	assert.Equal(t, day(time.February, 28), created.EndDate)

	single, err := service.CreateGoal(ctx, userID, goal.Input{GoalType: goal.TypePages, Period: goal.PeriodDaily, Target: 20, StartDate: start, EndDate: pointer.To(start)})
	require.NoError(t, err)
	assert.Equal(t, start, single.EndDate)
}

/*
TestProgressCaching checks cache fill, user invalidation and goal edits.
*/
func TestProgressCaching(t *testing.T) {
	repo := newFakeRepository()
	cache := newMemoryCache()
	service := newService(repo, cache)
	ctx := context.Background()
	userID := uuid.New()

	created, err := service.CreateGoal(ctx, userID, goal.Input{GoalType: goal.TypePages, Period: goal.PeriodMonthly, Target: 200, StartDate: day(time.January, 1)})
	require.NoError(t, err)

	repo.entries[userID] = []goal.EntrySnapshot{
		{Status: progress.InProgress, PagesRead: 80, TotalPages: 200, DateAdded: day(time.January, 4)},
		{Status: progress.Done, PagesRead: 150, TotalPages: 150, DateAdded: day(time.January, 20)},
	}

	result, err := service.Progress(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 230, result.CurrentValue)
	assert.Equal(t, 100, result.ProgressPercentage)

	_, err = service.Progress(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.snapshotCalls, "second read is served from the cache")

	repo.entries[userID] = repo.entries[userID][:1]
	require.NoError(t, service.InvalidateUser(ctx, userID))

	result, err = service.Progress(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, result.CurrentValue)
	assert.Equal(t, 40, result.ProgressPercentage)
	assert.Equal(t, 2, repo.snapshotCalls)

	updated, err := service.UpdateGoal(ctx, userID, created.ID, goal.Input{GoalType: goal.TypePages, Period: goal.PeriodMonthly, Target: 100, StartDate: day(time.January, 1)})
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Target)

	result, err = service.Progress(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, result.ProgressPercentage)
	assert.Equal(t, 3, repo.snapshotCalls)

	_, err = service.Progress(ctx, uuid.New(), created.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestProgressFillRacingInvalidation commits a library change and invalidates
the cache after a reader took its snapshot but before it stored the result.
The stale result must not be cached.
*/
func TestProgressFillRacingInvalidation(t *testing.T) {
	repo := newFakeRepository()
	cache := newMemoryCache()
	service := newService(repo, cache)
	ctx := context.Background()
	userID := uuid.New()

	created, err := service.CreateGoal(ctx, userID, goal.Input{GoalType: goal.TypePages, Period: goal.PeriodMonthly, Target: 200, StartDate: day(time.January, 1)})
	require.NoError(t, err)

	entry := goal.EntrySnapshot{Status: progress.InProgress, PagesRead: 40, TotalPages: 300, DateAdded: day(time.January, 5)}
	repo.setEntries(userID, []goal.EntrySnapshot{entry})

	repo.afterSnapshot = func() {
		repo.afterSnapshot = nil
		committed := entry
		committed.PagesRead = 100
		repo.setEntries(userID, []goal.EntrySnapshot{committed})
		require.NoError(t, service.InvalidateUser(ctx, userID))
	}

	stale, err := service.Progress(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, stale.CurrentValue, "the in-flight read reports its own snapshot")
	assert.Equal(t, 1, cache.skipped)

	fresh, err := service.Progress(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, fresh.CurrentValue)
	assert.Equal(t, 50, fresh.ProgressPercentage)
	assert.Equal(t, 2, repo.snapshotCalls)

	_, err = service.Progress(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.snapshotCalls, "the fresh value is cached")
}

/*
TestProgressWithoutCache checks that cache outages never fail a read.
*/
func TestProgressWithoutCache(t *testing.T) {
	repo := newFakeRepository()
	cache := newMemoryCache()
	cache.failing = true
	service := newService(repo, cache)
	ctx := context.Background()
	userID := uuid.New()

	created, err := service.CreateGoal(ctx, userID, goal.Input{GoalType: goal.TypeBooks, Period: goal.PeriodYearly, Target: 5, StartDate: day(time.January, 1)})
	require.NoError(t, err)

	repo.entries[userID] = []goal.EntrySnapshot{
		{Status: progress.Done, DateAdded: day(time.March, 1)},
		{Status: progress.Done, DateAdded: day(time.April, 1)},
		{Status: progress.InProgress, DateAdded: day(time.May, 1)},
	}

	result, err := service.Progress(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CurrentValue)
	assert.Equal(t, 40, result.ProgressPercentage)

	require.NoError(t, service.DeleteGoal(ctx, userID, created.ID))
	_, err = service.GetGoal(ctx, userID, created.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestListGoalsFilter checks period and type filters.
*/
func TestListGoalsFilter(t *testing.T) {
	service := newService(newFakeRepository(), nil)
	ctx := context.Background()
	userID := uuid.New()

	_, err := service.CreateGoal(ctx, userID, goal.Input{GoalType: goal.TypePages, Period: goal.PeriodDaily, Target: 20, StartDate: day(time.May, 1)})
	require.NoError(t, err)
	_, err = service.CreateGoal(ctx, userID, goal.Input{GoalType: goal.TypeBooks, Period: goal.PeriodYearly, Target: 12, StartDate: day(time.January, 1)})
	require.NoError(t, err)

	goals, err := service.ListGoals(ctx, userID, goal.Filter{GoalType: goal.TypeBooks})
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, goal.PeriodYearly, goals[0].Period)

	all, err := service.ListGoals(ctx, userID, goal.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = service.ListGoals(ctx, userID, goal.Filter{Period: "FORTNIGHTLY"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

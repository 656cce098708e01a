// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/constants"
	"github.com/taibuivan/readtrack/internal/tracking/library"
	"github.com/taibuivan/readtrack/internal/tracking/progress"
	"github.com/taibuivan/readtrack/pkg/pointer"
	"github.com/taibuivan/readtrack/pkg/uuid"
)

type fixture struct {
	store       *fakeStore
	invalidator *recordingInvalidator
	service     *library.Service
	userID      string
	bookID      string
}

func newFixture(t *testing.T, totalPages int) *fixture {
	t.Helper()

	store := newFakeStore()
	invalidator := &recordingInvalidator{}
	bookID := uuid.New()
	store.addBook(bookID, "The Left Hand of Darkness", totalPages)

	return &fixture{
		store:       store,
		invalidator: invalidator,
		service:     library.NewService(store, invalidator, slog.New(slog.NewTextHandler(io.Discard, nil))),
		userID:      uuid.New(),
		bookID:      bookID,
	}
}

func (f *fixture) addEntry(t *testing.T) *library.Entry {
	t.Helper()
	entry, err := f.service.AddToLibrary(context.Background(), f.userID, f.bookID)
	require.NoError(t, err)
	return entry
}

func (f *fixture) record(t *testing.T, entryID string, pages int) *library.SessionResult {
	t.Helper()
	result, err := f.service.RecordSession(context.Background(), f.userID, entryID, library.SessionInput{
		Date:      time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		PagesRead: pages,
	})
	require.NoError(t, err)
	return result
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperr.As(err).Code)
}

/*
TestAddToLibrary covers the initial state, duplicates and unknown books.
*/
func TestAddToLibrary(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()

	entry := f.addEntry(t)
	assert.Equal(t, progress.NotStarted, entry.Status)
	assert.Zero(t, entry.PagesRead)
	assert.Zero(t, entry.ProgressPercent)
	assert.Equal(t, 100, entry.Book.TotalPages)
	assert.Equal(t, 1, f.invalidator.count(f.userID))

	_, err := f.service.AddToLibrary(ctx, f.userID, f.bookID)
	requireCode(t, err, apperr.CodeConflict)

	_, err = f.service.AddToLibrary(ctx, uuid.New(), f.bookID)
	assert.NoError(t, err, "another user may track the same book")

	_, err = f.service.AddToLibrary(ctx, f.userID, uuid.New())
	requireCode(t, err, apperr.CodeValidation)

	_, err = f.service.AddToLibrary(ctx, f.userID, "not-a-uuid")
	requireCode(t, err, apperr.CodeValidation)
}

/*
TestRecordSessionAggregates follows an entry through the session ledger:
[40, 60] of 100 pages is done, dropping the 60-page session reopens it.
*/
func TestRecordSessionAggregates(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	entry := f.addEntry(t)

	first := f.record(t, entry.ID, 40)
	assert.Equal(t, 40, first.Entry.PagesRead)
	assert.Equal(t, progress.InProgress, first.Entry.Status)
	assert.Equal(t, 40, first.Entry.ProgressPercent)
	assert.Nil(t, first.Entry.FinishedAt)

	second := f.record(t, entry.ID, 60)
	assert.Equal(t, 100, second.Entry.PagesRead)
	assert.Equal(t, progress.Done, second.Entry.Status)
	assert.Equal(t, 100, second.Entry.ProgressPercent)
	assert.NotNil(t, second.Entry.FinishedAt)
	assert.Equal(t, "The Left Hand of Darkness", second.Session.BookTitle)

	updated, err := f.service.DeleteSession(ctx, f.userID, entry.ID, second.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.PagesRead)
	assert.Equal(t, progress.InProgress, updated.Status)
	assert.Nil(t, updated.FinishedAt)

	_, err = f.service.DeleteSession(ctx, f.userID, entry.ID, second.Session.ID)
	requireCode(t, err, apperr.CodeNotFound)

	// 1 add + 2 records + 1 delete
	assert.Equal(t, 4, f.invalidator.count(f.userID))
}

/*
TestRecordSessionClampsCounter checks that the counter is bounded while the
ledger keeps raw values.
*/
func TestRecordSessionClampsCounter(t *testing.T) {
	f := newFixture(t, 100)
	entry := f.addEntry(t)

	f.record(t, entry.ID, 80)
	result := f.record(t, entry.ID, 50)

	assert.Equal(t, 100, result.Entry.PagesRead)
	assert.Equal(t, progress.Done, result.Entry.Status)
	assert.Equal(t, 50, result.Session.PagesRead)

	sessions, err := f.service.ListSessions(context.Background(), f.userID, entry.ID)
	require.NoError(t, err)
	total := 0
	for _, session := range sessions {
		total += session.PagesRead
	}
	assert.Equal(t, 130, total)
}

/*
TestRecordSessionRejectsUnknownEntries checks that missing and foreign
entries are validation errors and nothing is written.
*/
func TestRecordSessionRejectsUnknownEntries(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	entry := f.addEntry(t)

	input := library.SessionInput{Date: time.Now(), PagesRead: 10}

	_, err := f.service.RecordSession(ctx, uuid.New(), entry.ID, input)
	requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, library.FieldLibraryEntryID, apperr.As(err).Details[0].Field)

	_, err = f.service.RecordSession(ctx, f.userID, uuid.New(), input)
	requireCode(t, err, apperr.CodeValidation)

	assert.Zero(t, f.store.sessionCount(entry.ID))
	stored, err := f.service.GetEntry(ctx, f.userID, entry.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.PagesRead)
}

/*
TestRecordSessionValidation covers the session input rules.
*/
func TestRecordSessionValidation(t *testing.T) {
	f := newFixture(t, 100)
	entry := f.addEntry(t)
	today := time.Now()

	tests := []struct {
		name  string
		input library.SessionInput
		field string
	}{
		{"zero pages", library.SessionInput{Date: today, PagesRead: 0}, library.FieldPagesRead},
		{"negative pages", library.SessionInput{Date: today, PagesRead: -5}, library.FieldPagesRead},
		{"missing date", library.SessionInput{PagesRead: 5}, library.FieldDate},
		{"negative duration", library.SessionInput{Date: today, PagesRead: 5, DurationMinutes: pointer.To(-1)}, library.FieldDurationMinutes},
		{"pages beyond integer column", library.SessionInput{Date: today, PagesRead: constants.MaxCount + 1}, library.FieldPagesRead},
		{"duration beyond integer column", library.SessionInput{Date: today, PagesRead: 5, DurationMinutes: pointer.To(constants.MaxCount + 1)}, library.FieldDurationMinutes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RecordSession(context.Background(), f.userID, entry.ID, tt.input)
			requireCode(t, err, apperr.CodeValidation)
			assert.Equal(t, tt.field, apperr.As(err).Details[0].Field)
		})
	}

	result, err := f.service.RecordSession(context.Background(), f.userID, entry.ID, library.SessionInput{
		Date: today, PagesRead: 5, DurationMinutes: pointer.To(0), Notes: "  train ride ",
	})
	require.NoError(t, err)
	assert.Equal(t, "train ride", result.Session.Notes)
	assert.Equal(t, 0, pointer.Val(result.Session.DurationMinutes))
}

/*
TestSetPagesRead checks range enforcement and status derivation on direct writes.
*/
func TestSetPagesRead(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	entry := f.addEntry(t)

	updated, err := f.service.SetPagesRead(ctx, f.userID, entry.ID, 55)
	require.NoError(t, err)
	assert.Equal(t, progress.InProgress, updated.Status)
	assert.Equal(t, 55, updated.ProgressPercent)

	for _, pages := range []int{101, -1} {
		_, err = f.service.SetPagesRead(ctx, f.userID, entry.ID, pages)
		requireCode(t, err, apperr.CodeValidation)

		stored, err := f.service.GetEntry(ctx, f.userID, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, 55, stored.PagesRead, "storage unchanged after %d", pages)
		assert.Equal(t, progress.InProgress, stored.Status)
	}

	done, err := f.service.SetPagesRead(ctx, f.userID, entry.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, progress.Done, done.Status)
	require.NotNil(t, done.FinishedAt)

	reset, err := f.service.SetPagesRead(ctx, f.userID, entry.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, progress.NotStarted, reset.Status)
	assert.Nil(t, reset.FinishedAt)

	_, err = f.service.SetPagesRead(ctx, uuid.New(), entry.ID, 10)
	requireCode(t, err, apperr.CodeNotFound)
}

/*
TestUpdateEntryRating checks the 1..5 bound and clearing with null.
*/
func TestUpdateEntryRating(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	entry := f.addEntry(t)

	tests := []struct {
		rating int
		valid  bool
	}{
		{0, false},
		{6, false},
		{1, true},
		{5, true},
	}

	for _, tt := range tests {
		input := library.MetaInput{Rating: library.NullableInt{Set: true, Value: pointer.To(tt.rating)}}
		updated, err := f.service.UpdateEntry(ctx, f.userID, entry.ID, input)
		if !tt.valid {
			requireCode(t, err, apperr.CodeValidation)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.rating, pointer.Val(updated.Rating))
	}

	var patch library.MetaInput
	require.NoError(t, json.Unmarshal([]byte(`{"comment":"slow start","is_favorite":true}`), &patch))
	updated, err := f.service.UpdateEntry(ctx, f.userID, entry.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "slow start", updated.Comment)
	assert.True(t, updated.IsFavorite)
	assert.Equal(t, 5, pointer.Val(updated.Rating), "absent rating is untouched")

	require.NoError(t, json.Unmarshal([]byte(`{"rating":null}`), &patch))
	updated, err = f.service.UpdateEntry(ctx, f.userID, entry.ID, patch)
	require.NoError(t, err)
	assert.Nil(t, updated.Rating)
	assert.Equal(t, "slow start", updated.Comment)
}

/*
TestStats tallies a library across statuses.
*/
func TestStats(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()

	done := f.addEntry(t)
	_, err := f.service.SetPagesRead(ctx, f.userID, done.ID, 100)
	require.NoError(t, err)

	otherBook := uuid.New()
	f.store.addBook(otherBook, "Kindred", 264)
	reading, err := f.service.AddToLibrary(ctx, f.userID, otherBook)
	require.NoError(t, err)
	f.record(t, reading.ID, 30)

	thirdBook := uuid.New()
	f.store.addBook(thirdBook, "Piranesi", 272)
	_, err = f.service.AddToLibrary(ctx, f.userID, thirdBook)
	require.NoError(t, err)

	stats, err := f.service.Stats(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, progress.Stats{Total: 3, Done: 1, InProgress: 1, NotStarted: 1, TotalPagesRead: 130}, stats)

	entries, total, err := f.service.ListEntries(ctx, f.userID, library.Filter{Statuses: []progress.Status{progress.Done, progress.InProgress}}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, entries, 2)

	_, _, err = f.service.ListEntries(ctx, f.userID, library.Filter{Statuses: []progress.Status{"abandoned"}}, 20, 0)
	requireCode(t, err, apperr.CodeValidation)
}

/*
TestRemoveEntryCascades checks that sessions and list memberships go with the entry.
*/
func TestRemoveEntryCascades(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	entry := f.addEntry(t)
	f.record(t, entry.ID, 20)
	f.store.addMembership(entry.ID)

	requireCode(t, f.service.RemoveEntry(ctx, uuid.New(), entry.ID), apperr.CodeNotFound)
	assert.Equal(t, 1, f.store.sessionCount(entry.ID))

	require.NoError(t, f.service.RemoveEntry(ctx, f.userID, entry.ID))
	assert.Zero(t, f.store.sessionCount(entry.ID))
	assert.Zero(t, f.store.membershipCount(entry.ID))

	_, err := f.service.GetEntry(ctx, f.userID, entry.ID)
	requireCode(t, err, apperr.CodeNotFound)

	_, err = f.service.AddToLibrary(ctx, f.userID, f.bookID)
	assert.NoError(t, err, "a removed book can be added again")
}

/*
TestRederiveBook checks re-derivation after a book's page count shrinks.
*/
func TestRederiveBook(t *testing.T) {
	f := newFixture(t, 200)
	ctx := context.Background()

	withSessions := f.addEntry(t)
	f.record(t, withSessions.ID, 150)

	otherUser := uuid.New()
	direct, err := f.service.AddToLibrary(ctx, otherUser, f.bookID)
	require.NoError(t, err)
	_, err = f.service.SetPagesRead(ctx, otherUser, direct.ID, 80)
	require.NoError(t, err)

	f.store.setTotalPages(f.bookID, 100)
	require.NoError(t, f.service.RederiveBook(ctx, f.bookID))

	first, err := f.service.GetEntry(ctx, f.userID, withSessions.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, first.PagesRead)
	assert.Equal(t, progress.Done, first.Status)
	assert.NotNil(t, first.FinishedAt)

	second, err := f.service.GetEntry(ctx, otherUser, direct.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, second.PagesRead)
	assert.Equal(t, progress.InProgress, second.Status)

	f.store.setTotalPages(f.bookID, 300)
	changed, err := f.service.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed, "only the session-backed entry grows back")

	first, err = f.service.GetEntry(ctx, f.userID, withSessions.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, first.PagesRead)
	assert.Equal(t, progress.InProgress, first.Status)
	assert.Nil(t, first.FinishedAt)
}

/*
TestHistory checks the date window and its validation.
*/
func TestHistory(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	entry := f.addEntry(t)

	for day := 1; day <= 5; day++ {
		_, err := f.service.RecordSession(ctx, f.userID, entry.ID, library.SessionInput{
			Date:      time.Date(2026, time.March, day, 18, 30, 0, 0, time.UTC),
			PagesRead: 10,
		})
		require.NoError(t, err)
	}

	from := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

	sessions, err := f.service.History(ctx, f.userID, &from, &to)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, to, sessions[0].Date)
	assert.Equal(t, "The Left Hand of Darkness", sessions[0].BookTitle)

	_, err = f.service.History(ctx, f.userID, &to, &from)
	requireCode(t, err, apperr.CodeValidation)
}

/*
TestInvalidationFailureIsTolerated checks that a cache outage never fails a write.
*/
func TestInvalidationFailureIsTolerated(t *testing.T) {
	f := newFixture(t, 100)
	f.invalidator.err = errors.New("redis: connection refused")

	entry := f.addEntry(t)
	result := f.record(t, entry.ID, 10)
	assert.Equal(t, 10, result.Entry.PagesRead)
}

/*
TestConcurrentSessions records sessions in parallel and checks the final sum.
*/
func TestConcurrentSessions(t *testing.T) {
	f := newFixture(t, 1000)
	entry := f.addEntry(t)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.RecordSession(context.Background(), f.userID, entry.ID, library.SessionInput{
				Date:      time.Now(),
				PagesRead: 7,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.service.GetEntry(context.Background(), f.userID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 140, stored.PagesRead)
	assert.Equal(t, progress.InProgress, stored.Status)
}

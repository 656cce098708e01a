// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/tracking/library"
	"github.com/taibuivan/readtrack/internal/tracking/progress"
	"github.com/taibuivan/readtrack/pkg/slice"
)

// fakeStore is an in-memory [library.Repository]. WithEntryLock holds the
// store mutex for the whole callback and restores the previous state when
// the callback fails.
type fakeStore struct {
	mu          sync.Mutex
	books       map[string]*library.BookRef
	entries     map[string]*library.Entry
	sessions    map[string]*library.Session
	memberships map[string]int
	clock       time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:       map[string]*library.BookRef{},
		entries:     map[string]*library.Entry{},
		sessions:    map[string]*library.Session{},
		memberships: map[string]int{},
		clock:       time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (store *fakeStore) addBook(id, title string, totalPages int) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.books[id] = &library.BookRef{ID: id, Title: title, AuthorName: "Anon", TotalPages: totalPages}
}

func (store *fakeStore) setTotalPages(bookID string, totalPages int) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.books[bookID].TotalPages = totalPages
}

func (store *fakeStore) addMembership(entryID string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.memberships[entryID]++
}

func (store *fakeStore) sessionCount(entryID string) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sessionsOf(entryID))
}

func (store *fakeStore) membershipCount(entryID string) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.memberships[entryID]
}

// hydrate returns a detached copy with the current book attached.
func (store *fakeStore) hydrate(entry *library.Entry) *library.Entry {
	copied := *entry
	book := *store.books[entry.BookID]
	copied.Book = &book
	copied.Derive()
	return &copied
}

func (store *fakeStore) sessionsOf(entryID string) []*library.Session {
	var sessions []*library.Session
	for _, session := range store.sessions {
		if session.LibraryEntryID == entryID {
			copied := *session
			sessions = append(sessions, &copied)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].Date.After(sessions[j].Date)
	})
	return sessions
}

func (store *fakeStore) tick() time.Time {
	store.clock = store.clock.Add(time.Minute)
	return store.clock
}

func (store *fakeStore) Create(_ context.Context, entry *library.Entry) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.books[entry.BookID]; !ok {
		return apperr.FieldInvalid(library.FieldBookID, "Book does not exist")
	}
	for _, existing := range store.entries {
		if existing.UserID == entry.UserID && existing.BookID == entry.BookID {
			return apperr.Conflict("Book is already in library")
		}
	}

	entry.DateAdded = store.tick()
	entry.UpdatedAt = entry.DateAdded
	copied := *entry
	store.entries[entry.ID] = &copied
	return nil
}

func (store *fakeStore) FindByID(_ context.Context, userID, entryID string) (*library.Entry, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[entryID]
	if !ok || entry.UserID != userID {
		return nil, apperr.NotFound("Library entry")
	}
	return store.hydrate(entry), nil
}

func (store *fakeStore) List(_ context.Context, userID string, filter library.Filter, limit, offset int) ([]*library.Entry, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var matched []*library.Entry
	for _, entry := range store.entries {
		if entry.UserID != userID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, entry.Status) {
			continue
		}
		if filter.Favorite != nil && entry.IsFavorite != *filter.Favorite {
			continue
		}
		hydrated := store.hydrate(entry)
		if filter.Query != "" && !strings.Contains(strings.ToLower(hydrated.Book.Title), strings.ToLower(filter.Query)) {
			continue
		}
		matched = append(matched, hydrated)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].DateAdded.After(matched[j].DateAdded) })

	total := len(matched)
	if offset >= total {
		return []*library.Entry{}, total, nil
	}
	return matched[offset:min(total, offset+limit)], total, nil
}

func (store *fakeStore) UpdateMeta(_ context.Context, entry *library.Entry) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	stored, ok := store.entries[entry.ID]
	if !ok || stored.UserID != entry.UserID {
		return apperr.NotFound("Library entry")
	}
	stored.Comment = entry.Comment
	stored.IsFavorite = entry.IsFavorite
	stored.Rating = entry.Rating
	stored.UpdatedAt = store.tick()
	entry.UpdatedAt = stored.UpdatedAt
	return nil
}

func (store *fakeStore) StatItems(_ context.Context, userID string) ([]progress.Item, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var items []progress.Item
	for _, entry := range store.entries {
		if entry.UserID == userID {
			items = append(items, progress.Item{Status: entry.Status, PagesRead: entry.PagesRead})
		}
	}
	return items, nil
}

func (store *fakeStore) ListSessions(_ context.Context, entryID string) ([]*library.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.sessionsOf(entryID), nil
}

func (store *fakeStore) History(_ context.Context, userID string, from, to *time.Time) ([]*library.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var history []*library.Session
	for entryID, entry := range store.entries {
		if entry.UserID != userID {
			continue
		}
		for _, session := range store.sessionsOf(entryID) {
			if from != nil && session.Date.Before(*from) {
				continue
			}
			if to != nil && session.Date.After(*to) {
				continue
			}
			session.BookTitle = store.books[entry.BookID].Title
			history = append(history, session)
		}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Date.After(history[j].Date) })
	return history, nil
}

func (store *fakeStore) EntryIDs(_ context.Context, bookID string) ([]string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var ids []string
	for id, entry := range store.entries {
		if bookID == "" || entry.BookID == bookID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (store *fakeStore) WithEntryLock(_ context.Context, entryID string, fn func(tx library.EntryTx, entry *library.Entry) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[entryID]
	if !ok {
		return apperr.NotFound("Library entry")
	}

	entries := make(map[string]*library.Entry, len(store.entries))
	for id, stored := range store.entries {
		copied := *stored
		entries[id] = &copied
	}
	sessions := maps.Clone(store.sessions)
	memberships := maps.Clone(store.memberships)

	if err := fn(&fakeTx{store: store}, store.hydrate(entry)); err != nil {
		store.entries = entries
		store.sessions = sessions
		store.memberships = memberships
		return err
	}
	return nil
}

// fakeTx mutates the store directly; the caller already holds its mutex.
type fakeTx struct {
	store *fakeStore
}

func (tx *fakeTx) ListSessions(_ context.Context, entryID string) ([]*library.Session, error) {
	return tx.store.sessionsOf(entryID), nil
}

func (tx *fakeTx) InsertSession(_ context.Context, session *library.Session) error {
	session.CreatedAt = tx.store.tick()
	copied := *session
	tx.store.sessions[session.ID] = &copied
	return nil
}

func (tx *fakeTx) DeleteSession(_ context.Context, entryID, sessionID string) (bool, error) {
	session, ok := tx.store.sessions[sessionID]
	if !ok || session.LibraryEntryID != entryID {
		return false, nil
	}
	delete(tx.store.sessions, sessionID)
	return true, nil
}

func (tx *fakeTx) SaveProgress(_ context.Context, entryID string, snapshot progress.Snapshot) error {
	entry := tx.store.entries[entryID]
	entry.PagesRead = snapshot.PagesRead
	entry.Status = snapshot.Status
	entry.FinishedAt = snapshot.FinishedAt
	entry.UpdatedAt = tx.store.tick()
	return nil
}

func (tx *fakeTx) DeleteSessions(_ context.Context, entryID string) error {
	for id, session := range tx.store.sessions {
		if session.LibraryEntryID == entryID {
			delete(tx.store.sessions, id)
		}
	}
	return nil
}

func (tx *fakeTx) DeleteMemberships(_ context.Context, entryID string) error {
	delete(tx.store.memberships, entryID)
	return nil
}

func (tx *fakeTx) DeleteEntry(_ context.Context, entryID string) error {
	delete(tx.store.entries, entryID)
	return nil
}

// recordingInvalidator remembers which users had their cache dropped.
type recordingInvalidator struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (invalidator *recordingInvalidator) InvalidateUser(_ context.Context, userID string) error {
	invalidator.mu.Lock()
	defer invalidator.mu.Unlock()
	invalidator.users = append(invalidator.users, userID)
	return invalidator.err
}

func (invalidator *recordingInvalidator) count(userID string) int {
	invalidator.mu.Lock()
	defer invalidator.mu.Unlock()
	return len(slice.Filter(invalidator.users, func(id string) bool { return id == userID }))
}

func containsStatus(statuses []progress.Status, status progress.Status) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// Package memory is a process-local store used in development and tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"chrona/internal/models"
	"chrona/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]models.User
	notes   map[string]models.Note
	journal map[string]models.JournalEntry
	tasks   map[string]models.Task
	events  map[string]models.Event
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:   map[string]models.User{},
		notes:   map[string]models.Note{},
		journal: map[string]models.JournalEntry{},
		tasks:   map[string]models.Task{},
		events:  map[string]models.Event{},
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	s.users[u.ID] = *u
	return nil
}

// Notes

func (s *Store) ListNotes(ctx context.Context, ownerID, tag string) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Note{}
	for _, n := range s.notes {
		if n.UserID != ownerID {
			continue
		}
		if tag != "" && !slices.Contains(n.Tags, tag) {
			continue
		}
		out = append(out, cloneNote(n))
	}
	slices.SortFunc(out, func(a, b models.Note) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) GetNote(ctx context.Context, id string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	n = cloneNote(n)
	return &n, nil
}

func (s *Store) CreateNote(ctx context.Context, n *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[n.ID] = cloneNote(*n)
	return nil
}

func (s *Store) UpdateNote(ctx context.Context, n *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[n.ID]; !ok {
		return store.ErrNotFound
	}
	s.notes[n.ID] = cloneNote(*n)
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

// Journal

func (s *Store) ListJournal(ctx context.Context, ownerID, from, to string) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.JournalEntry{}
	for _, j := range s.journal {
		if j.UserID != ownerID {
			continue
		}
		// YYYY-MM-DD compares correctly as a string
		if from != "" && j.Date < from {
			continue
		}
		if to != "" && j.Date > to {
			continue
		}
		out = append(out, j)
	}
	slices.SortFunc(out, func(a, b models.JournalEntry) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out, nil
}

func (s *Store) GetJournal(ctx context.Context, id string) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.journal[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &j, nil
}

func (s *Store) GetJournalByDate(ctx context.Context, ownerID, date string) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.journal {
		if j.UserID == ownerID && j.Date == date {
			return &j, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateJournal(ctx context.Context, j *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalDateTaken(j.UserID, j.Date, "") {
		return store.ErrDuplicate
	}
	s.journal[j.ID] = *j
	return nil
}

func (s *Store) UpdateJournal(ctx context.Context, j *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.journal[j.ID]; !ok {
		return store.ErrNotFound
	}
	if s.journalDateTaken(j.UserID, j.Date, j.ID) {
		return store.ErrDuplicate
	}
	s.journal[j.ID] = *j
	return nil
}

func (s *Store) DeleteJournal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.journal[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.journal, id)
	return nil
}

// journalDateTaken must be called with mu held.
func (s *Store) journalDateTaken(ownerID, date, exceptID string) bool {
	for id, j := range s.journal {
		if id != exceptID && j.UserID == ownerID && j.Date == date {
			return true
		}
	}
	return false
}

// Tasks

func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Task{}
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			out = append(out, cloneTask(t))
		}
	}
	models.SortTasks(out)
	return out, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ParentTask != nil {
		parent, ok := s.tasks[*t.ParentTask]
		if !ok {
			return store.ErrNotFound
		}
		parent = cloneTask(parent)
		parent.Subtasks = append(parent.Subtasks, t.ID)
		s.tasks[parent.ID] = parent
	}
	s.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tasks[t.ID]
	if !ok {
		return store.ErrNotFound
	}
	// subtasks are owned by CreateTask and DeleteTaskTree
	next := cloneTask(*t)
	next.Subtasks = cur.Subtasks
	s.tasks[t.ID] = next
	t.Subtasks = slices.Clone(cur.Subtasks)
	return nil
}

func (s *Store) DeleteTaskTree(ctx context.Context, ownerID, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	root, ok := s.tasks[id]
	if !ok || root.UserID != ownerID {
		return nil, store.ErrNotFound
	}
	if root.ParentTask != nil {
		if parent, ok := s.tasks[*root.ParentTask]; ok {
			parent = cloneTask(parent)
			parent.Subtasks = slices.DeleteFunc(parent.Subtasks, func(sub string) bool { return sub == id })
			s.tasks[parent.ID] = parent
		}
	}
	ids := store.SubtreeIDs(id, s.tasks)
	for _, tid := range ids {
		delete(s.tasks, tid)
	}
	return ids, nil
}

// Events

func (s *Store) ListEvents(ctx context.Context, ownerID string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Event{}
	for _, e := range s.events {
		if e.UserID == ownerID {
			out = append(out, cloneEvent(e))
		}
	}
	models.SortEvents(out)
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	e = cloneEvent(e)
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = cloneEvent(*e)
	return nil
}

func (s *Store) UpdateEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return store.ErrNotFound
	}
	s.events[e.ID] = cloneEvent(*e)
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) DeleteEvents(ctx context.Context, ownerID string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if e, ok := s.events[id]; ok && e.UserID == ownerID {
			delete(s.events, id)
			n++
		}
	}
	return n, nil
}

func cloneNote(n models.Note) models.Note {
	n.Tags = slices.Clone(n.Tags)
	return n
}

func cloneTask(t models.Task) models.Task {
	t.Tags = slices.Clone(t.Tags)
	t.Subtasks = slices.Clone(t.Subtasks)
	return t
}

func cloneEvent(e models.Event) models.Event {
	e.Tags = slices.Clone(e.Tags)
	e.Attendees = slices.Clone(e.Attendees)
	e.Reminders = slices.Clone(e.Reminders)
	return e
}

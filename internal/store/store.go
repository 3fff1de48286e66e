// Package store defines the persistence boundary of the API.
//
// Three implementations exist: postgres (sqlx over pgx), surreal (SurrealDB
// documents) and memory (process local, used for development and tests).
// Every implementation honours the same contract:
//
//   - Get methods return ErrNotFound for missing ids.
//   - Create methods persist the entity as given; ids and timestamps are set
//     by the caller.
//   - Update methods replace the stored entity and return ErrNotFound when
//     it does not exist.
//   - List methods return the owner's entities only and never nil.
//   - Uniqueness violations (user email, journal owner+date) return
//     ErrDuplicate.
package store

import (
	"context"
	"errors"

	"chrona/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate")
)

type Store interface {
	UserStore
	NoteStore
	JournalStore
	TaskStore
	EventStore

	Ping(ctx context.Context) error
	Close() error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type NoteStore interface {
	// ListNotes returns the owner's notes newest first; a non-empty tag keeps
	// only notes carrying exactly that tag.
	ListNotes(ctx context.Context, ownerID, tag string) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	CreateNote(ctx context.Context, n *models.Note) error
	UpdateNote(ctx context.Context, n *models.Note) error
	DeleteNote(ctx context.Context, id string) error
}

type JournalStore interface {
	// ListJournal returns entries newest first, optionally bounded by
	// inclusive YYYY-MM-DD dates (empty means unbounded).
	ListJournal(ctx context.Context, ownerID, from, to string) ([]models.JournalEntry, error)
	GetJournal(ctx context.Context, id string) (*models.JournalEntry, error)
	GetJournalByDate(ctx context.Context, ownerID, date string) (*models.JournalEntry, error)
	CreateJournal(ctx context.Context, j *models.JournalEntry) error
	UpdateJournal(ctx context.Context, j *models.JournalEntry) error
	DeleteJournal(ctx context.Context, id string) error
}

type TaskStore interface {
	ListTasks(ctx context.Context, ownerID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	// CreateTask also appends the new id to the parent's subtask list when
	// ParentTask is set, in the same write.
	CreateTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, t *models.Task) error
	// DeleteTaskTree deletes a task and all its descendants and detaches it
	// from its parent, atomically. It returns the deleted ids.
	DeleteTaskTree(ctx context.Context, ownerID, id string) ([]string, error)
}

type EventStore interface {
	// ListEvents returns the owner's events ordered by start date.
	ListEvents(ctx context.Context, ownerID string) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	UpdateEvent(ctx context.Context, e *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	// DeleteEvents removes the listed events that belong to ownerID and
	// reports how many were removed.
	DeleteEvents(ctx context.Context, ownerID string, ids []string) (int, error)
}

// SubtreeIDs walks the subtask lists starting at rootID and returns rootID
// followed by every descendant. Cycles are ignored.
func SubtreeIDs(rootID string, byID map[string]models.Task) []string {
	ids := []string{}
	seen := map[string]bool{}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if t, ok := byID[id]; ok {
			queue = append(queue, t.Subtasks...)
		}
	}
	return ids
}

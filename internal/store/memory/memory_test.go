package memory

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chrona/internal/models"
	"chrona/internal/store"
)

func strPtr(s string) *string { return &s }

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}))
	err := s.CreateUser(ctx, &models.User{ID: "u2", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	u, err := s.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestJournalUniquePerDate(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateJournal(ctx, &models.JournalEntry{ID: "j1", UserID: "u1", Date: "2024-03-01"}))
	require.NoError(t, s.CreateJournal(ctx, &models.JournalEntry{ID: "j2", UserID: "u2", Date: "2024-03-01"}))
	err := s.CreateJournal(ctx, &models.JournalEntry{ID: "j3", UserID: "u1", Date: "2024-03-01"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	require.NoError(t, s.CreateJournal(ctx, &models.JournalEntry{ID: "j4", UserID: "u1", Date: "2024-03-02"}))
	err = s.UpdateJournal(ctx, &models.JournalEntry{ID: "j4", UserID: "u1", Date: "2024-03-01"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	list, err := s.ListJournal(ctx, "u1", "2024-03-02", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "j4", list[0].ID)
}

func TestNotesNewestFirstWithTag(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateNote(ctx, &models.Note{ID: "n1", UserID: "u1", Tags: pq.StringArray{"work"}, CreatedAt: base}))
	require.NoError(t, s.CreateNote(ctx, &models.Note{ID: "n2", UserID: "u1", Tags: pq.StringArray{"home"}, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.CreateNote(ctx, &models.Note{ID: "n3", UserID: "u1", Tags: pq.StringArray{"work"}, CreatedAt: base.Add(2 * time.Hour)}))

	all, err := s.ListNotes(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "n3", all[0].ID)

	work, err := s.ListNotes(ctx, "u1", "work")
	require.NoError(t, err)
	assert.Len(t, work, 2)

	none, err := s.ListNotes(ctx, "u2", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateNote(ctx, &models.Note{ID: "n1", UserID: "u1", Tags: pq.StringArray{"a"}}))

	n, err := s.GetNote(ctx, "n1")
	require.NoError(t, err)
	n.Tags[0] = "changed"

	again, err := s.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Tags[0])
}

func TestDeleteTaskTree(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: "root", UserID: "u1"}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: "mid", UserID: "u1", ParentTask: strPtr("root")}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: "leaf", UserID: "u1", ParentTask: strPtr("mid")}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: "sibling", UserID: "u1", ParentTask: strPtr("root")}))

	root, err := s.GetTask(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"mid", "sibling"}, root.Subtasks)

	_, err = s.DeleteTaskTree(ctx, "u2", "mid")
	assert.ErrorIs(t, err, store.ErrNotFound)

	ids, err := s.DeleteTaskTree(ctx, "u1", "mid")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mid", "leaf"}, ids)

	_, err = s.GetTask(ctx, "leaf")
	assert.ErrorIs(t, err, store.ErrNotFound)

	root, err = s.GetTask(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"sibling"}, root.Subtasks)
}

func TestCreateTaskMissingParent(t *testing.T) {
	s := New()
	err := s.CreateTask(context.Background(), &models.Task{ID: "t", UserID: "u1", ParentTask: strPtr("nope")})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteEventsOnlyOwned(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateEvent(ctx, &models.Event{ID: "e1", UserID: "u1"}))
	require.NoError(t, s.CreateEvent(ctx, &models.Event{ID: "e2", UserID: "u1"}))
	require.NoError(t, s.CreateEvent(ctx, &models.Event{ID: "e3", UserID: "u2"}))

	n, err := s.DeleteEvents(ctx, "u1", []string{"e1", "e3", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := s.ListEvents(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "e2", left[0].ID)

	_, err = s.GetEvent(ctx, "e3")
	assert.NoError(t, err)
}

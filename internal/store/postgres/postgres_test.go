package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chrona/internal/models"
	"chrona/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newUser(t *testing.T, s *Store) *models.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		Name:         "Test",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestUserEmailUnique(t *testing.T) {
	s := openTestStore(t)
	u := newUser(t, s)

	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, s.CreateUser(context.Background(), &dup), store.ErrDuplicate)
}

func TestJournalDateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	u := newUser(t, s)
	now := time.Now().UTC()

	j := &models.JournalEntry{ID: uuid.NewString(), UserID: u.ID, Date: "2024-02-29", Entry: "leap", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateJournal(ctx, j))

	got, err := s.GetJournalByDate(ctx, u.ID, "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got.Date)

	again := *j
	again.ID = uuid.NewString()
	assert.ErrorIs(t, s.CreateJournal(ctx, &again), store.ErrDuplicate)
}

func TestTaskTreeDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	u := newUser(t, s)
	now := time.Now().UTC()

	mk := func(parent *string) *models.Task {
		task := &models.Task{
			ID: uuid.NewString(), UserID: u.ID, Title: "t",
			Status: models.StatusTodo, Priority: models.PriorityMedium,
			ParentTask: parent, CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, s.CreateTask(ctx, task))
		return task
	}
	root := mk(nil)
	child := mk(&root.ID)
	grandchild := mk(&child.ID)

	got, err := s.GetTask(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{child.ID}, got.Subtasks)

	ids, err := s.DeleteTaskTree(ctx, u.ID, child.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{child.ID, grandchild.ID}, ids)

	got, err = s.GetTask(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Subtasks)

	_, err = s.GetTask(ctx, grandchild.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEventJSONColumns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	u := newUser(t, s)
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	e := &models.Event{
		ID: uuid.NewString(), UserID: u.ID, Title: "Standup",
		StartDate: start, EndDate: start.Add(time.Hour),
		Color: models.DefaultColor, Type: models.EventTypeMeeting, Priority: models.PriorityMedium,
		Attendees: models.Attendees{{Email: "a@example.com", Response: models.ResponsePending}},
		Reminders: models.Reminders{{Type: models.ReminderPush, Time: 15}},
		Recurring: models.Recurrence{Enabled: true, Pattern: models.RecurDaily, Interval: 1},
		CreatedAt: start, UpdatedAt: start,
	}
	require.NoError(t, s.CreateEvent(ctx, e))

	got, err := s.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Attendees, got.Attendees)
	assert.Equal(t, e.Reminders, got.Reminders)
	assert.Equal(t, e.Recurring, got.Recurring)
	assert.True(t, got.StartDate.Equal(start))

	n, err := s.DeleteEvents(ctx, u.ID, []string{e.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chrona/internal/models"
)

func TestParseDay(t *testing.T) {
	svc, _ := newTestServices(t)

	day, err := svc.Journal.ParseDay("")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", day)

	day, err = svc.Journal.ParseDay("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", day)

	day, err = svc.Journal.ParseDay("2024-03-01T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", day)

	_, err = svc.Journal.ParseDay("03/01/2024")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJournalOnePerDay(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	first, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "Good day"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", first.Date)

	_, err = svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "Again", Date: "2024-03-15"})
	require.ErrorIs(t, err, ErrConflict)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Contains(t, conflict.Message, "2024-03-15")

	_, err = svc.Journal.Create(ctx, "u2", models.JournalInput{Entry: "Mine too"})
	assert.NoError(t, err)

	other, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "Yesterday", Date: "2024-03-14"})
	require.NoError(t, err)
	_, err = svc.Journal.Update(ctx, "u1", other.ID, models.JournalUpdate{Date: ptr("2024-03-15")})
	assert.ErrorIs(t, err, ErrConflict)

	moved, err := svc.Journal.Update(ctx, "u1", other.ID, models.JournalUpdate{Date: ptr("2024-03-10")})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", moved.Date)

	_, err = svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "  "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJournalEditDoesNotUndoConcurrentMove(t *testing.T) {
	svc, st := newInterceptServices(t)
	ctx := context.Background()

	entry, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "Draft", Date: "2024-03-14"})
	require.NoError(t, err)

	moved := make(chan error, 1)
	st.journalID = entry.ID
	st.hook = func() {
		go func() {
			_, err := svc.Journal.Update(ctx, "u1", entry.ID, models.JournalUpdate{Date: ptr("2024-03-10")})
			moved <- err
		}()
	}

	_, err = svc.Journal.Update(ctx, "u1", entry.ID, models.JournalUpdate{Entry: ptr("Final")})
	require.NoError(t, err)
	require.NoError(t, <-moved)

	got, err := svc.Journal.Get(ctx, "u1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Entry)
	assert.Equal(t, "2024-03-10", got.Date)
}

func TestJournalListRange(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	for _, d := range []string{"2024-03-01", "2024-03-05", "2024-03-10"} {
		_, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "e " + d, Date: d})
		require.NoError(t, err)
	}

	list, err := svc.Journal.List(ctx, "u1", "2024-03-02", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-03-10", list[0].Date)
	assert.Equal(t, "2024-03-05", list[1].Date)

	_, err = svc.Journal.List(ctx, "u1", "yesterday", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJournalOwnership(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	j, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "private"})
	require.NoError(t, err)

	_, err = svc.Journal.Get(ctx, "u2", j.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Journal.Delete(ctx, "u2", j.ID), ErrForbidden)
	require.NoError(t, svc.Journal.Delete(ctx, "u1", j.ID))
	_, err = svc.Journal.Get(ctx, "u1", j.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournalSealedAtRest(t *testing.T) {
	svc, st := newTestServices(t, WithEncryption(testSealer(t)))
	ctx := context.Background()

	j, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "dear diary"})
	require.NoError(t, err)
	assert.Equal(t, "dear diary", j.Entry)

	raw, err := st.GetJournal(ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw.Entry, "gcm1:"))

	got, err := svc.Journal.Get(ctx, "u1", j.ID)
	require.NoError(t, err)
	assert.Equal(t, "dear diary", got.Entry)

	list, err := svc.Journal.List(ctx, "u1", "", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "dear diary", list[0].Entry)
}

func TestStreak(t *testing.T) {
	entries := func(days ...string) []models.JournalEntry {
		out := make([]models.JournalEntry, len(days))
		for i, d := range days {
			out[i] = models.JournalEntry{Date: d}
		}
		return out
	}

	assert.Equal(t, 3, streakFrom(entries("2024-03-15", "2024-03-14", "2024-03-13", "2024-03-11"), "2024-03-15"))
	assert.Equal(t, 0, streakFrom(entries("2024-03-14", "2024-03-13"), "2024-03-15"))
	assert.Equal(t, 2, streakFrom(entries("2024-03-16", "2024-03-15", "2024-03-14"), "2024-03-15"))
	assert.Equal(t, 0, streakFrom(nil, "2024-03-15"))

	svc, _ := newTestServices(t)
	ctx := context.Background()
	for _, d := range []string{"2024-02-28", "2024-02-29", "2024-03-01"} {
		_, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "x", Date: d})
		require.NoError(t, err)
	}
	n, err := svc.Journal.Streak(ctx, "u1", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chrona/internal/models"
)

func TestDashboard(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	for i := range 7 {
		_, err := svc.Notes.Create(ctx, "u1", models.NoteInput{Title: "n", Content: "c"})
		require.NoError(t, err, i)
	}
	// Wednesday through Friday, plus last Sunday which belongs to the previous week.
	for _, d := range []string{"2024-03-10", "2024-03-13", "2024-03-14", "2024-03-15"} {
		_, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "x", Date: d})
		require.NoError(t, err)
	}
	_, err := svc.Tasks.Create(ctx, "u1", models.TaskInput{Title: "t", Status: models.StatusCompleted})
	require.NoError(t, err)
	_, err = svc.Events.Create(ctx, "u1", eventAt("Later today", fixedNow.Add(time.Hour), time.Hour))
	require.NoError(t, err)

	d, err := svc.Dashboard.Get(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.ReferenceDate)
	assert.Equal(t, 7, d.NoteCount)
	assert.Len(t, d.RecentNotes, 5)
	assert.True(t, d.HasTodayEntry)
	assert.Equal(t, 3, d.CurrentStreakDays)
	assert.Equal(t, 3, d.EntriesThisWeek)
	require.Len(t, d.Last7Days, 7)
	assert.Equal(t, JournalDay{Date: "2024-03-09", HasEntry: false}, d.Last7Days[0])
	assert.Equal(t, JournalDay{Date: "2024-03-10", HasEntry: true}, d.Last7Days[1])
	assert.Equal(t, JournalDay{Date: "2024-03-15", HasEntry: true}, d.Last7Days[6])
	assert.Equal(t, 1, d.TaskStats.Total)
	assert.Equal(t, 100, d.TaskStats.CompletionRate)
	assert.Len(t, d.TodayEvents, 1)
	assert.Len(t, d.UpcomingEvents, 1)
}

func TestDashboardReferenceDate(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Journal.Create(ctx, "u1", models.JournalInput{Entry: "x", Date: "2024-03-13"})
	require.NoError(t, err)

	d, err := svc.Dashboard.Get(ctx, "u1", "2024-03-13")
	require.NoError(t, err)
	assert.True(t, d.HasTodayEntry)
	assert.Equal(t, 1, d.CurrentStreakDays)
	assert.Empty(t, d.RecentNotes)

	_, err = svc.Dashboard.Get(ctx, "u1", "13-03-2024")
	assert.ErrorIs(t, err, ErrValidation)
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestOverlaps(t *testing.T) {
	h := time.Hour
	assert.True(t, Overlaps(t0, t0.Add(h), t0.Add(30*time.Minute), t0.Add(2*h)))
	assert.True(t, Overlaps(t0, t0.Add(4*h), t0.Add(h), t0.Add(2*h)))
	assert.False(t, Overlaps(t0, t0.Add(h), t0.Add(h), t0.Add(2*h)))
	assert.False(t, Overlaps(t0.Add(h), t0.Add(2*h), t0, t0.Add(h)))
}

func TestConflictsWithIgnoresAllDay(t *testing.T) {
	a := Event{StartDate: t0, EndDate: t0.Add(time.Hour)}
	b := Event{StartDate: t0, EndDate: t0.Add(time.Hour)}
	assert.True(t, a.ConflictsWith(b))
	b.AllDay = true
	assert.False(t, a.ConflictsWith(b))
	assert.False(t, b.ConflictsWith(a))
}

func TestTaskIsOverdue(t *testing.T) {
	past := t0.Add(-time.Minute)
	task := Task{Status: StatusTodo, DueDate: &past}
	assert.True(t, task.IsOverdue(t0))
	task.Status = StatusCancelled
	assert.False(t, task.IsOverdue(t0))
	task.Status = StatusInProgress
	task.DueDate = nil
	assert.False(t, task.IsOverdue(t0))
}

func TestTagListUnmarshal(t *testing.T) {
	var in NoteInput
	require.NoError(t, json.Unmarshal([]byte(`{"tags":"work, ideas,,work"}`), &in))
	assert.Equal(t, TagList{"work", "ideas"}, in.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"tags":[" a ","b","a"]}`), &in))
	assert.Equal(t, TagList{"a", "b"}, in.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"tags":null}`), &in))
	assert.Equal(t, TagList{}, in.Tags)

	assert.Error(t, json.Unmarshal([]byte(`{"tags":42}`), &in))
}

func TestNullableDistinguishesNullFromAbsent(t *testing.T) {
	var u TaskUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &u))
	assert.False(t, u.DueDate.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":null,"estimatedTime":25}`), &u))
	assert.True(t, u.DueDate.Set)
	assert.Nil(t, u.DueDate.Value)
	require.True(t, u.EstimatedTime.Set)
	assert.Equal(t, 25, *u.EstimatedTime.Value)

	var e EventUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"relatedNote":"n1","allDay":false}`), &e))
	assert.Equal(t, "n1", *e.RelatedNote.Value)
	assert.False(t, e.RelatedTask.Set)
	assert.True(t, e.TouchesSchedule())
}

func TestTaskFilter(t *testing.T) {
	due := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	task := Task{
		Title:       "Quarterly report",
		Description: "numbers",
		Status:      StatusInProgress,
		Priority:    PriorityHigh,
		Category:    "work",
		Tags:        pq.StringArray{"finance"},
		DueDate:     &due,
	}
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	assert.True(t, TaskFilter{}.Matches(task))
	assert.True(t, TaskFilter{Status: StatusInProgress, Priority: PriorityHigh, Category: "work"}.Matches(task))
	assert.False(t, TaskFilter{Status: StatusTodo}.Matches(task))
	assert.True(t, TaskFilter{Tag: "finance"}.Matches(task))
	assert.False(t, TaskFilter{Tag: "fin"}.Matches(task))
	assert.True(t, TaskFilter{Search: "REPORT"}.Matches(task))
	assert.True(t, TaskFilter{Search: "fin"}.Matches(task))
	assert.True(t, TaskFilter{DueDay: &day}.Matches(task))
	assert.False(t, TaskFilter{DueDay: &nextDay}.Matches(task))
}

func TestEventFilter(t *testing.T) {
	e := Event{
		Title:     "Dentist",
		Location:  "Main St",
		StartDate: t0,
		EndDate:   t0.Add(time.Hour),
		Type:      EventTypePersonal,
		Priority:  PriorityLow,
		Tags:      pq.StringArray{"health"},
	}
	before, after := t0.Add(-2*time.Hour), t0.Add(-time.Hour)

	assert.True(t, EventFilter{}.Matches(e))
	assert.True(t, EventFilter{Start: &after, End: &t0}.Matches(e))
	assert.False(t, EventFilter{Start: &before, End: &after}.Matches(e))
	assert.True(t, EventFilter{Start: &before}.Matches(e), "a lone bound is ignored")
	assert.True(t, EventFilter{Tags: []string{"work", "health"}}.Matches(e))
	assert.False(t, EventFilter{Tags: []string{"work"}}.Matches(e))
	assert.True(t, EventFilter{Query: "main"}.Matches(e))
	assert.False(t, EventFilter{Type: EventTypeWork}.Matches(e))
}

func TestSortTasks(t *testing.T) {
	d1, d2 := t0, t0.Add(time.Hour)
	tasks := []Task{
		{ID: "low", Priority: PriorityLow},
		{ID: "urgent-undated", Priority: PriorityUrgent, CreatedAt: t0},
		{ID: "urgent-late", Priority: PriorityUrgent, DueDate: &d2},
		{ID: "urgent-early", Priority: PriorityUrgent, DueDate: &d1},
		{ID: "urgent-undated-newer", Priority: PriorityUrgent, CreatedAt: t0.Add(time.Minute)},
	}
	SortTasks(tasks)
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	assert.Equal(t, []string{"urgent-early", "urgent-late", "urgent-undated-newer", "urgent-undated", "low"}, ids)
}

func TestJSONBColumns(t *testing.T) {
	var nilAttendees Attendees
	v, err := nilAttendees.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	var r Reminders
	require.NoError(t, r.Scan([]byte(`[{"type":"email","time":30,"sent":false}]`)))
	assert.Equal(t, Reminders{{Type: ReminderEmail, Time: 30}}, r)

	var rec Recurrence
	require.NoError(t, rec.Scan(`{"enabled":true,"pattern":"weekly","interval":2}`))
	assert.Equal(t, Recurrence{Enabled: true, Pattern: RecurWeekly, Interval: 2}, rec)

	assert.Error(t, rec.Scan(42))
}

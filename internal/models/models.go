package models

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type Note struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"userId"`
	Title     string         `db:"title" json:"title"`
	Content   string         `db:"content" json:"content"` // Sealed at rest when encryption is enabled
	Tags      pq.StringArray `db:"tags" json:"tags"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

type JournalEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Entry     string    `db:"entry" json:"entry"`     // Sealed at rest when encryption is enabled
	Date      string    `db:"local_date" json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Task struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"userId"`
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	Status        TaskStatus     `db:"status" json:"status"`
	Priority      Priority       `db:"priority" json:"priority"`
	DueDate       *time.Time     `db:"due_date" json:"dueDate"`
	CompletedAt   *time.Time     `db:"completed_at" json:"completedAt"`
	Tags          pq.StringArray `db:"tags" json:"tags"`
	Category      string         `db:"category" json:"category"`
	EstimatedTime *int           `db:"estimated_time" json:"estimatedTime"` // minutes
	ActualTime    *int           `db:"actual_time" json:"actualTime"`       // minutes
	Notes         string         `db:"notes" json:"notes"`
	ParentTask    *string        `db:"parent_task" json:"parentTask"`
	Subtasks      pq.StringArray `db:"subtasks" json:"subtasks"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// IsOverdue reports whether an open task is past its due date at now.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status.Open()
}

type Event struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"userId"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	StartDate   time.Time      `db:"start_date" json:"startDate"`
	EndDate     time.Time      `db:"end_date" json:"endDate"`
	AllDay      bool           `db:"all_day" json:"allDay"`
	Location    string         `db:"location" json:"location"`
	Color       Color          `db:"color" json:"color"`
	Type        EventType      `db:"type" json:"type"`
	Priority    Priority       `db:"priority" json:"priority"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	Attendees   Attendees      `db:"attendees" json:"attendees"`
	Recurring   Recurrence     `db:"recurring" json:"recurring"`
	Reminders   Reminders      `db:"reminders" json:"reminders"`
	Notes       string         `db:"notes" json:"notes"`
	RelatedTask *string        `db:"related_task" json:"relatedTask"`
	RelatedNote *string        `db:"related_note" json:"relatedNote"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// ConflictsWith reports whether two timed events overlap on [start, end).
// All-day events never conflict.
func (e Event) ConflictsWith(other Event) bool {
	if e.AllDay || other.AllDay {
		return false
	}
	return Overlaps(e.StartDate, e.EndDate, other.StartDate, other.EndDate)
}

// Overlaps is the half-open interval test for [s1,e1) and [s2,e2).
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

type Attendee struct {
	Email    string           `json:"email"`
	Name     string           `json:"name"`
	Response AttendeeResponse `json:"response"`
}

type Recurrence struct {
	Enabled  bool              `json:"enabled"`
	Pattern  RecurrencePattern `json:"pattern"`
	Interval int               `json:"interval"`
	EndAfter *int              `json:"endAfter,omitempty"` // occurrences
	EndDate  *time.Time        `json:"endDate,omitempty"`
}

type Reminder struct {
	Type ReminderType `json:"type"`
	Time int          `json:"time"` // minutes before the start
	Sent bool         `json:"sent"`
}

// TagCount is one entry of the notes tag cloud.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// EventRef identifies an event in conflict reports.
type EventRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type CategoryGroup struct {
	Category string `json:"category"`
	Tasks    []Task `json:"tasks"`
}

type TaskStats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Overdue        int            `json:"overdue"`
	DueToday       int            `json:"dueToday"`
	CompletionRate int            `json:"completionRate"`
	ByStatus       map[string]int `json:"byStatus"`
	ByPriority     map[string]int `json:"byPriority"`
}

type EventStats struct {
	Period         string         `json:"period"`
	PeriodStart    time.Time      `json:"periodStart"`
	PeriodEnd      time.Time      `json:"periodEnd"`
	TotalEvents    int            `json:"totalEvents"`
	UpcomingEvents int            `json:"upcomingEvents"`
	TodayEvents    int            `json:"todayEvents"`
	TypeStats      map[string]int `json:"typeStats"`
	PriorityStats  map[string]int `json:"priorityStats"`
}

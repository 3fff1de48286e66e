package models

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Open is true for statuses that still count towards overdue/due-today.
func (s TaskStatus) Open() bool {
	return s != StatusCompleted && s != StatusCancelled
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities from low (1) to urgent (4); unknown values are 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

type EventType string

const (
	EventTypeEvent    EventType = "event"
	EventTypeMeeting  EventType = "meeting"
	EventTypeReminder EventType = "reminder"
	EventTypeTask     EventType = "task"
	EventTypePersonal EventType = "personal"
	EventTypeWork     EventType = "work"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeEvent, EventTypeMeeting, EventTypeReminder, EventTypeTask, EventTypePersonal, EventTypeWork:
		return true
	}
	return false
}

// Color is one of the eight calendar palette entries.
type Color string

const DefaultColor Color = "#4f46e5"

var palette = map[Color]bool{
	"#4f46e5": true,
	"#10b981": true,
	"#f59e0b": true,
	"#ef4444": true,
	"#8b5cf6": true,
	"#06b6d4": true,
	"#84cc16": true,
	"#f97316": true,
}

func (c Color) Valid() bool { return palette[c] }

type AttendeeResponse string

const (
	ResponsePending  AttendeeResponse = "pending"
	ResponseAccepted AttendeeResponse = "accepted"
	ResponseDeclined AttendeeResponse = "declined"
	ResponseMaybe    AttendeeResponse = "maybe"
)

func (r AttendeeResponse) Valid() bool {
	switch r {
	case ResponsePending, ResponseAccepted, ResponseDeclined, ResponseMaybe:
		return true
	}
	return false
}

type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
	RecurYearly  RecurrencePattern = "yearly"
)

func (p RecurrencePattern) Valid() bool {
	switch p {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return true
	}
	return false
}

type ReminderType string

const (
	ReminderEmail ReminderType = "email"
	ReminderPush  ReminderType = "push"
	ReminderSMS   ReminderType = "sms"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderEmail, ReminderPush, ReminderSMS:
		return true
	}
	return false
}

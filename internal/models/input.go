package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// TagList accepts either a comma separated string ("work, ideas") or a JSON
// array and always holds the normalised form.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = TagList{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = NormalizeTags(list)
	return nil
}

// ParseTags splits a comma separated tag string.
func ParseTags(s string) TagList {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims, drops empties and removes duplicates keeping the
// first occurrence order. The result is never nil.
func NormalizeTags(in []string) TagList {
	out := TagList{}
	seen := make(map[string]struct{}, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Nullable distinguishes an absent JSON key (Set == false) from an explicit
// null (Set == true, Value == nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Some returns a set Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

type NoteInput struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Tags    TagList `json:"tags"`
}

type NoteUpdate struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    *TagList `json:"tags"`
}

type JournalInput struct {
	Entry string `json:"entry"`
	Date  string `json:"date"` // YYYY-MM-DD or RFC 3339, defaults to today
}

type JournalUpdate struct {
	Entry *string `json:"entry"`
	Date  *string `json:"date"`
}

type TaskInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        TaskStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	DueDate       *time.Time `json:"dueDate"`
	Tags          TagList    `json:"tags"`
	Category      string     `json:"category"`
	EstimatedTime *int       `json:"estimatedTime"`
	Notes         string     `json:"notes"`
	ParentTask    *string    `json:"parentTask"`
}

// TaskUpdate lists every mutable task field. CompletedAt is deliberately
// absent: it follows Status.
type TaskUpdate struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	Status        *TaskStatus         `json:"status"`
	Priority      *Priority           `json:"priority"`
	DueDate       Nullable[time.Time] `json:"dueDate"`
	Tags          *TagList            `json:"tags"`
	Category      *string             `json:"category"`
	EstimatedTime Nullable[int]       `json:"estimatedTime"`
	ActualTime    Nullable[int]       `json:"actualTime"`
	Notes         *string             `json:"notes"`
}

type EventInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	AllDay      bool        `json:"allDay"`
	Location    string      `json:"location"`
	Color       Color       `json:"color"`
	Type        EventType   `json:"type"`
	Priority    Priority    `json:"priority"`
	Tags        TagList     `json:"tags"`
	Attendees   Attendees   `json:"attendees"`
	Recurring   *Recurrence `json:"recurring"`
	Reminders   Reminders   `json:"reminders"`
	Notes       string      `json:"notes"`
	RelatedTask *string     `json:"relatedTask"`
	RelatedNote *string     `json:"relatedNote"`
}

type EventUpdate struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	AllDay      *bool            `json:"allDay"`
	Location    *string          `json:"location"`
	Color       *Color           `json:"color"`
	Type        *EventType       `json:"type"`
	Priority    *Priority        `json:"priority"`
	Tags        *TagList         `json:"tags"`
	Attendees   *Attendees       `json:"attendees"`
	Recurring   *Recurrence      `json:"recurring"`
	Reminders   *Reminders       `json:"reminders"`
	Notes       *string          `json:"notes"`
	RelatedTask Nullable[string] `json:"relatedTask"`
	RelatedNote Nullable[string] `json:"relatedNote"`
}

// TouchesSchedule reports whether the update can move the event in time.
func (u EventUpdate) TouchesSchedule() bool {
	return u.StartDate != nil || u.EndDate != nil || u.AllDay != nil
}

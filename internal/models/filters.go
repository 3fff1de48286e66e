package models

import (
	"slices"
	"strings"
	"time"
)

// TaskFilter holds the optional task list filters; zero values are ignored
// and the rest are combined with AND.
type TaskFilter struct {
	Status   TaskStatus
	Priority Priority
	Category string
	Tag      string
	Search   string
	// DueDay is the start of a local calendar day; tasks due within that day match.
	DueDay *time.Time
}

func (f TaskFilter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Tag != "" && !slices.Contains(t.Tags, f.Tag) {
		return false
	}
	if f.DueDay != nil {
		if t.DueDate == nil {
			return false
		}
		next := f.DueDay.AddDate(0, 0, 1)
		if t.DueDate.Before(*f.DueDay) || !t.DueDate.Before(next) {
			return false
		}
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !containsFold(t.Title, q) && !containsFold(t.Description, q) && !slices.ContainsFunc(t.Tags, func(tag string) bool {
			return containsFold(tag, q)
		}) {
			return false
		}
	}
	return true
}

// EventFilter covers both the list and the search endpoints.
type EventFilter struct {
	// Start and End only apply when both are set.
	Start    *time.Time
	End      *time.Time
	Type     EventType
	Priority Priority
	// Tags matches events carrying any of the listed tags.
	Tags  []string
	Query string
}

func (f EventFilter) Matches(e Event) bool {
	if f.Start != nil && f.End != nil {
		// closed range touch, same as the calendar view asks for
		if e.StartDate.After(*f.End) || e.EndDate.Before(*f.Start) {
			return false
		}
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Priority != "" && e.Priority != f.Priority {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(tag string) bool {
		return slices.Contains(e.Tags, tag)
	}) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !containsFold(e.Title, q) && !containsFold(e.Description, q) &&
			!containsFold(e.Location, q) && !containsFold(e.Notes, q) {
			return false
		}
	}
	return true
}

// containsFold expects needle already lower-cased.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// SortTasks orders by priority desc, due date asc (undated last), newest first.
func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return rb - ra
		}
		switch {
		case a.DueDate != nil && b.DueDate == nil:
			return -1
		case a.DueDate == nil && b.DueDate != nil:
			return 1
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Compare(*b.DueDate)
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// SortEvents orders by start ascending.
func SortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return a.StartDate.Compare(b.StartDate)
	})
}

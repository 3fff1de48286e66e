package surreal

import (
	"fmt"
	"time"

	sm "github.com/surrealdb/surrealdb.go/pkg/models"

	"chrona/internal/models"
)

// Document shapes as stored in SurrealDB. Times travel as SurrealDB datetimes
// and owner references as plain strings so they can be filtered on directly.

const (
	tableUsers   = "users"
	tableNotes   = "notes"
	tableJournal = "journal"
	tableTasks   = "tasks"
	tableEvents  = "events"
)

type userDoc struct {
	ID           *sm.RecordID       `json:"id,omitempty"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	PasswordHash string             `json:"passwordHash"`
	CreatedAt    *sm.CustomDateTime `json:"createdAt"`
	UpdatedAt    *sm.CustomDateTime `json:"updatedAt"`
}

type noteDoc struct {
	ID        *sm.RecordID       `json:"id,omitempty"`
	UserID    string             `json:"userId"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Tags      []string           `json:"tags"`
	CreatedAt *sm.CustomDateTime `json:"createdAt"`
	UpdatedAt *sm.CustomDateTime `json:"updatedAt"`
}

type journalDoc struct {
	ID        *sm.RecordID       `json:"id,omitempty"`
	UserID    string             `json:"userId"`
	Entry     string             `json:"entry"`
	Date      string             `json:"date"`
	CreatedAt *sm.CustomDateTime `json:"createdAt"`
	UpdatedAt *sm.CustomDateTime `json:"updatedAt"`
}

type taskDoc struct {
	ID            *sm.RecordID       `json:"id,omitempty"`
	UserID        string             `json:"userId"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Status        string             `json:"status"`
	Priority      string             `json:"priority"`
	DueDate       *sm.CustomDateTime `json:"dueDate,omitempty"`
	CompletedAt   *sm.CustomDateTime `json:"completedAt,omitempty"`
	Tags          []string           `json:"tags"`
	Category      string             `json:"category"`
	EstimatedTime *int               `json:"estimatedTime,omitempty"`
	ActualTime    *int               `json:"actualTime,omitempty"`
	Notes         string             `json:"notes"`
	ParentTask    *string            `json:"parentTask,omitempty"`
	Subtasks      []string           `json:"subtasks"`
	CreatedAt     *sm.CustomDateTime `json:"createdAt"`
	UpdatedAt     *sm.CustomDateTime `json:"updatedAt"`
}

// taskPatch carries the columns an update may change. Cleared nullable
// fields are omitted here and unset separately.
type taskPatch struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Status        string             `json:"status"`
	Priority      string             `json:"priority"`
	DueDate       *sm.CustomDateTime `json:"dueDate,omitempty"`
	CompletedAt   *sm.CustomDateTime `json:"completedAt,omitempty"`
	Tags          []string           `json:"tags"`
	Category      string             `json:"category"`
	EstimatedTime *int               `json:"estimatedTime,omitempty"`
	ActualTime    *int               `json:"actualTime,omitempty"`
	Notes         string             `json:"notes"`
	UpdatedAt     *sm.CustomDateTime `json:"updatedAt"`
}

type recurrenceDoc struct {
	Enabled  bool               `json:"enabled"`
	Pattern  string             `json:"pattern"`
	Interval int                `json:"interval"`
	EndAfter *int               `json:"endAfter,omitempty"`
	EndDate  *sm.CustomDateTime `json:"endDate,omitempty"`
}

type eventDoc struct {
	ID          *sm.RecordID       `json:"id,omitempty"`
	UserID      string             `json:"userId"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	StartDate   *sm.CustomDateTime `json:"startDate"`
	EndDate     *sm.CustomDateTime `json:"endDate"`
	AllDay      bool               `json:"allDay"`
	Location    string             `json:"location"`
	Color       string             `json:"color"`
	Type        string             `json:"type"`
	Priority    string             `json:"priority"`
	Tags        []string           `json:"tags"`
	Attendees   []models.Attendee  `json:"attendees"`
	Recurring   recurrenceDoc      `json:"recurring"`
	Reminders   []models.Reminder  `json:"reminders"`
	Notes       string             `json:"notes"`
	RelatedTask *string            `json:"relatedTask,omitempty"`
	RelatedNote *string            `json:"relatedNote,omitempty"`
	CreatedAt   *sm.CustomDateTime `json:"createdAt"`
	UpdatedAt   *sm.CustomDateTime `json:"updatedAt"`
}

func recordID(table, id string) sm.RecordID {
	return sm.NewRecordID(table, id)
}

func idOf(r *sm.RecordID) string {
	if r == nil {
		return ""
	}
	return fmt.Sprint(r.ID)
}

func dt(t time.Time) *sm.CustomDateTime {
	return &sm.CustomDateTime{Time: t}
}

func dtPtr(t *time.Time) *sm.CustomDateTime {
	if t == nil {
		return nil
	}
	return dt(*t)
}

func fromDT(d *sm.CustomDateTime) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func fromDTPtr(d *sm.CustomDateTime) *time.Time {
	if d == nil || d.Time.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toUserDoc(u *models.User) userDoc {
	return userDoc{
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    dt(u.CreatedAt),
		UpdatedAt:    dt(u.UpdatedAt),
	}
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           idOf(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    fromDT(d.CreatedAt),
		UpdatedAt:    fromDT(d.UpdatedAt),
	}
}

func toNoteDoc(n *models.Note) noteDoc {
	return noteDoc{
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      orEmpty(n.Tags),
		CreatedAt: dt(n.CreatedAt),
		UpdatedAt: dt(n.UpdatedAt),
	}
}

func (d noteDoc) model() models.Note {
	return models.Note{
		ID:        idOf(d.ID),
		UserID:    d.UserID,
		Title:     d.Title,
		Content:   d.Content,
		Tags:      orEmpty(d.Tags),
		CreatedAt: fromDT(d.CreatedAt),
		UpdatedAt: fromDT(d.UpdatedAt),
	}
}

func toJournalDoc(j *models.JournalEntry) journalDoc {
	return journalDoc{
		UserID:    j.UserID,
		Entry:     j.Entry,
		Date:      j.Date,
		CreatedAt: dt(j.CreatedAt),
		UpdatedAt: dt(j.UpdatedAt),
	}
}

func (d journalDoc) model() models.JournalEntry {
	return models.JournalEntry{
		ID:        idOf(d.ID),
		UserID:    d.UserID,
		Entry:     d.Entry,
		Date:      d.Date,
		CreatedAt: fromDT(d.CreatedAt),
		UpdatedAt: fromDT(d.UpdatedAt),
	}
}

func toTaskDoc(t *models.Task) taskDoc {
	return taskDoc{
		UserID:        t.UserID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		DueDate:       dtPtr(t.DueDate),
		CompletedAt:   dtPtr(t.CompletedAt),
		Tags:          orEmpty(t.Tags),
		Category:      t.Category,
		EstimatedTime: t.EstimatedTime,
		ActualTime:    t.ActualTime,
		Notes:         t.Notes,
		ParentTask:    t.ParentTask,
		Subtasks:      orEmpty(t.Subtasks),
		CreatedAt:     dt(t.CreatedAt),
		UpdatedAt:     dt(t.UpdatedAt),
	}
}

func toTaskPatch(t *models.Task) (taskPatch, []string) {
	var unset []string
	if t.DueDate == nil {
		unset = append(unset, "dueDate")
	}
	if t.CompletedAt == nil {
		unset = append(unset, "completedAt")
	}
	if t.EstimatedTime == nil {
		unset = append(unset, "estimatedTime")
	}
	if t.ActualTime == nil {
		unset = append(unset, "actualTime")
	}
	return taskPatch{
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		DueDate:       dtPtr(t.DueDate),
		CompletedAt:   dtPtr(t.CompletedAt),
		Tags:          orEmpty(t.Tags),
		Category:      t.Category,
		EstimatedTime: t.EstimatedTime,
		ActualTime:    t.ActualTime,
		Notes:         t.Notes,
		UpdatedAt:     dt(t.UpdatedAt),
	}, unset
}

func (d taskDoc) model() models.Task {
	return models.Task{
		ID:            idOf(d.ID),
		UserID:        d.UserID,
		Title:         d.Title,
		Description:   d.Description,
		Status:        models.TaskStatus(d.Status),
		Priority:      models.Priority(d.Priority),
		DueDate:       fromDTPtr(d.DueDate),
		CompletedAt:   fromDTPtr(d.CompletedAt),
		Tags:          orEmpty(d.Tags),
		Category:      d.Category,
		EstimatedTime: d.EstimatedTime,
		ActualTime:    d.ActualTime,
		Notes:         d.Notes,
		ParentTask:    d.ParentTask,
		Subtasks:      orEmpty(d.Subtasks),
		CreatedAt:     fromDT(d.CreatedAt),
		UpdatedAt:     fromDT(d.UpdatedAt),
	}
}

func toEventDoc(e *models.Event) eventDoc {
	attendees := []models.Attendee(e.Attendees)
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	reminders := []models.Reminder(e.Reminders)
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return eventDoc{
		UserID:      e.UserID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   dt(e.StartDate),
		EndDate:     dt(e.EndDate),
		AllDay:      e.AllDay,
		Location:    e.Location,
		Color:       string(e.Color),
		Type:        string(e.Type),
		Priority:    string(e.Priority),
		Tags:        orEmpty(e.Tags),
		Attendees:   attendees,
		Recurring: recurrenceDoc{
			Enabled:  e.Recurring.Enabled,
			Pattern:  string(e.Recurring.Pattern),
			Interval: e.Recurring.Interval,
			EndAfter: e.Recurring.EndAfter,
			EndDate:  dtPtr(e.Recurring.EndDate),
		},
		Reminders:   reminders,
		Notes:       e.Notes,
		RelatedTask: e.RelatedTask,
		RelatedNote: e.RelatedNote,
		CreatedAt:   dt(e.CreatedAt),
		UpdatedAt:   dt(e.UpdatedAt),
	}
}

func (d eventDoc) model() models.Event {
	return models.Event{
		ID:          idOf(d.ID),
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		StartDate:   fromDT(d.StartDate),
		EndDate:     fromDT(d.EndDate),
		AllDay:      d.AllDay,
		Location:    d.Location,
		Color:       models.Color(d.Color),
		Type:        models.EventType(d.Type),
		Priority:    models.Priority(d.Priority),
		Tags:        orEmpty(d.Tags),
		Attendees:   models.Attendees(d.Attendees),
		Recurring: models.Recurrence{
			Enabled:  d.Recurring.Enabled,
			Pattern:  models.RecurrencePattern(d.Recurring.Pattern),
			Interval: d.Recurring.Interval,
			EndAfter: d.Recurring.EndAfter,
			EndDate:  fromDTPtr(d.Recurring.EndDate),
		},
		Reminders:   models.Reminders(d.Reminders),
		Notes:       d.Notes,
		RelatedTask: d.RelatedTask,
		RelatedNote: d.RelatedNote,
		CreatedAt:   fromDT(d.CreatedAt),
		UpdatedAt:   fromDT(d.UpdatedAt),
	}
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"chrona/internal/models"
)

const (
	defaultUpcomingLimit = 10
	maxUpcomingLimit     = 100
	defaultReminderMins  = 15
)

type EventService struct {
	*base
}

func (s *EventService) List(ctx context.Context, ownerID string, f models.EventFilter) ([]models.Event, error) {
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return nil, invalid("end must not be before start")
	}
	events, err := s.store.ListEvents(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := events[:0]
	for _, e := range events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	models.SortEvents(out)
	return out, nil
}

func (s *EventService) Get(ctx context.Context, ownerID, id string) (*models.Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	if err := s.authorize(ctx, ownerID, e.UserID, "event", id); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseTime reads a query bound as RFC 3339 or as a bare YYYY-MM-DD, the
// latter meaning local midnight.
func (s *EventService) ParseTime(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation(dayLayout, value, s.loc); err == nil {
		return &t, nil
	}
	return nil, invalid("invalid %s %q", name, value)
}

func (s *EventService) Create(ctx context.Context, ownerID string, in models.EventInput) (*models.Event, error) {
	now := s.now()
	e := &models.Event{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		AllDay:      in.AllDay,
		Location:    in.Location,
		Color:       in.Color,
		Type:        in.Type,
		Priority:    in.Priority,
		Tags:        pq.StringArray(models.NormalizeTags(in.Tags)),
		Attendees:   in.Attendees,
		Reminders:   in.Reminders,
		Notes:       in.Notes,
		RelatedTask: in.RelatedTask,
		RelatedNote: in.RelatedNote,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Recurring != nil {
		e.Recurring = *in.Recurring
	}
	if e.Reminders == nil {
		e.Reminders = models.Reminders{{Type: models.ReminderPush, Time: defaultReminderMins}}
	}
	if err := s.normalize(e); err != nil {
		return nil, err
	}
	if err := s.checkRelated(ctx, ownerID, e); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	if err := s.checkConflicts(ctx, e); err != nil {
		return nil, err
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return e, nil
}

func (s *EventService) Update(ctx context.Context, ownerID, id string, u models.EventUpdate) (*models.Event, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	e, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if u.Title != nil {
		e.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.StartDate != nil {
		e.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		e.EndDate = *u.EndDate
	}
	if u.AllDay != nil {
		e.AllDay = *u.AllDay
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Color != nil {
		e.Color = *u.Color
	}
	if u.Type != nil {
		e.Type = *u.Type
	}
	if u.Priority != nil {
		e.Priority = *u.Priority
	}
	if u.Tags != nil {
		e.Tags = pq.StringArray(models.NormalizeTags(*u.Tags))
	}
	if u.Attendees != nil {
		e.Attendees = *u.Attendees
	}
	if u.Recurring != nil {
		e.Recurring = *u.Recurring
	}
	if u.Reminders != nil {
		e.Reminders = *u.Reminders
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
	if u.RelatedTask.Set {
		e.RelatedTask = u.RelatedTask.Value
	}
	if u.RelatedNote.Set {
		e.RelatedNote = u.RelatedNote.Value
	}
	e.UpdatedAt = s.now()

	if err := s.normalize(e); err != nil {
		return nil, err
	}
	if u.RelatedTask.Set || u.RelatedNote.Set {
		if err := s.checkRelated(ctx, ownerID, e); err != nil {
			return nil, err
		}
	}
	if u.TouchesSchedule() {
		if err := s.checkConflicts(ctx, e); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateEvent(ctx, e); err != nil {
		return nil, notFound(err, "event", id)
	}
	return e, nil
}

func (s *EventService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return notFound(err, "event", id)
	}
	return nil
}

// BulkDelete removes the owner's events among ids and reports how many went.
func (s *EventService) BulkDelete(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, invalid("eventIds must be a non-empty array")
	}
	n, err := s.store.DeleteEvents(ctx, ownerID, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete events: %w", err)
	}
	return n, nil
}

// normalize fills defaults and validates the merged event.
func (s *EventService) normalize(e *models.Event) error {
	if e.Title == "" {
		return invalid("Event title is required")
	}
	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return invalid("Start date and end date are required")
	}
	if !e.StartDate.Before(e.EndDate) {
		return invalid("End date must be after start date")
	}
	if e.Color == "" {
		e.Color = models.DefaultColor
	}
	if !e.Color.Valid() {
		return invalid("invalid color %q", e.Color)
	}
	if e.Type == "" {
		e.Type = models.EventTypeEvent
	}
	if !e.Type.Valid() {
		return invalid("invalid type %q", e.Type)
	}
	if e.Priority == "" {
		e.Priority = models.PriorityMedium
	}
	if !e.Priority.Valid() {
		return invalid("invalid priority %q", e.Priority)
	}
	if e.Tags == nil {
		e.Tags = pq.StringArray{}
	}
	if e.Attendees == nil {
		e.Attendees = models.Attendees{}
	}
	for i := range e.Attendees {
		a := &e.Attendees[i]
		a.Email = strings.TrimSpace(a.Email)
		if !validEmail(a.Email) {
			return invalid("invalid attendee email %q", a.Email)
		}
		if a.Response == "" {
			a.Response = models.ResponsePending
		}
		if !a.Response.Valid() {
			return invalid("invalid attendee response %q", a.Response)
		}
	}
	if r := &e.Recurring; r.Enabled {
		if !r.Pattern.Valid() {
			return invalid("invalid recurrence pattern %q", r.Pattern)
		}
		if r.Interval == 0 {
			r.Interval = 1
		}
		if r.Interval < 1 {
			return invalid("recurrence interval must be at least 1")
		}
		if r.EndAfter != nil && *r.EndAfter < 1 {
			return invalid("recurrence endAfter must be at least 1")
		}
	}
	for _, r := range e.Reminders {
		if !r.Type.Valid() {
			return invalid("invalid reminder type %q", r.Type)
		}
		if r.Time < 0 {
			return invalid("reminder time must be zero or more minutes")
		}
	}
	return nil
}

// checkRelated requires linked tasks and notes to belong to the owner.
func (s *EventService) checkRelated(ctx context.Context, ownerID string, e *models.Event) error {
	if e.RelatedTask != nil {
		t, err := s.store.GetTask(ctx, *e.RelatedTask)
		if err != nil || t.UserID != ownerID {
			return invalid("related task %s not found", *e.RelatedTask)
		}
	}
	if e.RelatedNote != nil {
		n, err := s.store.GetNote(ctx, *e.RelatedNote)
		if err != nil || n.UserID != ownerID {
			return invalid("related note %s not found", *e.RelatedNote)
		}
	}
	return nil
}

// checkConflicts rejects a timed event overlapping another timed event of
// the same owner. Callers hold the owner's lock.
func (s *EventService) checkConflicts(ctx context.Context, e *models.Event) error {
	if e.AllDay {
		return nil
	}
	existing, err := s.store.ListEvents(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	conflicts := FindConflicts(existing, *e)
	if len(conflicts) == 0 {
		return nil
	}
	s.log.Info("event overlap rejected",
		zap.String("owner", e.UserID),
		zap.String("event_id", e.ID),
		zap.Int("conflicts", len(conflicts)),
	)
	return &ConflictError{Message: "Event conflicts with existing events", Conflicts: conflicts}
}

// FindConflicts lists the events overlapping candidate, ignoring candidate
// itself.
func FindConflicts(events []models.Event, candidate models.Event) []models.EventRef {
	var out []models.EventRef
	for _, other := range events {
		if other.ID == candidate.ID {
			continue
		}
		if candidate.ConflictsWith(other) {
			out = append(out, models.EventRef{ID: other.ID, Title: other.Title})
		}
	}
	return out
}

// Upcoming returns events starting from now, soonest first.
func (s *EventService) Upcoming(ctx context.Context, ownerID string, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}
	events, err := s.store.ListEvents(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	models.SortEvents(events)
	now := s.now()
	out := []models.Event{}
	for _, e := range events {
		if !e.StartDate.Before(now) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Today returns events intersecting the current local day.
func (s *EventService) Today(ctx context.Context, ownerID string) ([]models.Event, error) {
	events, err := s.store.ListEvents(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	start := s.startOfDay(s.now())
	end := start.AddDate(0, 0, 1)
	out := []models.Event{}
	for _, e := range events {
		if models.Overlaps(e.StartDate, e.EndDate, start, end) {
			out = append(out, e)
		}
	}
	models.SortEvents(out)
	return out, nil
}

// StatsWindow returns the half-open window for a period; unknown periods
// fall back to month.
func (s *EventService) StatsWindow(period string) (string, time.Time, time.Time) {
	now := s.localNow()
	today := s.startOfDay(now)
	switch period {
	case "week":
		return period, today.AddDate(0, 0, -7), today.AddDate(0, 0, 7)
	case "year":
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, s.loc)
		return period, start, start.AddDate(1, 0, 0)
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
		return "month", start, start.AddDate(0, 1, 0)
	}
}

func (s *EventService) Stats(ctx context.Context, ownerID, period string) (*models.EventStats, error) {
	events, err := s.store.ListEvents(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	name, start, end := s.StatsWindow(period)
	now := s.now()
	dayStart := s.startOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := &models.EventStats{
		Period:        name,
		PeriodStart:   start,
		PeriodEnd:     end,
		TypeStats:     map[string]int{},
		PriorityStats: map[string]int{},
	}
	for _, e := range events {
		if !e.StartDate.Before(now) {
			stats.UpcomingEvents++
		}
		if models.Overlaps(e.StartDate, e.EndDate, dayStart, dayEnd) {
			stats.TodayEvents++
		}
		if e.StartDate.Before(start) || !e.StartDate.Before(end) {
			continue
		}
		stats.TotalEvents++
		stats.TypeStats[string(e.Type)]++
		stats.PriorityStats[string(e.Priority)]++
	}
	return stats, nil
}

// Search matches query against title, description, location and notes,
// narrowed by the other filter fields. An empty query matches everything.
func (s *EventService) Search(ctx context.Context, ownerID, query string, f models.EventFilter) ([]models.Event, error) {
	f.Query = strings.TrimSpace(query)
	f.Start, f.End = nil, nil
	return s.List(ctx, ownerID, f)
}

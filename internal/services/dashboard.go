package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"chrona/internal/models"
)

const (
	dashboardRecentNotes = 5
	dashboardUpcoming    = 5
	dashboardTrendDays   = 7
)

type DashboardService struct {
	*base
	notes   *NoteService
	journal *JournalService
	tasks   *TaskService
	events  *EventService
}

type JournalDay struct {
	Date     string `json:"date"`
	HasEntry bool   `json:"hasEntry"`
}

type Dashboard struct {
	ReferenceDate     string            `json:"referenceDate"`
	NoteCount         int               `json:"noteCount"`
	RecentNotes       []models.Note     `json:"recentNotes"`
	HasTodayEntry     bool              `json:"hasTodayEntry"`
	CurrentStreakDays int               `json:"currentStreakDays"`
	EntriesThisWeek   int               `json:"entriesThisWeek"`
	Last7Days         []JournalDay      `json:"last7Days"`
	TaskStats         *models.TaskStats `json:"taskStats"`
	TodayEvents       []models.Event    `json:"todayEvents"`
	UpcomingEvents    []models.Event    `json:"upcomingEvents"`
}

// Get gathers the dashboard sections concurrently. ref is the caller's
// "today" as YYYY-MM-DD; empty means today in the configured zone.
func (s *DashboardService) Get(ctx context.Context, ownerID, ref string) (*Dashboard, error) {
	refDate, err := s.journal.ParseDay(ref)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{ReferenceDate: refDate}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notes, err := s.notes.List(ctx, ownerID, "")
		if err != nil {
			return err
		}
		d.NoteCount = len(notes)
		d.RecentNotes = notes[:min(len(notes), dashboardRecentNotes)]
		return nil
	})
	g.Go(func() error {
		refDay, _ := time.Parse(dayLayout, refDate)
		from := refDay.AddDate(0, 0, -(dashboardTrendDays - 1)).Format(dayLayout)
		entries, err := s.store.ListJournal(ctx, ownerID, "", refDate)
		if err != nil {
			return err
		}
		d.CurrentStreakDays = streakFrom(entries, refDate)
		have := map[string]bool{}
		for _, e := range entries {
			if e.Date >= from {
				have[e.Date] = true
			}
		}
		d.HasTodayEntry = have[refDate]
		d.Last7Days = make([]JournalDay, 0, dashboardTrendDays)
		for i := dashboardTrendDays - 1; i >= 0; i-- {
			day := refDay.AddDate(0, 0, -i).Format(dayLayout)
			d.Last7Days = append(d.Last7Days, JournalDay{Date: day, HasEntry: have[day]})
		}
		weekStart := weekStart(refDay).Format(dayLayout)
		for day := range have {
			if day >= weekStart {
				d.EntriesThisWeek++
			}
		}
		return nil
	})
	g.Go(func() error {
		stats, err := s.tasks.Stats(ctx, ownerID)
		if err != nil {
			return err
		}
		d.TaskStats = stats
		return nil
	})
	g.Go(func() error {
		today, err := s.events.Today(ctx, ownerID)
		if err != nil {
			return err
		}
		d.TodayEvents = today
		return nil
	})
	g.Go(func() error {
		upcoming, err := s.events.Upcoming(ctx, ownerID, dashboardUpcoming)
		if err != nil {
			return err
		}
		d.UpcomingEvents = upcoming
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// weekStart is the Monday on or before day.
func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chrona/internal/models"
	"chrona/internal/store"
)

type JournalService struct {
	*base
}

// ParseDay reduces a YYYY-MM-DD or RFC 3339 value to a calendar date in the
// configured zone. An empty value means today.
func (s *JournalService) ParseDay(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.today(), nil
	}
	if d, err := time.ParseInLocation(dayLayout, value, s.loc); err == nil {
		return d.Format(dayLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(s.loc).Format(dayLayout), nil
	}
	return "", invalid("invalid date %q; expected YYYY-MM-DD", value)
}

func duplicateDay(date string) error {
	return &ConflictError{Message: fmt.Sprintf("Journal entry for %s already exists", date)}
}

// List returns entries newest first within optional inclusive date bounds.
func (s *JournalService) List(ctx context.Context, ownerID, from, to string) ([]models.JournalEntry, error) {
	var err error
	if from != "" {
		if from, err = s.ParseDay(from); err != nil {
			return nil, invalid("invalid start_date format; expected YYYY-MM-DD")
		}
	}
	if to != "" {
		if to, err = s.ParseDay(to); err != nil {
			return nil, invalid("invalid end_date format; expected YYYY-MM-DD")
		}
	}
	entries, err := s.store.ListJournal(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	if err := s.enc.DecryptJournals(entries); err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return entries, nil
}

func (s *JournalService) Get(ctx context.Context, ownerID, id string) (*models.JournalEntry, error) {
	j, err := s.store.GetJournal(ctx, id)
	if err != nil {
		return nil, notFound(err, "journal entry", id)
	}
	if err := s.authorize(ctx, ownerID, j.UserID, "journal entry", id); err != nil {
		return nil, err
	}
	if err := s.enc.DecryptJournal(j); err != nil {
		return nil, fmt.Errorf("open journal entry %s: %w", id, err)
	}
	return j, nil
}

// Create adds the entry for its date. A second entry for the same date is a
// conflict.
func (s *JournalService) Create(ctx context.Context, ownerID string, in models.JournalInput) (*models.JournalEntry, error) {
	if strings.TrimSpace(in.Entry) == "" {
		return nil, invalid("Journal entry is required")
	}
	date, err := s.ParseDay(in.Date)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	if _, err := s.store.GetJournalByDate(ctx, ownerID, date); err == nil {
		return nil, duplicateDay(date)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check journal date: %w", err)
	}

	now := s.now()
	j := models.JournalEntry{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Entry:     in.Entry,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sealed, err := s.enc.EncryptJournal(j)
	if err != nil {
		return nil, fmt.Errorf("seal journal entry: %w", err)
	}
	if err := s.store.CreateJournal(ctx, &sealed); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, duplicateDay(date)
		}
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	return &j, nil
}

func (s *JournalService) Update(ctx context.Context, ownerID, id string, in models.JournalUpdate) (*models.JournalEntry, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	j, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Entry != nil {
		if strings.TrimSpace(*in.Entry) == "" {
			return nil, invalid("Journal entry cannot be empty")
		}
		j.Entry = *in.Entry
	}
	moving := false
	if in.Date != nil {
		date, err := s.ParseDay(*in.Date)
		if err != nil {
			return nil, err
		}
		moving = date != j.Date
		j.Date = date
	}
	j.UpdatedAt = s.now()

	if moving {
		if other, err := s.store.GetJournalByDate(ctx, ownerID, j.Date); err == nil && other.ID != j.ID {
			return nil, duplicateDay(j.Date)
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check journal date: %w", err)
		}
	}

	sealed, err := s.enc.EncryptJournal(*j)
	if err != nil {
		return nil, fmt.Errorf("seal journal entry: %w", err)
	}
	if err := s.store.UpdateJournal(ctx, &sealed); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, duplicateDay(j.Date)
		}
		return nil, notFound(err, "journal entry", id)
	}
	return j, nil
}

func (s *JournalService) Delete(ctx context.Context, ownerID, id string) error {
	j, err := s.store.GetJournal(ctx, id)
	if err != nil {
		return notFound(err, "journal entry", id)
	}
	if err := s.authorize(ctx, ownerID, j.UserID, "journal entry", id); err != nil {
		return err
	}
	if err := s.store.DeleteJournal(ctx, id); err != nil {
		return notFound(err, "journal entry", id)
	}
	return nil
}

// Streak counts consecutive days with an entry ending at ref (YYYY-MM-DD).
// It is zero when ref itself has no entry.
func (s *JournalService) Streak(ctx context.Context, ownerID, ref string) (int, error) {
	entries, err := s.store.ListJournal(ctx, ownerID, "", ref)
	if err != nil {
		return 0, fmt.Errorf("list journal: %w", err)
	}
	return streakFrom(entries, ref), nil
}

// streakFrom expects entries newest first.
func streakFrom(entries []models.JournalEntry, ref string) int {
	day, err := time.Parse(dayLayout, ref)
	if err != nil {
		return 0
	}
	streak := 0
	for _, e := range entries {
		if e.Date > ref {
			continue
		}
		if e.Date != day.Format(dayLayout) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

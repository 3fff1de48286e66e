package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"chrona/internal/models"
)

type NoteService struct {
	*base
}

// List returns the owner's notes newest first, optionally narrowed to one tag.
func (s *NoteService) List(ctx context.Context, ownerID, tag string) ([]models.Note, error) {
	notes, err := s.store.ListNotes(ctx, ownerID, strings.TrimSpace(tag))
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if err := s.enc.DecryptNotes(notes); err != nil {
		return nil, fmt.Errorf("open notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, ownerID, id string) (*models.Note, error) {
	n, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, notFound(err, "note", id)
	}
	if err := s.authorize(ctx, ownerID, n.UserID, "note", id); err != nil {
		return nil, err
	}
	if err := s.enc.DecryptNote(n); err != nil {
		return nil, fmt.Errorf("open note %s: %w", id, err)
	}
	return n, nil
}

func (s *NoteService) Create(ctx context.Context, ownerID string, in models.NoteInput) (*models.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, invalid("Title and content are required")
	}
	now := s.now()
	n := models.Note{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Title:     title,
		Content:   in.Content,
		Tags:      pq.StringArray(models.NormalizeTags(in.Tags)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	sealed, err := s.enc.EncryptNote(n)
	if err != nil {
		return nil, fmt.Errorf("seal note: %w", err)
	}
	if err := s.store.CreateNote(ctx, &sealed); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return &n, nil
}

func (s *NoteService) Update(ctx context.Context, ownerID, id string, in models.NoteUpdate) (*models.Note, error) {
	n, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("Title cannot be empty")
		}
		n.Title = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, invalid("Content cannot be empty")
		}
		n.Content = *in.Content
	}
	if in.Tags != nil {
		n.Tags = pq.StringArray(models.NormalizeTags(*in.Tags))
	}
	n.UpdatedAt = s.now()

	sealed, err := s.enc.EncryptNote(*n)
	if err != nil {
		return nil, fmt.Errorf("seal note: %w", err)
	}
	if err := s.store.UpdateNote(ctx, &sealed); err != nil {
		return nil, notFound(err, "note", id)
	}
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, ownerID, id string) error {
	n, err := s.store.GetNote(ctx, id)
	if err != nil {
		return notFound(err, "note", id)
	}
	if err := s.authorize(ctx, ownerID, n.UserID, "note", id); err != nil {
		return err
	}
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return notFound(err, "note", id)
	}
	return nil
}

// Tags counts how many of the owner's notes carry each tag, most used first
// and alphabetical among equals.
func (s *NoteService) Tags(ctx context.Context, ownerID string) ([]models.TagCount, error) {
	notes, err := s.store.ListNotes(ctx, ownerID, "")
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	counts := map[string]int{}
	for _, n := range notes {
		// a note lists each tag once, but older rows may not be normalised
		seen := map[string]bool{}
		for _, tag := range n.Tags {
			if !seen[tag] {
				seen[tag] = true
				counts[tag]++
			}
		}
	}
	out := make([]models.TagCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.TagCount{Name: name, Count: count})
	}
	slices.SortFunc(out, func(a, b models.TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

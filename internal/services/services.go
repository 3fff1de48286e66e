// Package services holds the ownership-scoped business logic of the API.
// Handlers call into it with the authenticated owner id; services validate
// input, enforce ownership and translate store errors.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chrona/internal/store"
)

const dayLayout = "2006-01-02"

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type Option func(*base)

func WithClock(now func() time.Time) Option { return func(b *base) { b.now = now } }

func WithLocation(loc *time.Location) Option { return func(b *base) { b.loc = loc } }

func WithLogger(log *zap.Logger) Option { return func(b *base) { b.log = log } }

func WithEncryption(enc *EncryptionService) Option { return func(b *base) { b.enc = enc } }

// base is shared by every service built from one Services value.
type base struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
	loc   *time.Location
	enc   *EncryptionService
	locks *ownerLocks
}

// Services bundles the resource services over one store.
type Services struct {
	Users     *UserService
	Notes     *NoteService
	Journal   *JournalService
	Tasks     *TaskService
	Events    *EventService
	Dashboard *DashboardService
}

func New(st store.Store, tokens TokenIssuer, opts ...Option) *Services {
	b := &base{
		store: st,
		log:   zap.NewNop(),
		now:   time.Now,
		loc:   time.Local,
		locks: newOwnerLocks(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.enc == nil {
		b.enc = NewEncryptionService(nil)
	}

	s := &Services{
		Users:   &UserService{base: b, tokens: tokens},
		Notes:   &NoteService{base: b},
		Journal: &JournalService{base: b},
		Tasks:   &TaskService{base: b},
		Events:  &EventService{base: b},
	}
	s.Dashboard = &DashboardService{
		base:    b,
		notes:   s.Notes,
		journal: s.Journal,
		tasks:   s.Tasks,
		events:  s.Events,
	}
	return s
}

// localNow is the current instant in the configured zone.
func (b *base) localNow() time.Time {
	return b.now().In(b.loc)
}

// startOfDay truncates t to local midnight in the configured zone.
func (b *base) startOfDay(t time.Time) time.Time {
	t = t.In(b.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, b.loc)
}

func (b *base) today() string {
	return b.localNow().Format(dayLayout)
}

// authorize checks that ownerID owns a resource. Mismatches are logged and
// reported as ErrForbidden.
func (b *base) authorize(ctx context.Context, ownerID, resourceOwner, kind, id string) error {
	if ownerID == resourceOwner {
		return nil
	}
	b.log.Warn("cross-owner access rejected",
		zap.String("kind", kind),
		zap.String("id", id),
		zap.String("owner", ownerID),
	)
	return fmt.Errorf("%s %s: %w", kind, id, ErrForbidden)
}

// notFound translates store.ErrNotFound and wraps everything else.
func notFound(err error, kind, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chrona/internal/crypto"
	"chrona/internal/models"
	"chrona/internal/store"
	"chrona/internal/store/memory"
)

// Friday 15 March 2024, mid-morning.
var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID string) (string, error) { return "token-" + userID, nil }

func newTestServices(t *testing.T, opts ...Option) (*Services, *memory.Store) {
	t.Helper()
	st := memory.New()
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}, opts...)
	return New(st, fakeTokens{}, opts...), st
}

// interceptStore runs a callback the first time a given task, event or
// journal entry is read, so tests can start a competing write in the middle of a
// read-modify-write.
type interceptStore struct {
	store.Store
	taskID, eventID, journalID string
	onTask, onEvent, onJournal sync.Once
	hook                       func()
}

func (s *interceptStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	if id == s.taskID {
		s.onTask.Do(s.hook)
	}
	return s.Store.GetTask(ctx, id)
}

func (s *interceptStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if id == s.eventID {
		s.onEvent.Do(s.hook)
	}
	return s.Store.GetEvent(ctx, id)
}

func (s *interceptStore) GetJournal(ctx context.Context, id string) (*models.JournalEntry, error) {
	if id == s.journalID {
		s.onJournal.Do(s.hook)
	}
	return s.Store.GetJournal(ctx, id)
}

func newInterceptServices(t *testing.T) (*Services, *interceptStore) {
	t.Helper()
	st := &interceptStore{Store: memory.New()}
	svc := New(st, fakeTokens{},
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)
	return svc, st
}

func testSealer(t *testing.T) *EncryptionService {
	t.Helper()
	sealer, err := crypto.NewSealer([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return NewEncryptionService(sealer)
}

func ptr[T any](v T) *T { return &v }

func TestOwnerLocksSerialiseAndRelease(t *testing.T) {
	locks := newOwnerLocks()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("u1")
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locks.size())
}

func TestOwnerLocksIndependentOwners(t *testing.T) {
	locks := newOwnerLocks()
	unlockA := locks.lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		locks.lock("b")()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for b blocked on a")
	}
}

func TestDayHelpers(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	svc, _ := newTestServices(t, WithLocation(loc), WithClock(func() time.Time {
		return time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC)
	}))

	b := svc.Notes.base
	assert.Equal(t, "2024-03-14", b.today())
	start := b.startOfDay(b.now())
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, loc), start)
}

func TestServicesShareStore(t *testing.T) {
	svc, st := newTestServices(t)
	require.NoError(t, st.Ping(context.Background()))
	assert.Same(t, svc.Notes.base, svc.Dashboard.base)
}

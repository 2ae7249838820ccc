package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/hotelbot/internal/domain"
)

type State string

const (
	StateChoosingRoom     State = "choosing_room"
	StateChoosingCheckIn  State = "choosing_check_in"
	StateChoosingCheckOut State = "choosing_check_out"
)

// Key identifies one user's conversation inside one chat. In a group chat
// every member gets a separate draft.
type Key struct {
	Chat int64
	User int64
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.Chat, k.User)
}

// Session is the conversation state kept per Key.
type Session struct {
	State     State               `json:"state"`
	Draft     domain.BookingDraft `json:"draft"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func New() Session {
	return Session{State: StateChoosingRoom}
}

// Store keeps sessions by Key. Get returns a fresh session when
// none is stored or the stored one has expired.
type Store interface {
	Get(ctx context.Context, key Key) (Session, error)
	Save(ctx context.Context, key Key, s Session) error
	Delete(ctx context.Context, key Key) error
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[Key]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore keeps sessions for ttl after their last update; ttl <= 0
// keeps them forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[Key]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[key]
	if !ok {
		return New(), nil
	}
	if m.expired(s) {
		delete(m.sessions, key)
		return New(), nil
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, key Key, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.UpdatedAt = m.now()
	m.sessions[key] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, key)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) expired(s Session) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) >= m.ttl
}

var _ Store = (*MemoryStore)(nil)

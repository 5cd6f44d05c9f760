// Package session carries the caller's identity and persists each user's
// tentative seat selection per showtime between requests.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

// RoleCustomer is the role allowed to select and book seats.
const RoleCustomer = "CUSTOMER"

var (
	// ErrNoIdentity is returned when an operation needs an authenticated user.
	ErrNoIdentity = errors.New("no authenticated identity")
	// ErrContention is returned by Update when concurrent writers kept
	// invalidating the read-modify-write cycle.
	ErrContention = errors.New("selection changed concurrently, try again")
)

// Identity is the authenticated caller. It is resolved once by the auth
// middleware and passed explicitly to services.
type Identity struct {
	UserID uint64
	Role   string
}

// Valid reports whether the identity names a user.
func (i Identity) Valid() bool { return i.UserID != 0 }

func (i Identity) String() string { return strconv.FormatUint(i.UserID, 10) }

// UpdateFunc maps the stored selection to the one to store. It may run more
// than once per Update and must not keep side effects from discarded runs.
type UpdateFunc func(current []seatmap.Identifier) []seatmap.Identifier

// Store persists selections keyed by user and showtime. Update is the only
// safe way to change a selection based on its current value.
type Store interface {
	Load(ctx context.Context, who Identity, showtimeID uint64) ([]seatmap.Identifier, error)
	Save(ctx context.Context, who Identity, showtimeID uint64, seats []seatmap.Identifier) error
	Update(ctx context.Context, who Identity, showtimeID uint64, fn UpdateFunc) ([]seatmap.Identifier, error)
	Clear(ctx context.Context, who Identity, showtimeID uint64) error
}

// MemoryStore keeps selections in process memory. Used in tests and when
// Redis is not configured.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]seatmap.Identifier
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]seatmap.Identifier)}
}

func memKey(who Identity, showtimeID uint64) string {
	return who.String() + ":" + strconv.FormatUint(showtimeID, 10)
}

func (m *MemoryStore) Load(_ context.Context, who Identity, showtimeID uint64) ([]seatmap.Identifier, error) {
	if !who.Valid() {
		return nil, ErrNoIdentity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seats := m.data[memKey(who, showtimeID)]
	out := make([]seatmap.Identifier, len(seats))
	copy(out, seats)
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, who Identity, showtimeID uint64, seats []seatmap.Identifier) error {
	if !who.Valid() {
		return ErrNoIdentity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(seats) == 0 {
		delete(m.data, memKey(who, showtimeID))
		return nil
	}
	cp := make([]seatmap.Identifier, len(seats))
	copy(cp, seats)
	m.data[memKey(who, showtimeID)] = cp
	return nil
}

func (m *MemoryStore) Update(_ context.Context, who Identity, showtimeID uint64, fn UpdateFunc) ([]seatmap.Identifier, error) {
	if !who.Valid() {
		return nil, ErrNoIdentity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(who, showtimeID)
	cur := make([]seatmap.Identifier, len(m.data[k]))
	copy(cur, m.data[k])

	next := fn(cur)
	if len(next) == 0 {
		delete(m.data, k)
		return nil, nil
	}
	stored := make([]seatmap.Identifier, len(next))
	copy(stored, next)
	m.data[k] = stored
	out := make([]seatmap.Identifier, len(next))
	copy(out, next)
	return out, nil
}

func (m *MemoryStore) Clear(_ context.Context, who Identity, showtimeID uint64) error {
	if !who.Valid() {
		return ErrNoIdentity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, memKey(who, showtimeID))
	return nil
}

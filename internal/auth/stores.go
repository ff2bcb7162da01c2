package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

// ErrTokenNotFound is returned when a reset token is unknown, expired or
// already used.
var ErrTokenNotFound = errors.New("token not found")

// RevocationStore remembers session token ids that were logged out.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ResetTokenStore issues single-use password reset tokens.
type ResetTokenStore interface {
	Issue(ctx context.Context, userID int, ttl time.Duration) (string, error)
	// Consume returns the user id bound to token and invalidates it.
	Consume(ctx context.Context, token string) (int, error)
}

// NewToken returns a random URL-safe token.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type expiring struct {
	userID int
	until  time.Time
}

// MemoryStore implements both stores in process memory. It is meant for
// tests and single-instance development.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time
	resets  map[string]expiring
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		revoked: map[string]time.Time{},
		resets:  map[string]expiring{},
	}
}

// SetClock overrides the time source.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = until
	return nil
}

func (m *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if m.now().After(until) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Issue(_ context.Context, userID int, ttl time.Duration) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[token] = expiring{userID: userID, until: m.now().Add(ttl)}
	return token, nil
}

func (m *MemoryStore) Consume(_ context.Context, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.resets[token]
	if !ok {
		return 0, ErrTokenNotFound
	}
	delete(m.resets, token)
	if m.now().After(e.until) {
		return 0, ErrTokenNotFound
	}
	return e.userID, nil
}

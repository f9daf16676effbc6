package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
)

const sessionKeyPrefix = "suggestion_session:"

// SessionStore persists suggestion sessions keyed by their opaque token.
// Updates replace the whole document so history appends stay atomic.
type SessionStore interface {
	Create(ctx context.Context, session *models.SuggestionSession) error
	Get(ctx context.Context, token string) (*models.SuggestionSession, error)
	Update(ctx context.Context, session *models.SuggestionSession) error
	Deactivate(ctx context.Context, token string) error
}

// RedisSessionStore keeps sessions in Redis with a TTL matching the
// session expiry.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore constructs the store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (s *RedisSessionStore) write(ctx context.Context, session *models.SuggestionSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return appErrors.ErrSessionExpired
	}
	return s.client.Set(ctx, sessionKey(session.Token), payload, ttl).Err()
}

// Create stores a fresh session.
func (s *RedisSessionStore) Create(ctx context.Context, session *models.SuggestionSession) error {
	return s.write(ctx, session)
}

// Get loads a session by token.
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*models.SuggestionSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, appErrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.SuggestionSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Update replaces the stored session document.
func (s *RedisSessionStore) Update(ctx context.Context, session *models.SuggestionSession) error {
	return s.write(ctx, session)
}

// Deactivate marks the session inactive while keeping it readable until
// it expires.
func (s *RedisSessionStore) Deactivate(ctx context.Context, token string) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	session.Active = false
	return s.write(ctx, session)
}

// MemorySessionStore is a mutex-guarded in-process store for tests and
// Redis-less development.
type MemorySessionStore struct {
	mu    sync.RWMutex
	items map[string]models.SuggestionSession
	now   func() time.Time
}

// NewMemorySessionStore constructs the store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		items: make(map[string]models.SuggestionSession),
		now:   time.Now,
	}
}

// Create stores a fresh session.
func (s *MemorySessionStore) Create(ctx context.Context, session *models.SuggestionSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.Token] = *session
	return nil
}

// Get loads a session by token, evicting it when expired.
func (s *MemorySessionStore) Get(ctx context.Context, token string) (*models.SuggestionSession, error) {
	s.mu.RLock()
	session, ok := s.items[token]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	if s.now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.items, token)
		s.mu.Unlock()
		return nil, appErrors.ErrSessionExpired
	}
	copied := session
	return &copied, nil
}

// Update replaces the stored session document.
func (s *MemorySessionStore) Update(ctx context.Context, session *models.SuggestionSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[session.Token]; !ok {
		return appErrors.ErrSessionNotFound
	}
	s.items[session.Token] = *session
	return nil
}

// Deactivate marks the session inactive.
func (s *MemorySessionStore) Deactivate(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[token]
	if !ok {
		return appErrors.ErrSessionNotFound
	}
	session.Active = false
	s.items[token] = session
	return nil
}

// Package session keeps conversation state between chat turns.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/models"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "chat:session:"

// RedisStore persists sessions as JSON strings with a sliding TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore returns a store over client. An empty prefix selects
// DefaultKeyPrefix; a zero ttl keeps sessions forever.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Load returns the stored session or a fresh greeting session when id
// is unknown.
func (s *RedisStore) Load(ctx context.Context, id string) (*models.SessionData, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return models.NewSession(id, s.now().UTC()), nil
	}
	if err != nil {
		return nil, errors.NewSessionStoreUnavailableError("load", err)
	}

	var data models.SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.NewSessionDecodeFailedError(id, err)
	}
	if data.SessionID == "" {
		data.SessionID = id
	}
	if data.AskedFields == nil {
		data.AskedFields = []string{}
	}
	if !data.Step.Valid() {
		return nil, errors.NewSessionDecodeFailedError(id, fmt.Errorf("unknown step %q", data.Step))
	}
	return &data, nil
}

// Save writes data under id and refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, id string, data *models.SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if err := s.client.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return errors.NewSessionStoreUnavailableError("save", err)
	}
	return nil
}

// Delete drops a session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.NewSessionStoreUnavailableError("delete", err)
	}
	return nil
}

// MemoryStore keeps sessions in process. Used by the local CLI and in
// tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte), now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*models.SessionData, error) {
	m.mu.RLock()
	raw, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return models.NewSession(id, m.now().UTC()), nil
	}

	var data models.SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.NewSessionDecodeFailedError(id, err)
	}
	return &data, nil
}

// Save stores a serialized copy so later mutation by the caller does
// not leak into the store.
func (m *MemoryStore) Save(_ context.Context, id string, data *models.SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.NewInternalError(err)
	}
	m.mu.Lock()
	m.sessions[id] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

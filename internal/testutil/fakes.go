package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"storefront-api/internal/auth"
	"storefront-api/internal/models"

	"github.com/google/uuid"
)

// MemoryRedis fakes the lock, idempotency and cache features of redisclient.Client
type MemoryRedis struct {
	mu     sync.Mutex
	locks  map[string]string
	values map[string]string
	docs   map[string][]byte

	Released int
	// Injected failure for lock acquisition
	AcquireErr error
}

// NewMemoryRedis creates an empty fake
func NewMemoryRedis() *MemoryRedis {
	return &MemoryRedis{
		locks:  map[string]string{},
		values: map[string]string{},
		docs:   map[string][]byte{},
	}
}

// Hold marks the lock as taken by someone else
func (r *MemoryRedis) Hold(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks[name] = "held-elsewhere"
}

// Locked reports whether the lock is currently held
func (r *MemoryRedis) Locked(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.locks[name]
	return ok
}

// HasDoc reports whether a cached document exists
func (r *MemoryRedis) HasDoc(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.docs[key]
	return ok
}

func (r *MemoryRedis) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.AcquireErr != nil {
		return "", false, r.AcquireErr
	}
	if _, held := r.locks[name]; held {
		return "", false, nil
	}
	token := uuid.New().String()
	r.locks[name] = token
	return token, true, nil
}

func (r *MemoryRedis) ReleaseLock(ctx context.Context, name, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locks[name] == token {
		delete(r.locks, name)
		r.Released++
	}
	return nil
}

func (r *MemoryRedis) RememberIdempotencyKey(ctx context.Context, key, value string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *MemoryRedis) LookupIdempotencyKey(ctx context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *MemoryRedis) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	r.mu.Lock()
	raw, ok := r.docs[key]
	r.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (r *MemoryRedis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[key] = raw
	return nil
}

func (r *MemoryRedis) Delete(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.docs, key)
	}
	return nil
}

// ErrPublishFailed is what a failing RecordingPublisher returns
var ErrPublishFailed = errors.New("broker unavailable")

// RecordingPublisher captures published events
type RecordingPublisher struct {
	mu      sync.Mutex
	Placed  []models.OrderPlacedEvent
	Changed []models.OrderStatusChangedEvent
	Deleted []models.OrderDeletedEvent
	Fail    bool
}

func (p *RecordingPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return ErrPublishFailed
	}
	p.Placed = append(p.Placed, *event)
	return nil
}

func (p *RecordingPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return ErrPublishFailed
	}
	p.Changed = append(p.Changed, *event)
	return nil
}

func (p *RecordingPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return ErrPublishFailed
	}
	p.Deleted = append(p.Deleted, *event)
	return nil
}

// TokenSecret signs the tokens minted by Token
const TokenSecret = "test-secret"

// TokenAudience is the audience of the tokens minted by Token
const TokenAudience = "authenticated"

// Provider returns a JWT provider matching the tokens minted by Token
func Provider() *auth.JWTProvider {
	return auth.NewJWTProvider(TokenSecret, TokenAudience)
}

// Token mints a valid bearer token for the user
func Token(userID uuid.UUID) string {
	token, err := Provider().IssueToken(userID, userID.String()[:8]+"@example.com", time.Hour)
	if err != nil {
		panic(err)
	}
	return token
}

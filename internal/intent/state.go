package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conversation states for the multi-turn phone collection flows.
const (
	StateActive                 = "active"
	StateAwaitingPhoneResponse  = "awaiting_phone_response"
	StateAwaitingPhoneDigits    = "awaiting_phone_digits"
	StateConfirmingPhone        = "confirming_phone"
	StateAwaitingRemainingDigit = "awaiting_remaining_digits"
)

// State is one user's conversation record. A user has at most one; saving
// overwrites the previous record.
type State struct {
	Name    string         `json:"state"`
	Context map[string]any `json:"context"`
}

// Language returns the locked conversation language, empty if not set yet.
func (s State) Language() string {
	lang, _ := s.Context["preferred_language"].(string)
	return lang
}

// StateStore persists conversation state between voice turns.
type StateStore interface {
	Get(ctx context.Context, userID uint) (State, bool, error)
	Save(ctx context.Context, userID uint, state State) error
	Clear(ctx context.Context, userID uint) error
}

const stateTTL = 30 * time.Minute

// RedisStore keeps conversation state in Redis so several API replicas can
// share one conversation.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wires a Redis-backed conversation store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func stateKey(userID uint) string {
	return fmt.Sprintf("voicepay:conversation:%d", userID)
}

// Get loads the conversation state for a user.
func (s *RedisStore) Get(ctx context.Context, userID uint) (State, bool, error) {
	raw, err := s.client.Get(ctx, stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("load conversation state: %w", err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, false, fmt.Errorf("decode conversation state: %w", err)
	}
	return state, true, nil
}

// Save overwrites the conversation state for a user.
func (s *RedisStore) Save(ctx context.Context, userID uint, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, stateKey(userID), raw, stateTTL).Err(); err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	return nil
}

// Clear removes the conversation state for a user.
func (s *RedisStore) Clear(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, stateKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear conversation state: %w", err)
	}
	return nil
}

// MemoryStore is a process-local conversation store used when Redis is not
// configured.
type MemoryStore struct {
	mu     sync.Mutex
	states map[uint]State
}

// NewMemoryStore constructs an empty in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[uint]State)}
}

// Get loads the conversation state for a user.
func (s *MemoryStore) Get(_ context.Context, userID uint) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	return state, ok, nil
}

// Save overwrites the conversation state for a user.
func (s *MemoryStore) Save(_ context.Context, userID uint, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
	return nil
}

// Clear removes the conversation state for a user.
func (s *MemoryStore) Clear(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

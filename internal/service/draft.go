package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
)

// ComponentInput names one meal component in a request or a draft.
type ComponentInput struct {
	Kind   nutrition.ComponentKind `json:"kind" binding:"required"`
	ID     uuid.UUID               `json:"id" binding:"required"`
	Amount float64                 `json:"amount"`
}

// Component converts the input to the core variant.
func (c ComponentInput) Component() (nutrition.Component, error) {
	switch c.Kind {
	case nutrition.KindFood:
		return nutrition.FoodComponent{FoodID: c.ID, Amount: c.Amount}, nil
	case nutrition.KindRecipe:
		return nutrition.RecipeComponent{RecipeID: c.ID, Amount: c.Amount}, nil
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown component kind %q", c.Kind))
	}
}

// MealDraft is a meal being assembled before it is saved.
type MealDraft struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	MealType  nutrition.MealType `json:"meal_type"`
	Items     []ComponentInput   `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// DraftStore keeps drafts between requests. Get returns a not_found error
// for a missing or expired draft.
type DraftStore interface {
	Save(ctx context.Context, draft *MealDraft) error
	Get(ctx context.Context, userID, id uuid.UUID) (*MealDraft, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// RedisDraftStore stores drafts as JSON with a sliding TTL.
type RedisDraftStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisDraftStore returns a redis-backed draft store.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{redis: client, ttl: ttl}
}

func draftKey(userID, id uuid.UUID) string {
	return fmt.Sprintf("meal:draft:%s:%s", userID, id)
}

// Save writes the draft and restarts its TTL.
func (s *RedisDraftStore) Save(ctx context.Context, draft *MealDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to marshal draft: %w", err))
	}
	if err := s.redis.Set(ctx, draftKey(draft.UserID, draft.ID), data, s.ttl).Err(); err != nil {
		return apperror.IO(fmt.Errorf("failed to save draft to Redis: %w", err))
	}
	return nil
}

// Get reads a draft.
func (s *RedisDraftStore) Get(ctx context.Context, userID, id uuid.UUID) (*MealDraft, error) {
	data, err := s.redis.Get(ctx, draftKey(userID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NotFound("meal_draft", id.String())
	}
	if err != nil {
		return nil, apperror.IO(fmt.Errorf("failed to get draft from Redis: %w", err))
	}

	var draft MealDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to unmarshal draft: %w", err))
	}
	return &draft, nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (s *RedisDraftStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.redis.Del(ctx, draftKey(userID, id)).Err(); err != nil {
		return apperror.IO(fmt.Errorf("failed to delete draft from Redis: %w", err))
	}
	return nil
}

// MemoryDraftStore keeps drafts in process. It is used when redis is not
// configured.
type MemoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[string]memoryDraft
}

type memoryDraft struct {
	data    []byte
	expires time.Time
}

// NewMemoryDraftStore returns an in-process draft store.
func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{ttl: ttl, now: time.Now, drafts: make(map[string]memoryDraft)}
}

func (s *MemoryDraftStore) Save(ctx context.Context, draft *MealDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return apperror.Internal(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draftKey(draft.UserID, draft.ID)] = memoryDraft{data: data, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) Get(ctx context.Context, userID, id uuid.UUID) (*MealDraft, error) {
	key := draftKey(userID, id)
	s.mu.Lock()
	d, ok := s.drafts[key]
	if ok && !s.now().Before(d.expires) {
		delete(s.drafts, key)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, apperror.NotFound("meal_draft", id.String())
	}

	var draft MealDraft
	if err := json.Unmarshal(d.data, &draft); err != nil {
		return nil, apperror.Internal(err)
	}
	return &draft, nil
}

func (s *MemoryDraftStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey(userID, id))
	return nil
}

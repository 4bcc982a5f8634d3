package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
	"github.com/nutrack/nutrack/backend/internal/testdb"
)

func newDraft(user uuid.UUID) *MealDraft {
	now := time.Now().UTC().Truncate(time.Second)
	return &MealDraft{
		ID:       uuid.New(),
		UserID:   user,
		MealType: nutrition.Lunch,
		Items: []ComponentInput{
			{Kind: nutrition.KindFood, ID: uuid.New(), Amount: 150},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func exerciseDraftStore(t *testing.T, store DraftStore) {
	ctx := context.Background()
	user := uuid.New()
	draft := newDraft(user)

	require.NoError(t, store.Save(ctx, draft))

	got, err := store.Get(ctx, user, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.MealType, got.MealType)
	assert.Equal(t, draft.Items, got.Items)
	assert.True(t, draft.CreatedAt.Equal(got.CreatedAt))

	// Another user cannot see it.
	_, err = store.Get(ctx, uuid.New(), draft.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, store.Delete(ctx, user, draft.ID))
	_, err = store.Get(ctx, user, draft.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, user, draft.ID))
}

func TestMemoryDraftStore(t *testing.T) {
	exerciseDraftStore(t, NewMemoryDraftStore(time.Hour))
}

func TestMemoryDraftStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore(time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	draft := newDraft(uuid.New())
	require.NoError(t, store.Save(ctx, draft))

	now = now.Add(59 * time.Second)
	_, err := store.Get(ctx, draft.UserID, draft.ID)
	require.NoError(t, err)

	// Saving again restarts the TTL.
	require.NoError(t, store.Save(ctx, draft))
	now = now.Add(59 * time.Second)
	_, err = store.Get(ctx, draft.UserID, draft.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = store.Get(ctx, draft.UserID, draft.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRedisDraftStore(t *testing.T) {
	client := testdb.Redis(t)
	exerciseDraftStore(t, NewRedisDraftStore(client, time.Hour))
}

func TestRedisDraftStore_TTL(t *testing.T) {
	client := testdb.Redis(t)
	ctx := context.Background()
	store := NewRedisDraftStore(client, 10*time.Minute)

	draft := newDraft(uuid.New())
	require.NoError(t, store.Save(ctx, draft))

	ttl, err := client.TTL(ctx, draftKey(draft.UserID, draft.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 9*time.Minute)
	assert.LessOrEqual(t, ttl, 10*time.Minute)
}

func TestRedisDraftStore_Unavailable(t *testing.T) {
	client := testdb.Redis(t)
	store := NewRedisDraftStore(client, time.Minute)
	require.NoError(t, client.Close())

	_, err := store.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrIO)
}

func TestComponentInput_Component(t *testing.T) {
	id := uuid.New()

	c, err := ComponentInput{Kind: nutrition.KindFood, ID: id, Amount: 10}.Component()
	require.NoError(t, err)
	assert.Equal(t, nutrition.FoodComponent{FoodID: id, Amount: 10}, c)

	c, err = ComponentInput{Kind: nutrition.KindRecipe, ID: id, Amount: 20}.Component()
	require.NoError(t, err)
	assert.Equal(t, nutrition.RecipeComponent{RecipeID: id, Amount: 20}, c)

	_, err = ComponentInput{Kind: "drink", ID: id}.Component()
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

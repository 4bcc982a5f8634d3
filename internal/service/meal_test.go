package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
	"github.com/nutrack/nutrack/backend/internal/service"
)

func TestMealService_RiceBowlMeal(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	user := uuid.New()
	_, bowl := seedRiceBowl(t, svc, user)

	meal, err := svc.Meals.Create(ctx, user, service.CreateMealInput{
		MealType:   nutrition.Lunch,
		Components: []service.ComponentInput{{Kind: nutrition.KindRecipe, ID: bowl.ID, Amount: 100}},
	})
	require.NoError(t, err)

	got, err := svc.Meals.Nutrition(ctx, user, meal.ID)
	require.NoError(t, err)
	assert.True(t, got.Totals.ApproxEqual(riceProfile(), tol), "totals %+v", got.Totals)
	require.Len(t, got.Contributions, 1)
	assert.Equal(t, "RiceBowl", got.Contributions[0].Name)
}

func TestMealService_FoodAndRecipe(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	user := uuid.New()
	rice, bowl := seedRiceBowl(t, svc, user)

	meal, err := svc.Meals.Create(ctx, user, service.CreateMealInput{
		MealType: nutrition.Dinner,
		Components: []service.ComponentInput{
			{Kind: nutrition.KindFood, ID: rice.ID, Amount: 50},
			{Kind: nutrition.KindRecipe, ID: bowl.ID, Amount: 50},
			{Kind: nutrition.KindFood, ID: rice.ID, Amount: 0},
		},
	})
	require.NoError(t, err)

	got, err := svc.Meals.Nutrition(ctx, user, meal.ID)
	require.NoError(t, err)
	assert.True(t, got.Totals.ApproxEqual(riceProfile(), tol), "totals %+v", got.Totals)
	assert.Len(t, got.Contributions, 3)
}

func TestMealService_CreateRejects(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	user := uuid.New()
	rice, _ := seedRiceBowl(t, svc, user)

	_, err := svc.Meals.Create(ctx, user, service.CreateMealInput{MealType: "Brunch"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Meals.Create(ctx, user, service.CreateMealInput{
		MealType:   nutrition.Snack,
		Components: []service.ComponentInput{{Kind: nutrition.KindFood, ID: rice.ID, Amount: -1}},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Meals.Create(ctx, user, service.CreateMealInput{
		MealType:   nutrition.Snack,
		Components: []service.ComponentInput{{Kind: nutrition.KindRecipe, ID: uuid.New(), Amount: 10}},
	})
	assert.ErrorIs(t, err, apperror.ErrReference)

	meals, err := svc.Meals.List(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestMealService_Daily(t *testing.T) {
	svc, s := setupServices(t)
	ctx := context.Background()
	user := uuid.New()
	rice, bowl := seedRiceBowl(t, svc, user)

	_, err := svc.Meals.Create(ctx, user, service.CreateMealInput{
		MealType:   nutrition.Breakfast,
		Components: []service.ComponentInput{{Kind: nutrition.KindFood, ID: rice.ID, Amount: 100}},
	})
	require.NoError(t, err)
	_, err = svc.Meals.Create(ctx, user, service.CreateMealInput{
		MealType:   nutrition.Lunch,
		Components: []service.ComponentInput{{Kind: nutrition.KindRecipe, ID: bowl.ID, Amount: 200}},
	})
	require.NoError(t, err)

	// A meal whose food has since disappeared.
	ghost, err := svc.Foods.Create(ctx, user, service.CreateFoodInput{Name: "Ghost", Protein: 10})
	require.NoError(t, err)
	_, err = svc.Meals.Create(ctx, user, service.CreateMealInput{
		MealType:   nutrition.Snack,
		Components: []service.ComponentInput{{Kind: nutrition.KindFood, ID: ghost.ID, Amount: 100}},
	})
	require.NoError(t, err)
	require.NoError(t, s.DB().Delete(&model.Food{}, "id = ?", ghost.ID).Error)

	day, err := svc.Meals.Daily(ctx, user, time.Now().UTC())
	require.NoError(t, err)

	assert.Len(t, day.Meals, 3)
	assert.Equal(t, 1, day.FailedMeals)
	assert.True(t, day.Totals.ApproxEqual(riceProfile().Scale(3), tol), "totals %+v", day.Totals)
	assert.True(t, day.ByType[nutrition.Lunch].ApproxEqual(riceProfile().Scale(2), tol))
	_, hasSnack := day.ByType[nutrition.Snack]
	assert.False(t, hasSnack)

	for _, m := range day.Meals {
		if m.MealType == nutrition.Snack {
			assert.Nil(t, m.Totals)
			assert.NotEmpty(t, m.Error)
		} else {
			assert.NotNil(t, m.Totals)
		}
	}

	yesterday, err := svc.Meals.Daily(ctx, user, time.Now().UTC().AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Empty(t, yesterday.Meals)
	assert.True(t, yesterday.Totals.IsZero())
}

func TestMealService_DraftLifecycle(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	user := uuid.New()
	rice, bowl := seedRiceBowl(t, svc, user)

	view, err := svc.Meals.StartDraft(ctx, user, nutrition.Dinner)
	require.NoError(t, err)
	draftID := view.Draft.ID
	assert.Empty(t, view.Draft.Items)

	_, err = svc.Meals.FinalizeDraft(ctx, user, draftID)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	view, err = svc.Meals.AddDraftItem(ctx, user, draftID, service.ComponentInput{Kind: nutrition.KindFood, ID: rice.ID, Amount: 100})
	require.NoError(t, err)
	assert.True(t, view.Totals.ApproxEqual(riceProfile(), tol))

	view, err = svc.Meals.AddDraftItem(ctx, user, draftID, service.ComponentInput{Kind: nutrition.KindRecipe, ID: bowl.ID, Amount: 100})
	require.NoError(t, err)
	assert.Len(t, view.Contributions, 2)
	assert.True(t, view.Totals.ApproxEqual(riceProfile().Scale(2), tol))

	// A component that does not resolve is refused and the draft is unchanged.
	_, err = svc.Meals.AddDraftItem(ctx, user, draftID, service.ComponentInput{Kind: nutrition.KindFood, ID: uuid.New(), Amount: 10})
	assert.ErrorIs(t, err, apperror.ErrReference)
	view, err = svc.Meals.GetDraft(ctx, user, draftID)
	require.NoError(t, err)
	assert.Len(t, view.Draft.Items, 2)

	meal, err := svc.Meals.FinalizeDraft(ctx, user, draftID)
	require.NoError(t, err)
	assert.Equal(t, string(nutrition.Dinner), meal.MealType)
	assert.Len(t, meal.Foods, 1)
	assert.Len(t, meal.Recipes, 1)

	_, err = svc.Meals.GetDraft(ctx, user, draftID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err := svc.Meals.Nutrition(ctx, user, meal.ID)
	require.NoError(t, err)
	assert.True(t, got.Totals.ApproxEqual(riceProfile().Scale(2), tol))
}

func TestMealService_DiscardDraft(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := svc.Meals.StartDraft(ctx, user, "Elevenses")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	view, err := svc.Meals.StartDraft(ctx, user, nutrition.Shake)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Meals.DiscardDraft(ctx, uuid.New(), view.Draft.ID), apperror.ErrNotFound)
	require.NoError(t, svc.Meals.DiscardDraft(ctx, user, view.Draft.ID))
	assert.ErrorIs(t, svc.Meals.DiscardDraft(ctx, user, view.Draft.ID), apperror.ErrNotFound)

	meals, err := svc.Meals.List(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, meals)
}

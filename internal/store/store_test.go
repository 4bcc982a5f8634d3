package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
	"github.com/nutrack/nutrack/backend/internal/testdb"
)

func createFood(t *testing.T, db *gorm.DB, user uuid.UUID, name string, v nutrition.Vector) model.Food {
	t.Helper()
	f := model.Food{Name: name, UserID: user}
	f.SetProfile(v)
	require.NoError(t, db.Create(&f).Error)
	return f
}

func TestFetchFilters(t *testing.T) {
	db := testdb.SQLite(t)
	s := New(db)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	rice := createFood(t, db, alice, "Rice", nutrition.Vector{Carbohydrates: 28})
	createFood(t, db, alice, "Beans", nutrition.Vector{Protein: 9})
	createFood(t, db, bob, "Tofu", nutrition.Vector{Protein: 8})

	var foods []model.Food
	require.NoError(t, s.Fetch(ctx, KindFood, Filter{UserID: alice}, &foods))
	assert.Len(t, foods, 2)

	foods = nil
	require.NoError(t, s.Fetch(ctx, KindFood, Filter{ID: rice.ID, UserID: bob}, &foods))
	assert.Empty(t, foods, "other users' records are invisible")

	recipe := model.Recipe{Name: "Bowl", UserID: alice}
	require.NoError(t, db.Create(&recipe).Error)
	require.NoError(t, db.Create(&model.RecipeIngredient{RecipeID: recipe.ID, FoodID: rice.ID, Amount: 200, UserID: alice}).Error)

	var ings []model.RecipeIngredient
	require.NoError(t, s.Fetch(ctx, KindRecipeIngredient, Filter{ParentID: recipe.ID}, &ings))
	require.Len(t, ings, 1)
	assert.Equal(t, 200.0, ings[0].Amount)
}

func TestFetchRejectsBadFilters(t *testing.T) {
	s := New(testdb.SQLite(t))
	ctx := context.Background()
	var out []model.Food

	err := s.Fetch(ctx, Kind("users"), Filter{}, &out)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))

	err = s.Fetch(ctx, KindFood, Filter{ParentID: uuid.New()}, &out)
	assert.Error(t, err)

	now := time.Now()
	err = s.Fetch(ctx, KindFood, Filter{From: &now}, &out)
	assert.Error(t, err)
}

func TestFetchIOError(t *testing.T) {
	db := testdb.SQLite(t)
	s := New(db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	var out []model.Food
	err = s.Fetch(context.Background(), KindFood, Filter{}, &out)
	assert.ErrorIs(t, err, apperror.ErrIO)
}

func TestRecipeSourceResolvesMeal(t *testing.T) {
	db := testdb.SQLite(t)
	s := New(db)
	ctx := context.Background()
	user := uuid.New()

	profile := nutrition.Vector{Protein: 2.7, Carbohydrates: 28, Sugars: 0.1, Fat: 0.3, Saturates: 0.1, Fiber: 0.4}
	rice := createFood(t, db, user, "Rice", profile)
	bowl := model.Recipe{Name: "RiceBowl", UserID: user, Ingredients: []model.RecipeIngredient{
		{FoodID: rice.ID, Amount: 200, UserID: user},
	}}
	require.NoError(t, s.Create(ctx, &bowl))

	components := []nutrition.Component{nutrition.RecipeComponent{RecipeID: bowl.ID, Amount: 100}}
	cat, err := NewRecipeSource(s, user).Load(ctx, components)
	require.NoError(t, err)

	total, err := nutrition.ResolveMeal(components, cat)
	require.NoError(t, err)
	assert.True(t, total.ApproxEqual(profile, 1e-9), "got %+v", total)
}

func TestRecipeSourceLeavesMissingOut(t *testing.T) {
	db := testdb.SQLite(t)
	s := New(db)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	food := createFood(t, db, owner, "Private", nutrition.Vector{Fat: 1})

	components := []nutrition.Component{nutrition.FoodComponent{FoodID: food.ID, Amount: 10}}
	cat, err := NewRecipeSource(s, other).Load(ctx, components)
	require.NoError(t, err)

	_, err = nutrition.ResolveMeal(components, cat)
	assert.ErrorIs(t, err, apperror.ErrReference)
}

func TestTypedLoaders(t *testing.T) {
	db := testdb.SQLite(t)
	s := New(db)
	ctx := context.Background()
	user := uuid.New()

	_, err := s.Food(ctx, user, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	squat := model.Exercise{Name: "Squat", Type: "strength", UserID: user}
	require.NoError(t, s.Create(ctx, &squat))
	w := model.Workout{Name: "Legs", Date: time.Now(), UserID: user}
	require.NoError(t, s.Create(ctx, &w))

	pos, err := s.NextPosition(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	reps := 5
	entry := model.WorkoutExercise{WorkoutID: w.ID, ExerciseID: squat.ID, Position: pos, UserID: user,
		Sets: []model.WorkoutSet{{Reps: &reps, UserID: user}}}
	require.NoError(t, s.Create(ctx, &entry))

	pos, err = s.NextPosition(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	got, err := s.Workout(ctx, user, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Exercises, 1)
	require.NotNil(t, got.Exercises[0].Exercise)
	assert.Equal(t, "Squat", got.Exercises[0].Exercise.Name)
	assert.Len(t, got.Exercises[0].Sets, 1)

	_, err = s.WorkoutExercise(ctx, user, uuid.New(), entry.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMealsDateRange(t *testing.T) {
	db := testdb.SQLite(t)
	s := New(db)
	ctx := context.Background()
	user := uuid.New()

	day := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{day.Add(-time.Hour), day.Add(8 * time.Hour), day.Add(20 * time.Hour), day.Add(25 * time.Hour)} {
		m := model.Meal{Base: model.Base{CreatedAt: at}, MealType: "Snack", UserID: user}
		require.NoError(t, s.Create(ctx, &m))
	}

	end := day.Add(24 * time.Hour)
	meals, err := s.Meals(ctx, user, &day, &end)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestSimilarFoodsInProcess(t *testing.T) {
	db := testdb.SQLite(t)
	s := New(db)
	ctx := context.Background()
	user := uuid.New()

	chicken := createFood(t, db, user, "Chicken", nutrition.Vector{Protein: 31, Fat: 3.6})
	createFood(t, db, user, "Sugar", nutrition.Vector{Carbohydrates: 100, Sugars: 100})
	createFood(t, db, user, "Turkey", nutrition.Vector{Protein: 29, Fat: 4})
	createFood(t, db, user, "Oil", nutrition.Vector{Fat: 100, Saturates: 14})

	similar, err := s.SimilarFoods(ctx, user, chicken, 2)
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, "Turkey", similar[0].Name)
	for _, f := range similar {
		assert.NotEqual(t, chicken.ID, f.ID)
	}
}

func TestSimilarFoodsPgvector(t *testing.T) {
	db := testdb.Postgres(t)
	s := New(db)
	ctx := context.Background()
	user := uuid.New()

	chicken := createFood(t, db, user, "Chicken", nutrition.Vector{Protein: 31, Fat: 3.6})
	createFood(t, db, user, "Sugar", nutrition.Vector{Carbohydrates: 100, Sugars: 100})
	createFood(t, db, user, "Turkey", nutrition.Vector{Protein: 29, Fat: 4})

	similar, err := s.SimilarFoods(ctx, user, chicken, 1)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, "Turkey", similar[0].Name)
}

func TestTransactionRollsBack(t *testing.T) {
	db := testdb.SQLite(t)
	s := New(db)
	ctx := context.Background()
	user := uuid.New()

	err := s.Transaction(ctx, func(tx *GormStore) error {
		require.NoError(t, tx.Create(ctx, &model.Meal{MealType: "Lunch", UserID: user}))
		return apperror.Validation("abort")
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	meals, err := s.Meals(ctx, user, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, meals)
}

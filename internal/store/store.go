// Package store fetches and persists records for the services. Every query
// is scoped to the owning user when one is given.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/model"
)

// Kind names a record collection. The value is its table.
type Kind string

const (
	KindFood              Kind = "foods"
	KindRecipe            Kind = "recipes"
	KindRecipeIngredient  Kind = "recipe_ingredients"
	KindMeal              Kind = "meals"
	KindMealFood          Kind = "meal_foods"
	KindMealRecipe        Kind = "meal_recipes"
	KindExercise          Kind = "exercises"
	KindWorkout           Kind = "workouts"
	KindWorkoutExercise   Kind = "workout_exercises"
	KindWorkoutSet        Kind = "workout_sets"
	KindBodyMeasurement   Kind = "body_measurements"
	KindCustomMeasurement Kind = "custom_measurements"
)

type kindInfo struct {
	parent string // column holding the parent id
	dated  string // column used for From/To
}

var kinds = map[Kind]kindInfo{
	KindFood:              {},
	KindRecipe:            {},
	KindRecipeIngredient:  {parent: "recipe_id"},
	KindMeal:              {dated: "created_at"},
	KindMealFood:          {parent: "meal_id"},
	KindMealRecipe:        {parent: "meal_id"},
	KindExercise:          {},
	KindWorkout:           {dated: "date"},
	KindWorkoutExercise:   {parent: "workout_id"},
	KindWorkoutSet:        {parent: "workout_exercise_id"},
	KindBodyMeasurement:   {dated: "measurement_date"},
	KindCustomMeasurement: {parent: "body_measurement_id"},
}

// Filter narrows a fetch. Zero fields do not filter.
type Filter struct {
	ID        uuid.UUID
	IDs       []uuid.UUID
	ParentID  uuid.UUID
	ParentIDs []uuid.UUID
	UserID    uuid.UUID
	From      *time.Time // inclusive
	To        *time.Time // exclusive
}

// RecordStore is the record-fetch capability. Fetch fills dest, a pointer
// to a slice of the kind's record type. Failures come back as io errors.
type RecordStore interface {
	Fetch(ctx context.Context, kind Kind, f Filter, dest interface{}) error
}

// GormStore implements RecordStore over gorm.
type GormStore struct {
	db *gorm.DB
}

var _ RecordStore = (*GormStore)(nil)

// New returns a store backed by db.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Fetch(ctx context.Context, kind Kind, f Filter, dest interface{}) error {
	info, ok := kinds[kind]
	if !ok {
		return apperror.Internal(fmt.Errorf("unknown record kind %q", kind))
	}

	q := s.db.WithContext(ctx).Table(string(kind))
	if f.ID != uuid.Nil {
		q = q.Where("id = ?", f.ID)
	}
	if f.IDs != nil {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ParentID != uuid.Nil || f.ParentIDs != nil {
		if info.parent == "" {
			return apperror.Internal(fmt.Errorf("record kind %q has no parent", kind))
		}
		if f.ParentID != uuid.Nil {
			q = q.Where(info.parent+" = ?", f.ParentID)
		}
		if f.ParentIDs != nil {
			q = q.Where(info.parent+" IN ?", f.ParentIDs)
		}
	}
	if f.From != nil || f.To != nil {
		if info.dated == "" {
			return apperror.Internal(fmt.Errorf("record kind %q is not dated", kind))
		}
		if f.From != nil {
			q = q.Where(info.dated+" >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where(info.dated+" < ?", *f.To)
		}
	}
	if info.dated != "" {
		q = q.Order(info.dated + " DESC")
	} else {
		q = q.Order("created_at")
	}

	if err := q.Find(dest).Error; err != nil {
		return apperror.IO(err).WithContext("kind", string(kind))
	}
	return nil
}

// Create inserts record along with any associations it carries.
func (s *GormStore) Create(ctx context.Context, record interface{}) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return apperror.IO(err)
	}
	return nil
}

// Transaction runs fn against a store bound to one transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx *GormStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) first(ctx context.Context, entity string, userID, id uuid.UUID, dest interface{}, preloads ...string) error {
	q := s.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.Where("id = ? AND user_id = ?", id, userID).First(dest).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(entity, id.String())
	case err != nil:
		return apperror.IO(err)
	}
	return nil
}

// Food loads one food owned by userID.
func (s *GormStore) Food(ctx context.Context, userID, id uuid.UUID) (model.Food, error) {
	var f model.Food
	err := s.first(ctx, "food", userID, id, &f)
	return f, err
}

// Foods lists a user's foods by name.
func (s *GormStore) Foods(ctx context.Context, userID uuid.UUID) ([]model.Food, error) {
	var out []model.Food
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&out).Error; err != nil {
		return nil, apperror.IO(err)
	}
	return out, nil
}

// SimilarFoods returns up to limit of the user's other foods ordered by how
// close their macro balance is to target's. Postgres ranks with pgvector;
// other dialects rank in process with the same metric.
func (s *GormStore) SimilarFoods(ctx context.Context, userID uuid.UUID, target model.Food, limit int) ([]model.Food, error) {
	vec := model.ProfileEmbedding(target.Profile())
	q := s.db.WithContext(ctx).Where("user_id = ? AND id <> ?", userID, target.ID)

	var out []model.Food
	if s.db.Dialector.Name() == "postgres" {
		err := q.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
		}).Limit(limit).Find(&out).Error
		if err != nil {
			return nil, apperror.IO(err)
		}
		return out, nil
	}

	if err := q.Find(&out).Error; err != nil {
		return nil, apperror.IO(err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return model.EmbeddingDistance(vec, out[i].Embedding) < model.EmbeddingDistance(vec, out[j].Embedding)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Recipe loads one recipe with its ingredients and their foods.
func (s *GormStore) Recipe(ctx context.Context, userID, id uuid.UUID) (model.Recipe, error) {
	var r model.Recipe
	err := s.first(ctx, "recipe", userID, id, &r, "Ingredients", "Ingredients.Food")
	return r, err
}

// Recipes lists a user's recipes by name, without ingredients.
func (s *GormStore) Recipes(ctx context.Context, userID uuid.UUID) ([]model.Recipe, error) {
	var out []model.Recipe
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&out).Error; err != nil {
		return nil, apperror.IO(err)
	}
	return out, nil
}

// Meal loads one meal with its components.
func (s *GormStore) Meal(ctx context.Context, userID, id uuid.UUID) (model.Meal, error) {
	var m model.Meal
	err := s.first(ctx, "meal", userID, id, &m, "Foods", "Recipes")
	return m, err
}

// Meals lists a user's meals newest first, with components, optionally
// limited to [from, to).
func (s *GormStore) Meals(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]model.Meal, error) {
	q := s.db.WithContext(ctx).Preload("Foods").Preload("Recipes").Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}
	var out []model.Meal
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, apperror.IO(err)
	}
	return out, nil
}

// Exercise loads one exercise.
func (s *GormStore) Exercise(ctx context.Context, userID, id uuid.UUID) (model.Exercise, error) {
	var e model.Exercise
	err := s.first(ctx, "exercise", userID, id, &e)
	return e, err
}

// Exercises lists a user's exercises by name.
func (s *GormStore) Exercises(ctx context.Context, userID uuid.UUID) ([]model.Exercise, error) {
	var out []model.Exercise
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&out).Error; err != nil {
		return nil, apperror.IO(err)
	}
	return out, nil
}

// Workout loads one workout with its entries, their exercises and sets.
func (s *GormStore) Workout(ctx context.Context, userID, id uuid.UUID) (model.Workout, error) {
	var w model.Workout
	err := s.first(ctx, "workout", userID, id, &w, "Exercises", "Exercises.Exercise", "Exercises.Sets")
	return w, err
}

// Workouts lists a user's workouts newest first.
func (s *GormStore) Workouts(ctx context.Context, userID uuid.UUID) ([]model.Workout, error) {
	var out []model.Workout
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Find(&out).Error; err != nil {
		return nil, apperror.IO(err)
	}
	return out, nil
}

// WorkoutExercise loads one workout entry, checking it belongs to workoutID.
func (s *GormStore) WorkoutExercise(ctx context.Context, userID, workoutID, id uuid.UUID) (model.WorkoutExercise, error) {
	var we model.WorkoutExercise
	if err := s.first(ctx, "workout_exercise", userID, id, &we, "Exercise"); err != nil {
		return we, err
	}
	if we.WorkoutID != workoutID {
		return model.WorkoutExercise{}, apperror.NotFound("workout_exercise", id.String())
	}
	return we, nil
}

// NextPosition is one past the highest entry position in a workout.
func (s *GormStore) NextPosition(ctx context.Context, workoutID uuid.UUID) (int, error) {
	var max *int
	err := s.db.WithContext(ctx).Model(&model.WorkoutExercise{}).
		Where("workout_id = ?", workoutID).
		Select("MAX(position)").Scan(&max).Error
	if err != nil {
		return 0, apperror.IO(err)
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// Measurements lists a user's body measurements with their custom values,
// newest first.
func (s *GormStore) Measurements(ctx context.Context, userID uuid.UUID) ([]model.BodyMeasurement, error) {
	var out []model.BodyMeasurement
	err := s.db.WithContext(ctx).Preload("Custom").
		Where("user_id = ?", userID).
		Order("measurement_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperror.IO(err)
	}
	return out, nil
}

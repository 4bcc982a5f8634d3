package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nutrack/nutrack/backend/internal/store"
)

// ReportExporter uploads a generated report and links to it. *config.S3Config
// implements it.
type ReportExporter interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// Services groups everything the HTTP layer calls.
type Services struct {
	Auth         *AuthService
	Foods        *FoodService
	Recipes      *RecipeService
	Meals        *MealService
	Exercises    *ExerciseService
	Workouts     *WorkoutService
	Measurements *MeasurementService
}

// Options configures New. Redis and Exporter are optional.
type Options struct {
	JWTSecret string
	DraftTTL  time.Duration
	Redis     *redis.Client
	Exporter  ReportExporter
}

// New builds the services over s. Drafts go to redis when a client is
// given and stay in process otherwise.
func New(s *store.GormStore, opts Options) *Services {
	var drafts DraftStore
	if opts.Redis != nil {
		drafts = NewRedisDraftStore(opts.Redis, opts.DraftTTL)
	} else {
		drafts = NewMemoryDraftStore(opts.DraftTTL)
	}

	return &Services{
		Auth:         NewAuthService(opts.JWTSecret),
		Foods:        NewFoodService(s),
		Recipes:      NewRecipeService(s),
		Meals:        NewMealService(s, drafts),
		Exercises:    NewExerciseService(s),
		Workouts:     NewWorkoutService(s),
		Measurements: NewMeasurementService(s, opts.Exporter),
	}
}

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
	"github.com/nutrack/nutrack/backend/internal/store"
)

// DefaultSimilarLimit caps similar-food results when no limit is given.
const DefaultSimilarLimit = 5

type FoodService struct {
	store *store.GormStore
}

func NewFoodService(s *store.GormStore) *FoodService {
	return &FoodService{store: s}
}

// CreateFoodInput is a new food with its nutrients per 100g.
type CreateFoodInput struct {
	Name          string  `json:"name" binding:"required"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugars        float64 `json:"sugars"`
	Fat           float64 `json:"fat"`
	Saturates     float64 `json:"saturates"`
	Fiber         float64 `json:"fiber"`
}

// Profile returns the input's nutrient vector.
func (in CreateFoodInput) Profile() nutrition.Vector {
	return nutrition.Vector{
		Protein:       in.Protein,
		Carbohydrates: in.Carbohydrates,
		Sugars:        in.Sugars,
		Fat:           in.Fat,
		Saturates:     in.Saturates,
		Fiber:         in.Fiber,
	}
}

// Create stores a food. Every nutrient must be a non-negative number, and
// sugars and saturates may not exceed the carbohydrates and fat they are
// part of.
func (s *FoodService) Create(ctx context.Context, userID uuid.UUID, in CreateFoodInput) (*model.Food, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("food name is required")
	}
	profile := in.Profile()
	if err := profile.Validate("food", uuid.Nil); err != nil {
		return nil, apperror.Validation("nutrient values must be non-negative numbers")
	}
	if profile.Sugars > profile.Carbohydrates {
		return nil, apperror.Validation("sugars cannot exceed carbohydrates")
	}
	if profile.Saturates > profile.Fat {
		return nil, apperror.Validation("saturates cannot exceed fat")
	}

	food := &model.Food{Name: name, UserID: userID}
	food.SetProfile(profile)
	if err := s.store.Create(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

func (s *FoodService) List(ctx context.Context, userID uuid.UUID) ([]model.Food, error) {
	return s.store.Foods(ctx, userID)
}

func (s *FoodService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Food, error) {
	f, err := s.store.Food(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Similar lists the user's foods whose macro balance is closest to id's.
func (s *FoodService) Similar(ctx context.Context, userID, id uuid.UUID, limit int) ([]model.Food, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	target, err := s.store.Food(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.store.SimilarFoods(ctx, userID, target, limit)
}

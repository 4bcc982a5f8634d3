package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
	"github.com/nutrack/nutrack/backend/internal/store"
)

type RecipeService struct {
	store *store.GormStore
}

func NewRecipeService(s *store.GormStore) *RecipeService {
	return &RecipeService{store: s}
}

// IngredientInput adds amount grams of a food to a recipe.
type IngredientInput struct {
	FoodID uuid.UUID `json:"food_id" binding:"required"`
	Amount float64   `json:"amount"`
}

// CreateRecipeInput is a new recipe, optionally with ingredients.
type CreateRecipeInput struct {
	Name        string            `json:"name" binding:"required"`
	Directions  string            `json:"directions"`
	Ingredients []IngredientInput `json:"ingredients"`
}

// IngredientNutrition is one ingredient's absolute contribution.
type IngredientNutrition struct {
	FoodID   uuid.UUID        `json:"food_id"`
	FoodName string           `json:"food_name"`
	Amount   float64          `json:"amount"`
	Totals   nutrition.Vector `json:"totals"`
}

// RecipeNutrition is a recipe's resolved nutrient content.
type RecipeNutrition struct {
	RecipeID    uuid.UUID             `json:"recipe_id"`
	Name        string                `json:"name"`
	Total       nutrition.Vector      `json:"total"`
	TotalMass   float64               `json:"total_mass"`
	PerHundred  nutrition.Vector      `json:"per_100g"`
	Ingredients []IngredientNutrition `json:"ingredients"`
}

func (s *RecipeService) Create(ctx context.Context, userID uuid.UUID, in CreateRecipeInput) (*model.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("recipe name is required")
	}

	recipe := &model.Recipe{Name: name, Directions: in.Directions, UserID: userID}
	for i, ing := range in.Ingredients {
		if err := s.checkIngredient(ctx, userID, ing); err != nil {
			return nil, withIndex(err, "ingredient", i)
		}
		recipe.Ingredients = append(recipe.Ingredients, model.RecipeIngredient{
			FoodID: ing.FoodID,
			Amount: ing.Amount,
			UserID: userID,
		})
	}

	if err := s.store.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) List(ctx context.Context, userID uuid.UUID) ([]model.Recipe, error) {
	return s.store.Recipes(ctx, userID)
}

func (s *RecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Recipe, error) {
	r, err := s.store.Recipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// AddIngredient appends an ingredient. Existing ingredients never change.
func (s *RecipeService) AddIngredient(ctx context.Context, userID, recipeID uuid.UUID, in IngredientInput) (*model.RecipeIngredient, error) {
	if _, err := s.store.Recipe(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	if err := s.checkIngredient(ctx, userID, in); err != nil {
		return nil, err
	}

	ing := &model.RecipeIngredient{RecipeID: recipeID, FoodID: in.FoodID, Amount: in.Amount, UserID: userID}
	if err := s.store.Create(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

// Nutrition resolves the recipe's current ingredients.
func (s *RecipeService) Nutrition(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeNutrition, error) {
	cat, err := store.NewRecipeSource(s.store, userID).LoadRecipes(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	recipe, ok := cat.Recipe(recipeID)
	if !ok {
		return nil, apperror.NotFound("recipe", recipeID.String())
	}

	res, err := nutrition.ResolveRecipeDetailed(recipe, cat)
	if err != nil {
		return nil, err
	}

	out := &RecipeNutrition{
		RecipeID:    recipe.ID,
		Name:        recipe.Name,
		Total:       res.Absolute,
		TotalMass:   res.TotalMass,
		PerHundred:  res.PerHundred,
		Ingredients: make([]IngredientNutrition, 0, len(res.Lines)),
	}
	for _, line := range res.Lines {
		out.Ingredients = append(out.Ingredients, IngredientNutrition{
			FoodID:   line.Food.ID,
			FoodName: line.Food.Name,
			Amount:   line.Amount,
			Totals:   line.Totals,
		})
	}
	return out, nil
}

func (s *RecipeService) checkIngredient(ctx context.Context, userID uuid.UUID, in IngredientInput) error {
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return apperror.Validation("ingredient amount must be greater than zero")
	}
	if _, err := s.store.Food(ctx, userID, in.FoodID); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Reference("food", in.FoodID.String())
		}
		return err
	}
	return nil
}

// withIndex records which list element an error came from.
func withIndex(err error, what string, i int) error {
	if appErr, ok := err.(*apperror.Error); ok {
		return appErr.WithContext(what+"_index", i)
	}
	return fmt.Errorf("%s %d: %w", what, i, err)
}

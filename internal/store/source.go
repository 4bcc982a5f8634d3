package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
)

// RecipeSource loads, for one user, everything a set of meal components
// refers to: recipes, their ingredients and every food involved. The result
// is a nutrition.Catalog, so resolution itself never touches the store.
// Ids that do not exist simply stay absent and surface as reference errors
// when resolved.
type RecipeSource struct {
	store  RecordStore
	userID uuid.UUID
}

// NewRecipeSource returns a source scoped to userID.
func NewRecipeSource(store RecordStore, userID uuid.UUID) *RecipeSource {
	return &RecipeSource{store: store, userID: userID}
}

// Load fetches what components refer to.
func (s *RecipeSource) Load(ctx context.Context, components []nutrition.Component) (*nutrition.Catalog, error) {
	var foodIDs, recipeIDs []uuid.UUID
	for _, c := range components {
		switch c.Kind() {
		case nutrition.KindFood:
			foodIDs = append(foodIDs, c.Ref())
		case nutrition.KindRecipe:
			recipeIDs = append(recipeIDs, c.Ref())
		}
	}
	return s.load(ctx, foodIDs, recipeIDs)
}

// LoadRecipes fetches the given recipes and the foods they use.
func (s *RecipeSource) LoadRecipes(ctx context.Context, recipeIDs ...uuid.UUID) (*nutrition.Catalog, error) {
	return s.load(ctx, nil, recipeIDs)
}

// LoadMeals fetches what every component of every meal refers to.
func (s *RecipeSource) LoadMeals(ctx context.Context, meals []nutrition.Meal) (*nutrition.Catalog, error) {
	var all []nutrition.Component
	for _, m := range meals {
		all = append(all, m.Components...)
	}
	return s.Load(ctx, all)
}

func (s *RecipeSource) load(ctx context.Context, foodIDs, recipeIDs []uuid.UUID) (*nutrition.Catalog, error) {
	cat := nutrition.NewCatalog(nil, nil)

	recipeIDs = unique(recipeIDs)
	if len(recipeIDs) > 0 {
		var recipes []model.Recipe
		if err := s.store.Fetch(ctx, KindRecipe, Filter{IDs: recipeIDs, UserID: s.userID}, &recipes); err != nil {
			return nil, err
		}
		var ingredients []model.RecipeIngredient
		if err := s.store.Fetch(ctx, KindRecipeIngredient, Filter{ParentIDs: recipeIDs, UserID: s.userID}, &ingredients); err != nil {
			return nil, err
		}

		byRecipe := make(map[uuid.UUID][]model.RecipeIngredient, len(recipes))
		for _, ing := range ingredients {
			byRecipe[ing.RecipeID] = append(byRecipe[ing.RecipeID], ing)
			foodIDs = append(foodIDs, ing.FoodID)
		}
		for _, r := range recipes {
			r.Ingredients = byRecipe[r.ID]
			cat.AddRecipe(r.ToNutrition())
		}
	}

	foodIDs = unique(foodIDs)
	if len(foodIDs) > 0 {
		var foods []model.Food
		if err := s.store.Fetch(ctx, KindFood, Filter{IDs: foodIDs, UserID: s.userID}, &foods); err != nil {
			return nil, err
		}
		for _, f := range foods {
			cat.AddFood(f.ToNutrition())
		}
	}

	return cat, nil
}

func unique(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package nutrition

import (
	"fmt"
	"math"

	"github.com/nutrack/nutrack/backend/internal/apperror"
)

// IngredientLine is one ingredient's absolute contribution to a recipe.
type IngredientLine struct {
	Food   Food
	Amount float64
	Totals Vector
}

// RecipeResolution is the detailed result of resolving a recipe.
type RecipeResolution struct {
	Absolute   Vector
	TotalMass  float64
	PerHundred Vector
	Lines      []IngredientLine
}

// ResolveRecipe sums every ingredient's profile scaled by amount/100. The
// result is the absolute content of the recipe's current ingredients, along
// with their total mass in grams. An empty recipe resolves to zero.
//
// Summation is plain float64 addition in ingredient order with no rounding.
func ResolveRecipe(recipe Recipe, foods Source) (Vector, float64, error) {
	res, err := ResolveRecipeDetailed(recipe, foods)
	if err != nil {
		return Vector{}, 0, err
	}
	return res.Absolute, res.TotalMass, nil
}

// ResolveRecipeDetailed is ResolveRecipe with the per-100g profile and a
// per-ingredient breakdown.
func ResolveRecipeDetailed(recipe Recipe, foods Source) (RecipeResolution, error) {
	res := RecipeResolution{Lines: make([]IngredientLine, 0, len(recipe.Ingredients))}

	for i, ing := range recipe.Ingredients {
		if math.IsNaN(ing.Amount) || math.IsInf(ing.Amount, 0) || ing.Amount <= 0 {
			return RecipeResolution{}, apperror.DataIntegrity("recipe", recipe.ID.String(),
				fmt.Sprintf("ingredient %d amount must be a finite number greater than zero", i))
		}

		food, ok := foods.Food(ing.FoodID)
		if !ok {
			return RecipeResolution{}, apperror.Reference("food", ing.FoodID.String()).
				WithContext("recipe_id", recipe.ID.String())
		}
		if err := food.Profile.Validate("food", food.ID); err != nil {
			return RecipeResolution{}, err
		}

		totals := ForAmount(food.Profile, ing.Amount)
		res.Absolute = res.Absolute.Add(totals)
		res.TotalMass += ing.Amount
		res.Lines = append(res.Lines, IngredientLine{Food: food, Amount: ing.Amount, Totals: totals})
	}

	res.PerHundred = PerHundred(res.Absolute, res.TotalMass)
	return res, nil
}

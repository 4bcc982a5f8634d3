package nutrition

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
)

// MealType labels a meal.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Shake     MealType = "Shake"
	Snack     MealType = "Snack"
)

// MealTypes lists every valid meal type in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Shake, Snack}

// Valid reports whether t is one of MealTypes.
func (t MealType) Valid() bool {
	for _, m := range MealTypes {
		if t == m {
			return true
		}
	}
	return false
}

// ComponentKind distinguishes the two component variants.
type ComponentKind string

const (
	KindFood   ComponentKind = "food"
	KindRecipe ComponentKind = "recipe"
)

// Component is one entry of a meal: either a FoodComponent or a
// RecipeComponent. The set of implementations is closed.
type Component interface {
	Kind() ComponentKind
	Ref() uuid.UUID
	Grams() float64
	component()
}

// FoodComponent is a food logged directly, in grams.
type FoodComponent struct {
	FoodID uuid.UUID
	Amount float64
}

func (c FoodComponent) Kind() ComponentKind { return KindFood }
func (c FoodComponent) Ref() uuid.UUID      { return c.FoodID }
func (c FoodComponent) Grams() float64      { return c.Amount }
func (FoodComponent) component()            {}

// RecipeComponent is a mass of a finished recipe, in grams.
type RecipeComponent struct {
	RecipeID uuid.UUID
	Amount   float64
}

func (c RecipeComponent) Kind() ComponentKind { return KindRecipe }
func (c RecipeComponent) Ref() uuid.UUID      { return c.RecipeID }
func (c RecipeComponent) Grams() float64      { return c.Amount }
func (RecipeComponent) component()            {}

// Meal is a typed, timestamped set of components.
type Meal struct {
	ID         uuid.UUID
	Type       MealType
	UserID     uuid.UUID
	CreatedAt  time.Time
	Components []Component
}

// Contribution is what one component adds to a meal.
type Contribution struct {
	Kind   ComponentKind
	Ref    uuid.UUID
	Name   string
	Amount float64
	Totals Vector
}

// ResolveMeal sums the nutrient contribution of every component.
//
// Food components scale the food's per-100g profile by amount/100. Recipe
// components are first resolved to their absolute vector and mass, turned
// into a per-100g profile of the finished dish, and only then scaled by the
// amount eaten. A recipe with no ingredients contributes nothing.
func ResolveMeal(components []Component, src Source) (Vector, error) {
	total, _, err := ResolveMealDetailed(components, src)
	return total, err
}

// ResolveMealDetailed is ResolveMeal with one Contribution per component, in
// input order.
func ResolveMealDetailed(components []Component, src Source) (Vector, []Contribution, error) {
	var total Vector
	lines := make([]Contribution, 0, len(components))

	for i, c := range components {
		if c == nil {
			return Vector{}, nil, apperror.Internal(fmt.Errorf("component %d is nil", i))
		}
		amount := c.Grams()
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
			return Vector{}, nil, apperror.DataIntegrity(string(c.Kind()), c.Ref().String(),
				fmt.Sprintf("component %d amount must be a finite, non-negative number", i))
		}

		var (
			perHundred Vector
			name       string
		)
		switch comp := c.(type) {
		case FoodComponent:
			food, ok := src.Food(comp.FoodID)
			if !ok {
				return Vector{}, nil, apperror.Reference("food", comp.FoodID.String())
			}
			if err := food.Profile.Validate("food", food.ID); err != nil {
				return Vector{}, nil, err
			}
			perHundred, name = food.Profile, food.Name
		case RecipeComponent:
			recipe, ok := src.Recipe(comp.RecipeID)
			if !ok {
				return Vector{}, nil, apperror.Reference("recipe", comp.RecipeID.String())
			}
			absolute, mass, err := ResolveRecipe(recipe, src)
			if err != nil {
				return Vector{}, nil, err
			}
			perHundred, name = PerHundred(absolute, mass), recipe.Name
		default:
			return Vector{}, nil, apperror.Internal(fmt.Errorf("unknown component type %T", c))
		}

		contribution := ForAmount(perHundred, amount)
		total = total.Add(contribution)
		lines = append(lines, Contribution{
			Kind:   c.Kind(),
			Ref:    c.Ref(),
			Name:   name,
			Amount: amount,
			Totals: contribution,
		})
	}

	return total, lines, nil
}

// MealResult is the outcome of resolving one meal in a batch.
type MealResult struct {
	Meal   Meal
	Totals Vector
	Err    error
}

// ResolveMeals resolves each meal independently. A failing meal records its
// own error and does not affect the others.
func ResolveMeals(meals []Meal, src Source) []MealResult {
	out := make([]MealResult, len(meals))
	for i, m := range meals {
		totals, err := ResolveMeal(m.Components, src)
		out[i] = MealResult{Meal: m, Totals: totals, Err: err}
	}
	return out
}

// SumResults adds up the totals of every successful result and counts the
// failures.
func SumResults(results []MealResult) (Vector, int) {
	var (
		total  Vector
		failed int
	)
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		total = total.Add(r.Totals)
	}
	return total, failed
}

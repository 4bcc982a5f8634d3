package model

import (
	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/nutrition"
)

type Meal struct {
	Base
	MealType string       `gorm:"size:20;not null" json:"meal_type"`
	UserID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Foods    []MealFood   `gorm:"foreignKey:MealID" json:"foods,omitempty"`
	Recipes  []MealRecipe `gorm:"foreignKey:MealID" json:"recipes,omitempty"`
}

// MealFood is a food eaten directly as part of a meal.
type MealFood struct {
	Base
	MealID uuid.UUID `gorm:"type:uuid;not null;index" json:"meal_id"`
	FoodID uuid.UUID `gorm:"type:uuid;not null" json:"food_id"`
	Amount float64   `gorm:"not null" json:"amount"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
}

// MealRecipe is a portion of a finished recipe eaten as part of a meal.
type MealRecipe struct {
	Base
	MealID   uuid.UUID `gorm:"type:uuid;not null;index" json:"meal_id"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null" json:"recipe_id"`
	Amount   float64   `gorm:"not null" json:"amount"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
}

// Components lists foods before recipes, each in stored order.
func (m Meal) Components() []nutrition.Component {
	out := make([]nutrition.Component, 0, len(m.Foods)+len(m.Recipes))
	for _, f := range m.Foods {
		out = append(out, nutrition.FoodComponent{FoodID: f.FoodID, Amount: f.Amount})
	}
	for _, r := range m.Recipes {
		out = append(out, nutrition.RecipeComponent{RecipeID: r.RecipeID, Amount: r.Amount})
	}
	return out
}

// ToNutrition converts the record and its loaded components.
func (m Meal) ToNutrition() nutrition.Meal {
	return nutrition.Meal{
		ID:         m.ID,
		Type:       nutrition.MealType(m.MealType),
		UserID:     m.UserID,
		CreatedAt:  m.CreatedAt,
		Components: m.Components(),
	}
}

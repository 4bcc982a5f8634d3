package model

import (
	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/nutrition"
)

type Recipe struct {
	Base
	Name        string             `gorm:"size:255;not null" json:"name"`
	Directions  string             `gorm:"type:text" json:"directions"`
	UserID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

// RecipeIngredient links a food to a recipe with an amount in grams.
// Ingredients are only ever appended.
type RecipeIngredient struct {
	Base
	RecipeID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	FoodID   uuid.UUID `gorm:"type:uuid;not null;index" json:"food_id"`
	Food     *Food     `gorm:"foreignKey:FoodID" json:"food,omitempty"`
	Amount   float64   `gorm:"not null" json:"amount"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
}

// ToNutrition converts the record and its loaded ingredients.
func (r Recipe) ToNutrition() nutrition.Recipe {
	out := nutrition.Recipe{
		ID:          r.ID,
		Name:        r.Name,
		Directions:  r.Directions,
		UserID:      r.UserID,
		Ingredients: make([]nutrition.Ingredient, 0, len(r.Ingredients)),
	}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, nutrition.Ingredient{FoodID: ing.FoodID, Amount: ing.Amount})
	}
	return out
}

package nutrition

import (
	"time"

	"github.com/google/uuid"
)

// Food is a nutrient-bearing record. Profile is per 100g.
type Food struct {
	ID        uuid.UUID
	Name      string
	Profile   Vector
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ingredient links a food to a recipe with an amount in grams.
type Ingredient struct {
	FoodID uuid.UUID
	Amount float64
}

// Recipe is a named composition of ingredients. It may have none.
type Recipe struct {
	ID          uuid.UUID
	Name        string
	Directions  string
	UserID      uuid.UUID
	Ingredients []Ingredient
}

// Source supplies already-fetched foods and recipes by id.
type Source interface {
	Food(id uuid.UUID) (Food, bool)
	Recipe(id uuid.UUID) (Recipe, bool)
}

// Catalog is an in-memory Source.
type Catalog struct {
	foods   map[uuid.UUID]Food
	recipes map[uuid.UUID]Recipe
}

// Compile-time interface check.
var _ Source = (*Catalog)(nil)

// NewCatalog indexes the given foods and recipes. Later duplicates win.
func NewCatalog(foods []Food, recipes []Recipe) *Catalog {
	c := &Catalog{
		foods:   make(map[uuid.UUID]Food, len(foods)),
		recipes: make(map[uuid.UUID]Recipe, len(recipes)),
	}
	for _, f := range foods {
		c.foods[f.ID] = f
	}
	for _, r := range recipes {
		c.recipes[r.ID] = r
	}
	return c
}

// AddFood indexes f.
func (c *Catalog) AddFood(f Food) {
	c.foods[f.ID] = f
}

// AddRecipe indexes r.
func (c *Catalog) AddRecipe(r Recipe) {
	c.recipes[r.ID] = r
}

// Food implements Source.
func (c *Catalog) Food(id uuid.UUID) (Food, bool) {
	f, ok := c.foods[id]
	return f, ok
}

// Recipe implements Source.
func (c *Catalog) Recipe(id uuid.UUID) (Recipe, bool) {
	r, ok := c.recipes[id]
	return r, ok
}

// Package nutrition resolves recipes and meals into nutrient totals.
//
// Foods carry a per-100g nutrient profile. A recipe resolves to an absolute
// vector for its total ingredient mass; a meal rescales each recipe to a
// per-100g profile before applying the amount eaten. Every function here is
// pure and works only on the data handed to it.
package nutrition

import (
	"math"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
)

// Vector holds the six tracked nutrients, in grams. Its basis (per 100g or
// absolute for a given mass) is defined by whoever produced it.
type Vector struct {
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugars        float64 `json:"sugars"`
	Fat           float64 `json:"fat"`
	Saturates     float64 `json:"saturates"`
	Fiber         float64 `json:"fiber"`
}

// Scale multiplies every field by f.
func (v Vector) Scale(f float64) Vector {
	return Vector{
		Protein:       v.Protein * f,
		Carbohydrates: v.Carbohydrates * f,
		Sugars:        v.Sugars * f,
		Fat:           v.Fat * f,
		Saturates:     v.Saturates * f,
		Fiber:         v.Fiber * f,
	}
}

// Add returns the field-wise sum of v and o.
func (v Vector) Add(o Vector) Vector {
	return Vector{
		Protein:       v.Protein + o.Protein,
		Carbohydrates: v.Carbohydrates + o.Carbohydrates,
		Sugars:        v.Sugars + o.Sugars,
		Fat:           v.Fat + o.Fat,
		Saturates:     v.Saturates + o.Saturates,
		Fiber:         v.Fiber + o.Fiber,
	}
}

// IsZero reports whether every field is exactly zero.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// Fields returns the nutrients in a fixed order: protein, carbohydrates,
// sugars, fat, saturates, fiber.
func (v Vector) Fields() [6]float64 {
	return [6]float64{v.Protein, v.Carbohydrates, v.Sugars, v.Fat, v.Saturates, v.Fiber}
}

// ApproxEqual compares field-wise with a relative tolerance. Values within
// tol of zero on both sides compare equal.
func (v Vector) ApproxEqual(o Vector, tol float64) bool {
	a, b := v.Fields(), o.Fields()
	for i := range a {
		diff := math.Abs(a[i] - b[i])
		scale := math.Max(math.Abs(a[i]), math.Abs(b[i]))
		if diff > tol && diff > tol*scale {
			return false
		}
	}
	return true
}

// Validate rejects negative or NaN fields.
func (v Vector) Validate(entity string, id uuid.UUID) error {
	names := [6]string{"protein", "carbohydrates", "sugars", "fat", "saturates", "fiber"}
	for i, f := range v.Fields() {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return apperror.DataIntegrity(entity, id.String(), names[i]+" is not a finite number")
		}
		if f < 0 {
			return apperror.DataIntegrity(entity, id.String(), names[i]+" must not be negative")
		}
	}
	return nil
}

// PerHundred converts an absolute vector for mass grams into a per-100g
// profile. A zero mass yields the zero vector.
func PerHundred(absolute Vector, mass float64) Vector {
	if mass <= 0 {
		return Vector{}
	}
	return absolute.Scale(100 / mass)
}

// ForAmount scales a per-100g profile to the given mass in grams.
func ForAmount(perHundred Vector, amount float64) Vector {
	return perHundred.Scale(amount / 100)
}

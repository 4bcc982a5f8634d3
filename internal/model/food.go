package model

import (
	"math"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/nutrack/nutrack/backend/internal/nutrition"
)

// EmbeddingDims is the width of a food's macro-profile embedding.
const EmbeddingDims = 6

// Food is a food with its nutrient profile per 100g.
type Food struct {
	Base
	Name          string          `gorm:"size:255;not null" json:"name"`
	Protein       float64         `gorm:"not null;default:0" json:"protein"`
	Carbohydrates float64         `gorm:"not null;default:0" json:"carbohydrates"`
	Sugars        float64         `gorm:"not null;default:0" json:"sugars"`
	Fat           float64         `gorm:"not null;default:0" json:"fat"`
	Saturates     float64         `gorm:"not null;default:0" json:"saturates"`
	Fiber         float64         `gorm:"not null;default:0" json:"fiber"`
	Embedding     pgvector.Vector `gorm:"type:vector(6)" json:"-"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
}

// Profile returns the per-100g nutrient vector.
func (f Food) Profile() nutrition.Vector {
	return nutrition.Vector{
		Protein:       f.Protein,
		Carbohydrates: f.Carbohydrates,
		Sugars:        f.Sugars,
		Fat:           f.Fat,
		Saturates:     f.Saturates,
		Fiber:         f.Fiber,
	}
}

// SetProfile copies v into the nutrient columns.
func (f *Food) SetProfile(v nutrition.Vector) {
	f.Protein = v.Protein
	f.Carbohydrates = v.Carbohydrates
	f.Sugars = v.Sugars
	f.Fat = v.Fat
	f.Saturates = v.Saturates
	f.Fiber = v.Fiber
}

// BeforeSave keeps the embedding in step with the profile.
func (f *Food) BeforeSave(tx *gorm.DB) error {
	f.Embedding = ProfileEmbedding(f.Profile())
	return nil
}

// ToNutrition converts the record to the core type.
func (f Food) ToNutrition() nutrition.Food {
	return nutrition.Food{
		ID:        f.ID,
		Name:      f.Name,
		Profile:   f.Profile(),
		UserID:    f.UserID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ProfileEmbedding describes a profile by the share each nutrient takes of
// the total, so foods with the same macro balance sit close together
// regardless of density. An all-zero profile embeds to the zero vector.
func ProfileEmbedding(v nutrition.Vector) pgvector.Vector {
	fields := v.Fields()
	var sum float64
	for _, x := range fields {
		if x > 0 && !math.IsInf(x, 0) {
			sum += x
		}
	}

	out := make([]float32, EmbeddingDims)
	if sum == 0 {
		return pgvector.NewVector(out)
	}
	for i, x := range fields {
		if x > 0 && !math.IsInf(x, 0) {
			out[i] = float32(x / sum)
		}
	}
	return pgvector.NewVector(out)
}

// EmbeddingDistance is the euclidean distance between two embeddings, the
// same metric as the pgvector <-> operator.
func EmbeddingDistance(a, b pgvector.Vector) float64 {
	x, y := a.Slice(), b.Slice()
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var d float64
	for i := 0; i < n; i++ {
		diff := float64(x[i] - y[i])
		d += diff * diff
	}
	return math.Sqrt(d)
}

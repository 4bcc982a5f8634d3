package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/measurement"
)

type BodyMeasurement struct {
	Base
	MeasurementDate   time.Time           `gorm:"not null;index" json:"measurement_date"`
	Weight            float64             `gorm:"not null" json:"weight"`
	BodyFatPercentage *float64            `json:"body_fat_percentage,omitempty"`
	MuscleMass        *float64            `json:"muscle_mass,omitempty"`
	Notes             string              `gorm:"type:text" json:"notes,omitempty"`
	UserID            uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	Custom            []CustomMeasurement `gorm:"foreignKey:BodyMeasurementID" json:"custom_measurements,omitempty"`
}

// CustomMeasurement is a named value recorded with a body measurement.
type CustomMeasurement struct {
	Base
	BodyMeasurementID uuid.UUID `gorm:"type:uuid;not null;index" json:"body_measurement_id"`
	MeasurementName   string    `gorm:"size:100;not null" json:"measurement_name"`
	MeasurementValue  float64   `gorm:"not null" json:"measurement_value"`
	Unit              string    `gorm:"size:20;not null;default:'cm'" json:"unit"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
}

// ToMeasurement converts the record and its loaded custom measurements.
func (b BodyMeasurement) ToMeasurement() measurement.BodyMeasurement {
	out := measurement.BodyMeasurement{
		ID:                b.ID,
		Date:              b.MeasurementDate,
		Weight:            b.Weight,
		BodyFatPercentage: b.BodyFatPercentage,
		MuscleMass:        b.MuscleMass,
		Notes:             b.Notes,
		UserID:            b.UserID,
		Custom:            make([]measurement.CustomMeasurement, 0, len(b.Custom)),
	}
	for _, c := range b.Custom {
		out.Custom = append(out.Custom, measurement.CustomMeasurement{
			Name:  c.MeasurementName,
			Value: c.MeasurementValue,
			Unit:  c.Unit,
		})
	}
	return out
}

// All lists every record type for migrations.
func All() []interface{} {
	return []interface{}{
		&Food{},
		&Recipe{},
		&RecipeIngredient{},
		&Meal{},
		&MealFood{},
		&MealRecipe{},
		&Exercise{},
		&Workout{},
		&WorkoutExercise{},
		&WorkoutSet{},
		&BodyMeasurement{},
		&CustomMeasurement{},
	}
}

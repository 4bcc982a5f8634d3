package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/training"
)

type Exercise struct {
	Base
	Name         string     `gorm:"size:255;not null" json:"name"`
	Type         string     `gorm:"size:20;not null" json:"type"`
	MuscleGroups StringList `json:"muscle_groups"`
	Equipment    string     `gorm:"size:255" json:"equipment,omitempty"`
	Instructions string     `gorm:"type:text" json:"instructions,omitempty"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
}

// ToTraining converts the record to the core type.
func (e Exercise) ToTraining() training.Exercise {
	return training.Exercise{
		ID:           e.ID,
		Name:         e.Name,
		Type:         training.ExerciseType(e.Type),
		MuscleGroups: []string(e.MuscleGroups),
		Equipment:    e.Equipment,
		Instructions: e.Instructions,
	}
}

type Workout struct {
	Base
	Name      string            `gorm:"size:255" json:"name"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
	Date      time.Time         `gorm:"not null;index" json:"date"`
	StartedAt *time.Time        `json:"started_at,omitempty"`
	EndedAt   *time.Time        `json:"ended_at,omitempty"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Exercises []WorkoutExercise `gorm:"foreignKey:WorkoutID" json:"exercises,omitempty"`
}

// ToTraining converts the record to the core type.
func (w Workout) ToTraining() training.Workout {
	return training.Workout{
		ID:        w.ID,
		Name:      w.Name,
		Notes:     w.Notes,
		Date:      w.Date,
		StartedAt: w.StartedAt,
		EndedAt:   w.EndedAt,
		UserID:    w.UserID,
	}
}

// WorkoutExercise places an exercise in a workout at a position.
type WorkoutExercise struct {
	Base
	WorkoutID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"workout_id"`
	ExerciseID uuid.UUID    `gorm:"type:uuid;not null" json:"exercise_id"`
	Exercise   *Exercise    `gorm:"foreignKey:ExerciseID" json:"exercise,omitempty"`
	Position   int          `gorm:"not null;default:0" json:"position"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Sets       []WorkoutSet `gorm:"foreignKey:WorkoutExerciseID" json:"sets,omitempty"`
}

// ToTraining converts the record. An exercise that was not loaded comes out
// with an unknown type.
func (we WorkoutExercise) ToTraining() training.WorkoutExercise {
	out := training.WorkoutExercise{ID: we.ID, Position: we.Position}
	if we.Exercise != nil {
		out.Exercise = we.Exercise.ToTraining()
	} else {
		out.Exercise = training.Exercise{ID: we.ExerciseID, Type: training.Unknown}
	}
	return out
}

// WorkoutSet is one logged set. Nil columns were not recorded.
type WorkoutSet struct {
	Base
	WorkoutExerciseID uuid.UUID `gorm:"type:uuid;not null;index" json:"workout_exercise_id"`
	Reps              *int      `json:"reps,omitempty"`
	Weight            *float64  `json:"weight,omitempty"`
	Distance          *float64  `json:"distance,omitempty"`
	DurationSeconds   *int      `json:"duration_seconds,omitempty"`
	RestSeconds       *int      `json:"rest_seconds,omitempty"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
}

// ToTraining converts the record to the core type.
func (s WorkoutSet) ToTraining() training.Set {
	return training.Set{
		ID:                s.ID,
		WorkoutExerciseID: s.WorkoutExerciseID,
		Reps:              s.Reps,
		Weight:            s.Weight,
		Distance:          s.Distance,
		DurationSeconds:   s.DurationSeconds,
		RestSeconds:       s.RestSeconds,
	}
}

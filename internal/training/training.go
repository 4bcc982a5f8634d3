// Package training summarizes logged workouts.
package training

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ExerciseType decides which set shape applies to an exercise.
type ExerciseType string

const (
	Strength ExerciseType = "strength"
	Cardio   ExerciseType = "cardio"
	// Unknown marks an entry whose exercise could not be resolved.
	Unknown ExerciseType = "unknown"
)

// Valid reports whether t is strength or cardio.
func (t ExerciseType) Valid() bool {
	return t == Strength || t == Cardio
}

// MuscleGroups is the fixed vocabulary offered when creating an exercise.
var MuscleGroups = []string{
	"chest", "back", "shoulders", "biceps", "triceps",
	"quadriceps", "hamstrings", "glutes", "calves",
	"core", "cardiovascular",
}

// Exercise describes a movement.
type Exercise struct {
	ID           uuid.UUID
	Name         string
	Type         ExerciseType
	MuscleGroups []string
	Equipment    string
	Instructions string
}

// Workout is one training session.
type Workout struct {
	ID        uuid.UUID
	Name      string
	Notes     string
	Date      time.Time
	StartedAt *time.Time
	EndedAt   *time.Time
	UserID    uuid.UUID
}

// WorkoutExercise places an exercise in a workout. Position orders entries.
type WorkoutExercise struct {
	ID       uuid.UUID
	Exercise Exercise
	Position int
}

// Set is one logged set. Nil fields were not recorded; zero means recorded
// as zero. Strength sets use Reps and Weight, cardio sets use Distance and
// DurationSeconds.
type Set struct {
	ID                uuid.UUID
	WorkoutExerciseID uuid.UUID
	Reps              *int
	Weight            *float64
	Distance          *float64
	DurationSeconds   *int
	RestSeconds       *int
}

// ExerciseSummary aggregates the sets of one workout entry.
type ExerciseSummary struct {
	WorkoutExerciseID uuid.UUID    `json:"workout_exercise_id"`
	ExerciseID        uuid.UUID    `json:"exercise_id"`
	Name              string       `json:"name"`
	Type              ExerciseType `json:"type"`
	Position          int          `json:"position"`
	LoggedSets        int          `json:"logged_sets"`
	IncompleteSets    int          `json:"incomplete_sets"`

	Volume    float64  `json:"volume"`
	TotalReps int      `json:"total_reps"`
	MaxWeight *float64 `json:"max_weight,omitempty"`

	Distance        float64 `json:"distance"`
	DurationSeconds int     `json:"duration_seconds"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// CompletedSets is the number of sets that counted towards the totals.
func (s ExerciseSummary) CompletedSets() int {
	return s.LoggedSets - s.IncompleteSets
}

// WorkoutSummary aggregates a whole workout.
type WorkoutSummary struct {
	WorkoutID            uuid.UUID         `json:"workout_id"`
	Name                 string            `json:"name"`
	Date                 time.Time         `json:"date"`
	ElapsedMinutes       *float64          `json:"elapsed_minutes,omitempty"`
	Exercises            []ExerciseSummary `json:"exercises"`
	ExerciseCount        int               `json:"exercise_count"`
	TotalSets            int               `json:"total_sets"`
	IncompleteSets       int               `json:"incomplete_sets"`
	TotalVolume          float64           `json:"total_volume"`
	TotalDistance        float64           `json:"total_distance"`
	TotalDurationSeconds int               `json:"total_duration_seconds"`
	TotalDurationMinutes float64           `json:"total_duration_minutes"`
}

// SummarizeWorkout computes per-exercise and workout totals.
//
// Strength volume is reps × weight, with a missing weight counting as zero.
// Cardio totals sum distance and duration. A set lacking what its exercise
// type needs, or carrying a negative value, is counted as incomplete and
// left out of the totals. Sets that belong to none of the given entries are
// ignored.
func SummarizeWorkout(workout Workout, entries []WorkoutExercise, sets []Set) WorkoutSummary {
	ordered := make([]WorkoutExercise, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	byEntry := make(map[uuid.UUID][]Set, len(ordered))
	for _, s := range sets {
		byEntry[s.WorkoutExerciseID] = append(byEntry[s.WorkoutExerciseID], s)
	}

	summary := WorkoutSummary{
		WorkoutID: workout.ID,
		Name:      workout.Name,
		Date:      workout.Date,
		Exercises: make([]ExerciseSummary, 0, len(ordered)),
	}
	if workout.StartedAt != nil && workout.EndedAt != nil && !workout.EndedAt.Before(*workout.StartedAt) {
		minutes := workout.EndedAt.Sub(*workout.StartedAt).Minutes()
		summary.ElapsedMinutes = &minutes
	}

	for _, entry := range ordered {
		es := summarizeEntry(entry, byEntry[entry.ID])
		summary.Exercises = append(summary.Exercises, es)
		summary.TotalSets += es.LoggedSets
		summary.IncompleteSets += es.IncompleteSets
		summary.TotalVolume += es.Volume
		summary.TotalDistance += es.Distance
		summary.TotalDurationSeconds += es.DurationSeconds
	}
	summary.ExerciseCount = len(summary.Exercises)
	summary.TotalDurationMinutes = float64(summary.TotalDurationSeconds) / 60

	return summary
}

func summarizeEntry(entry WorkoutExercise, sets []Set) ExerciseSummary {
	typ := entry.Exercise.Type
	if !typ.Valid() {
		typ = Unknown
	}
	es := ExerciseSummary{
		WorkoutExerciseID: entry.ID,
		ExerciseID:        entry.Exercise.ID,
		Name:              entry.Exercise.Name,
		Type:              typ,
		Position:          entry.Position,
		LoggedSets:        len(sets),
	}

	for _, s := range sets {
		switch {
		case typ == Strength && strengthComplete(s):
			weight := 0.0
			if s.Weight != nil {
				weight = *s.Weight
				if es.MaxWeight == nil || weight > *es.MaxWeight {
					w := weight
					es.MaxWeight = &w
				}
			}
			es.Volume += float64(*s.Reps) * weight
			es.TotalReps += *s.Reps
		case typ == Cardio && cardioComplete(s):
			if s.Distance != nil {
				es.Distance += *s.Distance
			}
			if s.DurationSeconds != nil {
				es.DurationSeconds += *s.DurationSeconds
			}
		default:
			es.IncompleteSets++
		}
	}
	es.DurationMinutes = float64(es.DurationSeconds) / 60

	return es
}

func strengthComplete(s Set) bool {
	if s.Reps == nil || *s.Reps < 1 {
		return false
	}
	return s.Weight == nil || measured(*s.Weight)
}

// measured is false for negative, NaN and infinite values.
func measured(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func cardioComplete(s Set) bool {
	if s.Distance == nil && s.DurationSeconds == nil {
		return false
	}
	if s.Distance != nil && !measured(*s.Distance) {
		return false
	}
	return s.DurationSeconds == nil || *s.DurationSeconds >= 0
}

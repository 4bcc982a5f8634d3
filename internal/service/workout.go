package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/logger"
	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/store"
	"github.com/nutrack/nutrack/backend/internal/training"
)

type WorkoutService struct {
	store *store.GormStore
}

func NewWorkoutService(s *store.GormStore) *WorkoutService {
	return &WorkoutService{store: s}
}

// CreateWorkoutInput is a new workout. Date defaults to now.
type CreateWorkoutInput struct {
	Name      string     `json:"name"`
	Notes     string     `json:"notes"`
	Date      *time.Time `json:"date"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// AddExerciseInput places an exercise in a workout. A zero position appends.
type AddExerciseInput struct {
	ExerciseID uuid.UUID `json:"exercise_id" binding:"required"`
	Position   int       `json:"position"`
}

// LogSetInput records one set. Strength sets carry reps and weight, cardio
// sets carry distance and duration.
type LogSetInput struct {
	Reps            *int     `json:"reps"`
	Weight          *float64 `json:"weight"`
	Distance        *float64 `json:"distance"`
	DurationSeconds *int     `json:"duration_seconds"`
	RestSeconds     *int     `json:"rest_seconds"`
}

func (s *WorkoutService) Create(ctx context.Context, userID uuid.UUID, in CreateWorkoutInput) (*model.Workout, error) {
	if in.StartedAt != nil && in.EndedAt != nil && in.EndedAt.Before(*in.StartedAt) {
		return nil, apperror.Validation("ended_at cannot be before started_at")
	}
	date := time.Now().UTC()
	if in.Date != nil {
		date = *in.Date
	}

	w := &model.Workout{
		Name:      strings.TrimSpace(in.Name),
		Notes:     in.Notes,
		Date:      date,
		StartedAt: in.StartedAt,
		EndedAt:   in.EndedAt,
		UserID:    userID,
	}
	if err := s.store.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WorkoutService) List(ctx context.Context, userID uuid.UUID) ([]model.Workout, error) {
	return s.store.Workouts(ctx, userID)
}

func (s *WorkoutService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Workout, error) {
	w, err := s.store.Workout(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// AddExercise appends an exercise to a workout.
func (s *WorkoutService) AddExercise(ctx context.Context, userID, workoutID uuid.UUID, in AddExerciseInput) (*model.WorkoutExercise, error) {
	if _, err := s.store.Workout(ctx, userID, workoutID); err != nil {
		return nil, err
	}
	ex, err := s.store.Exercise(ctx, userID, in.ExerciseID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.Reference("exercise", in.ExerciseID.String())
		}
		return nil, err
	}
	if in.Position < 0 {
		return nil, apperror.Validation("position cannot be negative")
	}

	position := in.Position
	if position == 0 {
		if position, err = s.store.NextPosition(ctx, workoutID); err != nil {
			return nil, err
		}
	}

	we := &model.WorkoutExercise{
		WorkoutID:  workoutID,
		ExerciseID: ex.ID,
		Position:   position,
		UserID:     userID,
	}
	if err := s.store.Create(ctx, we); err != nil {
		return nil, err
	}
	we.Exercise = &ex
	return we, nil
}

// LogSet records a set against a workout entry. Fields belonging to the
// other exercise type are rejected.
func (s *WorkoutService) LogSet(ctx context.Context, userID, workoutID, entryID uuid.UUID, in LogSetInput) (*model.WorkoutSet, error) {
	entry, err := s.store.WorkoutExercise(ctx, userID, workoutID, entryID)
	if err != nil {
		return nil, err
	}
	if err := checkSet(entry, in); err != nil {
		return nil, err
	}

	set := &model.WorkoutSet{
		WorkoutExerciseID: entry.ID,
		Reps:              in.Reps,
		Weight:            in.Weight,
		Distance:          in.Distance,
		DurationSeconds:   in.DurationSeconds,
		RestSeconds:       in.RestSeconds,
		UserID:            userID,
	}
	if err := s.store.Create(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// Summary computes volume and cardio totals for a workout.
func (s *WorkoutService) Summary(ctx context.Context, userID, id uuid.UUID) (*training.WorkoutSummary, error) {
	w, err := s.store.Workout(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	entries := make([]training.WorkoutExercise, 0, len(w.Exercises))
	var sets []training.Set
	for _, we := range w.Exercises {
		entries = append(entries, we.ToTraining())
		for _, set := range we.Sets {
			sets = append(sets, set.ToTraining())
		}
	}

	summary := training.SummarizeWorkout(w.ToTraining(), entries, sets)
	if summary.IncompleteSets > 0 {
		logger.Debug("Workout has incomplete sets", "workout_id", id, "incomplete_sets", summary.IncompleteSets)
	}
	return &summary, nil
}

func checkSet(entry model.WorkoutExercise, in LogSetInput) error {
	if negInt(in.Reps) || negFloat(in.Weight) || negFloat(in.Distance) || negInt(in.DurationSeconds) || negInt(in.RestSeconds) {
		return apperror.Validation("set values cannot be negative")
	}

	typ := training.Unknown
	if entry.Exercise != nil {
		typ = training.ExerciseType(entry.Exercise.Type)
	}
	switch typ {
	case training.Strength:
		if in.Distance != nil || in.DurationSeconds != nil {
			return apperror.Validation("strength sets take reps and weight")
		}
	case training.Cardio:
		if in.Reps != nil || in.Weight != nil {
			return apperror.Validation("cardio sets take distance and duration")
		}
	}
	return nil
}

func negInt(v *int) bool {
	return v != nil && *v < 0
}

func negFloat(v *float64) bool {
	return v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0))
}

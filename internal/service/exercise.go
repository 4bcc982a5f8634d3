package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/store"
	"github.com/nutrack/nutrack/backend/internal/training"
)

type ExerciseService struct {
	store *store.GormStore
}

func NewExerciseService(s *store.GormStore) *ExerciseService {
	return &ExerciseService{store: s}
}

// CreateExerciseInput is a new exercise definition.
type CreateExerciseInput struct {
	Name         string                `json:"name" binding:"required"`
	Type         training.ExerciseType `json:"type" binding:"required"`
	MuscleGroups []string              `json:"muscle_groups"`
	Equipment    string                `json:"equipment"`
	Instructions string                `json:"instructions"`
}

// Create stores an exercise. Muscle groups must come from
// training.MuscleGroups and are stored lower-cased without duplicates.
func (s *ExerciseService) Create(ctx context.Context, userID uuid.UUID, in CreateExerciseInput) (*model.Exercise, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("exercise name is required")
	}
	typ := training.ExerciseType(strings.ToLower(string(in.Type)))
	if !typ.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("exercise type must be %q or %q", training.Strength, training.Cardio))
	}
	groups, err := normalizeMuscleGroups(in.MuscleGroups)
	if err != nil {
		return nil, err
	}

	ex := &model.Exercise{
		Name:         name,
		Type:         string(typ),
		MuscleGroups: groups,
		Equipment:    strings.TrimSpace(in.Equipment),
		Instructions: in.Instructions,
		UserID:       userID,
	}
	if err := s.store.Create(ctx, ex); err != nil {
		return nil, err
	}
	return ex, nil
}

func (s *ExerciseService) List(ctx context.Context, userID uuid.UUID) ([]model.Exercise, error) {
	return s.store.Exercises(ctx, userID)
}

func normalizeMuscleGroups(in []string) (model.StringList, error) {
	known := make(map[string]bool, len(training.MuscleGroups))
	for _, g := range training.MuscleGroups {
		known[g] = true
	}

	out := make(model.StringList, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, g := range in {
		g = strings.ToLower(strings.TrimSpace(g))
		if !known[g] {
			return nil, apperror.Validation(fmt.Sprintf("unknown muscle group %q", g))
		}
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out, nil
}

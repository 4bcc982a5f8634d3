package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/logger"
	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
	"github.com/nutrack/nutrack/backend/internal/store"
)

type MealService struct {
	store  *store.GormStore
	drafts DraftStore
	now    func() time.Time
}

func NewMealService(s *store.GormStore, drafts DraftStore) *MealService {
	return &MealService{store: s, drafts: drafts, now: time.Now}
}

// CreateMealInput is a complete meal saved in one request.
type CreateMealInput struct {
	MealType   nutrition.MealType `json:"meal_type" binding:"required"`
	Components []ComponentInput   `json:"components"`
}

// ContributionView is one component's share of a meal.
type ContributionView struct {
	Kind   nutrition.ComponentKind `json:"kind"`
	ID     uuid.UUID               `json:"id"`
	Name   string                  `json:"name"`
	Amount float64                 `json:"amount"`
	Totals nutrition.Vector        `json:"totals"`
}

// MealNutrition is a saved meal with its resolved totals.
type MealNutrition struct {
	Meal          *model.Meal        `json:"meal"`
	Totals        nutrition.Vector   `json:"totals"`
	Contributions []ContributionView `json:"contributions"`
}

// DraftView is a draft with its running totals.
type DraftView struct {
	Draft         *MealDraft         `json:"draft"`
	Totals        nutrition.Vector   `json:"totals"`
	Contributions []ContributionView `json:"contributions"`
}

// MealTotals is one meal's line in a daily summary. Error is set instead of
// Totals when the meal could not be resolved.
type MealTotals struct {
	MealID    uuid.UUID          `json:"meal_id"`
	MealType  nutrition.MealType `json:"meal_type"`
	CreatedAt time.Time          `json:"created_at"`
	Totals    *nutrition.Vector  `json:"totals,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// DailyNutrition sums every resolvable meal logged on one day.
type DailyNutrition struct {
	Date        string                                  `json:"date"`
	Meals       []MealTotals                            `json:"meals"`
	ByType      map[nutrition.MealType]nutrition.Vector `json:"by_type"`
	Totals      nutrition.Vector                        `json:"totals"`
	FailedMeals int                                     `json:"failed_meals"`
}

// Create validates and saves a meal. Every component must resolve.
func (s *MealService) Create(ctx context.Context, userID uuid.UUID, in CreateMealInput) (*model.Meal, error) {
	if !in.MealType.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("invalid meal type %q", in.MealType))
	}
	if _, _, err := s.resolve(ctx, userID, in.Components); err != nil {
		return nil, err
	}

	var meal *model.Meal
	err := s.store.Transaction(ctx, func(tx *store.GormStore) error {
		var err error
		meal, err = saveMeal(ctx, tx, userID, in.MealType, in.Components)
		return err
	})
	if err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *MealService) List(ctx context.Context, userID uuid.UUID) ([]model.Meal, error) {
	return s.store.Meals(ctx, userID, nil, nil)
}

// Nutrition loads a meal and resolves its components.
func (s *MealService) Nutrition(ctx context.Context, userID, id uuid.UUID) (*MealNutrition, error) {
	m, err := s.store.Meal(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	components := m.Components()

	cat, err := store.NewRecipeSource(s.store, userID).Load(ctx, components)
	if err != nil {
		return nil, err
	}
	total, lines, err := nutrition.ResolveMealDetailed(components, cat)
	if err != nil {
		return nil, err
	}
	return &MealNutrition{Meal: &m, Totals: total, Contributions: contributionViews(lines)}, nil
}

// Daily resolves every meal logged on the UTC day of date. A meal that
// fails to resolve is reported on its own line and left out of the totals.
func (s *MealService) Daily(ctx context.Context, userID uuid.UUID, date time.Time) (*DailyNutrition, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	records, err := s.store.Meals(ctx, userID, &start, &end)
	if err != nil {
		return nil, err
	}
	meals := make([]nutrition.Meal, len(records))
	for i, r := range records {
		meals[i] = r.ToNutrition()
	}

	cat, err := store.NewRecipeSource(s.store, userID).LoadMeals(ctx, meals)
	if err != nil {
		return nil, err
	}

	results := nutrition.ResolveMeals(meals, cat)
	out := &DailyNutrition{
		Date:   start.Format("2006-01-02"),
		Meals:  make([]MealTotals, 0, len(results)),
		ByType: make(map[nutrition.MealType]nutrition.Vector),
	}
	for _, r := range results {
		line := MealTotals{MealID: r.Meal.ID, MealType: r.Meal.Type, CreatedAt: r.Meal.CreatedAt}
		if r.Err != nil {
			line.Error = r.Err.Error()
			logger.Warn("Skipping meal in daily totals", append([]any{"meal_id", r.Meal.ID}, errFields(r.Err)...)...)
		} else {
			totals := r.Totals
			line.Totals = &totals
			out.ByType[r.Meal.Type] = out.ByType[r.Meal.Type].Add(totals)
		}
		out.Meals = append(out.Meals, line)
	}
	out.Totals, out.FailedMeals = nutrition.SumResults(results)
	return out, nil
}

// StartDraft opens an empty draft of the given type.
func (s *MealService) StartDraft(ctx context.Context, userID uuid.UUID, mealType nutrition.MealType) (*DraftView, error) {
	if !mealType.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("invalid meal type %q", mealType))
	}
	now := s.now()
	draft := &MealDraft{
		ID:        uuid.New(),
		UserID:    userID,
		MealType:  mealType,
		Items:     []ComponentInput{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return &DraftView{Draft: draft, Contributions: []ContributionView{}}, nil
}

// GetDraft returns a draft with its running totals.
func (s *MealService) GetDraft(ctx context.Context, userID, id uuid.UUID) (*DraftView, error) {
	draft, err := s.drafts.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, draft)
}

// AddDraftItem appends a component. The component must resolve on its own
// before it is accepted.
func (s *MealService) AddDraftItem(ctx context.Context, userID, id uuid.UUID, item ComponentInput) (*DraftView, error) {
	draft, err := s.drafts.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.resolve(ctx, userID, []ComponentInput{item}); err != nil {
		return nil, err
	}

	draft.Items = append(draft.Items, item)
	draft.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return s.view(ctx, draft)
}

// DiscardDraft drops a draft without saving it.
func (s *MealService) DiscardDraft(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.drafts.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, userID, id)
}

// FinalizeDraft saves the draft as a meal in one transaction and removes
// the draft. An empty draft cannot be finalized.
func (s *MealService) FinalizeDraft(ctx context.Context, userID, id uuid.UUID) (*model.Meal, error) {
	draft, err := s.drafts.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if len(draft.Items) == 0 {
		return nil, apperror.Validation("cannot save an empty meal")
	}
	if _, _, err := s.resolve(ctx, userID, draft.Items); err != nil {
		return nil, err
	}

	var meal *model.Meal
	err = s.store.Transaction(ctx, func(tx *store.GormStore) error {
		var err error
		meal, err = saveMeal(ctx, tx, userID, draft.MealType, draft.Items)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, userID, id); err != nil {
		// The meal is saved; a leftover draft expires on its own.
		logger.Warn("Failed to delete finalized draft", append([]any{"draft_id", id}, errFields(err)...)...)
	}
	logger.Info("Meal saved from draft", "meal_id", meal.ID, "draft_id", id, "components", len(draft.Items))
	return meal, nil
}

func (s *MealService) view(ctx context.Context, draft *MealDraft) (*DraftView, error) {
	total, lines, err := s.resolve(ctx, draft.UserID, draft.Items)
	if err != nil {
		return nil, err
	}
	return &DraftView{Draft: draft, Totals: total, Contributions: contributionViews(lines)}, nil
}

func (s *MealService) resolve(ctx context.Context, userID uuid.UUID, items []ComponentInput) (nutrition.Vector, []nutrition.Contribution, error) {
	components := make([]nutrition.Component, 0, len(items))
	for i, it := range items {
		if math.IsNaN(it.Amount) || math.IsInf(it.Amount, 0) || it.Amount < 0 {
			return nutrition.Vector{}, nil, withIndex(apperror.Validation("component amount must not be negative"), "component", i)
		}
		c, err := it.Component()
		if err != nil {
			return nutrition.Vector{}, nil, withIndex(err, "component", i)
		}
		components = append(components, c)
	}

	cat, err := store.NewRecipeSource(s.store, userID).Load(ctx, components)
	if err != nil {
		return nutrition.Vector{}, nil, err
	}
	return nutrition.ResolveMealDetailed(components, cat)
}

func saveMeal(ctx context.Context, tx *store.GormStore, userID uuid.UUID, mealType nutrition.MealType, items []ComponentInput) (*model.Meal, error) {
	meal := &model.Meal{MealType: string(mealType), UserID: userID}
	if err := tx.Create(ctx, meal); err != nil {
		return nil, err
	}
	for _, it := range items {
		var record interface{}
		switch it.Kind {
		case nutrition.KindFood:
			mf := model.MealFood{MealID: meal.ID, FoodID: it.ID, Amount: it.Amount, UserID: userID}
			meal.Foods = append(meal.Foods, mf)
			record = &meal.Foods[len(meal.Foods)-1]
		case nutrition.KindRecipe:
			mr := model.MealRecipe{MealID: meal.ID, RecipeID: it.ID, Amount: it.Amount, UserID: userID}
			meal.Recipes = append(meal.Recipes, mr)
			record = &meal.Recipes[len(meal.Recipes)-1]
		default:
			return nil, apperror.Validation(fmt.Sprintf("unknown component kind %q", it.Kind))
		}
		if err := tx.Create(ctx, record); err != nil {
			return nil, err
		}
	}
	return meal, nil
}

func contributionViews(lines []nutrition.Contribution) []ContributionView {
	out := make([]ContributionView, 0, len(lines))
	for _, l := range lines {
		out = append(out, ContributionView{Kind: l.Kind, ID: l.Ref, Name: l.Name, Amount: l.Amount, Totals: l.Totals})
	}
	return out
}

func errFields(err error) []any {
	if appErr, ok := err.(*apperror.Error); ok {
		return appErr.LogFields()
	}
	return []any{"error", err.Error()}
}

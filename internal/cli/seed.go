package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/nutrack/nutrack/backend/internal/service"
	"github.com/nutrack/nutrack/backend/internal/store"
)

// SeedFile is the TOML layout read by the seed command.
//
//	[[foods]]
//	name = "Rice"
//	protein = 2.7
//	carbohydrates = 28
//
//	[[recipes]]
//	name = "Rice bowl"
//	[[recipes.ingredients]]
//	food = "Rice"
//	amount = 150
type SeedFile struct {
	Foods   []SeedFood   `toml:"foods"`
	Recipes []SeedRecipe `toml:"recipes"`
}

// SeedFood holds nutrients per 100g.
type SeedFood struct {
	Name          string  `toml:"name"`
	Protein       float64 `toml:"protein"`
	Carbohydrates float64 `toml:"carbohydrates"`
	Sugars        float64 `toml:"sugars"`
	Fat           float64 `toml:"fat"`
	Saturates     float64 `toml:"saturates"`
	Fiber         float64 `toml:"fiber"`
}

type SeedRecipe struct {
	Name        string           `toml:"name"`
	Directions  string           `toml:"directions"`
	Ingredients []SeedIngredient `toml:"ingredients"`
}

// SeedIngredient names its food; the name is matched case-insensitively
// against the file's foods and the user's existing ones.
type SeedIngredient struct {
	Food   string  `toml:"food"`
	Amount float64 `toml:"amount"`
}

// SeedResult counts what a seed run created and skipped.
type SeedResult struct {
	FoodsCreated   int
	FoodsSkipped   int
	RecipesCreated int
	RecipesSkipped int
}

// ParseSeed decodes and checks a seed file. Unknown keys are rejected.
func ParseSeed(data []byte) (*SeedFile, error) {
	var file SeedFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	for i, f := range file.Foods {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("foods[%d]: name is required", i)
		}
	}
	for i, r := range file.Recipes {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("recipes[%d]: name is required", i)
		}
		for j, ing := range r.Ingredients {
			if strings.TrimSpace(ing.Food) == "" {
				return nil, fmt.Errorf("recipes[%d].ingredients[%d]: food is required", i, j)
			}
		}
	}
	return &file, nil
}

// Seed creates the file's foods, then its recipes, for userID. Foods and
// recipes whose name the user already has are left alone, so running the
// same file twice creates nothing the second time.
func Seed(ctx context.Context, svc *service.Services, userID uuid.UUID, file *SeedFile) (*SeedResult, error) {
	res := &SeedResult{}

	existing, err := svc.Foods.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	foods := make(map[string]uuid.UUID, len(existing))
	for _, f := range existing {
		foods[nameKey(f.Name)] = f.ID
	}

	for _, f := range file.Foods {
		if _, ok := foods[nameKey(f.Name)]; ok {
			res.FoodsSkipped++
			continue
		}
		food, err := svc.Foods.Create(ctx, userID, service.CreateFoodInput{
			Name:          f.Name,
			Protein:       f.Protein,
			Carbohydrates: f.Carbohydrates,
			Sugars:        f.Sugars,
			Fat:           f.Fat,
			Saturates:     f.Saturates,
			Fiber:         f.Fiber,
		})
		if err != nil {
			return res, fmt.Errorf("food %q: %w", f.Name, err)
		}
		foods[nameKey(food.Name)] = food.ID
		res.FoodsCreated++
	}

	recipes, err := svc.Recipes.List(ctx, userID)
	if err != nil {
		return res, err
	}
	have := make(map[string]bool, len(recipes))
	for _, r := range recipes {
		have[nameKey(r.Name)] = true
	}

	for _, r := range file.Recipes {
		if have[nameKey(r.Name)] {
			res.RecipesSkipped++
			continue
		}
		in := service.CreateRecipeInput{Name: r.Name, Directions: r.Directions}
		for _, ing := range r.Ingredients {
			id, ok := foods[nameKey(ing.Food)]
			if !ok {
				return res, fmt.Errorf("recipe %q: unknown food %q", r.Name, ing.Food)
			}
			in.Ingredients = append(in.Ingredients, service.IngredientInput{FoodID: id, Amount: ing.Amount})
		}
		if _, err := svc.Recipes.Create(ctx, userID, in); err != nil {
			return res, fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		have[nameKey(r.Name)] = true
		res.RecipesCreated++
	}
	return res, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var seedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Load foods and recipes from a TOML file for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := userFlag(false)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading seed file: %w", err)
		}
		file, err := ParseSeed(data)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		svc := service.New(store.New(db), service.Options{JWTSecret: cfg.JWTSecret, DraftTTL: cfg.DraftTTL})
		res, err := Seed(cmd.Context(), svc, userID, file)
		if res != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "foods: %d created, %d skipped; recipes: %d created, %d skipped\n",
				res.FoodsCreated, res.FoodsSkipped, res.RecipesCreated, res.RecipesSkipped)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

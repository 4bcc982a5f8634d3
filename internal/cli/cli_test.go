package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/service"
	"github.com/nutrack/nutrack/backend/internal/store"
	"github.com/nutrack/nutrack/backend/internal/testdb"
)

const pantry = `
[[foods]]
name = "Rice"
protein = 2.7
carbohydrates = 28
fat = 0.3
fiber = 0.4

[[foods]]
name = "Butter"
fat = 81
saturates = 51

[[recipes]]
name = "Buttered rice"
directions = "Stir the butter through the rice."

[[recipes.ingredients]]
food = "rice"
amount = 200

[[recipes.ingredients]]
food = "Butter"
amount = 10
`

func TestParseSeed(t *testing.T) {
	file, err := ParseSeed([]byte(pantry))
	require.NoError(t, err)
	require.Len(t, file.Foods, 2)
	require.Len(t, file.Recipes, 1)
	assert.Equal(t, 28.0, file.Foods[0].Carbohydrates)
	assert.Equal(t, []SeedIngredient{{Food: "rice", Amount: 200}, {Food: "Butter", Amount: 10}}, file.Recipes[0].Ingredients)
}

func TestParseSeedRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", "[[foods]\nname = ", "parsing seed file"},
		{"unknown key", "[[foods]]\nname = \"Rice\"\ncalories = 130\n", "parsing seed file"},
		{"food without name", "[[foods]]\nprotein = 1\n", "foods[0]: name is required"},
		{"recipe without name", "[[recipes]]\ndirections = \"x\"\n", "recipes[0]: name is required"},
		{"ingredient without food", "[[recipes]]\nname = \"R\"\n[[recipes.ingredients]]\namount = 5\n", "recipes[0].ingredients[0]: food is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func seedServices(t *testing.T) *service.Services {
	t.Helper()
	return service.New(store.New(testdb.SQLite(t)), service.Options{JWTSecret: "test", DraftTTL: time.Hour})
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := seedServices(t)
	user := uuid.New()

	file, err := ParseSeed([]byte(pantry))
	require.NoError(t, err)

	res, err := Seed(ctx, svc, user, file)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{FoodsCreated: 2, RecipesCreated: 1}, *res)

	recipes, err := svc.Recipes.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	n, err := svc.Recipes.Nutrition(ctx, user, recipes[0].ID)
	require.NoError(t, err)
	assert.InDelta(t, 210.0, n.TotalMass, 1e-9)
	assert.InDelta(t, 2.7*2, n.Total.Protein, 1e-9)
	assert.InDelta(t, 0.3*2+8.1, n.Total.Fat, 1e-9)

	// A second run finds everything already present.
	res, err = Seed(ctx, svc, user, file)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{FoodsSkipped: 2, RecipesSkipped: 1}, *res)

	// Another user gets their own copies.
	res, err = Seed(ctx, svc, uuid.New(), file)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FoodsCreated)
}

func TestSeedUnknownFood(t *testing.T) {
	svc := seedServices(t)
	file := &SeedFile{Recipes: []SeedRecipe{{
		Name:        "Mystery",
		Ingredients: []SeedIngredient{{Food: "Unobtainium", Amount: 10}},
	}}}

	res, err := Seed(context.Background(), svc, uuid.New(), file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown food "Unobtainium"`)
	assert.Zero(t, res.RecipesCreated)
}

func TestSeedInvalidFood(t *testing.T) {
	svc := seedServices(t)
	file := &SeedFile{Foods: []SeedFood{{Name: "Odd", Carbohydrates: 1, Sugars: 5}}}

	_, err := Seed(context.Background(), svc, uuid.New(), file)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestExportDefaults(t *testing.T) {
	t.Setenv("SQLITE_PATH", "kept.db")
	t.Setenv("DB_DRIVER", "")
	os.Unsetenv("DB_DRIVER")

	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
db_driver = "sqlite"
sqlite_path = "from-file.db"
user = "ignored"

[nested]
key = "skipped"
`)))

	exportDefaults(v)
	assert.Equal(t, "sqlite", os.Getenv("DB_DRIVER"))
	assert.Equal(t, "kept.db", os.Getenv("SQLITE_PATH"))
	_, set := os.LookupEnv("NESTED.KEY")
	assert.False(t, set)
}

// resetViper drops values set directly so later commands see their flags.
func resetViper(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		viper.Reset()
		_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	})
}

func TestUserFlag(t *testing.T) {
	resetViper(t)

	viper.Set("user", "")
	_, err := userFlag(false)
	assert.EqualError(t, err, "--user is required")

	id, err := userFlag(true)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	viper.Set("user", "not-a-uuid")
	_, err = userFlag(false)
	assert.Error(t, err)

	want := uuid.New()
	viper.Set("user", want.String())
	id, err = userFlag(false)
	require.NoError(t, err)
	assert.Equal(t, want, id)
}

// devEnv points configuration at development defaults with a known secret.
func devEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "ENV", "DB_DRIVER", "S3_BUCKET_NAME", "REDIS_URL", "REDIS_HOST", "DRAFT_TTL", "RATE_LIMIT_PER_HOUR", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("LOG_LEVEL", "error")
}

func TestTokenCommand(t *testing.T) {
	devEnv(t)
	resetViper(t)
	user := uuid.New()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"token", "--user", user.String(), "--ttl", "1h"})
	require.NoError(t, rootCmd.Execute())

	claims, err := service.NewAuthService("cli-secret").ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, user, claims.UserID)
	assert.Contains(t, errOut.String(), user.String())
}

func TestValidateConfigCommand(t *testing.T) {
	devEnv(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"validate-config"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "✓ environment development")
	assert.Contains(t, out.String(), "✓ database sqlite")
	assert.Contains(t, out.String(), "- report export disabled")

	t.Setenv("DRAFT_TTL", "-1h")
	out.Reset()
	rootCmd.SetArgs([]string{"validate-config"})
	require.Error(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "✗ DRAFT_TTL: must be positive")
}

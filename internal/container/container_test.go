package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/bank-import/internal/config"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/models"
	"fjacquet/bank-import/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Import.MaxFileSize = models.MaxImportFileSize
	cfg.Database.Path = filepath.Join(t.TempDir(), "bank.db")
	cfg.Rules.Directory = t.TempDir()
	cfg.Categorization.TravelMileageBox = 20
	cfg.CSV.Delimiter = ","
	cfg.Owner.ID = "owner-1"
	return cfg
}

func TestNewContainer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("nil config", func(t *testing.T) {
		_, err := NewContainer(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration cannot be nil")
	})

	t.Run("sqlite from config", func(t *testing.T) {
		cfg := testConfig(t)
		c, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()))
		require.NoError(t, err)
		defer c.Close()

		assert.Same(t, cfg, c.GetConfig())
		assert.IsType(t, &store.SQLiteStore{}, c.GetStore())
		assert.NotNil(t, c.GetImporter())
		assert.NotNil(t, c.GetEngine())
		assert.NotNil(t, c.GetRuleStore())
		assert.Len(t, c.GetDetector().AvailableBankNames(), 8)
		assert.FileExists(t, cfg.Database.Path)
	})

	t.Run("injected store", func(t *testing.T) {
		mem := store.NewMemoryStore()
		c, err := NewContainer(context.Background(), testConfig(t), WithStore(mem), WithLogger(logging.NewMockLogger()))
		require.NoError(t, err)
		assert.Same(t, mem, c.GetStore())
		assert.NoError(t, c.Close())
	})

	t.Run("bad rule file", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Rules.Directory, store.ExpenseRulesFile),
			[]byte("categories:\n  - name: NOPE\n    keywords: [X]\n"), 0o600))
		_, err := NewContainer(context.Background(), cfg, WithStore(store.NewMemoryStore()))
		assert.Error(t, err)
	})
}

func TestContainer_WiresConfiguration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testConfig(t)
	cfg.Categorization.TravelMileageBox = 31
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Rules.Directory, store.ExpenseRulesFile),
		[]byte("categories:\n  - name: TRAVEL_MILEAGE\n    keywords: [ESSO]\n"), 0o600))

	c, err := NewContainer(context.Background(), cfg, WithStore(store.NewMemoryStore()), WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	defer c.Close()

	rec := c.GetEngine().RecommendParts(decimal.RequireFromString("-60"), "ESSO GARAGE")
	assert.Equal(t, models.ExpenseTravelMileage, rec.ExpenseCategory)
	assert.Equal(t, 31, rec.SA103Box)
}

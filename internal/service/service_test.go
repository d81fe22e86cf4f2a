package service

import (
	"testing"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/database"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns an isolated in-memory SQLite database with the full
// schema migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func createPie(t *testing.T, svc *PieService, userID uint, name, allocation string) *models.Pie {
	t.Helper()
	pie, err := svc.Create(userID, CreatePieInput{
		Name:             name,
		TargetAllocation: dec(t, allocation),
	})
	require.NoError(t, err)
	return pie
}

func createSlice(t *testing.T, svc *SliceService, pieID string, userID uint, symbol, weight string) *models.Slice {
	t.Helper()
	sl, err := svc.Create(pieID, userID, CreateSliceInput{
		Symbol:       symbol,
		TargetWeight: dec(t, weight),
	})
	require.NoError(t, err)
	return sl
}

func createPortfolio(t *testing.T, db *gorm.DB, userID uint, name string) *models.Portfolio {
	t.Helper()
	p := &models.Portfolio{UserID: userID, Name: name}
	require.NoError(t, db.Create(p).Error)
	return p
}

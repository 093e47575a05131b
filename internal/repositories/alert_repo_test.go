package repositories

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

func newAlertTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Alert{}))
	return db
}

func TestRefreshUnresolvedUpdatesLiveAlert(t *testing.T) {
	db := newAlertTestDB(t)
	repo := NewAlertRepository(db)

	alert := &models.Alert{
		GroupID:      "g1",
		AlertType:    "spam",
		AlertMessage: "first",
		RiskLevel:    models.RiskHigh,
		Resolved:     false,
	}
	require.NoError(t, repo.Create(alert))

	rows, err := repo.RefreshUnresolved(alert.ID, "second", models.RiskCritical)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	got, err := repo.GetByID(alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.AlertMessage)
	assert.Equal(t, models.RiskCritical, got.RiskLevel)
	assert.False(t, got.Resolved)
}

func TestRefreshUnresolvedSkipsResolvedAlert(t *testing.T) {
	db := newAlertTestDB(t)
	repo := NewAlertRepository(db)

	alert := &models.Alert{
		GroupID:      "g1",
		AlertType:    "spam",
		AlertMessage: "first",
		RiskLevel:    models.RiskHigh,
		Resolved:     false,
	}
	require.NoError(t, repo.Create(alert))
	require.NoError(t, repo.MarkResolved(alert.ID))

	// 已解决是终态：刷新对已解决的行不生效，也绝不把它改回未解决
	rows, err := repo.RefreshUnresolved(alert.ID, "second", models.RiskCritical)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)

	got, err := repo.GetByID(alert.ID)
	require.NoError(t, err)
	assert.True(t, got.Resolved)
	assert.Equal(t, "first", got.AlertMessage)
	assert.Equal(t, models.RiskHigh, got.RiskLevel)
}

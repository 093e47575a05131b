package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	logger "github.com/Gopher0727/GroupGuard/middleware/log"

	"github.com/Gopher0727/GroupGuard/config"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
	"github.com/Gopher0727/GroupGuard/internal/risk"
)

// newTestDB 打开内存数据库并建表
// 连接数限制为 1，避免内存库在并发事务下互相阻塞
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Group{},
		&models.GroupMember{},
		&models.Activity{},
		&models.Alert{},
		&models.BotSetting{},
	))
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.NewNopLogger()
}

func newTestPolicy() *risk.Policy {
	return risk.NewPolicy(config.RiskConfig{
		BannedKeywords:   []string{"spam", "phishing", "free money"},
		MaxMessageLen:    500,
		MaxLinks:         3,
		CapsRatio:        0.7,
		CapsMinLen:       10,
		FloodCount:       20,
		NewMemberAgeMins: 10,
		ContentMaxLen:    500,
		AlertThreshold:   "high",
	})
}

func newTestAlertService(t *testing.T, db *gorm.DB) *AlertService {
	t.Helper()
	return NewAlertService(
		db,
		repositories.NewAlertRepository(db),
		repositories.NewGroupRepository(db),
		nil,
		EscalationPolicy{SuspiciousAt: models.RiskHigh, DangerousAt: models.RiskCritical},
		newTestLogger(t),
		3,
	)
}

func newTestRecorder(t *testing.T, db *gorm.DB, alertService *AlertService) *RecorderService {
	t.Helper()
	return NewRecorderService(
		db,
		repositories.NewGroupRepository(db),
		repositories.NewMemberRepository(db),
		repositories.NewActivityRepository(db),
		risk.NewClassifier(),
		newTestPolicy(),
		alertService,
		newTestLogger(t),
		3,
	)
}

func strptr(s string) *string {
	return &s
}

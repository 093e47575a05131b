package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
)

func newTestReport(t *testing.T, db *gorm.DB) *ReportService {
	t.Helper()
	return NewReportService(
		db,
		repositories.NewGroupRepository(db),
		repositories.NewAlertRepository(db),
		repositories.NewActivityRepository(db),
		newTestLogger(t),
		3,
	)
}

func TestGroupReportNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReport(t, db)

	_, err := svc.GroupReport(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGroupReportIsReadOnly(t *testing.T) {
	db := newTestDB(t)
	reportSvc := newTestReport(t, db)
	groupRepo := repositories.NewGroupRepository(db)
	lifecycle := NewLifecycleService(db, groupRepo, repositories.NewMemberRepository(db), 3)

	require.NoError(t, lifecycle.EnsureGroup(context.Background(), GroupUpsert{GroupID: "g1"}))
	require.NoError(t, groupRepo.UpdateStatus("g1", models.GroupStatusDangerous))

	before, err := groupRepo.GetByGroupID("g1")
	require.NoError(t, err)

	// 报告展示存量状态，查看报告绝不触发状态重算
	report, err := reportSvc.GroupReport(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusDangerous, report.Status)

	after, err := groupRepo.GetByGroupID("g1")
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusDangerous, after.Status)
	assert.Equal(t, before.LastScan.UTC(), after.LastScan.UTC())
}

func TestLiveScanCountsAndEscalates(t *testing.T) {
	db := newTestDB(t)
	reportSvc := newTestReport(t, db)
	alertSvc := newTestAlertService(t, db)
	recorder := newTestRecorder(t, db, alertSvc)

	for _, content := range []string{"hello", "how are you", "fine"} {
		_, err := recorder.Record(context.Background(), RecordRequest{
			GroupID:      "g1",
			UserID:       strptr("u1"),
			ActivityType: models.ActivityTypeMessage,
			Content:      strptr(content),
		})
		require.NoError(t, err)
	}

	// 三种不同类型的高危告警
	for _, alertType := range []string{"spam", "banned_keyword", "link_flood"} {
		_, err := alertSvc.Trigger(context.Background(), "g1", alertType, "msg", models.RiskHigh)
		require.NoError(t, err)
	}

	report, err := reportSvc.LiveScan(context.Background(), "g1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, report.ActivityCount)
	assert.EqualValues(t, 3, report.AlertCount)
	assert.EqualValues(t, 3, report.HighRiskCount)
	// 高危告警数超过 2，扫描把状态评定为 dangerous
	assert.Equal(t, models.GroupStatusDangerous, report.Status)

	group, err := repositories.NewGroupRepository(db).GetByGroupID("g1")
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusDangerous, group.Status)
}

func TestLiveScanDowngradesStaleStatus(t *testing.T) {
	db := newTestDB(t)
	reportSvc := newTestReport(t, db)
	groupRepo := repositories.NewGroupRepository(db)
	lifecycle := NewLifecycleService(db, groupRepo, repositories.NewMemberRepository(db), 3)

	require.NoError(t, lifecycle.EnsureGroup(context.Background(), GroupUpsert{GroupID: "g1"}))
	require.NoError(t, groupRepo.UpdateStatus("g1", models.GroupStatusDangerous))

	// 窗口内没有任何高危告警，扫描把状态降回 safe
	report, err := reportSvc.LiveScan(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusSafe, report.Status)

	group, err := groupRepo.GetByGroupID("g1")
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusSafe, group.Status)
}

func TestSummary(t *testing.T) {
	db := newTestDB(t)
	reportSvc := newTestReport(t, db)
	alertSvc := newTestAlertService(t, db)
	groupRepo := repositories.NewGroupRepository(db)
	lifecycle := NewLifecycleService(db, groupRepo, repositories.NewMemberRepository(db), 3)

	require.NoError(t, lifecycle.EnsureGroup(context.Background(), GroupUpsert{GroupID: "g1"}))
	require.NoError(t, lifecycle.EnsureGroup(context.Background(), GroupUpsert{GroupID: "g2"}))
	require.NoError(t, lifecycle.DeactivateGroup(context.Background(), "g2"))

	_, err := alertSvc.Trigger(context.Background(), "g1", "spam", "msg", models.RiskHigh)
	require.NoError(t, err)

	summary, err := reportSvc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalGroups)
	assert.Equal(t, 1, summary.ActiveGroups)
	assert.Equal(t, 1, summary.AtRiskGroups)
	assert.EqualValues(t, 1, summary.TotalAlerts)
	assert.Len(t, summary.GroupOverviews, 2)
}

func TestRecalcStatus(t *testing.T) {
	assert.Equal(t, models.GroupStatusSafe, recalcStatus(0))
	assert.Equal(t, models.GroupStatusSuspicious, recalcStatus(1))
	assert.Equal(t, models.GroupStatusSuspicious, recalcStatus(2))
	assert.Equal(t, models.GroupStatusDangerous, recalcStatus(3))
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
)

func TestRecordCreatesGroupAndMember(t *testing.T) {
	db := newTestDB(t)
	recorder := newTestRecorder(t, db, newTestAlertService(t, db))

	activity, err := recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		GroupName:    "test group",
		GroupType:    models.GroupTypeSupergroup,
		MemberCount:  12,
		UserID:       strptr("u1"),
		Username:     "alice",
		ActivityType: models.ActivityTypeMessage,
		Content:      strptr("hello there"),
	})
	require.NoError(t, err)
	require.NotNil(t, activity)
	assert.Equal(t, models.RiskNormal, activity.RiskLevel)

	group, err := repositories.NewGroupRepository(db).GetByGroupID("g1")
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusSafe, group.Status)
	assert.True(t, group.IsActive)
	assert.Equal(t, 12, group.MemberCount)
	assert.False(t, group.LastScan.IsZero())

	member, err := repositories.NewMemberRepository(db).Get("g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", member.Username)
	assert.Equal(t, models.MemberStatusActive, member.Status)
}

func TestRecordValidation(t *testing.T) {
	db := newTestDB(t)
	recorder := newTestRecorder(t, db, newTestAlertService(t, db))

	_, err := recorder.Record(context.Background(), RecordRequest{ActivityType: models.ActivityTypeMessage})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidActivity))

	_, err = recorder.Record(context.Background(), RecordRequest{GroupID: "g1"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidActivity))
}

func TestRecordSystemEventWithoutUser(t *testing.T) {
	db := newTestDB(t)
	recorder := newTestRecorder(t, db, newTestAlertService(t, db))

	activity, err := recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		ActivityType: models.ActivityTypeJoin,
	})
	require.NoError(t, err)
	assert.Nil(t, activity.UserID)

	count, err := repositories.NewMemberRepository(db).CountByGroup("g1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordAppendOnlyReplay(t *testing.T) {
	db := newTestDB(t)
	recorder := newTestRecorder(t, db, newTestAlertService(t, db))

	req := RecordRequest{
		GroupID:      "g1",
		UserID:       strptr("u1"),
		ActivityType: models.ActivityTypeMessage,
		Content:      strptr("hello"),
	}
	_, err := recorder.Record(context.Background(), req)
	require.NoError(t, err)
	_, err = recorder.Record(context.Background(), req)
	require.NoError(t, err)

	// 重放产生两条独立的审计流水
	_, total, err := recorder.ListActivities(context.Background(), "g1", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestRecordTruncatesStoredContent(t *testing.T) {
	db := newTestDB(t)
	recorder := newTestRecorder(t, db, newTestAlertService(t, db))

	long := strings.Repeat("a", 600)
	activity, err := recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		UserID:       strptr("u1"),
		ActivityType: models.ActivityTypeMessage,
		Content:      &long,
	})
	require.NoError(t, err)

	// 超长消息分类看原文，落库截断
	require.NotNil(t, activity.Content)
	assert.Len(t, *activity.Content, 500)
	assert.Equal(t, models.RiskSuspicious, activity.RiskLevel)
}

func TestRecordBannedKeywordCreatesAlert(t *testing.T) {
	db := newTestDB(t)
	alertService := newTestAlertService(t, db)
	recorder := newTestRecorder(t, db, alertService)

	activity, err := recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		UserID:       strptr("u1"),
		ActivityType: models.ActivityTypeMessage,
		Content:      strptr("get free money now"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, activity.RiskLevel)

	alerts, err := alertService.ListUnresolved(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "banned_keyword", alerts[0].AlertType)
	assert.Equal(t, models.RiskHigh, alerts[0].RiskLevel)
}

func TestRecordSuspiciousBelowThresholdNoAlert(t *testing.T) {
	db := newTestDB(t)
	alertService := newTestAlertService(t, db)
	recorder := newTestRecorder(t, db, alertService)

	long := strings.Repeat("a", 600)
	activity, err := recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		UserID:       strptr("u1"),
		ActivityType: models.ActivityTypeMessage,
		Content:      &long,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskSuspicious, activity.RiskLevel)

	// suspicious 低于告警阈值，只有流水没有告警
	alerts, err := alertService.ListUnresolved(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestRecordUpdatesLastSeen(t *testing.T) {
	db := newTestDB(t)
	recorder := newTestRecorder(t, db, newTestAlertService(t, db))

	early := time.Now().UTC().Add(-time.Hour)
	_, err := recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		UserID:       strptr("u1"),
		ActivityType: models.ActivityTypeMessage,
		Timestamp:    &early,
	})
	require.NoError(t, err)

	later := time.Now().UTC()
	_, err = recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		UserID:       strptr("u1"),
		ActivityType: models.ActivityTypeMessage,
		Timestamp:    &later,
	})
	require.NoError(t, err)

	member, err := repositories.NewMemberRepository(db).Get("g1", "u1")
	require.NoError(t, err)
	assert.WithinDuration(t, later, member.LastSeen, time.Second)
}

func TestRecordDoesNotResetGroupStatus(t *testing.T) {
	db := newTestDB(t)
	alertService := newTestAlertService(t, db)
	recorder := newTestRecorder(t, db, alertService)

	_, err := recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		UserID:       strptr("u1"),
		ActivityType: models.ActivityTypeMessage,
		Content:      strptr("phishing link inside"),
	})
	require.NoError(t, err)

	groupRepo := repositories.NewGroupRepository(db)
	group, err := groupRepo.GetByGroupID("g1")
	require.NoError(t, err)
	require.Equal(t, models.GroupStatusSuspicious, group.Status)

	// 后续正常活动不把状态拉回 safe
	_, err = recorder.Record(context.Background(), RecordRequest{
		GroupID:      "g1",
		UserID:       strptr("u1"),
		ActivityType: models.ActivityTypeMessage,
		Content:      strptr("good morning"),
	})
	require.NoError(t, err)

	group, err = groupRepo.GetByGroupID("g1")
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusSuspicious, group.Status)
}

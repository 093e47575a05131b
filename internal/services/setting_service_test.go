package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
)

func TestRegisterOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingService(repositories.NewSettingRepository(db), 3)

	setting, err := svc.RegisterOwner(context.Background(), "o1", "boss")
	require.NoError(t, err)
	assert.True(t, setting.AlertEnabled)

	// 重复注册不覆盖现有开关
	require.NoError(t, svc.SetAlertEnabled(context.Background(), "o1", false))
	again, err := svc.RegisterOwner(context.Background(), "o1", "boss")
	require.NoError(t, err)
	assert.False(t, again.AlertEnabled)
}

func TestRegisterOwnerRequiresID(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingService(repositories.NewSettingRepository(db), 3)

	_, err := svc.RegisterOwner(context.Background(), "  ", "boss")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidActivity))
}

func TestSetAlertEnabledNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingService(repositories.NewSettingRepository(db), 3)

	err := svc.SetAlertEnabled(context.Background(), "ghost", true)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetByOwnerID(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingService(repositories.NewSettingRepository(db), 3)

	_, err := svc.GetByOwnerID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = svc.RegisterOwner(context.Background(), "o1", "boss")
	require.NoError(t, err)

	setting, err := svc.GetByOwnerID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "boss", setting.OwnerUsername)
}

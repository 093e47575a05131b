package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
)

const retryBaseDelay = 50 * time.Millisecond

// withRetry 以指数退避重试存储事务，重试耗尽后归类为 StoreUnavailable
// 业务性错误（未找到、非法活动等）不可通过重试恢复，直接上抛不做包装
func withRetry(ctx context.Context, maxRetries int, fn func() error) error {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	delay := retryBaseDelay
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, ctx.Err())
			}
			delay *= 2
		}

		err := fn()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, lastErr)
}

func isPermanent(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrInvalidActivity) ||
		errors.Is(err, apperrors.ErrConflictRetryExhausted)
}

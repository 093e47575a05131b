package apperrors

import "errors"

// 核心错误分类，调用方通过 errors.Is 判断
var (
	// ErrInvalidActivity 必填字段缺失或非法，写入前即被拒绝，不会重试
	ErrInvalidActivity = errors.New("invalid activity")

	// ErrStoreUnavailable 存储暂时不可用，经退避重试后仍失败时返回
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConflictRetryExhausted 按键串行化冲突重试次数耗尽
	ErrConflictRetryExhausted = errors.New("conflict retry exhausted")

	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("not found")
)

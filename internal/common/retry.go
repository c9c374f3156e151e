package common

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// IsTemporary 判断是否为临时性错误
func IsTemporary(err error) bool {
	var temp interface{ Temporary() bool }
	if stderrors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}

// IsRetryable 判断是否可重试（网络错误或超时）
func IsRetryable(err error) bool {
	return IsTemporary(err) ||
		mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		stderrors.Is(err, context.DeadlineExceeded)
}

// WithRetry 通用重试机制，第 i 次失败后等待 i 秒
func WithRetry(ctx context.Context, operation func(context.Context) error, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = operation(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) || i == maxRetries-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second * time.Duration(i+1)):
		}
	}
	return err
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// ServiceError 定义服务层错误
type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// ErrorCode 定义错误码类型
type ErrorCode int

const (
	// 数据库 / 远程调用错误
	ErrDatabase ErrorCode = iota + 1000
	ErrNotFound

	// 业务逻辑错误
	ErrInvalidInput
	ErrUnauthorized
	ErrForbidden

	// 系统错误
	ErrInternal
)

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// New 创建新的服务错误
func New(code ErrorCode, message string) error {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装已有错误
func Wrap(code ErrorCode, message string, err error) error {
	return &ServiceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsServiceError 判断是否为服务错误
func IsServiceError(err error) bool {
	var se *ServiceError
	return stderrors.As(err, &se)
}

// GetErrorCode 获取错误码
func GetErrorCode(err error) ErrorCode {
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrInternal
}

// Is 判断错误链中是否有指定错误码的服务错误
func Is(err error, code ErrorCode) bool {
	return IsServiceError(err) && GetErrorCode(err) == code
}

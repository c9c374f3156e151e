package errors

import (
	stderrors "errors"
	"net/http"

	serrors "community-forum/internal/service/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
}

// SuccessResponse 定义成功响应结构
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal:    http.StatusInternalServerError,
	ErrDatabase:    http.StatusBadGateway,
	ErrTimeout:     http.StatusRequestTimeout,
	ErrRateLimited: http.StatusTooManyRequests,

	// 认证错误 (2000-2999)
	ErrUnauthorized: http.StatusUnauthorized,
	ErrForbidden:    http.StatusForbidden,
	ErrInvalidToken: http.StatusUnauthorized,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceExists:   http.StatusConflict,

	// 业务错误 (4000-4999)
	ErrCommunityNotFound: http.StatusNotFound,
}

// 服务层错误码到应用错误码的映射
var serviceCodeMap = map[serrors.ErrorCode]ErrorCode{
	serrors.ErrDatabase:     ErrDatabase,
	serrors.ErrNotFound:     ErrResourceNotFound,
	serrors.ErrInvalidInput: ErrValidation,
	serrors.ErrUnauthorized: ErrUnauthorized,
	serrors.ErrForbidden:    ErrForbidden,
	serrors.ErrInternal:     ErrInternal,
}

// FromServiceError 把服务层错误转换为 AppError
func FromServiceError(err error) *AppError {
	var se *serrors.ServiceError
	if !stderrors.As(err, &se) {
		return Wrap(ErrInternal, "Internal Server Error", err)
	}
	code, ok := serviceCodeMap[se.Code]
	if !ok {
		code = ErrInternal
	}
	return &AppError{Code: code, Message: se.Message, Err: se.Err}
}

// StatusOf 返回错误码对应的 HTTP 状态码
func StatusOf(code ErrorCode) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError 统一处理错误响应
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		appErr = FromServiceError(err)
	}

	resp := ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	if appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}

	_ = c.Error(appErr)
	c.JSON(StatusOf(appErr.Code), resp)
}

// HandleSuccess 统一处理成功响应
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	resp := SuccessResponse{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	}
	c.JSON(http.StatusOK, resp)
}

package middleware

import (
	"fmt"
	"runtime/debug"

	"community-forum/internal/errors"
	"community-forum/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				// 记录堆栈信息
				util.Logger.Error("发生panic",
					zap.Any("error", r),
					zap.String("request_id", c.GetString("request_id")),
					zap.String("path", c.Request.URL.Path),
					zap.String("stack", string(debug.Stack())))

				errors.HandleError(c, errors.Wrap(errors.ErrInternal, "系统内部错误", fmt.Errorf("%v", r)))
				c.Abort()
			}
		}()
		c.Next()
	}
}

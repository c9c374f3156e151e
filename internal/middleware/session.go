package middleware

import (
	"context"
	"strings"

	"community-forum/internal/errors"
	"community-forum/internal/model"
	"community-forum/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SessionKey = "session"

// SessionResolver 根据用户和社区名得出会话（角色、是否成员）
type SessionResolver interface {
	ResolveSession(ctx context.Context, user *model.User, communityName string) (*model.Session, error)
}

// SessionMiddleware 解析可选的 Bearer 令牌，并结合路由中的社区得出会话。
// 没有令牌时是匿名会话；令牌无效时返回 401。
func SessionMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *model.User

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && parts[0] == "Bearer") {
				errors.HandleError(c, errors.New(errors.ErrUnauthorized, "无效的认证格式"))
				c.Abort()
				return
			}

			u, err := util.ValidateToken(parts[1])
			if err != nil {
				errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "无效或过期的令牌", err))
				c.Abort()
				return
			}
			user = u
		}

		session, err := resolver.ResolveSession(c.Request.Context(), user, c.Param("name"))
		if err != nil {
			util.Logger.Error("解析会话失败", zap.String("community", c.Param("name")), zap.Error(err))
			errors.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// RequireUser 要求已登录
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSession(c).CurrentUser == nil {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "需要认证"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession 返回当前请求的会话，没有时返回匿名会话
func GetSession(c *gin.Context) *model.Session {
	if v, ok := c.Get(SessionKey); ok {
		if session, ok := v.(*model.Session); ok && session != nil {
			return session
		}
	}
	return model.Anonymous()
}

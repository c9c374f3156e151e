package util

import (
	"errors"
	"time"

	"community-forum/config"
	"community-forum/internal/model"

	"github.com/dgrijalva/jwt-go"
)

const tokenTTL = 24 * time.Hour

func GenerateToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.DisplayName,
		"email":   user.Email,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidateToken 解析令牌并返回其中的用户
func ValidateToken(tokenString string) (*model.User, error) {
	if tokenString == "" {
		return nil, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("无效的令牌")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, errors.New("无效的用户ID")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	return &model.User{ID: userID, DisplayName: name, Email: email}, nil
}

package util

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ValidateNotBlank 字符串去掉空白后不能为空
func ValidateNotBlank(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) != ""
}

var registerOnce sync.Once

// RegisterValidators 把自定义校验注册到 gin 的校验器
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("notblank", ValidateNotBlank); err != nil {
				Logger.Error("注册校验器失败", zap.String("tag", "notblank"), zap.Error(err))
			}
		}
	})
}

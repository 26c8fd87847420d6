package models

import (
	"strings"

	"github.com/kucun-next/internal/constants"
	"github.com/kucun-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultOperator 初始化默认操作员账号（首次启动时创建）
func InitDefaultOperator(email, password string) error {
	var count int64
	DB.Model(&Operator{}).Count(&count)
	if count > 0 {
		return nil
	}

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	operator := Operator{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         "店主",
		PasswordHash: string(hash),
		Status:       constants.OperatorStatusActive,
	}
	if err := DB.Create(&operator).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_operator_created_with_default_password", "email", operator.Email)
		logger.Warnw("default_operator_password_change_required", "email", operator.Email)
	} else {
		logger.Warnw("default_operator_created", "email", operator.Email, "password_hidden", true)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/kucun-next/internal/config"
	"github.com/kucun-next/internal/constants"
	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"
	syncpkg "github.com/kucun-next/internal/sync"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidEmail 邮箱格式不合法
	ErrInvalidEmail = errors.New("invalid email")
	// ErrUserNotFound 账号不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrUserDisabled 账号已停用
	ErrUserDisabled = errors.New("user disabled")
	// ErrWrongPassword 密码错误
	ErrWrongPassword = errors.New("wrong password")
	// ErrSignInTimeout 登录校验超时
	ErrSignInTimeout = errors.New("sign in timeout")
	// ErrInvalidToken 会话令牌无效或已过期
	ErrInvalidToken = errors.New("invalid token")
	// ErrPasswordTooShort 新密码长度不足
	ErrPasswordTooShort = errors.New("password too short")
)

// JWTClaims 会话令牌声明
type JWTClaims struct {
	OperatorID uint   `json:"operator_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService 操作员认证服务。登录态同时驱动云同步闸门：
// 登录开闸、登出关闸。
type AuthService struct {
	operatorRepo repository.OperatorRepository
	gate         *syncpkg.Gate
	jwtConfig    config.JWTConfig
	timeout      time.Duration
}

// NewAuthService 创建认证服务
func NewAuthService(operatorRepo repository.OperatorRepository, gate *syncpkg.Gate, cfg *config.Config) *AuthService {
	timeout := time.Duration(cfg.Security.SignInTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AuthService{
		operatorRepo: operatorRepo,
		gate:         gate,
		jwtConfig:    cfg.JWT,
		timeout:      timeout,
	}
}

// SignInResult 登录结果
type SignInResult struct {
	Token    string           `json:"token"`
	Operator *models.Operator `json:"operator"`
}

// SignIn 操作员登录。整个校验过程带超时保护，超时按失败处理，
// 不会让请求无限挂起。
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		result *SignInResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := s.signIn(email, password)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ErrSignInTimeout
	case out := <-done:
		return out.result, out.err
	}
}

func (s *AuthService) signIn(email, password string) (*SignInResult, error) {
	operator, err := s.operatorRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, ErrUserNotFound
	}
	if operator.Status != constants.OperatorStatusActive {
		return nil, ErrUserDisabled
	}
	if !VerifyPassword(operator.PasswordHash, password) {
		return nil, ErrWrongPassword
	}

	token, err := s.GenerateJWT(operator)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.operatorRepo.TouchLastLogin(operator.ID, now); err != nil {
		logger.Warnw("touch last login failed", "operator_id", operator.ID, "error", err)
	}
	operator.LastLoginAt = &now

	s.gate.SetAuthenticated(true)
	logger.Infow("operator signed in", "operator_id", operator.ID, "email", operator.Email)
	return &SignInResult{Token: token, Operator: operator}, nil
}

// SignOut 登出：关闭云同步闸门（令牌无会话表，由前端弃用即可）
func (s *AuthService) SignOut(operatorID uint) {
	s.gate.SetAuthenticated(false)
	logger.Infow("operator signed out", "operator_id", operatorID)
}

// ChangePassword 修改密码
func (s *AuthService) ChangePassword(operatorID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}
	operator, err := s.operatorRepo.GetByID(operatorID)
	if err != nil {
		return err
	}
	if operator == nil {
		return ErrUserNotFound
	}
	if !VerifyPassword(operator.PasswordHash, oldPassword) {
		return ErrWrongPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	operator.PasswordHash = hash
	return s.operatorRepo.Update(operator)
}

// GetOperator 查询操作员
func (s *AuthService) GetOperator(id uint) (*models.Operator, error) {
	operator, err := s.operatorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, ErrUserNotFound
	}
	return operator, nil
}

// GenerateJWT 签发会话令牌
func (s *AuthService) GenerateJWT(operator *models.Operator) (string, error) {
	expireHours := s.jwtConfig.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := JWTClaims{
		OperatorID: operator.ID,
		Email:      operator.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.SecretKey))
}

// ParseJWT 解析并校验会话令牌
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.SecretKey), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword 生成密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 校验密码
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kucun-next/internal/config"
	"github.com/kucun-next/internal/constants"
	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"
	syncpkg "github.com/kucun-next/internal/sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *syncpkg.Gate, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Operator{}); err != nil {
		t.Fatalf("migrate operator failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key-for-auth-service-tests"
	cfg.JWT.ExpireHours = 1
	cfg.Security.SignInTimeout = 30

	gate := syncpkg.NewGate()
	gate.SetOnline(true)
	return NewAuthService(repository.NewOperatorRepository(db), gate, cfg), gate, db
}

func createTestOperator(t *testing.T, db *gorm.DB, email, password, status string) *models.Operator {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	operator := &models.Operator{
		Email:        email,
		Name:         "测试操作员",
		PasswordHash: hash,
		Status:       status,
	}
	if err := db.Create(operator).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}
	return operator
}

func TestSignInSuccessOpensGate(t *testing.T) {
	service, gate, db := setupAuthServiceTest(t)
	createTestOperator(t, db, "shop@example.com", "secret123", constants.OperatorStatusActive)

	result, err := service.SignIn(context.Background(), "Shop@Example.com ", "secret123")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token")
	}
	if !gate.Authenticated() {
		t.Fatalf("gate should be authenticated after sign in")
	}

	claims, err := service.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.Email != "shop@example.com" {
		t.Fatalf("claims email want shop@example.com got %s", claims.Email)
	}
}

func TestSignInFailureKinds(t *testing.T) {
	service, gate, db := setupAuthServiceTest(t)
	createTestOperator(t, db, "shop@example.com", "secret123", constants.OperatorStatusActive)
	createTestOperator(t, db, "closed@example.com", "secret123", constants.OperatorStatusDisabled)

	cases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"invalid email", "not-an-email", "secret123", ErrInvalidEmail},
		{"unknown user", "nobody@example.com", "secret123", ErrUserNotFound},
		{"wrong password", "shop@example.com", "wrong", ErrWrongPassword},
		{"disabled", "closed@example.com", "secret123", ErrUserDisabled},
	}
	for _, tc := range cases {
		if _, err := service.SignIn(context.Background(), tc.email, tc.password); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
	if gate.Authenticated() {
		t.Fatalf("gate should stay closed after failed sign in")
	}
}

func TestSignOutClosesGate(t *testing.T) {
	service, gate, db := setupAuthServiceTest(t)
	operator := createTestOperator(t, db, "shop@example.com", "secret123", constants.OperatorStatusActive)

	if _, err := service.SignIn(context.Background(), "shop@example.com", "secret123"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	service.SignOut(operator.ID)
	if gate.Authenticated() {
		t.Fatalf("gate should be closed after sign out")
	}
}

func TestParseJWTRejectsTampered(t *testing.T) {
	service, _, db := setupAuthServiceTest(t)
	createTestOperator(t, db, "shop@example.com", "secret123", constants.OperatorStatusActive)

	result, err := service.SignIn(context.Background(), "shop@example.com", "secret123")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	tampered := result.Token + "x"
	if _, err := service.ParseJWT(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	service, _, db := setupAuthServiceTest(t)
	operator := createTestOperator(t, db, "shop@example.com", "secret123", constants.OperatorStatusActive)

	if err := service.ChangePassword(operator.ID, "secret123", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("want ErrPasswordTooShort got %v", err)
	}
	if err := service.ChangePassword(operator.ID, "wrong", "newsecret1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("want ErrWrongPassword got %v", err)
	}
	if err := service.ChangePassword(operator.ID, "secret123", "newsecret1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := service.SignIn(context.Background(), "shop@example.com", "newsecret1"); err != nil {
		t.Fatalf("sign in with new password failed: %v", err)
	}
}

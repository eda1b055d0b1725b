package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"daily-checkin/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

type AuthService struct{ db *gorm.DB }

func NewAuthService(db *gorm.DB) *AuthService { return &AuthService{db: db} }

func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*model.User, error) {
	email = normalizeEmail(email)
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{UID: uuid.NewString(), Email: email, Password: string(hash), Name: name, Role: "member"}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *AuthService) Get(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, fmt.Errorf("find user %s: %w", uid, err)
	}
	return &u, nil
}

// MarkVerified flips the email-verified flag once the address is confirmed.
func (s *AuthService) MarkVerified(ctx context.Context, uid string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("uid = ?", uid).Update("email_verified", true)
	if res.Error != nil {
		return fmt.Errorf("verify user %s: %w", uid, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("verify user %s: %w", uid, gorm.ErrRecordNotFound)
	}
	return nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *AuthService) SetRole(ctx context.Context, uid, role string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("uid = ?", uid).Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("set role %s: %w", uid, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set role %s: %w", uid, gorm.ErrRecordNotFound)
	}
	return nil
}

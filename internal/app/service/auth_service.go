package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/asthar/asthar-backend/pkg/util"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrLogoutUnavailable  = errors.New("token revocation unavailable")
)

// TokenRevoker blacklists session tokens by token id
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiry time.Duration) error
}

// AuthResult is the session handed out on register and login
type AuthResult struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type AuthService interface {
	Register(email, password, name string) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	GetUserByID(id uuid.UUID) (*model.User, error)
	Logout(ctx context.Context, claims *util.Claims) error
}

type authService struct {
	userRepo      repository.UserRepository
	revoker       TokenRevoker
	jwtSecret     string
	sessionExpiry time.Duration
}

// NewAuthService builds the auth service; a nil revoker disables logout
func NewAuthService(
	userRepo repository.UserRepository,
	revoker TokenRevoker,
	jwtSecret string,
	sessionExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		revoker:       revoker,
		jwtSecret:     jwtSecret,
		sessionExpiry: sessionExpiry,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)

	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	// Check if user already exists
	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if name = strings.TrimSpace(name); name != "" {
		user.Name = &name
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return result, nil
}

func (s *authService) Login(email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return result, nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateSessionToken(user.ID, user.Email, user.DisplayName(), s.jwtSecret, s.sessionExpiry)
	if err != nil {
		logger.Error("Failed to generate session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return &AuthResult{User: user, Token: token.Token, ExpiresAt: token.ExpiresAt}, nil
}

func (s *authService) GetUserByID(id uuid.UUID) (*model.User, error) {
	logger.Debug("Fetching user by ID", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

// Logout revokes the token for the rest of its lifetime
func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.revoker == nil {
		return ErrLogoutUnavailable
	}
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return util.ErrInvalidToken
	}

	if err := s.revoker.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		logger.Error("Failed to revoke session token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

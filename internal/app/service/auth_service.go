package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	apperrors "github.com/ikkim/animestore-backend/internal/errors"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/ikkim/animestore-backend/pkg/util"
	"gorm.io/gorm"
)

// TokenBlacklist remembers revoked token ids until they expire.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type AuthResult struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, claims *util.Claims) error
	GetUserByID(id uint) (*model.User, error)
	SetRole(email string, role model.UserRole) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	blacklist    TokenBlacklist
	jwtSecret    string
	accessExpiry time.Duration
}

// NewAuthService wires authentication. blacklist may be nil, in which case
// logout only clears the client cookie and tokens stay valid until expiry.
func NewAuthService(
	userRepo repository.UserRepository,
	blacklist TokenBlacklist,
	jwtSecret string,
	accessExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		blacklist:    blacklist,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, claims, err := util.GenerateAccessToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperrors.Upstream(err, "auth")
	}
	return &AuthResult{User: user, AccessToken: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	if _, err := mail.ParseAddress(email); err != nil || name == "" {
		return nil, apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "الاسم والبريد الإلكتروني الصحيح مطلوبان")
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Upstream(err, "auth")
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailExists
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, util.ErrPasswordLength) {
			return nil, ErrWeakPassword
		}
		return nil, apperrors.Upstream(err, "auth")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.Upstream(err, "create user")
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: unknown email", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Upstream(err, "auth")
	}
	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return s.issue(user)
}

// Logout revokes the token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || s.blacklist == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		logger.Error("Failed to blacklist token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return apperrors.Upstream(err, "logout")
	}
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Upstream(err, "user")
	}
	return user, nil
}

// SetRole changes the role of the user with the given email. The new role
// takes effect on the user's next login.
func (s *authService) SetRole(email string, role model.UserRole) (*model.User, error) {
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "الدور غير صالح")
	}
	user, err := s.userRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Upstream(err, "user")
	}
	if err := s.userRepo.UpdateRole(user.ID, role); err != nil {
		return nil, apperrors.Upstream(err, "update user")
	}
	user.Role = role
	logger.Info("User role changed", map[string]interface{}{
		"user_id": user.ID,
		"role":    role,
	})
	return user, nil
}

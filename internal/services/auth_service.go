package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/besttime/besttime-api/internal/config"
	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/besttime/besttime-api/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles authentication
type AuthService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	audit  *AuditService
	cfg    *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepository, tokens repository.RefreshTokenRepository, audit *AuditService, cfg *config.Config) *AuthService {
	return &AuthService{users: users, tokens: tokens, audit: audit, cfg: cfg}
}

// LoginResult carries the tokens handed to a freshly authenticated client.
type LoginResult struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresAt    time.Time           `json:"expires_at"`
	User         models.UserResponse `json:"user"`
}

// Login verifies credentials and issues a token pair. Disabled accounts are
// rejected even with a valid password.
func (s *AuthService) Login(ctx context.Context, email, password string, actor Actor) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	actor.UserID = &user.ID
	if err := s.audit.Record(ctx, actor, models.ActionLogin, "User", user.ID,
		fmt.Sprintf("Connexion de %s", user.DisplayName())); err != nil {
		return nil, err
	}

	return result, nil
}

// Refresh rotates a refresh token into a fresh token pair. The old token is
// invalidated whether or not the rotation succeeds past the lookup.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	stored, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}

	if stored.IsExpired() {
		return nil, ErrUnauthorized
	}

	if stored.User.ID == 0 || !stored.User.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(ctx, &stored.User)
}

// Logout revokes every refresh token the user holds.
func (s *AuthService) Logout(ctx context.Context, userID uint, actor Actor) error {
	if err := s.tokens.DeleteForUser(ctx, userID); err != nil {
		return err
	}
	return s.audit.Record(ctx, actor, models.ActionLogout, "User", userID, "Déconnexion")
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// PurgeExpiredTokens drops refresh tokens past their expiry. Run
// periodically by the scheduler.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) error {
	deleted, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logger.Info("purged expired refresh tokens", "count", deleted)
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*LoginResult, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)

	token, err := s.signToken(user, expiresAt)
	if err != nil {
		return nil, err
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}); err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:        token,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         user.ToResponse(),
	}, nil
}

func (s *AuthService) signToken(user *models.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

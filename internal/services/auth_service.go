package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnsons/internal/metrics"
	"gnsons/internal/models"
	"gnsons/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost factor for admin passwords.
const PasswordHashCost = 10

// dummyHash is compared against when the email is unknown so both failure
// paths take comparable time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), PasswordHashCost)

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
	Admin        models.AdminProfile `json:"admin"`
}

// AuthService handles admin registration, login and identity lookups.
type AuthService struct {
	admins repositories.AdminRepository
	tokens *TokenService
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(admins repositories.AdminRepository, tokens *TokenService, log *zap.Logger) *AuthService {
	return &AuthService{admins: admins, tokens: tokens, log: log, now: time.Now}
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an admin account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.AdminProfile, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}

	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Permissions:  []string{models.PermissionAll},
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to register admin: %w", err)
	}

	s.log.Info("Admin registered", zap.String("admin_id", admin.ID))
	profile := admin.Profile()
	return &profile, nil
}

// Login verifies credentials and issues an access and refresh token pair. The
// same error is returned for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.admins.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up admin: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccessToken(admin.ID, admin.Email, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(admin.ID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.admins.UpdateLastLogin(ctx, admin.ID, at); err != nil {
		metrics.SideEffectFailures.WithLabelValues("last_login").Inc()
		s.log.Warn("Failed to record last login", zap.String("admin_id", admin.ID), zap.Error(err))
	} else {
		admin.LastLogin = &at
	}

	metrics.LoginAttempts.WithLabelValues("accepted").Inc()
	return &LoginResult{AccessToken: access, RefreshToken: refresh, Admin: admin.Profile()}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", fmt.Errorf("%w: refresh token is required", ErrValidation)
	}
	return s.tokens.RedeemRefresh(ctx, refreshToken)
}

// Authenticate verifies an access token and returns its claims.
func (s *AuthService) Authenticate(token string) (*AccessClaims, error) {
	return s.tokens.VerifyAccess(token)
}

// ResolveAdmin re-fetches the admin named by verified claims. A token whose
// subject no longer exists, or that lacks the admin role, is forbidden.
func (s *AuthService) ResolveAdmin(ctx context.Context, claims *AccessClaims) (*models.Admin, error) {
	if claims == nil || !claims.IsAdmin || claims.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	admin, err := s.admins.GetByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to resolve admin: %w", err)
	}
	return admin, nil
}

// CurrentAdmin returns the profile of the admin with id.
func (s *AuthService) CurrentAdmin(ctx context.Context, id string) (*models.AdminProfile, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := admin.Profile()
	return &profile, nil
}

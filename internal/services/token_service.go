package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gnsons/internal/models"
	"gnsons/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// TokenConfig configures token issuance. Access and refresh tokens must use
// different secrets.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Now is the clock used for issuance and expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.StandardClaims
}

// RefreshClaims is the payload of a refresh token. It names the subject only.
type RefreshClaims struct {
	UID string `json:"uid"`
	jwt.StandardClaims
}

type expiringClaims interface {
	jwt.Claims
	VerifyExpiresAt(cmp int64, req bool) bool
}

// TokenService issues and verifies stateless HS256 tokens.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
	admins        repositories.AdminRepository
}

// NewTokenService creates a TokenService. admins is consulted only when a
// refresh token is redeemed.
func NewTokenService(cfg TokenConfig, admins repositories.AdminRepository) *TokenService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           now,
		admins:        admins,
	}
}

// IssueAccessToken signs a short-lived token for subjectID.
func (s *TokenService) IssueAccessToken(subjectID, email, role string) (string, error) {
	now := s.now()
	claims := AccessClaims{
		UID:     subjectID,
		Email:   email,
		Role:    role,
		IsAdmin: role == models.RoleAdmin,
		StandardClaims: jwt.StandardClaims{
			Subject:   subjectID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.accessTTL).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs a long-lived token carrying only subjectID.
func (s *TokenService) IssueRefreshToken(subjectID string) (string, error) {
	now := s.now()
	claims := RefreshClaims{
		UID: subjectID,
		StandardClaims: jwt.StandardClaims{
			Subject:   subjectID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.refreshTTL).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccess checks signature and expiry of an access token.
func (s *TokenService) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(token, s.accessSecret, claims); err != nil {
		return nil, err
	}
	if claims.UID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry of a refresh token.
func (s *TokenService) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(token, s.refreshSecret, claims); err != nil {
		return nil, err
	}
	if claims.UID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// verify fails with ErrTokenInvalid for every cause so callers cannot tell a
// tampered token from an expired one. Expiry is checked against the injected
// clock; a token is accepted up to and including its expiry second.
func (s *TokenService) verify(token string, secret []byte, claims expiringClaims) error {
	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrTokenInvalid
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return ErrTokenInvalid
	}
	return nil
}

// RedeemRefresh exchanges a refresh token for a new access token. The subject
// must still exist. No new refresh token is issued.
func (s *TokenService) RedeemRefresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	admin, err := s.admins.GetByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrSubjectNotFound
		}
		return "", fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return s.IssueAccessToken(admin.ID, admin.Email, models.RoleAdmin)
}

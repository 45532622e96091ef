package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pollbox/api/internal/core/domain"
	"github.com/pollbox/api/internal/core/ports"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type AuthService struct {
	userRepo       ports.UserRepository
	authRepo       ports.AuthRepository
	verifier       ports.TokenVerifier
	jwtSecret      []byte
	googleClientID string
}

func NewAuthService(userRepo ports.UserRepository, authRepo ports.AuthRepository, verifier ports.TokenVerifier) *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("JWT_SECRET is not set; issued tokens will not verify")
	}

	return &AuthService{
		userRepo:       userRepo,
		authRepo:       authRepo,
		verifier:       verifier,
		jwtSecret:      []byte(secret),
		googleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
	}
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, googleToken string) (string, string, error) {
	payload, err := s.verifier.Verify(ctx, googleToken, s.googleClientID)
	if err != nil {
		return "", "", fmt.Errorf("invalid google token: %w", err)
	}

	return s.issueSession(ctx, payload.Email, payload.Name)
}

// RefreshAccessToken exchanges a live refresh token for a fresh access
// token. Refresh tokens are not rotated; the same one stays valid until
// its own expiry or an explicit logout.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error) {
	stored, err := s.authRepo.GetRefreshTokenByHash(ctx, s.hashRefreshToken(refreshToken))
	if err != nil {
		return "", "", fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored == nil {
		return "", "", errors.New("unknown refresh token")
	}
	if stored.Revoked {
		return "", "", errors.New("refresh token revoked")
	}
	if stored.ExpiresAt.Before(time.Now()) {
		return "", "", errors.New("refresh token expired")
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", "", errors.New("user not found")
	}

	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Logout revokes the refresh token. Unknown tokens are treated as
// already logged out.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	stored, err := s.authRepo.GetRefreshTokenByHash(ctx, s.hashRefreshToken(refreshToken))
	if err != nil {
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored == nil {
		return nil
	}

	return s.authRepo.RevokeRefreshToken(ctx, stored.ID.String())
}

// issueSession finds or creates the user for a verified identity and
// hands back a fresh access/refresh token pair.
func (s *AuthService) issueSession(ctx context.Context, email, name string) (string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		user = &domain.User{
			Email: email,
			Name:  name,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", "", fmt.Errorf("failed to create user: %w", err)
		}
	}

	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	stored := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.hashRefreshToken(refreshToken),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.authRepo.StoreRefreshToken(ctx, stored); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) signAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"exp":   now.Add(accessTokenTTL).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Only the SHA-256 digest of a refresh token is ever stored.
func (s *AuthService) hashRefreshToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

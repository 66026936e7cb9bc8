// Package auth issues and verifies bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Identity is the authenticated caller behind a bearer token.
type Identity struct {
	UserID    uint
	Role      models.UserRole
	TokenID   string
	ExpiresAt time.Time
}

// TokenVerifier turns a bearer token into an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims carries the role next to the registered claims; sub is the user id.
type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs HS256 tokens and tracks revoked token ids in the cache.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	cache  cache.CacheService
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration, cacheService cache.CacheService) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		cache:  cacheService,
		now:    time.Now,
	}
}

// Issue signs a token for the user.
func (m *JWTManager) Issue(user *models.User) (string, *Identity, error) {
	now := m.now()
	identity := &Identity{
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        identity.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, identity, nil
}

func (m *JWTManager) Verify(ctx context.Context, token string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	revoked, err := m.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	identity := &Identity{
		UserID:  uint(userID),
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Revoke blacklists the token id until the token would have expired anyway.
func (m *JWTManager) Revoke(ctx context.Context, identity *Identity) error {
	if identity == nil || identity.TokenID == "" {
		return nil
	}
	ttl := identity.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.cache.Set(ctx, cache.RevokedTokenKey(identity.TokenID), true, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (m *JWTManager) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	var revoked bool
	err := m.cache.Get(ctx, cache.RevokedTokenKey(tokenID), &revoked)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}

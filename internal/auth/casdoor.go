package auth

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// CasdoorUser is the subset of a Casdoor account the service relies on.
type CasdoorUser struct {
	Name    string
	Email   string
	IsAdmin bool
}

// UserResolver maps an external account onto a local user, creating it when needed.
type UserResolver interface {
	ResolveExternalUser(ctx context.Context, account CasdoorUser) (*models.User, error)
}

// CasdoorVerifier validates tokens issued by a Casdoor instance.
type CasdoorVerifier struct {
	client   *casdoorsdk.Client
	resolver UserResolver
}

func NewCasdoorVerifier(cfg config.CasdoorConfig, resolver UserResolver) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorVerifier{client: client, resolver: resolver}
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return nil, ErrInvalidToken
	}

	user, err := v.resolver.ResolveExternalUser(ctx, CasdoorUser{
		Name:    firstNonEmpty(claims.DisplayName, claims.Name),
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	identity := &Identity{
		UserID:  user.ID,
		Role:    user.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

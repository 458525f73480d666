package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var ErrInvalidAssertion = errors.New("invalid identity assertion")

// Identity is the verified payload of a federated login assertion.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// IdentityVerifier validates an opaque identity assertion from a federated
// provider and returns the verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*Identity, error)
}

// GoogleVerifier checks Google ID tokens against the configured OAuth
// client ID.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, assertion, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAssertion, err)
	}

	sub, _ := payload.Claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidAssertion)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &Identity{
		Subject:   sub,
		Email:     email,
		Name:      name,
		AvatarURL: picture,
	}, nil
}

// compile-time interface check
var _ IdentityVerifier = (*GoogleVerifier)(nil)

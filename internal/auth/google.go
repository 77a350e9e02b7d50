package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// ErrGoogleTokenRejected is returned when Google does not vouch for the presented ID token.
var ErrGoogleTokenRejected = errors.New("auth: google token rejected")

// GoogleIdentity is the subset of a verified Google ID token FoodLink needs.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// idTokenValidator is satisfied by *idtoken.Validator.
type idTokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks Google ID tokens against the configured OAuth client id.
type GoogleVerifier struct {
	clientID  string
	validator idTokenValidator
}

// NewGoogleVerifier creates a GoogleVerifier backed by Google's published certificates.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: creating id token validator: %w", err)
	}
	return newGoogleVerifierWithValidator(clientID, v), nil
}

func newGoogleVerifierWithValidator(clientID string, v idTokenValidator) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validator: v}
}

// Verify validates idToken and returns the identity it asserts. Tokens without a verified
// email are rejected.
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := g.validator.Validate(ctx, idToken, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleTokenRejected, err)
	}

	email := claimString(payload.Claims, "email")
	if email == "" {
		return nil, fmt.Errorf("%w: no email claim", ErrGoogleTokenRejected)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrGoogleTokenRejected)
	}

	return &GoogleIdentity{
		Subject: payload.Subject,
		Email:   strings.ToLower(email),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"square.ai/skill-gateway/app/domain/common"
)

const PreferredUsernameClaim = "preferred_username"

var (
	ErrMalformedHeader  = common.NewError(fmt.Errorf("malformed authorization header: %w", common.ErrUnauthorized), "3632829c-744d-4c91-80b9-83caed859e37")
	ErrMalformedToken   = common.NewError(fmt.Errorf("malformed token: %w", common.ErrUnauthorized), "4e5a1e7f-96e8-428c-9469-23603db86569")
	ErrMissingClaim     = common.NewError(fmt.Errorf("missing claim %s: %w", PreferredUsernameClaim, common.ErrUnauthorized), "09f5c1ee-2567-416f-a361-8a090780b135")
	ErrInvalidSignature = common.NewError(fmt.Errorf("token signature rejected: %w", common.ErrUnauthorized), "13809691-b98e-4d25-a50f-5f15a4de5f22")
)

// GetTokenFromBearer extracts the token from an Authorization header value.
// present is false when the header is empty; callers treat that as anonymous.
func GetTokenFromBearer(header string) (token string, present bool, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true, ErrMalformedHeader
	}
	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", true, ErrMalformedHeader
	}
	return token, true, nil
}

// SignatureVerifier checks a raw token against the keys published by issuer.
type SignatureVerifier interface {
	Verify(ctx context.Context, issuer string, rawToken string) error
}

// TokenValidator turns a bearer token into an Identity. Without a
// SignatureVerifier it only decodes the payload and relies on an upstream
// gateway having verified the signature.
type TokenValidator struct {
	verifier SignatureVerifier
	parser   *jwt.Parser
}

func NewTokenValidator(verifier SignatureVerifier) *TokenValidator {
	return &TokenValidator{
		verifier: verifier,
		parser:   jwt.NewParser(),
	}
}

func (v *TokenValidator) Validate(ctx context.Context, rawToken string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(rawToken, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	issuer, err := claims.GetIssuer()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if v.verifier != nil {
		if err := v.verifier.Verify(ctx, issuer, rawToken); err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}
	username, _ := claims[PreferredUsernameClaim].(string)
	if username == "" {
		return Identity{}, ErrMissingClaim
	}
	return Identity{
		Realm:    RealmFromIssuer(issuer),
		Username: username,
	}, nil
}

// RealmFromIssuer returns the segment after "realms/" in a Keycloak style
// issuer, otherwise the last path segment.
func RealmFromIssuer(issuer string) string {
	if issuer == "" {
		return ""
	}
	path := issuer
	if u, err := url.Parse(issuer); err == nil && u.Host != "" {
		path = u.Path
	}
	segments := make([]string, 0)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	for i, s := range segments {
		if s == "realms" && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

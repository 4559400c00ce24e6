package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	oidc "github.com/coreos/go-oidc/v3/oidc"
	"square.ai/skill-gateway/config/environment_variables"
)

var (
	ErrUntrustedIssuer   = errors.New("issuer is not trusted")
	ErrNoTrustedIssuers  = errors.New("signature verification needs at least one trusted issuer")
	ErrInvalidIssuerRule = errors.New("invalid trusted issuer")
)

// issuerRule matches one trusted issuer entry. An entry whose path ends in
// "/" trusts every issuer below that path on the same scheme and host; any
// other entry must match the issuer exactly.
type issuerRule struct {
	scheme string
	host   string
	path   string
	prefix bool
}

func parseIssuerRule(entry string) (issuerRule, error) {
	u, err := url.Parse(entry)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return issuerRule{}, fmt.Errorf("%w: %q", ErrInvalidIssuerRule, entry)
	}
	if u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return issuerRule{}, fmt.Errorf("%w: %q", ErrInvalidIssuerRule, entry)
	}
	return issuerRule{
		scheme: strings.ToLower(u.Scheme),
		host:   strings.ToLower(u.Host),
		path:   u.Path,
		prefix: strings.HasSuffix(u.Path, "/"),
	}, nil
}

func (r issuerRule) matches(u *url.URL) bool {
	if strings.ToLower(u.Scheme) != r.scheme || strings.ToLower(u.Host) != r.host {
		return false
	}
	if r.prefix {
		return strings.HasPrefix(u.Path, r.path) && !strings.Contains(u.Path, "/../")
	}
	return u.Path == r.path
}

// OIDCVerifier verifies token signatures against the JWKS advertised by the
// token's issuer. Only allow-listed issuers are ever contacted; discovery
// runs once per issuer.
type OIDCVerifier struct {
	rules  []issuerRule
	config *oidc.Config

	mu        sync.Mutex
	verifiers map[string]*oidc.IDTokenVerifier
}

func NewOIDCVerifier(trustedIssuers []string) (*OIDCVerifier, error) {
	if len(trustedIssuers) == 0 {
		return nil, ErrNoTrustedIssuers
	}
	rules := make([]issuerRule, 0, len(trustedIssuers))
	for _, entry := range trustedIssuers {
		rule, err := parseIssuerRule(entry)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return &OIDCVerifier{
		rules:     rules,
		config:    &oidc.Config{SkipClientIDCheck: true},
		verifiers: make(map[string]*oidc.IDTokenVerifier),
	}, nil
}

func (o *OIDCVerifier) trusted(issuer string) bool {
	u, err := url.Parse(issuer)
	if err != nil || u.Host == "" || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return false
	}
	for _, rule := range o.rules {
		if rule.matches(u) {
			return true
		}
	}
	return false
}

func (o *OIDCVerifier) Verify(ctx context.Context, issuer string, rawToken string) error {
	if !o.trusted(issuer) {
		return fmt.Errorf("%w: %q", ErrUntrustedIssuer, issuer)
	}
	verifier, err := o.verifierFor(ctx, issuer)
	if err != nil {
		return err
	}
	_, err = verifier.Verify(ctx, rawToken)
	return err
}

func (o *OIDCVerifier) verifierFor(ctx context.Context, issuer string) (*oidc.IDTokenVerifier, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if v, ok := o.verifiers[issuer]; ok {
		return v, nil
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", issuer, err)
	}
	v := provider.Verifier(o.config)
	o.verifiers[issuer] = v
	return v, nil
}

// NewSignatureVerifier returns the OIDC verifier when AUTH_VERIFY_SIGNATURE is
// set and nil otherwise, which leaves tokens decoded but unverified. Turning
// verification on without AUTH_TRUSTED_ISSUERS is a startup error.
func NewSignatureVerifier() (SignatureVerifier, error) {
	env := environment_variables.EnvironmentVariables
	if !env.AUTH_VERIFY_SIGNATURE {
		return nil, nil
	}
	verifier, err := NewOIDCVerifier(env.AUTH_TRUSTED_ISSUERS)
	if err != nil {
		return nil, err
	}
	return verifier, nil
}

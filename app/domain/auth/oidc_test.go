package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"square.ai/skill-gateway/config/environment_variables"
)

type fakeIssuer struct {
	server      *httptest.Server
	key         *rsa.PrivateKey
	issuer      string
	discoveries atomic.Int32
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	fi := &fakeIssuer{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/test/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		fi.discoveries.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                fi.issuer,
			"authorization_endpoint":                fi.issuer + "/protocol/openid-connect/auth",
			"token_endpoint":                        fi.issuer + "/protocol/openid-connect/token",
			"jwks_uri":                              fi.issuer + "/protocol/openid-connect/certs",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/realms/test/protocol/openid-connect/certs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "test-key",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
			}},
		})
	})
	fi.server = httptest.NewServer(mux)
	fi.issuer = fi.server.URL + "/realms/test"
	t.Cleanup(fi.server.Close)
	return fi
}

func (fi *fakeIssuer) sign(t *testing.T, key *rsa.PrivateKey, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":                fi.issuer,
		"sub":                "user-1",
		"aud":                "skill-gateway",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"iat":                time.Now().Unix(),
		"preferred_username": username,
	})
	token.Header["kid"] = "test-key"
	raw, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func newVerifier(t *testing.T, trusted ...string) *OIDCVerifier {
	t.Helper()
	v, err := NewOIDCVerifier(trusted)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestOIDCVerifierAcceptsIssuerSignedToken(t *testing.T) {
	fi := newFakeIssuer(t)
	for _, trusted := range []string{fi.issuer, fi.server.URL + "/realms/"} {
		validator := NewTokenValidator(newVerifier(t, trusted))

		identity, err := validator.Validate(context.Background(), fi.sign(t, fi.key, "bob"))
		if err != nil {
			t.Fatalf("trusted %q: %v", trusted, err)
		}
		if identity.Username != "bob" || identity.Realm != "test" {
			t.Fatalf("unexpected identity %+v", identity)
		}
	}
}

func TestOIDCVerifierRejectsForeignKey(t *testing.T) {
	fi := newFakeIssuer(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	validator := NewTokenValidator(newVerifier(t, fi.issuer))

	_, err = validator.Validate(context.Background(), fi.sign(t, other, "mallory"))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected signature rejection, got %v", err)
	}
}

func TestOIDCVerifierRejectsSelfHostedIssuer(t *testing.T) {
	legit := newFakeIssuer(t)
	rogue := newFakeIssuer(t)
	validator := NewTokenValidator(newVerifier(t, legit.issuer))

	_, err := validator.Validate(context.Background(), rogue.sign(t, rogue.key, "alice"))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected rejection of rogue issuer, got %v", err)
	}
	if n := rogue.discoveries.Load(); n != 0 {
		t.Fatalf("rogue issuer was contacted %d times", n)
	}
}

func TestOIDCVerifierIssuerMatching(t *testing.T) {
	v := newVerifier(t, "https://kc.example.org/realms/", "https://sso.example.org/auth")
	cases := []struct {
		issuer  string
		trusted bool
	}{
		{"https://kc.example.org/realms/research", true},
		{"https://KC.example.org/realms/research", true},
		{"https://kc.example.org.evil.com/realms/research", false},
		{"http://kc.example.org/realms/research", false},
		{"https://kc.example.org/other/research", false},
		{"https://kc.example.org/realms", false},
		{"https://user@kc.example.org/realms/research", false},
		{"https://sso.example.org/auth", true},
		{"https://sso.example.org/auth/extra", false},
		{"https://sso.example.org/authx", false},
		{"", false},
		{"not a url", false},
	}
	for _, c := range cases {
		if got := v.trusted(c.issuer); got != c.trusted {
			t.Errorf("trusted(%q) = %v, want %v", c.issuer, got, c.trusted)
		}
	}

	err := v.Verify(context.Background(), "https://kc.example.org.evil.com/realms/x", "token")
	if !errors.Is(err, ErrUntrustedIssuer) {
		t.Fatalf("expected untrusted issuer, got %v", err)
	}
}

func TestNewOIDCVerifierRequiresTrustedIssuers(t *testing.T) {
	if _, err := NewOIDCVerifier(nil); !errors.Is(err, ErrNoTrustedIssuers) {
		t.Fatalf("expected ErrNoTrustedIssuers, got %v", err)
	}
	if _, err := NewOIDCVerifier([]string{"kc.example.org"}); !errors.Is(err, ErrInvalidIssuerRule) {
		t.Fatalf("expected ErrInvalidIssuerRule, got %v", err)
	}
}

func TestNewSignatureVerifierRefusesOpenTrust(t *testing.T) {
	env := &environment_variables.EnvironmentVariables
	saved := *env
	t.Cleanup(func() { *env = saved })

	env.AUTH_VERIFY_SIGNATURE = false
	if v, err := NewSignatureVerifier(); v != nil || err != nil {
		t.Fatalf("verification off: got %v, %v", v, err)
	}

	env.AUTH_VERIFY_SIGNATURE = true
	env.AUTH_TRUSTED_ISSUERS = nil
	if _, err := NewSignatureVerifier(); !errors.Is(err, ErrNoTrustedIssuers) {
		t.Fatalf("expected ErrNoTrustedIssuers, got %v", err)
	}

	env.AUTH_TRUSTED_ISSUERS = []string{"https://kc.example.org/realms/"}
	if v, err := NewSignatureVerifier(); v == nil || err != nil {
		t.Fatalf("expected verifier, got %v, %v", v, err)
	}
}

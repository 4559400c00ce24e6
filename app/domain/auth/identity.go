package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Identity is the caller derived from a bearer token. It is never persisted.
type Identity struct {
	Realm    string `json:"realm"`
	Username string `json:"username"`
}

// Anonymous is the identity of a request without an Authorization header.
func Anonymous() Identity {
	return Identity{}
}

func (i Identity) IsAnonymous() bool {
	return i.Username == ""
}

type UserContextKey string

const UserContextKeyIdentity UserContextKey = "UserContextKeyIdentity"

type identityContextKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the anonymous identity when none was stored.
func IdentityFromContext(ctx context.Context) Identity {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok {
		return Anonymous()
	}
	return identity
}

// SetIdentityToContext stores the identity on the gin context and on the
// request context so handlers outside gin (MCP, wrapped http.Handlers) see it.
func SetIdentityToContext(reqCtx *gin.Context, identity Identity) {
	reqCtx.Set(string(UserContextKeyIdentity), identity)
	reqCtx.Request = reqCtx.Request.WithContext(WithIdentity(reqCtx.Request.Context(), identity))
}

func GetIdentityFromContext(reqCtx *gin.Context) Identity {
	v, ok := reqCtx.Get(string(UserContextKeyIdentity))
	if !ok {
		return Anonymous()
	}
	identity, ok := v.(Identity)
	if !ok {
		return Anonymous()
	}
	return identity
}

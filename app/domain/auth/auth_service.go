package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/interfaces/http/responses"
	"square.ai/skill-gateway/app/utils/logger"
)

type AuthService struct {
	validator *TokenValidator
}

func NewAuthService(validator *TokenValidator) *AuthService {
	return &AuthService{
		validator: validator,
	}
}

// OptionalIdentityMiddleware resolves the caller when an Authorization header
// is present and falls back to the anonymous identity otherwise. A header that
// is present but unusable is still rejected.
func (s *AuthService) OptionalIdentityMiddleware() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		identity, ok := s.identify(reqCtx)
		if !ok {
			return
		}
		SetIdentityToContext(reqCtx, identity)
		reqCtx.Next()
	}
}

// RequiredIdentityMiddleware rejects anonymous callers with 401.
func (s *AuthService) RequiredIdentityMiddleware() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		identity, ok := s.identify(reqCtx)
		if !ok {
			return
		}
		if identity.IsAnonymous() {
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code:  "0b8f6a49-3c1e-4d57-9a1a-58b8c1a2a9f0",
				Error: "missing bearer token",
			})
			return
		}
		SetIdentityToContext(reqCtx, identity)
		reqCtx.Next()
	}
}

func (s *AuthService) identify(reqCtx *gin.Context) (Identity, bool) {
	token, present, err := GetTokenFromBearer(reqCtx.GetHeader("Authorization"))
	if err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "c6d6bafd-b9f3-4ebb-9c90-a21b07308ebc",
			Error: err.Error(),
		})
		return Identity{}, false
	}
	if !present {
		return Anonymous(), true
	}
	identity, err := s.validator.Validate(reqCtx.Request.Context(), token)
	if err != nil {
		code := "9d7a21c4-d94c-4451-841b-4d9333f86942"
		if errors.Is(err, ErrMissingClaim) {
			code = "6cc0aa26-148d-4b8d-8f53-9d47b2a00ef1"
		}
		logger.GetLogger().WithField("error_code", code).Debugf("token rejected: %v", err)
		reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
			Code:  code,
			Error: err.Error(),
		})
		return Identity{}, false
	}
	return identity, true
}

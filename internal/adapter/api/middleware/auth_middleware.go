package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"medialib/pkg/errors"
	"medialib/pkg/response"
)

// ContextKeyUID is where Authenticate stores the caller's uid.
const ContextKeyUID = "uid"

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		idToken, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return response.Error(c, err)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), idToken)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(ContextKeyUID, uid)
		return next(c)
	}
}

// AuthenticateQuery accepts the token from ?token= as well, for clients
// such as browsers opening a WebSocket that cannot set headers.
func (m *AuthMiddleware) AuthenticateQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		idToken := c.QueryParam("token")
		if idToken == "" {
			return m.Authenticate(next)(c)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), idToken)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(ContextKeyUID, uid)
		return next(c)
	}
}

// UID returns the authenticated caller, or "" outside Authenticate.
func UID(c echo.Context) string {
	uid, _ := c.Get(ContextKeyUID).(string)
	return uid
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}

	return parts[1], nil
}

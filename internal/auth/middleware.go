package auth

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "altiushub/internal/errors"
	"altiushub/internal/model"
)

// ClaimsContextKey is where verified claims are stored on the request context.
const ClaimsContextKey = "claims"

// Gate authorizes requests on protected routes. It extracts the bearer token,
// delegates verification to the token service, and checks the embedded role
// against the route's requirement. The gate never issues tokens: an expired
// access token gets a 401 with code AUTH_TOKEN_EXPIRED so the client knows to
// call the refresh endpoint.
type Gate struct {
	tokens *JWTService
}

// NewGate creates an authorization gate backed by the given token service.
func NewGate(tokens *JWTService) *Gate {
	return &Gate{tokens: tokens}
}

// Authenticate returns middleware that verifies the Authorization bearer
// token and stores the claims on the context. requireFresh demands a token
// issued directly from a password login.
func (g *Gate) Authenticate(requireFresh bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return g.tokens.Verify(auth, requireFresh)
		},
		ErrorHandler: gateErrorHandler,
	})
}

// RequireRole returns middleware that rejects requests whose verified claims
// do not carry the required role. Must run after Authenticate.
func (g *Gate) RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsContextKey).(*Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "missing or invalid bearer token",
					Code:  "AUTH_MISSING_TOKEN",
				})
			}
			if claims.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: "insufficient role",
					Code:  "AUTH_FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// ClaimsFromContext returns the verified claims set by Authenticate, for
// handlers that need the caller identity (audit logging, ownership checks).
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*Claims)
	return claims, ok
}

func gateErrorHandler(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "token expired, obtain a new one via the refresh endpoint",
			Code:  "AUTH_TOKEN_EXPIRED",
		})
	case errors.Is(err, ErrTokenNotFresh):
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "route requires a freshly authenticated token, log in again",
			Code:  "AUTH_TOKEN_NOT_FRESH",
		})
	case errors.Is(err, ErrTokenMalformed):
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "token malformed or signature invalid",
			Code:  "AUTH_TOKEN_MALFORMED",
		})
	default:
		// header absent or not of the form "Bearer <token>"
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "missing or invalid bearer token",
			Code:  "AUTH_MISSING_TOKEN",
		})
	}
}

package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"torqbay/internal/common"
)

// JWTCustomClaims carries the authenticated user and their role.
type JWTCustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTConfig builds the echo-jwt configuration. Verified claims land in the
// request context under the common context keys.
func NewJWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}
			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return
			}
			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.IsAdminKey, claims.Role == "admin")
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// AdminOnly rejects requests whose token does not carry the admin role.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !common.IsAdminFromContext(c.Request().Context()) {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

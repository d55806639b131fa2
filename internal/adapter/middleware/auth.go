package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"innovation-portal/internal/domain/apperr"
	"innovation-portal/internal/domain/authz"
	"innovation-portal/internal/domain/user"
	"innovation-portal/internal/infrastructure/token"
)

const actorKey = "actor"

type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// Authenticate verifies the bearer token and re-reads the caller from the store so role
// changes apply to tokens already issued.
func Authenticate(parser TokenParser, users user.Repository, log logrus.FieldLogger) echo.MiddlewareFunc {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			claims, err := parser.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": token.ErrInvalidToken.Error()})
			}
			u, err := users.GetByUserID(c.Request().Context(), claims.UserID)
			switch {
			case errors.Is(err, user.ErrNotFound):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
			case err != nil:
				log.WithError(err).WithField("user_id", claims.UserID).Warn("auth lookup failed")
				if apperr.IsUnavailable(err) || errors.Is(err, context.Canceled) {
					return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "store unavailable"})
				}
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
			c.Set(actorKey, authz.Actor{
				ID:             u.UserID,
				Email:          u.Email,
				Role:           u.Role,
				LineOfBusiness: u.LineOfBusiness,
			})
			return next(c)
		}
	}
}

// ActorFrom returns the actor set by Authenticate.
func ActorFrom(c echo.Context) (authz.Actor, bool) {
	a, ok := c.Get(actorKey).(authz.Actor)
	return a, ok
}

func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(h[len(prefix):])
	return raw, raw != ""
}

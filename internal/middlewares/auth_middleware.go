package middlewares

import (
	"net/http"

	"contaula-server/internal/logics"

	"github.com/labstack/echo/v4"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	contextKeyUsername = "auth_username"
	contextKeyRole     = "auth_role"
)

// AuthMiddleware rejects anonymous sessions. Must be chained after
// SessionMiddleware.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := GetSessionFromContext(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
		}

		username, role, ok := logics.SessionSvc.CurrentUser(sess)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
		}

		c.Set(contextKeyUsername, username)
		c.Set(contextKeyRole, role)
		return next(c)
	}
}

// AdminMiddleware rejects sessions whose cached role is not admin. Must be
// chained after AuthMiddleware. Menu visibility is advisory; this check at
// the action boundary is the one that counts.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role := CurrentRole(c)
		if err := logics.AuthzSvc.RequireAdmin(role); err != nil {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Se requiere rol de administrador"})
		}
		return next(c)
	}
}

// CurrentUsername returns the username set by AuthMiddleware.
func CurrentUsername(c echo.Context) string {
	username, _ := c.Get(contextKeyUsername).(string)
	return username
}

// CurrentRole returns the role set by AuthMiddleware.
func CurrentRole(c echo.Context) string {
	role, _ := c.Get(contextKeyRole).(string)
	return role
}

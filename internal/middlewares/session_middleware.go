package middlewares

import (
	"net/http"

	"contaula-server/internal/logics"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// sessionKeyContext is the echo context key the session is stored under.
const sessionKeyContext = "session_data"

// SessionMiddleware fetches the viewer's session, makes sure every field the
// core depends on exists, and stores it in the request context. A broken
// session cookie is reset and the request rejected.
func SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get("session", c)
		if err != nil {
			resetSessionCookie(c)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Error de sesión. Vuelva a iniciar sesión.", "dont_raise_error": "true"})
		}

		logics.SessionSvc.EnsureDefaults(sess)

		c.Set(sessionKeyContext, sess)
		return next(c)
	}
}

// resetSessionCookie clears the client's session cookie.
func resetSessionCookie(c echo.Context) {
	cookie := new(http.Cookie)
	cookie.Name = "session"
	cookie.Value = ""
	cookie.Path = "/"
	cookie.MaxAge = -1
	cookie.HttpOnly = true
	c.SetCookie(cookie)
}

// GetSessionFromContext returns the session placed by SessionMiddleware.
func GetSessionFromContext(c echo.Context) (*sessions.Session, error) {
	sessionData := c.Get(sessionKeyContext)
	if sessionData == nil {
		// Fall back to fetching directly when the middleware did not run.
		sess, err := session.Get("session", c)
		if err != nil {
			return nil, err
		}
		return sess, nil
	}

	sess, ok := sessionData.(*sessions.Session)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "invalid session type in context")
	}

	return sess, nil
}

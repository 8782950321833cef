package controllers

import (
	"net/http"

	"contaula-server/internal/logics"
	"contaula-server/internal/middlewares"

	"github.com/labstack/echo/v4"
)

// Request structs
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Response structs
type UserResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	User        UserResponse `json:"user"`
	ShowPortada bool         `json:"show_portada"`
}

type MeResponse struct {
	User        UserResponse `json:"user"`
	ShowPortada bool         `json:"show_portada"`
	Views       []string     `json:"views"`
}

// LoginHandler authenticates the viewer's session
// POST /authn/login
func LoginHandler(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Se requieren usuario y contraseña"})
	}

	sess, err := middlewares.GetSessionFromContext(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error de sesión"})
	}

	user, err := logics.SessionSvc.Login(c.Request().Context(), sess, req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error interno"})
	}
	if user == nil {
		// Save the cleared state and the generic failure message.
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error de sesión"})
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": logics.SessionSvc.LoginError(sess)})
	}

	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error de sesión"})
	}

	return c.JSON(http.StatusOK, LoginResponse{
		User:        UserResponse{Username: user.Username, Role: user.Role},
		ShowPortada: true,
	})
}

// LogoutHandler clears the session
// POST /authn/logout
func LogoutHandler(c echo.Context) error {
	sess, err := middlewares.GetSessionFromContext(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error de sesión"})
	}

	logics.SessionSvc.Logout(sess)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error de sesión"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Sesión cerrada"})
}

// MeHandler returns the current user, the portada flag and the views the
// role may reach
// GET /authn/me
func MeHandler(c echo.Context) error {
	sess, err := middlewares.GetSessionFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Error de sesión"})
	}

	username, role, ok := logics.SessionSvc.CurrentUser(sess)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
	}

	return c.JSON(http.StatusOK, MeResponse{
		User:        UserResponse{Username: username, Role: role},
		ShowPortada: logics.SessionSvc.ShowPortada(sess),
		Views:       logics.AuthzSvc.VisibleViews(role),
	})
}

// DismissPortadaHandler moves the session past the splash view
// POST /authn/portada/dismiss
func DismissPortadaHandler(c echo.Context) error {
	sess, err := middlewares.GetSessionFromContext(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error de sesión"})
	}

	logics.SessionSvc.DismissPortada(sess)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error de sesión"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

// ViewsHandler returns the view categories visible to the session's role
// GET /authn/views
func ViewsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"views": logics.AuthzSvc.VisibleViews(middlewares.CurrentRole(c)),
	})
}

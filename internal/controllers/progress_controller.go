package controllers

import (
	"net/http"

	"contaula-server/internal/auth"
	"contaula-server/internal/logics"
	"contaula-server/internal/middlewares"

	"github.com/labstack/echo/v4"
)

// GetMyProgressHandler returns the session user's progress
// GET /progress/me
func GetMyProgressHandler(c echo.Context) error {
	username := middlewares.CurrentUsername(c)

	progress, err := logics.ProgressSvc.GetProgress(c.Request().Context(), username)
	if err != nil {
		if auth.IsAuthError(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Progreso no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al consultar progreso"})
	}

	return c.JSON(http.StatusOK, progress)
}

package controllers

import (
	"net/http"

	"contaula-server/internal/auth"
	"contaula-server/internal/logics"
	"contaula-server/internal/middlewares"

	"github.com/labstack/echo/v4"
)

type CreateUserRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

type UpdateUserRequest struct {
	Password *string `json:"password" form:"password"`
	Role     *string `json:"role" form:"role"`
}

type RecordLevelRequest struct {
	Level   int     `json:"level" form:"level"`
	Score   float64 `json:"score" form:"score"`
	TimeSec int     `json:"time_sec" form:"time_sec"`
}

// ListUsersHandler returns every user
// GET /admin/users
func ListUsersHandler(c echo.Context) error {
	users, err := logics.UserSvc.ListUsers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al listar usuarios"})
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, UserResponse{Username: u.Username, Role: u.Role})
	}
	return c.JSON(http.StatusOK, response)
}

// CreateUserHandler creates a user and its progress document
// POST /admin/users
func CreateUserHandler(c echo.Context) error {
	req := new(CreateUserRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Solicitud inválida"})
	}

	user, err := logics.UserSvc.CreateUser(c.Request().Context(), req.Username, req.Password, req.Role)
	if err != nil {
		switch {
		case auth.IsAuthError(err, auth.ErrInvalidField):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Usuario o rol inválido"})
		case auth.IsAuthError(err, auth.ErrUserAlreadyExists):
			return c.JSON(http.StatusConflict, map[string]string{"error": "El usuario ya existe"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al crear usuario"})
		}
	}

	return c.JSON(http.StatusCreated, UserResponse{Username: user.Username, Role: user.Role})
}

// UpdateUserHandler changes a user's password and/or role
// PUT /admin/users/:username
func UpdateUserHandler(c echo.Context) error {
	req := new(UpdateUserRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Solicitud inválida"})
	}

	err := logics.UserSvc.UpdateUser(c.Request().Context(), c.Param("username"), req.Password, req.Role)
	if err != nil {
		switch {
		case auth.IsAuthError(err, auth.ErrInvalidField):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Nada que actualizar o rol inválido"})
		case auth.IsAuthError(err, auth.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Usuario no encontrado"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al actualizar usuario"})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Usuario actualizado"})
}

// DeleteUserHandler removes a user and its progress. Deleting oneself is
// rejected before any database call
// DELETE /admin/users/:username
func DeleteUserHandler(c echo.Context) error {
	target := c.Param("username")

	if err := logics.AuthzSvc.CheckDelete(middlewares.CurrentUsername(c), target); err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "No puede eliminar su propio usuario"})
	}

	if err := logics.UserSvc.DeleteUser(c.Request().Context(), target); err != nil {
		if auth.IsAuthError(err, auth.ErrInvalidField) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Usuario inválido"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al eliminar usuario"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Usuario eliminado"})
}

// GetUserProgressHandler returns any user's progress (admin view)
// GET /admin/users/:username/progress
func GetUserProgressHandler(c echo.Context) error {
	progress, err := logics.ProgressSvc.GetProgress(c.Request().Context(), c.Param("username"))
	if err != nil {
		if auth.IsAuthError(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Usuario no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al consultar progreso"})
	}

	return c.JSON(http.StatusOK, progress)
}

// RecordUserLevelHandler records a passed level for any user. Students never
// reach this directly; their levels are written by the exercise grader, so a
// pass cannot be self-certified
// POST /admin/users/:username/progress/level
func RecordUserLevelHandler(c echo.Context) error {
	req := new(RecordLevelRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Solicitud inválida"})
	}

	err := logics.ProgressSvc.RecordLevel(c.Request().Context(), c.Param("username"), req.Level, req.Score, req.TimeSec)
	if err != nil {
		switch {
		case auth.IsAuthError(err, auth.ErrInvalidField):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Nivel o tiempo inválido"})
		case auth.IsAuthError(err, auth.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Progreso no encontrado"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al registrar nivel"})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Nivel registrado"})
}

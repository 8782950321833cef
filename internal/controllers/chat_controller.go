package controllers

import (
	"net/http"

	"contaula-server/internal/auth"
	"contaula-server/internal/logics"
	"contaula-server/internal/middlewares"

	"github.com/labstack/echo/v4"
)

type ChatRequest struct {
	Question string `json:"question" form:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// AskHandler forwards a question to the LLM tutor
// POST /chat
func AskHandler(c echo.Context) error {
	req := new(ChatRequest)
	if err := c.Bind(req); err != nil || req.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Se requiere una pregunta"})
	}

	answer, err := logics.ChatSvc.Ask(c.Request().Context(), middlewares.CurrentUsername(c), req.Question)
	if err != nil {
		if auth.IsAuthError(err, auth.ErrInvalidField) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Se requiere una pregunta"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "El tutor no está disponible en este momento"})
	}

	return c.JSON(http.StatusOK, ChatResponse{Answer: answer})
}

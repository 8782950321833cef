package controllers

import (
	"net/http"
	"strconv"

	"contaula-server/internal/auth"
	"contaula-server/internal/logics"
	"contaula-server/internal/middlewares"
	"contaula-server/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type GradeRequest struct {
	// Inventory levels (1, 2)
	COGS            *decimal.Decimal `json:"cogs"`
	EndingInventory *decimal.Decimal `json:"ending_inventory"`
	// Depreciation levels (3, 4)
	YearExpense  *decimal.Decimal `json:"year_expense"`
	EndBookValue *decimal.Decimal `json:"end_book_value"`

	TimeSec int `json:"time_sec"`
}

type GradeResponse struct {
	*logics.GradeResult
	SurveyUnlocked bool `json:"survey_unlocked"`
}

func parseLevel(c echo.Context) (int, bool) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 1 || level > models.NumLevels {
		return 0, false
	}
	return level, true
}

// GenerateExerciseHandler hands out a fresh randomized exercise for a level
// GET /exercises/:level
func GenerateExerciseHandler(c echo.Context) error {
	level, ok := parseLevel(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Nivel inválido"})
	}

	username := middlewares.CurrentUsername(c)
	ctx := c.Request().Context()

	if level <= logics.LevelFIFO {
		exercise, err := logics.InventorySvc.Generate(ctx, username, level)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al generar ejercicio"})
		}
		return c.JSON(http.StatusOK, exercise)
	}

	exercise, err := logics.DepreciationSvc.Generate(ctx, username, level)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al generar ejercicio"})
	}
	return c.JSON(http.StatusOK, exercise)
}

// GradeExerciseHandler grades the outstanding exercise and, on a pass,
// records the level in the user's progress
// POST /exercises/:level/grade
func GradeExerciseHandler(c echo.Context) error {
	level, ok := parseLevel(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Nivel inválido"})
	}

	req := new(GradeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Solicitud inválida"})
	}

	username := middlewares.CurrentUsername(c)
	ctx := c.Request().Context()

	var result *logics.GradeResult
	var err error
	if level <= logics.LevelFIFO {
		answer := logics.InventoryAnswer{}
		if req.COGS != nil {
			answer.COGS = *req.COGS
		}
		if req.EndingInventory != nil {
			answer.EndingInventory = *req.EndingInventory
		}
		result, err = logics.InventorySvc.Grade(ctx, username, level, answer)
	} else {
		answer := logics.DepreciationAnswer{}
		if req.YearExpense != nil {
			answer.YearExpense = *req.YearExpense
		}
		if req.EndBookValue != nil {
			answer.EndBookValue = *req.EndBookValue
		}
		result, err = logics.DepreciationSvc.Grade(ctx, username, level, answer)
	}
	if err != nil {
		if auth.IsAuthError(err, auth.ErrInvalidField) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "No hay ejercicio pendiente para este nivel"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al calificar ejercicio"})
	}

	response := GradeResponse{GradeResult: result}

	if result.Passed {
		if err := logics.ProgressSvc.RecordLevel(ctx, username, level, result.Score, req.TimeSec); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error al registrar nivel"})
		}
		progress, err := logics.ProgressSvc.GetProgress(ctx, username)
		if err == nil {
			response.SurveyUnlocked = progress.SurveyUnlocked
		}
	}

	return c.JSON(http.StatusOK, response)
}

package httpEngine

import (
	"net/http"

	"contaula-server/internal/controllers"
	"contaula-server/internal/middlewares"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all the server routes
func RegisterRoutes(e *echo.Echo) {
	// Basic health check
	e.GET("/", func(c echo.Context) error {
		sess, err := session.Get("session", c)
		if err != nil {
			return err
		}
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return err
		}
		return c.String(http.StatusOK, "Hola, desde Contaula Server!")
	})

	// Authentication endpoints
	authGroup := e.Group("/authn")
	authGroup.Use(middlewares.SessionMiddleware)
	{
		authGroup.POST("/login", controllers.LoginHandler)
		authGroup.POST("/logout", controllers.LogoutHandler)
		authGroup.GET("/me", controllers.MeHandler)
		authGroup.POST("/portada/dismiss", controllers.DismissPortadaHandler)
		authGroup.GET("/views", controllers.ViewsHandler, middlewares.AuthMiddleware)
	}

	// Progress endpoints (session user only, read side). Level writes come
	// from the exercise grader or the admin API, never from the student.
	progressGroup := e.Group("/progress")
	progressGroup.Use(middlewares.SessionMiddleware, middlewares.AuthMiddleware)
	{
		progressGroup.GET("/me", controllers.GetMyProgressHandler)
	}

	// Randomized exercises, graded server-side
	exerciseGroup := e.Group("/exercises")
	exerciseGroup.Use(middlewares.SessionMiddleware, middlewares.AuthMiddleware)
	{
		exerciseGroup.GET("/:level", controllers.GenerateExerciseHandler)
		exerciseGroup.POST("/:level/grade", controllers.GradeExerciseHandler)
	}

	// LLM tutor proxy
	chatGroup := e.Group("/chat")
	chatGroup.Use(middlewares.SessionMiddleware, middlewares.AuthMiddleware)
	{
		chatGroup.POST("", controllers.AskHandler)
	}

	// Admin API endpoints (role re-checked at the action boundary)
	adminGroup := e.Group("/admin")
	adminGroup.Use(middlewares.SessionMiddleware, middlewares.AuthMiddleware, middlewares.AdminMiddleware)
	{
		adminGroup.GET("/users", controllers.ListUsersHandler)
		adminGroup.POST("/users", controllers.CreateUserHandler)
		adminGroup.PUT("/users/:username", controllers.UpdateUserHandler)
		adminGroup.DELETE("/users/:username", controllers.DeleteUserHandler)
		adminGroup.GET("/users/:username/progress", controllers.GetUserProgressHandler)
		adminGroup.POST("/users/:username/progress/level", controllers.RecordUserLevelHandler)
	}
}

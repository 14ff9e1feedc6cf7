// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"net/http"

	"github.com/deppfellow/coursehub/internal/handler"
	"github.com/deppfellow/coursehub/internal/middleware"
	"github.com/deppfellow/coursehub/internal/model"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/deppfellow/coursehub/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id feeds tracing and the request
	// logger, and the logger must exist before anything logs.
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	protected := []echo.MiddlewareFunc{middlewares.Auth.RequireAuth, middlewares.RateLimit.Limit}

	courses := api.Group("/courses")
	registerDocumentRoutes(courses, h.Course.DocumentHandler, protected)
	courses.POST("", handler.Handle(h.Course.Handler, h.Course.Create, http.StatusOK, &model.CreateCourseRequest{}), protected...)
	courses.POST("/", handler.Handle(h.Course.Handler, h.Course.Create, http.StatusOK, &model.CreateCourseRequest{}), protected...)

	lessons := api.Group("/lessons")
	registerDocumentRoutes(lessons, h.Lesson.DocumentHandler, protected)
	lessons.POST("", handler.Handle(h.Lesson.Handler, h.Lesson.Create, http.StatusOK, &model.CreateLessonRequest{}), protected...)
	lessons.POST("/", handler.Handle(h.Lesson.Handler, h.Lesson.Create, http.StatusOK, &model.CreateLessonRequest{}), protected...)

	return router
}

// registerDocumentRoutes mounts the endpoints courses and lessons share.
// Reads are public; every mutation goes through protected.
func registerDocumentRoutes[T model.Entity](g *echo.Group, h *handler.DocumentHandler[T], protected []echo.MiddlewareFunc) {
	g.GET("/test", handler.Handle(h.Handler, h.Test, http.StatusOK, &model.EmptyRequest{}))
	g.GET("", handler.Handle(h.Handler, h.List, http.StatusOK, &model.EmptyRequest{}))
	g.GET("/", handler.Handle(h.Handler, h.List, http.StatusOK, &model.EmptyRequest{}))
	g.GET("/:id", handler.Handle(h.Handler, h.GetByID, http.StatusOK, &model.DocumentIDRequest{}))

	g.DELETE("/:id", handler.Handle(h.Handler, h.Delete, http.StatusOK, &model.DocumentIDRequest{}), protected...)
	g.POST("/like/:id", handler.Handle(h.Handler, h.Like, http.StatusOK, &model.DocumentIDRequest{}), protected...)
	g.POST("/unlike/:id", handler.Handle(h.Handler, h.Unlike, http.StatusOK, &model.DocumentIDRequest{}), protected...)
	g.POST("/comment/:id", handler.Handle(h.Handler, h.AddComment, http.StatusOK, &model.AddCommentRequest{}), protected...)
	g.DELETE("/comment/:id/:comment_id", handler.Handle(h.Handler, h.RemoveComment, http.StatusOK, &model.RemoveCommentRequest{}), protected...)
}

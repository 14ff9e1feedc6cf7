// Package handler is the HTTP layer.
//
// Handlers receive bound and validated requests through Handle, pass
// them with the caller id to the service layer and return the response
// body. Errors are left to the global error handler.
package handler

import (
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/deppfellow/coursehub/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Course  *CourseHandler
	Lesson  *LessonHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Course:  NewCourseHandler(s, services.Courses),
		Lesson:  NewLessonHandler(s, services.Lessons),
	}
}

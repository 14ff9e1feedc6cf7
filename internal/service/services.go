// Package service contains the business rules.
//
// It sits between the handler and repository layers: handlers pass
// validated requests and the caller id in, services apply ownership and
// like/comment rules and talk to the repositories.
package service

import (
	"github.com/deppfellow/coursehub/internal/repository"
	"github.com/deppfellow/coursehub/internal/server"
)

type Services struct {
	Auth    *AuthService
	Courses *CourseService
	Lessons *LessonService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Auth:    NewAuthService(s),
		Courses: NewCourseService(s, repos.Courses, repos.Lessons),
		Lessons: NewLessonService(s, repos.Lessons),
	}
}

package service

import (
	"context"

	"github.com/deppfellow/coursehub/internal/model"
	"github.com/deppfellow/coursehub/internal/repository"
	"github.com/deppfellow/coursehub/internal/server"
)

// CourseService manages courses. Deleting a course also deletes its
// lessons.
type CourseService struct {
	*DocumentService[*model.Course]
	lessons repository.LessonRepository
}

func NewCourseService(s *server.Server, courses repository.CourseRepository, lessons repository.LessonRepository) *CourseService {
	svc := &CourseService{
		DocumentService: NewDocumentService[*model.Course](s, model.KindCourse, courses),
		lessons:         lessons,
	}
	svc.beforeDelete = svc.deleteLessons
	return svc
}

// deleteLessons is best effort: a lesson that cannot be removed is
// logged and skipped so the course deletion still goes through.
func (s *CourseService) deleteLessons(ctx context.Context, course *model.Course) {
	logger := s.logger(ctx).With().Str("course_id", course.ID).Logger()

	lessons, err := s.lessons.ListByCourse(ctx, course.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list lessons of deleted course")
		return
	}

	for _, lesson := range lessons {
		if err := s.lessons.Delete(ctx, lesson.ID); err != nil {
			logger.Warn().Err(err).Str("lesson_id", lesson.ID).Msg("failed to delete lesson of deleted course")
		}
	}

	logger.Info().Int("lessons", len(lessons)).Msg("deleted lessons of course")
}

// LessonService manages lessons.
type LessonService struct {
	*DocumentService[*model.Lesson]
}

func NewLessonService(s *server.Server, lessons repository.LessonRepository) *LessonService {
	return &LessonService{
		DocumentService: NewDocumentService[*model.Lesson](s, model.KindLesson, lessons),
	}
}

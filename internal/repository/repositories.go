package repository

import (
	"github.com/deppfellow/coursehub/internal/config"
	"github.com/deppfellow/coursehub/internal/model"
	"github.com/deppfellow/coursehub/internal/server"
)

// Repositories groups the repositories handed to the service layer.
type Repositories struct {
	Courses CourseRepository
	Lessons LessonRepository
}

// NewRepositories picks the implementation matching the configured
// database driver. A server without a store connection, as built in
// tests, gets the in-memory repositories.
func NewRepositories(s *server.Server) *Repositories {
	switch {
	case s.Config.Database.Driver == config.DriverMongo && s.Mongo != nil:
		db := s.Mongo.Database()
		return &Repositories{
			Courses: NewMongoDocumentRepository[*model.Course](db, "courses"),
			Lessons: NewMongoLessonRepository(db),
		}
	case s.Config.Database.Driver == config.DriverPostgres && s.DB != nil:
		return &Repositories{
			Courses: NewPostgresDocumentRepository[*model.Course](s.DB.Pool, "courses"),
			Lessons: NewPostgresLessonRepository(s.DB.Pool),
		}
	default:
		s.Logger.Warn().
			Str("driver", s.Config.Database.Driver).
			Msg("no document store connection, using in-memory repositories")
		return NewMemoryRepositories()
	}
}

func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Courses: NewMemoryDocumentRepository[*model.Course](),
		Lessons: NewMemoryLessonRepository(),
	}
}

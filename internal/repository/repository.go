// Package repository persists courses and lessons.
//
// Every document kind shares one contract, DocumentRepository, with a
// MongoDB, a PostgreSQL (JSONB) and an in-memory implementation. The
// like and comment operations are single atomic store operations, so
// concurrent requests never lose each other's updates.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/coursehub/internal/model"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrAlreadyLiked    = errors.New("document already liked by user")
	ErrNotLiked        = errors.New("document not liked by user")
	ErrCommentNotFound = errors.New("comment not found")
)

// DocumentRepository stores one kind of document. T is a pointer type
// such as *model.Course.
//
// The like and comment methods return the updated document. They return
// ErrNotFound when id does not exist, and the matching sentinel error
// when the precondition fails, without changing anything.
type DocumentRepository[T model.Entity] interface {
	// List returns all documents, newest first. It never returns nil.
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
	// Create assigns the document id, and the creation time when unset,
	// then stores doc.
	Create(ctx context.Context, doc T) (T, error)
	Delete(ctx context.Context, id string) error

	AddLike(ctx context.Context, id, userID string) (T, error)
	RemoveLike(ctx context.Context, id, userID string) (T, error)
	// AddComment prepends comment after assigning its id.
	AddComment(ctx context.Context, id string, comment model.Comment) (T, error)
	RemoveComment(ctx context.Context, id, commentID string) (T, error)
}

type CourseRepository interface {
	DocumentRepository[*model.Course]
}

type LessonRepository interface {
	DocumentRepository[*model.Lesson]
	// ListByCourse returns the lessons referencing courseID, newest first.
	ListByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error)
}

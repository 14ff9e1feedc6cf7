package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/deppfellow/coursehub/internal/model"
	"github.com/google/uuid"
)

// MemoryDocumentRepository keeps documents in a map guarded by a mutex.
// It is used by tests and local runs without a database. Stored values
// are deep copies, so callers never share state with the store.
type MemoryDocumentRepository[T model.Entity] struct {
	mu    sync.Mutex
	docs  map[string]T
	order []string
}

func NewMemoryDocumentRepository[T model.Entity]() *MemoryDocumentRepository[T] {
	return &MemoryDocumentRepository[T]{docs: make(map[string]T)}
}

func (r *MemoryDocumentRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.filter(func(T) bool { return true })
}

func (r *MemoryDocumentRepository[T]) filter(keep func(T) bool) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := []T{}
	// Walk newest insert first so equal timestamps keep a stable order.
	for i := len(r.order) - 1; i >= 0; i-- {
		doc := r.docs[r.order[i]]
		if !keep(doc) {
			continue
		}
		cp, err := clone(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, cp)
	}

	slices.SortStableFunc(docs, func(a, b T) int {
		return b.Base().CreatedAt.Compare(a.Base().CreatedAt)
	})
	return docs, nil
}

func (r *MemoryDocumentRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return clone(doc)
}

func (r *MemoryDocumentRepository[T]) Create(ctx context.Context, doc T) (T, error) {
	base := doc.Base()
	base.ID = uuid.NewString()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = time.Now().UTC()
	}
	base.Normalize()

	stored, err := clone(doc)
	if err != nil {
		var zero T
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[base.ID] = stored
	r.order = append(r.order, base.ID)
	return doc, nil
}

func (r *MemoryDocumentRepository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

func (r *MemoryDocumentRepository[T]) AddLike(ctx context.Context, id, userID string) (T, error) {
	return r.mutate(id, func(doc *model.Document) error {
		if !doc.AddLike(userID) {
			return ErrAlreadyLiked
		}
		return nil
	})
}

func (r *MemoryDocumentRepository[T]) RemoveLike(ctx context.Context, id, userID string) (T, error) {
	return r.mutate(id, func(doc *model.Document) error {
		if !doc.RemoveLike(userID) {
			return ErrNotLiked
		}
		return nil
	})
}

func (r *MemoryDocumentRepository[T]) AddComment(ctx context.Context, id string, comment model.Comment) (T, error) {
	comment.ID = uuid.NewString()
	return r.mutate(id, func(doc *model.Document) error {
		doc.AddComment(comment)
		return nil
	})
}

func (r *MemoryDocumentRepository[T]) RemoveComment(ctx context.Context, id, commentID string) (T, error) {
	return r.mutate(id, func(doc *model.Document) error {
		if !doc.RemoveComment(commentID) {
			return ErrCommentNotFound
		}
		return nil
	})
}

// mutate applies fn to a copy and only stores it when fn succeeds.
func (r *MemoryDocumentRepository[T]) mutate(id string, fn func(*model.Document) error) (T, error) {
	var zero T

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.docs[id]
	if !ok {
		return zero, ErrNotFound
	}

	next, err := clone(current)
	if err != nil {
		return zero, err
	}
	if err := fn(next.Base()); err != nil {
		return zero, err
	}

	stored, err := clone(next)
	if err != nil {
		return zero, err
	}
	r.docs[id] = stored
	return next, nil
}

func clone[T model.Entity](doc T) (T, error) {
	var out T
	raw, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("copy document: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("copy document: %w", err)
	}
	return out, nil
}

// MemoryLessonRepository adds the course lookup to the in-memory lessons.
type MemoryLessonRepository struct {
	*MemoryDocumentRepository[*model.Lesson]
}

func NewMemoryLessonRepository() *MemoryLessonRepository {
	return &MemoryLessonRepository{
		MemoryDocumentRepository: NewMemoryDocumentRepository[*model.Lesson](),
	}
}

func (r *MemoryLessonRepository) ListByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error) {
	return r.filter(func(l *model.Lesson) bool { return l.Course == courseID })
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/coursehub/internal/errs"
	"github.com/deppfellow/coursehub/internal/model"
	"github.com/deppfellow/coursehub/internal/repository"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/deppfellow/coursehub/internal/sqlerr"
	"github.com/rs/zerolog"
)

// DocumentService implements the rules shared by every document kind:
// owner-only deletion, one like per user, and comment bookkeeping.
//
// Store failures other than the repository sentinel errors are logged
// and reported to the client as the kind's not-found error.
type DocumentService[T model.Entity] struct {
	server *server.Server
	kind   string
	repo   repository.DocumentRepository[T]

	// beforeDelete runs after the ownership check, before the document
	// itself is removed.
	beforeDelete func(ctx context.Context, doc T)
}

func NewDocumentService[T model.Entity](s *server.Server, kind string, repo repository.DocumentRepository[T]) *DocumentService[T] {
	return &DocumentService[T]{server: s, kind: kind, repo: repo}
}

func (s *DocumentService[T]) List(ctx context.Context) ([]T, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		s.logger(ctx).Error().Err(err).Str("kind", s.kind).Msg("failed to list documents")
		return nil, errs.NewNoDocumentsFoundError(s.kind)
	}
	return docs, nil
}

func (s *DocumentService[T]) GetByID(ctx context.Context, id string) (T, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return doc, s.translate(ctx, "get", id, err)
	}
	return doc, nil
}

// Create stores doc as a new document owned by doc.Base().Owner.
// Store failures go through sqlerr, so constraint violations reach the
// client as 400s and anything else as a plain 500.
func (s *DocumentService[T]) Create(ctx context.Context, doc T) (T, error) {
	doc.Base().Likes = []model.Like{}
	doc.Base().Comments = []model.Comment{}

	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		s.logger(ctx).Error().Err(err).Str("kind", s.kind).Msg("failed to create document")
		return created, sqlerr.HandleError(err)
	}

	s.logger(ctx).Info().
		Str("kind", s.kind).
		Str("document_id", created.Base().ID).
		Msg("document created")
	return created, nil
}

// Delete removes the document when callerID owns it.
func (s *DocumentService[T]) Delete(ctx context.Context, id, callerID string) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.translate(ctx, "delete", id, err)
	}

	if !doc.Base().IsOwnedBy(callerID) {
		return errs.NewNotOwnerError()
	}

	if s.beforeDelete != nil {
		s.beforeDelete(ctx, doc)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(ctx, "delete", id, err)
	}

	s.logger(ctx).Info().Str("kind", s.kind).Str("document_id", id).Msg("document deleted")
	return nil
}

func (s *DocumentService[T]) Like(ctx context.Context, id, callerID string) (T, error) {
	doc, err := s.repo.AddLike(ctx, id, callerID)
	if err != nil {
		return doc, s.translate(ctx, "like", id, err)
	}
	return doc, nil
}

func (s *DocumentService[T]) Unlike(ctx context.Context, id, callerID string) (T, error) {
	doc, err := s.repo.RemoveLike(ctx, id, callerID)
	if err != nil {
		return doc, s.translate(ctx, "unlike", id, err)
	}
	return doc, nil
}

func (s *DocumentService[T]) AddComment(ctx context.Context, req *model.AddCommentRequest, callerID string) (T, error) {
	comment := model.Comment{
		User:      callerID,
		Text:      req.Text,
		Name:      req.Name,
		Avatar:    req.Avatar,
		CreatedAt: time.Now().UTC(),
	}

	doc, err := s.repo.AddComment(ctx, req.ID, comment)
	if err != nil {
		return doc, s.translate(ctx, "comment", req.ID, err)
	}
	return doc, nil
}

// RemoveComment deletes a comment by id. Any authenticated caller may
// remove any comment.
func (s *DocumentService[T]) RemoveComment(ctx context.Context, id, commentID string) (T, error) {
	doc, err := s.repo.RemoveComment(ctx, id, commentID)
	if err != nil {
		return doc, s.translate(ctx, "uncomment", id, err)
	}
	return doc, nil
}

// translate maps repository errors onto client errors.
func (s *DocumentService[T]) translate(ctx context.Context, op, id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errs.NewDocumentNotFoundError(s.kind)
	case errors.Is(err, repository.ErrAlreadyLiked):
		return errs.NewAlreadyLikedError(s.kind)
	case errors.Is(err, repository.ErrNotLiked):
		return errs.NewNotLikedError(s.kind)
	case errors.Is(err, repository.ErrCommentNotFound):
		return errs.NewCommentNotFoundError()
	}

	s.logger(ctx).Error().
		Err(err).
		Str("kind", s.kind).
		Str("operation", op).
		Str("document_id", id).
		Msg("document store failure")
	return errs.NewDocumentNotFoundError(s.kind)
}

// logger prefers the request logger carried by ctx.
func (s *DocumentService[T]) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.server.Logger
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/coursehub/internal/model"
	"github.com/deppfellow/coursehub/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of *pgxpool.Pool the Postgres repositories use.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDocumentRepository stores documents as JSONB rows of
// (id uuid, doc jsonb, created_at timestamptz). Mutations lock the row
// for the duration of one transaction.
type PostgresDocumentRepository[T model.Entity] struct {
	pool  Pool
	table string
}

func NewPostgresDocumentRepository[T model.Entity](pool Pool, table string) *PostgresDocumentRepository[T] {
	return &PostgresDocumentRepository[T]{pool: pool, table: table}
}

func (r *PostgresDocumentRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.query(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY created_at DESC`, r.table))
}

func (r *PostgresDocumentRepository[T]) query(ctx context.Context, sql string, args ...any) ([]T, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scanDocument[T](row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", r.table, err)
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

func (r *PostgresDocumentRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, r.table), id)
	doc, err := scanDocument[T](row)
	if err != nil {
		return doc, r.wrap("get", id, err)
	}
	return doc, nil
}

func (r *PostgresDocumentRepository[T]) Create(ctx context.Context, doc T) (T, error) {
	base := doc.Base()
	base.ID = uuid.NewString()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = time.Now().UTC()
	}
	base.Normalize()

	raw, err := json.Marshal(doc)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("encode %s: %w", r.table, err)
	}

	_, err = r.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, doc, created_at) VALUES ($1, $2, $3)`, r.table),
		base.ID, raw, base.CreatedAt,
	)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("insert into %s: %w", r.table, err)
	}
	return doc, nil
}

func (r *PostgresDocumentRepository[T]) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return r.wrap("delete", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresDocumentRepository[T]) AddLike(ctx context.Context, id, userID string) (T, error) {
	return r.mutate(ctx, id, func(doc *model.Document) error {
		if !doc.AddLike(userID) {
			return ErrAlreadyLiked
		}
		return nil
	})
}

func (r *PostgresDocumentRepository[T]) RemoveLike(ctx context.Context, id, userID string) (T, error) {
	return r.mutate(ctx, id, func(doc *model.Document) error {
		if !doc.RemoveLike(userID) {
			return ErrNotLiked
		}
		return nil
	})
}

func (r *PostgresDocumentRepository[T]) AddComment(ctx context.Context, id string, comment model.Comment) (T, error) {
	comment.ID = uuid.NewString()
	return r.mutate(ctx, id, func(doc *model.Document) error {
		doc.AddComment(comment)
		return nil
	})
}

func (r *PostgresDocumentRepository[T]) RemoveComment(ctx context.Context, id, commentID string) (T, error) {
	return r.mutate(ctx, id, func(doc *model.Document) error {
		if !doc.RemoveComment(commentID) {
			return ErrCommentNotFound
		}
		return nil
	})
}

// mutate runs fn against the locked row and writes the result back.
// An error from fn rolls the transaction back.
func (r *PostgresDocumentRepository[T]) mutate(ctx context.Context, id string, fn func(*model.Document) error) (T, error) {
	var zero T

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("begin %s transaction: %w", r.table, err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1 FOR UPDATE`, r.table), id)
	doc, err := scanDocument[T](row)
	if err != nil {
		return zero, r.wrap("lock", id, err)
	}

	if err := fn(doc.Base()); err != nil {
		return zero, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", r.table, err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET doc = $2 WHERE id = $1`, r.table), id, raw); err != nil {
		return zero, r.wrap("update", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("commit %s transaction: %w", r.table, err)
	}
	return doc, nil
}

// wrap turns "no row" and "not a uuid" into ErrNotFound.
func (r *PostgresDocumentRepository[T]) wrap(op, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) || sqlerr.ErrCode(err) == sqlerr.InvalidTextRepresentation {
		return ErrNotFound
	}
	return fmt.Errorf("%s %s %s: %w", op, r.table, id, err)
}

func scanDocument[T model.Entity](row pgx.Row) (T, error) {
	var (
		doc T
		raw []byte
	)
	if err := row.Scan(&raw); err != nil {
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// PostgresLessonRepository adds the course lookup to the lessons table.
type PostgresLessonRepository struct {
	*PostgresDocumentRepository[*model.Lesson]
}

func NewPostgresLessonRepository(pool Pool) *PostgresLessonRepository {
	return &PostgresLessonRepository{
		PostgresDocumentRepository: NewPostgresDocumentRepository[*model.Lesson](pool, "lessons"),
	}
}

func (r *PostgresLessonRepository) ListByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error) {
	return r.query(ctx, `SELECT doc FROM lessons WHERE doc->>'course' = $1 ORDER BY created_at DESC`, courseID)
}

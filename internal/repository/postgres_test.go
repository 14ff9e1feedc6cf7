package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/coursehub/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakePool stores JSONB rows in memory and understands exactly the
// statements PostgresDocumentRepository issues.
type fakePool struct {
	mu   sync.Mutex
	rows map[string][]byte
	sql  []string
}

func newFakePool() *fakePool {
	return &fakePool{rows: map[string][]byte{}}
}

func (p *fakePool) record(sql string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sql = append(p.sql, sql)
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{pool: p}, nil
}

func (p *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.record(sql)
	p.mu.Lock()
	defer p.mu.Unlock()

	id := args[0].(string)
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		p.rows[id] = args[1].([]byte)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "DELETE"):
		if _, ok := p.rows[id]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(p.rows, id)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected statement: " + sql)
}

func (p *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	p.record(sql)
	p.mu.Lock()
	defer p.mu.Unlock()

	id := args[0].(string)
	if id == "not-a-uuid" {
		return fakeRow{err: &pgconn.PgError{Code: "22P02"}}
	}
	raw, ok := p.rows[id]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{raw: raw}
}

func (p *fakePool) stored(t *testing.T, id string) *model.Course {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	var doc model.Course
	if err := json.Unmarshal(p.rows[id], &doc); err != nil {
		t.Fatalf("decode stored row: %v", err)
	}
	return &doc
}

type fakeRow struct {
	raw []byte
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.raw
	return nil
}

// fakeTx buffers the UPDATE until Commit. Methods the repository does
// not call fall through to the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	pool      *fakePool
	pending   map[string][]byte
	committed bool
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tx.pool.QueryRow(ctx, sql, args...)
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.pool.record(sql)
	if !strings.HasPrefix(sql, "UPDATE") {
		return pgconn.CommandTag{}, errors.New("unexpected statement: " + sql)
	}
	if tx.pending == nil {
		tx.pending = map[string][]byte{}
	}
	tx.pending[args[0].(string)] = args[1].([]byte)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.pool.mu.Lock()
	defer tx.pool.mu.Unlock()
	for id, raw := range tx.pending {
		tx.pool.rows[id] = raw
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.pending = nil
	return nil
}

func newPostgresCourse(t *testing.T, pool *fakePool) (*PostgresDocumentRepository[*model.Course], *model.Course) {
	t.Helper()
	repo := NewPostgresDocumentRepository[*model.Course](pool, "courses")
	course, err := repo.Create(context.Background(), &model.Course{
		Document: model.Document{Title: "Algebra", Description: "Intro", Owner: "alice", CreatedAt: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return repo, course
}

func TestPostgresLikeTwice(t *testing.T) {
	pool := newFakePool()
	repo, course := newPostgresCourse(t, pool)
	ctx := context.Background()

	if _, err := repo.AddLike(ctx, course.ID, "bob"); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}
	if _, err := repo.AddLike(ctx, course.ID, "bob"); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("want ErrAlreadyLiked, got %v", err)
	}

	if likes := pool.stored(t, course.ID).Likes; len(likes) != 1 || likes[0].User != "bob" {
		t.Fatalf("want exactly one like by bob, got %+v", likes)
	}

	locked := false
	for _, sql := range pool.sql {
		if strings.HasSuffix(sql, "FOR UPDATE") {
			locked = true
		}
	}
	if !locked {
		t.Fatalf("mutations must lock the row, statements: %v", pool.sql)
	}
}

func TestPostgresUnlikeWithoutLike(t *testing.T) {
	pool := newFakePool()
	repo, course := newPostgresCourse(t, pool)

	if _, err := repo.RemoveLike(context.Background(), course.ID, "bob"); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("want ErrNotLiked, got %v", err)
	}
}

func TestPostgresRemoveUnknownComment(t *testing.T) {
	pool := newFakePool()
	repo, course := newPostgresCourse(t, pool)
	ctx := context.Background()

	withComment, err := repo.AddComment(ctx, course.ID, model.Comment{User: "bob", Text: "hi"})
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	if _, err := repo.RemoveComment(ctx, course.ID, "nope"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("want ErrCommentNotFound, got %v", err)
	}

	comments := pool.stored(t, course.ID).Comments
	if len(comments) != 1 || comments[0].ID != withComment.Comments[0].ID {
		t.Fatalf("comments changed: %+v", comments)
	}

	if _, err := repo.RemoveComment(ctx, course.ID, comments[0].ID); err != nil {
		t.Fatalf("RemoveComment() error = %v", err)
	}
	if left := pool.stored(t, course.ID).Comments; len(left) != 0 {
		t.Fatalf("comment not removed: %+v", left)
	}
}

func TestPostgresMissingDocuments(t *testing.T) {
	pool := newFakePool()
	repo := NewPostgresDocumentRepository[*model.Course](pool, "courses")
	ctx := context.Background()

	for _, id := range []string{"3f1c0a52-8f0e-4a53-9d43-0c1b9a3c2e11", "not-a-uuid"} {
		if _, err := repo.GetByID(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetByID(%q): want ErrNotFound, got %v", id, err)
		}
		if _, err := repo.AddLike(ctx, id, "bob"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("AddLike(%q): want ErrNotFound, got %v", id, err)
		}
	}

	if err := repo.Delete(ctx, "3f1c0a52-8f0e-4a53-9d43-0c1b9a3c2e11"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: want ErrNotFound, got %v", err)
	}
}

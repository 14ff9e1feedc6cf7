package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/coursehub/internal/config"
	"github.com/deppfellow/coursehub/internal/errs"
	"github.com/deppfellow/coursehub/internal/model"
	"github.com/deppfellow/coursehub/internal/repository"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Auth: config.AuthConfig{Provider: config.AuthProviderJWT, SecretKey: "test-secret"},
		},
		Logger: &logger,
	}
}

type fixture struct {
	repos   *repository.Repositories
	courses *CourseService
	lessons *LessonService
}

func newFixture() *fixture {
	s := newTestServer()
	repos := repository.NewMemoryRepositories()
	return &fixture{
		repos:   repos,
		courses: NewCourseService(s, repos.Courses, repos.Lessons),
		lessons: NewLessonService(s, repos.Lessons),
	}
}

func (f *fixture) createCourse(t *testing.T, owner string) *model.Course {
	t.Helper()
	req := &model.CreateCourseRequest{Title: "Algebra", Description: "Intro"}
	course, err := f.courses.Create(context.Background(), req.Course(owner))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return course
}

func wantCode(t *testing.T, err error, code string, status int) {
	t.Helper()
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *errs.HTTPError with code %q, got %v", code, err)
	}
	if httpErr.Code != code {
		t.Fatalf("code: want=%q got=%q", code, httpErr.Code)
	}
	if httpErr.Status != status {
		t.Fatalf("status: want=%d got=%d", status, httpErr.Status)
	}
}

func TestCreateSetsOwnerAndEmptySequences(t *testing.T) {
	f := newFixture()
	course := f.createCourse(t, "alice")

	if course.Owner != "alice" {
		t.Fatalf("owner: want=%q got=%q", "alice", course.Owner)
	}
	if course.ID == "" || course.CreatedAt.IsZero() {
		t.Fatalf("expected id and creation time, got %#v", course.Document)
	}
	if len(course.Likes) != 0 || len(course.Comments) != 0 {
		t.Fatalf("expected no likes or comments, got %#v", course.Document)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.courses.GetByID(context.Background(), "missing")
	wantCode(t, err, "coursenotfound", http.StatusNotFound)

	_, err = f.lessons.GetByID(context.Background(), "missing")
	wantCode(t, err, "lessonnotfound", http.StatusNotFound)
}

func TestDeleteRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	course := f.createCourse(t, "alice")

	err := f.courses.Delete(ctx, course.ID, "bob")
	wantCode(t, err, errs.CodeNotAuthorized, http.StatusUnauthorized)

	if _, err := f.courses.GetByID(ctx, course.ID); err != nil {
		t.Fatalf("course should remain after unauthorized delete: %v", err)
	}

	if err := f.courses.Delete(ctx, course.ID, "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = f.courses.GetByID(ctx, course.ID)
	wantCode(t, err, "coursenotfound", http.StatusNotFound)
}

func TestDeleteMissing(t *testing.T) {
	err := newFixture().courses.Delete(context.Background(), "missing", "alice")
	wantCode(t, err, "coursenotfound", http.StatusNotFound)
}

func TestLikeTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	course := f.createCourse(t, "alice")

	liked, err := f.courses.Like(ctx, course.ID, "bob")
	if err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if len(liked.Likes) != 1 || liked.Likes[0].User != "bob" {
		t.Fatalf("unexpected likes %#v", liked.Likes)
	}

	_, err = f.courses.Like(ctx, course.ID, "bob")
	wantCode(t, err, errs.CodeAlreadyLiked, http.StatusBadRequest)

	got, _ := f.courses.GetByID(ctx, course.ID)
	if len(got.Likes) != 1 {
		t.Fatalf("expected exactly one like, got %#v", got.Likes)
	}
}

func TestUnlikeWithoutLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	course := f.createCourse(t, "alice")

	_, err := f.courses.Unlike(ctx, course.ID, "bob")
	wantCode(t, err, errs.CodeNotLiked, http.StatusBadRequest)

	if _, err := f.courses.Like(ctx, course.ID, "bob"); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	unliked, err := f.courses.Unlike(ctx, course.ID, "bob")
	if err != nil {
		t.Fatalf("Unlike() error = %v", err)
	}
	if len(unliked.Likes) != 0 {
		t.Fatalf("expected no likes, got %#v", unliked.Likes)
	}
}

func TestAddCommentIsFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	course := f.createCourse(t, "alice")

	for _, text := range []string{"first", "second"} {
		req := &model.AddCommentRequest{ID: course.ID, Text: text, Name: "Bob"}
		if _, err := f.courses.AddComment(ctx, req, "bob"); err != nil {
			t.Fatalf("AddComment() error = %v", err)
		}
	}

	got, err := f.courses.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	first := got.Comments[0]
	if first.Text != "second" || first.User != "bob" || first.Name != "Bob" {
		t.Fatalf("unexpected first comment %#v", first)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("expected id and date on comment %#v", first)
	}
}

func TestAddCommentMissingDocument(t *testing.T) {
	req := &model.AddCommentRequest{ID: "missing", Text: "hi"}
	_, err := newFixture().lessons.AddComment(context.Background(), req, "bob")
	wantCode(t, err, "lessonnotfound", http.StatusNotFound)
}

func TestRemoveUnknownComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	course := f.createCourse(t, "alice")

	withComment, err := f.courses.AddComment(ctx, &model.AddCommentRequest{ID: course.ID, Text: "hi"}, "bob")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	_, err = f.courses.RemoveComment(ctx, course.ID, "unknown")
	wantCode(t, err, errs.CodeCommentNotFound, http.StatusNotFound)

	got, _ := f.courses.GetByID(ctx, course.ID)
	if len(got.Comments) != 1 {
		t.Fatalf("comments changed: %#v", got.Comments)
	}

	// Removal is not restricted to the comment author.
	removed, err := f.courses.RemoveComment(ctx, course.ID, withComment.Comments[0].ID)
	if err != nil {
		t.Fatalf("RemoveComment() error = %v", err)
	}
	if len(removed.Comments) != 0 {
		t.Fatalf("expected no comments, got %#v", removed.Comments)
	}
}

func TestDeleteCourseRemovesLessons(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	course := f.createCourse(t, "alice")
	other := f.createCourse(t, "alice")

	var keep *model.Lesson
	for _, courseID := range []string{course.ID, course.ID, other.ID} {
		req := &model.CreateLessonRequest{Title: "Lesson", Description: "d", Course: courseID}
		lesson, err := f.lessons.Create(ctx, req.Lesson("alice"))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if courseID == other.ID {
			keep = lesson
		}
	}

	if err := f.courses.Delete(ctx, course.ID, "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	remaining, err := f.lessons.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != keep.ID {
		t.Fatalf("expected only the other course's lesson to remain, got %#v", remaining)
	}
}

// Scenario: A creates a course, B likes it twice, A deletes it.
func TestCourseLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	course := f.createCourse(t, "A")
	if _, err := f.courses.Like(ctx, course.ID, "B"); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	_, err := f.courses.Like(ctx, course.ID, "B")
	wantCode(t, err, errs.CodeAlreadyLiked, http.StatusBadRequest)

	if err := f.courses.Delete(ctx, course.ID, "A"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = f.courses.GetByID(ctx, course.ID)
	wantCode(t, err, "coursenotfound", http.StatusNotFound)
}

type failingCourses struct {
	repository.CourseRepository
	createErr error
}

func (f failingCourses) Create(context.Context, *model.Course) (*model.Course, error) {
	return nil, f.createErr
}

func (failingCourses) List(context.Context) ([]*model.Course, error) {
	return nil, errors.New("connection refused")
}

func (failingCourses) GetByID(context.Context, string) (*model.Course, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailuresBecomeNotFound(t *testing.T) {
	svc := NewCourseService(newTestServer(), failingCourses{}, repository.NewMemoryLessonRepository())

	_, err := svc.List(context.Background())
	wantCode(t, err, "nocoursefound", http.StatusNotFound)

	_, err = svc.GetByID(context.Background(), "any")
	wantCode(t, err, "coursenotfound", http.StatusNotFound)
}

func TestCreateFailuresAreMappedByDriverError(t *testing.T) {
	lessons := repository.NewMemoryLessonRepository()
	newCourse := func() *model.Course {
		return &model.Course{Document: model.Document{Title: "T", Description: "D", Owner: "alice"}}
	}

	duplicate := &pgconn.PgError{Code: "23505", TableName: "courses", ConstraintName: "courses_pkey"}
	svc := NewCourseService(newTestServer(), failingCourses{createErr: duplicate}, lessons)
	_, err := svc.Create(context.Background(), newCourse())
	wantCode(t, err, "COURSE_ALREADY_EXISTS", http.StatusBadRequest)

	svc = NewCourseService(newTestServer(), failingCourses{createErr: errors.New("connection reset")}, lessons)
	_, err = svc.Create(context.Background(), newCourse())
	wantCode(t, err, "INTERNAL_SERVER_ERROR", http.StatusInternalServerError)
}

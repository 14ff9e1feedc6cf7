package handler

import (
	"github.com/deppfellow/coursehub/internal/middleware"
	"github.com/deppfellow/coursehub/internal/model"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/deppfellow/coursehub/internal/service"
	"github.com/labstack/echo/v4"
)

// DocumentHandler serves the endpoints every document kind shares.
type DocumentHandler[T model.Entity] struct {
	Handler
	service  *service.DocumentService[T]
	liveness string
}

func NewDocumentHandler[T model.Entity](s *server.Server, svc *service.DocumentService[T], liveness string) *DocumentHandler[T] {
	return &DocumentHandler[T]{
		Handler:  NewHandler(s),
		service:  svc,
		liveness: liveness,
	}
}

type MessageResponse struct {
	Msg string `json:"msg"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

// Test answers without touching the store.
func (h *DocumentHandler[T]) Test(c echo.Context, _ *model.EmptyRequest) (*MessageResponse, error) {
	return &MessageResponse{Msg: h.liveness}, nil
}

func (h *DocumentHandler[T]) List(c echo.Context, _ *model.EmptyRequest) ([]T, error) {
	return h.service.List(c.Request().Context())
}

func (h *DocumentHandler[T]) GetByID(c echo.Context, req *model.DocumentIDRequest) (T, error) {
	return h.service.GetByID(c.Request().Context(), req.ID)
}

// Delete removes a document owned by the caller.
func (h *DocumentHandler[T]) Delete(c echo.Context, req *model.DocumentIDRequest) (*DeleteResponse, error) {
	if err := h.service.Delete(c.Request().Context(), req.ID, middleware.GetUserID(c)); err != nil {
		return nil, err
	}
	return &DeleteResponse{Success: true}, nil
}

// Like and Unlike return the updated document.
func (h *DocumentHandler[T]) Like(c echo.Context, req *model.DocumentIDRequest) (T, error) {
	return h.service.Like(c.Request().Context(), req.ID, middleware.GetUserID(c))
}

func (h *DocumentHandler[T]) Unlike(c echo.Context, req *model.DocumentIDRequest) (T, error) {
	return h.service.Unlike(c.Request().Context(), req.ID, middleware.GetUserID(c))
}

func (h *DocumentHandler[T]) AddComment(c echo.Context, req *model.AddCommentRequest) (T, error) {
	return h.service.AddComment(c.Request().Context(), req, middleware.GetUserID(c))
}

func (h *DocumentHandler[T]) RemoveComment(c echo.Context, req *model.RemoveCommentRequest) (T, error) {
	return h.service.RemoveComment(c.Request().Context(), req.ID, req.CommentID)
}

// CourseHandler adds course creation to the shared endpoints.
type CourseHandler struct {
	*DocumentHandler[*model.Course]
	courses *service.CourseService
}

func NewCourseHandler(s *server.Server, courses *service.CourseService) *CourseHandler {
	return &CourseHandler{
		DocumentHandler: NewDocumentHandler(s, courses.DocumentService, "Course Works"),
		courses:         courses,
	}
}

func (h *CourseHandler) Create(c echo.Context, req *model.CreateCourseRequest) (*model.Course, error) {
	return h.courses.Create(c.Request().Context(), req.Course(middleware.GetUserID(c)))
}

// LessonHandler adds lesson creation to the shared endpoints.
type LessonHandler struct {
	*DocumentHandler[*model.Lesson]
	lessons *service.LessonService
}

func NewLessonHandler(s *server.Server, lessons *service.LessonService) *LessonHandler {
	return &LessonHandler{
		DocumentHandler: NewDocumentHandler(s, lessons.DocumentService, "Lesson Works"),
		lessons:         lessons,
	}
}

func (h *LessonHandler) Create(c echo.Context, req *model.CreateLessonRequest) (*model.Lesson, error) {
	return h.lessons.Create(c.Request().Context(), req.Lesson(middleware.GetUserID(c)))
}

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/coursehub/internal/errs"
	"github.com/deppfellow/coursehub/internal/model"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/labstack/echo/v4"
)

func TestHandleBindsFreshRequest(t *testing.T) {
	h := NewHandler(&server.Server{})

	var seen []*model.AddCommentRequest
	endpoint := Handle(h, func(c echo.Context, req *model.AddCommentRequest) (*MessageResponse, error) {
		seen = append(seen, req)
		return &MessageResponse{Msg: req.ID + ":" + req.Text}, nil
	}, http.StatusCreated, &model.AddCommentRequest{})

	e := echo.New()
	e.POST("/comment/:id", endpoint)

	for _, tc := range []struct{ id, body, want string }{
		{"a", `{"text":"first","name":"Ann"}`, `{"msg":"a:first"}`},
		{"b", `{"text":"  second  "}`, `{"msg":"b:second"}`},
	} {
		req := httptest.NewRequest(http.MethodPost, "/comment/"+tc.id, strings.NewReader(tc.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status: want=%d got=%d body=%s", http.StatusCreated, rec.Code, rec.Body.String())
		}
		if got := strings.TrimSpace(rec.Body.String()); got != tc.want {
			t.Fatalf("body: want=%s got=%s", tc.want, got)
		}
	}

	if len(seen) != 2 || seen[0] == seen[1] {
		t.Fatal("each request must bind into its own value")
	}
	if seen[1].Name != "" {
		t.Fatalf("state leaked between requests: name=%q", seen[1].Name)
	}
}

func TestHandleRejectsInvalidRequest(t *testing.T) {
	h := NewHandler(&server.Server{})

	called := false
	endpoint := Handle(h, func(c echo.Context, req *model.AddCommentRequest) (*MessageResponse, error) {
		called = true
		return nil, nil
	}, http.StatusOK, &model.AddCommentRequest{})

	req := httptest.NewRequest(http.MethodPost, "/comment/a", strings.NewReader(`{"text":"   "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("a")

	err := endpoint(c)
	if called {
		t.Fatal("handler ran for an invalid request")
	}

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest {
		t.Fatalf("want a 400 HTTPError, got %v", err)
	}
	if len(httpErr.Errors) != 1 || httpErr.Errors[0].Field != "text" {
		t.Fatalf("unexpected field errors: %+v", httpErr.Errors)
	}
}

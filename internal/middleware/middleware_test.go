package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/coursehub/internal/config"
	"github.com/deppfellow/coursehub/internal/errs"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/deppfellow/coursehub/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// newTestServer uses a discarding logger rather than zerolog.Nop: a
// disabled logger is never stored in a context.
func newTestServer() *server.Server {
	logger := zerolog.New(io.Discard)
	return &server.Server{
		Config: &config.Config{
			Auth:      config.AuthConfig{Provider: config.AuthProviderJWT, SecretKey: "test-secret"},
			RateLimit: config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute},
		},
		Logger: &logger,
	}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func whoami(c echo.Context) error {
	return c.String(http.StatusOK, GetUserID(c))
}

func TestRequireAuthJWT(t *testing.T) {
	s := newTestServer()
	auth := service.NewAuthService(s)
	e := newEcho(s)
	e.GET("/me", whoami, NewAuthMiddleware(s, auth).RequireAuth)

	valid, err := auth.IssueToken("user-1", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + valid, http.StatusOK, "user-1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			if tc.status == http.StatusOK && rec.Body.String() != tc.body {
				t.Fatalf("body: want=%q got=%q", tc.body, rec.Body.String())
			}
			if tc.status == http.StatusUnauthorized {
				if body := decodeError(t, rec); body.Status != http.StatusUnauthorized {
					t.Fatalf("error body status: got %d", body.Status)
				}
			}
		})
	}
}

func TestRequireAuthClerkWithoutSession(t *testing.T) {
	s := newTestServer()
	s.Config.Auth = config.AuthConfig{Provider: config.AuthProviderClerk, SecretKey: "sk_test_unused"}

	called := false
	e := newEcho(s)
	e.GET("/me", func(c echo.Context) error {
		called = true
		return whoami(c)
	}, NewAuthMiddleware(s, service.NewAuthService(s)).RequireAuth)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if called {
		t.Fatal("handler ran without a clerk session")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=%d got=%d", http.StatusUnauthorized, rec.Code)
	}
}

type fakeCounter struct {
	hits map[string]int64
	err  error
}

func (f *fakeCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.hits[key]++
	return f.hits[key], nil
}

func TestRateLimit(t *testing.T) {
	s := newTestServer()
	limiter := NewRateLimitMiddleware(s).WithCounter(&fakeCounter{hits: map[string]int64{}})
	limiter.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC) }

	e := newEcho(s)
	e.POST("/like", whoami, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			SetUser(c, c.Request().Header.Get("X-User"))
			return next(c)
		}
	}, limiter.Limit)

	do := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/like", nil)
		req.Header.Set("X-User", user)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("alice"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: want=200 got=%d", i, rec.Code)
		}
	}

	rec := do("alice")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("want=429 got=%d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("remaining: want=0 got=%q", got)
	}

	if rec := do("bob"); rec.Code != http.StatusOK {
		t.Fatalf("other user should not be limited, got %d", rec.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	s := newTestServer()
	limiter := NewRateLimitMiddleware(s).WithCounter(&fakeCounter{err: errors.New("redis down")})

	e := newEcho(s)
	e.POST("/like", whoami, limiter.Limit)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/like", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: want=200 got=%d", i, rec.Code)
		}
	}
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	s := newTestServer()
	called := false
	next := func(c echo.Context) error { called = true; return nil }

	h := NewRateLimitMiddleware(s).Limit(next)
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	if err := h(c); err != nil || !called {
		t.Fatalf("expected pass-through, err=%v called=%v", err, called)
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, GetRequestID(c)) }, RequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Body.String() != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected incoming id to be reused, got %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\n"+strings.Repeat("x", 10))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Body.String(); len(got) != 36 {
		t.Fatalf("expected a generated uuid, got %q", got)
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	s := newTestServer()
	e := newEcho(s)
	e.GET("/liked", func(c echo.Context) error { return errs.NewAlreadyLikedError("course") })
	e.GET("/boom", func(c echo.Context) error { return errors.New("secret failure detail") })

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/liked", http.StatusBadRequest, errs.CodeAlreadyLiked},
		{"/boom", http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"/nowhere", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			body := decodeError(t, rec)
			if body.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, body.Code)
			}
			if strings.Contains(rec.Body.String(), "secret failure detail") {
				t.Fatal("internal error detail leaked to the client")
			}
		})
	}
}

func TestContextEnhancerStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	s := newTestServer()
	s.Logger = &logger

	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		l := zerolog.Ctx(c.Request().Context())
		if l.GetLevel() == zerolog.Disabled {
			return c.String(http.StatusInternalServerError, "no logger in context")
		}
		l.Info().Msg("inside handler")
		return c.NoContent(http.StatusNoContent)
	}, RequestID(), NewContextEnhancer(s).EnhanceContext())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: want=%d got=%d (%s)", http.StatusNoContent, rec.Code, rec.Body.String())
	}
	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Fatalf("request logger missing request id: %s", buf.String())
	}
}

package middleware

import (
	"github.com/deppfellow/coursehub/internal/logger"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Keys under which request state is stored in the echo context.
const (
	UserIDKey = "user_id"
	LoggerKey = "logger"
)

// ContextEnhancer gives every request its own logger carrying the
// request id, method, path, client ip and trace ids.
//
// The logger is stored in the echo context (GetLogger) and in the
// request's context.Context, where zerolog.Ctx finds it.
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer derives request loggers from the server logger.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext must run after RequestID and the New Relic
// middleware, whose ids it copies onto the logger.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			storeLogger(c, contextLogger)
			return next(c)
		}
	}
}

// SetUser records the authenticated caller on the request: in the echo
// context, on the request logger and on the New Relic transaction.
func SetUser(c echo.Context, userID string) {
	c.Set(UserIDKey, userID)

	storeLogger(c, GetLogger(c).With().Str("user_id", userID).Logger())

	if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
		txn.AddAttribute("user.id", userID)
	}
}

func storeLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
}

// GetUserID returns the authenticated caller, or "" on public routes.
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetLogger returns the request logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

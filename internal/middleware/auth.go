package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/coursehub/internal/config"
	"github.com/deppfellow/coursehub/internal/errs"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/deppfellow/coursehub/internal/service"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware resolves the caller from the Authorization header.
type AuthMiddleware struct {
	server *server.Server
	auth   *service.AuthService
}

func NewAuthMiddleware(s *server.Server, auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{server: s, auth: auth}
}

// RequireAuth rejects requests without valid bearer credentials with a
// 401 and otherwise records the caller id (see GetUserID).
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	if auth.auth.Provider() == config.AuthProviderClerk {
		return auth.requireClerk(next)
	}
	return auth.requireJWT(next)
}

func (auth *AuthMiddleware) requireJWT(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			GetLogger(c).Warn().Str("function", "RequireAuth").Msg("missing bearer token")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		userID, err := auth.auth.ParseToken(strings.TrimSpace(token))
		if err != nil {
			GetLogger(c).Warn().Err(err).Str("function", "RequireAuth").Msg("rejected bearer token")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		SetUser(c, userID)
		return next(c)
	}
}

func (auth *AuthMiddleware) requireClerk(next echo.HandlerFunc) echo.HandlerFunc {
	failure := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w.WriteHeader(http.StatusUnauthorized)

		if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
			auth.server.Logger.Error().
				Err(err).
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("failed to write JSON response")
			return
		}
		auth.server.Logger.Warn().
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("clerk rejected session token")
	})

	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(clerkhttp.AuthorizationFailureHandler(failure)),
	)(func(c echo.Context) error {
		claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
		if !ok {
			GetLogger(c).Error().Str("function", "RequireAuth").Msg("could not get session claims from context")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		SetUser(c, claims.Subject)
		return next(c)
	})
}

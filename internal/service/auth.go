package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/coursehub/internal/config"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// AuthService verifies bearer credentials.
//
// With the clerk provider the secret key is handed to the Clerk SDK and
// sessions are verified by the Clerk middleware. With the jwt provider
// tokens are HS256 JWTs signed with the same secret, and ParseToken
// returns their subject.
type AuthService struct {
	server *server.Server
	secret []byte
}

func NewAuthService(s *server.Server) *AuthService {
	if s.Config.Auth.Provider == config.AuthProviderClerk {
		clerk.SetKey(s.Config.Auth.SecretKey)
	}
	return &AuthService{
		server: s,
		secret: []byte(s.Config.Auth.SecretKey),
	}
}

func (a *AuthService) Provider() string {
	return a.server.Config.Auth.Provider
}

// ParseToken validates a jwt-provider token and returns the caller id.
func (a *AuthService) ParseToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}

// IssueToken signs a jwt-provider token for userID that expires after ttl.
func (a *AuthService) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(a.secret)
}

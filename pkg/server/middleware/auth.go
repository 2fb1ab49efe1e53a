// Package middleware holds HTTP middleware for the status API.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// SubjectKey carries the authenticated subject in the request context.
const SubjectKey contextKey = "subject"

// APIAuthenticator validates bearer tokens signed with the shared API secret
// (HS256).
type APIAuthenticator struct {
	secret []byte
}

// NewAPIAuthenticator reads the secret from BROKER_API_SECRET. An empty
// secret rejects every request.
func NewAPIAuthenticator() *APIAuthenticator {
	return &APIAuthenticator{secret: []byte(os.Getenv("BROKER_API_SECRET"))}
}

// NewAPIAuthenticatorWithSecret uses an explicit secret.
func NewAPIAuthenticatorWithSecret(secret []byte) *APIAuthenticator {
	return &APIAuthenticator{secret: secret}
}

// IssueToken signs a token for the given subject.
func (a *APIAuthenticator) IssueToken(subject string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("BROKER_API_SECRET is not set")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(a.secret)
}

// Middleware rejects requests without a valid bearer token.
func (a *APIAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization missing", http.StatusUnauthorized)
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			http.Error(w, "Malformed authorization header", http.StatusUnauthorized)
			return
		}

		if len(a.secret) == 0 {
			http.Error(w, "API authentication is not configured", http.StatusUnauthorized)
			return
		}

		token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		subject, _ := token.Claims.GetSubject()
		ctx := context.WithValue(r.Context(), SubjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package middleware

import (
	"crypto/subtle"
	"net/http"

	"catalog-api/internal/model"
	"catalog-api/internal/response"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-API-Key"

// Authentication failure messages.
const (
	MsgMissingAPIKey = "Unauthorized: missing API key"
	MsgInvalidAPIKey = "Unauthorized: invalid API key"
)

// Authenticator decides whether a request may reach the product routes.
type Authenticator interface {
	// Authenticate returns an unauthorized DomainError when r is rejected.
	Authenticate(r *http.Request) error
}

// APIKeyAuthenticator accepts requests carrying a single shared key.
type APIKeyAuthenticator struct {
	key []byte
}

// NewAPIKeyAuthenticator creates an authenticator for key.
func NewAPIKeyAuthenticator(key string) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{key: []byte(key)}
}

// Authenticate compares the X-API-Key header with the configured key in constant time.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) error {
	provided := r.Header.Get(APIKeyHeader)
	if provided == "" {
		return model.NewUnauthorizedError(MsgMissingAPIKey)
	}
	if subtle.ConstantTimeCompare([]byte(provided), a.key) != 1 {
		return model.NewUnauthorizedError(MsgInvalidAPIKey)
	}
	return nil
}

// RequireAuth rejects requests that auth does not accept.
func RequireAuth(auth Authenticator, formatter *response.Formatter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.Authenticate(r); err != nil {
				formatter.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

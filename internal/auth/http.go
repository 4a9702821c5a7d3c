// ABOUTME: HTTP middleware for authenticating dashboard API requests
// ABOUTME: Accepts a bearer JWT or the static API key checked against a bcrypt hash

package auth

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader carries the static API key as an alternative to a
// bearer token. Intended for cron jobs and health checkers that can't
// mint JWTs.
const APIKeyHeader = "X-API-Key"

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Middleware authenticates requests with either a bearer JWT or the
// static API key. A nil verifier disables JWT auth; an empty
// apiKeyHash disables key auth. With both disabled every request
// passes through unauthenticated, which is the development default.
func Middleware(verifier TokenVerifier, apiKeyHash string) func(http.Handler) http.Handler {
	enabled := verifier != nil || apiKeyHash != ""
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			if apiKeyHash != "" {
				if key := r.Header.Get(APIKeyHeader); key != "" {
					if bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(key)) == nil {
						authCtx := &AuthContext{Subject: "api-key", Method: MethodAPIKey}
						next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
						return
					}
					http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
					return
				}
			}

			if verifier == nil {
				http.Error(w, `{"error":"missing api key"}`, http.StatusUnauthorized)
				return
			}

			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				http.Error(w, `{"error":"`+errMsg+`"}`, http.StatusUnauthorized)
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			authCtx := &AuthContext{Subject: subject, Method: MethodJWT}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
		})
	}
}

// HashAPIKey produces the bcrypt hash stored in auth.api_key_hash.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

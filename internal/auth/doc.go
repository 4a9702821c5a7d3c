// Package auth provides authentication for the mission-control API.
//
// # Authentication Methods
//
// The package supports two authentication methods:
//
//   - JWT Tokens: API clients authenticate with a bearer token in the
//     Authorization header. Tokens are signed with HS256 using the
//     configured jwt_secret and carry the caller identity in "sub".
//
//   - Static API Key: scripts and health checkers send the key in the
//     X-API-Key header. Only a bcrypt hash of the key lives in the
//     config; the plaintext is never stored.
//
// When neither a JWT secret nor an API key hash is configured, the
// middleware passes every request through. That is the development
// default and matches running the dashboard against the in-memory
// store.
//
// # Middleware
//
//	mux := http.NewServeMux()
//	// ... register handlers ...
//	handler := auth.Middleware(verifier, cfg.Auth.APIKeyHash)(mux)
//
// On success the request context carries an AuthContext; handlers can
// read it with FromContext to log the caller.
//
// # Token Management
//
//	verifier := auth.NewJWTVerifier([]byte(secret))
//	token, err := verifier.Generate("svc-dashboard", 24*time.Hour)
//	subject, err := verifier.Verify(token)
package auth

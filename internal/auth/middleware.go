package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/newsdesk/internal/model"
)

// UserLoader resolves a user ID from a validated token into the full user
// record. The repository's user store satisfies it; tests supply a stub.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// contextKey is an unexported type for this package's context keys, so no
// other package can read or shadow the stored user.
type contextKey string

const userKey contextKey = "user"

// RequireUser enforces authentication on protected routes.
//
// It extracts the session token (Authorization: Bearer header, falling back
// to the "token" HttpOnly cookie), validates it, loads the user record, and
// stores the *model.User in the request context. Missing or invalid tokens
// stop the chain with 401. A token whose user no longer exists is treated the
// same way — deleting an account invalidates its outstanding tokens.
func RequireUser(tokens *TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, tokens, users)
			if err != nil || user == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalUser resolves the caller's identity if a valid token is present but
// never blocks the request. Public read routes use it so that the content
// service can apply per-role visibility: anonymous callers see only approved
// articles, while an admin browsing the same route sees everything.
func OptionalUser(tokens *TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := resolveUser(r, tokens, users); err == nil && user != nil {
				r = r.WithContext(context.WithValue(r.Context(), userKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser retrieves the authenticated caller from the request context.
// Returns (nil, false) for anonymous requests.
func CurrentUser(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// resolveUser extracts and validates the session token, then loads the user.
func resolveUser(r *http.Request, tokens *TokenService, users UserLoader) (*model.User, error) {
	tokenStr, err := extractToken(r)
	if err != nil {
		return nil, err
	}

	userID, err := tokens.Validate(tokenStr)
	if err != nil {
		return nil, err
	}

	return users.GetUserByID(r.Context(), userID)
}

// extractToken reads the session token from the Authorization header or,
// failing that, the "token" cookie. API clients use the header; the browser
// front end relies on the HttpOnly cookie set at login.
func extractToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok && tok != "" {
			return tok, nil
		}
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

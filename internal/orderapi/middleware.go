package orderapi

import (
	"context"
	"crypto/subtle"
	"net/http"
)

const SessionCookieName = "sessionid"

type ctxKey int

const userIDKey ctxKey = iota

// SessionMiddleware resolves the user from the session cookie. There are no
// real accounts: the cookie value is the user id.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookieName)
		if err != nil || c.Value == "" {
			respondJSON(w, http.StatusUnauthorized, mutationResponse{
				Success: false,
				Error:   "authentication_required",
				Message: "Please log in to continue",
			})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, c.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRFMiddleware rejects unsafe requests whose token header does not match
// the token cookie.
func CSRFMiddleware(cookieName, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			c, err := r.Cookie(cookieName)
			header := r.Header.Get(headerName)
			if err != nil || c.Value == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(header)) != 1 {
				respondJSON(w, http.StatusForbidden, mutationResponse{
					Success: false,
					Error:   "csrf_failed",
					Message: "CSRF verification failed",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

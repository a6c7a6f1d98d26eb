package middleware

import (
	"net/http"

	"github.com/alexbto/stonks/internal/session"
	"github.com/alexbto/stonks/internal/utils"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// RequireLogin resolves the session cookie to a user id and adds it to the
// request context. Requests without a valid session are redirected to the
// login page rather than answered with an error.
func RequireLogin(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			userID, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := utils.SetUserIDToContext(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NoCache marks every response as uncacheable so authenticated pages never
// linger in a shared cache or the browser history after logout.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

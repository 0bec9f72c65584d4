// Package session issues the browser-session cookie that scopes cached
// verification answers. The cookie carries no Max-Age or Expires, so the
// browser drops it when the session ends.
package session

import (
	"net/http"

	"github.com/google/uuid"

	"donorprofile/pkg/requestcontext"
)

// CookieName is the session cookie name.
const CookieName = "dp_session"

// Config controls cookie attributes.
type Config struct {
	Secure bool
}

// Middleware reads the session cookie, issuing a fresh random id when it is
// missing or malformed, and stores the id in the request context.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := fromRequest(r)
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := requestcontext.WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func fromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	parsed, err := uuid.Parse(c.Value)
	if err != nil || len(c.Value) != 36 {
		return ""
	}
	return parsed.String()
}

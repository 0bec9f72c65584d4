package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorprofile/pkg/requestcontext"
)

func serve(t *testing.T, cfg Config, cookie *http.Cookie) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	h := Middleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.SessionID(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return got, w
}

func TestMiddleware(t *testing.T) {
	t.Run("issues a session cookie without expiry", func(t *testing.T) {
		id, w := serve(t, Config{Secure: true}, nil)

		require.NotEmpty(t, id)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, CookieName, c.Name)
		assert.Equal(t, id, c.Value)
		assert.Zero(t, c.MaxAge)
		assert.True(t, c.Expires.IsZero())
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})

	t.Run("reuses a valid cookie", func(t *testing.T) {
		existing := uuid.NewString()
		id, w := serve(t, Config{}, &http.Cookie{Name: CookieName, Value: existing})

		assert.Equal(t, existing, id)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("replaces a malformed cookie", func(t *testing.T) {
		id, w := serve(t, Config{}, &http.Cookie{Name: CookieName, Value: "forged"})

		assert.NotEqual(t, "forged", id)
		assert.Len(t, w.Result().Cookies(), 1)
	})
}

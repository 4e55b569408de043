package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/session"
)

type stubResolver struct {
	sessions map[string]*session.Session
}

func (s *stubResolver) Resolve(token string) (*session.Session, error) {
	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return nil, entity.ErrSessionNotFound
}

func protectedHandler(t *testing.T, hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		require.True(t, ok)
		require.NotNil(t, sess)
		*hit = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	sess := &session.Session{ID: "tok-1"}
	resolver := &stubResolver{sessions: map[string]*session.Session{"tok-1": sess}}

	hit := false
	handler := Auth(resolver)(protectedHandler(t, &hit))

	req := httptest.NewRequest(http.MethodGet, "/chat/history", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, hit)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthAcceptsSessionCookie(t *testing.T) {
	resolver := &stubResolver{sessions: map[string]*session.Session{"tok-2": {ID: "tok-2"}}}

	hit := false
	handler := Auth(resolver)(protectedHandler(t, &hit))

	req := httptest.NewRequest(http.MethodGet, "/vat/report", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok-2"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, hit)
}

func TestAuthRejectsMissingOrUnknownToken(t *testing.T) {
	resolver := &stubResolver{}
	handler := Auth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/chat/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/chat/history", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

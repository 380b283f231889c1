package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/logger"
)

func TestAuthGate_Optional(t *testing.T) {
	tokens := fakeTokens{tokens: map[string]uint{"good": 7, "ghost": 9}}
	users := fakeUserChecker{existing: map[uint]bool{7: true}}

	tests := []struct {
		name       string
		header     string
		users      fakeUserChecker
		wantCalled bool
		wantViewer auth.Viewer
		wantStatus int
		wantBody   string
	}{
		{name: "no header", users: users, wantCalled: true, wantViewer: auth.Anonymous(), wantStatus: http.StatusNoContent},
		{name: "bearer token", header: "Bearer good", users: users, wantCalled: true, wantViewer: auth.Authenticated(7), wantStatus: http.StatusNoContent},
		{name: "raw token", header: "good", users: users, wantCalled: true, wantViewer: auth.Authenticated(7), wantStatus: http.StatusNoContent},
		{name: "invalid token", header: "Bearer forged", users: users, wantStatus: http.StatusBadRequest, wantBody: `{"message":"INVALID_TOKEN"}`},
		{name: "deleted user", header: "ghost", users: users, wantStatus: http.StatusBadRequest, wantBody: `{"message":"INVALID_USER"}`},
		{name: "storage failure", header: "good", users: fakeUserChecker{err: errBoom}, wantStatus: http.StatusInternalServerError, wantBody: `{"message":"INTERNAL_ERROR"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewAuthGate(tokens, tt.users, logger.Discard())

			called := false
			var got auth.Viewer
			h := gate.Optional(func(w http.ResponseWriter, _ *http.Request, viewer auth.Viewer) {
				called = true
				got = viewer
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/photo", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCalled {
				assert.Equal(t, tt.wantViewer, got)
			}
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequestLogger_CapturesStatus(t *testing.T) {
	h := RequestLogger(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

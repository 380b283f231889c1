package kakao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/Weplash/internal/config"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Kakao.UserInfoURL = srv.URL + "/v2/user/me"
	cfg.Kakao.Timeout = 2 * time.Second
	return NewClient(cfg, logger.Discard())
}

func TestUserProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer kakao-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"id": 1234567,
			"kakao_account": {
				"email": "kim@example.com",
				"profile": {"nickname": "Kim", "profile_image_url": "http://k/img.png"}
			}
		}`))
	})

	profile, err := c.UserProfile(context.Background(), "kakao-token")
	require.NoError(t, err)
	assert.Equal(t, &domain.KakaoProfile{
		ID:           1234567,
		Email:        "kim@example.com",
		Nickname:     "Kim",
		ProfileImage: "http://k/img.png",
	}, profile)
}

func TestUserProfile_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.UserProfile(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidKakaoToken)
}

func TestUserProfile_MissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"kakao_account":{"email":"kim@example.com"}}`))
	})

	_, err := c.UserProfile(context.Background(), "token")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestUserProfile_EmailVerification(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		verified bool
	}{
		{"valid and verified", `{"email":"kim@example.com","is_email_valid":true,"is_email_verified":true}`, true},
		{"not verified", `{"email":"kim@example.com","is_email_valid":true,"is_email_verified":false}`, false},
		{"not valid", `{"email":"kim@example.com","is_email_valid":false,"is_email_verified":true}`, false},
		{"flags missing", `{"email":"kim@example.com"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id": 7, "kakao_account": ` + tt.account + `}`))
			})

			profile, err := c.UserProfile(context.Background(), "token")
			require.NoError(t, err)
			assert.Equal(t, "kim@example.com", profile.Email)
			assert.Equal(t, tt.verified, profile.EmailVerified)
		})
	}
}

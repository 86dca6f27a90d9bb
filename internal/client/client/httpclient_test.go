package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/api"
	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func issueToken(t *testing.T, at time.Time) string {
	t.Helper()
	codec := auth.NewCodec([]byte("s"), auth.WithClock(func() time.Time { return at }))
	tok, err := codec.Issue(&models.Identity{ID: "a1", Username: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	return tok
}

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := NewHTTPClient("localhost:8080")
	require.Error(t, err)

	_, err = NewHTTPClient("://nope")
	require.Error(t, err)

	c, err := NewHTTPClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
	assert.Equal(t, "localhost", c.Host())
	assert.NoError(t, c.Close())
}

func TestHTTPClient_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got api.SignInRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, api.PathSignIn, r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)
			_ = json.NewDecoder(r.Body).Decode(&got)
			writeJSON(w, http.StatusOK, api.SignInResponse{
				AccessToken: "tok", TokenType: api.TokenTypeBearer,
				ID: "a1", Username: "admin", Name: "Admin User", Role: models.RoleAdmin,
			})
		}))
		defer ts.Close()

		c, err := NewHTTPClient(ts.URL)
		require.NoError(t, err)

		resp, err := c.Login(context.Background(), "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.AccessToken)
		assert.Equal(t, "Admin User", resp.Identity().Name)
		assert.Equal(t, api.SignInRequest{Username: "admin", Password: "admin123"}, got)
	})

	t.Run("rejected", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "Invalid credentials"})
		}))
		defer ts.Close()

		c, _ := NewHTTPClient(ts.URL)
		_, err := c.Login(context.Background(), "admin", "nope")
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.False(t, errors.Is(err, common.ErrBackendUnavailable))
	})

	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, api.MessageResponse{Message: "boom"})
		}))
		defer ts.Close()

		c, _ := NewHTTPClient(ts.URL)
		_, err := c.Login(context.Background(), "admin", "admin123")
		require.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, common.ErrBackendUnavailable)
	})

	t.Run("empty token", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, api.SignInResponse{Username: "admin"})
		}))
		defer ts.Close()

		c, _ := NewHTTPClient(ts.URL)
		_, err := c.Login(context.Background(), "admin", "admin123")
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("transport error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := ts.URL
		ts.Close()

		c, _ := NewHTTPClient(url)
		_, err := c.Login(context.Background(), "admin", "admin123")
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer ts.Close()

		c, _ := NewHTTPClient(ts.URL)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := c.Login(ctx, "admin", "admin123")
		require.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestHTTPClient_Logout(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := issueToken(t, now)
	stale := issueToken(t, now.Add(-48*time.Hour))

	var gotAuth atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, api.PathSignOut, r.URL.Path)
		gotAuth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Signed out"})
	}))
	defer ts.Close()

	c, _ := NewHTTPClient(ts.URL,
		WithTokenPeeker(auth.NewCodec(nil)),
		WithClock(func() time.Time { return now }),
	)

	require.NoError(t, c.Logout(context.Background(), fresh))
	assert.Equal(t, "Bearer "+fresh, gotAuth.Load())

	// Expired tokens are not sent, the call still goes out.
	require.NoError(t, c.Logout(context.Background(), stale))
	assert.Equal(t, "", gotAuth.Load())
}

func TestHTTPClient_VerifySession(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := issueToken(t, now)
	stale := issueToken(t, now.Add(-48*time.Hour))

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, api.PathSession, r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer "+fresh {
			writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, api.SessionResponse{Username: "admin", Role: models.RoleAdmin})
	}))
	defer ts.Close()

	c, _ := NewHTTPClient(ts.URL,
		WithTokenPeeker(auth.NewCodec(nil)),
		WithClock(func() time.Time { return now }),
	)

	resp, err := c.VerifySession(context.Background(), fresh)
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Username)
	assert.EqualValues(t, 1, calls.Load())

	_, err = c.VerifySession(context.Background(), stale)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 1, calls.Load(), "expired token must not reach the network")

	_, err = c.VerifySession(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.VerifySession(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 2, calls.Load())
}

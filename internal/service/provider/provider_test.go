package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/account-api/internal/config"
)

func TestRegistry_Get(t *testing.T) {
	google := NewGoogleVerifier(config.GoogleProviderConfig{UserInfoURL: "http://example.invalid"})
	registry := NewRegistry(google)

	t.Run("known provider", func(t *testing.T) {
		v, err := registry.Get("google")
		require.NoError(t, err)
		assert.Equal(t, Google, v.Name())
	})

	t.Run("name is trimmed and lowercased", func(t *testing.T) {
		v, err := registry.Get("  Google ")
		require.NoError(t, err)
		assert.Equal(t, Google, v.Name())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := registry.Get("apple")
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})
}

func TestIdentity_Identifier(t *testing.T) {
	withEmail := &Identity{Email: "user@example.com", Phone: "+15550001111"}
	assert.Equal(t, "user@example.com", withEmail.Identifier())

	phoneOnly := &Identity{Phone: "+15550001111"}
	assert.Equal(t, "+15550001111", phoneOnly.Identifier())
}

func TestGoogleVerifier_VerifyAssertion(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantSubject string
		wantEmail   string
	}{
		{
			name:        "valid token with sub claim",
			status:      http.StatusOK,
			body:        `{"sub":"google-sub-1","email":"User@Example.com","name":"Test User"}`,
			wantSubject: "google-sub-1",
			wantEmail:   "user@example.com",
		},
		{
			name:        "valid token with legacy id field",
			status:      http.StatusOK,
			body:        `{"id":"legacy-id-2","email":"user@example.com"}`,
			wantSubject: "legacy-id-2",
			wantEmail:   "user@example.com",
		},
		{
			name:    "rejected token",
			status:  http.StatusUnauthorized,
			body:    `{"error":"invalid_token"}`,
			wantErr: ErrInvalidAssertion,
		},
		{
			name:    "provider outage",
			status:  http.StatusBadGateway,
			body:    `upstream error`,
			wantErr: ErrUnavailable,
		},
		{
			name:    "missing subject",
			status:  http.StatusOK,
			body:    `{"email":"user@example.com"}`,
			wantErr: ErrInvalidAssertion,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer some-access-token", r.Header.Get("Authorization"))
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			verifier := NewGoogleVerifier(config.GoogleProviderConfig{UserInfoURL: srv.URL})
			identity, err := verifier.VerifyAssertion(context.Background(), "some-access-token")

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Google, identity.Provider)
			assert.Equal(t, tc.wantSubject, identity.Subject)
			assert.Equal(t, tc.wantEmail, identity.Email)
		})
	}
}

func TestGoogleVerifier_EmptyToken(t *testing.T) {
	verifier := NewGoogleVerifier(config.GoogleProviderConfig{UserInfoURL: "http://example.invalid"})
	_, err := verifier.VerifyAssertion(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestGoogleVerifier_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // шлем запрос на уже закрытый сервер

	verifier := NewGoogleVerifier(config.GoogleProviderConfig{UserInfoURL: srv.URL})
	_, err := verifier.VerifyAssertion(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFacebookVerifier_VerifyAssertion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fb-token", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"id":"fb-123","email":"fb@example.com","name":"FB User","picture":{"data":{"url":"https://cdn/pic.jpg","is_silhouette":false}}}`))
	}))
	defer srv.Close()

	verifier := NewFacebookVerifier(config.FacebookProviderConfig{UserInfoURL: srv.URL})
	identity, err := verifier.VerifyAssertion(context.Background(), "fb-token")

	require.NoError(t, err)
	assert.Equal(t, Facebook, identity.Provider)
	assert.Equal(t, "fb-123", identity.Subject)
	assert.Equal(t, "fb@example.com", identity.Email)
	assert.Equal(t, "https://cdn/pic.jpg", identity.AvatarURL)
}

func TestFacebookVerifier_SilhouetteAvatarIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"fb-456","picture":{"data":{"url":"https://cdn/default.jpg","is_silhouette":true}}}`))
	}))
	defer srv.Close()

	verifier := NewFacebookVerifier(config.FacebookProviderConfig{UserInfoURL: srv.URL})
	identity, err := verifier.VerifyAssertion(context.Background(), "fb-token")

	require.NoError(t, err)
	assert.Empty(t, identity.AvatarURL)
}

func TestFacebookVerifier_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	verifier := NewFacebookVerifier(config.FacebookProviderConfig{UserInfoURL: srv.URL})
	_, err := verifier.VerifyAssertion(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

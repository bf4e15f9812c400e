package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/account-api/internal/config"
)

// GoogleVerifier validates Google OAuth access tokens by calling the
// userinfo endpoint. A token Google accepts there proves possession of
// the account it was issued for.
type GoogleVerifier struct {
	userInfoURL string
	httpClient  *http.Client
}

func NewGoogleVerifier(cfg config.GoogleProviderConfig) *GoogleVerifier {
	return &GoogleVerifier{
		userInfoURL: cfg.UserInfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *GoogleVerifier) Name() string {
	return Google
}

type googleUserInfo struct {
	// v2 userinfo returns "id", v3 returns "sub"
	ID      string `json:"id"`
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (v *GoogleVerifier) VerifyAssertion(ctx context.Context, assertion string) (*Identity, error) {
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrInvalidAssertion)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create google userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+assertion)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: google userinfo request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// token accepted
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: google userinfo status=%d body=%s", ErrUnavailable, resp.StatusCode, string(body))
	default:
		return nil, fmt.Errorf("%w: google rejected token, status=%d", ErrInvalidAssertion, resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: failed to parse google userinfo response: %v", ErrUnavailable, err)
	}

	subject := strings.TrimSpace(info.Sub)
	if subject == "" {
		subject = strings.TrimSpace(info.ID)
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject in google userinfo", ErrInvalidAssertion)
	}

	return &Identity{
		Provider:  Google,
		Subject:   subject,
		Email:     strings.ToLower(strings.TrimSpace(info.Email)),
		Name:      strings.TrimSpace(info.Name),
		AvatarURL: strings.TrimSpace(info.Picture),
	}, nil
}

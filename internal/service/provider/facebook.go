package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourusername/account-api/internal/config"
)

// FacebookVerifier validates Facebook access tokens against the Graph API.
type FacebookVerifier struct {
	userInfoURL string
	httpClient  *http.Client
}

func NewFacebookVerifier(cfg config.FacebookProviderConfig) *FacebookVerifier {
	return &FacebookVerifier{
		userInfoURL: cfg.UserInfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *FacebookVerifier) Name() string {
	return Facebook
}

type facebookUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture struct {
		Data struct {
			URL          string `json:"url"`
			IsSilhouette bool   `json:"is_silhouette"`
		} `json:"data"`
	} `json:"picture"`
}

func (v *FacebookVerifier) VerifyAssertion(ctx context.Context, assertion string) (*Identity, error) {
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrInvalidAssertion)
	}

	query := url.Values{}
	query.Set("fields", "id,name,email,picture.width(400).height(400)")
	query.Set("access_token", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userInfoURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create facebook graph request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: facebook graph request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: facebook graph status=%d body=%s", ErrUnavailable, resp.StatusCode, string(body))
	default:
		return nil, fmt.Errorf("%w: facebook rejected token, status=%d", ErrInvalidAssertion, resp.StatusCode)
	}

	var info facebookUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: failed to parse facebook graph response: %v", ErrUnavailable, err)
	}

	if strings.TrimSpace(info.ID) == "" {
		return nil, fmt.Errorf("%w: missing subject in facebook response", ErrInvalidAssertion)
	}

	identity := &Identity{
		Provider: Facebook,
		Subject:  strings.TrimSpace(info.ID),
		Email:    strings.ToLower(strings.TrimSpace(info.Email)),
		Name:     strings.TrimSpace(info.Name),
	}
	if !info.Picture.Data.IsSilhouette {
		identity.AvatarURL = strings.TrimSpace(info.Picture.Data.URL)
	}
	return identity, nil
}

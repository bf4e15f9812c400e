package provider

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yourusername/account-api/internal/config"
)

// FirebasePhoneVerifier validates Firebase phone-auth ID tokens locally:
// the RS256 signature is checked against Google's securetoken x509
// certificates, then the issuer/audience/sign-in-provider claims are
// verified. No Firebase Admin SDK round trip is needed.
type FirebasePhoneVerifier struct {
	projectID  string
	certsURL   string
	httpClient *http.Client

	certsMu     sync.RWMutex
	certs       map[string]*rsa.PublicKey
	certsExpiry time.Time
}

func NewFirebasePhoneVerifier(cfg config.FirebaseProviderConfig) (*FirebasePhoneVerifier, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("firebase project id is required")
	}
	return &FirebasePhoneVerifier{
		projectID:  strings.TrimSpace(cfg.ProjectID),
		certsURL:   cfg.CertsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (v *FirebasePhoneVerifier) Name() string {
	return FirebasePhone
}

type firebaseIDTokenClaims struct {
	PhoneNumber string `json:"phone_number"`
	Firebase    struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

func (v *FirebasePhoneVerifier) VerifyAssertion(ctx context.Context, assertion string) (*Identity, error) {
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return nil, fmt.Errorf("%w: empty id token", ErrInvalidAssertion)
	}

	claims := &firebaseIDTokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	token, err := parser.ParseWithClaims(assertion, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("%w: missing kid header", ErrInvalidAssertion)
		}
		return v.getPublicKey(ctx, strings.TrimSpace(kid))
	})
	if err != nil {
		// jwt.ValidationError разворачивает ошибку из keyfunc,
		// недоступность сертификатов не должна считаться плохим токеном
		if errors.Is(err, ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if token == nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid firebase token", ErrInvalidAssertion)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidAssertion)
	}
	expectedIssuer := "https://securetoken.google.com/" + v.projectID
	if claims.Issuer != expectedIssuer {
		return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidAssertion)
	}
	audMatched := false
	for _, aud := range claims.Audience {
		if aud == v.projectID {
			audMatched = true
			break
		}
	}
	if !audMatched {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidAssertion)
	}
	if claims.Firebase.SignInProvider != "phone" {
		return nil, fmt.Errorf("%w: token was not issued by phone sign-in", ErrInvalidAssertion)
	}
	if strings.TrimSpace(claims.PhoneNumber) == "" {
		return nil, fmt.Errorf("%w: phone_number claim is missing", ErrInvalidAssertion)
	}

	return &Identity{
		Provider: FirebasePhone,
		Subject:  strings.TrimSpace(claims.Subject),
		Phone:    strings.TrimSpace(claims.PhoneNumber),
	}, nil
}

func (v *FirebasePhoneVerifier) getPublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := time.Now()
	v.certsMu.RLock()
	if key, ok := v.certs[kid]; ok && now.Before(v.certsExpiry) {
		v.certsMu.RUnlock()
		return key, nil
	}
	v.certsMu.RUnlock()

	if err := v.refreshCerts(ctx); err != nil {
		return nil, err
	}

	v.certsMu.RLock()
	defer v.certsMu.RUnlock()
	key, ok := v.certs[kid]
	if !ok || key == nil {
		return nil, fmt.Errorf("%w: securetoken cert not found for kid", ErrInvalidAssertion)
	}
	return key, nil
}

func (v *FirebasePhoneVerifier) refreshCerts(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create securetoken certs request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch securetoken certs: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: securetoken certs status=%d body=%s", ErrUnavailable, resp.StatusCode, string(body))
	}

	// The endpoint returns a flat map of kid -> PEM encoded x509 certificate
	var raw map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("%w: failed to decode securetoken certs: %v", ErrUnavailable, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty securetoken certs response", ErrUnavailable)
	}

	keys := make(map[string]*rsa.PublicKey, len(raw))
	for kid, pemCert := range raw {
		pub, err := parseX509RSAPublicKey(pemCert)
		if err != nil {
			continue
		}
		keys[kid] = pub
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: no usable rsa certs in securetoken response", ErrUnavailable)
	}

	ttl := parseCertsMaxAge(resp.Header.Get("Cache-Control"))
	if ttl <= 0 {
		ttl = time.Hour
	}

	v.certsMu.Lock()
	v.certs = keys
	v.certsExpiry = time.Now().Add(ttl)
	v.certsMu.Unlock()
	return nil
}

func parseX509RSAPublicKey(pemCert string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemCert))
	if block == nil {
		return nil, fmt.Errorf("invalid pem certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate does not carry an rsa key")
	}
	return pub, nil
}

func parseCertsMaxAge(cacheControl string) time.Duration {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(strings.ToLower(part), "max-age=") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(part), "max-age="))
		seconds, err := time.ParseDuration(value + "s")
		if err != nil {
			return 0
		}
		if seconds < time.Minute {
			return time.Minute
		}
		return seconds
	}
	return 0
}

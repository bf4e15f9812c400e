package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Supported provider names. The set is closed: unknown names are rejected
// before any network call.
const (
	Google        = "google"
	Facebook      = "facebook"
	FirebasePhone = "firebase_phone"
)

var (
	// ErrInvalidAssertion means the provider rejected the credential
	// (bad token, expired token, wrong audience).
	ErrInvalidAssertion = errors.New("invalid provider assertion")

	// ErrUnavailable means the provider could not be reached or answered
	// with a server error. The credential itself may still be valid.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrUnknownProvider is returned for provider names outside the supported set.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Identity is the normalized result of a verified provider assertion.
// Subject is always present; the other fields depend on the provider.
type Identity struct {
	Provider  string
	Subject   string
	Email     string
	Name      string
	Phone     string
	AvatarURL string
}

// Identifier returns the contact identifier carried by this identity:
// email for OAuth providers, phone number for firebase_phone.
func (i *Identity) Identifier() string {
	if i.Email != "" {
		return i.Email
	}
	return i.Phone
}

// Verifier validates a raw provider assertion and returns the identity it proves.
type Verifier interface {
	Name() string
	VerifyAssertion(ctx context.Context, assertion string) (*Identity, error)
}

// Registry holds the configured verifiers keyed by provider name.
type Registry struct {
	verifiers map[string]Verifier
}

// NewRegistry builds a registry from the given verifiers.
func NewRegistry(verifiers ...Verifier) *Registry {
	m := make(map[string]Verifier, len(verifiers))
	for _, v := range verifiers {
		m[v.Name()] = v
	}
	return &Registry{verifiers: m}
}

// Get returns the verifier for the provider name, or ErrUnknownProvider.
func (r *Registry) Get(name string) (Verifier, error) {
	v, ok := r.verifiers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return v, nil
}

// Names returns the sorted list of registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.verifiers))
	for name := range r.verifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

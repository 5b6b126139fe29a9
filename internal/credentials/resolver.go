package credentials

import (
	"context"
	"errors"
	"time"

	"dnspanel/internal/dns"
	"dnspanel/internal/dns/providers/cloudflare"
)

// Resolver builds a provider client for a user from their stored
// active credential, falling back to the process-wide credential when
// the user has none.
type Resolver struct {
	svc           *Service
	fallbackEmail string
	fallbackToken string
	timeout       time.Duration
}

// NewResolver creates a resolver. fallbackToken may be empty, in which
// case users without a stored credential get ErrNoActiveCredential.
func NewResolver(svc *Service, fallbackEmail, fallbackToken string, timeout time.Duration) *Resolver {
	return &Resolver{
		svc:           svc,
		fallbackEmail: fallbackEmail,
		fallbackToken: fallbackToken,
		timeout:       timeout,
	}
}

// ProviderFor resolves the provider client to use for userID
func (r *Resolver) ProviderFor(ctx context.Context, userID int) (dns.Provider, error) {
	cred, err := r.svc.Active(ctx, userID)
	if err == nil {
		return cloudflare.New(cred.APIEmail, cred.APIToken, cloudflare.WithTimeout(r.timeout)), nil
	}
	if !errors.Is(err, ErrNoActiveCredential) {
		return nil, err
	}

	if r.fallbackToken == "" {
		return nil, ErrNoActiveCredential
	}
	return cloudflare.New(r.fallbackEmail, r.fallbackToken, cloudflare.WithTimeout(r.timeout)), nil
}

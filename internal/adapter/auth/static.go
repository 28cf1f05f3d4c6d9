// internal/adapter/auth/static.go

package auth

import (
	"context"

	"mempin/internal/domain/identity"
)

// StaticTokenProvider serves a fixed access credential, typically injected
// from the environment. An empty token reads as unauthenticated.
type StaticTokenProvider struct {
	Token string
}

// AccessToken returns the configured credential.
func (p *StaticTokenProvider) AccessToken(ctx context.Context) (string, error) {
	if p.Token == "" {
		return "", identity.ErrUnauthenticated
	}
	return p.Token, nil
}

// internal/domain/identity/service.go

package identity

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when no valid credential is available.
var ErrUnauthenticated = errors.New("not authenticated")

// TokenProvider is the external identity provider boundary.
type TokenProvider interface {
	// AccessToken returns a current access credential, or
	// ErrUnauthenticated when the user has no valid session.
	AccessToken(ctx context.Context) (string, error)
}

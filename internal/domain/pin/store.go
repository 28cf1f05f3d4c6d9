// internal/domain/pin/store.go

package pin

import "context"

// CreateParams is everything the persistence backend needs to commit a pin
// record. Media URLs reference objects that were uploaded before the call.
type CreateParams struct {
	ID            string
	Title         string
	Description   string
	Lat           float64
	Lng           float64
	Address       string
	Visibility    []Visibility
	SocialCircles []string
	MediaURLs     []string
	AudioURL      string
}

// Store is the managed pin persistence backend boundary.
type Store interface {
	// CreatePin commits one pin record and returns its identifier.
	CreatePin(ctx context.Context, params CreateParams) (string, error)
}

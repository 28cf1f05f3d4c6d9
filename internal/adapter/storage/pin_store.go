// internal/adapter/storage/pin_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"mempin/internal/domain/pin"
)

// PinStore implements pin persistence on Postgres/PostGIS.
type PinStore struct {
	db *pgxpool.Pool
}

// NewPinStore creates a new pin store.
func NewPinStore(db *pgxpool.Pool) *PinStore {
	return &PinStore{
		db: db,
	}
}

// CreatePin commits one pin record referencing the already-uploaded media
// URLs. The upload run calls this exactly once, after every upload has
// succeeded.
func (s *PinStore) CreatePin(ctx context.Context, params pin.CreateParams) (string, error) {
	query := `
		INSERT INTO pins (
			id, title, description, location, address,
			visibility, social_circle_ids, media_urls, audio_url, created_at
		) VALUES (
			$1, $2, $3, ST_MakePoint($4, $5)::geography, $6,
			$7, $8, $9, $10, now()
		)
		RETURNING id
	`

	visibility := make([]string, len(params.Visibility))
	for i, v := range params.Visibility {
		visibility[i] = string(v)
	}

	var id string
	err := s.db.QueryRow(
		ctx,
		query,
		params.ID,
		params.Title,
		params.Description,
		params.Lng,
		params.Lat,
		params.Address,
		visibility,
		params.SocialCircles,
		params.MediaURLs,
		params.AudioURL,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert pin: %w", err)
	}

	return id, nil
}

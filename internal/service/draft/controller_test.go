// internal/service/draft/controller_test.go

package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mempin/internal/domain/geo"
	"mempin/internal/domain/media"
	"mempin/internal/domain/pin"
	"mempin/internal/service/geocode"
	"mempin/internal/service/upload"
)

type stubGeocoder struct{}

func (stubGeocoder) Forward(ctx context.Context, query string) (*geo.Result, error) {
	return &geo.Result{Lat: -37.81, Lng: 144.96, DisplayAddress: "Melbourne VIC"}, nil
}

func (stubGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	return "Melbourne VIC", nil
}

type stubObjectStore struct {
	fail map[string]error
}

func (s *stubObjectStore) Upload(ctx context.Context, localURI, destination string, kind pin.MediaKind) (string, error) {
	if err := s.fail[localURI]; err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + destination, nil
}

type stubPinStore struct {
	calls int
}

func (s *stubPinStore) CreatePin(ctx context.Context, params pin.CreateParams) (string, error) {
	s.calls++
	return "pin-1", nil
}

type stubTokens struct{}

func (stubTokens) AccessToken(ctx context.Context) (string, error) { return "t", nil }

type stubPerms struct{}

func (stubPerms) Request(ctx context.Context, p media.Permission) (bool, error) { return true, nil }

type stubRecording struct{}

func (stubRecording) Stop() (string, time.Duration, error) { return "/spool/rec", time.Second, nil }
func (stubRecording) Release()                             {}

type stubAudioDevice struct{}

func (stubAudioDevice) NewRecording(ctx context.Context, draftID string) (media.Recording, error) {
	return stubRecording{}, nil
}

type stubPlayback struct{}

func (stubPlayback) Play(onComplete func()) error { return nil }
func (stubPlayback) Stop()                        {}

type stubPlayer struct{}

func (stubPlayer) Load(ctx context.Context, uri string) (media.Playback, error) {
	return stubPlayback{}, nil
}

type stubCamera struct{}

func (stubCamera) Capture(ctx context.Context, draftID string) (*pin.MediaItem, error) {
	return nil, nil
}

func (stubCamera) PickFromLibrary(ctx context.Context, draftID string) (*pin.MediaItem, error) {
	return nil, nil
}

func newTestRegistry(store *stubObjectStore, pins *stubPinStore) *Registry {
	return NewRegistry(Deps{
		Geocoder:    stubGeocoder{},
		ObjectStore: store,
		Pins:        pins,
		Tokens:      stubTokens{},
		Permissions: stubPerms{},
		AudioDevice: stubAudioDevice{},
		Player:      stubPlayer{},
		Camera:      stubCamera{},
		Resolver: geocode.ResolverConfig{
			Debounce:       10 * time.Millisecond,
			MinQueryLength: 3,
			RegionBias:     "Australia",
		},
	})
}

func readyDraft(t *testing.T, c *Controller) {
	t.Helper()
	assert.NoError(t, c.SetTitle("Coffee"))
	assert.NoError(t, c.SetDescription("Great espresso"))
	assert.NoError(t, c.Resolver().AcceptDirectCoordinate(-37.81, 144.96, "Melbourne VIC"))
	assert.NoError(t, c.SelectVisibility(pin.VisibilityPublic))
	c.Session().AddItem(pin.MediaItem{LocalURI: "/spool/p1", Kind: pin.KindPhoto, DisplayName: "p1"})
}

func TestConfirmSuccessClosesSession(t *testing.T) {
	pins := &stubPinStore{}
	registry := newTestRegistry(&stubObjectStore{}, pins)
	c := registry.Create()
	readyDraft(t, c)

	progress, cancel := c.SubscribeProgress()
	defer cancel()

	result, err := c.Confirm(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "pin-1", result.PinID)
	assert.Equal(t, 1, pins.calls)
	assert.True(t, c.Closed())

	// The final snapshot reports completion.
	var last upload.Progress
	for {
		select {
		case p := <-progress:
			last = p
			continue
		default:
		}
		break
	}
	assert.Equal(t, 100, last.Percentage)

	// Every further mutation is refused.
	assert.ErrorIs(t, c.SetTitle("x"), ErrDraftClosed)
	_, err = c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrDraftClosed)
}

func TestConfirmFailureKeepsDraftForRetry(t *testing.T) {
	store := &stubObjectStore{fail: map[string]error{"/spool/p1": errors.New("reset")}}
	pins := &stubPinStore{}
	registry := newTestRegistry(store, pins)
	c := registry.Create()
	readyDraft(t, c)

	_, err := c.Confirm(context.Background())
	assert.Error(t, err)
	assert.False(t, c.Closed())
	assert.Zero(t, pins.calls)

	snap, err := c.Preview()
	assert.NoError(t, err)
	assert.Equal(t, "Coffee", snap.Title)
	assert.Len(t, snap.Media.Photos, 1)

	// Retry from the unchanged draft succeeds.
	store.fail = nil
	result, err := c.Confirm(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "pin-1", result.PinID)
}

func TestResolvedCoordinateLandsInDraft(t *testing.T) {
	registry := newTestRegistry(&stubObjectStore{}, &stubPinStore{})
	c := registry.Create()

	assert.NoError(t, c.SetLocationQuery("flinders street station"))
	time.Sleep(100 * time.Millisecond)

	snap, err := c.Preview()
	assert.NoError(t, err)
	if assert.NotNil(t, snap.Coordinate) {
		assert.Equal(t, "Melbourne VIC", snap.Coordinate.Address)
	}
	assert.Equal(t, "flinders street station", snap.LocationQuery)
}

func TestDeselectLastVisibilityRefused(t *testing.T) {
	registry := newTestRegistry(&stubObjectStore{}, &stubPinStore{})
	c := registry.Create()

	assert.Error(t, c.DeselectVisibility(pin.VisibilityPrivate))
}

func TestConfirmedSessionLeavesRegistry(t *testing.T) {
	registry := newTestRegistry(&stubObjectStore{}, &stubPinStore{})
	c := registry.Create()
	readyDraft(t, c)

	_, err := c.Confirm(context.Background())
	assert.NoError(t, err)

	_, err = registry.Get(c.ID())
	assert.ErrorIs(t, err, ErrNotFound, "published drafts must not accumulate in the registry")
}

func TestRegistryLifecycle(t *testing.T) {
	registry := newTestRegistry(&stubObjectStore{}, &stubPinStore{})
	c := registry.Create()

	got, err := registry.Get(c.ID())
	assert.NoError(t, err)
	assert.Same(t, c, got)

	registry.Remove(c.ID())
	_, err = registry.Get(c.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, c.Closed())
}

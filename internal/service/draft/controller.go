// internal/service/draft/controller.go

package draft

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"mempin/internal/domain/geo"
	"mempin/internal/domain/pin"
	"mempin/internal/service/capture"
	"mempin/internal/service/geocode"
	"mempin/internal/service/upload"
)

// ErrDraftClosed is returned by operations on a controller whose draft was
// already published or cancelled.
var ErrDraftClosed = errors.New("draft session is closed")

// ErrConfirmInFlight is returned when Confirm is called while a previous
// run is still active.
var ErrConfirmInFlight = errors.New("confirm already in flight")

// PinCreatedEvent is published after a pin record is committed.
type PinCreatedEvent struct {
	PinID      string    `json:"pin_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	MediaCount int       `json:"media_count"`
	HasAudio   bool      `json:"has_audio"`
	CreatedAt  time.Time `json:"created_at"`
}

// Controller owns one in-memory draft and wires the resolver, the capture
// session and the orchestrator together, exposing the preview -> confirm ->
// result lifecycle. The draft is single-owner: it lives here until the run
// succeeds or the session is cancelled.
type Controller struct {
	id       string
	resolver *geocode.Resolver
	session  *capture.Session
	orch     *upload.Orchestrator
	events   *nats.Conn
	subject  string
	log      *logrus.Entry
	evict    func()

	mu         sync.Mutex
	draft      *pin.Draft
	confirming bool
	closed     bool
	listeners  map[chan upload.Progress]struct{}
}

// ID returns the draft session identifier.
func (c *Controller) ID() string { return c.id }

// Session returns the capture session owning the draft's media.
func (c *Controller) Session() *capture.Session { return c.session }

// Resolver returns the location resolver bound to this draft.
func (c *Controller) Resolver() *geocode.Resolver { return c.resolver }

// SetTitle updates the draft title.
func (c *Controller) SetTitle(title string) error {
	return c.mutate(func(d *pin.Draft) { d.SetTitle(title) })
}

// SetDescription updates the draft description.
func (c *Controller) SetDescription(desc string) error {
	return c.mutate(func(d *pin.Draft) { d.SetDescription(desc) })
}

// SetLocationQuery records the raw location text and kicks the debounced
// resolver.
func (c *Controller) SetLocationQuery(text string) error {
	if err := c.mutate(func(d *pin.Draft) { d.SetLocationQuery(text) }); err != nil {
		return err
	}
	c.resolver.OnQueryTextChanged(text)
	return nil
}

// SelectVisibility adds a visibility option under the exclusivity rules.
func (c *Controller) SelectVisibility(v pin.Visibility) error {
	return c.mutate(func(d *pin.Draft) { d.Select(v) })
}

// DeselectVisibility removes a visibility option unless it is the last one.
func (c *Controller) DeselectVisibility(v pin.Visibility) error {
	var removed bool
	if err := c.mutate(func(d *pin.Draft) { removed = d.Deselect(v) }); err != nil {
		return err
	}
	if !removed {
		return errors.New("at least one visibility option must stay selected")
	}
	return nil
}

// SetSocialCircles replaces the selected circle ids.
func (c *Controller) SetSocialCircles(ids []string) error {
	return c.mutate(func(d *pin.Draft) { d.SetSocialCircles(ids) })
}

// Preview returns a read-only snapshot of the draft.
func (c *Controller) Preview() (pin.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return pin.Draft{}, ErrDraftClosed
	}
	return c.draft.Snapshot(), nil
}

// SubscribeProgress registers a listener for upload progress snapshots.
// The returned cancel function must be called when the listener goes away.
func (c *Controller) SubscribeProgress() (<-chan upload.Progress, func()) {
	ch := make(chan upload.Progress, 16)

	c.mu.Lock()
	c.listeners[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.listeners, ch)
		c.mu.Unlock()
	}
	return ch, cancel
}

// Confirm executes one upload run over the current draft. On success the
// draft is discarded and the controller closes; on failure the draft is
// left untouched so the user can retry without re-entering anything.
func (c *Controller) Confirm(ctx context.Context) (*upload.Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrDraftClosed
	}
	if c.confirming {
		c.mu.Unlock()
		return nil, ErrConfirmInFlight
	}
	c.confirming = true
	snap := c.draft.Snapshot()
	c.mu.Unlock()

	result, err := c.orch.Run(ctx, snap, c.broadcast)

	c.mu.Lock()
	c.confirming = false
	if err == nil {
		c.closed = true
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}

	c.session.Teardown()
	c.resolver.Close()
	if c.evict != nil {
		c.evict()
	}
	c.publishCreated(snap, result.PinID)
	return result, nil
}

// Cancel discards the draft and releases every live resource.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.session.Teardown()
	c.resolver.Close()
}

// Closed reports whether the draft has been published or cancelled.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func (c *Controller) mutate(fn func(*pin.Draft)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrDraftClosed
	}
	fn(c.draft)
	return nil
}

// applyCoordinate is the resolver callback; it replaces the draft
// coordinate whole, leaving every other field untouched.
func (c *Controller) applyCoordinate(coord geo.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if err := c.draft.SetCoordinate(coord); err != nil {
		c.log.WithError(err).Warn("resolved coordinate rejected")
	}
}

func (c *Controller) broadcast(p upload.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ch := range c.listeners {
		select {
		case ch <- p:
		default:
			// Slow listener; drop rather than stall the run.
		}
	}
}

func (c *Controller) publishCreated(snap pin.Draft, pinID string) {
	if c.events == nil {
		return
	}

	event := PinCreatedEvent{
		PinID:      pinID,
		Lat:        snap.Coordinate.Lat,
		Lng:        snap.Coordinate.Lng,
		MediaCount: len(snap.Media.Photos) + len(snap.Media.Videos),
		HasAudio:   snap.Media.Audio != nil,
		CreatedAt:  time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.WithError(err).Error("marshal pin created event")
		return
	}
	if err := c.events.Publish(c.subject, payload); err != nil {
		c.log.WithError(err).Warn("publish pin created event")
	}
}

// internal/service/draft/registry.go

package draft

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"mempin/internal/domain/geo"
	"mempin/internal/domain/identity"
	"mempin/internal/domain/media"
	"mempin/internal/domain/pin"
	"mempin/internal/service/capture"
	"mempin/internal/service/geocode"
	"mempin/internal/service/upload"
)

// ErrNotFound is returned when no active session matches an id.
var ErrNotFound = errors.New("draft session not found")

// Deps bundles the collaborators every draft session needs.
type Deps struct {
	Geocoder    geo.Geocoder
	ObjectStore upload.ObjectStore
	Pins        pin.Store
	Tokens      identity.TokenProvider
	Permissions media.PermissionRequester
	AudioDevice media.AudioDevice
	Player      media.Player
	Camera      media.Camera

	Resolver         geocode.ResolverConfig
	GeocodeRateLimit time.Duration

	Events       *nats.Conn
	EventSubject string

	Log *logrus.Entry
}

// Registry tracks the active draft sessions, one controller per draft.
type Registry struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Controller
}

// NewRegistry creates an empty session registry.
func NewRegistry(deps Deps) *Registry {
	if deps.Log == nil {
		deps.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if deps.EventSubject == "" {
		deps.EventSubject = "pins.created"
	}
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Controller),
	}
}

// Create starts a new draft session and returns its controller.
func (r *Registry) Create() *Controller {
	id := uuid.NewString()
	log := r.deps.Log.WithField("draft_id", id)

	c := &Controller{
		id:        id,
		draft:     pin.NewDraft(id),
		events:    r.deps.Events,
		subject:   r.deps.EventSubject,
		log:       log,
		listeners: make(map[chan upload.Progress]struct{}),
	}
	// A published draft leaves the registry so closed sessions don't
	// accumulate. Cancelled ones leave through Remove.
	c.evict = func() {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
	}

	c.resolver = geocode.NewResolver(
		r.deps.Geocoder,
		geocode.NewCache(),
		geocode.NewIntervalLimiter(r.deps.GeocodeRateLimit),
		r.deps.Resolver,
		c.applyCoordinate,
		log,
	)
	c.session = capture.NewSession(
		r.deps.Permissions,
		r.deps.AudioDevice,
		r.deps.Player,
		r.deps.Camera,
		c.draft,
		log,
	)
	c.orch = upload.NewOrchestrator(r.deps.ObjectStore, r.deps.Pins, r.deps.Tokens, log)

	r.mu.Lock()
	r.sessions[id] = c
	r.mu.Unlock()

	return c
}

// Get returns the controller for an active session.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Remove cancels a session and drops it from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		c.Cancel()
	}
}

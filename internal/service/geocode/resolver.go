// internal/service/geocode/resolver.go

package geocode

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mempin/internal/domain/geo"
)

// ResolverConfig contains tunables for the resolver.
type ResolverConfig struct {
	// Debounce is the quiet period after the last keystroke before a
	// resolution attempt fires.
	Debounce time.Duration

	// MinQueryLength is the shortest normalized query worth resolving.
	MinQueryLength int

	// RegionBias is appended to every forward query to bias provider
	// results toward the app's home region.
	RegionBias string
}

// DefaultResolverConfig returns the resolver defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Debounce:       time.Second,
		MinQueryLength: 3,
		RegionBias:     "Australia",
	}
}

// Resolver turns free-text location input into draft coordinates. It
// debounces keystrokes, consults the session cache, self-throttles
// outbound requests, and guards against stale results with a request
// sequence number so only the newest resolution is ever applied.
//
// Forward-geocoding failures are deliberately silent: the previous
// coordinate is kept and the next edit retries naturally. Reverse
// geocoding never leaves the address blank; it falls back to formatting
// the raw pair.
type Resolver struct {
	geocoder geo.Geocoder
	cache    *Cache
	limiter  *IntervalLimiter
	cfg      ResolverConfig
	apply    func(geo.Coordinate)
	log      *logrus.Entry

	mu         sync.Mutex
	timer      *time.Timer
	latestText string
	seq        uint64 // last issued resolution sequence
	applied    uint64 // highest sequence whose result was applied
}

// NewResolver creates a resolver. The apply callback receives every
// accepted coordinate update; the caller decides what owns it.
func NewResolver(
	geocoder geo.Geocoder,
	cache *Cache,
	limiter *IntervalLimiter,
	cfg ResolverConfig,
	apply func(geo.Coordinate),
	log *logrus.Entry,
) *Resolver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		limiter:  limiter,
		cfg:      cfg,
		apply:    apply,
		log:      log,
	}
}

// OnQueryTextChanged records the latest raw text and (re)starts the
// debounce timer. Only the most recent call within the window fires; all
// earlier pending timers are cancelled.
func (r *Resolver) OnQueryTextChanged(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latestText = text
	if r.timer != nil {
		r.timer.Stop()
	}
	// The callback reads latestText rather than capturing text, so a
	// timer that slips past Stop still resolves the newest input.
	r.timer = time.AfterFunc(r.cfg.Debounce, func() {
		r.mu.Lock()
		latest := r.latestText
		r.mu.Unlock()
		r.ResolveNow(context.Background(), latest)
	})
}

// ResolveNow attempts a resolution for the given text immediately. Short
// queries no-op. A cache hit applies synchronously with no network call.
// On a miss the rate limiter decides whether a request goes out at all; a
// throttled attempt is skipped silently and retried only by the next
// debounce trigger.
func (r *Resolver) ResolveNow(ctx context.Context, text string) {
	normalized := Normalize(text)
	if len(normalized) < r.cfg.MinQueryLength {
		return
	}

	if entry, ok := r.cache.Lookup(normalized); ok {
		r.applyNewest(geo.Coordinate{Lat: entry.Lat, Lng: entry.Lng, Address: entry.Address})
		return
	}

	if !r.limiter.TryAcquire() {
		r.log.WithField("query", normalized).Debug("geocode attempt throttled")
		return
	}

	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	result, err := r.geocoder.Forward(ctx, text+", "+r.cfg.RegionBias)
	if err != nil {
		r.log.WithError(err).WithField("query", normalized).Debug("forward geocode failed")
		return
	}
	if result == nil {
		return
	}
	if err := geo.ValidateRange(result.Lat, result.Lng); err != nil {
		r.log.WithError(err).Warn("geocoder returned out-of-range coordinate")
		return
	}

	r.cache.Insert(normalized, Entry{
		Lat:        result.Lat,
		Lng:        result.Lng,
		Address:    result.DisplayAddress,
		ResolvedAt: time.Now(),
	})

	coord := geo.Coordinate{Lat: result.Lat, Lng: result.Lng, Address: result.DisplayAddress}

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq <= r.applied {
		// A newer resolution already landed; discard this one.
		return
	}
	r.applied = seq
	r.apply(coord)
}

// ResolveFromCoordinates reverse-geocodes a pair into a display address.
// The address is never left blank: on provider failure or an empty answer
// the raw pair is formatted instead.
func (r *Resolver) ResolveFromCoordinates(ctx context.Context, lat, lng float64) error {
	if err := geo.ValidateRange(lat, lng); err != nil {
		return err
	}

	address, err := r.geocoder.Reverse(ctx, lat, lng)
	if err != nil || address == "" {
		if err != nil {
			r.log.WithError(err).Debug("reverse geocode failed, using formatted fallback")
		}
		address = geo.FormatLatLng(lat, lng)
	}

	r.applyNewest(geo.Coordinate{Lat: lat, Lng: lng, Address: address})
	return nil
}

// AcceptDirectCoordinate applies a coordinate from GPS or a manual source
// without any network call. The pending debounce, if any, is cancelled and
// any in-flight resolution becomes stale.
func (r *Resolver) AcceptDirectCoordinate(lat, lng float64, label string) error {
	if err := geo.ValidateRange(lat, lng); err != nil {
		return err
	}

	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()

	r.applyNewest(geo.Coordinate{Lat: lat, Lng: lng, Address: label})
	return nil
}

// AcceptPinDrag applies a dragged-pin coordinate, synthesizing the address
// from the raw pair since no semantic address is known.
func (r *Resolver) AcceptPinDrag(lat, lng float64) error {
	return r.AcceptDirectCoordinate(lat, lng, geo.FormatLatLng(lat, lng))
}

// Close cancels any pending debounce timer.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// applyNewest applies a coordinate as the newest resolution, superseding
// every in-flight request.
func (r *Resolver) applyNewest(coord geo.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.applied = r.seq
	r.apply(coord)
}

// internal/domain/pin/model.go

package pin

import (
	"time"

	"mempin/internal/domain/geo"
)

// Visibility controls who can see a pin once it is published.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilitySocial  Visibility = "social"
	VisibilityPrivate Visibility = "private"
)

// MediaKind identifies the class of a captured media item.
type MediaKind string

const (
	KindPhoto MediaKind = "photo"
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// MediaItem is one captured photo or video, addressed by its on-device URI
// until an upload run produces a remote URL for it.
type MediaItem struct {
	LocalURI    string
	Kind        MediaKind
	DisplayName string
}

// AudioItem is the single optional voice note attached to a draft.
type AudioItem struct {
	LocalURI string
	Duration time.Duration // hint only, zero when unknown
}

// Media groups the draft's attachments. Photos and videos keep insertion
// order; that order drives the preview gallery.
type Media struct {
	Photos []MediaItem
	Videos []MediaItem
	Audio  *AudioItem
}

// Draft is the in-progress pin being authored. It has a single owner (the
// active creation session) and is mutated only through its methods so the
// visibility and coordinate invariants hold at all times.
type Draft struct {
	ID            string
	Title         string
	Description   string
	LocationQuery string
	Coordinate    *geo.Coordinate
	Visibility    []Visibility
	SocialCircles []string
	Media         Media
	CreatedAt     time.Time
}

// NewDraft creates an empty draft. Visibility starts as private so the
// never-empty invariant holds from the first moment.
func NewDraft(id string) *Draft {
	return &Draft{
		ID:         id,
		Visibility: []Visibility{VisibilityPrivate},
		CreatedAt:  time.Now(),
	}
}

// SetTitle replaces the draft title.
func (d *Draft) SetTitle(title string) {
	d.Title = title
}

// SetDescription replaces the draft description.
func (d *Draft) SetDescription(desc string) {
	d.Description = desc
}

// SetLocationQuery records the raw text the user typed into the location
// field. Resolution into a coordinate happens elsewhere.
func (d *Draft) SetLocationQuery(text string) {
	d.LocationQuery = text
}

// SetCoordinate replaces the draft coordinate after range validation.
// An out-of-range pair is rejected and the previous coordinate is kept.
func (d *Draft) SetCoordinate(c geo.Coordinate) error {
	if err := geo.ValidateRange(c.Lat, c.Lng); err != nil {
		return err
	}
	d.Coordinate = &c
	return nil
}

// SetAddress updates only the display address of the current coordinate.
// A draft without a coordinate ignores the call.
func (d *Draft) SetAddress(addr string) {
	if d.Coordinate == nil {
		return
	}
	d.Coordinate.Address = addr
}

// Select adds a visibility option, enforcing the exclusivity rules:
// public clears social/private and any selected circles, while social or
// private removes public.
func (d *Draft) Select(v Visibility) {
	if v == VisibilityPublic {
		d.Visibility = []Visibility{VisibilityPublic}
		d.SocialCircles = nil
		return
	}
	kept := d.Visibility[:0]
	for _, existing := range d.Visibility {
		if existing == VisibilityPublic || existing == v {
			continue
		}
		kept = append(kept, existing)
	}
	d.Visibility = append(kept, v)
}

// Deselect removes a visibility option. Removing the last selected option
// is refused so the set is never empty.
func (d *Draft) Deselect(v Visibility) bool {
	if len(d.Visibility) == 1 && d.Visibility[0] == v {
		return false
	}
	kept := d.Visibility[:0]
	for _, existing := range d.Visibility {
		if existing == v {
			continue
		}
		kept = append(kept, existing)
	}
	d.Visibility = kept
	return true
}

// HasVisibility reports whether an option is currently selected.
func (d *Draft) HasVisibility(v Visibility) bool {
	for _, existing := range d.Visibility {
		if existing == v {
			return true
		}
	}
	return false
}

// SetSocialCircles replaces the selected circle ids. Selecting circles
// implies social visibility.
func (d *Draft) SetSocialCircles(ids []string) {
	d.SocialCircles = append([]string(nil), ids...)
	if !d.HasVisibility(VisibilitySocial) {
		d.Select(VisibilitySocial)
	}
}

// Snapshot returns a deep copy of the draft for a read-only upload run.
func (d *Draft) Snapshot() Draft {
	snap := *d
	if d.Coordinate != nil {
		c := *d.Coordinate
		snap.Coordinate = &c
	}
	snap.Visibility = append([]Visibility(nil), d.Visibility...)
	snap.SocialCircles = append([]string(nil), d.SocialCircles...)
	snap.Media.Photos = append([]MediaItem(nil), d.Media.Photos...)
	snap.Media.Videos = append([]MediaItem(nil), d.Media.Videos...)
	if d.Media.Audio != nil {
		a := *d.Media.Audio
		snap.Media.Audio = &a
	}
	return snap
}

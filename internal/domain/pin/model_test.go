// internal/domain/pin/model_test.go

package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mempin/internal/domain/geo"
)

func TestNewDraftStartsPrivate(t *testing.T) {
	d := NewDraft("d1")
	assert.Equal(t, []Visibility{VisibilityPrivate}, d.Visibility, "visibility may never be empty")
}

func TestSelectPublicClearsSocialAndCircles(t *testing.T) {
	d := NewDraft("d1")
	d.Select(VisibilitySocial)
	d.SetSocialCircles([]string{"c1", "c2"})

	d.Select(VisibilityPublic)

	assert.Equal(t, []Visibility{VisibilityPublic}, d.Visibility)
	assert.Empty(t, d.SocialCircles)
}

func TestSelectSocialOrPrivateRemovesPublic(t *testing.T) {
	d := NewDraft("d1")
	d.Select(VisibilityPublic)

	d.Select(VisibilitySocial)
	assert.False(t, d.HasVisibility(VisibilityPublic))
	assert.True(t, d.HasVisibility(VisibilitySocial))

	d.Select(VisibilityPrivate)
	assert.True(t, d.HasVisibility(VisibilitySocial))
	assert.True(t, d.HasVisibility(VisibilityPrivate))
}

func TestSelectIsIdempotent(t *testing.T) {
	d := NewDraft("d1")
	d.Select(VisibilitySocial)
	d.Select(VisibilitySocial)

	assert.Equal(t, []Visibility{VisibilitySocial}, d.Visibility)
}

func TestDeselectRefusesEmptyingTheSet(t *testing.T) {
	d := NewDraft("d1")

	assert.False(t, d.Deselect(VisibilityPrivate))
	assert.Equal(t, []Visibility{VisibilityPrivate}, d.Visibility)

	d.Select(VisibilitySocial)
	assert.True(t, d.Deselect(VisibilityPrivate))
	assert.Equal(t, []Visibility{VisibilitySocial}, d.Visibility)
}

func TestSetCoordinateRejectsOutOfRange(t *testing.T) {
	d := NewDraft("d1")
	assert.NoError(t, d.SetCoordinate(geo.Coordinate{Lat: -37.81, Lng: 144.96, Address: "Melbourne"}))

	err := d.SetCoordinate(geo.Coordinate{Lat: 120, Lng: 0})
	var rangeErr *geo.RangeError
	assert.ErrorAs(t, err, &rangeErr)

	// Previous valid coordinate is retained.
	assert.Equal(t, -37.81, d.Coordinate.Lat)
}

func TestSetAddressWithoutCoordinateIsIgnored(t *testing.T) {
	d := NewDraft("d1")
	d.SetAddress("nowhere")
	assert.Nil(t, d.Coordinate)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	d := NewDraft("d1")
	d.SetTitle("before")
	_ = d.SetCoordinate(geo.Coordinate{Lat: 1, Lng: 2, Address: "a"})
	d.Media.Photos = append(d.Media.Photos, MediaItem{DisplayName: "p1", Kind: KindPhoto})
	d.Media.Audio = &AudioItem{LocalURI: "/a"}

	snap := d.Snapshot()

	d.SetTitle("after")
	d.Coordinate.Address = "changed"
	d.Media.Photos[0].DisplayName = "changed"
	d.Media.Audio.LocalURI = "/changed"

	assert.Equal(t, "before", snap.Title)
	assert.Equal(t, "a", snap.Coordinate.Address)
	assert.Equal(t, "p1", snap.Media.Photos[0].DisplayName)
	assert.Equal(t, "/a", snap.Media.Audio.LocalURI)
}

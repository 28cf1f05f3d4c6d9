// internal/adapter/device/device_test.go

package device

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mempin/internal/domain/media"
	"mempin/internal/domain/pin"
)

func TestSpoolSaveRoundTrip(t *testing.T) {
	spool := &Spool{Dir: t.TempDir()}

	path, err := spool.Save(strings.NewReader("jpeg bytes"), "IMG_001.jpg")
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
	assert.Contains(t, path, "IMG_001.jpg")
}

func TestStaticPermissions(t *testing.T) {
	perms := &StaticPermissions{Denied: map[media.Permission]bool{media.PermissionMicrophone: true}}

	granted, err := perms.Request(context.Background(), media.PermissionCamera)
	assert.NoError(t, err)
	assert.True(t, granted)

	granted, err = perms.Request(context.Background(), media.PermissionMicrophone)
	assert.NoError(t, err)
	assert.False(t, granted)
}

func TestStagedCameraReturnsStagedItemOnce(t *testing.T) {
	camera := &StagedCamera{}
	camera.Stage("draft-1", pin.MediaItem{DisplayName: "p1", Kind: pin.KindPhoto})

	item, err := camera.Capture(context.Background(), "draft-1")
	assert.NoError(t, err)
	if assert.NotNil(t, item) {
		assert.Equal(t, "p1", item.DisplayName)
	}

	// Nothing staged reads as a user cancellation.
	item, err = camera.Capture(context.Background(), "draft-1")
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestStagedCameraKeepsDraftsIsolated(t *testing.T) {
	camera := &StagedCamera{}

	// Both drafts stage before either capture runs, interleaved the way
	// two concurrent requests would be.
	camera.Stage("draft-a", pin.MediaItem{DisplayName: "photo-a", Kind: pin.KindPhoto})
	camera.Stage("draft-b", pin.MediaItem{DisplayName: "photo-b", Kind: pin.KindPhoto})

	itemA, err := camera.Capture(context.Background(), "draft-a")
	assert.NoError(t, err)
	if assert.NotNil(t, itemA, "draft A's photo must not be lost") {
		assert.Equal(t, "photo-a", itemA.DisplayName, "draft A must receive its own photo")
	}

	itemB, err := camera.Capture(context.Background(), "draft-b")
	assert.NoError(t, err)
	if assert.NotNil(t, itemB, "draft B's photo must not be lost") {
		assert.Equal(t, "photo-b", itemB.DisplayName)
	}
}

func TestStagedAudioDeviceProducesSpooledFile(t *testing.T) {
	spool := &Spool{Dir: t.TempDir()}
	dev := &StagedAudioDevice{Spool: spool}
	dev.Stage("draft-1", []byte("audio bytes"), 4*time.Second)

	rec, err := dev.NewRecording(context.Background(), "draft-1")
	assert.NoError(t, err)

	uri, duration, err := rec.Stop()
	assert.NoError(t, err)
	assert.Equal(t, 4*time.Second, duration)

	data, err := os.ReadFile(uri)
	assert.NoError(t, err)
	assert.Equal(t, "audio bytes", string(data))
}

func TestStagedAudioDeviceKeepsDraftsIsolated(t *testing.T) {
	spool := &Spool{Dir: t.TempDir()}
	dev := &StagedAudioDevice{Spool: spool}
	dev.Stage("draft-a", []byte("clip a"), time.Second)
	dev.Stage("draft-b", []byte("clip b"), 2*time.Second)

	recA, err := dev.NewRecording(context.Background(), "draft-a")
	assert.NoError(t, err)
	uriA, durationA, err := recA.Stop()
	assert.NoError(t, err)
	assert.Equal(t, time.Second, durationA)

	dataA, err := os.ReadFile(uriA)
	assert.NoError(t, err)
	assert.Equal(t, "clip a", string(dataA), "draft A must receive its own clip")

	recB, err := dev.NewRecording(context.Background(), "draft-b")
	assert.NoError(t, err)
	uriB, _, err := recB.Stop()
	assert.NoError(t, err)
	dataB, err := os.ReadFile(uriB)
	assert.NoError(t, err)
	assert.Equal(t, "clip b", string(dataB))
}

func TestReleasedRecordingCannotStop(t *testing.T) {
	dev := &StagedAudioDevice{Spool: &Spool{Dir: t.TempDir()}}
	rec, err := dev.NewRecording(context.Background(), "draft-1")
	assert.NoError(t, err)

	rec.Release()
	_, _, err = rec.Stop()
	assert.Error(t, err)
}

func TestFilePlayerLoadRequiresExistingFile(t *testing.T) {
	player := &FilePlayer{}

	_, err := player.Load(context.Background(), "/nonexistent/audio.m4a")
	assert.Error(t, err)
}

func TestFilePlaybackCompletesOnItsOwn(t *testing.T) {
	spool := &Spool{Dir: t.TempDir()}
	path, err := spool.Save(strings.NewReader("tiny"), "clip.m4a")
	assert.NoError(t, err)

	// High byte rate so the estimated duration collapses to the minimum.
	player := &FilePlayer{BytesPerSecond: 1 << 30}
	playback, err := player.Load(context.Background(), path)
	assert.NoError(t, err)

	done := make(chan struct{})
	assert.NoError(t, playback.Play(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("playback never completed")
	}
}

// internal/adapter/device/device.go

// Package device provides filesystem-backed implementations of the device
// capture boundaries. The API server is headless, so "capturing" means
// accepting bytes the client already recorded and spooling them to local
// files that the upload run later reads back.
package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"mempin/internal/domain/media"
	"mempin/internal/domain/pin"
)

// StaticPermissions answers permission requests from a fixed grant table.
// Grants are decided at login time on the client; the server only mirrors
// them.
type StaticPermissions struct {
	Denied map[media.Permission]bool
}

// Request reports the configured grant for a permission.
func (p *StaticPermissions) Request(ctx context.Context, perm media.Permission) (bool, error) {
	return !p.Denied[perm], nil
}

// Spool writes incoming media bytes into a local spool directory and hands
// back file URIs.
type Spool struct {
	Dir string
}

// Save writes a stream to a spool file and returns its path.
func (s *Spool) Save(r io.Reader, name string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create spool dir: %w", err)
	}

	path := filepath.Join(s.Dir, uuid.NewString()+"-"+filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write spool file: %w", err)
	}
	return path, nil
}

// StagedCamera satisfies the camera boundary for the HTTP surface: the
// handler stages the photo it received under its draft id, then runs the
// capture flow, which picks the staged item up for that draft alone.
// Concurrent requests for different drafts never see each other's media.
// No staged item reads as a user cancellation.
type StagedCamera struct {
	mu     sync.Mutex
	staged map[string]*pin.MediaItem
}

// Stage sets the item the draft's next capture will return.
func (c *StagedCamera) Stage(draftID string, item pin.MediaItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.staged == nil {
		c.staged = make(map[string]*pin.MediaItem)
	}
	c.staged[draftID] = &item
}

// Capture returns the draft's staged item, or nil when nothing was staged.
func (c *StagedCamera) Capture(ctx context.Context, draftID string) (*pin.MediaItem, error) {
	return c.take(draftID)
}

// PickFromLibrary behaves like Capture; the distinction is client-side.
func (c *StagedCamera) PickFromLibrary(ctx context.Context, draftID string) (*pin.MediaItem, error) {
	return c.take(draftID)
}

func (c *StagedCamera) take(draftID string) (*pin.MediaItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.staged[draftID]
	delete(c.staged, draftID)
	return item, nil
}

// StagedAudioDevice opens recording resources backed by staged bytes,
// keyed by draft id like StagedCamera.
type StagedAudioDevice struct {
	Spool *Spool

	mu     sync.Mutex
	staged map[string]stagedClip
}

type stagedClip struct {
	data     []byte
	duration time.Duration
}

// Stage sets the bytes and duration hint the draft's next recording will
// produce.
func (d *StagedAudioDevice) Stage(draftID string, data []byte, duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.staged == nil {
		d.staged = make(map[string]stagedClip)
	}
	d.staged[draftID] = stagedClip{data: data, duration: duration}
}

// NewRecording opens a recording resource over the draft's staged bytes.
func (d *StagedAudioDevice) NewRecording(ctx context.Context, draftID string) (media.Recording, error) {
	d.mu.Lock()
	clip := d.staged[draftID]
	delete(d.staged, draftID)
	d.mu.Unlock()

	return &stagedRecording{spool: d.Spool, data: clip.data, duration: clip.duration}, nil
}

type stagedRecording struct {
	spool    *Spool
	data     []byte
	duration time.Duration
	released bool
}

func (r *stagedRecording) Stop() (string, time.Duration, error) {
	if r.released {
		return "", 0, fmt.Errorf("recording already released")
	}
	r.released = true

	path, err := r.spool.Save(bytes.NewReader(r.data), "recording.m4a")
	if err != nil {
		return "", 0, err
	}
	return path, r.duration, nil
}

func (r *stagedRecording) Release() {
	r.released = true
	r.data = nil
}

// FilePlayer loads spooled audio files as playback resources. Playback
// runs for a duration estimated from the file size and then completes on
// its own, mirroring a real player's finished callback.
type FilePlayer struct {
	// BytesPerSecond drives the duration estimate. Zero means the
	// default voice-note bitrate.
	BytesPerSecond int64
}

// Load opens a playback resource for a spooled file.
func (p *FilePlayer) Load(ctx context.Context, uri string) (media.Playback, error) {
	info, err := os.Stat(uri)
	if err != nil {
		return nil, fmt.Errorf("load audio file: %w", err)
	}

	rate := p.BytesPerSecond
	if rate <= 0 {
		rate = 4000
	}
	duration := time.Duration(info.Size()/rate) * time.Second
	if duration <= 0 {
		duration = time.Second
	}
	return &filePlayback{duration: duration}, nil
}

type filePlayback struct {
	mu    sync.Mutex
	timer *time.Timer

	duration time.Duration
}

func (f *filePlayback) Play(onComplete func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		return fmt.Errorf("playback already started")
	}
	f.timer = time.AfterFunc(f.duration, onComplete)
	return nil
}

func (f *filePlayback) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
}

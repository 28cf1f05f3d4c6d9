// internal/service/capture/session.go

package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"mempin/internal/domain/media"
	"mempin/internal/domain/pin"
)

// AudioState is the current state of the draft's single audio slot.
type AudioState string

const (
	AudioIdle      AudioState = "idle"
	AudioRecording AudioState = "recording"
	AudioPlaying   AudioState = "playing"
)

var (
	// ErrNotRecording is returned by StopRecording outside the
	// Recording state.
	ErrNotRecording = errors.New("no recording in progress")

	// ErrNoRecording is returned by Play when the draft has no audio.
	ErrNoRecording = errors.New("no recording to play")

	// ErrBusyRecording is returned by Play while a recording is live.
	ErrBusyRecording = errors.New("recording in progress")
)

// Session owns the draft's media: the ordered photo and video collections
// and the single audio slot with its record/play state machine. The
// recording and playback resources are exclusively owned here; at most one
// of each may be live at a time, and every exit path releases them.
type Session struct {
	perms  media.PermissionRequester
	audio  media.AudioDevice
	player media.Player
	camera media.Camera
	draft  *pin.Draft
	log    *logrus.Entry

	mu        sync.Mutex
	state     AudioState
	recording media.Recording
	playback  media.Playback
}

// NewSession creates a capture session bound to a draft. The draft's media
// is mutated only through the session for the session's lifetime.
func NewSession(
	perms media.PermissionRequester,
	audio media.AudioDevice,
	player media.Player,
	camera media.Camera,
	draft *pin.Draft,
	log *logrus.Entry,
) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		perms:  perms,
		audio:  audio,
		player: player,
		camera: camera,
		draft:  draft,
		log:    log,
		state:  AudioIdle,
	}
}

// State returns the current audio state.
func (s *Session) State() AudioState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// AddItem appends a photo or video to its collection, preserving insertion
// order. Duplicates are allowed.
func (s *Session) AddItem(item pin.MediaItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch item.Kind {
	case pin.KindVideo:
		s.draft.Media.Videos = append(s.draft.Media.Videos, item)
	default:
		s.draft.Media.Photos = append(s.draft.Media.Photos, item)
	}
}

// RemoveItem removes a photo or video by position.
func (s *Session) RemoveItem(kind pin.MediaKind, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items *[]pin.MediaItem
	if kind == pin.KindVideo {
		items = &s.draft.Media.Videos
	} else {
		items = &s.draft.Media.Photos
	}
	if index < 0 || index >= len(*items) {
		return fmt.Errorf("no %s at index %d", kind, index)
	}
	*items = append((*items)[:index], (*items)[index+1:]...)
	return nil
}

// RequestCapture runs the photo capture flow: camera permission first, then
// either live capture or library selection. A user cancellation appends
// nothing and is not an error.
func (s *Session) RequestCapture(ctx context.Context, source media.CaptureSource) error {
	granted, err := s.perms.Request(ctx, media.PermissionCamera)
	if err != nil {
		return fmt.Errorf("camera permission request: %w", err)
	}
	if !granted {
		return &media.PermissionError{Permission: media.PermissionCamera}
	}

	var item *pin.MediaItem
	if source == media.SourceLibrary {
		item, err = s.camera.PickFromLibrary(ctx, s.draft.ID)
	} else {
		item, err = s.camera.Capture(ctx, s.draft.ID)
	}
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if item == nil {
		// User cancelled; no state change.
		return nil
	}

	s.AddItem(*item)
	return nil
}

// StartRecording transitions Idle -> Recording. Microphone permission is
// requested first; denial keeps the state at Idle. A recording resource
// left over from an aborted session is released before a new one opens.
func (s *Session) StartRecording(ctx context.Context) error {
	granted, err := s.perms.Request(ctx, media.PermissionMicrophone)
	if err != nil {
		return fmt.Errorf("microphone permission request: %w", err)
	}
	if !granted {
		return &media.PermissionError{Permission: media.PermissionMicrophone}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPlaybackLocked()
	if s.recording != nil {
		s.recording.Release()
		s.recording = nil
	}

	rec, err := s.audio.NewRecording(ctx, s.draft.ID)
	if err != nil {
		s.state = AudioIdle
		return fmt.Errorf("open recording: %w", err)
	}
	s.recording = rec
	s.state = AudioRecording
	return nil
}

// StopRecording transitions Recording -> Idle(hasRecording), finalizing the
// resource into a local file and attaching it to the draft.
func (s *Session) StopRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != AudioRecording || s.recording == nil {
		return ErrNotRecording
	}

	uri, duration, err := s.recording.Stop()
	s.recording = nil
	s.state = AudioIdle
	if err != nil {
		return fmt.Errorf("finalize recording: %w", err)
	}

	s.draft.Media.Audio = &pin.AudioItem{LocalURI: uri, Duration: duration}
	return nil
}

// Play transitions Idle(hasRecording) -> Playing. The audio file is loaded
// fresh; any previously loaded playback resource is unloaded first. When
// playback runs to completion on its own the state returns to
// Idle(hasRecording) automatically.
func (s *Session) Play(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == AudioRecording {
		return ErrBusyRecording
	}
	if s.draft.Media.Audio == nil {
		return ErrNoRecording
	}

	s.stopPlaybackLocked()

	playback, err := s.player.Load(ctx, s.draft.Media.Audio.LocalURI)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}

	if err := playback.Play(func() { s.onPlaybackComplete(playback) }); err != nil {
		playback.Stop()
		return fmt.Errorf("start playback: %w", err)
	}
	s.playback = playback
	s.state = AudioPlaying
	return nil
}

// StopPlayback is the explicit Playing -> Idle(hasRecording) transition.
// It unloads the playback resource immediately. Calling it while nothing
// plays is a no-op.
func (s *Session) StopPlayback() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPlaybackLocked()
}

// RemoveAudio clears the audio slot from any state, unloading whatever
// resource is live first.
func (s *Session) RemoveAudio() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseAllLocked()
	s.draft.Media.Audio = nil
}

// Teardown releases every live resource. It runs on session disposal
// regardless of the current state.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseAllLocked()
}

func (s *Session) onPlaybackComplete(playback media.Playback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// An explicit stop or a newer playback may have superseded this one.
	if s.playback != playback {
		return
	}
	s.playback = nil
	s.state = AudioIdle
}

func (s *Session) stopPlaybackLocked() {
	if s.playback != nil {
		s.playback.Stop()
		s.playback = nil
	}
	if s.state == AudioPlaying {
		s.state = AudioIdle
	}
}

func (s *Session) releaseAllLocked() {
	s.stopPlaybackLocked()
	if s.recording != nil {
		s.recording.Release()
		s.recording = nil
	}
	s.state = AudioIdle
}

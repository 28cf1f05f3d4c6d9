// internal/domain/media/devices.go

package media

import (
	"context"
	"fmt"
	"time"

	"mempin/internal/domain/pin"
)

// Permission identifies a device capability the user must grant.
type Permission string

const (
	PermissionCamera     Permission = "camera"
	PermissionMicrophone Permission = "microphone"
	PermissionLocation   Permission = "location"
)

// PermissionError reports a denied permission request. It is recoverable:
// the capture session stays usable after it.
type PermissionError struct {
	Permission Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s permission denied", e.Permission)
}

// PermissionRequester is the device permission prompt boundary.
type PermissionRequester interface {
	// Request asks the user to grant a permission. False with a nil error
	// means an explicit denial.
	Request(ctx context.Context, p Permission) (bool, error)
}

// Recording is a live audio recording resource. Exactly one may be open at
// a time; Release must be safe to call in any state.
type Recording interface {
	// Stop finalizes the recording and returns the local file URI.
	Stop() (uri string, duration time.Duration, err error)

	// Release frees the underlying resource without producing a file.
	Release()
}

// AudioDevice opens recording resources. One device serves every draft
// session; requests are addressed by draft id so sessions never see each
// other's audio.
type AudioDevice interface {
	NewRecording(ctx context.Context, draftID string) (Recording, error)
}

// Playback is a live audio playback resource. Exactly one may be loaded at
// a time.
type Playback interface {
	// Play starts playback. The callback fires once if playback runs to
	// completion on its own; an explicit Stop suppresses it.
	Play(onComplete func()) error

	// Stop halts playback and unloads the resource.
	Stop()
}

// Player loads audio files for playback.
type Player interface {
	Load(ctx context.Context, uri string) (Playback, error)
}

// CaptureSource selects how a photo enters the draft.
type CaptureSource string

const (
	SourceCamera  CaptureSource = "camera"
	SourceLibrary CaptureSource = "library"
)

// Camera is the photo capture boundary. One camera serves every draft
// session; captures are addressed by draft id so concurrent sessions never
// receive each other's media. Both methods return a nil item with a nil
// error when the user cancels.
type Camera interface {
	Capture(ctx context.Context, draftID string) (*pin.MediaItem, error)
	PickFromLibrary(ctx context.Context, draftID string) (*pin.MediaItem, error)
}

// internal/service/upload/orchestrator.go

package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"mempin/internal/domain/identity"
	"mempin/internal/domain/pin"
)

// ErrRunInFlight is returned when a second run is started while one is
// still active for the same orchestrator.
var ErrRunInFlight = errors.New("an upload run is already in flight")

// AuthenticationError wraps a missing or failed credential lookup. It
// aborts a run before any upload begins.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ObjectStore is the object storage boundary. The destination path is
// deterministic per draft and item so retrying a failed run overwrites
// rather than duplicates.
type ObjectStore interface {
	Upload(ctx context.Context, localURI, destination string, kind pin.MediaKind) (publicURL string, err error)
}

// taskStatus tracks one media item through a run.
type taskStatus string

const (
	taskPending   taskStatus = "pending"
	taskUploading taskStatus = "uploading"
	taskDone      taskStatus = "done"
	taskFailed    taskStatus = "failed"
)

// uploadTask is the ephemeral per-file unit of work within a run. Tasks
// are created when the run starts and discarded when it ends.
type uploadTask struct {
	item        pin.MediaItem
	destination string
	status      taskStatus
	remoteURL   string
	err         error
}

// Result is the outcome of a successful run.
type Result struct {
	PinID string
}

// Orchestrator turns a finalized draft snapshot into uploaded media plus a
// persisted pin record. Media items within a group upload concurrently and
// the groups race each other; the pin record is only created after every
// upload has succeeded. A failed run leaves the draft untouched so the
// whole run can be retried; objects uploaded before the failure are not
// deleted, and the deterministic destination paths make the retry
// overwrite them.
type Orchestrator struct {
	store  ObjectStore
	pins   pin.Store
	tokens identity.TokenProvider
	log    *logrus.Entry

	runMu   sync.Mutex
	running bool

	emitMu sync.Mutex
}

// NewOrchestrator creates an orchestrator over the three collaborators.
func NewOrchestrator(store ObjectStore, pins pin.Store, tokens identity.TokenProvider, log *logrus.Entry) *Orchestrator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Orchestrator{
		store:  store,
		pins:   pins,
		tokens: tokens,
		log:    log,
	}
}

// Run executes one complete upload run over a read-only draft snapshot.
// onProgress, if non-nil, receives a snapshot after every completed step.
// The step total is photos + videos + (audio ? 1 : 0) + 1 for the final
// persistence call, fixed before the first upload starts.
func (o *Orchestrator) Run(ctx context.Context, draft pin.Draft, onProgress func(Progress)) (*Result, error) {
	o.runMu.Lock()
	if o.running {
		o.runMu.Unlock()
		return nil, ErrRunInFlight
	}
	o.running = true
	o.runMu.Unlock()
	defer func() {
		o.runMu.Lock()
		o.running = false
		o.runMu.Unlock()
	}()

	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	if _, err := o.tokens.AccessToken(ctx); err != nil {
		return nil, &AuthenticationError{Err: err}
	}

	photoTasks := buildTasks(draft.ID, draft.Media.Photos)
	videoTasks := buildTasks(draft.ID, draft.Media.Videos)

	totalSteps := len(photoTasks) + len(videoTasks) + 1
	var audioTask *uploadTask
	if draft.Media.Audio != nil {
		audioTask = &uploadTask{
			item: pin.MediaItem{
				LocalURI:    draft.Media.Audio.LocalURI,
				Kind:        pin.KindAudio,
				DisplayName: "voice note",
			},
			destination: fmt.Sprintf("drafts/%s/audio/recording", draft.ID),
			status:      taskPending,
		}
		totalSteps++
	}

	var completed int64
	emit := func(label string) {
		// Increment and deliver under one lock so subscribers see a
		// non-decreasing step count regardless of completion order.
		o.emitMu.Lock()
		defer o.emitMu.Unlock()
		done := atomic.AddInt64(&completed, 1)
		if onProgress != nil {
			onProgress(snapshot(totalSteps, done, label))
		}
	}

	var group errgroup.Group
	for _, tasks := range [][]*uploadTask{photoTasks, videoTasks} {
		for _, task := range tasks {
			task := task
			group.Go(func() error { return o.uploadOne(ctx, task, emit) })
		}
	}
	if audioTask != nil {
		group.Go(func() error { return o.uploadOne(ctx, audioTask, emit) })
	}

	if err := group.Wait(); err != nil {
		o.log.WithError(err).WithField("draft_id", draft.ID).Warn("upload run failed")
		return nil, err
	}

	mediaURLs := make([]string, 0, len(photoTasks)+len(videoTasks))
	for _, task := range photoTasks {
		mediaURLs = append(mediaURLs, task.remoteURL)
	}
	for _, task := range videoTasks {
		mediaURLs = append(mediaURLs, task.remoteURL)
	}
	var audioURL string
	if audioTask != nil {
		audioURL = audioTask.remoteURL
	}

	pinID, err := o.pins.CreatePin(ctx, pin.CreateParams{
		ID:            draft.ID,
		Title:         draft.Title,
		Description:   draft.Description,
		Lat:           draft.Coordinate.Lat,
		Lng:           draft.Coordinate.Lng,
		Address:       draft.Coordinate.Address,
		Visibility:    draft.Visibility,
		SocialCircles: draft.SocialCircles,
		MediaURLs:     mediaURLs,
		AudioURL:      audioURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create pin: %w", err)
	}
	emit("Pin created")

	o.log.WithFields(logrus.Fields{
		"pin_id": pinID,
		"media":  len(mediaURLs),
	}).Info("pin created")

	return &Result{PinID: pinID}, nil
}

func (o *Orchestrator) uploadOne(ctx context.Context, task *uploadTask, emit func(string)) error {
	task.status = taskUploading

	url, err := o.store.Upload(ctx, task.item.LocalURI, task.destination, task.item.Kind)
	if err != nil {
		task.status = taskFailed
		task.err = err
		return fmt.Errorf("upload %s: %w", task.item.DisplayName, err)
	}

	task.status = taskDone
	task.remoteURL = url
	emit(fmt.Sprintf("Uploaded %s", task.item.DisplayName))
	return nil
}

func buildTasks(draftID string, items []pin.MediaItem) []*uploadTask {
	tasks := make([]*uploadTask, len(items))
	for i, item := range items {
		name := item.DisplayName
		if name == "" {
			name = fmt.Sprintf("%s-%d", item.Kind, i+1)
			item.DisplayName = name
		}
		tasks[i] = &uploadTask{
			item:        item,
			destination: fmt.Sprintf("drafts/%s/%s/%02d-%s", draftID, item.Kind, i, name),
			status:      taskPending,
		}
	}
	return tasks
}

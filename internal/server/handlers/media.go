// internal/server/handlers/media.go

package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mempin/internal/adapter/device"
	"mempin/internal/domain/media"
	"mempin/internal/domain/pin"
	"mempin/internal/service/draft"
)

// maxUploadBytes bounds a single media upload body.
const maxUploadBytes = 64 << 20

// MediaHandler handles media capture HTTP requests. Incoming bytes are
// spooled to local files, then run through the capture session so the
// permission gates and the audio state machine stay on the request path.
type MediaHandler struct {
	registry *draft.Registry
	spool    *device.Spool
	camera   *device.StagedCamera
	audio    *device.StagedAudioDevice
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(
	registry *draft.Registry,
	spool *device.Spool,
	camera *device.StagedCamera,
	audio *device.StagedAudioDevice,
) *MediaHandler {
	return &MediaHandler{
		registry: registry,
		spool:    spool,
		camera:   camera,
		audio:    audio,
	}
}

// AddPhoto receives a photo and appends it through the capture flow
func (h *MediaHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	item, ok := h.spoolUpload(w, r, pin.KindPhoto)
	if !ok {
		return
	}

	source := media.SourceCamera
	if r.URL.Query().Get("source") == string(media.SourceLibrary) {
		source = media.SourceLibrary
	}

	h.camera.Stage(c.ID(), *item)
	if err := c.Session().RequestCapture(r.Context(), source); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// AddVideo receives a video and appends it to the draft
func (h *MediaHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	item, ok := h.spoolUpload(w, r, pin.KindVideo)
	if !ok {
		return
	}

	c.Session().AddItem(*item)
	w.WriteHeader(http.StatusCreated)
}

// RemoveItem removes a photo or video by position
func (h *MediaHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	kind := pin.MediaKind(chi.URLParam(r, "kind"))
	if kind != pin.KindPhoto && kind != pin.KindVideo {
		http.Error(w, "Unknown media kind", http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}

	if err := c.Session().RemoveItem(kind, index); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordAudio receives recorded audio bytes and runs them through the
// record/stop transitions, replacing any previous recording
func (h *MediaHandler) RecordAudio(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read audio file", http.StatusBadRequest)
		return
	}

	var duration time.Duration
	if secs, err := strconv.ParseFloat(r.FormValue("duration_seconds"), 64); err == nil {
		duration = time.Duration(secs * float64(time.Second))
	}

	h.audio.Stage(c.ID(), data, duration)
	if err := c.Session().StartRecording(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if err := c.Session().StopRecording(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// PlayAudio starts playback of the draft's recording
func (h *MediaHandler) PlayAudio(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	if err := c.Session().Play(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(c.Session().State())})
}

// StopAudio stops playback explicitly
func (h *MediaHandler) StopAudio(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	c.Session().StopPlayback()
	writeJSON(w, http.StatusOK, map[string]string{"state": string(c.Session().State())})
}

// RemoveAudio clears the audio slot
func (h *MediaHandler) RemoveAudio(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	c.Session().RemoveAudio()
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) spoolUpload(w http.ResponseWriter, r *http.Request, kind pin.MediaKind) (*pin.MediaItem, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing media file", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	uri, err := h.spool.Save(file, header.Filename)
	if err != nil {
		http.Error(w, "Failed to store media", http.StatusInternalServerError)
		return nil, false
	}

	return &pin.MediaItem{
		LocalURI:    uri,
		Kind:        kind,
		DisplayName: header.Filename,
	}, true
}

func (h *MediaHandler) controller(w http.ResponseWriter, r *http.Request) (*draft.Controller, bool) {
	c, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Draft session not found", http.StatusNotFound)
		return nil, false
	}
	return c, true
}

// internal/server/handlers/draft.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mempin/internal/domain/geo"
	"mempin/internal/domain/media"
	"mempin/internal/domain/pin"
	"mempin/internal/service/draft"
	"mempin/internal/service/upload"
)

// DraftHandler handles draft session HTTP requests
type DraftHandler struct {
	registry *draft.Registry
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(registry *draft.Registry) *DraftHandler {
	return &DraftHandler{
		registry: registry,
	}
}

// draftView is the wire shape of a draft preview.
type draftView struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	LocationQuery string         `json:"location_query"`
	Coordinate    *coordView     `json:"coordinate,omitempty"`
	Visibility    []string       `json:"visibility"`
	SocialCircles []string       `json:"social_circle_ids,omitempty"`
	Photos        []mediaView    `json:"photos"`
	Videos        []mediaView    `json:"videos"`
	Audio         *audioItemView `json:"audio,omitempty"`
}

type coordView struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type mediaView struct {
	DisplayName string `json:"display_name"`
	Kind        string `json:"kind"`
}

type audioItemView struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

func viewOf(d pin.Draft) draftView {
	view := draftView{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		LocationQuery: d.LocationQuery,
		SocialCircles: d.SocialCircles,
		Photos:        []mediaView{},
		Videos:        []mediaView{},
	}
	for _, v := range d.Visibility {
		view.Visibility = append(view.Visibility, string(v))
	}
	if d.Coordinate != nil {
		view.Coordinate = &coordView{Lat: d.Coordinate.Lat, Lng: d.Coordinate.Lng, Address: d.Coordinate.Address}
	}
	for _, item := range d.Media.Photos {
		view.Photos = append(view.Photos, mediaView{DisplayName: item.DisplayName, Kind: string(item.Kind)})
	}
	for _, item := range d.Media.Videos {
		view.Videos = append(view.Videos, mediaView{DisplayName: item.DisplayName, Kind: string(item.Kind)})
	}
	if d.Media.Audio != nil {
		view.Audio = &audioItemView{DurationSeconds: d.Media.Audio.Duration.Seconds()}
	}
	return view
}

// CreateDraft starts a new draft session
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	c := h.registry.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"id": c.ID()})
}

// GetDraft returns a read-only preview of the draft
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	snap, err := c.Preview()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(snap))
}

// UpdateDraft patches the text fields of the draft
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.Title != nil {
		if err := c.SetTitle(*body.Title); err != nil {
			writeError(w, err)
			return
		}
	}
	if body.Description != nil {
		if err := c.SetDescription(*body.Description); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetLocationQuery feeds a keystroke update into the debounced resolver
func (h *DraftHandler) SetLocationQuery(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.SetLocationQuery(body.Text); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SetCoordinate applies a direct coordinate (GPS or manual source)
func (h *DraftHandler) SetCoordinate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var body struct {
		Lat   float64 `json:"lat"`
		Lng   float64 `json:"lng"`
		Label string  `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.Resolver().AcceptDirectCoordinate(body.Lat, body.Lng, body.Label); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DragPin applies a dragged-pin coordinate with a synthesized address
func (h *DraftHandler) DragPin(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var body struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.Resolver().AcceptPinDrag(body.Lat, body.Lng); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReverseGeocode resolves a coordinate pair into a display address
func (h *DraftHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var body struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.Resolver().ResolveFromCoordinates(r.Context(), body.Lat, body.Lng); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectVisibility adds a visibility option
func (h *DraftHandler) SelectVisibility(w http.ResponseWriter, r *http.Request) {
	h.visibility(w, r, true)
}

// DeselectVisibility removes a visibility option
func (h *DraftHandler) DeselectVisibility(w http.ResponseWriter, r *http.Request) {
	h.visibility(w, r, false)
}

func (h *DraftHandler) visibility(w http.ResponseWriter, r *http.Request, selecting bool) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	option := pin.Visibility(chi.URLParam(r, "option"))
	switch option {
	case pin.VisibilityPublic, pin.VisibilitySocial, pin.VisibilityPrivate:
	default:
		http.Error(w, "Unknown visibility option", http.StatusBadRequest)
		return
	}

	var err error
	if selecting {
		err = c.SelectVisibility(option)
	} else {
		err = c.DeselectVisibility(option)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSocialCircles replaces the selected circle ids
func (h *DraftHandler) SetSocialCircles(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var body struct {
		CircleIDs []string `json:"circle_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.SetSocialCircles(body.CircleIDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Confirm runs the upload and persistence for the draft
func (h *DraftHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	result, err := c.Confirm(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"pin_id": result.PinID})
}

// CancelDraft discards the draft session
func (h *DraftHandler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	h.registry.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) controller(w http.ResponseWriter, r *http.Request) (*draft.Controller, bool) {
	c, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Draft session not found", http.StatusNotFound)
		return nil, false
	}
	return c, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps pipeline errors onto HTTP statuses: validation and
// range problems are client errors, permission denials are forbidden,
// missing credentials unauthorized, and concurrent runs conflicts.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *upload.ValidationError
	var rangeErr *geo.RangeError
	var permErr *media.PermissionError
	var authErr *upload.AuthenticationError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &rangeErr):
		http.Error(w, rangeErr.Error(), http.StatusBadRequest)
	case errors.As(err, &permErr):
		http.Error(w, permErr.Error(), http.StatusForbidden)
	case errors.As(err, &authErr):
		http.Error(w, authErr.Error(), http.StatusUnauthorized)
	case errors.Is(err, upload.ErrRunInFlight), errors.Is(err, draft.ErrConfirmInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, draft.ErrDraftClosed):
		http.Error(w, err.Error(), http.StatusGone)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

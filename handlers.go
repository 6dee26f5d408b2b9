package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// Handler maps HTTP requests onto the record service. All domain errors are
// converted to response codes here; nothing escapes uncaught.
type Handler struct {
	svc    *Service
	cfg    Config
	logger *log.Logger
}

// NewHandler creates a Handler with dependencies.
func NewHandler(svc *Service, cfg Config, logger *log.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, logger: logger}
}

// Routes registers the handler's endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tournaments", h.tournamentsHandler)
	mux.HandleFunc("/api/tournaments/", h.tournamentHandler)
	mux.HandleFunc("/api/links", h.linksHandler)
	mux.HandleFunc("/api/links/", h.linkHandler)
}

// tournamentsHandler routes requests without a slug: POST for create.
func (h *Handler) tournamentsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateRecord(w, r)
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	}
}

// tournamentHandler routes requests with a slug: GET, PUT, PATCH.
func (h *Handler) tournamentHandler(w http.ResponseWriter, r *http.Request) {
	slug := slugFromRequest(r, "/api/tournaments/")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "missing slug")
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleGetRecord(w, r, slug)
	case http.MethodPut, http.MethodPatch:
		h.handleUpdateRecord(w, r, slug)
	default:
		w.Header().Set("Allow", "GET, PUT, PATCH, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	}
}

// linksHandler routes slugless link requests: POST for create, PUT/PATCH for
// update with the slug in the body.
func (h *Handler) linksHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateLink(w, r)
	case http.MethodPut, http.MethodPatch:
		h.handleUpdateLink(w, r)
	default:
		w.Header().Set("Allow", "POST, PUT, PATCH, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	}
}

// linkHandler routes requests with a slug: GET for resolve.
func (h *Handler) linkHandler(w http.ResponseWriter, r *http.Request) {
	slug := slugFromRequest(r, "/api/links/")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "missing slug")
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}
	h.handleGetLink(w, r, slug)
}

// handleCreateRecord processes POST /api/tournaments.
func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	rec, err := h.svc.CreateRecord(r.Context(), req.RecordPayload)
	if err != nil {
		h.respondError(w, err, "creating record")
		return
	}

	base := req.Base
	if base == "" {
		base = h.cfg.BaseURL
	}
	prefix := req.RoutePrefix
	if prefix == "" {
		prefix = h.cfg.RoutePrefix
	}
	publicURL := buildPublicURL(base, prefix, rec.ID)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Location", publicURL)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateRecordResponse{Slug: rec.ID, URL: publicURL, Status: rec.Status})
}

// handleGetRecord processes GET /api/tournaments/{slug}.
func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request, slug string) {
	rec, err := h.svc.GetRecord(r.Context(), slug)
	if err != nil {
		h.respondError(w, err, "getting record")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(rec)
}

// handleUpdateRecord processes PUT/PATCH /api/tournaments/{slug}.
func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request, slug string) {
	var req UpdateRecordRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	rec, err := h.svc.UpdateRecord(r.Context(), slug, req.RecordPayload)
	if err != nil {
		h.respondError(w, err, "updating record")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(rec)
}

// handleCreateLink processes POST /api/links.
func (h *Handler) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, `missing "url"`)
		return
	}

	slug, _, err := h.svc.CreateLink(r.Context(), req.URL)
	if err != nil {
		h.respondError(w, err, "creating link")
		return
	}

	publicURL := buildPublicURL(h.cfg.BaseURL, h.cfg.LinkRoutePrefix, slug)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(LinkResponse{Slug: slug, URL: publicURL})
}

// handleGetLink processes GET /api/links/{slug}.
func (h *Handler) handleGetLink(w http.ResponseWriter, r *http.Request, slug string) {
	target, err := h.svc.GetLink(r.Context(), slug)
	if err != nil {
		h.respondError(w, err, "getting link")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(LinkResponse{Slug: slug, URL: target})
}

// handleUpdateLink processes PUT/PATCH /api/links.
func (h *Handler) handleUpdateLink(w http.ResponseWriter, r *http.Request) {
	var req UpdateLinkRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Slug == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, `missing "slug" or "url"`)
		return
	}

	target, err := h.svc.UpdateLink(r.Context(), req.Slug, req.URL)
	if err != nil {
		h.respondError(w, err, "updating link")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(LinkResponse{Slug: req.Slug, URL: target})
}

// decodeBody decodes a single JSON object from the request body into dst. On
// failure it writes a 400 response and returns false.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON in request body: %v", err))
		return false
	}
	if err := ensureSingleJSON(dec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// respondError maps a domain error to its response code.
func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "invalid URL")
	case errors.Is(err, ErrSlugExhausted):
		h.logger.Printf("slug allocation exhausted while %s", op)
		writeError(w, http.StatusInternalServerError, "could not generate unique link")
	default:
		h.logger.Printf("error %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// slugFromRequest extracts the slug from the ?slug query parameter or, failing
// that, the final path segment after prefix.
func slugFromRequest(r *http.Request, prefix string) string {
	if slug := r.URL.Query().Get("slug"); slug != "" {
		return slug
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		rest = rest[i+1:]
	}
	return rest
}

// buildPublicURL joins base, route prefix and slug into the shareable URL.
func buildPublicURL(base, prefix, slug string) string {
	base = strings.TrimRight(base, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return base + prefix + "/" + slug
}

// ensureSingleJSON ensures only a single JSON object is in the request body.
func ensureSingleJSON(dec *json.Decoder) error {
	if t, err := dec.Token(); err != io.EOF || t != nil {
		return fmt.Errorf("request body must only contain a single JSON object")
	}
	return nil
}

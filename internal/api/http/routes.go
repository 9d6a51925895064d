package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/logging"
)

const (
	storeDataPath = "/api/Datastore/StoreData"
	paramFilename = "filename"
)

// handler contains the HTTP handlers and shared dependencies for the REST API.
type handler struct {
	service domain.DatastoreService
	logger  *logging.Logger
}

func registerRoutes(router chi.Router, h *handler) {
	router.Get(storeDataPath, h.handleListData)
	router.Get(storeDataPath+"/{"+paramFilename+"}", h.handleStoreData)
	router.Get("/healthz", h.handleHealth)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *handler) handleStoreData(w http.ResponseWriter, r *http.Request) {
	filename, err := filenameParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid filename encoding")
		return
	}
	if filename == "" {
		h.writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	if err := h.service.Ingest(r.Context(), filename); err != nil {
		h.log(r).Error("store data failed", logging.AttachError(err, "filename", filename)...)
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *handler) handleListData(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListAll(r.Context())
	if err != nil {
		h.log(r).Error("list data failed", logging.AttachError(err)...)
		h.respondServiceError(w, err)
		return
	}
	if rows == nil {
		rows = []domain.MeasurementRow{}
	}

	h.writeJSON(w, http.StatusOK, rows)
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// filenameParam returns the decoded filename. chi matches against the raw path when the request carries
// escaped characters such as %2F, so those have to be decoded here.
func filenameParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, paramFilename)
	if r.URL.RawPath == "" {
		return raw, nil
	}
	return url.PathUnescape(raw)
}

func (h *handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		h.writeError(w, http.StatusBadGateway, "upstream parser unavailable")
	case errors.Is(err, domain.ErrUpstreamMalformedResponse):
		h.writeError(w, http.StatusBadGateway, "upstream parser returned malformed document")
	default:
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *handler) log(r *http.Request) *logging.Logger {
	return logging.FromContext(r.Context(), h.logger)
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message, Code: status})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	providers "chargewatch/internal/providers/domain"
	"chargewatch/internal/watcher/application"
)

// Handler serves manual reconciliation triggers.
type Handler struct {
	runner   *application.Runner
	registry *providers.Registry
}

// NewHandler constructs a Handler.
func NewHandler(runner *application.Runner, registry *providers.Registry) (*Handler, error) {
	if runner == nil {
		return nil, errors.New("watch handler: nil runner")
	}
	if registry == nil {
		return nil, errors.New("watch handler: nil registry")
	}
	return &Handler{runner: runner, registry: registry}, nil
}

type runResponse struct {
	Provider  int     `json:"provider"`
	Name      string  `json:"name"`
	Fetched   int     `json:"fetched"`
	Accepted  int     `json:"accepted"`
	NewIDs    []int64 `json:"newStationIds"`
	Persisted int     `json:"persisted"`
	Error     string  `json:"error,omitempty"`
}

// ServeHTTP routes watch requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path == "/api/v1/watch/run" {
		h.handleRunAll(w, r)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api/v1/watch/run/") {
		h.handleRunOne(w, r, strings.TrimPrefix(r.URL.Path, "/api/v1/watch/run/"))
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleRunAll(w http.ResponseWriter, r *http.Request) {
	responses := make([]runResponse, 0, len(h.registry.All()))
	for _, desc := range h.registry.All() {
		result, err := h.runner.RunProvider(r.Context(), desc)
		resp := toResponse(result)
		if err != nil {
			resp.Error = err.Error()
		}
		responses = append(responses, resp)
	}
	respondJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleRunOne(w http.ResponseWriter, r *http.Request, rawID string) {
	providerID, err := strconv.Atoi(rawID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	desc, err := h.registry.DescriptorFor(providerID)
	if err != nil {
		if errors.Is(err, providers.ErrUnknownProvider) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	result, err := h.runner.RunProvider(r.Context(), desc)
	if err != nil {
		if errors.Is(err, application.ErrCycleInFlight) {
			http.Error(w, "cycle already running", http.StatusConflict)
			return
		}
		resp := toResponse(result)
		resp.Error = err.Error()
		respondJSON(w, http.StatusBadGateway, resp)
		return
	}
	respondJSON(w, http.StatusOK, toResponse(result))
}

func toResponse(result application.CycleResult) runResponse {
	newIDs := result.NewIDs
	if newIDs == nil {
		newIDs = []int64{}
	}
	return runResponse{
		Provider:  result.Provider.ID,
		Name:      result.Provider.Name,
		Fetched:   result.Fetched,
		Accepted:  result.Accepted,
		NewIDs:    newIDs,
		Persisted: result.Persisted,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

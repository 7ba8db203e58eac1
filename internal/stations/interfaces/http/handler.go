package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	providers "chargewatch/internal/providers/domain"
	stations "chargewatch/internal/stations/domain"
)

// Handler serves the station CRUD and export endpoints.
type Handler struct {
	repo     stations.Repository
	registry *providers.Registry
}

// NewHandler constructs a Handler.
func NewHandler(repo stations.Repository, registry *providers.Registry) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("stations handler: nil repository")
	}
	if registry == nil {
		return nil, errors.New("stations handler: nil registry")
	}
	return &Handler{repo: repo, registry: registry}, nil
}

// ServeHTTP routes station requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/stations" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/api/v1/stations/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/stations/")

	switch rest {
	case "export.xlsx":
		h.handleExportXLSX(w, r)
		return
	case "export.pdf":
		h.handleExportPDF(w, r)
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if raw := r.URL.Query().Get("provider"); raw != "" {
		providerID, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid provider", http.StatusBadRequest)
			return
		}
		filtered := records[:0]
		for _, record := range records {
			if record.ProviderID == providerID {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}
	if records == nil {
		records = []stations.Record{}
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var record stations.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := record.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.registry.DescriptorFor(record.ProviderID); err != nil {
		http.Error(w, "unknown provider", http.StatusBadRequest)
		return
	}
	if err := h.repo.SaveNew(r.Context(), record.ProviderID, []stations.Record{record}); err != nil {
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	record, err := h.repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "get failed", http.StatusInternalServerError)
		return
	}
	if record == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var record stations.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	record.ID = id
	if err := record.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	existing, err := h.repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := h.repo.Update(r.Context(), &record); err != nil {
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	if !deleted {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	records, err := h.repo.List(r.Context())
	if err != nil {
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	data, err := BuildStationsXLSX(records, h.providerNames())
	if err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="stations.xlsx"`)
	_, _ = w.Write(data)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	records, err := h.repo.List(r.Context())
	if err != nil {
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	data, err := BuildStationsPDF(records, h.providerNames())
	if err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="stations.pdf"`)
	_, _ = w.Write(data)
}

func (h *Handler) providerNames() map[int]string {
	names := make(map[int]string)
	for _, desc := range h.registry.All() {
		names[desc.ID] = desc.Name
	}
	return names
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

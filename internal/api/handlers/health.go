package handlers

import (
	"context"
	"net/http"

	"github.com/zenberry/zenchat/internal/api"
)

// KnowledgeStatus exposes the knowledge store to the health and reload
// endpoints.
type KnowledgeStatus interface {
	Loaded() bool
	Size() int
	Reload(ctx context.Context) error
}

// CatalogStatus exposes the catalog cache to the health endpoint.
type CatalogStatus interface {
	Size() int
}

// HealthHandler reports service readiness and serves knowledge reloads.
type HealthHandler struct {
	knowledge KnowledgeStatus
	catalog   CatalogStatus
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(knowledge KnowledgeStatus, catalog CatalogStatus) *HealthHandler {
	return &HealthHandler{knowledge: knowledge, catalog: catalog}
}

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status          string `json:"status"`
	KnowledgeLoaded bool   `json:"knowledge_loaded"`
	CatalogEntries  int    `json:"catalog_entries"`
}

// ReloadResponse is the context reload endpoint body.
type ReloadResponse struct {
	Status     string `json:"status"`
	Characters int    `json:"characters"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, HealthResponse{
		Status:          "ok",
		KnowledgeLoaded: h.knowledge.Loaded(),
		CatalogEntries:  h.catalog.Size(),
	})
}

// Reload handles POST /context/reload. The blob is replaced wholesale; a
// failed reload keeps the previous context in place.
func (h *HealthHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.knowledge.Reload(r.Context()); err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to reload knowledge context")
		return
	}

	api.Success(w, http.StatusOK, ReloadResponse{
		Status:     "reloaded",
		Characters: h.knowledge.Size(),
	})
}

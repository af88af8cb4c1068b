package relay

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"meshsync/internal/meshstore"
)

// MeshHandler serves model files so every participant imports the same mesh.
type MeshHandler struct {
	store meshstore.Store
}

func NewMeshHandler(store meshstore.Store) *MeshHandler {
	return &MeshHandler{store: store}
}

// HandleMesh serves GET /meshes/{name}.
func (h *MeshHandler) HandleMesh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/meshes/")
	data, err := h.store.Get(r.Context(), name)
	switch {
	case errors.Is(err, meshstore.ErrInvalidName):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, meshstore.ErrNotFound):
		http.Error(w, "mesh not found", http.StatusNotFound)
		return
	case err != nil:
		log.Printf("relay: get mesh %q: %v", name, err)
		http.Error(w, "mesh unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

// HandleStoreMetrics serves the cache counters of the mesh store, or 404 when
// the store does not keep any.
func (h *MeshHandler) HandleStoreMetrics(w http.ResponseWriter, _ *http.Request) {
	src, ok := h.store.(interface {
		Metrics() meshstore.MetricsSnapshot
	})
	if !ok {
		http.Error(w, "mesh store keeps no metrics", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(src.Metrics())
}

func (h *Hub) HandleRooms(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Rooms())
}

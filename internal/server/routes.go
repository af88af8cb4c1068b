package server

import (
	"net/http"

	"meshsync/internal/relay"
)

func NewMux(hub *relay.Hub, meshHandler *relay.MeshHandler) http.Handler {
	mux := http.NewServeMux()

	// Relay
	mux.HandleFunc("/ws", hub.HandleWS)
	mux.HandleFunc("/meshes/", meshHandler.HandleMesh)

	// Debug
	mux.HandleFunc("/debug/rooms", hub.HandleRooms)
	mux.HandleFunc("/debug/meshstore", meshHandler.HandleStoreMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return CORS(mux)
}

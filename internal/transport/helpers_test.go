package transport

import (
	"net/http"

	"meshsync/internal/relay"
)

func httpHandler(hub *relay.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	return mux
}

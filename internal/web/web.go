// Package web serves the embedded board client and mounts the WebSocket
// endpoint. Presentation only; the protocol lives in pkg/wire.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/park285/chess-live/internal/ws"
)

//go:embed static
var staticFiles embed.FS

// Handler returns the root HTTP handler: "/" for the static client, "/ws"
// for the gateway.
func Handler(hub *ws.Hub) http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(sub)))
	mux.HandleFunc("/ws", hub.ServeWS)
	return mux
}

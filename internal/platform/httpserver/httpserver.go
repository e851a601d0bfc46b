// Package httpserver builds the FastPass HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server. No write timeout is set: the popup's live preview
// holds a streaming response open for as long as the window stays up.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

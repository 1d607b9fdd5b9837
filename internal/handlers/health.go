package handlers

import "net/http"

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}

// Root is the public landing response.
func Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "secure document exchange API is live"})
}

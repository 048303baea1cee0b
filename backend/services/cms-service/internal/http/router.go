package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	ControlBlock   http.HandlerFunc
	ControlUnblock http.HandlerFunc
	ControlStop    http.HandlerFunc
	Health         http.HandlerFunc
}

// NewRouter registers the control surface.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /cms/chargers/{id}/block", routes.ControlBlock)
	mux.Handle("POST /cms/chargers/{id}/unblock", routes.ControlUnblock)
	mux.Handle("POST /cms/chargers/{id}/stop", routes.ControlStop)
	mux.Handle("GET /health", routes.Health)
	return mux
}

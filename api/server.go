// Package api exposes an XCSF instance over HTTP (learn/predict/state/
// save/load) and a websocket telemetry stream, routed with gorilla/mux and
// reusing niceyeti-tabular's ping/pong liveness pattern from its websocket
// server for the stream.
package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/rpreen/xcsf"
)

// Server wraps an XCSF instance with a mutex, since HTTP handlers run
// concurrently but the engine's trial methods are not safe for concurrent
// calls (see engine.Engine's doc comment).
type Server struct {
	mu   sync.Mutex
	x    *xcsf.XCSF
	path string // default save/load path when a request omits one
}

// New returns a Server wrapping x. path is used by /save and /load when
// the request body omits an explicit path.
func New(x *xcsf.XCSF, path string) *Server {
	return &Server{x: x, path: path}
}

// Router builds the mux.Router exposing this server's routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/learn", s.handleLearn).Methods(http.MethodPost)
	r.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/save", s.handleSave).Methods(http.MethodPost)
	r.HandleFunc("/load", s.handleLoad).Methods(http.MethodPost)
	r.HandleFunc("/telemetry", s.handleTelemetry)
	return r
}

// resolvePath returns requested if non-empty, else the server's default.
func (s *Server) resolvePath(requested string) string {
	if requested != "" {
		return requested
	}
	return s.path
}

// Package web provides the HTTP status and settings API for the
// wind-sensor daemon.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	log "github.com/inconshreveable/log15"

	"github.com/sweeney/wind-sensor/internal/config"
	"github.com/sweeney/wind-sensor/internal/status"
)

var logger = log.New("module", "web")

// Server serves the status page and the settings API over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	settings   *config.Store
}

// New creates a Server that reads state from the given tracker and
// serves settings from the given store.
func New(addr string, tracker *status.Tracker, settings *config.Store) *Server {
	s := &Server{tracker: tracker, settings: settings}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/config", s.handleConfig)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// SettingsJSON is the wire form of the runtime settings.
type SettingsJSON struct {
	FilterGain         float64 `json:"filter_gain"`
	DirectionOffsetDeg int     `json:"direction_offset_deg"`
	DebugEnabled       bool    `json:"debug_enabled"`
}

func toJSON(s config.Settings) SettingsJSON {
	return SettingsJSON{
		FilterGain:         s.FilterGain,
		DirectionOffsetDeg: s.DirectionOffsetDeg,
		DebugEnabled:       s.DebugEnabled,
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeSettings(w, s.settings.Current())

	case http.MethodPut:
		var in SettingsJSON
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		applied, err := s.settings.Replace(config.Settings{
			FilterGain:         in.FilterGain,
			DirectionOffsetDeg: in.DirectionOffsetDeg,
			DebugEnabled:       in.DebugEnabled,
		})
		if err != nil {
			// Settings are active in memory; only persistence failed.
			logger.Error("persist settings", "err", err)
			http.Error(w, "settings applied but not persisted", http.StatusInternalServerError)
			return
		}
		logger.Info("settings replaced",
			"gain", applied.FilterGain,
			"offset", applied.DirectionOffsetDeg,
			"debug", applied.DebugEnabled)
		s.writeSettings(w, applied)

	default:
		w.Header().Set("Allow", "GET, PUT")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) writeSettings(w http.ResponseWriter, cur config.Settings) {
	w.Header().Set("Content-Type", "application/json")
	data, _ := json.MarshalIndent(toJSON(cur), "", "  ")
	w.Write(data)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TFMV/nodefield/engine"
	"github.com/TFMV/nodefield/metrics"
	"github.com/TFMV/nodefield/models"
	"github.com/TFMV/nodefield/render"
)

// FrameSource is what the server needs from the frame loop
type FrameSource interface {
	Latest() (models.FrameSnapshot, bool)
	Topology() engine.Topology
	Subscribe(fn func(models.FrameSnapshot)) (unsubscribe func())
	Reconfigure(cfg engine.Config) error
	Config() engine.Config
	Running() bool
}

// Config for the server
type Config struct {
	Port   int
	Render *render.OutputOptions // defaults for /render and the viewer page
}

// Server exposes frames over HTTP
type Server struct {
	config  Config
	source  FrameSource
	hub     *Hub
	metrics *metrics.Metrics
}

// New creates a server reading frames from source
func New(config Config, source FrameSource, m *metrics.Metrics) *Server {
	if config.Render == nil {
		config.Render = render.NewDefaultOptions("html")
	}
	return &Server{
		config:  config,
		source:  source,
		hub:     NewHub(m),
		metrics: m,
	}
}

// Hub returns the frame stream hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler registers all routes on a fresh mux
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/frame", s.handleFrame)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("GET /api/nodes/{id}", s.handleNode)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /render", s.handleRender)
	mux.Handle("GET /stream", s.hub)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start serves until ctx is canceled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)
	unsubscribe := s.source.Subscribe(s.hub.Broadcast)
	defer unsubscribe()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // frame streams are long-lived
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %d...", s.config.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		// cancel the hub first so open streams return and Shutdown can finish
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		log.Println("Shutting down server...")
		return server.Shutdown(shutdownCtx)
	}
}

// handleIndex serves the live viewer page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.source.Latest()
	if !ok {
		frame = models.FrameSnapshot{SimulationID: s.source.Topology().SimulationID}
	}

	output, err := (&render.HTMLRenderer{}).Render(&frame, s.config.Render)
	if err != nil {
		http.Error(w, "Error rendering page: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(output)
}

// handleFrame returns the latest frame as JSON
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.source.Latest()
	if !ok {
		http.Error(w, "No frame available yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// handleGraph returns the fixed topology
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Topology())
}

// NodeDetail describes one node in the latest frame
type NodeDetail struct {
	ID        int              `json:"id"`
	Tick      uint64           `json:"tick"`
	Position  models.Vec3      `json:"position"`
	Neighbors []int            `json:"neighbors"`
	Segments  []models.Segment `json:"segments"`
}

// handleNode returns a node's position and its edges in the latest frame
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid node id: "+err.Error(), http.StatusBadRequest)
		return
	}

	frame, ok := s.source.Latest()
	if !ok {
		http.Error(w, "No frame available yet", http.StatusServiceUnavailable)
		return
	}

	position, err := frame.Position(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	detail := NodeDetail{
		ID:        id,
		Tick:      frame.Tick,
		Position:  position,
		Neighbors: []int{},
		Segments:  []models.Segment{},
	}
	touching := frame.FilterEdges(func(e models.Edge) bool { return e.A == id || e.B == id })
	for _, e := range touching {
		other := e.A
		if other == id {
			other = e.B
		}
		seg, err := frame.Segment(id, other)
		if err != nil {
			http.Error(w, "Error resolving edge: "+err.Error(), http.StatusInternalServerError)
			return
		}
		detail.Neighbors = append(detail.Neighbors, other)
		detail.Segments = append(detail.Segments, seg)
	}

	writeJSON(w, http.StatusOK, detail)
}

// handleRender renders the latest frame in the requested format
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "svg"
	}

	renderer, err := render.GetRenderer(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	options := *s.config.Render
	options.Format = format
	if v := r.URL.Query().Get("width"); v != "" {
		if width, err := strconv.Atoi(v); err == nil && width > 0 {
			options.Width = float64(width)
		}
	}
	if v := r.URL.Query().Get("height"); v != "" {
		if height, err := strconv.Atoi(v); err == nil && height > 0 {
			options.Height = float64(height)
		}
	}

	frame, ok := s.source.Latest()
	if !ok {
		http.Error(w, "No frame available yet", http.StatusServiceUnavailable)
		return
	}

	output, err := renderer.Render(&frame, &options)
	if err != nil {
		http.Error(w, "Error rendering frame: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType(format))
	w.Write(output)
}

// handleReset rebuilds the simulation. Parameters left out keep the
// values of the running simulation.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	cfg := s.source.Config()
	q := r.URL.Query()

	var err error
	if v := q.Get("nodes"); v != "" {
		if cfg.NodeCount, err = strconv.Atoi(v); err != nil {
			http.Error(w, "Invalid nodes: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("k"); v != "" {
		if cfg.K, err = strconv.Atoi(v); err != nil {
			http.Error(w, "Invalid k: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("velocity_scale"); v != "" {
		if cfg.VelocityScale, err = strconv.ParseFloat(v, 64); err != nil {
			http.Error(w, "Invalid velocity_scale: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("seed"); v != "" {
		if cfg.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			http.Error(w, "Invalid seed: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("noise"); v != "" {
		cfg.Noise = v
	}

	if err := s.source.Reconfigure(cfg); err != nil {
		http.Error(w, "Invalid configuration: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.source.Topology())
}

// ContentType returns the MIME type for a render format
func ContentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "json":
		return "application/json"
	case "html":
		return "text/html; charset=utf-8"
	case "dot":
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/voxel-timelapse/pkg/config"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/output"
	"github.com/df07/voxel-timelapse/pkg/timelapse"
)

// Request limits
const (
	minSize   = 16
	maxSize   = 1920
	maxFrames = 600
)

// Server handles web requests for the timelapse preview
type Server struct {
	port      int
	cfg       config.Config
	driver    *timelapse.Driver
	converter output.Converter
	logger    core.Logger
}

// NewServer builds the scene described by cfg once and serves previews of it
func NewServer(port int, cfg config.Config, driver *timelapse.Driver, logger core.Logger) *Server {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Server{
		port:      port,
		cfg:       cfg,
		driver:    driver,
		converter: cfg.Converter(),
		logger:    logger,
	}
}

// FrameRequest selects the frames and image size of a preview
type FrameRequest struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Frames    int     `json:"frames"`
	TimeOfDay float64 `json:"timeOfDay"` // Time of day of the first frame
	Cycles    float64 `json:"cycles"`    // Days elapsed over the preview
	Index     int     `json:"index"`     // Frame rendered by /api/frame
}

// Stats represents render statistics
type Stats struct {
	Tiles            int     `json:"tiles"`
	Workers          int     `json:"workers"`
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	AverageSamples   float64 `json:"averageSamples"`
	AverageLuminance float64 `json:"averageLuminance"`
	RenderMs         int64   `json:"renderMs"`
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("static/")))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/api/timelapse", s.handleTimelapse)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Infof("Starting web server on http://localhost%s", addr)
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleFrame renders a single frame and returns it as PNG
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrameRequest(r.URL.Query())
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Index >= req.Frames {
		http.Error(w, fmt.Sprintf("Invalid request: index %d outside %d frames", req.Index, req.Frames), http.StatusBadRequest)
		return
	}

	driver := s.driver.WithSettings(s.settings(req))
	fb, info, err := driver.RenderFrame(r.Context(), req.Index)
	if err != nil {
		http.Error(w, fmt.Sprintf("Render error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Time-Of-Day", output.ClockLabel(info.TimeOfDay))
	if err := png.Encode(w, s.converter.ToRGBA(req.Index, fb)); err != nil {
		s.logger.Warnf("Failed to write frame: %v", err)
	}
}

func (s *Server) settings(req *FrameRequest) timelapse.Settings {
	return timelapse.Settings{
		Width:     req.Width,
		Height:    req.Height,
		Frames:    req.Frames,
		FPS:       s.cfg.FPS,
		DayStart:  req.TimeOfDay,
		DayCycles: req.Cycles,
	}
}

// parseFrameRequest parses request parameters
func (s *Server) parseFrameRequest(values url.Values) (*FrameRequest, error) {
	req := &FrameRequest{}

	var err error
	if req.Width, err = parseIntParam(values, "width", 320, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 180, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(values, "frames", 24, 1, maxFrames); err != nil {
		return nil, err
	}
	if req.Index, err = parseIntParam(values, "index", 0, 0, maxFrames-1); err != nil {
		return nil, err
	}
	if req.TimeOfDay, err = parseFloatParam(values, "t", s.cfg.Day.Start, 0, 1); err != nil {
		return nil, err
	}
	if req.Cycles, err = parseFloatParam(values, "cycles", s.cfg.Day.Cycles, 0, 100); err != nil {
		return nil, err
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if !(parsed >= min && parsed <= max) {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

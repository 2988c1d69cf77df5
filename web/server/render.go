package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/df07/voxel-timelapse/pkg/output"
	"github.com/df07/voxel-timelapse/pkg/renderer"
	"github.com/df07/voxel-timelapse/pkg/timelapse"
)

// FrameUpdate represents a single finished frame sent via SSE
type FrameUpdate struct {
	Index       int    `json:"index"`
	TotalFrames int    `json:"totalFrames"`
	Clock       string `json:"clock"`     // Time of day as HH:MM
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleTimelapse renders a short timelapse and streams every frame via SSE
func (s *Server) handleTimelapse(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	// Single writer goroutine; the handler waits for it before returning
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseFrameRequest(r.URL.Query())
	if err != nil {
		s.sendEvent(ctx, sseEventChan, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), s.logger, consoleChan)
	var consoleWG sync.WaitGroup
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()

	stream := &frameStream{
		server:    s,
		ctx:       ctx,
		events:    sseEventChan,
		total:     req.Frames,
		start:     time.Now(),
		converter: s.converter,
	}
	driver := s.driver.WithSettings(s.settings(req), timelapse.WithLogger(webLogger), timelapse.WithFrameCallback(stream.frameDone))

	err = driver.Run(ctx, stream)

	close(consoleChan)
	consoleWG.Wait()

	if err != nil {
		s.sendEvent(ctx, sseEventChan, "error", fmt.Sprintf("Render error: %v", err))
		return
	}
	s.sendEvent(ctx, sseEventChan, "complete", "Rendering completed")
}

// frameStream adapts the SSE channel to output.FrameWriter. Frames are encoded when
// written and sent once the driver reports their statistics.
type frameStream struct {
	server    *Server
	ctx       context.Context
	events    chan SSEEvent
	total     int
	start     time.Time
	converter output.Converter
	pending   string
}

func (f *frameStream) WriteFrame(index int, fb *renderer.FrameBuffer) error {
	data, err := imageToBase64PNG(f.converter.ToRGBA(index, fb))
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	f.pending = data
	return nil
}

func (f *frameStream) Close() error { return nil }

func (f *frameStream) frameDone(info timelapse.FrameInfo) {
	update := FrameUpdate{
		Index:       info.Index,
		TotalFrames: f.total,
		Clock:       output.ClockLabel(info.TimeOfDay),
		ImageData:   f.pending,
		Stats:       statsFrom(info.Stats),
		ElapsedMs:   time.Since(f.start).Milliseconds(),
	}
	f.pending = ""

	data, err := json.Marshal(update)
	if err != nil {
		f.server.logger.Errorf("Failed to marshal frame update: %v", err)
		return
	}
	f.server.sendEvent(f.ctx, f.events, "frame", string(data))
}

func statsFrom(s renderer.FrameStats) Stats {
	return Stats{
		Tiles:            s.Tiles,
		Workers:          s.Workers,
		TotalPixels:      s.TotalPixels,
		TotalSamples:     s.TotalSamples,
		AverageSamples:   s.AverageSamples,
		AverageLuminance: s.AverageLuminance,
		RenderMs:         s.Duration.Milliseconds(),
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendEvent queues an event unless the client has gone away
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan SSEEvent, eventType, data string) {
	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: data}:
	case <-ctx.Done():
	}
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for event := range sseEventChan {
		// Keep draining after a disconnect so senders never block
		if ctx.Err() != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards log messages as console events until consoleChan closes
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for msg := range consoleChan {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		s.sendEvent(ctx, sseEventChan, "console", string(data))
	}
}

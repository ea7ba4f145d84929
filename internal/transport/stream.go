// Package transport frames incremental chat output onto the wire. Each chunk
// becomes one JSON envelope on its own line; the terminal {"done":true}
// envelope is emitted exactly once so clients never hang waiting for an end.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Frame is one wire envelope. Exactly one field is set per frame.
type Frame struct {
	Chunk string `json:"chunk,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// StreamWriter writes frames to an HTTP response with per-frame flushing.
type StreamWriter struct {
	w        http.ResponseWriter
	flusher  http.Flusher
	enc      *json.Encoder
	doneSent bool
}

// NewStreamWriter prepares w for incremental delivery and returns a writer
// over it. Fails when the underlying writer cannot flush.
func NewStreamWriter(w http.ResponseWriter) (*StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	return &StreamWriter{
		w:       w,
		flusher: flusher,
		enc:     json.NewEncoder(w),
	}, nil
}

// WriteChunk emits one content frame.
func (s *StreamWriter) WriteChunk(text string) error {
	return s.write(Frame{Chunk: text})
}

// WriteError emits a validation-failure frame. Used only before the first
// chunk; mid-stream failures arrive as ordinary chunks.
func (s *StreamWriter) WriteError(message string) error {
	return s.write(Frame{Error: message})
}

// WriteDone emits the terminal frame. Safe to call more than once; only the
// first call writes.
func (s *StreamWriter) WriteDone() error {
	if s.doneSent {
		return nil
	}
	s.doneSent = true
	return s.write(Frame{Done: true})
}

func (s *StreamWriter) write(frame Frame) error {
	if err := s.enc.Encode(frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Relay forwards every chunk from the channel and guarantees the terminal
// frame, even when the producer panics or the client disconnects.
func (s *StreamWriter) Relay(ctx context.Context, chunks <-chan string) {
	defer s.WriteDone()

	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			if err := s.WriteChunk(chunk); err != nil {
				// Client is gone; stop forwarding and let the producer
				// observe ctx cancellation.
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

package http

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"

	perr "critiq/internal/platform/errors"
)

// SSE is a server-sent-events writer over a streaming response.
// Writes are unbuffered: every event is flushed so slow consumers see
// updates as they happen.
type SSE struct {
	w stdhttp.ResponseWriter
	f stdhttp.Flusher
}

// OpenSSE prepares w for an event stream. Fails when the underlying
// writer cannot flush (e.g. a buffering middleware got in the way).
func OpenSSE(w stdhttp.ResponseWriter) (*SSE, error) {
	f, ok := w.(stdhttp.Flusher)
	if !ok {
		return nil, perr.Internalf("response writer does not support streaming")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(stdhttp.StatusOK)
	f.Flush()
	return &SSE{w: w, f: f}, nil
}

// Send writes one named event with a raw data payload
func (s *SSE) Send(event, data string) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// SendJSON writes one named event with v marshaled as its data payload
func (s *SSE) SendJSON(event string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Send(event, string(b))
}

// Ping writes a comment line to keep intermediaries from idling out the stream
func (s *SSE) Ping() error {
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// Package http mounts the reviews endpoints
package http

import (
	"net/http"
	"strconv"
	"time"

	"critiq/internal/core/clientip"
	"critiq/internal/modkit/httpkit"
	perr "critiq/internal/platform/errors"
	"critiq/internal/platform/logger"
	"critiq/internal/services/reviews/domain"
)

const (
	defaultStreamIntervalMs = 1000
	defaultStreamPingMs     = 15000
)

// Handlers exposes the reviews HTTP surface
type Handlers struct {
	svc        domain.ServicePort
	stream     domain.StreamPort
	trustProxy bool
}

// NewHandlers constructs the handler set
func NewHandlers(svc domain.ServicePort, stream domain.StreamPort, trustProxy bool) *Handlers {
	if svc == nil || stream == nil {
		panic("reviews http handlers require service and stream ports")
	}
	return &Handlers{svc: svc, stream: stream, trustProxy: trustProxy}
}

// Register mounts the endpoints on r
func (h *Handlers) Register(r httpkit.Router) {
	r.Post("/", h.submit())
	r.Get("/", httpkit.Call(h.list))
	r.Get("/{id}", httpkit.Call(h.get))
	r.Get("/{id}/stream", h.watch)
}

func (h *Handlers) submit() httpkit.Handler {
	return httpkit.Handle(func(r *http.Request) httpkit.Response {
		in, err := httpkit.ParseJSON[domain.SubmitInput](r)
		if err != nil {
			return httpkit.Error(err)
		}
		ip := clientip.FromRequest(r, h.trustProxy)
		out, err := h.svc.Submit(r.Context(), in, ip)
		if err != nil {
			return httpkit.Error(err)
		}
		resp := httpkit.Accepted(out)
		if out.Status == domain.StatusPending {
			resp.Header = http.Header{"Location": []string{"/api/reviews/" + out.ID}}
		}
		return resp
	})
}

func (h *Handlers) get(r *http.Request) (any, error) {
	return h.svc.Get(r.Context(), httpkit.Param(r, "id"))
}

func (h *Handlers) list(r *http.Request) (any, error) {
	in, err := parseListInput(r)
	if err != nil {
		return nil, err
	}
	items, total, err := h.svc.List(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.List(items, total, in.Page, in.PageSize), nil
}

// watch bypasses the JSON envelope: the response is an SSE stream
func (h *Handlers) watch(w http.ResponseWriter, r *http.Request) {
	id := httpkit.Param(r, "id")
	log := logger.C(r.Context()).With().Str("mod", "reviews").Str("submission_id", id).Logger()

	intervalMs, err := queryInt(r, "interval_ms", defaultStreamIntervalMs, 10, 60000)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pingMs, err := queryInt(r, "ping", defaultStreamPingMs, 0, 60000)
	if err != nil {
		writeError(w, r, err)
		return
	}

	events, err := h.stream.Watch(r.Context(), id, domain.WatchOptions{
		PollInterval: time.Duration(intervalMs) * time.Millisecond,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	sse, err := httpkit.OpenSSE(w)
	if err != nil {
		log.Error().Err(err).Msg("sse open failed")
		return
	}

	var ping <-chan time.Time
	if pingMs > 0 {
		t := time.NewTicker(time.Duration(pingMs) * time.Millisecond)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping:
			if err := sse.Ping(); err != nil {
				return
			}
		case ev, open := <-events:
			if !open {
				return
			}
			if err := sse.Send(ev.Name, ev.Data); err != nil {
				log.Debug().Err(err).Msg("stream write failed; client gone")
				return
			}
		}
	}
}

func parseListInput(r *http.Request) (domain.ListInput, error) {
	q := r.URL.Query()
	in := domain.ListInput{
		Language:  q.Get("language"),
		Status:    q.Get("status"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	var err error
	if in.MinScore, err = queryInt(r, "min_score", 0, 0, 10); err != nil {
		return in, err
	}
	if in.MaxScore, err = queryInt(r, "max_score", 0, 0, 10); err != nil {
		return in, err
	}
	if in.Page, err = queryInt(r, "page", 1, 1, 1<<30); err != nil {
		return in, err
	}
	if in.PageSize, err = queryInt(r, "page_size", 20, 1, 100); err != nil {
		return in, err
	}
	return in, nil
}

// queryInt reads an integer query param, enforcing [lo, hi]
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perr.WithField(perr.InvalidArgf("%s must be an integer", name), name)
	}
	if v < lo || v > hi {
		return 0, perr.WithField(perr.InvalidArgf("%s must be between %d and %d", name, lo, hi), name)
	}
	return v, nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httpkit.Handle(func(*http.Request) httpkit.Response { return httpkit.Error(err) })(w, r)
}

// Package tracing times the phases of a long-running operation and logs
// them as a structured summary via slog. A Trace owns an ordered list of
// phases; each phase is closed before the next opens.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey string

const traceKey contextKey = "trace"

// Phase is one timed step of a Trace.
type Phase struct {
	Name     string
	Start    time.Time
	Duration time.Duration
	Attrs    map[string]any
}

// SetAttr attaches a key-value attribute to the phase.
func (p *Phase) SetAttr(key string, value any) {
	p.Attrs[key] = value
}

// Trace times a named operation split into sequential phases.
type Trace struct {
	Name    string
	TraceID string

	mu      sync.Mutex
	start   time.Time
	phases  []*Phase
	current *Phase
}

// New creates a Trace and stores it in the returned context.
func New(ctx context.Context, name string, traceID string) (context.Context, *Trace) {
	t := &Trace{
		Name:    name,
		TraceID: traceID,
		start:   time.Now(),
	}
	return context.WithValue(ctx, traceKey, t), t
}

// FromContext extracts the current Trace from ctx, or nil if none.
func FromContext(ctx context.Context) *Trace {
	if t, ok := ctx.Value(traceKey).(*Trace); ok {
		return t
	}
	return nil
}

// Phase closes the current phase, if any, and opens a new one.
func (t *Trace) Phase(name string) *Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeCurrent()
	p := &Phase{
		Name:  name,
		Start: time.Now(),
		Attrs: make(map[string]any),
	}
	t.phases = append(t.phases, p)
	t.current = p
	return p
}

// End closes the current phase and logs the whole trace, one line per
// phase plus a total.
func (t *Trace) End() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeCurrent()
	total := time.Since(t.start)
	for _, p := range t.phases {
		attrs := []any{
			"trace_id", t.TraceID,
			"operation", t.Name,
			"phase", p.Name,
			"duration_ms", p.Duration.Milliseconds(),
		}
		for k, v := range p.Attrs {
			attrs = append(attrs, k, v)
		}
		slog.Info("trace phase", attrs...)
	}
	slog.Info("trace complete",
		"trace_id", t.TraceID,
		"operation", t.Name,
		"phases", len(t.phases),
		"total_ms", total.Milliseconds(),
	)
}

// Total returns the elapsed time since the trace started.
func (t *Trace) Total() time.Duration {
	return time.Since(t.start)
}

func (t *Trace) closeCurrent() {
	if t.current != nil {
		t.current.Duration = time.Since(t.current.Start)
		t.current = nil
	}
}

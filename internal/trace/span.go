package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a process-wide monotonically increasing number.
func NextSeq() uint64 { return seqCounter.Add(1) }

type (
	tracerKey struct{}
	spanKey   struct{}
)

// WithTracer attaches t to ctx; a nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// Active reports whether an event of scope emitted under ctx may be
// recorded. At LevelError every event goes on, for the ring. Callers use it
// to skip building expensive details.
func Active(ctx context.Context, scope Scope) bool {
	t := FromContext(ctx)
	if !Enabled(t) {
		return false
	}
	return t.Level() == LevelError || t.Level().Allows(scope)
}

func currentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanKey{}).(uint64)
	return id
}

// Span is an open begin/end pair. The zero Span is a valid no-op.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Start opens a span under the span stored in ctx and returns a context
// carrying the new one. When the scope is filtered out ctx is returned as is.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	if !Active(ctx, scope) {
		return ctx, &Span{}
	}
	s := &Span{
		tracer:  FromContext(ctx),
		id:      spanCounter.Add(1),
		parent:  currentSpan(ctx),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	s.tracer.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     name,
	})
	return context.WithValue(ctx, spanKey{}, s.id), s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	d := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Dur:      d,
		Extra:    s.extra,
	})
	return d
}

// WithExtra attaches a key/value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under the span in ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	if !Active(ctx, scope) {
		return
	}
	FromContext(ctx).Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: currentSpan(ctx),
		Name:     name,
		Detail:   detail,
	})
}

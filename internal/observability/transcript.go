package observability

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TranscriptEvent is one line of an autopilot session transcript: a phase
// change, a surfaced thought, or an executed action with its outcome.
type TranscriptEvent struct {
	Kind      string         `json:"kind"` // "phase", "thought", "action"
	Timestamp time.Time      `json:"timestamp"`
	Session   string         `json:"session"`
	Step      int            `json:"step"`
	Function  string         `json:"function,omitempty"`
	Message   string         `json:"message,omitempty"`
	Status    string         `json:"status,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
}

// TranscriptLogger appends session transcript events to a JSON log file.
// It is disabled until InitTranscript is called.
type TranscriptLogger struct {
	logger  zerolog.Logger
	enabled bool
	mu      sync.Mutex
	file    *os.File
}

var (
	transcriptOnce sync.Once
	transcriptInst *TranscriptLogger
)

// GetTranscript returns the global transcript logger.
func GetTranscript() *TranscriptLogger {
	transcriptOnce.Do(func() {
		if transcriptInst == nil {
			transcriptInst = &TranscriptLogger{logger: zerolog.Nop()}
		}
	})
	return transcriptInst
}

// InitTranscript points the global transcript logger at a file.
func InitTranscript(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	transcriptInst = &TranscriptLogger{
		logger:  zerolog.New(file).With().Timestamp().Logger(),
		enabled: true,
		file:    file,
	}
	return nil
}

// Record appends one transcript event, stamping the active trace when the
// context carries one.
func (t *TranscriptLogger) Record(ctx context.Context, event TranscriptEvent) {
	if !t.enabled {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		event.TraceID = span.SpanContext().TraceID().String()
		span.AddEvent(event.Kind, trace.WithAttributes(
			attribute.String("transcript.session", event.Session),
			attribute.Int("transcript.step", event.Step),
			attribute.String("transcript.status", event.Status),
		))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.logger.Log().
		Str("kind", event.Kind).
		Str("session", event.Session).
		Int("step", event.Step).
		Str("trace_id", event.TraceID)

	if event.Function != "" {
		entry = entry.Str("function", event.Function)
	}
	if event.Status != "" {
		entry = entry.Str("status", event.Status)
	}
	if event.Metadata != nil {
		entry = entry.Interface("metadata", event.Metadata)
	}

	entry.Msg(event.Message)
}

// Close closes the transcript file handle.
func (t *TranscriptLogger) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file != nil {
		return t.file.Close()
	}
	return nil
}

// RecordTranscript appends one event through the global transcript logger.
func RecordTranscript(ctx context.Context, event TranscriptEvent) {
	GetTranscript().Record(ctx, event)
}

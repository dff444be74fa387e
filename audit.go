package portalcore

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// AuditEvent is one observable portal fact: a session transition, a modal
// open or close, or an enrollment outcome. Events carry the acting account
// and store scope so one stream can serve several portal instances.
type AuditEvent struct {
	At        time.Time         `json:"at"`
	Type      string            `json:"type"`
	Nichandle string            `json:"nichandle,omitempty"`
	ScopeID   string            `json:"scopeId,omitempty"`
	Modal     string            `json:"modal,omitempty"`
	ClientIP  string            `json:"clientIp,omitempty"`
	Success   bool              `json:"success"`
	ErrorCode string            `json:"errorCode,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// AuditSink receives events from the portal's dispatcher, one at a time and
// never concurrently. A slow sink delays delivery, not the operations that
// emitted the events.
type AuditSink interface {
	Write(event AuditEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) Write(AuditEvent) {}

// ChannelSink hands events to a consumer goroutine through a buffered
// channel. Write blocks when the consumer falls behind; pair it with
// DropIfFull when the consumer cannot be trusted to keep up.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Write(event AuditEvent) {
	s.events <- event
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink appends one JSON object per line to the given writer,
// typically stderr or a log file.
type JSONWriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	if w == nil {
		return &JSONWriterSink{}
	}
	return &JSONWriterSink{enc: json.NewEncoder(w)}
}

func (s *JSONWriterSink) Write(event AuditEvent) {
	if s == nil || s.enc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}

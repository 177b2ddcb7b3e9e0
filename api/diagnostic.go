package api

import (
	"context"
	"log/slog"
	"sync"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"info", "warning", "error"}

func (s Severity) String() string {
	return severityNames[s]
}

// Diagnostic is a message about a conversion in progress.
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int // 0 when not tied to a line
}

// Sink receives diagnostics as they are produced.
type Sink interface {
	Report(d Diagnostic)
}

// SlogSink logs diagnostics. A nil Logger means slog.Default().
type SlogSink struct {
	Logger *slog.Logger
}

// Report logs d at the level matching its severity.
func (s SlogSink) Report(d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo
	switch d.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}

	args := []any{}
	if d.Line > 0 {
		args = append(args, "Line", d.Line)
	}
	logger.Log(context.Background(), level, d.Message, args...)
}

// CollectSink keeps every diagnostic it receives.
type CollectSink struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// Report stores d.
func (s *CollectSink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = append(s.diagnostics, d)
}

// Diagnostics returns a copy of what was collected so far.
func (s *CollectSink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.diagnostics...)
}

// Reset drops everything collected.
func (s *CollectSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = nil
}

// Package testutil provides shared test doubles.
package testutil

import (
	"strings"
	"sync"

	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry so tests can
// assert on logging behaviour.
type MockLogger struct {
	mu       sync.Mutex
	name     string
	messages []LogMessage
}

// LogMessage is a single log entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, LogMessage{
		Level:   level,
		Logger:  m.name,
		Message: msg,
		Fields:  fields,
	})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }

// Fatal records the entry but does not exit, so tests stay alive.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

// With returns the same recorder; pre-bound fields are not tracked.
func (m *MockLogger) With(fields ...logging.Field) logging.Logger { return m }

// Named returns a child view sharing the same message store.
func (m *MockLogger) Named(name string) logging.Logger {
	derived := name
	if m.name != "" {
		derived = m.name + "." + name
	}
	return &namedMockLogger{parent: m, name: derived}
}

// namedMockLogger forwards to its parent store under a derived name.
type namedMockLogger struct {
	parent *MockLogger
	name   string
}

func (n *namedMockLogger) log(level, msg string, fields []logging.Field) {
	n.parent.mu.Lock()
	defer n.parent.mu.Unlock()
	n.parent.messages = append(n.parent.messages, LogMessage{
		Level:   level,
		Logger:  n.name,
		Message: msg,
		Fields:  fields,
	})
}

func (n *namedMockLogger) Debug(msg string, fields ...logging.Field) { n.log("debug", msg, fields) }
func (n *namedMockLogger) Info(msg string, fields ...logging.Field)  { n.log("info", msg, fields) }
func (n *namedMockLogger) Warn(msg string, fields ...logging.Field)  { n.log("warn", msg, fields) }
func (n *namedMockLogger) Error(msg string, fields ...logging.Field) { n.log("error", msg, fields) }
func (n *namedMockLogger) Fatal(msg string, fields ...logging.Field) { n.log("fatal", msg, fields) }

func (n *namedMockLogger) With(fields ...logging.Field) logging.Logger { return n }

func (n *namedMockLogger) Named(name string) logging.Logger {
	derived := name
	if n.name != "" {
		derived = n.name + "." + name
	}
	return &namedMockLogger{parent: n.parent, name: derived}
}

// Messages returns a copy of all recorded entries.
func (m *MockLogger) Messages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Clear discards all recorded entries.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = m.messages[:0]
}

// HasMessage reports whether an entry at the given level contains msg as a
// substring.
func (m *MockLogger) HasMessage(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logged := range m.messages {
		if logged.Level == level && strings.Contains(logged.Message, msg) {
			return true
		}
	}
	return false
}

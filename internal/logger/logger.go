// Package logger defines the logging collaborator consumed by the
// development server and a default implementation.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Level classifies a log message.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Message carries one log line plus presentation hints.
type Message struct {
	// Text is the message body.
	Text string

	// Level is the severity (default info).
	Level Level

	// Color is a presentation hint ("red", "green", ...). Implementations
	// may ignore it.
	Color string

	// Force emits the message even when the implementation would normally
	// suppress it (quiet mode, level filtering).
	Force bool
}

// Logger is the logging collaborator the server writes through. It is
// injected at construction time; the server never logs directly.
type Logger interface {
	// Message logs a standard message with optional presentation hints.
	Message(msg Message)

	// Error logs an error message.
	Error(text string)
}

// Option configures a Message.
type Option func(*Message)

// WithLevel sets the message level.
func WithLevel(level Level) Option {
	return func(m *Message) { m.Level = level }
}

// WithColor sets the color hint.
func WithColor(color string) Option {
	return func(m *Message) { m.Color = color }
}

// WithForce marks the message as unsuppressable.
func WithForce() Option {
	return func(m *Message) { m.Force = true }
}

// Msg builds a Message from text plus options.
func Msg(text string, opts ...Option) Message {
	m := Message{Text: text, Level: LevelInfo}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// charmLogger implements Logger on charmbracelet/log.
type charmLogger struct {
	l *log.Logger
}

// New returns the default Logger, writing styled output to stderr.
func New() Logger {
	return &charmLogger{
		l: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		}),
	}
}

// NewWithLogger wraps an existing charmbracelet logger.
func NewWithLogger(l *log.Logger) Logger {
	return &charmLogger{l: l}
}

func (c *charmLogger) Message(msg Message) {
	switch msg.Level {
	case LevelDebug:
		if msg.Force {
			c.l.Info(msg.Text)
			return
		}
		c.l.Debug(msg.Text)
	case LevelWarn:
		c.l.Warn(msg.Text)
	case LevelError:
		c.l.Error(msg.Text)
	default:
		c.l.Info(msg.Text)
	}
}

func (c *charmLogger) Error(text string) {
	c.l.Error(text)
}

// Discard returns a Logger that drops everything. Useful in tests.
func Discard() Logger {
	return discard{}
}

type discard struct{}

func (discard) Message(Message) {}
func (discard) Error(string)    {}

// Package logging defines the logger used for statement diagnostics and the
// explicit fallback chain that selects one per call.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger receives diagnostic records. Arguments are free-form; statement
// records are logged as (sql, params, sessionID).
type Logger interface {
	Log(args ...any)
	Error(args ...any)
}

// Level selects the minimum severity written by a Console.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// Format selects the Console output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Console writes records through log/slog. Log maps to INFO, Error to ERROR.
type Console struct {
	logger *slog.Logger
}

type ConsoleOption func(*consoleConfig)

type consoleConfig struct {
	level  Level
	format Format
}

func WithLevel(l Level) ConsoleOption {
	return func(c *consoleConfig) { c.level = l }
}

func WithFormat(f Format) ConsoleOption {
	return func(c *consoleConfig) { c.format = f }
}

func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	cfg := consoleConfig{level: LevelInfo, format: FormatText}
	for _, opt := range opts {
		opt(&cfg)
	}

	var level slog.Level
	switch cfg.level {
	case LevelDebug:
		level = slog.LevelDebug
	case LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.format == FormatJSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return &Console{logger: slog.New(handler)}
}

func (c *Console) Log(args ...any) {
	msg, attrs := split(args)
	c.logger.Info(msg, attrs...)
}

func (c *Console) Error(args ...any) {
	msg, attrs := split(args)
	c.logger.Error(msg, attrs...)
}

// split uses the first argument as the message. A statement record
// (sql, params, session) gets named attributes; anything else is joined
// into a single "args" attribute.
func split(args []any) (string, []any) {
	if len(args) == 0 {
		return "", nil
	}
	msg := fmt.Sprint(args[0])
	rest := args[1:]

	if len(rest) == 2 {
		return msg, []any{slog.Any("params", rest[0]), slog.Any("session", rest[1])}
	}
	if len(rest) == 0 {
		return msg, nil
	}

	parts := make([]string, len(rest))
	for i, a := range rest {
		parts[i] = fmt.Sprint(a)
	}
	return msg, []any{slog.String("args", strings.Join(parts, " "))}
}

type nop struct{}

func (nop) Log(...any)   {}
func (nop) Error(...any) {}

// Nop discards every record.
var Nop Logger = nop{}

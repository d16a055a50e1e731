// Package xlog adapts luxfi/log's key-value root logger for this module,
// the same way the teacher repo's log/compat.go re-exports luxfi/log as a
// package-level API. There is no go-ethereum handler shim here: nothing in
// this module depends on go-ethereum's log package, so only the pieces the
// engine, aggregator client, blockhash cache, submission and CLI packages
// actually call are kept.
package xlog

import (
	"log/slog"
	"os"

	luxlog "github.com/luxfi/log"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

func Debug(msg string, ctx ...interface{}) { luxlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { luxlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { luxlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { luxlog.Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { luxlog.Root().Crit(msg, ctx...) }

// SetLevel installs a root logger writing to stderr at the given level.
// Called once from cmd/arbexec at startup with the configured log_level.
func SetLevel(levelName string) error {
	level, err := luxlog.ToLevel(levelName)
	if err != nil {
		return err
	}
	luxlog.SetDefault(luxlog.NewLogger(luxlog.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
	return nil
}

// New returns a child logger tagged with a component name, e.g.
// xlog.New("engine") so every line it emits carries "component=engine".
func New(component string) luxlog.Logger {
	return luxlog.Root().With("component", component)
}

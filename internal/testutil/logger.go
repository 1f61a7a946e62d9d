// Package testutil holds fixtures shared by package tests: sample packages
// and loggers bound to the running test.
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug logger whose records go to t.Log, so they
// show only for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return NewTestLoggerAt(t, slog.LevelDebug)
}

// NewTestLoggerAt is NewTestLogger with a minimum level.
func NewTestLoggerAt(t testing.TB, level slog.Leveler) *slog.Logger {
	t.Helper()
	h := slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

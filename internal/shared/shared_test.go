package shared

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
)

func TestShared(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		if logger == nil {
			t.Fatal("expected logger")
		}

		logger.Info("hello")
		if buf.Len() == 0 {
			t.Error("expected log output")
		}
	})

	t.Run("NewLogger Nil Writer Defaults", func(t *testing.T) {
		if logger := NewLogger(nil); logger == nil {
			t.Fatal("expected logger with default writer")
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "app", "spotctl")

		logger.Info("hello")
		if !bytes.Contains(buf.Bytes(), []byte("app")) {
			t.Error("expected bound key in log output")
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)

		logger.Info("suppressed")
		if buf.Len() != 0 {
			t.Error("expected info to be suppressed at error level")
		}
	})

	t.Run("OpenBrowser Unsupported Platform", func(t *testing.T) {
		original := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = original }()

		if err := OpenBrowser("http://localhost"); err == nil {
			t.Error("expected error on unsupported platform")
		}
	})

	t.Run("GenerateState", func(t *testing.T) {
		a := GenerateState()
		b := GenerateState()

		if a == "" || b == "" {
			t.Error("expected non-empty state")
		}
		if a == b {
			t.Error("expected unique states")
		}
	})
}

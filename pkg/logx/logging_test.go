package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLineCarriesLevelCallerAndMessage(t *testing.T) {
	var buf bytes.Buffer
	log := NewTo(&buf, "debug")

	log.Info("hello", String("k", "v"))

	line := buf.String()
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "logging_test.go:")
	assert.Contains(t, line, "hello")
	assert.Contains(t, line, "k=v")
}

func TestCriticalDoesNotExit(t *testing.T) {
	var buf bytes.Buffer
	log := NewTo(&buf, "info")

	log.Critical("missing credentials")

	assert.Contains(t, buf.String(), "[CRITICAL]")
	assert.Contains(t, buf.String(), "missing credentials")
}

func TestServiceApplySwapsLevel(t *testing.T) {
	var buf bytes.Buffer
	svc, log := newService(Config{Level: "info", Console: true}, &buf)
	t.Cleanup(func() { _ = svc.Close() })

	log.Debug("hidden")
	require.NotContains(t, buf.String(), "hidden")

	svc.Apply(Config{Level: "debug", Console: true})
	log.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Equal(t, "debug", svc.Config().Level)
}

func TestWithKeepsFixedFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewTo(&buf, "info").With(String("comp", "poller"))

	log.Warn("tick")

	assert.True(t, strings.Contains(buf.String(), "comp=poller"))
}

func TestZeroLoggerIsNoop(t *testing.T) {
	var log Logger
	require.True(t, log.IsZero())
	log.Error("nothing")
	assert.False(t, Nop().IsZero())
}

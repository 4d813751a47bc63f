package logger

import (
	"bytes"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		verbose   bool
		expectLog bool
	}{
		{"logs when SENSORDASH_DEBUG is set", "1", false, true},
		{"logs when SENSORDASH_DEBUG is any value", "true", false, true},
		{"does not log when SENSORDASH_DEBUG is empty", "", false, false},
		{"logs when verbose is enabled", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.SetOutput(&buf)
			defer log.SetOutput(os.Stderr)

			if tt.envValue != "" {
				t.Setenv(DebugEnvVar, tt.envValue)
			} else {
				os.Unsetenv(DebugEnvVar)
			}
			SetVerbose(tt.verbose)
			defer SetVerbose(false)

			l := NewEnvLogger("[test]")
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "[test] test message arg")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := NewEnvLogger("[poller]")
	l.Info("fetched %d sensors", 4)
	l.Warn("history unavailable")
	l.Error("request failed")

	out := buf.String()
	assert.Contains(t, out, "[poller] fetched 4 sensors")
	assert.Contains(t, out, "[poller] WARN: history unavailable")
	assert.Contains(t, out, "[poller] ERROR: request failed")
}

func TestNoopLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := Noop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")

	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	l.Debug("debug %d", 1)
	l.Info("info")
	l.Warn("warn")

	msgs := l.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug 1"}, msgs[0])
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))

	l.Clear()
	assert.Empty(t, l.Messages())
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("tick %d", i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Messages(), 20)
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	buf := NewBufferLogger()
	SetDefault(buf)
	Default().Info("hello")

	assert.True(t, buf.HasLevel("info"))
}

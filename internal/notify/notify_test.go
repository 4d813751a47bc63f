package notify

import (
	"sync"
	"testing"

	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind   Kind
		expect string
	}{
		{KindInfo, "info"},
		{KindSuccess, "success"},
		{KindWarning, "warning"},
		{KindError, "error"},
		{Kind(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.kind.String())
		})
	}
}

func TestLogNotifier_MapsLevels(t *testing.T) {
	buf := logger.NewBufferLogger()
	n := NewLogNotifier(buf)

	n.Notify(KindError, "request failed")
	n.Notify(KindWarning, "history unavailable")
	n.Notify(KindSuccess, "refreshed")

	msgs := buf.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "error", msgs[0].Level)
	assert.Equal(t, "warn", msgs[1].Level)
	assert.Equal(t, "info", msgs[2].Level)
	assert.Equal(t, "refreshed", msgs[2].Message)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(KindError, "boom")
		}()
	}
	wg.Wait()
	r.Notify(KindSuccess, "ok")

	assert.Equal(t, 10, r.Count(KindError))
	assert.Equal(t, 1, r.Count(KindSuccess))
	assert.Len(t, r.All(), 11)

	r.Reset()
	assert.Empty(t, r.All())
}

func TestFuncAndDiscard(t *testing.T) {
	var got []Kind
	f := Func(func(kind Kind, _ string) { got = append(got, kind) })
	f.Notify(KindInfo, "x")
	assert.Equal(t, []Kind{KindInfo}, got)

	assert.NotPanics(t, func() { Discard().Notify(KindError, "dropped") })
}

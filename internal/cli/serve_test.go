package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse-iot/sensordash/internal/config"
)

func TestApplyServeOptions(t *testing.T) {
	base := config.DefaultConfig().Server

	t.Run("no flags keeps config", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.Flags().Bool("simulate", false, "")
		got := applyServeOptions(base, ServeOptions{}, cmd)
		assert.Equal(t, base, got)
	})

	t.Run("flags override", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.Flags().Bool("simulate", false, "")
		require.NoError(t, cmd.Flags().Set("simulate", "true"))

		got := applyServeOptions(base, ServeOptions{
			Addr:       ":8080",
			Password:   "pw",
			MQTTBroker: "tcp://broker:1883",
			Simulate:   true,
		}, cmd)
		assert.Equal(t, ":8080", got.Addr)
		assert.Equal(t, "pw", got.Password)
		assert.Equal(t, "tcp://broker:1883", got.MQTT.Broker)
		assert.True(t, got.Simulate)
		assert.Equal(t, base.MQTT.Topic, got.MQTT.Topic)
	})

	t.Run("simulate in config survives unset flag", func(t *testing.T) {
		cfg := base
		cfg.Simulate = true
		cmd := &cobra.Command{}
		cmd.Flags().Bool("simulate", false, "")
		assert.True(t, applyServeOptions(cfg, ServeOptions{}, cmd).Simulate)
	})
}

func TestNewBackend_Seeded(t *testing.T) {
	a := testApp(t, "http://localhost:5000")
	cfg := a.Config.Server

	b, err := newBackend(a, cfg, ServeOptions{}, &bytes.Buffer{})
	require.NoError(t, err)
	defer b.stop()

	assert.Len(t, b.store.List(), 4)
	assert.Nil(t, b.ingestor)
	assert.Nil(t, b.simulator)
}

func TestNewBackend_NoSeed(t *testing.T) {
	a := testApp(t, "http://localhost:5000")

	b, err := newBackend(a, a.Config.Server, ServeOptions{NoSeed: true}, &bytes.Buffer{})
	require.NoError(t, err)
	defer b.stop()

	assert.Empty(t, b.store.List())
}

func TestNewBackend_SimulatorFeedsStore(t *testing.T) {
	a := testApp(t, "http://localhost:5000")
	cfg := a.Config.Server
	cfg.Simulate = true
	cfg.SimulateInterval = 10 * time.Millisecond

	b, err := newBackend(a, cfg, ServeOptions{}, &bytes.Buffer{})
	require.NoError(t, err)
	defer b.stop()

	require.NotNil(t, b.simulator)
	assert.Eventually(t, func() bool { return b.store.Len() >= 4 }, 2*time.Second, 10*time.Millisecond)

	_, ok := b.store.History(100)
	assert.True(t, ok)
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	a := testApp(t, "http://localhost:5000")
	withMachineMode(t)
	cfg := a.Config.Server
	cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveCommand(ctx, a, cfg, ServeOptions{}, &bytes.Buffer{}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

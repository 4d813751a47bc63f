package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"

	"github.com/greenhouse-iot/sensordash/internal/config"
	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/server"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

// ServeOptions overrides the server section of the config.
type ServeOptions struct {
	Addr       string
	Password   string
	MQTTBroker string
	Simulate   bool
	NoSeed     bool
	AccessLog  bool
}

var serveOpts ServeOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development sensor API",
	Long: `Run an in-memory sensor API that speaks the same protocol the dashboard
polls. It starts with one sensor per tracked metric.

Readings come from an MQTT broker (server.mqtt.broker), from the built-in
simulator (--simulate), or both. With a broker and the simulator together,
simulated readings are published to the broker and ingested back.

Examples:
  sensordash serve
  sensordash serve --simulate
  sensordash serve --addr :8080 --mqtt-broker tcp://localhost:1883`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app()
		if err != nil {
			return err
		}
		cfg := applyServeOptions(a.Config.Server, serveOpts, cmd)
		return serveCommand(cmd.Context(), a, cfg, serveOpts, cmd.ErrOrStderr())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.Addr, "addr", "", "listen address (default from config, :5000)")
	serveCmd.Flags().StringVar(&serveOpts.Password, "password", "", "dashboard password accepted by /api/login")
	serveCmd.Flags().StringVar(&serveOpts.MQTTBroker, "mqtt-broker", "", "MQTT broker URL to ingest readings from")
	serveCmd.Flags().BoolVar(&serveOpts.Simulate, "simulate", false, "generate random readings for every sensor")
	serveCmd.Flags().BoolVar(&serveOpts.NoSeed, "no-seed", false, "start without the default sensors")
	serveCmd.Flags().BoolVar(&serveOpts.AccessLog, "access-log", false, "log every request to stderr")
	rootCmd.AddCommand(serveCmd)
}

// applyServeOptions layers the flags that were set over the config.
func applyServeOptions(cfg config.ServerConfig, opts ServeOptions, cmd *cobra.Command) config.ServerConfig {
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.Password != "" {
		cfg.Password = opts.Password
	}
	if opts.MQTTBroker != "" {
		cfg.MQTT.Broker = opts.MQTTBroker
	}
	if cmd != nil && cmd.Flags().Changed("simulate") {
		cfg.Simulate = opts.Simulate
	}
	return cfg
}

// backend is the set of running parts behind 'serve'.
type backend struct {
	store     *server.Store
	server    *server.Server
	ingestor  *server.Ingestor
	simulator *server.Simulator
	mqttPub   mqtt.Client
}

// newBackend builds the store and server and starts ingestion and
// simulation as configured.
func newBackend(a *App, cfg config.ServerConfig, opts ServeOptions, stderr io.Writer) (*backend, error) {
	b := &backend{store: server.NewStore(server.DefaultMaxReadings)}
	if !opts.NoSeed {
		b.store.Seed()
	}

	serverOpts := []server.Option{
		server.WithPassword(cfg.Password),
		server.WithLogger(a.Log),
	}
	if opts.AccessLog {
		serverOpts = append(serverOpts, server.WithAccessLog(stderr))
	}
	b.server = server.New(b.store, serverOpts...)

	mqttOpts := server.MQTTOptions{
		Broker:   cfg.MQTT.Broker,
		Topic:    cfg.MQTT.Topic,
		ClientID: cfg.MQTT.ClientID,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
	}
	if cfg.MQTT.Broker != "" {
		b.ingestor = server.NewIngestor(mqttOpts, b.store, a.Log)
		if err := b.ingestor.Start(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrServer,
				fmt.Sprintf("Couldn't subscribe on %s", cfg.MQTT.Broker),
				"Check that the broker is running, or drop --mqtt-broker.")
		}
	}

	if cfg.Simulate {
		var sink server.Sink = server.StoreSink{Store: b.store}
		if cfg.MQTT.Broker != "" {
			pubOpts := mqttOpts
			pubOpts.ClientID = cfg.MQTT.ClientID + "-sim"
			client, err := server.Connect(pubOpts)
			if err != nil {
				b.stop()
				return nil, errors.WrapWithCode(err, errors.ErrServer,
					"Couldn't connect the simulator to the broker",
					"Check the broker, or run without --simulate.")
			}
			b.mqttPub = client
			sink = server.MQTTSink{Client: client, Topic: cfg.MQTT.Topic}
		}
		b.simulator = server.NewSimulator(sink, b.store.List, cfg.SimulateInterval,
			server.WithSimulatorLogger(a.Log))
		b.simulator.Start()
	}
	return b, nil
}

func (b *backend) stop() {
	if b.simulator != nil {
		b.simulator.Stop()
	}
	if b.mqttPub != nil {
		b.mqttPub.Disconnect(250)
	}
	if b.ingestor != nil {
		b.ingestor.Stop()
	}
}

func serveCommand(ctx context.Context, a *App, cfg config.ServerConfig, opts ServeOptions, stderr io.Writer) error {
	b, err := newBackend(a, cfg, opts, stderr)
	if err != nil {
		return err
	}
	defer b.stop()

	if !machineMode {
		fmt.Fprint(os.Stdout, ui.RenderHeader(ui.HeaderInfo{
			Version: version,
			Tagline: "development sensor API",
		}))
		writeServeSummary(os.Stdout, cfg, b)
	}

	if err := b.server.Run(ctx, cfg.Addr); err != nil {
		return errors.WrapWithCode(err, errors.ErrServer,
			fmt.Sprintf("Server on %s stopped", cfg.Addr),
			"Is another process using the port? Try --addr.")
	}
	return nil
}

func writeServeSummary(w io.Writer, cfg config.ServerConfig, b *backend) {
	label := ui.MutedStyle().Width(10)
	fmt.Fprintf(w, "  %s%s\n", label.Render("listen"), cfg.Addr)
	fmt.Fprintf(w, "  %s%d\n", label.Render("sensors"), len(b.store.List()))
	if b.ingestor != nil {
		fmt.Fprintf(w, "  %s%s %s\n", label.Render("mqtt"), cfg.MQTT.Broker, ui.MutedStyle().Render(cfg.MQTT.Topic))
	}
	if b.simulator != nil {
		fmt.Fprintf(w, "  %severy %s\n", label.Render("simulate"), cfg.SimulateInterval.Round(time.Millisecond))
	}
	fmt.Fprintln(w)
}

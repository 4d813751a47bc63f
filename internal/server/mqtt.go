package server

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/logger"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250
)

// Payload is a device reading as published on the broker.
type Payload struct {
	SensorID  int64   `json:"sensor_id,omitempty"`
	DataType  string  `json:"data_type"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
}

func (o MQTTOptions) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	if o.Username != "" {
		opts.SetUsername(o.Username).SetPassword(o.Password)
	}
	return opts
}

// Connect dials the broker and waits for the connection.
func Connect(o MQTTOptions) (mqtt.Client, error) {
	return dial(o.Broker, o.clientOptions())
}

func dial(broker string, opts *mqtt.ClientOptions) (mqtt.Client, error) {
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, err)
	}
	return c, nil
}

// Ingestor subscribes to device readings and records them in a Store.
type Ingestor struct {
	opts   MQTTOptions
	store  *Store
	log    logger.Logger
	client mqtt.Client
}

// NewIngestor creates an Ingestor. Call Start to connect.
func NewIngestor(opts MQTTOptions, store *Store, log logger.Logger) *Ingestor {
	if log == nil {
		log = logger.Noop()
	}
	return &Ingestor{opts: opts, store: store, log: log}
}

// Start connects to the broker and subscribes to the reading topic. The
// subscription is renewed after every reconnect.
func (i *Ingestor) Start() error {
	opts := i.opts.clientOptions().
		SetOnConnectHandler(func(c mqtt.Client) {
			token := c.Subscribe(i.opts.Topic, 1, i.onMessage)
			if token.Wait() && token.Error() != nil {
				i.log.Error("failed to subscribe to %s: %v", i.opts.Topic, token.Error())
				return
			}
			i.log.Info("subscribed to %s on %s", i.opts.Topic, i.opts.Broker)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			i.log.Warn("lost connection to MQTT broker: %v", err)
		})

	c, err := dial(i.opts.Broker, opts)
	if err != nil {
		return err
	}
	i.client = c
	return nil
}

// Stop disconnects from the broker.
func (i *Ingestor) Stop() {
	if i.client != nil {
		i.client.Disconnect(disconnectQuiesce)
	}
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	if err := i.Handle(m.Topic(), m.Payload()); err != nil {
		i.log.Warn("dropped reading on %s: %v", m.Topic(), err)
	}
}

// Handle records one message. The sensor id comes from the payload, or
// from the first numeric topic segment when the payload has none.
func (i *Ingestor) Handle(topic string, payload []byte) error {
	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if p.SensorID == 0 {
		id, ok := sensorIDFromTopic(topic)
		if !ok {
			return fmt.Errorf("no sensor id in payload or topic %q", topic)
		}
		p.SensorID = id
	}
	ts, err := parseTimestamp(p.Timestamp)
	if err != nil {
		return err
	}
	if err := i.store.Record(p.SensorID, p.DataType, p.Value, ts); err != nil {
		return err
	}
	i.log.Debug("recorded %s=%v for sensor %d", p.DataType, p.Value, p.SensorID)
	return nil
}

// TopicFor fills the single-level wildcard of pattern with the sensor id.
func TopicFor(pattern string, sensorID int64) string {
	return strings.Replace(pattern, "+", strconv.FormatInt(sensorID, 10), 1)
}

func sensorIDFromTopic(topic string) (int64, bool) {
	for _, seg := range strings.Split(topic, "/") {
		if id, err := strconv.ParseInt(seg, 10, 64); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

var timestampLayouts = []string{
	history.TimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// parseTimestamp accepts the history layout in local time, RFC 3339, or a
// zone-less ISO timestamp. An empty string is a zero time.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

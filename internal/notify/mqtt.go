package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/breeze-weather/internal/config"
	"github.com/i474232898/breeze-weather/internal/weather"
)

// Publisher is the subset of an MQTT client used to emit views.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Client is a thin wrapper over a paho client with connection tracking.
type Client struct {
	client    mqtt.Client
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClient(cfg *config.AppConfig, logger *slog.Logger) *Client {
	c := &Client{
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c
}

// Connect waits for the initial connection and respects ctx and Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return fmt.Errorf("client stopped")
	default:
	}

	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return fmt.Errorf("client stopped")
		default:
		}
	}
}

// Publish forwards to the underlying paho client.
func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return c.client.Publish(topic, qos, retained, payload)
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client. Safe to call more than once.
func (c *Client) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	if c.client != nil {
		c.client.Disconnect(250)
	}
	c.setConnected(false)
	c.logger.Info("mqtt disconnected")
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// Notifier publishes the rendered view as a retained message whenever the
// application state changes.
type Notifier struct {
	publisher Publisher
	topic     string
	timeout   time.Duration
	logger    *slog.Logger

	lastVersion uint64
}

func NewNotifier(publisher Publisher, topic string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		publisher: publisher,
		topic:     topic,
		timeout:   5 * time.Second,
		logger:    logger.With("component", "notifier", "topic", topic),
	}
}

// Publish renders state and publishes it.
func (n *Notifier) Publish(state weather.AppState) error {
	data, err := json.Marshal(weather.BuildView(state))
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}

	token := n.publisher.Publish(n.topic, 1, true, data)
	if !token.WaitTimeout(n.timeout) {
		return fmt.Errorf("publish timeout for topic %s", n.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish view: %w", err)
	}

	n.lastVersion = state.Version
	n.logger.Debug("published view", "version", state.Version)
	return nil
}

// Run publishes every state received from updates until ctx is done or the
// channel is closed. Publish failures are logged and do not stop the loop.
func (n *Notifier) Run(ctx context.Context, updates <-chan weather.AppState) {
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if st.Version != 0 && st.Version <= n.lastVersion {
				continue
			}
			if err := n.Publish(st); err != nil {
				n.logger.Warn("failed to publish view", "version", st.Version, "error", err)
			}
		}
	}
}

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloudpico-kiosk/internal/config"
	"cloudpico-kiosk/internal/types"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// Client publishes cycle reports and kiosk health to the broker.
type Client struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewClient(cfg config.Config, logger *slog.Logger) (*Client, error) {
	if cfg.MQTTBroker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}
	c := &Client{
		cfg:    cfg,
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

	// An unexpected drop marks the kiosk unhealthy for anyone watching the health topic.
	if payload, err := json.Marshal(types.KioskHealth{KioskID: cfg.KioskID, Healthy: false}); err == nil {
		opts.SetWill(HealthTopic(cfg.KioskID), string(payload), 1, true)
	}

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = mqtt.NewClient(opts)
	return c, nil
}

func CyclesTopic(kioskID string) string {
	return fmt.Sprintf("kiosks/%s/cycles", kioskID)
}

func HealthTopic(kioskID string) string {
	return fmt.Sprintf("kiosks/%s/health", kioskID)
}

// Connect waits for the initial connection, honouring ctx and Disconnect.
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
			// The OnConnect handler runs on its own goroutine; don't wait for it.
			c.setConnected(true)
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

// PublishCycle sends a report on the kiosk's cycles topic at QoS 1.
func (c *Client) PublishCycle(report types.CycleReport) error {
	if report.KioskID == "" {
		report.KioskID = c.cfg.KioskID
	}
	if err := c.publish(CyclesTopic(report.KioskID), false, report); err != nil {
		return fmt.Errorf("publish cycle: %w", err)
	}
	c.logger.Debug("published cycle report", "cycle_id", report.CycleID, "outcome", report.Outcome)
	return nil
}

// PublishHealth replaces the retained health message for the kiosk.
func (c *Client) PublishHealth(health types.KioskHealth) error {
	if health.KioskID == "" {
		health.KioskID = c.cfg.KioskID
	}
	if health.LastSeen.IsZero() {
		health.LastSeen = time.Now()
	}
	if err := c.publish(HealthTopic(health.KioskID), true, health); err != nil {
		return fmt.Errorf("publish health: %w", err)
	}
	return nil
}

// Report publishes the cycle and the resulting health. Failures are logged;
// reporting never interrupts the kiosk.
func (c *Client) Report(_ context.Context, report types.CycleReport) {
	if err := c.PublishCycle(report); err != nil {
		c.logger.Warn("mqtt report failed", "cycle_id", report.CycleID, "error", err)
		return
	}
	health := types.KioskHealth{
		KioskID:     report.KioskID,
		LastSeen:    report.FinishedAt,
		LastOutcome: report.Outcome,
		Healthy:     report.Outcome != types.OutcomeAborted,
	}
	if err := c.PublishHealth(health); err != nil {
		c.logger.Warn("mqtt health failed", "cycle_id", report.CycleID, "error", err)
	}
}

func (c *Client) publish(topic string, retained bool, v any) error {
	if !c.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	token := c.client.Publish(topic, 1, retained, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Disconnect stops the client. Safe to call more than once; Connect fails afterwards.
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

package mqtt

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/stretchr/testify/require"

	"cloudpico-kiosk/internal/config"
	"cloudpico-kiosk/internal/types"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func startBroker(t *testing.T) int {
	t.Helper()
	port := freePort(t)

	broker := mochi.New(nil)
	require.NoError(t, broker.AddHook(&auth.AllowHook{}, nil))
	require.NoError(t, broker.AddListener(listeners.NewTCP(listeners.Config{
		Type:    "tcp",
		Address: "127.0.0.1:" + strconv.Itoa(port),
	})))
	require.NoError(t, broker.Serve())
	t.Cleanup(func() { _ = broker.Close() })
	return port
}

func subscribe(t *testing.T, port int, topic string) <-chan []byte {
	t.Helper()
	opts := paho.NewClientOptions().
		AddBroker("tcp://127.0.0.1:" + strconv.Itoa(port)).
		SetClientID("test-subscriber-" + strconv.FormatInt(time.Now().UnixNano(), 36))
	sub := paho.NewClient(opts)
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	t.Cleanup(func() { sub.Disconnect(100) })

	msgs := make(chan []byte, 4)
	tok = sub.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
		msgs <- m.Payload()
	})
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	return msgs
}

func newConnectedClient(t *testing.T, port int) *Client {
	t.Helper()
	cfg := config.Config{
		KioskID:      "lobby",
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     port,
		MQTTClientID: "kiosk-under-test",
	}
	c, err := NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	require.Eventually(t, c.IsConnected, 2*time.Second, 20*time.Millisecond)
	t.Cleanup(c.Disconnect)
	return c
}

func receive(t *testing.T, msgs <-chan []byte) []byte {
	t.Helper()
	select {
	case m := <-msgs:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestClient_ReportPublishesCycleAndHealth(t *testing.T) {
	port := startBroker(t)
	cycles := subscribe(t, port, CyclesTopic("lobby"))
	c := newConnectedClient(t, port)

	aqi := 75
	finished := time.Date(2024, 3, 1, 15, 2, 0, 0, time.UTC)
	c.Report(context.Background(), types.CycleReport{
		CycleID:     "c-1",
		StartedAt:   finished.Add(-2 * time.Minute),
		FinishedAt:  finished,
		Outcome:     types.OutcomeCompleted,
		Clip:        "cold and rainy",
		AQI:         &aqi,
		AQICategory: "moderate",
	})

	var got types.CycleReport
	require.NoError(t, json.Unmarshal(receive(t, cycles), &got))
	require.Equal(t, "c-1", got.CycleID)
	require.Equal(t, "lobby", got.KioskID)
	require.Equal(t, types.OutcomeCompleted, got.Outcome)
	require.NotNil(t, got.AQI)
	require.Equal(t, 75, *got.AQI)

	// Health is retained, so a late subscriber still sees it.
	health := subscribe(t, port, HealthTopic("lobby"))
	var h types.KioskHealth
	require.NoError(t, json.Unmarshal(receive(t, health), &h))
	require.True(t, h.Healthy)
	require.Equal(t, types.OutcomeCompleted, h.LastOutcome)
	require.True(t, h.LastSeen.Equal(finished))
}

func TestClient_AbortedCycleIsUnhealthy(t *testing.T) {
	port := startBroker(t)
	c := newConnectedClient(t, port)

	c.Report(context.Background(), types.CycleReport{
		CycleID:    "c-2",
		FinishedAt: time.Now(),
		Outcome:    types.OutcomeAborted,
		ErrorKind:  "parse",
		Error:      "airnow [0]: empty response",
	})

	health := subscribe(t, port, HealthTopic("lobby"))
	var h types.KioskHealth
	require.NoError(t, json.Unmarshal(receive(t, health), &h))
	require.False(t, h.Healthy)
	require.Equal(t, types.OutcomeAborted, h.LastOutcome)
}

func TestClient_PublishWhenDisconnected(t *testing.T) {
	c, err := NewClient(config.Config{
		KioskID:      "lobby",
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     1,
		MQTTClientID: "offline",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	require.Error(t, c.PublishCycle(types.CycleReport{CycleID: "x"}))
	c.Disconnect()
	require.Error(t, c.Connect(context.Background()))
}

func TestNewClient_RequiresBroker(t *testing.T) {
	_, err := NewClient(config.Config{}, slog.Default())
	require.Error(t, err)
}

func TestTopics(t *testing.T) {
	require.Equal(t, "kiosks/lobby/cycles", CyclesTopic("lobby"))
	require.Equal(t, "kiosks/lobby/health", HealthTopic("lobby"))
}

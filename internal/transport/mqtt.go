package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	presenceOnline  = "online"
	presenceOffline = "offline"
)

// MQTTConfig configures an MQTTLink. Self and Peer name the two endpoints,
// e.g. "device" and "controller".
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	Prefix         string
	Self           string
	Peer           string
	ConnectTimeout time.Duration
}

func (c MQTTConfig) topic(endpoint, kind string) string {
	return fmt.Sprintf("%s/%s/%s", c.Prefix, endpoint, kind)
}

// MQTTLink implements Link over an MQTT broker:
//
//	<prefix>/<endpoint>/message   ephemeral, QoS 0
//	<prefix>/<endpoint>/context   replicated context, QoS 1, retained
//	<prefix>/<endpoint>/presence  "online"/"offline", retained, set as LWT
type MQTTLink struct {
	cfg    MQTTConfig
	client mqtt.Client
	log    *zap.Logger

	mu         sync.Mutex
	inbox      chan []byte
	received   []byte
	peerOnline bool
	closed     bool
}

// NewMQTTLink connects to the broker and subscribes to this endpoint's
// topics and the peer's presence.
func NewMQTTLink(cfg MQTTConfig, log *zap.Logger) (*MQTTLink, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	l := &MQTTLink{
		cfg:   cfg,
		log:   log.With(zap.String("link", "mqtt"), zap.String("self", cfg.Self)),
		inbox: make(chan []byte, inboxSize),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetWill(cfg.topic(cfg.Self, "presence"), presenceOffline, 1, true)
	opts.SetOnConnectHandler(l.onConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		l.log.Warn("mqtt connection lost", zap.Error(err))
	})

	l.client = mqtt.NewClient(opts)
	token := l.client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return l, nil
}

// onConnect runs on every (re)connect; the session is clean so
// subscriptions are restored here.
func (l *MQTTLink) onConnect(c mqtt.Client) {
	subs := map[string]mqtt.MessageHandler{
		l.cfg.topic(l.cfg.Self, "message"):  l.onMessage,
		l.cfg.topic(l.cfg.Self, "context"):  l.onContext,
		l.cfg.topic(l.cfg.Peer, "presence"): l.onPresence,
	}
	for topic, handler := range subs {
		qos := byte(1)
		if topic == l.cfg.topic(l.cfg.Self, "message") {
			qos = 0
		}
		if token := c.Subscribe(topic, qos, handler); token.WaitTimeout(l.cfg.ConnectTimeout) && token.Error() != nil {
			l.log.Error("failed to subscribe", zap.String("topic", topic), zap.Error(token.Error()))
		}
	}
	c.Publish(l.cfg.topic(l.cfg.Self, "presence"), 1, true, presenceOnline)
	l.log.Info("mqtt connected", zap.String("broker", l.cfg.Broker))
}

func (l *MQTTLink) onMessage(_ mqtt.Client, msg mqtt.Message) {
	l.push(msg.Payload())
}

func (l *MQTTLink) onContext(_ mqtt.Client, msg mqtt.Message) {
	l.mu.Lock()
	l.received = clone(msg.Payload())
	l.mu.Unlock()
	l.push(msg.Payload())
}

func (l *MQTTLink) onPresence(_ mqtt.Client, msg mqtt.Message) {
	online := string(msg.Payload()) == presenceOnline
	l.mu.Lock()
	changed := l.peerOnline != online
	l.peerOnline = online
	l.mu.Unlock()
	if changed {
		l.log.Info("peer presence changed", zap.String("peer", l.cfg.Peer), zap.Bool("online", online))
	}
}

func (l *MQTTLink) push(data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.inbox <- clone(data):
	default:
		l.log.Warn("inbox full, dropping message")
	}
}

func (l *MQTTLink) Send(ctx context.Context, data []byte) error {
	if !l.IsReachable() {
		return ErrNotReachable
	}
	return l.publish(ctx, l.cfg.topic(l.cfg.Peer, "message"), 0, false, data)
}

func (l *MQTTLink) UpdateContext(ctx context.Context, data []byte) error {
	return l.publish(ctx, l.cfg.topic(l.cfg.Peer, "context"), 1, true, data)
}

func (l *MQTTLink) publish(ctx context.Context, topic string, qos byte, retained bool, data []byte) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return ErrClosed
	}

	token := l.client.Publish(topic, qos, retained, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

func (l *MQTTLink) ReceivedContext(_ context.Context) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.received == nil {
		return nil, ErrNoContext
	}
	return clone(l.received), nil
}

func (l *MQTTLink) Messages() <-chan []byte {
	return l.inbox
}

func (l *MQTTLink) IsReachable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && l.peerOnline && l.client.IsConnected()
}

// Close marks this endpoint offline and disconnects.
func (l *MQTTLink) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.inbox)
	l.mu.Unlock()

	if l.client.IsConnected() {
		l.client.Publish(l.cfg.topic(l.cfg.Self, "presence"), 1, true, presenceOffline).WaitTimeout(time.Second)
	}
	l.client.Disconnect(250)
	return nil
}

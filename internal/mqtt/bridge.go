//go:build !no_mqtt

// Package mqtt exposes quirk entities to Home Assistant over MQTT discovery
// and routes entity writes back to the coordinator.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"zigbee-quirks/internal/coordinator"
	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/store"
)

// Config holds MQTT bridge configuration.
type Config struct {
	Broker          string
	ClientID        string
	Username        string
	Password        string
	TopicPrefix     string
	DiscoveryPrefix string
}

// Coordinator is the part of the coordinator the bridge drives.
type Coordinator interface {
	Context() context.Context
	Events() *coordinator.EventBus
	Store() store.Store
	Quirks() *quirk.Registry
	Entities(ieee string) ([]quirk.Entity, error)
	WriteEntity(ctx context.Context, ieee, entityID string, value interface{}) error
	ReadEntity(ctx context.Context, ieee, entityID string) (interface{}, error)
	SendCommand(ctx context.Context, ieee string, ep uint8, clusterID uint16, name string, args ...interface{}) error
}

// NewClient configures a paho client for cfg.Broker without connecting it.
// onConnect runs on every (re)connection.
func NewClient(cfg Config, logger *slog.Logger, onConnect func()) pahomqtt.Client {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "zigbee-quirks"
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(cfg.TopicPrefix+"/bridge/state", "offline", 1, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			logger.Info("MQTT connected", "broker", cfg.Broker)
			if onConnect != nil {
				onConnect()
			}
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			logger.Warn("MQTT connection lost", "err", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	return pahomqtt.NewClient(opts)
}

// Connect connects client, waiting up to ten seconds.
func Connect(client pahomqtt.Client) error {
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Publish sends msgs as retained messages and waits for each to complete.
func Publish(client pahomqtt.Client, msgs []Message) error {
	for _, m := range msgs {
		token := client.Publish(m.Topic, 1, true, m.Payload)
		if !token.WaitTimeout(5 * time.Second) {
			return fmt.Errorf("publish %s: timeout", m.Topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", m.Topic, err)
		}
	}
	return nil
}

// Bridge connects the coordinator to MQTT with HA autodiscovery.
type Bridge struct {
	client pahomqtt.Client
	coord  Coordinator
	cfg    Config
	logger *slog.Logger
	unsub  func()

	mu        sync.Mutex
	states    map[string]map[string]any // IEEE -> entity id -> state
	published map[string][]string       // IEEE -> discovery topics
}

// NewBridge creates and connects an MQTT bridge.
func NewBridge(coord Coordinator, cfg Config, logger *slog.Logger) (*Bridge, error) {
	b := newBridge(coord, nil, cfg, logger)
	b.client = NewClient(cfg, b.logger, func() {
		b.publishBridgeState("online")
		b.publishAllDiscovery()
	})
	if err := Connect(b.client); err != nil {
		return nil, err
	}
	return b, nil
}

func newBridge(coord Coordinator, client pahomqtt.Client, cfg Config, logger *slog.Logger) *Bridge {
	return &Bridge{
		client:    client,
		coord:     coord,
		cfg:       cfg,
		logger:    logger.With("component", "mqtt"),
		states:    make(map[string]map[string]any),
		published: make(map[string][]string),
	}
}

// Start subscribes to coordinator events and begins MQTT publishing.
func (b *Bridge) Start() {
	b.unsub = b.coord.Events().OnAll(b.handleEvent)
	b.logger.Info("MQTT bridge started", "prefix", b.cfg.TopicPrefix)
}

// Stop publishes offline state, unsubscribes, and disconnects.
func (b *Bridge) Stop() {
	if b.unsub != nil {
		b.unsub()
	}
	b.publishBridgeState("offline")
	b.client.Disconnect(1000)
	b.logger.Info("MQTT bridge stopped")
}

func (b *Bridge) handleEvent(event coordinator.Event) {
	ieee := event.IEEE()
	if ieee == "" {
		return
	}
	data, _ := event.Data.(map[string]interface{})
	switch event.Type {
	case coordinator.EventQuirkApplied, coordinator.EventDeviceInterviewed:
		b.publishDevice(ieee)
	case coordinator.EventEntityState:
		id, _ := data["entity_id"].(string)
		if id != "" {
			b.updateAndPublishState(ieee, id, data["state"])
		}
	case coordinator.EventDeviceLeft:
		b.removeDevice(ieee)
	}
}

func (b *Bridge) publishBridgeState(state string) {
	b.publish(b.cfg.TopicPrefix+"/bridge/state", []byte(state), true)
}

func (b *Bridge) publishAllDiscovery() {
	devices, err := b.coord.Store().ListDevices()
	if err != nil {
		b.logger.Error("list devices for discovery", "err", err)
		return
	}
	for _, dev := range devices {
		if dev.Interviewed {
			b.publishDevice(dev.IEEEAddress)
		}
	}
}

// publishDevice publishes discovery for the device's entities, subscribes to
// its set topic and republishes its last known state.
func (b *Bridge) publishDevice(ieee string) {
	dev, err := b.coord.Store().GetDevice(ieee)
	if err != nil {
		b.logger.Warn("discovery for unknown device", "ieee", ieee, "err", err)
		return
	}
	var q *quirk.Quirk
	if dev.QuirkID != "" {
		q, _ = b.coord.Quirks().Lookup(dev.QuirkID)
	}

	msgs := DiscoveryMessages(dev, q, b.cfg)
	topics := make([]string, 0, len(msgs))
	for _, m := range msgs {
		b.publish(m.Topic, m.Payload, true)
		topics = append(topics, m.Topic)
	}

	b.mu.Lock()
	stale := b.published[ieee]
	b.published[ieee] = topics
	state, ok := b.states[ieee]
	if !ok {
		state = make(map[string]any)
		b.states[ieee] = state
	}
	for k, v := range dev.State {
		if _, seen := state[k]; !seen {
			state[k] = v
		}
	}
	b.mu.Unlock()

	// Entities of a previously applied quirk that no longer exist.
	for _, t := range stale {
		if !contains(topics, t) {
			b.publish(t, nil, true)
		}
	}

	if q != nil {
		b.subscribeDeviceCommands(dev)
	}
	b.publishState(dev)
	b.logger.Info("published HA discovery", "ieee", ieee, "name", deviceDisplayName(dev), "entities", len(msgs)-1)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (b *Bridge) subscribeDeviceCommands(dev *store.Device) {
	base := b.cfg.TopicPrefix + "/" + deviceTopicName(dev)
	ieee := dev.IEEEAddress
	b.client.Subscribe(base+"/set", 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		b.handleCommand(ieee, msg.Payload())
	})
	b.client.Subscribe(base+"/get", 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		b.handleGet(ieee, msg.Payload())
	})
}

// clusterCommand is the value of the "command" key of a set payload.
type clusterCommand struct {
	Endpoint uint8         `json:"endpoint"`
	Cluster  uint16        `json:"cluster"`
	Name     string        `json:"name"`
	Args     []interface{} `json:"args"`
}

// handleCommand applies a set payload of the form {"<entity_id>": value}.
// Each entity is written independently; state is published when the
// coordinator confirms the write. The "command" key sends a cluster command
// instead.
func (b *Bridge) handleCommand(ieee string, payload []byte) {
	var cmd map[string]json.RawMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.logger.Warn("invalid command JSON", "ieee", ieee, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(b.coord.Context(), 10*time.Second)
	defer cancel()

	if raw, ok := cmd["command"]; ok {
		delete(cmd, "command")
		var cc clusterCommand
		if err := json.Unmarshal(raw, &cc); err != nil || cc.Name == "" {
			b.logger.Warn("invalid cluster command", "ieee", ieee, "err", err)
		} else if err := b.coord.SendCommand(ctx, ieee, cc.Endpoint, cc.Cluster, cc.Name, cc.Args...); err != nil {
			b.logger.Warn("cluster command failed", "ieee", ieee, "command", cc.Name, "err", err)
		}
	}

	for _, id := range sortedKeys(cmd) {
		var v interface{}
		if err := json.Unmarshal(cmd[id], &v); err != nil {
			continue
		}
		if err := b.coord.WriteEntity(ctx, ieee, id, commandValue(v)); err != nil {
			b.logger.Warn("entity write failed", "ieee", ieee, "entity", id, "err", err)
		}
	}
}

// handleGet refreshes entity states from the device. The payload lists the
// entity ids as keys; an empty object reads every exposed entity. Values
// are published through the resulting entity_state events.
func (b *Bridge) handleGet(ieee string, payload []byte) {
	var req map[string]json.RawMessage
	if err := json.Unmarshal(payload, &req); err != nil {
		b.logger.Warn("invalid get JSON", "ieee", ieee, "err", err)
		return
	}
	ids := sortedKeys(req)
	if len(ids) == 0 {
		entities, err := b.coord.Entities(ieee)
		if err != nil {
			b.logger.Warn("get: entities", "ieee", ieee, "err", err)
			return
		}
		for i := range entities {
			ids = append(ids, entities[i].ID())
		}
	}

	ctx, cancel := context.WithTimeout(b.coord.Context(), 10*time.Second)
	defer cancel()
	for _, id := range ids {
		if _, err := b.coord.ReadEntity(ctx, ieee, id); err != nil {
			b.logger.Warn("entity read failed", "ieee", ieee, "entity", id, "err", err)
		}
	}
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// commandValue maps HA switch strings to booleans.
func commandValue(v interface{}) interface{} {
	switch v {
	case "ON":
		return true
	case "OFF":
		return false
	}
	return v
}

func (b *Bridge) updateAndPublishState(ieee, entityID string, value any) {
	b.mu.Lock()
	state, ok := b.states[ieee]
	if !ok {
		state = make(map[string]any)
		b.states[ieee] = state
	}
	state[entityID] = value
	b.mu.Unlock()

	dev, err := b.coord.Store().GetDevice(ieee)
	if err != nil {
		return
	}
	b.publishState(dev)
}

func (b *Bridge) publishState(dev *store.Device) {
	b.mu.Lock()
	state := b.states[dev.IEEEAddress]
	if state == nil {
		b.mu.Unlock()
		return
	}
	state["linkquality"] = dev.LQI
	state["last_seen"] = dev.LastSeen.Format(time.RFC3339)
	payload := mustJSON(state)
	b.mu.Unlock()

	b.publish(b.cfg.TopicPrefix+"/"+deviceTopicName(dev), payload, true)
}

func (b *Bridge) removeDevice(ieee string) {
	b.mu.Lock()
	topics := b.published[ieee]
	delete(b.published, ieee)
	delete(b.states, ieee)
	b.mu.Unlock()

	for _, m := range removeMessages(topics) {
		b.publish(m.Topic, m.Payload, true)
	}
	if len(topics) > 0 {
		b.logger.Info("removed HA discovery", "ieee", ieee, "topics", len(topics))
	}
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) {
	token := b.client.Publish(topic, 1, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Warn("MQTT publish timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			b.logger.Warn("MQTT publish error", "topic", topic, "err", err)
		}
	}()
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

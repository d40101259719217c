//go:build !no_mqtt

package mqtt

import (
	"fmt"
	"strings"

	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/store"
)

// Message is one retained MQTT message.
type Message struct {
	Topic   string // e.g. "homeassistant/select/zigbee_00158D.../pilot_wire_1/config"
	Payload []byte // JSON, empty means delete
}

// haDevice is the "device" block in HA discovery.
type haDevice struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name"`
}

// haDiscovery is a generic HA discovery payload.
type haDiscovery struct {
	Name              string   `json:"name"`
	UniqueID          string   `json:"unique_id"`
	ObjectID          string   `json:"object_id,omitempty"`
	StateTopic        string   `json:"state_topic"`
	CommandTopic      string   `json:"command_topic,omitempty"`
	CommandTemplate   string   `json:"command_template,omitempty"`
	AvailabilityTopic string   `json:"availability_topic"`
	ValueTemplate     string   `json:"value_template,omitempty"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	DeviceClass       string   `json:"device_class,omitempty"`
	StateClass        string   `json:"state_class,omitempty"`
	EntityCategory    string   `json:"entity_category,omitempty"`
	EnabledByDefault  *bool    `json:"enabled_by_default,omitempty"`
	PayloadOn         string   `json:"payload_on,omitempty"`
	PayloadOff        string   `json:"payload_off,omitempty"`
	StateOn           string   `json:"state_on,omitempty"`
	StateOff          string   `json:"state_off,omitempty"`
	Options           []string `json:"options,omitempty"`
	Min               *float64 `json:"min,omitempty"`
	Max               *float64 `json:"max,omitempty"`
	Step              *float64 `json:"step,omitempty"`
	Mode              string   `json:"mode,omitempty"`
	Device            haDevice `json:"device"`
}

// deviceDisplayName returns a display name for the device.
func deviceDisplayName(dev *store.Device) string {
	if name := dev.Name(); name != "" {
		return name
	}
	return dev.IEEEAddress
}

// deviceIdentifier returns the unique identifier for HA device registry.
func deviceIdentifier(dev *store.Device) string {
	return "zigbee_" + dev.IEEEAddress
}

// deviceTopicName returns the topic name for a device (friendly name or IEEE).
func deviceTopicName(dev *store.Device) string {
	if dev.FriendlyName != "" {
		// Sanitize: lowercase and keep only safe chars for MQTT topics.
		name := strings.ToLower(dev.FriendlyName)
		name = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
				return r
			}
			return '_'
		}, name)
		return name
	}
	return dev.IEEEAddress
}

// DiscoveryMessages builds the HA discovery messages for a device and the
// entities its quirk exposes, plus a link quality sensor. Devices without a
// quirk only get the link quality sensor.
func DiscoveryMessages(dev *store.Device, q *quirk.Quirk, cfg Config) []Message {
	if !dev.Interviewed {
		return nil
	}

	nodeID := deviceIdentifier(dev)
	base := haDiscovery{
		StateTopic:        cfg.TopicPrefix + "/" + deviceTopicName(dev),
		AvailabilityTopic: cfg.TopicPrefix + "/bridge/state",
		Device: haDevice{
			Identifiers:  []string{nodeID},
			Manufacturer: dev.Manufacturer,
			Model:        dev.Model,
			Name:         deviceDisplayName(dev),
		},
	}

	var msgs []Message
	if q != nil {
		for i := range q.Entities {
			msgs = append(msgs, buildEntity(base, &q.Entities[i], nodeID, cfg))
		}
	}

	// No device_class: "signal_strength" requires dB/dBm units, but LQI is unitless.
	lqi := base
	lqi.Name = "Link quality"
	lqi.UniqueID = nodeID + "_linkquality"
	lqi.ValueTemplate = "{{ value_json.linkquality }}"
	lqi.UnitOfMeasurement = "lqi"
	lqi.StateClass = "measurement"
	lqi.EntityCategory = string(quirk.CategoryDiagnostic)
	msgs = append(msgs, Message{
		Topic:   discoveryTopic(cfg, "sensor", nodeID, "linkquality"),
		Payload: mustJSON(lqi),
	})
	return msgs
}

func discoveryTopic(cfg Config, component, nodeID, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", cfg.DiscoveryPrefix, component, nodeID, objectID)
}

func buildEntity(base haDiscovery, e *quirk.Entity, nodeID string, cfg Config) Message {
	id := e.ID()
	p := base
	p.Name = e.Name()
	p.UniqueID = nodeID + "_" + id
	p.ObjectID = nodeID + "_" + id
	p.ValueTemplate = fmt.Sprintf("{{ value_json.%s }}", id)
	p.UnitOfMeasurement = e.Unit
	p.DeviceClass = e.DeviceClass
	if e.Category != quirk.CategoryStandard {
		p.EntityCategory = string(e.Category)
	}
	if e.InitiallyDisabled {
		disabled := false
		p.EnabledByDefault = &disabled
	}
	if e.Platform.Writable() {
		p.CommandTopic = base.StateTopic + "/set"
	}

	switch e.Platform {
	case quirk.PlatformSensor:
		p.StateClass = e.StateClass
	case quirk.PlatformBinarySensor:
		p.ValueTemplate = fmt.Sprintf("{{ 'ON' if value_json.%s else 'OFF' }}", id)
		p.PayloadOn = "ON"
		p.PayloadOff = "OFF"
	case quirk.PlatformSwitch:
		p.ValueTemplate = fmt.Sprintf("{{ 'ON' if value_json.%s else 'OFF' }}", id)
		p.StateOn = "ON"
		p.StateOff = "OFF"
		p.PayloadOn = fmt.Sprintf(`{"%s": true}`, id)
		p.PayloadOff = fmt.Sprintf(`{"%s": false}`, id)
	case quirk.PlatformNumber:
		p.CommandTemplate = fmt.Sprintf(`{"%s": {{ value }}}`, id)
		if n := e.Number; n != nil {
			lo, hi, step := n.Min, n.Max, n.Step
			p.Min, p.Max = &lo, &hi
			if step > 0 {
				p.Step = &step
			}
			p.Mode = string(n.Mode)
		}
	case quirk.PlatformSelect:
		p.CommandTemplate = fmt.Sprintf(`{"%s": "{{ value }}"}`, id)
		if e.Enum != nil {
			p.Options = e.Enum.Names()
		}
	}
	return Message{
		Topic:   discoveryTopic(cfg, string(e.Platform), nodeID, id),
		Payload: mustJSON(p),
	}
}

// removeMessages turns published discovery topics into empty retained
// messages, which delete the entities in HA.
func removeMessages(topics []string) []Message {
	msgs := make([]Message, 0, len(topics))
	for _, t := range topics {
		msgs = append(msgs, Message{Topic: t})
	}
	return msgs
}

//go:build !no_mqtt

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	mqttbridge "zigbee-quirks/internal/mqtt"

	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/store"
)

// runDiscovery publishes retained Home Assistant discovery for every
// interviewed device in the store. With -dry-run the topics are printed
// instead.
func runDiscovery(args []string, cfg *Config, reg *quirk.Registry, logger *slog.Logger, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("discovery", flag.ContinueOnError)
	flags.SetOutput(stderr)
	dryRun := flags.Bool("dry-run", false, "print topics without publishing")
	if err := flags.Parse(args); err != nil {
		return exitCommandError
	}
	if !*dryRun && cfg.MQTT.Broker == "" {
		fmt.Fprintln(stderr, "Error: mqtt.broker is not configured")
		return exitCommandError
	}

	db, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer db.Close()

	devices, err := db.ListDevices()
	if err != nil {
		fmt.Fprintf(stderr, "Error: list devices: %v\n", err)
		return exitCommandError
	}

	mcfg := mqttConfig(cfg)
	var msgs []mqttbridge.Message
	for _, dev := range devices {
		var q *quirk.Quirk
		if dev.QuirkID != "" {
			if q, _ = reg.Lookup(dev.QuirkID); q == nil {
				logger.Warn("stored quirk no longer registered", "ieee", dev.IEEEAddress, "quirk", dev.QuirkID)
			}
		}
		msgs = append(msgs, mqttbridge.DiscoveryMessages(dev, q, mcfg)...)
	}

	if *dryRun {
		for _, m := range msgs {
			fmt.Fprintln(stdout, m.Topic)
		}
		return exitSuccess
	}

	client := mqttbridge.NewClient(mcfg, logger, nil)
	if err := mqttbridge.Connect(client); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer client.Disconnect(250)
	if err := mqttbridge.Publish(client, msgs); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	fmt.Fprintf(stdout, "published %d discovery messages for %d devices\n", len(msgs), len(devices))
	return exitSuccess
}

func mqttConfig(cfg *Config) mqttbridge.Config {
	return mqttbridge.Config{
		Broker:          cfg.MQTT.Broker,
		ClientID:        cfg.MQTT.ClientID,
		Username:        cfg.MQTT.Username,
		Password:        cfg.MQTT.Password,
		TopicPrefix:     cfg.MQTT.TopicPrefix,
		DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
	}
}

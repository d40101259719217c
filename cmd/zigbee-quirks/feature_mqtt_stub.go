//go:build no_mqtt

package main

import (
	"fmt"
	"io"
	"log/slog"

	"zigbee-quirks/internal/quirk"
)

func runDiscovery(_ []string, _ *Config, _ *quirk.Registry, _ *slog.Logger, _, stderr io.Writer) int {
	fmt.Fprintln(stderr, "Error: built without MQTT support (no_mqtt)")
	return exitCommandError
}

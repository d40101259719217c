package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/quirks"
	"zigbee-quirks/internal/zcl"
	"zigbee-quirks/internal/zcl/clusters"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const defaultConfigPath = "config.yaml"

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

type Config struct {
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	MQTT struct {
		Enabled         bool   `yaml:"enabled"`
		Broker          string `yaml:"broker"`
		ClientID        string `yaml:"client_id"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		TopicPrefix     string `yaml:"topic_prefix"`
		DiscoveryPrefix string `yaml:"discovery_prefix"`
	} `yaml:"mqtt"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	QuirksDir string `yaml:"quirks_dir"`
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	for _, p := range []string{c.MQTT.TopicPrefix, c.MQTT.DiscoveryPrefix} {
		if strings.ContainsAny(p, "+#") {
			return fmt.Errorf("mqtt topic prefix %q must not contain wildcards", p)
		}
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("zigbee-quirks", flag.ContinueOnError)
	flags.SetOutput(stderr)
	cfgPath := flags.String("config", defaultConfigPath, "path to config file")
	flags.Usage = func() { printUsage(stderr) }
	if err := flags.Parse(args); err != nil {
		return exitCommandError
	}
	if flags.NArg() == 0 {
		printUsage(stderr)
		return exitCommandError
	}

	explicit := false
	flags.Visit(func(f *flag.Flag) { explicit = explicit || f.Name == "config" })

	cfg, err := loadConfig(*cfgPath)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg, err = defaultConfig(), nil
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: load config: %v\n", err)
		return exitCommandError
	}
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid config: %v\n", err)
		return exitCommandError
	}

	// Logs go to stderr so command output stays parseable.
	logger := newLogger(cfg, stderr)
	slog.SetDefault(logger)
	logger.Debug("zigbee-quirks starting", "version", version)

	cmd, cmdArgs := flags.Arg(0), flags.Args()[1:]
	if cmd == "check" {
		return runCheck(cmdArgs, logger, stdout, stderr)
	}

	reg, err := buildRegistry(cfg, logger)
	if err != nil {
		// Broken declarative quirks are reported but do not hide the rest.
		logger.Warn("quirk registry incomplete", "err", err)
	}

	switch cmd {
	case "list":
		return runList(reg, stdout)
	case "match":
		return runMatch(cmdArgs, reg, stdout, stderr)
	case "devices":
		return runDevices(cmdArgs, cfg, reg, stdout, stderr)
	case "discovery":
		return runDiscovery(cmdArgs, cfg, reg, logger, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version)
		return exitSuccess
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n", cmd)
		printUsage(stderr)
		return exitCommandError
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: zigbee-quirks [-config path] <command> [args]

Commands:
  list                          list registered quirks
  match <manufacturer> <model>  show the quirk a device resolves to
  check <dir>...                validate declarative quirk files
  devices [-quirk id]           list stored devices and their quirks
  discovery [-dry-run]          publish Home Assistant discovery for stored devices
  version                       print version
`)
}

// newRegistries returns a standard cluster registry and an empty quirk
// registry on top of it.
func newRegistries(logger *slog.Logger) (*zcl.Registry, *quirk.Registry) {
	std := zcl.NewRegistry(logger)
	clusters.RegisterStandard(std)
	return std, quirk.NewRegistry(std, logger)
}

// buildRegistry registers the built-in quirks and those in cfg.QuirksDir,
// then freezes the registry. The registry is usable even when an error is
// returned.
func buildRegistry(cfg *Config, logger *slog.Logger) (*quirk.Registry, error) {
	_, reg := newRegistries(logger)
	var errs []error
	if err := quirks.RegisterBuiltin(reg); err != nil {
		errs = append(errs, err)
	}
	if cfg.QuirksDir != "" {
		if _, err := quirks.LoadDir(cfg.QuirksDir, reg, logger); err != nil {
			errs = append(errs, err)
		}
	}
	reg.Freeze()
	logger.Info("quirk registry ready", "quirks", reg.Len())
	return reg, errors.Join(errs...)
}

func defaultConfig() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = "zigbee-quirks.db"
	}
	if cfg.QuirksDir == "" {
		cfg.QuirksDir = "quirks"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "zigbee2mqtt"
	}
	if cfg.MQTT.DiscoveryPrefix == "" {
		cfg.MQTT.DiscoveryPrefix = "homeassistant"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "zigbee-quirks"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

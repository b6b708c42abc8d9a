// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/myo_osc/internal/logging"
)

// Event sources.
const (
	SourceMock   = "mock"
	SourceSerial = "serial"
	SourceReplay = "replay"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration values.
type Config struct {
	// OSC destination
	OSCHost string
	OSCPort int

	AppID string

	// Event source: mock, serial or replay
	Source         string
	SerialPort     string
	SerialBaudRate int
	ReplayFile     string

	// Timing
	ConnectTimeoutMS int // milliseconds
	PumpIntervalMS   int // milliseconds

	// Extra messages, off by default
	EmitDisconnect   bool
	EmitArmDirection bool

	// MQTT mirror, off when MQTTBroker is empty
	MQTTBroker      string
	MQTTClientID    string // empty means myo-osc-<uuid>
	MQTTTopicPrefix string

	// Web Server, off when 0
	WebServerPort int

	LogLevel   string
	StatusLine bool
}

// Default returns a config that runs against the mock source and sends to
// 127.0.0.1:7777.
func Default() *Config {
	return &Config{
		OSCHost:          "127.0.0.1",
		OSCPort:          7777,
		AppID:            "com.relabs.myo-osc",
		Source:           SourceMock,
		SerialPort:       "/dev/ttyACM0",
		SerialBaudRate:   115200,
		ConnectTimeoutMS: 10000,
		PumpIntervalMS:   20,
		MQTTTopicPrefix:  "osc",
		LogLevel:         "info",
		StatusLine:       true,
	}
}

// Load reads a configuration file over the defaults. Files ending in .toml
// are decoded as TOML; anything else uses KEY=VALUE lines.
func Load(configPath string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		return loadTOML(configPath)
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		if err := cfg.setValue(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// OSC
	case "OSC_HOST":
		c.OSCHost = value
	case "OSC_PORT":
		c.OSCPort, err = parseInt(key, value)
	case "APP_ID":
		c.AppID = value

	// Source
	case "SOURCE":
		c.Source = strings.ToLower(value)
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value)
	case "REPLAY_FILE":
		c.ReplayFile = value

	// Timing
	case "CONNECT_TIMEOUT_MS":
		c.ConnectTimeoutMS, err = parseInt(key, value)
	case "PUMP_INTERVAL_MS":
		c.PumpIntervalMS, err = parseInt(key, value)

	// Extensions
	case "EMIT_DISCONNECT":
		c.EmitDisconnect, err = parseBool(key, value)
	case "EMIT_ARM_DIRECTION":
		c.EmitArmDirection, err = parseBool(key, value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC_PREFIX":
		c.MQTTTopicPrefix = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	case "LOG_LEVEL":
		c.LogLevel = value
	case "STATUS_LINE":
		c.StatusLine, err = parseBool(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// ParsePort parses a UDP port given on the command line.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: port must be 1-65535, got %q", ErrInvalid, raw)
	}
	return port, nil
}

// Validate checks value ranges and that the chosen source is complete.
func (c *Config) Validate() error {
	if c.OSCHost == "" {
		return fmt.Errorf("%w: OSC_HOST is required", ErrInvalid)
	}
	if c.OSCPort < 1 || c.OSCPort > 65535 {
		return fmt.Errorf("%w: OSC_PORT must be 1-65535, got %d", ErrInvalid, c.OSCPort)
	}
	switch c.Source {
	case SourceMock:
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("%w: SERIAL_PORT is required for the serial source", ErrInvalid)
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("%w: SERIAL_BAUD_RATE must be positive, got %d", ErrInvalid, c.SerialBaudRate)
		}
	case SourceReplay:
		if c.ReplayFile == "" {
			return fmt.Errorf("%w: REPLAY_FILE is required for the replay source", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: SOURCE must be mock, serial or replay, got %q", ErrInvalid, c.Source)
	}
	if c.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("%w: CONNECT_TIMEOUT_MS must be positive, got %d", ErrInvalid, c.ConnectTimeoutMS)
	}
	if c.PumpIntervalMS <= 0 {
		return fmt.Errorf("%w: PUMP_INTERVAL_MS must be positive, got %d", ErrInvalid, c.PumpIntervalMS)
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("%w: WEB_SERVER_PORT must be 0-65535, got %d", ErrInvalid, c.WebServerPort)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown LOG_LEVEL %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) PumpInterval() time.Duration {
	return time.Duration(c.PumpIntervalMS) * time.Millisecond
}

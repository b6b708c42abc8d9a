// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig maps lower snake case TOML keys onto Config fields.
type fileConfig struct {
	OSCHost          string `toml:"osc_host"`
	OSCPort          int    `toml:"osc_port"`
	AppID            string `toml:"app_id"`
	Source           string `toml:"source"`
	SerialPort       string `toml:"serial_port"`
	SerialBaudRate   int    `toml:"serial_baud_rate"`
	ReplayFile       string `toml:"replay_file"`
	ConnectTimeoutMS int    `toml:"connect_timeout_ms"`
	PumpIntervalMS   int    `toml:"pump_interval_ms"`
	EmitDisconnect   bool   `toml:"emit_disconnect"`
	EmitArmDirection bool   `toml:"emit_arm_direction"`
	MQTTBroker       string `toml:"mqtt_broker"`
	MQTTClientID     string `toml:"mqtt_client_id"`
	MQTTTopicPrefix  string `toml:"mqtt_topic_prefix"`
	WebServerPort    int    `toml:"web_server_port"`
	LogLevel         string `toml:"log_level"`
	StatusLine       bool   `toml:"status_line"`
}

// loadTOML overlays the keys present in path onto Default().
func loadTOML(path string) (*Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("osc_host") {
		cfg.OSCHost = strings.TrimSpace(raw.OSCHost)
	}
	if meta.IsDefined("osc_port") {
		cfg.OSCPort = raw.OSCPort
	}
	if meta.IsDefined("app_id") {
		cfg.AppID = strings.TrimSpace(raw.AppID)
	}
	if meta.IsDefined("source") {
		cfg.Source = strings.ToLower(strings.TrimSpace(raw.Source))
	}
	if meta.IsDefined("serial_port") {
		cfg.SerialPort = strings.TrimSpace(raw.SerialPort)
	}
	if meta.IsDefined("serial_baud_rate") {
		cfg.SerialBaudRate = raw.SerialBaudRate
	}
	if meta.IsDefined("replay_file") {
		cfg.ReplayFile = strings.TrimSpace(raw.ReplayFile)
	}
	if meta.IsDefined("connect_timeout_ms") {
		cfg.ConnectTimeoutMS = raw.ConnectTimeoutMS
	}
	if meta.IsDefined("pump_interval_ms") {
		cfg.PumpIntervalMS = raw.PumpIntervalMS
	}
	if meta.IsDefined("emit_disconnect") {
		cfg.EmitDisconnect = raw.EmitDisconnect
	}
	if meta.IsDefined("emit_arm_direction") {
		cfg.EmitArmDirection = raw.EmitArmDirection
	}
	if meta.IsDefined("mqtt_broker") {
		cfg.MQTTBroker = strings.TrimSpace(raw.MQTTBroker)
	}
	if meta.IsDefined("mqtt_client_id") {
		cfg.MQTTClientID = strings.TrimSpace(raw.MQTTClientID)
	}
	if meta.IsDefined("mqtt_topic_prefix") {
		cfg.MQTTTopicPrefix = strings.TrimSpace(raw.MQTTTopicPrefix)
	}
	if meta.IsDefined("web_server_port") {
		cfg.WebServerPort = raw.WebServerPort
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("status_line") {
		cfg.StatusLine = raw.StatusLine
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

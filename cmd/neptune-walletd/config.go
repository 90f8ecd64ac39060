// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon's own configuration: where the binaries live,
// where wallet state goes, and the supervisor's timing knobs. Distinct
// from lib/settings, which configures the node; this file configures
// the wallet around it.
type Config struct {
	NodeBinary      string `yaml:"node_binary"`
	CompanionBinary string `yaml:"companion_binary"`

	// DataDir holds the settings file, peer and contact databases, and
	// the supervisor state file.
	DataDir string `yaml:"data_dir"`

	// Socket is the unix socket the daemon serves IPC on.
	Socket string `yaml:"socket"`

	LogLevel string `yaml:"log_level"`

	RefreshInterval time.Duration `yaml:"refresh_interval"`
	GraceTimeout    time.Duration `yaml:"grace_timeout"`
	RestartCooldown time.Duration `yaml:"restart_cooldown"`
	StateFreshness  time.Duration `yaml:"state_freshness"`

	// AutoInitialize starts the node pair as soon as the daemon boots,
	// instead of waiting for an explicit initialize request.
	AutoInitialize bool `yaml:"auto_initialize"`
}

func defaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".neptune-wallet")
	return &Config{
		NodeBinary:      "neptune-core",
		CompanionBinary: "neptune-cli",
		DataDir:         dataDir,
		Socket:          filepath.Join(dataDir, "walletd.sock"),
		LogLevel:        "info",
		RefreshInterval: 10 * time.Second,
		GraceTimeout:    5 * time.Second,
		RestartCooldown: time.Second,
		StateFreshness:  2 * time.Minute,
	}
}

// loadConfig overlays the YAML file at path onto the defaults. An empty
// path returns the defaults unchanged.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.NodeBinary == "" {
		return fmt.Errorf("node_binary is required")
	}
	if c.CompanionBinary == "" {
		return fmt.Errorf("companion_binary is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Socket == "" {
		return fmt.Errorf("socket is required")
	}
	for name, d := range map[string]time.Duration{
		"refresh_interval": c.RefreshInterval,
		"grace_timeout":    c.GraceTimeout,
		"restart_cooldown": c.RestartCooldown,
		"state_freshness":  c.StateFreshness,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive (got %v)", name, d)
		}
	}
	return nil
}

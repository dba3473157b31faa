// Package config loads the node's YAML configuration: report timing, the
// sensor's bus assignment, and the indication retry-queue size. Protocol
// constants (UUIDs, sensor commands, conversion timing) are not configurable.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Node    NodeConfig    `yaml:"node"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Display DisplayConfig `yaml:"display"`
}

// ---- NODE ----

type NodeConfig struct {
	Name string `yaml:"name"`
	// ReportPeriodMs is the timer-underflow period, i.e. one temperature
	// cycle per period.
	ReportPeriodMs int `yaml:"report_period_ms"`
	// QueueDepth sizes the indication retry queue.
	QueueDepth int  `yaml:"queue_depth"`
	Debug      bool `yaml:"debug"`
}

// ---- SENSOR ----

type SensorConfig struct {
	// Bus names the two-wire bus instance, e.g. "i2c0".
	Bus string `yaml:"bus"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load parses, normalizes and validates a YAML document.
func Load(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.normalize()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads and parses a YAML config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	c := &Config{}
	c.normalize()
	return c
}

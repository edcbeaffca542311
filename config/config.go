// Package config provides configuration loading for the zxscan command.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/imaging"
)

// Config represents the scanner configuration.
type Config struct {
	// Scaling
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`

	// Decoding
	Formats      []string `yaml:"formats"`
	TryHarder    bool     `yaml:"try_harder"`
	PureBarcode  bool     `yaml:"pure_barcode"`
	CharacterSet string   `yaml:"character_set"`
	Gallery      bool     `yaml:"gallery"`

	// Runtime
	Jobs     int    `yaml:"jobs"`
	LogLevel string `yaml:"log_level"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig configures result publishing. An empty Broker disables it.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		MaxWidth:     imaging.DefaultMaxWidth,
		MaxHeight:    imaging.DefaultMaxHeight,
		TryHarder:    true,
		CharacterSet: zxscan.DefaultCharacterSet,
		Jobs:         runtime.NumCPU(),
		LogLevel:     "info",
		MQTT: MQTTConfig{
			Topic:    "zxscan/results",
			ClientID: "zxscan",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks that names in the configuration are known.
func (c Config) Validate() error {
	if _, err := c.ParseFormats(); err != nil {
		return err
	}
	if c.CharacterSet != "" {
		if _, err := zxscan.CanonicalCharset(c.CharacterSet); err != nil {
			return err
		}
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt broker %s has no topic", c.MQTT.Broker)
	}
	return nil
}

// ParseFormats converts the configured format names. An empty list yields
// nil, which lets the caller pick its defaults.
func (c Config) ParseFormats() ([]zxscan.Format, error) {
	if len(c.Formats) == 0 {
		return nil, nil
	}
	formats := make([]zxscan.Format, 0, len(c.Formats))
	for _, name := range c.Formats {
		f, err := zxscan.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// DecodeHints builds decode hints from the configuration.
func (c Config) DecodeHints() (*zxscan.DecodeHints, error) {
	formats, err := c.ParseFormats()
	if err != nil {
		return nil, err
	}
	return &zxscan.DecodeHints{
		PossibleFormats: formats,
		TryHarder:       c.TryHarder,
		PureBarcode:     c.PureBarcode,
		CharacterSet:    c.CharacterSet,
	}, nil
}

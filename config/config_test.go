package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ericlevine/zxscan"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zxscan.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
max_width: 300
formats: [qr_code, code-128]
mqtt:
  broker: tcp://localhost:1883
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxWidth != 300 || cfg.MaxHeight != 800 {
		t.Errorf("bounds = %dx%d", cfg.MaxWidth, cfg.MaxHeight)
	}
	if !cfg.TryHarder || cfg.CharacterSet != "utf-8" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.MQTT.Topic != "zxscan/results" || cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("mqtt = %+v", cfg.MQTT)
	}

	hints, err := cfg.DecodeHints()
	if err != nil {
		t.Fatal(err)
	}
	want := []zxscan.Format{zxscan.FormatQRCode, zxscan.FormatCode128}
	if len(hints.PossibleFormats) != 2 || hints.PossibleFormats[0] != want[0] || hints.PossibleFormats[1] != want[1] {
		t.Errorf("formats = %v", hints.PossibleFormats)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := LoadFromFile(writeConfig(t, "formats: [hologram]\n")); !errors.Is(err, zxscan.ErrFormat) {
		t.Errorf("bad format err = %v", err)
	}
	if _, err := LoadFromFile(writeConfig(t, "max_width: [1, 2\n")); err == nil {
		t.Error("malformed yaml accepted")
	}
	if _, err := LoadFromFile(writeConfig(t, "mqtt:\n  broker: tcp://x:1883\n  topic: \"\"\n")); err == nil {
		t.Error("broker without topic accepted")
	}
}

func TestDefaultsDecodeHints(t *testing.T) {
	hints, err := Defaults().DecodeHints()
	if err != nil {
		t.Fatal(err)
	}
	if hints.PossibleFormats != nil {
		t.Errorf("formats = %v, want nil", hints.PossibleFormats)
	}
}

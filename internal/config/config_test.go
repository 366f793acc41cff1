package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_MissingCircularID(t *testing.T) {
	t.Setenv("CIRCULAR_ID", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingCircularID) {
		t.Fatalf("Load() error = %v, want ErrMissingCircularID", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CIRCULAR_ID", "123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CircularID != "123" {
		t.Errorf("CircularID = %q, want 123", cfg.CircularID)
	}
	if cfg.BaseURL != "https://kundeavis.coop.no/aviser/" {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
	if cfg.DBHost != "db" || cfg.DBPort != 5432 || cfg.DBName != "kundeaviser" {
		t.Errorf("DB defaults = %s:%d/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if cfg.HTTPTimeout != 30*time.Second || cfg.ImageTimeout != 60*time.Second {
		t.Errorf("timeouts = %v/%v, want 30s/60s", cfg.HTTPTimeout, cfg.ImageTimeout)
	}
	if !cfg.HintPrefilter {
		t.Error("HintPrefilter = false, want true by default")
	}
	if cfg.MinWordConfidence != 60 {
		t.Errorf("MinWordConfidence = %d, want 60", cfg.MinWordConfidence)
	}
	if len(cfg.OCRLanguages) != 2 || cfg.OCRLanguages[0] != "nor" || cfg.OCRLanguages[1] != "eng" {
		t.Errorf("OCRLanguages = %v, want [nor eng]", cfg.OCRLanguages)
	}
	if cfg.Currency != "NOK" {
		t.Errorf("Currency = %q, want NOK", cfg.Currency)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CIRCULAR_ID", " 456 ")
	t.Setenv("PRICE_HINTS", "false")
	t.Setenv("MIN_CONFIDENCE", "80")
	t.Setenv("OCR_LANGUAGES", "nor, dan ,swe")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("HTTP_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CircularID != "456" {
		t.Errorf("CircularID = %q, want trimmed 456", cfg.CircularID)
	}
	if cfg.HintPrefilter {
		t.Error("HintPrefilter = true, want false")
	}
	if cfg.MinWordConfidence != 80 {
		t.Errorf("MinWordConfidence = %d, want 80", cfg.MinWordConfidence)
	}
	if len(cfg.OCRLanguages) != 3 || cfg.OCRLanguages[1] != "dan" {
		t.Errorf("OCRLanguages = %v, want [nor dan swe]", cfg.OCRLanguages)
	}
	if cfg.DBPort != 5433 {
		t.Errorf("DBPort = %d, want 5433", cfg.DBPort)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Bad port", key: "DB_PORT", value: "not-a-port"},
		{name: "Bad confidence", key: "MIN_CONFIDENCE", value: "high"},
		{name: "Bad timeout", key: "HTTP_TIMEOUT", value: "soon"},
		{name: "Empty language list", key: "OCR_LANGUAGES", value: " , ,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CIRCULAR_ID", "123")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q returned nil error", tt.key, tt.value)
			}
		})
	}
}

func TestConnString(t *testing.T) {
	cfg := &Config{DBHost: "localhost", DBPort: 5432, DBName: "kundeaviser", DBUser: "postgres", DBPass: "secret"}
	want := "host=localhost port=5432 dbname=kundeaviser user=postgres password=secret"
	if got := cfg.ConnString(); got != want {
		t.Errorf("ConnString() = %q, want %q", got, want)
	}
}

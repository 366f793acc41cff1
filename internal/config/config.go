package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingCircularID is returned when no circular id is supplied.
// main maps this to a distinct exit code since no work can start without it.
var ErrMissingCircularID = errors.New("CIRCULAR_ID environment variable is required but not set")

type Config struct {
	CircularID string
	BaseURL    string

	DBHost string
	DBPort int
	DBName string
	DBUser string
	DBPass string

	HTTPTimeout  time.Duration
	ImageTimeout time.Duration

	// HintPrefilter toggles the cheap lexical prefilter in the offer parser.
	// Disable for recall-sensitive runs.
	HintPrefilter bool
	// MinWordConfidence drops OCR words below this confidence (0-100).
	MinWordConfidence int
	// OCRLanguages are tesseract language hints, e.g. ["nor", "eng"].
	OCRLanguages []string

	Currency  string
	UserAgent string
}

func Load() (*Config, error) {
	circularID := strings.TrimSpace(os.Getenv("CIRCULAR_ID"))
	if circularID == "" {
		return nil, ErrMissingCircularID
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "https://kundeavis.coop.no/aviser/"
	}

	dbPort := 5432
	if v := os.Getenv("DB_PORT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT %q: %w", v, err)
		}
		dbPort = parsed
	}

	httpTimeout := 30 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
		httpTimeout = parsed
	}

	imageTimeout := 60 * time.Second
	if v := os.Getenv("IMAGE_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IMAGE_TIMEOUT %q: %w", v, err)
		}
		imageTimeout = parsed
	}

	hintPrefilter := true
	if v := os.Getenv("PRICE_HINTS"); v != "" {
		hintPrefilter = strings.EqualFold(v, "true")
	}

	minConfidence := 60
	if v := os.Getenv("MIN_CONFIDENCE"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_CONFIDENCE %q: %w", v, err)
		}
		minConfidence = parsed
	}

	languages := []string{"nor", "eng"}
	if v := os.Getenv("OCR_LANGUAGES"); v != "" {
		languages = nil
		for _, lang := range strings.Split(v, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				languages = append(languages, lang)
			}
		}
		if len(languages) == 0 {
			return nil, fmt.Errorf("invalid OCR_LANGUAGES %q: no languages left after parsing", v)
		}
	}

	return &Config{
		CircularID:        circularID,
		BaseURL:           baseURL,
		DBHost:            getenvDefault("DB_HOST", "db"),
		DBPort:            dbPort,
		DBName:            getenvDefault("DB_NAME", "kundeaviser"),
		DBUser:            getenvDefault("DB_USER", "postgres"),
		DBPass:            getenvDefault("DB_PASS", "coop"),
		HTTPTimeout:       httpTimeout,
		ImageTimeout:      imageTimeout,
		HintPrefilter:     hintPrefilter,
		MinWordConfidence: minConfidence,
		OCRLanguages:      languages,
		Currency:          getenvDefault("CURRENCY", "NOK"),
		UserAgent:         getenvDefault("USER_AGENT", "Mozilla/5.0 (compatible; KundeavisScraper/1.0; +https://example.local)"),
	}, nil
}

// ConnString builds a pgx-compatible keyword/value connection string.
func (c *Config) ConnString() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass)
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Debug("Using default for unset variable", "key", key, "default", fallback)
	return fallback
}

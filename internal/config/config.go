package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Recognition engines selectable through OCR_ENGINE
const (
	EngineTesseract = "tesseract"
	EngineOpenAI    = "openai"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64
	MaxImageBytes      int64

	// AllowedImageHosts restricts fetchable hosts; empty allows any.
	AllowedImageHosts []string

	OCREngine string
	// OCRLanguage is handed to the recognizer as-is, e.g. "eng" or "eng+deu".
	OCRLanguage    string
	OCRTrim        bool
	TessdataPrefix string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// StructuredErrors makes the Lambda handler answer failures with a
	// status-coded response instead of failing the invocation.
	StructuredErrors bool

	AzureStorageAccount string
	AzureStorageKey     string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// OCRLanguages splits OCRLanguage on '+' the way tesseract's -l flag does.
func (c *Config) OCRLanguages() []string {
	var langs []string
	for _, l := range strings.Split(c.OCRLanguage, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// BlobStorageEnabled reports whether Azure credentials were supplied.
func (c *Config) BlobStorageEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		ImageFetchTimeout:  15 * time.Second,
		MaxRequestBodySize: 1024 * 1024,      // 1MB
		MaxImageBytes:      20 * 1024 * 1024, // 20MB
		OCREngine:          EngineTesseract,
		OCRLanguage:        "eng",
		OpenAIModel:        "gpt-4o",
	}
}

func LoadFromEnv() (*Config, error) {
	// A missing .env file is the normal case on Lambda.
	_ = godotenv.Load()

	def := Default()
	cfg := &Config{
		Host:                getEnvOrDefault("HOST", def.Host),
		Port:                getEnvOrDefault("PORT", def.Port),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", def.RequestTimeout),
		ImageFetchTimeout:   parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", def.ImageFetchTimeout),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", def.MaxRequestBodySize),
		MaxImageBytes:       parseIntOrDefault("MAX_IMAGE_BYTES", def.MaxImageBytes),
		AllowedImageHosts:   parseListOrDefault("ALLOWED_IMAGE_HOSTS", nil),
		OCREngine:           strings.ToLower(getEnvOrDefault("OCR_ENGINE", def.OCREngine)),
		OCRLanguage:         getEnvOrDefault("OCR_LANGUAGE", def.OCRLanguage),
		OCRTrim:             parseBoolOrDefault("OCR_TRIM", false),
		TessdataPrefix:      strings.TrimSpace(os.Getenv("TESSDATA_PREFIX")),
		OpenAIAPIKey:        getEnvOrDefault("OPEN_AI_API_KEY", strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))),
		OpenAIBaseURL:       strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		OpenAIModel:         getEnvOrDefault("OPENAI_MODEL", def.OpenAIModel),
		StructuredErrors:    parseBoolOrDefault("OCR_STRUCTURED_ERRORS", false),
		AzureStorageAccount: strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureStorageKey:     strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail at request time.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be > 0 (got %d)", c.MaxImageBytes)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			c.RequestTimeout, c.ImageFetchTimeout)
	}
	switch c.OCREngine {
	case EngineTesseract:
		if len(c.OCRLanguages()) == 0 {
			return fmt.Errorf("OCR_LANGUAGE must name at least one language (got %q)", c.OCRLanguage)
		}
	case EngineOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPEN_AI_API_KEY is required when OCR_ENGINE=%s", EngineOpenAI)
		}
		if c.OpenAIModel == "" {
			return fmt.Errorf("OPENAI_MODEL is required when OCR_ENGINE=%s", EngineOpenAI)
		}
	default:
		return fmt.Errorf("unsupported OCR_ENGINE %q (want %s or %s)", c.OCREngine, EngineTesseract, EngineOpenAI)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseListOrDefault splits a comma separated value, dropping empty items.
func parseListOrDefault(key string, defaultValue []string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

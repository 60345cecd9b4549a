// Package config loads server configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultPort is used when PORT is unset.
const DefaultPort = 5000

// Config holds all server settings.
type Config struct {
	Port      int
	DBPath    string
	StaticDir string
	MediaDir  string
	// PublicURL is the externally reachable base URL, used to build absolute
	// URLs for locally stored photos.
	PublicURL string
	LogFile   string

	Cloudinary Cloudinary

	MaxUploadBytes int64
	// MaxImageDimension downscales larger photos before upload. Zero keeps
	// photos as submitted.
	MaxImageDimension int
	CORSOrigins       []string
	// PersistFoundReports stores found reports instead of only acknowledging
	// them.
	PersistFoundReports bool
}

// Cloudinary holds image-hosting credentials.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Enabled reports whether credentials are configured.
func (c Cloudinary) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Load reads .env (if present) and then the environment. Variables already
// set in the environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:    getEnv("DB_PATH", "items.db"),
		StaticDir: getEnv("STATIC_DIR", "public"),
		MediaDir:  getEnv("MEDIA_DIR", "media"),
		LogFile:   getEnv("LOG_FILE", ""),
		Cloudinary: Cloudinary{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT: %d out of range", cfg.Port)
	}

	cfg.PublicURL = strings.TrimRight(getEnv("PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: must be positive")
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.MaxImageDimension, err = getEnvInt("MAX_IMAGE_DIMENSION", 0); err != nil {
		return nil, err
	}
	if cfg.MaxImageDimension < 0 {
		return nil, fmt.Errorf("MAX_IMAGE_DIMENSION: must not be negative")
	}

	if cfg.PersistFoundReports, err = getEnvBool("PERSIST_FOUND_REPORTS", false); err != nil {
		return nil, err
	}

	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))

	c := cfg.Cloudinary
	if !c.Enabled() && (c.CloudName != "" || c.APIKey != "" || c.APISecret != "") {
		return nil, fmt.Errorf("cloudinary: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set together")
	}

	return cfg, nil
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

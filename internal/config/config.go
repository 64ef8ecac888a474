package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

//go:embed limits.yaml
var limitsYAML []byte

const devJWTSecret = "face-auth-dev-secret-change-in-production"

type Config struct {
	API     APIConfig
	Session SessionConfig
	Camera  CameraConfig
	Mock    MockConfig
	Limits  LimitsConfig
}

type APIConfig struct {
	URL           string        `default:"http://localhost:8000"`
	Timeout       time.Duration `default:"30s"`
	CacheTTL      time.Duration `default:"1m"`
	PayloadFormat string        `default:"multipart"` // "multipart" or "json"
}

type SessionConfig struct {
	Store string // backend DSN: directory path, file://, postgres://, mysql:// or redis://
	Key   string `default:"user-storage"`
}

type CameraConfig struct {
	Device     string `default:"/dev/video0"`
	FFmpegPath string `default:"ffmpeg"`
}

type MockConfig struct {
	Host       string        `default:"127.0.0.1"`
	Port       int           `default:"8000"`
	JWTSecret  string        // signing secret for the development server
	AccessTTL  time.Duration `default:"15m"`
	RefreshTTL time.Duration `default:"168h"`
}

// GetJWTSecret returns the configured signing secret, or a development
// default when none is set.
func (c *MockConfig) GetJWTSecret() string {
	if c.JWTSecret == "" {
		return devJWTSecret
	}
	return c.JWTSecret
}

type LimitsConfig struct {
	MaxImageSizeMB    int        `yaml:"max_image_size_mb"`
	AllowedImageTypes []string   `yaml:"allowed_image_types"`
	MinPasswordLength int        `yaml:"min_password_length"`
	InspectImages     bool       `yaml:"inspect_images"`
	MinResolution     Resolution `yaml:"min_resolution"`
	MaxResolution     Resolution `yaml:"max_resolution"`
}

type Resolution struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// MaxImageBytes returns the image size ceiling in bytes.
func (l *LimitsConfig) MaxImageBytes() int64 {
	return int64(l.MaxImageSizeMB) * 1024 * 1024
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a positive time.Duration.
// Returns the default value if the env var is unset, empty, or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envString returns the environment variable or the default when unset.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envBool parses an environment variable as a boolean, falling back on invalid input.
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

// defaultSessionStore returns the per-user directory credentials are kept in.
func defaultSessionStore() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".face-auth"
	}
	return filepath.Join(dir, "face-auth")
}

func Load() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		// Struct tags are static so this only fails on a programming error
		panic("failed to apply config defaults: " + err.Error())
	}
	if err := yaml.Unmarshal(limitsYAML, &cfg.Limits); err != nil {
		panic("failed to unmarshal embedded limits.yaml: " + err.Error())
	}

	cfg.API.URL = strings.TrimRight(envString("API_URL", cfg.API.URL), "/")
	cfg.API.Timeout = envDuration("API_TIMEOUT", cfg.API.Timeout)
	cfg.API.CacheTTL = envDuration("API_CACHE_TTL", cfg.API.CacheTTL)
	if f := strings.ToLower(os.Getenv("API_PAYLOAD_FORMAT")); f == "json" || f == "multipart" {
		cfg.API.PayloadFormat = f
	}

	cfg.Session.Store = envString("SESSION_STORE", defaultSessionStore())
	cfg.Session.Key = envString("SESSION_KEY", cfg.Session.Key)

	cfg.Camera.Device = envString("CAMERA_DEVICE", cfg.Camera.Device)
	cfg.Camera.FFmpegPath = envString("FFMPEG_PATH", cfg.Camera.FFmpegPath)

	cfg.Mock.Host = envString("MOCK_HOST", cfg.Mock.Host)
	cfg.Mock.Port = envInt("MOCK_PORT", cfg.Mock.Port)
	cfg.Mock.JWTSecret = os.Getenv("MOCK_JWT_SECRET")
	cfg.Mock.AccessTTL = envDuration("MOCK_ACCESS_TTL", cfg.Mock.AccessTTL)
	cfg.Mock.RefreshTTL = envDuration("MOCK_REFRESH_TTL", cfg.Mock.RefreshTTL)

	cfg.Limits.MaxImageSizeMB = envInt("IMAGE_MAX_SIZE_MB", cfg.Limits.MaxImageSizeMB)
	cfg.Limits.InspectImages = envBool("IMAGE_INSPECT", cfg.Limits.InspectImages)

	return &cfg
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed emotions.yaml
var emotionsYAML []byte

// Supported classifier backends.
const (
	ProviderService  = "service"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderOllama   = "ollama"
	ProviderLlamaCpp = "llamacpp"
)

// Supported snapshot store backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMariaDB  = "mariadb"
)

type Config struct {
	Camera   CameraConfig
	AI       AIConfig
	Detector DetectorConfig
	Snapshot SnapshotConfig
	Database DatabaseConfig
	Web      WebConfig
	Log      LogConfig
	Emotions []EmotionEntry `env:"-"`
}

// CameraConfig controls the frame source. Capture stays off unless explicitly enabled,
// which is the safe posture for hosts without a camera.
type CameraConfig struct {
	Enabled     bool          `env:"CARECAM_CAPTURE_ENABLED" envDefault:"false"`
	Device      string        `env:"CARECAM_CAMERA_DEVICE"   envDefault:"/dev/video0"`
	Width       int           `env:"CARECAM_CAMERA_WIDTH"    envDefault:"640"`
	Height      int           `env:"CARECAM_CAMERA_HEIGHT"   envDefault:"480"`
	ReadTimeout time.Duration `env:"CARECAM_CAMERA_READ_TIMEOUT" envDefault:"5s"`
}

type AIConfig struct {
	Enabled  bool          `env:"CARECAM_AI_ENABLED"  envDefault:"false"`
	Provider string        `env:"CARECAM_AI_PROVIDER" envDefault:"service"`
	Timeout  time.Duration `env:"CARECAM_AI_TIMEOUT"  envDefault:"30s"`
	Service  ServiceConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Ollama   OllamaConfig
	LlamaCpp LlamaCppConfig
}

// ServiceConfig points at an HTTP face-emotion analysis service.
type ServiceConfig struct {
	URL string `env:"EMOTION_SERVICE_URL"` // defaults to http://localhost:5005
}

type OpenAIConfig struct {
	Token string `env:"OPENAI_TOKEN"`
	Model string `env:"OPENAI_MODEL"` // defaults to gpt-4.1-mini
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL"` // defaults to gemini-2.5-flash
}

type OllamaConfig struct {
	URL   string `env:"OLLAMA_URL"`   // defaults to http://localhost:11434
	Model string `env:"OLLAMA_MODEL"` // defaults to llama3.2-vision:11b
}

type LlamaCppConfig struct {
	URL   string `env:"LLAMACPP_URL"`   // defaults to http://localhost:8080
	Model string `env:"LLAMACPP_MODEL"` // defaults to llava
}

type DetectorConfig struct {
	SwitchThreshold time.Duration `env:"CARECAM_SWITCH_THRESHOLD" envDefault:"2s"`
}

type SnapshotConfig struct {
	Dir          string        `env:"CARECAM_SNAPSHOT_DIR"           envDefault:"snapshots"`
	WriteTimeout time.Duration `env:"CARECAM_SNAPSHOT_WRITE_TIMEOUT" envDefault:"10s"`
	JPEGQuality  int           `env:"CARECAM_JPEG_QUALITY"           envDefault:"90"`
}

type DatabaseConfig struct {
	Driver       string `env:"DATABASE_DRIVER"          envDefault:"sqlite"`
	URL          string `env:"DATABASE_URL"             envDefault:"carecam.db"` // file path for sqlite, DSN otherwise
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS"  envDefault:"25"`
	MaxIdleConns int    `env:"DATABASE_MAX_IDLE_CONNS"  envDefault:"5"`
}

type WebConfig struct {
	Host           string   `env:"WEB_HOST"            envDefault:"0.0.0.0"`
	Port           int      `env:"WEB_PORT"            envDefault:"8080"`
	AllowedOrigins []string `env:"WEB_ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // text or json
}

// EmotionEntry is one canonical label with the alternative spellings that map onto it.
type EmotionEntry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type emotionCatalog struct {
	Emotions []EmotionEntry `yaml:"emotions"`
}

// Load reads configuration from the process environment.
// A .env file, if present, has already been applied by the CLI.
func Load() (*Config, error) {
	var catalog emotionCatalog
	if err := yaml.Unmarshal(emotionsYAML, &catalog); err != nil {
		// Embedded file, so this only happens on a broken build.
		panic("failed to unmarshal embedded emotions.yaml: " + err.Error())
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Emotions = catalog.Emotions

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that env parsing alone cannot reject.
func (c *Config) Validate() error {
	providers := []string{ProviderService, ProviderOpenAI, ProviderGemini, ProviderOllama, ProviderLlamaCpp}
	if !slices.Contains(providers, c.AI.Provider) {
		return fmt.Errorf("unknown AI provider %q", c.AI.Provider)
	}
	drivers := []string{DriverSQLite, DriverPostgres, DriverMariaDB}
	if !slices.Contains(drivers, c.Database.Driver) {
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Detector.SwitchThreshold < 0 {
		return errors.New("switch threshold must not be negative")
	}
	if c.Snapshot.JPEGQuality < 1 || c.Snapshot.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality %d out of range 1-100", c.Snapshot.JPEGQuality)
	}
	return nil
}

// ProviderAvailable reports whether the selected classifier backend has the credentials it needs.
// Local backends need none.
func (c *AIConfig) ProviderAvailable() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.Token != ""
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	default:
		return true
	}
}

// Addr returns the listen address for the web server.
func (c *WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

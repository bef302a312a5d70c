package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for the copiloto service.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Storage StorageConfig `toml:"storage"`
	Wake    WakeConfig    `toml:"wake"`
	Speech  SpeechConfig  `toml:"speech"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	StaticFilesDir     string   `toml:"static_files_dir"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json, console
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

// WakeConfig holds wake word and listening policy settings.
type WakeConfig struct {
	Word          string `toml:"word"`           // trigger token, default "copiloto"
	ListeningMode string `toml:"listening_mode"` // "speaker" or "headphones"
}

// SpeechConfig groups the input and output channel settings.
type SpeechConfig struct {
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
}

// InputConfig holds speech recognition settings.
type InputConfig struct {
	Engine         string       `toml:"engine"` // "sherpa" or "openai"
	SampleRate     int          `toml:"sample_rate"`
	ChunkMs        int          `toml:"chunk_ms"`
	RestartDelayMs int          `toml:"restart_delay_ms"`
	Sherpa         SherpaConfig `toml:"sherpa"`
	OpenAI         OpenAIConfig `toml:"openai"`
}

// SherpaConfig holds settings for the offline sherpa-onnx recognizer.
type SherpaConfig struct {
	ModelDir   string `toml:"model_dir"`
	FeatureDim int    `toml:"feature_dim"`
	NumThreads int    `toml:"num_threads"`
}

// OpenAIConfig holds settings for the Whisper transcription engine.
type OpenAIConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	Language       string  `toml:"language"`
	SilenceMs      int     `toml:"silence_ms"`
	VADThreshold   float64 `toml:"vad_threshold"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// OutputConfig holds speech synthesis settings.
type OutputConfig struct {
	Language      string  `toml:"language"`
	Speed         float32 `toml:"speed"`
	CacheDir      string  `toml:"cache_dir"`
	ResumeDelayMs int     `toml:"resume_delay_ms"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			StaticFilesDir: "web",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			SQLitePath: "copiloto.db",
		},
		Wake: WakeConfig{
			Word:          "copiloto",
			ListeningMode: "speaker",
		},
		Speech: SpeechConfig{
			Input: InputConfig{
				Engine:         "sherpa",
				SampleRate:     16000,
				ChunkMs:        100,
				RestartDelayMs: 400,
				Sherpa: SherpaConfig{
					ModelDir:   "models/es",
					FeatureDim: 80,
					NumThreads: 1,
				},
				OpenAI: OpenAIConfig{
					Model:          "whisper-1",
					Language:       "es",
					SilenceMs:      900,
					VADThreshold:   0.015,
					TimeoutSeconds: 30,
				},
			},
			Output: OutputConfig{
				Language:      "es",
				Speed:         1.0,
				CacheDir:      "",
				ResumeDelayMs: 300,
			},
		},
	}
}

// Load reads the TOML config file at path, overlaying the defaults.
// A missing file is not an error; the defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Wake.ListeningMode {
	case "speaker", "headphones":
	default:
		return fmt.Errorf("invalid listening mode: %s", c.Wake.ListeningMode)
	}
	switch c.Speech.Input.Engine {
	case "sherpa", "openai":
	default:
		return fmt.Errorf("invalid speech input engine: %s", c.Speech.Input.Engine)
	}
	if c.Speech.Input.Engine == "openai" && c.Speech.Input.OpenAI.APIKey == "" {
		return fmt.Errorf("speech input engine is openai but no API key is configured")
	}
	if c.Wake.Word == "" {
		return fmt.Errorf("wake word must not be empty")
	}
	if c.Speech.Input.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", c.Speech.Input.SampleRate)
	}
	return nil
}

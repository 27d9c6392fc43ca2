// Package config loads parlons settings from defaults, an optional YAML
// file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PARLONS_SERVER_PORT or PARLONS_SPEECH_RATE.
const EnvPrefix = "PARLONS"

// Speech engine names.
const (
	EngineAuto   = "auto"
	EngineAzure  = "azure"
	EngineSay    = "say"
	EngineEspeak = "espeak"
	EngineSilent = "silent"
)

// ErrMissingAzureCredentials is returned when the azure engine is selected
// without a key and region.
var ErrMissingAzureCredentials = errors.New("azure engine requires AZURE_SPEECH_KEY and AZURE_SPEECH_REGION")

// ErrMissingServerURL is returned when the client is online without a server.
var ErrMissingServerURL = errors.New("client.server_url is required unless client.offline is set")

// Config holds every setting for both binaries.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Client    Client    `mapstructure:"client"`
	Speech    Speech    `mapstructure:"speech"`
	Rehearsal Rehearsal `mapstructure:"rehearsal"`
	Voice     Voice     `mapstructure:"voice"`
	Log       Log       `mapstructure:"log"`
}

// Server configures the category store service.
type Server struct {
	Port      int    `mapstructure:"port" validate:"min=1,max=65535"`
	DataFile  string `mapstructure:"data_file" validate:"required"`
	StaticDir string `mapstructure:"static_dir"` // SPA build directory, empty disables it
	Seed      bool   `mapstructure:"seed"`       // write the built-in categories when the file is missing
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Client configures the terminal client.
type Client struct {
	ServerURL string `mapstructure:"server_url" validate:"omitempty,url"`
	Offline   bool   `mapstructure:"offline"`
	LocalDB   string `mapstructure:"local_db" validate:"required"`
}

// Speech configures text to speech.
type Speech struct {
	Engine        string   `mapstructure:"engine" validate:"oneof=auto azure say espeak silent"`
	DrillLanguage string   `mapstructure:"drill_language" validate:"required"`
	Rate          float64  `mapstructure:"rate" validate:"gtefield=MinRate,ltefield=MaxRate"`
	MinRate       float64  `mapstructure:"min_rate" validate:"gt=0"`
	MaxRate       float64  `mapstructure:"max_rate" validate:"gtefield=MinRate"`
	RateStep      float64  `mapstructure:"rate_step" validate:"gt=0"`
	PreferQuality []string `mapstructure:"prefer_quality"`
	CacheDir      string   `mapstructure:"cache_dir"`
	DiskCache     bool     `mapstructure:"disk_cache"`

	AzureKey    string `mapstructure:"azure_key"`
	AzureRegion string `mapstructure:"azure_region"`
	AzureVoice  string `mapstructure:"azure_voice"`
}

// HasAzure reports whether cloud credentials are configured.
func (s Speech) HasAzure() bool {
	return s.AzureKey != "" && s.AzureRegion != ""
}

// Rehearsal configures the pauses of the auto-play loop.
type Rehearsal struct {
	PromptPause time.Duration `mapstructure:"prompt_pause" validate:"gte=0"`
	AnswerPause time.Duration `mapstructure:"answer_pause" validate:"gte=0"`
	NextPause   time.Duration `mapstructure:"next_pause" validate:"gte=0"`
}

// Voice configures the optional spoken command listener.
type Voice struct {
	Enabled      bool     `mapstructure:"enabled"`
	WhisperBin   string   `mapstructure:"whisper_bin" validate:"required_if=Enabled true"`
	WhisperModel string   `mapstructure:"whisper_model" validate:"required_if=Enabled true"`
	RecordSecs   int      `mapstructure:"record_secs" validate:"min=1,max=30"`
	WakeWords    []string `mapstructure:"wake_words"`
}

// Log configures the logger.
type Log struct {
	Level string `mapstructure:"level" validate:"oneof=off quiet none normal info verbose debug"`
	File  string `mapstructure:"file"` // empty means stderr
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.data_file", "questions.json")
	v.SetDefault("server.static_dir", "dist")
	v.SetDefault("server.seed", true)

	v.SetDefault("client.server_url", "http://localhost:3001")
	v.SetDefault("client.offline", false)
	v.SetDefault("client.local_db", "parlons.db")

	v.SetDefault("speech.engine", EngineAuto)
	v.SetDefault("speech.drill_language", "fr-FR")
	v.SetDefault("speech.rate", 0.9)
	v.SetDefault("speech.min_rate", 0.5)
	v.SetDefault("speech.max_rate", 1.5)
	v.SetDefault("speech.rate_step", 0.1)
	v.SetDefault("speech.prefer_quality", []string{"fr"})
	v.SetDefault("speech.cache_dir", ".parlons-cache")
	v.SetDefault("speech.disk_cache", true)
	v.SetDefault("speech.azure_key", "")
	v.SetDefault("speech.azure_region", "")
	v.SetDefault("speech.azure_voice", "fr-FR-DeniseNeural")

	v.SetDefault("rehearsal.prompt_pause", "1s")
	v.SetDefault("rehearsal.answer_pause", "2s")
	v.SetDefault("rehearsal.next_pause", "2s")

	v.SetDefault("voice.enabled", false)
	v.SetDefault("voice.whisper_bin", "whisper-cli")
	v.SetDefault("voice.whisper_model", "")
	v.SetDefault("voice.record_secs", 3)
	v.SetDefault("voice.wake_words", []string{})

	v.SetDefault("log.level", "normal")
	v.SetDefault("log.file", "")
}

// Load reads configuration. path names an explicit config file; when empty,
// config.yaml is looked up in . and ./config and may be absent.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("speech.azure_key", "AZURE_SPEECH_KEY", EnvPrefix+"_SPEECH_AZURE_KEY")
	_ = v.BindEnv("speech.azure_region", "AZURE_SPEECH_REGION", EnvPrefix+"_SPEECH_AZURE_REGION")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-section rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.Client.Offline && c.Client.ServerURL == "" {
		return ErrMissingServerURL
	}
	if c.Speech.Engine == EngineAzure && !c.Speech.HasAzure() {
		return ErrMissingAzureCredentials
	}
	return nil
}

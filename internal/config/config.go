package config

import (
	"os"
	"time"

	"livechat/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/caarlos0/env/v11"
	"github.com/yanun0323/errors"
)

const (
	DefaultBaseURL              = "http://localhost:8000/api"
	DefaultPath                 = "/ws"
	DefaultReconnectBase        = time.Second
	DefaultReconnectCap         = 10 * time.Second
	DefaultReconnectMaxAttempts = 5
	DefaultTypingIdle           = 2 * time.Second
	DefaultTypingExpiry         = 3 * time.Second
	DefaultHandshakeTimeout     = 10 * time.Second
)

// Realtime is the resolved configuration of the chat client.
type Realtime struct {
	BaseURL              string        `env:"CHAT_API_URL"                envDefault:"http://localhost:8000/api"`
	Path                 string        `env:"CHAT_WS_PATH"                envDefault:"/ws"`
	ReconnectBase        time.Duration `env:"CHAT_RECONNECT_BASE"         envDefault:"1s"`
	ReconnectCap         time.Duration `env:"CHAT_RECONNECT_CAP"          envDefault:"10s"`
	ReconnectMaxAttempts int           `env:"CHAT_RECONNECT_MAX_ATTEMPTS" envDefault:"5"`
	ReconnectJitter      float64       `env:"CHAT_RECONNECT_JITTER"       envDefault:"0"`
	TypingIdle           time.Duration `env:"CHAT_TYPING_IDLE"            envDefault:"2s"`
	TypingExpiry         time.Duration `env:"CHAT_TYPING_EXPIRY"          envDefault:"3s"`
	HandshakeTimeout     time.Duration `env:"CHAT_WS_HANDSHAKE_TIMEOUT"   envDefault:"10s"`
	Resubscribe          bool          `env:"CHAT_RESUBSCRIBE"            envDefault:"false"`
}

// FileConfig mirrors the JSON config layout. Absent fields keep the env value.
type FileConfig struct {
	BaseURL     *string         `json:"baseUrl"`
	Path        *string         `json:"wsPath"`
	Reconnect   ReconnectConfig `json:"reconnect"`
	Typing      TypingConfig    `json:"typing"`
	Resubscribe *bool           `json:"resubscribe"`
}

// ReconnectConfig holds reconnect timings in milliseconds.
type ReconnectConfig struct {
	BaseMs      *int64 `json:"baseMs"`
	CapMs       *int64 `json:"capMs"`
	MaxAttempts *int   `json:"maxAttempts"`
	// Jitter is a fraction (0-1) of each delay added or removed at random.
	Jitter *float64 `json:"jitter"`
}

// TypingConfig holds typing windows in milliseconds.
type TypingConfig struct {
	IdleMs   *int64 `json:"idleMs"`
	ExpiryMs *int64 `json:"expiryMs"`
}

// Default returns the built-in configuration without reading the environment.
func Default() Realtime {
	return Realtime{}.WithDefaults()
}

// FromEnv reads the configuration from the environment.
func FromEnv() (Realtime, error) {
	var cfg Realtime
	if err := env.Parse(&cfg); err != nil {
		return Realtime{}, errors.Wrap(exception.ErrConfig, err.Error())
	}
	if err := checkAttempts(cfg.ReconnectMaxAttempts); err != nil {
		return Realtime{}, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Realtime{}, err
	}
	return cfg, nil
}

// Load reads the environment, then overlays the JSON file at path when path is not empty.
func Load(path string) (Realtime, error) {
	var cfg Realtime
	if err := env.Parse(&cfg); err != nil {
		return Realtime{}, errors.Wrap(exception.ErrConfig, err.Error())
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Realtime{}, errors.Wrapf(exception.ErrConfig, "read %s: %s", path, err.Error())
		}
		var file FileConfig
		if err := sonic.ConfigStd.Unmarshal(data, &file); err != nil {
			return Realtime{}, errors.Wrapf(exception.ErrConfig, "parse %s: %s", path, err.Error())
		}
		cfg = file.overlay(cfg)
	}
	if err := checkAttempts(cfg.ReconnectMaxAttempts); err != nil {
		return Realtime{}, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Realtime{}, err
	}
	return cfg, nil
}

func (f FileConfig) overlay(cfg Realtime) Realtime {
	if f.BaseURL != nil {
		cfg.BaseURL = *f.BaseURL
	}
	if f.Path != nil {
		cfg.Path = *f.Path
	}
	if f.Reconnect.BaseMs != nil {
		cfg.ReconnectBase = time.Duration(*f.Reconnect.BaseMs) * time.Millisecond
	}
	if f.Reconnect.CapMs != nil {
		cfg.ReconnectCap = time.Duration(*f.Reconnect.CapMs) * time.Millisecond
	}
	if f.Reconnect.MaxAttempts != nil {
		cfg.ReconnectMaxAttempts = *f.Reconnect.MaxAttempts
	}
	if f.Reconnect.Jitter != nil {
		cfg.ReconnectJitter = *f.Reconnect.Jitter
	}
	if f.Typing.IdleMs != nil {
		cfg.TypingIdle = time.Duration(*f.Typing.IdleMs) * time.Millisecond
	}
	if f.Typing.ExpiryMs != nil {
		cfg.TypingExpiry = time.Duration(*f.Typing.ExpiryMs) * time.Millisecond
	}
	if f.Resubscribe != nil {
		cfg.Resubscribe = *f.Resubscribe
	}
	return cfg
}

// WithDefaults fills unset fields with the built-in defaults.
func (c Realtime) WithDefaults() Realtime {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.ReconnectBase <= 0 {
		c.ReconnectBase = DefaultReconnectBase
	}
	if c.ReconnectCap <= 0 {
		c.ReconnectCap = DefaultReconnectCap
	}
	if c.ReconnectMaxAttempts == 0 {
		c.ReconnectMaxAttempts = DefaultReconnectMaxAttempts
	}
	if c.TypingIdle <= 0 {
		c.TypingIdle = DefaultTypingIdle
	}
	if c.TypingExpiry <= 0 {
		c.TypingExpiry = DefaultTypingExpiry
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return c
}

// Validate reports the first inconsistent setting.
func (c Realtime) Validate() error {
	if _, err := Endpoint(c.BaseURL, c.Path, "probe"); err != nil {
		return errors.Wrap(exception.ErrConfig, err.Error())
	}
	if c.ReconnectCap < c.ReconnectBase {
		return errors.Wrapf(exception.ErrConfig, "reconnect cap %s below base %s", c.ReconnectCap, c.ReconnectBase)
	}
	if err := checkAttempts(c.ReconnectMaxAttempts); err != nil {
		return err
	}
	if c.ReconnectJitter < 0 || c.ReconnectJitter > 1 {
		return errors.Wrapf(exception.ErrConfig, "reconnect jitter %v outside [0, 1]", c.ReconnectJitter)
	}
	return nil
}

// checkAttempts must see the raw value: WithDefaults turns zero into the default.
func checkAttempts(n int) error {
	if n <= 0 {
		return errors.Wrapf(exception.ErrConfig, "reconnect max attempts must be positive, got %d", n)
	}
	return nil
}


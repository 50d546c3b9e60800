package config

// Config is the process configuration.
//
// Credentials never come from the config file: they are read from the
// environment (see env.go) and are excluded from JSON so they can't leak into
// hashes or dumps.
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Poller    PollerConfig    `json:"poller"`
	Logging   LoggingConfig   `json:"logging"`
}

type PracticumConfig struct {
	Token string `json:"-"`

	Endpoint string `json:"endpoint,omitempty"`
	// RequestTimeout is a Go duration string (e.g. "30s").
	RequestTimeout string `json:"request_timeout,omitempty"`
}

type TelegramConfig struct {
	Token  string `json:"-"`
	ChatID string `json:"-"`

	ThreadID   int `json:"thread_id,omitempty"`
	RatePerSec int `json:"rate_per_sec,omitempty"`
	// APIURL overrides the Bot API base URL (self-hosted bot API server).
	APIURL string `json:"api_url,omitempty"`
	// SendTimeout is a Go duration string (e.g. "15s").
	SendTimeout string `json:"send_timeout,omitempty"`
}

// PollerConfig controls the poll loop.
//
// Defaults (when fields are omitted/zero):
//   - interval: "10m"
//   - reset_error_on_success: false
type PollerConfig struct {
	// Interval is a Go duration string; minimum 1s.
	Interval string `json:"interval,omitempty"`
	// ResetErrorOnSuccess forgets the last reported error kind after a clean
	// cycle, so a recurring error is reported again.
	ResetErrorOnSuccess bool `json:"reset_error_on_success,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Default returns the config used when no file is given.
func Default() *Config {
	return &Config{
		Poller:  PollerConfig{Interval: "10m"},
		Logging: LoggingConfig{Level: "DEBUG", Console: true},
	}
}

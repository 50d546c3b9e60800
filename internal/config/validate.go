package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const MinPollInterval = time.Second

// Validate checks the non-secret settings. Credentials are checked
// separately by CheckCredentials so hot reloads don't depend on the env.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if ep := strings.TrimSpace(cfg.Practicum.Endpoint); ep != "" {
		u, err := url.Parse(ep)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("practicum.endpoint: invalid url %q", ep)
		}
	}
	if _, err := ParseDurationField("practicum.request_timeout", cfg.Practicum.RequestTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("telegram.send_timeout", cfg.Telegram.SendTimeout); err != nil {
		return err
	}
	if cfg.Telegram.RatePerSec < 0 {
		return fmt.Errorf("telegram.rate_per_sec must be >= 0")
	}
	if cfg.Telegram.ThreadID < 0 {
		return fmt.Errorf("telegram.thread_id must be >= 0")
	}
	d, err := ParseDurationField("poller.interval", cfg.Poller.Interval)
	if err != nil {
		return err
	}
	if d != 0 && d < MinPollInterval {
		return fmt.Errorf("poller.interval must be >= %s", MinPollInterval)
	}
	switch strings.ToUpper(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "CRITICAL", "FATAL":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}
	return nil
}

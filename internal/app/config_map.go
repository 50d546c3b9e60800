package app

import (
	"strings"
	"time"

	"hwbot/internal/config"
	"hwbot/internal/notifier"
	"hwbot/internal/poller"
	"hwbot/internal/practicum"
	telegram "hwbot/internal/transport/telegram/adapter"
	logx "hwbot/pkg/logx"
)

func mapLogConfig(cfg *Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapPracticumConfig(cfg *Config) (practicum.Config, error) {
	timeout, err := config.ParseDurationOrDefault("practicum.request_timeout", cfg.Practicum.RequestTimeout, 30*time.Second)
	if err != nil {
		return practicum.Config{}, err
	}
	ep := strings.TrimSpace(cfg.Practicum.Endpoint)
	if ep == "" {
		ep = practicum.DefaultEndpoint
	}
	return practicum.Config{Endpoint: ep, Token: cfg.Practicum.Token, Timeout: timeout}, nil
}

func mapAdapterConfig(cfg *Config) (telegram.Config, error) {
	timeout, err := config.ParseDurationOrDefault("telegram.send_timeout", cfg.Telegram.SendTimeout, 15*time.Second)
	if err != nil {
		return telegram.Config{}, err
	}
	return telegram.Config{Token: cfg.Telegram.Token, APIURL: cfg.Telegram.APIURL, SendTimeout: timeout}, nil
}

func mapNotifierConfig(cfg *Config) notifier.Config {
	return notifier.Config{
		ChatID:     cfg.Telegram.ChatID,
		ThreadID:   cfg.Telegram.ThreadID,
		RatePerSec: cfg.Telegram.RatePerSec,
	}
}

func mapPollerConfig(cfg *Config) (poller.Config, error) {
	every, err := config.ParseDurationOrDefault("poller.interval", cfg.Poller.Interval, poller.DefaultInterval)
	if err != nil {
		return poller.Config{}, err
	}
	return poller.Config{Interval: every, ResetErrorOnSuccess: cfg.Poller.ResetErrorOnSuccess}, nil
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TG_TOKEN"
	EnvChatID         = "CHAT_ID"
)

var ErrMissingCredentials = errors.New("could not load all required environment variables")

// MissingCredentialsError names every absent credential variable.
type MissingCredentialsError struct {
	Vars []string
}

func (e *MissingCredentialsError) Error() string {
	return ErrMissingCredentials.Error() + ": " + strings.Join(e.Vars, ", ")
}

func (e *MissingCredentialsError) Unwrap() error { return ErrMissingCredentials }

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// without overriding variables already set. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv copies credentials from the environment into cfg.
func ApplyEnv(cfg *Config) {
	cfg.Practicum.Token = strings.TrimSpace(os.Getenv(EnvPracticumToken))
	cfg.Telegram.Token = strings.TrimSpace(os.Getenv(EnvTelegramToken))
	cfg.Telegram.ChatID = strings.TrimSpace(os.Getenv(EnvChatID))
}

// CheckCredentials returns a *MissingCredentialsError when any credential is empty.
func CheckCredentials(cfg *Config) error {
	var missing []string
	if cfg.Practicum.Token == "" {
		missing = append(missing, EnvPracticumToken)
	}
	if cfg.Telegram.Token == "" {
		missing = append(missing, EnvTelegramToken)
	}
	if cfg.Telegram.ChatID == "" {
		missing = append(missing, EnvChatID)
	}
	if len(missing) > 0 {
		return &MissingCredentialsError{Vars: missing}
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hwbot/internal/app"
	"hwbot/internal/config"
	logx "hwbot/pkg/logx"
)

func main() {
	var cfgPath, envPath string
	flag.StringVar(&cfgPath, "config", "", "optional path to config json/yaml")
	flag.StringVar(&envPath, "env", ".env", "path to .env file with credentials")
	flag.Parse()

	boot := logx.NewConsole("DEBUG").With(logx.String("comp", "main"))

	if err := config.LoadDotEnv(envPath); err != nil {
		boot.Warn("could not read env file", logx.String("path", envPath), logx.Err(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(cfgPath)
	if err != nil {
		if errors.Is(err, app.ErrMissingCredentials) {
			boot.Critical("could not load all required environment variables", logx.Err(err))
		} else {
			boot.Critical("fatal", logx.Err(err))
		}
		os.Exit(1)
	}

	if err := a.Start(ctx); err != nil {
		boot.Critical("fatal start", logx.Err(err))
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-a.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = a.Stop(stopCtx)

	if err := a.Err(); err != nil {
		boot.Critical("stopped on error", logx.Err(err))
		os.Exit(1)
	}
}

package app

import (
	"hwbot/internal/config"
	"hwbot/internal/runtime/supervisor"
)

// ---- Config ----

type Config = config.Config

type ConfigManager = config.Manager

var NewConfigManager = config.NewManager

// ErrMissingCredentials is returned by NewApp when a required credential is absent.
var ErrMissingCredentials = config.ErrMissingCredentials

// ---- Runtime ----

type Supervisor = supervisor.Supervisor

var NewSupervisor = supervisor.New

var WithLogger = supervisor.WithLogger

var WithCancelOnError = supervisor.WithCancelOnError

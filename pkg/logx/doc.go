// Package logx configures hwbot's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + level + short caller)
//   - File output JSON-structured
//   - Level changes live (Service.Apply) so a config reload takes effect
package logx

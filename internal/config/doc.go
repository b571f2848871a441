// Package config loads runtime configuration for envd.
//
// Values start from the preset selected at build time, are overlaid by
// `environment.yaml` (searched in `.` and `config/`, or given explicitly) and
// then by `CS_*` environment variables (see `internal/config/config.go` for keys).
package config

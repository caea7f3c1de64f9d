// Package config provides server configuration for tachikv.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//
// Configuration is loaded via internal/infra/confloader and supports
// files, environment variables, and flags.
package config

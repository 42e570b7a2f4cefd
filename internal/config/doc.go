// Package config defines runtime configuration for lfstage.
//
// Configuration can be provided via:
//   - YAML configuration file (/etc/lfstage/config.yaml by default)
//   - Environment variables (LFSTAGE_ prefix)
//   - Command-line flags (applied by the cmd layer)
//
// A missing config file falls back to defaults; a present but invalid one
// is an error. The loaded Config is passed explicitly into the subsystems
// that need it.
package config

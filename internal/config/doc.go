// Package config provides configuration loading and validation for the
// PhotosBridge server. It handles YAML-based configuration with per-section
// validation and sensible loopback defaults.
package config

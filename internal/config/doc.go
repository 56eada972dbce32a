// Package config loads, validates, and normalizes gavel's TOML
// configuration.
package config

// Package config loads and validates the TOML configuration for the exporter.
//
// Defaults live in defaults.go, validation in validate.go. Paths support ~
// expansion and are normalized to absolute form during Load.
package config

// Package settings exposes the desktop application's sqlite key-value store
// through the narrow Get(key, fallback) accessor the exporter consumes for
// runtime overrides (console port, output directory, tick rate).
package settings

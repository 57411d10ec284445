package main

import (
	"strings"
	"sync"

	"demoreel/internal/config"
	"demoreel/internal/settings"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

// openSettings returns the persistent key-value store, or nil when it cannot
// be opened. Settings are an optional overlay; a broken store must never block
// a command.
func (c *commandContext) openSettings() *settings.Store {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Paths.SettingsDB == "" {
		return nil
	}
	store, err := settings.Open(cfg.Paths.SettingsDB)
	if err != nil {
		return nil
	}
	return store
}

// applySettingsOverrides folds persisted overrides into the loaded config.
// The store's Get/GetInt fall back to the passed value, so a missing store or
// key leaves the config untouched.
func applySettingsOverrides(cfg *config.Config, store *settings.Store) {
	if store == nil {
		return
	}
	cfg.Console.Port = store.GetInt("console.port", cfg.Console.Port)
	cfg.Recording.TickRate = store.GetInt("recording.tick_rate", cfg.Recording.TickRate)
	cfg.Paths.OutputDir = store.Get("paths.output_dir", cfg.Paths.OutputDir)
}

func shouldSkipConfig(annotations map[string]string) bool {
	return annotations["skipConfigLoad"] == "true"
}

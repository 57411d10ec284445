package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConsole(); err != nil {
		return err
	}
	if err := c.validateRecording(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConsole() error {
	if c.Console.Port <= 0 || c.Console.Port > 65535 {
		return fmt.Errorf("console.port must be between 1 and 65535, got %d", c.Console.Port)
	}
	if c.Console.BaseDelayMs < 0 {
		return errors.New("console.base_delay_ms must not be negative")
	}
	if c.Console.DialTimeoutMs <= 0 {
		return errors.New("console.dial_timeout_ms must be positive")
	}
	if c.Console.ReadyRetries <= 0 {
		return errors.New("console.ready_retries must be positive")
	}
	if c.Console.ReadyIntervalMs <= 0 {
		return errors.New("console.ready_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateRecording() error {
	if c.Recording.TickRate <= 0 {
		return fmt.Errorf("recording.tick_rate must be positive, got %d", c.Recording.TickRate)
	}
	if c.Recording.SafetyBufferMs < 0 {
		return errors.New("recording.safety_buffer_ms must not be negative")
	}
	if c.Recording.DemoSettleSeconds < 0 {
		return errors.New("recording.demo_settle_seconds must not be negative")
	}
	if c.Recording.QuitGraceSeconds < 0 {
		return errors.New("recording.quit_grace_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.FFmpegBinary == "" {
		return errors.New("encoder.ffmpeg_binary must be set")
	}
	if c.Encoder.FFprobeBinary == "" {
		return errors.New("encoder.ffprobe_binary must be set")
	}
	if c.Encoder.FPS <= 0 {
		return fmt.Errorf("encoder.fps must be positive, got %d", c.Encoder.FPS)
	}
	if c.Encoder.CRF < 0 || c.Encoder.CRF > 51 {
		return fmt.Errorf("encoder.crf must be between 0 and 51, got %d", c.Encoder.CRF)
	}
	return nil
}

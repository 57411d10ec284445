package config

const (
	defaultOutputDir         = "~/demoreel/exports"
	defaultLogDir            = "~/.local/share/demoreel/logs"
	defaultConsolePort       = 2121
	defaultBaseDelayMs       = 150
	defaultDialTimeoutMs     = 2000
	defaultReadyRetries      = 10
	defaultReadyIntervalMs   = 1000
	defaultResponseDrainMs   = 200
	defaultTickRate          = 64
	defaultSafetyBufferMs    = 1500
	defaultDemoSettleSeconds = 5
	defaultQuitGraceSeconds  = 5
	defaultFrameExtension    = ".tga"
	defaultTakeDirName       = "movie"
	defaultCleanScript       = "recorder_clean"
	defaultRestoreScript     = "recorder_restore"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultFPS               = 60
	defaultVideoCodec        = "libx264"
	defaultCRF               = 18
	defaultEncoderPreset     = "medium"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Console: Console{
			Port:            defaultConsolePort,
			BaseDelayMs:     defaultBaseDelayMs,
			DialTimeoutMs:   defaultDialTimeoutMs,
			ReadyRetries:    defaultReadyRetries,
			ReadyIntervalMs: defaultReadyIntervalMs,
			ResponseDrainMs: defaultResponseDrainMs,
		},
		Recording: Recording{
			TickRate:          defaultTickRate,
			SafetyBufferMs:    defaultSafetyBufferMs,
			DemoSettleSeconds: defaultDemoSettleSeconds,
			QuitGraceSeconds:  defaultQuitGraceSeconds,
			FrameExtension:    defaultFrameExtension,
			TakeDirName:       defaultTakeDirName,
			CleanScript:       defaultCleanScript,
			RestoreScript:     defaultRestoreScript,
			Windowed:          true,
		},
		Encoder: Encoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			FPS:           defaultFPS,
			VideoCodec:    defaultVideoCodec,
			CRF:           defaultCRF,
			Preset:        defaultEncoderPreset,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

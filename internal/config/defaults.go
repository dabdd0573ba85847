package config

const (
	defaultWorkDir            = "~/.local/share/vidscribe/work"
	defaultLogDir             = "~/.local/share/vidscribe/logs"
	defaultCachePath          = "~/.cache/vidscribe/transcripts.db"
	defaultModelSize          = "medium"
	defaultRunner             = "python3"
	defaultDevice             = "cpu"
	defaultComputeType        = "float32"
	defaultLoadTimeoutSeconds = 300
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Whisper: Whisper{
			ModelSize:          defaultModelSize,
			Runner:             defaultRunner,
			Device:             defaultDevice,
			ComputeType:        defaultComputeType,
			LoadTimeoutSeconds: defaultLoadTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Cache: Cache{
			Enabled: true,
			Path:    defaultCachePath,
		},
	}
}

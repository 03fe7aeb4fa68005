package config

const (
	defaultDataDir        = "~/.local/share/logship"
	defaultLogDir         = "~/.local/share/logship/logs"
	defaultMaxLines       = -1
	defaultTransportKind  = "tcp"
	defaultConnectTimeout = 5
	defaultWriteTimeout   = 10
	defaultHistoryEnabled = true
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Shipping: Shipping{
			MaxLines:         defaultMaxLines,
			FailBuildOnError: false,
		},
		Transport: Transport{
			Kind:           defaultTransportKind,
			ConnectTimeout: defaultConnectTimeout,
			WriteTimeout:   defaultWriteTimeout,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

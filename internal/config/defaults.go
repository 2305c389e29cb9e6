package config

const (
	defaultConfigPath          = "~/.config/roadmap/config.toml"
	defaultCachePath           = "~/.local/share/roadmap/progress_cache.db"
	defaultRemoteBaseURL       = "http://127.0.0.1:8085"
	defaultRemoteTimeout       = 10
	defaultRemoteRetryDelayMS  = 2000
	defaultRemoteQueueSize     = 64
	defaultWatcherPollInterval = 30
	defaultServerBind          = "127.0.0.1:8085"
	defaultServerDBPath        = "progress.db"
	defaultPassingScore        = 70
	defaultLogFormat           = "auto"
	defaultLogLevel            = "info"
)

// Default returns a configuration populated with default values.
func Default() Config {
	return Config{
		Cache: Cache{Path: defaultCachePath},
		Remote: Remote{
			BaseURL:        defaultRemoteBaseURL,
			TimeoutSeconds: defaultRemoteTimeout,
			RetryDelayMS:   defaultRemoteRetryDelayMS,
			QueueSize:      defaultRemoteQueueSize,
		},
		Watcher: Watcher{PollIntervalSeconds: defaultWatcherPollInterval},
		Server: Server{
			Bind:         defaultServerBind,
			DBPath:       defaultServerDBPath,
			PassingScore: defaultPassingScore,
		},
		Logging: Logging{Format: defaultLogFormat, Level: defaultLogLevel},
	}
}

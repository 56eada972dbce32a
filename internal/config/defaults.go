package config

// Default returns the built-in configuration values applied before a config
// file is decoded over them.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: "~/gavel/data",
			LogDir:      "~/gavel/logs",
		},
		Archive: Archive{
			UserAgent:      "gavel/1.0 (+public meeting archival)",
			RequestTimeout: 30,
			ProbeTimeout:   8,
		},
		Fetch: Fetch{
			SkipExisting:    true,
			KeepPartial:     false,
			DownloadTimeout: 0,
			StallTimeout:    60,
		},
		Transcode: Transcode{
			Enabled:     true,
			Binary:      "ffmpeg",
			AudioFormat: "mp3",
			Timeout:     1800,
		},
		Workflow: Workflow{
			WorkerCount:        2,
			QueuePollInterval:  5,
			ErrorRetryInterval: 10,
			HeartbeatInterval:  15,
			HeartbeatTimeout:   300,
			ReclaimStale:       false,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

package config

const (
	defaultAPITimeoutSeconds = 10
	defaultYouTubeBaseURL    = "https://www.googleapis.com/youtube/v3"
	defaultLogLevel          = "info"
	defaultConfigPath        = "~/.config/formsync/config.yaml"
	projectConfigName        = "formsync.yaml"
)

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		API: API{
			TimeoutSeconds: defaultAPITimeoutSeconds,
		},
		YouTube: YouTube{
			BaseURL: defaultYouTubeBaseURL,
		},
		Log: Log{
			Level: defaultLogLevel,
		},
	}
}

package config

// Config holds runtime configuration for the server.
type Config struct {
	Port        string
	Monitor     MonitorConfig
	Evidence    EvidenceConfig
	Providers   ProvidersConfig
	Metrics     MetricsConfig
	CatalogPath string
}

// MonitorConfig controls the game monitor loops.
type MonitorConfig struct {
	PollInterval       Duration
	CheckpointInterval Duration
	ReplayCapacity     int
	CheckpointPath     string
	FetchTimeout       Duration
}

// EvidenceConfig controls the evidence store location.
type EvidenceConfig struct {
	BasePath string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port: envOrDefault(envPort, defaultPort),
		Monitor: MonitorConfig{
			PollInterval:       durationEnvOrDefault(envPollInterval, defaultPollInterval),
			CheckpointInterval: durationEnvOrDefault(envCheckpointInterval, defaultCheckpointInterval),
			ReplayCapacity:     intEnvOrDefault(envReplayCapacity, defaultReplayCapacity),
			CheckpointPath:     envOrDefault(envCheckpointPath, defaultCheckpointPath),
			FetchTimeout:       durationEnvOrDefault(envFetchTimeout, defaultFetchTimeout),
		},
		Evidence: EvidenceConfig{
			BasePath: envOrDefault(envEvidencePath, defaultEvidencePath),
		},
		Providers:   loadProviders(),
		Metrics:     loadMetrics(),
		CatalogPath: envOrDefault(envCatalogPath, ""),
	}
}

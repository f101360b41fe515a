package config

import "time"

const (
	envPort               = "PORT"
	envPollInterval       = "POLL_INTERVAL"
	envCheckpointInterval = "CHECKPOINT_INTERVAL"
	envReplayCapacity     = "REPLAY_CAPACITY"
	envCheckpointPath     = "CHECKPOINT_PATH"
	envEvidencePath       = "EVIDENCE_PATH"
	envCatalogPath        = "CATALOG_PATH"
	envFetchTimeout       = "FETCH_TIMEOUT"
	envMetricsPort        = "METRICS_PORT"
	envMetricsOn          = "METRICS_ENABLED"
	envOtelEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService        = "OTEL_SERVICE_NAME"
	envOtelInsecure       = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort = "4000"
	// Conservative default poll interval: three upstreams are hit per cycle
	// per monitored game, and quotas are per provider.
	defaultPollInterval       = 30 * Duration(time.Second)
	defaultCheckpointInterval = 2 * Duration(time.Minute)
	defaultReplayCapacity     = 256
	defaultCheckpointPath     = "data/checkpoint.json"
	defaultEvidencePath       = "data/evidence"
	defaultFetchTimeout       = 10 * Duration(time.Second)
	defaultMetricsPort        = "9090"
	defaultServiceName        = "game-trigger-service"
)

package config

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"TASKBOARD_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME"`
}

package config

type TelemetryConfig struct {
	ServiceName  string
	CollectorURL string
}

func LoadTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		ServiceName:  getEnvString("OTEL_SERVICE_NAME", "job-matcher"),
		CollectorURL: getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func (c TelemetryConfig) Enabled() bool {
	return c.CollectorURL != ""
}

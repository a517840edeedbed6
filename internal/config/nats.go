package config

import "time"

type NATSConfig struct {
	URL         string
	ConnTimeout time.Duration
	Subject     string
	Queue       string
}

func LoadNATSConfig() NATSConfig {
	return NATSConfig{
		URL:         getEnvString("NATS_URL", ""),
		ConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),
		Subject:     getEnvString("NATS_JOB_EVENTS_SUBJECT", "jobs.updated"),
		Queue:       getEnvString("NATS_QUEUE", "job-matcher"),
	}
}

func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

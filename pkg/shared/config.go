package shared

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// KafkaConfig holds broker and topic details.
type KafkaConfig struct {
	Brokers      string `envconfig:"KAFKA_BROKER" default:"localhost:9092"`
	GroupID      string `envconfig:"KAFKA_GROUP" default:"options-tracker"`
	InTopic      string `envconfig:"IN_TOPIC"`
	OutTopic     string `envconfig:"OUT_TOPIC"`
	ProducerAcks string `envconfig:"KAFKA_ACKS" default:"all"`
	LingerMS     int    `envconfig:"KAFKA_LINGER_MS" default:"5"`
}

func (k KafkaConfig) BrokerList() []string {
	parts := strings.Split(k.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"localhost:9092"}
	}
	return out
}

// PostgresConfig holds DB connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	Database string `envconfig:"POSTGRES_DB" default:"options"`
	User     string `envconfig:"POSTGRES_USER" default:"tracker"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"tracker"`
	PoolMax  int    `envconfig:"PG_POOL_MAX" default:"8"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Port int `envconfig:"METRICS_PORT" default:"9000"`
}

// PolygonConfig holds the market-data API details.
type PolygonConfig struct {
	APIKey     string `envconfig:"POLYGON_API_KEY"`
	BaseURL    string `envconfig:"POLYGON_BASE_URL" default:"https://api.polygon.io"`
	Underlying string `envconfig:"UNDERLYING" default:"SPY"`
}

// SMTPConfig controls trade email alerts. Disabled means log-only.
type SMTPConfig struct {
	Enabled  bool   `envconfig:"EMAIL_ALERTS_ENABLED" default:"false"`
	Host     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Sender   string `envconfig:"SENDER_EMAIL"`
	Password string `envconfig:"SENDER_PASSWORD"`
	To       string `envconfig:"TO_EMAILS"`
}

func (s SMTPConfig) Recipients() []string {
	parts := strings.Split(s.To, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load fills the given struct from environment.
func Load[T any](prefix string) (T, error) {
	var cfg T
	err := envconfig.Process(prefix, &cfg)
	return cfg, err
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Events    EventsConfig    `mapstructure:"events"`
	Resume    ResumeConfig    `mapstructure:"resume"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout   int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout    int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig is fixed at startup and shared by every connection the
// provider opens.
type DatabaseConfig struct {
	URI                    string        `mapstructure:"uri"`
	MaxPoolSize            int           `mapstructure:"max_pool_size"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout"`
	SocketTimeout          time.Duration `mapstructure:"socket_timeout"`
	ForceIPv4              bool          `mapstructure:"force_ipv4"`
}

type EventsConfig struct {
	Driver string      `mapstructure:"driver"`
	NATS   NATSConfig  `mapstructure:"nats"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ResumeConfig struct {
	Storage string         `mapstructure:"storage"`
	S3      ResumeS3Config `mapstructure:"s3"`
}

type ResumeS3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	Prefix       string `mapstructure:"prefix"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

const (
	EventsDriverNone  = "none"
	EventsDriverNATS  = "nats"
	EventsDriverKafka = "kafka"

	ResumeStorageInline = "inline"
	ResumeStorageS3     = "s3"
)

func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	setDefaults(v, env)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // Kubernetes mount
	v.AddConfigPath("./configs")  // Docker runtime / repo root
	v.AddConfigPath("../configs") // IDE from cmd/

	// Config file is optional - continue with ENV variables
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables take precedence over the config file
	v.AutomaticEnv()

	_ = v.BindEnv("database.uri", "DATABASE_URL")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("events.driver", "EVENTS_DRIVER")
	_ = v.BindEnv("events.nats.url", "NATS_URL")
	_ = v.BindEnv("resume.storage", "RESUME_STORAGE")
	_ = v.BindEnv("resume.s3.bucket", "RESUME_BUCKET")
	_ = v.BindEnv("telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("env", env)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.max_upload_bytes", 8<<20)

	v.SetDefault("database.max_pool_size", 10)
	v.SetDefault("database.server_selection_timeout", 30*time.Second)
	v.SetDefault("database.socket_timeout", 45*time.Second)
	v.SetDefault("database.force_ipv4", true)

	v.SetDefault("events.driver", EventsDriverNone)
	v.SetDefault("events.nats.subject_prefix", "site.submissions")
	v.SetDefault("events.kafka.topic", "site.submissions")

	v.SetDefault("resume.storage", ResumeStorageInline)
	v.SetDefault("resume.s3.prefix", "resumes/")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "otel-collector.infra.svc.cluster.local:4317")
}

// validate rejects option values that would otherwise be silently ignored.
// A missing database URI is not checked here: the connection provider owns
// that failure.
func (c *Config) validate() error {
	switch c.Events.Driver {
	case EventsDriverNone, EventsDriverNATS, EventsDriverKafka:
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}

	switch c.Resume.Storage {
	case ResumeStorageInline:
	case ResumeStorageS3:
		if c.Resume.S3.Bucket == "" {
			return fmt.Errorf("resume.s3.bucket is required when resume.storage is %q", ResumeStorageS3)
		}
	default:
		return fmt.Errorf("unknown resume storage %q", c.Resume.Storage)
	}

	return nil
}

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Cassandra CassandraConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            string
	ShutdownTimeout time.Duration
}

type CassandraConfig struct {
	Hosts          []string
	Port           int
	Keyspace       string
	Consistency    string
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads config.yaml from the usual locations and overlays
// environment variables (CASSANDRA_KEYSPACE, SERVER_PORT, ...).
// A missing config file is not an error; defaults cover every key.
func Load() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app/config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            viper.GetString("server.host"),
			Port:            viper.GetString("server.port"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		},
		Cassandra: CassandraConfig{
			Hosts:          viper.GetStringSlice("cassandra.hosts"),
			Port:           viper.GetInt("cassandra.port"),
			Keyspace:       viper.GetString("cassandra.keyspace"),
			Consistency:    viper.GetString("cassandra.consistency"),
			Timeout:        viper.GetDuration("cassandra.timeout"),
			ConnectTimeout: viper.GetDuration("cassandra.connect_timeout"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
		},
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(cfg.Cassandra.Hosts) == 0 {
		cfg.Cassandra.Hosts = []string{"localhost"}
	}
	if cfg.Cassandra.Port == 0 {
		cfg.Cassandra.Port = 9042
	}
	if cfg.Cassandra.Keyspace == "" {
		cfg.Cassandra.Keyspace = "messenger"
	}
	if cfg.Cassandra.Consistency == "" {
		cfg.Cassandra.Consistency = "quorum"
	}
	if cfg.Cassandra.Timeout == 0 {
		cfg.Cassandra.Timeout = 5 * time.Second
	}
	if cfg.Cassandra.ConnectTimeout == 0 {
		cfg.Cassandra.ConnectTimeout = 10 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

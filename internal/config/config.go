package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Store    StoreConfig    `mapstructure:"store"`
	Fraud    FraudConfig    `mapstructure:"fraud"`
	Alert    AlertConfig    `mapstructure:"alert"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GraphConfig describes connectivity to the graph database used by the graph
// store backend.
type GraphConfig struct {
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"` // text|json
	IncludeCaller bool   `mapstructure:"include_caller"`
}

// Store backends.
const (
	StoreMemory   = "memory"
	StoreGraph    = "graph"
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
)

// StoreConfig selects and configures the transaction store.
type StoreConfig struct {
	Backend           string `mapstructure:"backend"`
	SQLitePath        string `mapstructure:"sqlite_path"`
	DynamoTable       string `mapstructure:"dynamo_table"`
	DynamoRegion      string `mapstructure:"dynamo_region"`
	DynamoEndpoint    string `mapstructure:"dynamo_endpoint"`
	DynamoCreateTable bool   `mapstructure:"dynamo_create_table"`
}

// Fraud checker modes.
const (
	FraudRandom   = "random"
	FraudExternal = "external"
)

// FraudConfig configures the fraud checker.
type FraudConfig struct {
	Mode     string        `mapstructure:"mode"`
	Rate     float64       `mapstructure:"rate"`
	Seed     int64         `mapstructure:"seed"`
	MinDelay time.Duration `mapstructure:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
	URL      string        `mapstructure:"url"`
}

// Alert sender modes.
const (
	AlertLog     = "log"
	AlertHTTP    = "http"
	AlertAMQP    = "amqp"
	AlertDiscord = "discord"
)

// AlertConfig configures the fraud alert sender.
type AlertConfig struct {
	Mode             string   `mapstructure:"mode"`
	Types            []string `mapstructure:"types"`
	URL              string   `mapstructure:"url"`
	AMQPURL          string   `mapstructure:"amqp_url"`
	Exchange         string   `mapstructure:"exchange"`
	RoutingKey       string   `mapstructure:"routing_key"`
	DiscordToken     string   `mapstructure:"discord_token"`
	DiscordChannelID string   `mapstructure:"discord_channel_id"`
}

// PaymentConfig configures the payment processors.
type PaymentConfig struct {
	MinDelay       time.Duration `mapstructure:"min_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`
	GatewayURL     string        `mapstructure:"gateway_url"`
	GatewayMethods []string      `mapstructure:"gateway_methods"`
}

// WorkflowConfig tunes the transaction workflow.
type WorkflowConfig struct {
	PersistFraudulent bool   `mapstructure:"persist_fraudulent"`
	Validation        string `mapstructure:"validation"` // accept|required
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultSQLitePath       = "transactions.db"
	defaultDynamoTable      = "Transactions"
	defaultFraudRate        = 0.5
	defaultFraudMinDelay    = 100 * time.Millisecond
	defaultFraudMaxDelay    = time.Second
	defaultPaymentMinDelay  = 50 * time.Millisecond
	defaultPaymentMaxDelay  = 500 * time.Millisecond
	defaultAlertExchange    = "order-alerts"
	defaultAlertRoutingKey  = "alerts.fraud"
)

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		Graph: GraphConfig{MaxConnections: defaultGraphMaxSessions},
		Store: StoreConfig{
			Backend:     StoreMemory,
			SQLitePath:  defaultSQLitePath,
			DynamoTable: defaultDynamoTable,
		},
		Fraud: FraudConfig{
			Mode:     FraudRandom,
			Rate:     defaultFraudRate,
			MinDelay: defaultFraudMinDelay,
			MaxDelay: defaultFraudMaxDelay,
		},
		Alert: AlertConfig{
			Mode:       AlertLog,
			Types:      []string{"sms", "email"},
			Exchange:   defaultAlertExchange,
			RoutingKey: defaultAlertRoutingKey,
		},
		Payment: PaymentConfig{
			MinDelay: defaultPaymentMinDelay,
			MaxDelay: defaultPaymentMaxDelay,
		},
		Workflow: WorkflowConfig{Validation: "accept"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTP.Host = valueOrDefault("SERVER_HOST", cfg.HTTP.Host)
	port, err := parsePort("SERVER_PORT", cfg.HTTP.Port)
	if err != nil {
		return err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"FRAUD_MIN_DELAY", &cfg.Fraud.MinDelay},
		{"FRAUD_MAX_DELAY", &cfg.Fraud.MaxDelay},
		{"PAYMENT_MIN_DELAY", &cfg.Payment.MinDelay},
		{"PAYMENT_MAX_DELAY", &cfg.Payment.MaxDelay},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.target); err != nil {
			return err
		}
	}

	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)

	cfg.Graph.URI = valueOrDefault("GRAPH_URI", cfg.Graph.URI)
	cfg.Graph.Database = valueOrDefault("GRAPH_DATABASE", cfg.Graph.Database)
	cfg.Graph.Username = valueOrDefault("GRAPH_USERNAME", cfg.Graph.Username)
	cfg.Graph.Password = valueOrDefault("GRAPH_PASSWORD", cfg.Graph.Password)
	cfg.Graph.MaxConnections = parseIntWithDefault("GRAPH_MAX_CONNECTIONS", cfg.Graph.MaxConnections)

	cfg.Store.Backend = strings.ToLower(valueOrDefault("STORE_BACKEND", cfg.Store.Backend))
	cfg.Store.SQLitePath = valueOrDefault("STORE_SQLITE_PATH", cfg.Store.SQLitePath)
	cfg.Store.DynamoTable = valueOrDefault("STORE_DYNAMO_TABLE", cfg.Store.DynamoTable)
	cfg.Store.DynamoRegion = valueOrDefault("STORE_DYNAMO_REGION", cfg.Store.DynamoRegion)
	cfg.Store.DynamoEndpoint = valueOrDefault("STORE_DYNAMO_ENDPOINT", cfg.Store.DynamoEndpoint)
	cfg.Store.DynamoCreateTable = parseBoolWithDefault("STORE_DYNAMO_CREATE_TABLE", cfg.Store.DynamoCreateTable)

	cfg.Fraud.Mode = strings.ToLower(valueOrDefault("FRAUD_MODE", cfg.Fraud.Mode))
	cfg.Fraud.URL = valueOrDefault("FRAUD_URL", cfg.Fraud.URL)
	if v := os.Getenv("FRAUD_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FRAUD_RATE: %w", err)
		}
		cfg.Fraud.Rate = rate
	}
	if v := os.Getenv("FRAUD_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid FRAUD_SEED: %w", err)
		}
		cfg.Fraud.Seed = seed
	}

	cfg.Alert.Mode = strings.ToLower(valueOrDefault("ALERT_MODE", cfg.Alert.Mode))
	cfg.Alert.Types = csvOrDefault("ALERT_TYPES", cfg.Alert.Types)
	cfg.Alert.URL = valueOrDefault("ALERT_URL", cfg.Alert.URL)
	cfg.Alert.AMQPURL = valueOrDefault("ALERT_AMQP_URL", cfg.Alert.AMQPURL)
	cfg.Alert.Exchange = valueOrDefault("ALERT_EXCHANGE", cfg.Alert.Exchange)
	cfg.Alert.RoutingKey = valueOrDefault("ALERT_ROUTING_KEY", cfg.Alert.RoutingKey)
	cfg.Alert.DiscordToken = valueOrDefault("ALERT_DISCORD_TOKEN", cfg.Alert.DiscordToken)
	cfg.Alert.DiscordChannelID = valueOrDefault("ALERT_DISCORD_CHANNEL_ID", cfg.Alert.DiscordChannelID)

	cfg.Payment.GatewayURL = valueOrDefault("PAYMENT_GATEWAY_URL", cfg.Payment.GatewayURL)
	cfg.Payment.GatewayMethods = csvOrDefault("PAYMENT_GATEWAY_METHODS", cfg.Payment.GatewayMethods)

	cfg.Workflow.PersistFraudulent = parseBoolWithDefault("WORKFLOW_PERSIST_FRAUDULENT", cfg.Workflow.PersistFraudulent)
	cfg.Workflow.Validation = strings.ToLower(valueOrDefault("WORKFLOW_VALIDATION", cfg.Workflow.Validation))
	return nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreSQLite, StoreDynamoDB:
	case StoreGraph:
		if c.Graph.URI == "" {
			return fmt.Errorf("store backend %q requires GRAPH_URI", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Fraud.Mode {
	case FraudRandom:
		if c.Fraud.Rate <= 0 || c.Fraud.Rate > 1 {
			return fmt.Errorf("fraud rate %v is outside (0,1]", c.Fraud.Rate)
		}
	case FraudExternal:
		if c.Fraud.URL == "" {
			return fmt.Errorf("fraud mode %q requires FRAUD_URL", c.Fraud.Mode)
		}
	default:
		return fmt.Errorf("unknown fraud mode %q", c.Fraud.Mode)
	}

	switch c.Alert.Mode {
	case AlertLog:
	case AlertHTTP:
		if c.Alert.URL == "" {
			return fmt.Errorf("alert mode %q requires ALERT_URL", c.Alert.Mode)
		}
	case AlertAMQP:
		if c.Alert.AMQPURL == "" {
			return fmt.Errorf("alert mode %q requires ALERT_AMQP_URL", c.Alert.Mode)
		}
	case AlertDiscord:
		if c.Alert.DiscordToken == "" || c.Alert.DiscordChannelID == "" {
			return fmt.Errorf("alert mode %q requires ALERT_DISCORD_TOKEN and ALERT_DISCORD_CHANNEL_ID", c.Alert.Mode)
		}
	default:
		return fmt.Errorf("unknown alert mode %q", c.Alert.Mode)
	}

	if len(c.Payment.GatewayMethods) > 0 && c.Payment.GatewayURL == "" {
		return fmt.Errorf("PAYMENT_GATEWAY_METHODS requires PAYMENT_GATEWAY_URL")
	}

	switch c.Workflow.Validation {
	case "accept", "required":
	default:
		return fmt.Errorf("unknown validation mode %q", c.Workflow.Validation)
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func csvOrDefault(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, target *time.Duration) error {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*target = d
	}
	return nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

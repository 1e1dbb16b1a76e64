package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type SlotConfig struct {
	Env                string `yaml:"env" env:"SLOT_ENV" env-default:"local"`
	GRPCServer         `yaml:"grpc_server"`
	HTTPServer         `yaml:"http_server"`
	SlotDB             `yaml:"slot_db"`
	LogConfig          `yaml:"log_config"`
	KafkaService       `yaml:"kafka-service"`
	PaymentService     `yaml:"payment-service"`
	AccessConfig       `yaml:"access"`
	NotificationConfig `yaml:"notifications"`
	DisputeConfig      `yaml:"disputes"`
	SagaConfig         `yaml:"saga"`
	WebhookConfig      `yaml:"webhook"`
	AuthConfig         `yaml:"auth"`
}

type GRPCServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"50051"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type SlotDB struct {
	Dsn            string `yaml:"dsn" env:"SLOT_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
	LogOutput string `yaml:"log_output" env-default:"stdout"`
}

type KafkaService struct {
	Host              string `yaml:"host" env-default:"localhost"`
	Port              string `yaml:"port" env-default:"9092"`
	Username          string `yaml:"username" env:"KAFKA_USERNAME"`
	Password          string `yaml:"password" env:"KAFKA_PASSWORD"`
	Mechanism         string `yaml:"mechanism"`
	TLSEnabled        bool   `yaml:"tls_enabled"`
	PaymentTopic      string `yaml:"payment_topic" env-default:"payment-events"`
	PaymentGroupID    string `yaml:"payment_group_id" env-default:"slot-service"`
	NotificationTopic string `yaml:"notification_topic" env-default:"notification-events"`
	PurchaseTopic     string `yaml:"purchase_topic" env-default:"purchase-events"`
	DisputeTopic      string `yaml:"dispute_topic" env-default:"dispute-events"`
}

type PaymentService struct {
	// Mode is "simulated" or "http".
	Mode               string  `yaml:"mode" env-default:"simulated"`
	Address            string  `yaml:"address"`
	PlatformFeePercent float64 `yaml:"platform_fee_percent" env-default:"10"`
}

type AccessConfig struct {
	BaseURL        string        `yaml:"base_url" env-default:"http://localhost:8080"`
	TokenSalt      string        `yaml:"token_salt" env:"ACCESS_TOKEN_SALT"`
	TokenTTL       time.Duration `yaml:"token_ttl" env-default:"24h"`
	PurgeInterval  time.Duration `yaml:"purge_interval" env-default:"1h"`
	PurgeRetention time.Duration `yaml:"purge_retention" env-default:"168h"`
}

type NotificationConfig struct {
	DedupWindow          time.Duration `yaml:"dedup_window" env-default:"30m"`
	SimilarityThreshold  float64       `yaml:"similarity_threshold" env-default:"0.8"`
	ExistenceTTL         time.Duration `yaml:"existence_ttl" env-default:"5m"`
	HighPriorityAttempts uint          `yaml:"high_priority_attempts" env-default:"3"`
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval" env-default:"200ms"`
}

type DisputeConfig struct {
	ResolutionPeriod time.Duration `yaml:"resolution_period" env-default:"72h"`
}

type SagaConfig struct {
	// LeaseTTL bounds how long a crashed run blocks retries of its purchase.
	LeaseTTL time.Duration `yaml:"lease_ttl" env-default:"5m"`
}

type WebhookConfig struct {
	Secret string `yaml:"secret" env:"PAYMENT_WEBHOOK_SECRET"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	// AdminToken guards /api/v1/admin. Admin routes are not mounted when empty.
	AdminToken string `yaml:"admin_token" env:"AUTH_ADMIN_TOKEN"`
}

// Load reads the YAML file at path, applying env overrides and defaults.
func Load(path string) (*SlotConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg SlotConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *SlotConfig {
	// Processing env config variable and file
	configPath := os.Getenv("SLOT_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("SLOT_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%v\n", err)
	}

	return cfg
}

func (c *SlotConfig) validate() error {
	if c.AccessConfig.TokenSalt == "" {
		return fmt.Errorf("access.token_salt is required")
	}
	if c.WebhookConfig.Secret == "" {
		return fmt.Errorf("webhook.secret is required")
	}
	if c.AuthConfig.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.PaymentService.Mode == "http" && c.PaymentService.Address == "" {
		return fmt.Errorf("payment-service.address is required in http mode")
	}
	if c.PaymentService.PlatformFeePercent < 0 || c.PaymentService.PlatformFeePercent > 100 {
		return fmt.Errorf("payment-service.platform_fee_percent must be within [0, 100]")
	}
	return nil
}

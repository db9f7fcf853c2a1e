package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Payment  PaymentConfig  `yaml:"payment"`
	Admin    AdminConfig    `yaml:"admin"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
	BaseURL string `yaml:"base_url"`
}

type StorageConfig struct {
	// Backend selects the store implementation: "file" or "postgres".
	Backend  string         `yaml:"backend"`
	FilePath string         `yaml:"file_path"`
	Database DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ReservationsTopic  string   `yaml:"reservations_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type PaymentConfig struct {
	// Provider selects the active checkout provider: "stripe" or "clip".
	Provider     string `yaml:"provider"`
	StripeAPIKey string `yaml:"stripe_api_key"`
	ClipBaseURL  string `yaml:"clip_base_url"`
	ClipAPIKey   string `yaml:"clip_api_key"`
}

type AdminConfig struct {
	Password string `yaml:"password"`
}

type WhatsAppConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// LoadConfig reads the YAML file at path, then lets environment variables
// (optionally supplied through a .env file) override the secrets so they
// never have to live in the config file.
func LoadConfig(path string) (*Config, error) {
	godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	overrideFromEnv(&cfg.Payment.StripeAPIKey, "STRIPE_API_KEY")
	overrideFromEnv(&cfg.Payment.ClipAPIKey, "CLIP_API_KEY")
	overrideFromEnv(&cfg.Admin.Password, "ADMIN_PASSWORD")
	overrideFromEnv(&cfg.WhatsApp.Token, "WHATSAPP_TOKEN")
	overrideFromEnv(&cfg.Storage.Database.Password, "DB_PASSWORD")

	return &cfg, nil
}

func overrideFromEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Airwallex AirwallexConfig `mapstructure:"airwallex"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Alipay    AlipayConfig    `mapstructure:"alipay"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	VPN       VPNConfig       `mapstructure:"vpn"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	BaseURL      string        `mapstructure:"base_url"` // public URL used in return/cancel/webhook links
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BillingConfig holds plan catalog behavior configuration.
type BillingConfig struct {
	// StrictPlanLookup controls what happens when an unknown plan id is
	// requested: true returns an error, false substitutes DefaultPlanID
	// (the storefront behavior) and logs the substitution.
	StrictPlanLookup bool          `mapstructure:"strict_plan_lookup"`
	DefaultPlanID    string        `mapstructure:"default_plan_id"`
	OrderExpiry      time.Duration `mapstructure:"order_expiry"`
}

// AirwallexConfig holds Airwallex gateway configuration.
type AirwallexConfig struct {
	ClientID      string        `mapstructure:"client_id"`
	APIKey        string        `mapstructure:"api_key"`
	APIURL        string        `mapstructure:"api_url"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// AlipayConfig holds Alipay configuration.
type AlipayConfig struct {
	AppID           string `mapstructure:"app_id"`
	PrivateKey      string `mapstructure:"private_key"`
	AlipayPublicKey string `mapstructure:"alipay_public_key"`
	IsProd          bool   `mapstructure:"is_prod"`
	NotifyURL       string `mapstructure:"notify_url"`
	ReturnURL       string `mapstructure:"return_url"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"`
	Issuer            string        `mapstructure:"issuer"`

	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string `mapstructure:"google_redirect_url"`
}

// StorageConfig holds object storage configuration for generated VPN configs.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
}

// VPNConfig holds VPN provisioning configuration.
type VPNConfig struct {
	SubscriptionBaseURL string        `mapstructure:"subscription_base_url"`
	Servers             []string      `mapstructure:"servers"`
	ConfigURLExpiry     time.Duration `mapstructure:"config_url_expiry"`
	DevicesLimit        int           `mapstructure:"devices_limit"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/mistcurrent")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	v.SetEnvPrefix("MISTCURRENT")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if password := os.Getenv("MISTCURRENT_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("MISTCURRENT_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if secret := os.Getenv("MISTCURRENT_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if id := os.Getenv("AIRWALLEX_CLIENT_ID"); id != "" {
		cfg.Airwallex.ClientID = id
	}
	if key := os.Getenv("AIRWALLEX_SECRET_KEY"); key != "" {
		cfg.Airwallex.APIKey = key
	}
	if secret := os.Getenv("AIRWALLEX_WEBHOOK_SECRET"); secret != "" {
		cfg.Airwallex.WebhookSecret = secret
	}
	if key := os.Getenv("STRIPE_API_KEY"); key != "" {
		cfg.Stripe.APIKey = key
	}
	if key := os.Getenv("MISTCURRENT_STORAGE_SECRET_KEY"); key != "" {
		cfg.Storage.SecretAccessKey = key
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "mistcurrent")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Billing defaults
	v.SetDefault("billing.strict_plan_lookup", false)
	v.SetDefault("billing.default_plan_id", "2year")
	v.SetDefault("billing.order_expiry", 30*time.Minute)

	// Airwallex defaults (demo environment)
	v.SetDefault("airwallex.api_url", "https://api-demo.airwallex.com/api/v1")
	v.SetDefault("airwallex.timeout", 30*time.Second)

	// Auth defaults
	v.SetDefault("auth.access_token_expiry", 24*time.Hour)
	v.SetDefault("auth.issuer", "mistcurrent")

	// VPN defaults
	v.SetDefault("vpn.subscription_base_url", "https://vpn.mistcurrent.com")
	v.SetDefault("vpn.servers", []string{
		"us-west-1.mistcurrent.com",
		"us-east-1.mistcurrent.com",
		"uk-london-1.mistcurrent.com",
		"jp-tokyo-1.mistcurrent.com",
		"sg-singapore-1.mistcurrent.com",
	})
	v.SetDefault("vpn.config_url_expiry", 15*time.Minute)
	v.SetDefault("vpn.devices_limit", 5)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

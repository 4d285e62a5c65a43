package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Gateway struct {
		Enabled          bool   `mapstructure:"enabled"`
		Provider         string `mapstructure:"provider"`
		KeyID            string `mapstructure:"key_id"`
		KeySecret        string `mapstructure:"key_secret"`
		WebhookSecret    string `mapstructure:"webhook_secret"`
		Currency         string `mapstructure:"currency"`
		SkipVerification bool   `mapstructure:"skip_verification"`
	} `mapstructure:"gateway"`

	SMS struct {
		APIKey   string `mapstructure:"api_key"`
		Route    string `mapstructure:"route"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`

	WhatsApp struct {
		APIKey       string `mapstructure:"api_key"`
		CampaignName string `mapstructure:"campaign_name"`
	} `mapstructure:"whatsapp"`

	Escalation struct {
		SchedulerEnabled bool     `mapstructure:"scheduler_enabled"`
		RunHour          int      `mapstructure:"run_hour"`
		Tenants          []string `mapstructure:"tenants"`
	} `mapstructure:"escalation"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "fees-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "fees_db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("gateway.provider", "razorpay")
	v.SetDefault("gateway.currency", "INR")
	v.SetDefault("sms.route", "q")
	v.SetDefault("whatsapp.campaign_name", "fee_reminder")
	v.SetDefault("escalation.run_hour", 9)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not found in environment or config")
		}
	}

	// Gateway and messaging credentials come from the environment so they
	// never live in a checked-in config file
	if keyID := os.Getenv("RAZORPAY_KEY_ID"); keyID != "" {
		cfg.Gateway.KeyID = keyID
	}
	if keySecret := os.Getenv("RAZORPAY_KEY_SECRET"); keySecret != "" {
		cfg.Gateway.KeySecret = keySecret
	}
	if webhookSecret := os.Getenv("RAZORPAY_WEBHOOK_SECRET"); webhookSecret != "" {
		cfg.Gateway.WebhookSecret = webhookSecret
	}
	if apiKey := os.Getenv("FAST2SMS_API_KEY"); apiKey != "" {
		cfg.SMS.APIKey = apiKey
	}
	if apiKey := os.Getenv("AISENSY_API_KEY"); apiKey != "" {
		cfg.WhatsApp.APIKey = apiKey
	}

	return &cfg
}

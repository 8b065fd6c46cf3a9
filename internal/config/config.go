package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv   string
	LogLevel string

	ServerPort     int
	AllowedOrigins []string

	DBDriver    string
	DatabaseURL string

	JWTSecret []byte
	JWTTTL    time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisAddr     string
	RedisPassword string

	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal

	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("notice: cannot read .env: %v", err)
	}

	return Config{
		AppEnv:   EnvDefault("APP_ENV", "development"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		ServerPort:     EnvIntDefault("SERVER_PORT", 8080),
		AllowedOrigins: CSV(EnvDefault("ALLOWED_ORIGINS", "*")),

		DBDriver:    EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTTTL:    EnvDurationDefault("JWT_TTL", 24*time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		TaxRate:               EnvDecimalDefault("TAX_RATE", decimal.RequireFromString("0.03")),
		ShippingFee:           EnvDecimalDefault("SHIPPING_FEE", decimal.NewFromInt(50)),
		FreeShippingThreshold: EnvDecimalDefault("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(1000)),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

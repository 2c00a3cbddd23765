package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ChapaConfig holds settings for the Chapa payment gateway.
type ChapaConfig struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	ReturnURL   string
	Timeout     time.Duration
}

// Load initializes a viper instance with the given env prefix. Values come
// from the environment, with an optional .env file for local development.
func Load(prefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// A missing .env file is fine; the environment is authoritative.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !strings.Contains(err.Error(), "no such file") {
				return nil, err
			}
		}
	}

	return v, nil
}

// GetServicePort returns the listen address for the named port variable,
// defaulting to :8080.
func GetServicePort(v *viper.Viper, key string) string {
	v.SetDefault(key, "8080")
	port := v.GetString(key)
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

// GetAppEnv returns the application environment, defaulting to development.
func GetAppEnv(v *viper.Viper) string {
	v.SetDefault("APP_ENV", "development")
	return v.GetString("APP_ENV")
}

// LoadDatabaseConfig reads database settings. dbNameKey names the variable
// holding the database name so services can share the rest of the settings.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")

	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

// LoadJWTConfig reads token signing settings.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "168h")

	return JWTConfig{
		Secret:        v.GetString("JWT_SECRET"),
		AccessExpiry:  v.GetDuration("JWT_ACCESS_EXPIRY"),
		RefreshExpiry: v.GetDuration("JWT_REFRESH_EXPIRY"),
	}
}

// LoadKafkaConfig reads broker settings.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "addisrides.")

	return KafkaConfig{
		Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
	}
}

// LoadChapaConfig reads Chapa gateway settings. The timeout bounds every
// outbound gateway call; a timed-out call is treated as a failure.
func LoadChapaConfig(v *viper.Viper) ChapaConfig {
	v.SetDefault("CHAPA_BASE_URL", "https://api.chapa.co/v1")
	v.SetDefault("CHAPA_TIMEOUT", "15s")

	return ChapaConfig{
		BaseURL:     v.GetString("CHAPA_BASE_URL"),
		SecretKey:   v.GetString("CHAPA_SECRET_KEY"),
		CallbackURL: v.GetString("CHAPA_CALLBACK_URL"),
		ReturnURL:   v.GetString("CHAPA_RETURN_URL"),
		Timeout:     v.GetDuration("CHAPA_TIMEOUT"),
	}
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverREST     = "rest"
	StoreDriverMemory   = "memory"
)

// Config is the application configuration loaded from the environment.
type Config struct {
	ServerAddress  string
	StoreDriver    string
	PostgresConfig PostgresConfig
	RESTConfig     RESTConfig
	RedisConfig    RedisConfig
	MQTTConfig     MQTTConfig
	MotelConfig    MotelConfig
	LogConfig      LogConfig
}

// PostgresConfig holds the direct database connection settings.
type PostgresConfig struct {
	DSN          string
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
}

// RESTConfig identifies a PostgREST-compatible store endpoint and its service credential.
type RESTConfig struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

// RedisConfig holds the settings-cache connection.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Username string
	Password string
	DB       int
	PoolSize int
	CacheTTL time.Duration
}

type MQTTConfig struct {
	Enabled     bool
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// MotelConfig holds business constants that are fixed for the life of the process.
type MotelConfig struct {
	Timezone         string
	DefaultAdminCode string
	TaxiFare         int64
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() *Config {
	postgresConfig := PostgresConfig{
		DSN:          getEnv("POSTGRES_DSN", ""),
		Host:         getEnv("POSTGRES_HOST", "localhost"),
		Port:         getEnv("POSTGRES_PORT", "5432"),
		User:         getEnv("POSTGRES_USER", "postgres"),
		Password:     getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:       getEnv("POSTGRES_DB", "motel"),
		SSLMode:      getEnv("POSTGRES_SSLMODE", "disable"),
		MaxIdleConns: getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 10),
		MaxOpenConns: getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 30),
	}

	restConfig := RESTConfig{
		URL:        strings.TrimRight(getEnv("STORE_URL", ""), "/"),
		ServiceKey: getEnv("STORE_SERVICE_KEY", ""),
		Timeout:    time.Duration(getEnvAsInt("STORE_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	redisConfig := RedisConfig{
		Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Username: getEnv("REDIS_USERNAME", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
		PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
		CacheTTL: time.Duration(getEnvAsInt("SETTINGS_CACHE_TTL_SECONDS", 60)) * time.Second,
	}

	mqttConfig := MQTTConfig{
		Enabled:     getEnvAsBool("MQTT_ENABLED", false),
		BrokerURL:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		ClientID:    getEnv("MQTT_CLIENT_ID", "motel-service"),
		Username:    getEnv("MQTT_USERNAME", ""),
		Password:    getEnv("MQTT_PASSWORD", ""),
		TopicPrefix: strings.TrimRight(getEnv("MQTT_TOPIC_PREFIX", "motel"), "/"),
	}

	motelConfig := MotelConfig{
		Timezone:         getEnv("MOTEL_TIMEZONE", "America/Bogota"),
		DefaultAdminCode: getEnv("DEFAULT_ADMIN_CODE", "2206"),
		TaxiFare:         int64(getEnvAsInt("TAXI_FARE", 3000)),
	}

	serverAddress := getEnv("SERVER_ADDRESS", "")
	if serverAddress == "" {
		serverAddress = ":" + getEnv("PORT", "3000")
	}

	return &Config{
		ServerAddress:  serverAddress,
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		PostgresConfig: postgresConfig,
		RESTConfig:     restConfig,
		RedisConfig:    redisConfig,
		MQTTConfig:     mqttConfig,
		MotelConfig:    motelConfig,
		LogConfig: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Location resolves the motel timezone, falling back to the host's local zone.
func (m MotelConfig) Location() *time.Location {
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// getEnv returns the environment value or defaultValue when unset.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt parses the environment value as int, defaulting when missing or invalid.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// BuildDSN returns POSTGRES_DSN when set, otherwise assembles one from the parts.
func (p PostgresConfig) BuildDSN() string {
	if p.DSN != "" {
		return p.DSN
	}
	return "host=" + p.Host +
		" user=" + p.User +
		" password=" + p.Password +
		" dbname=" + p.DBName +
		" port=" + p.Port +
		" sslmode=" + p.SSLMode
}

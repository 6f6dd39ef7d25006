package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_ADDRESS", "PORT", "STORE_DRIVER", "POSTGRES_DSN", "TAXI_FARE", "MOTEL_TIMEZONE", "REDIS_ENABLED", "MQTT_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, ":3000", cfg.ServerAddress)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, int64(3000), cfg.MotelConfig.TaxiFare)
	assert.Equal(t, "2206", cfg.MotelConfig.DefaultAdminCode)
	assert.False(t, cfg.RedisConfig.Enabled)
	assert.False(t, cfg.MQTTConfig.Enabled)
	assert.Equal(t, 60*time.Second, cfg.RedisConfig.CacheTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("STORE_DRIVER", "REST")
	t.Setenv("STORE_URL", "https://store.example.com/")
	t.Setenv("STORE_SERVICE_KEY", "secret")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("TAXI_FARE", "4500")
	t.Setenv("MQTT_TOPIC_PREFIX", "casa/")

	cfg := LoadConfig()

	assert.Equal(t, ":8081", cfg.ServerAddress)
	assert.Equal(t, StoreDriverREST, cfg.StoreDriver)
	assert.Equal(t, "https://store.example.com", cfg.RESTConfig.URL)
	assert.Equal(t, "secret", cfg.RESTConfig.ServiceKey)
	assert.True(t, cfg.RedisConfig.Enabled)
	assert.Equal(t, int64(4500), cfg.MotelConfig.TaxiFare)
	assert.Equal(t, "casa", cfg.MQTTConfig.TopicPrefix)
}

func TestBuildDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "motel", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=motel port=5432 sslmode=disable", p.BuildDSN())

	p.DSN = "postgres://u:p@db/motel"
	assert.Equal(t, "postgres://u:p@db/motel", p.BuildDSN())
}

func TestMotelConfig_Location(t *testing.T) {
	assert.Equal(t, time.Local, MotelConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", MotelConfig{Timezone: "UTC"}.Location().String())
}

package config

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "SHOP_API_TIMEOUT", "TOKEN_DB", "LOG_LEVEL", "KAFKA_BROKERS", "KAFKA_TOPIC", "VISITOR_TTL_MINUTES", "COOKIE_SECURE", "SESSION_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("SHOP_API_URL", "http://api:5000")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, 10*time.Second, cfg.ShopAPITimeout)
	assert.Equal(t, "storefront.db", cfg.TokenDB)
	assert.Equal(t, "storefront_events", cfg.KafkaTopic)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Minute, cfg.VisitorTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Nil(t, cfg.SessionKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SHOP_API_URL", "http://api:5000")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SHOP_API_TIMEOUT", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("VISITOR_TTL_MINUTES", "5")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.ListenAddr())
	assert.Equal(t, 3*time.Second, cfg.ShopAPITimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.VisitorTTL)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadRequiresAPIURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHOP_API_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOP_API_URL")
}

func TestSessionKey(t *testing.T) {
	t.Parallel()
	long := []byte(strings.Repeat("k", 32))

	tests := []struct {
		name string
		raw  string
		want []byte
	}{
		{"unset", "", nil},
		{"not base64", "%%%", nil},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short")), nil},
		{"valid", base64.StdEncoding.EncodeToString(long), long},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sessionKey(tt.raw))
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDashboardConfig_Defaults(t *testing.T) {
	cfg := LoadDashboardConfig()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, DefaultCommerceAPIURL, cfg.Commerce.BaseURL)
	assert.Zero(t, cfg.Commerce.Timeout)
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.Equal(t, "dashboard_sessions", cfg.Session.Table)
	assert.Equal(t, time.Second, cfg.CheckoutDelay)
	assert.Empty(t, cfg.Messaging.AMQPURL)
	assert.Empty(t, cfg.Discovery.ConsulAddr)
}

func TestLoadDashboardConfig_Env(t *testing.T) {
	t.Setenv("DASHBOARD_PORT", "9090")
	t.Setenv("COMMERCE_API_URL", "https://shop.example.com/")
	t.Setenv("COMMERCE_API_TIMEOUT", "3s")
	t.Setenv("SESSION_DRIVER", "Redis")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("CHECKOUT_DELAY", "250ms")

	cfg := LoadDashboardConfig()

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "https://shop.example.com", cfg.Commerce.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Commerce.Timeout)
	assert.Equal(t, "redis", cfg.Session.Driver)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, 250*time.Millisecond, cfg.CheckoutDelay)
}

func TestGetEnvHelpers_FallbackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	t.Setenv("SOME_DURATION", "soon")
	t.Setenv("SOME_BOOL", "maybe")

	assert.Equal(t, 7, GetEnvAsInt("SOME_INT", 7))
	assert.Equal(t, time.Minute, GetEnvAsDuration("SOME_DURATION", time.Minute))
	assert.False(t, GetEnvAsBool("SOME_BOOL", false))
}

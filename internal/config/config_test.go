package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fuelctl/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOCAL_STATE_PATH", "/tmp/fuelctl-state.db")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Fuel Control", cfg.App.Name)
	assert.Equal(t, int64(100000), cfg.Budget.VendorLimit.Cents())
	assert.Equal(t, "Ipiranga", cfg.Budget.VendorName)
	assert.Equal(t, 10, cfg.Dashboard.RecentLimit)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "postgres", cfg.Alert.Store)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/fuelctl?sslmode=disable", cfg.ConnectionString())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BUDGET_VENDOR_LIMIT", "512.345")
	t.Setenv("ALERT_STORE", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://fuel.example.com")
	t.Setenv("LOCAL_STATE_PATH", "/tmp/fuelctl-state.db")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, int64(51235), cfg.Budget.VendorLimit.Cents())
	assert.Equal(t, "memory", cfg.Alert.Store)
	assert.Equal(t, []string{"http://localhost:3000", "https://fuel.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/tmp/fuelctl-state.db", cfg.Local.StatePath)
}

func TestLoad_Invalid(t *testing.T) {
	type testCase struct {
		name string
		key  string
		val  string
	}

	tests := []testCase{
		{name: "MoneyNotANumber", key: "BUDGET_VENDOR_LIMIT", val: "lots"},
		{name: "NegativeMoney", key: "BUDGET_VENDOR_LIMIT", val: "-1"},
		{name: "UnknownAlertStore", key: "ALERT_STORE", val: "redis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "ledger.db")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "UTC", cfg.App.Timezone)
	assert.Equal(t, 100.0, cfg.Office.RadiusMeters)
	assert.Equal(t, 20, cfg.Leave.AnnualAllowance)
	assert.Equal(t, 2, cfg.Leave.MonthlyCap)
	assert.Equal(t, "calendar_year", cfg.Leave.AccrualPeriod)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Empty(t, cfg.App.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
	t.Setenv("OFFICE_LATITUDE", "12.9716")
	t.Setenv("OFFICE_LONGITUDE", "77.5946")
	t.Setenv("OFFICE_RADIUS_METERS", "250")
	t.Setenv("LEAVE_ACCRUAL_PERIOD", "lifetime")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.Equal(t, 12.9716, cfg.Office.Latitude)
	assert.Equal(t, 250.0, cfg.Office.RadiusMeters)
	assert.Equal(t, "lifetime", cfg.Leave.AccrualPeriod)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSAllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "APP_PORT", "eighty"},
		{"bad driver", "DB_DRIVER", "mysql"},
		{"bad timezone", "APP_TIMEZONE", "Mars/Olympus"},
		{"bad radius", "OFFICE_RADIUS_METERS", "-5"},
		{"bad latitude", "OFFICE_LATITUDE", "95"},
		{"bad accrual", "LEAVE_ACCRUAL_PERIOD", "weekly"},
		{"bad expiry", "JWT_ACCESS_EXPIRATION_TIME", "forever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_PostgresNeedsPassword(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

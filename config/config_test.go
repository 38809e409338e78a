package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_MemoryDriverFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test-does-not-exist")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, 30, cfg.DefaultRangeDays)
	assert.Equal(t, 15, cfg.BoardRefreshSeconds)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins())
}

func TestValidate_MongoRequiresURI(t *testing.T) {
	cfg := &Configuration{StoreDriver: "mongo", MongoDB_DBName: "x", StoreTimeoutSeconds: 5, DefaultRangeDays: 30, DefaultRevenueMonths: 6, BoardRefreshSeconds: 15}
	assert.Error(t, cfg.Validate())

	cfg.MongoDB_ConnectionURI = "mongodb://localhost:27017"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Configuration{StoreDriver: "sqlite", StoreTimeoutSeconds: 5, DefaultRangeDays: 30, DefaultRevenueMonths: 6, BoardRefreshSeconds: 15}
	assert.Error(t, cfg.Validate())
}

func TestReportLocation(t *testing.T) {
	cfg := &Configuration{}
	loc, err := cfg.ReportLocation()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.ReportTimeZone = "Not/AZone"
	_, err = cfg.ReportLocation()
	assert.Error(t, err)
}

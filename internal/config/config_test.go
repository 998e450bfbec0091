package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("API_KEYS", "k1,k2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.Equal(t, "booking.db", cfg.DB.SQLitePath)
	assert.Equal(t, ConflictScopeBusiness, cfg.Booking.ConflictScope)
	assert.False(t, cfg.Booking.ConflictIgnoreCancelled)
	assert.Equal(t, time.Hour, cfg.Booking.SlotWidth)
	assert.Equal(t, 24*time.Hour, cfg.Booking.CancelNotice)
	assert.Equal(t, []string{"k1", "k2"}, cfg.API.Keys)
	assert.True(t, cfg.IsDev())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DB_DRIVER", "neo4j")
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("BOOKING_CONFLICT_SCOPE", "item")
	t.Setenv("BOOKING_SLOT_WIDTH_MODE", "item")
	t.Setenv("BOOKING_CANCEL_NOTICE", "2h")
	t.Setenv("API_KEYS", "prod-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, DriverNeo4j, cfg.DB.Driver)
	assert.Equal(t, "neo4j://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, ConflictScopeItem, cfg.Booking.ConflictScope)
	assert.Equal(t, SlotWidthItem, cfg.Booking.SlotWidthMode)
	assert.Equal(t, 2*time.Hour, cfg.Booking.CancelNotice)
	assert.Equal(t, []string{"prod-key"}, cfg.API.Keys)
}

func TestLoad_ProdRequiresAPIKeys(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("API_KEYS", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEYS")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env: "prod",
			API: APIConfig{Keys: []string{"k"}},
			DB: DBConfig{Driver: DriverPostgres, Host: "h", User: "u", Name: "n"},
			Booking: BookingConfig{
				ConflictScope: ConflictScopeBusiness,
				SlotWidthMode: SlotWidthFixed,
				SlotWidth:     time.Hour,
				MaxRangeDays:  92,
			},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.DB.Driver = "mongo" }},
		{"postgres without host", func(c *Config) { c.DB.Host = "" }},
		{"sqlite without path", func(c *Config) { c.DB.Driver = DriverSQLite }},
		{"neo4j without uri", func(c *Config) { c.DB.Driver = DriverNeo4j }},
		{"bad scope", func(c *Config) { c.Booking.ConflictScope = "staff" }},
		{"bad slot mode", func(c *Config) { c.Booking.SlotWidthMode = "auto" }},
		{"zero slot width", func(c *Config) { c.Booking.SlotWidth = 0 }},
		{"zero range", func(c *Config) { c.Booking.MaxRangeDays = 0 }},
		{"prod without api keys", func(c *Config) { c.API.Keys = nil }},
		{"unnamed env without api keys", func(c *Config) { c.Env = ""; c.API.Keys = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidate_DevAllowsOpenAPI(t *testing.T) {
	for _, env := range []string{"dev", "local", "DEV"} {
		c := &Config{
			Env: env,
			DB:  DBConfig{Driver: DriverSQLite, SQLitePath: ":memory:"},
			Booking: BookingConfig{
				ConflictScope: ConflictScopeItem,
				SlotWidthMode: SlotWidthItem,
				SlotWidth:     time.Hour,
				MaxRangeDays:  1,
			},
		}
		assert.NoError(t, c.Validate(), env)
	}
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: 5432, SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}

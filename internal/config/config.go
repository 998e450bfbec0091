package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNeo4j    = "neo4j"
)

// Режим поиска конфликтов: по всему бизнесу или по одной позиции.
const (
	ConflictScopeBusiness = "business"
	ConflictScopeItem     = "item"
)

// Ширина слота: фиксированная или равная длительности позиции.
const (
	SlotWidthFixed = "fixed"
	SlotWidthItem  = "item"
)

type Config struct {
	Env string `envconfig:"ENV" default:"dev"`

	HTTP    HTTPConfig    `envconfig:"HTTP"`
	GRPC    GRPCConfig    `envconfig:"GRPC"`
	DB      DBConfig      `envconfig:"DB"`
	Neo4j   Neo4jConfig   `envconfig:"NEO4J"`
	Booking BookingConfig `envconfig:"BOOKING"`
	Log     LogConfig     `envconfig:"LOG"`
	AMQP    AMQPConfig    `envconfig:"AMQP"`
	OTel    OTelConfig    `envconfig:"OTEL"`
	API     APIConfig     `envconfig:"API"`
}

type HTTPConfig struct {
	Addr         string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	CORSOrigins  []string      `envconfig:"CORS_ORIGINS" default:"*"`

	// Лимит запросов на клиента; 0 — без ограничений.
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

type GRPCConfig struct {
	// Пустой адрес отключает gRPC health.
	Addr           string        `envconfig:"ADDR" default:":50051"`
	HealthInterval time.Duration `envconfig:"HEALTH_INTERVAL" default:"15s"`
}

type DBConfig struct {
	Driver          string `envconfig:"DRIVER" default:"postgres"`
	Host            string `envconfig:"HOST" default:"postgres"`
	Port            int    `envconfig:"PORT" default:"5432"`
	User            string `envconfig:"USER" default:"booking"`
	Password        string `envconfig:"PASSWORD" default:"booking"`
	Name            string `envconfig:"NAME" default:"booking_db"`
	SSLMode         string `envconfig:"SSLMODE" default:"disable"`
	TimeZone        string `envconfig:"TIMEZONE" default:"UTC"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifeTime int    `envconfig:"CONN_MAX_LIFETIME_MIN" default:"30"` // минут
	SQLitePath      string `envconfig:"SQLITE_PATH" default:"booking.db"`

	SlowQuery time.Duration `envconfig:"SLOW_QUERY" default:"200ms"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

type Neo4jConfig struct {
	URI      string `envconfig:"URI" default:"neo4j://localhost:7687"`
	User     string `envconfig:"USER" default:"neo4j"`
	Password string `envconfig:"PASSWORD" default:"neo4j"`
	Database string `envconfig:"DATABASE" default:"neo4j"`
}

type BookingConfig struct {
	ConflictScope           string        `envconfig:"CONFLICT_SCOPE" default:"business"`
	ConflictIgnoreCancelled bool          `envconfig:"CONFLICT_IGNORE_CANCELLED" default:"false"`
	SlotWidthMode           string        `envconfig:"SLOT_WIDTH_MODE" default:"fixed"`
	SlotWidth               time.Duration `envconfig:"SLOT_WIDTH" default:"1h"`
	MaxRangeDays            int           `envconfig:"MAX_RANGE_DAYS" default:"92"`
	CancelNotice            time.Duration `envconfig:"CANCEL_NOTICE" default:"24h"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:""`
	// stdout или stderr.
	Output string `envconfig:"OUTPUT" default:"stdout"`
}

type AMQPConfig struct {
	// Пустой URL — события наружу не публикуются.
	URL      string `envconfig:"URL"`
	Exchange string `envconfig:"EXCHANGE" default:"booking.events"`
}

type OTelConfig struct {
	// Пустой endpoint — трассировка не экспортируется.
	Endpoint    string `envconfig:"EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"booking-core"`
}

type APIConfig struct {
	Keys []string `envconfig:"KEYS"`
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
			return errors.New("invalid DB config: host/user/name must not be empty")
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			return errors.New("invalid DB config: sqlite path must not be empty")
		}
	case DriverNeo4j:
		if c.Neo4j.URI == "" {
			return errors.New("invalid Neo4j config: uri must not be empty")
		}
	default:
		return fmt.Errorf("invalid DB config: unknown driver %q", c.DB.Driver)
	}

	switch c.Booking.ConflictScope {
	case ConflictScopeBusiness, ConflictScopeItem:
	default:
		return fmt.Errorf("invalid booking config: conflict scope %q", c.Booking.ConflictScope)
	}
	switch c.Booking.SlotWidthMode {
	case SlotWidthFixed, SlotWidthItem:
	default:
		return fmt.Errorf("invalid booking config: slot width mode %q", c.Booking.SlotWidthMode)
	}
	if c.Booking.SlotWidth <= 0 {
		return errors.New("invalid booking config: slot width must be positive")
	}
	if c.Booking.MaxRangeDays <= 0 {
		return errors.New("invalid booking config: max range days must be positive")
	}
	// без ключей API открыт, это допустимо только локально
	if len(c.API.Keys) == 0 && !c.IsDev() {
		return fmt.Errorf("invalid API config: API_KEYS must not be empty in %q environment", c.Env)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "local")
}

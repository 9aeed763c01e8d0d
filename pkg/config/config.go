package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.App.IsProd() && cfg.FeatureFlags.AutoMigrate {
		return nil, fmt.Errorf("%s cannot be enabled when %s is %q", EnvAutoMigrate, EnvAppEnv, AppEnvProd)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Cache.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INVENTORY_APP_ENV" required:"true"`
	Port         string `envconfig:"INVENTORY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INVENTORY_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"INVENTORY_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"INVENTORY_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"INVENTORY_CORS_ORIGINS" default:"http://localhost:3000"`
	IdempotencyTTL  time.Duration `envconfig:"INVENTORY_IDEMPOTENCY_TTL" default:"24h"`
	ShutdownTimeout time.Duration `envconfig:"INVENTORY_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"INVENTORY_DB_DSN"`
	Driver string `envconfig:"INVENTORY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INVENTORY_DB_HOST"`
	LegacyPort     int    `envconfig:"INVENTORY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INVENTORY_DB_USER"`
	LegacyPassword string `envconfig:"INVENTORY_DB_PASSWORD"`
	LegacyName     string `envconfig:"INVENTORY_DB_NAME"`
	LegacySSLMode  string `envconfig:"INVENTORY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"INVENTORY_SQLITE_PATH" default:"inventory.db"`

	MaxOpenConns    int           `envconfig:"INVENTORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INVENTORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the record store runs on the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"INVENTORY_REDIS_URL"`
	Address      string        `envconfig:"INVENTORY_REDIS_ADDR"`
	Password     string        `envconfig:"INVENTORY_REDIS_PASSWORD"`
	DB           int           `envconfig:"INVENTORY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INVENTORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INVENTORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INVENTORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INVENTORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INVENTORY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether any redis endpoint was supplied.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

// CacheConfig selects the item cache backend.
type CacheConfig struct {
	Driver           string        `envconfig:"INVENTORY_CACHE_DRIVER" default:"redis"`
	TTL              time.Duration `envconfig:"INVENTORY_CACHE_TTL" default:"1h"`
	MemcacheServers  []string      `envconfig:"INVENTORY_MEMCACHE_SERVERS" default:"127.0.0.1:11211"`
	MemcacheTimeout  time.Duration `envconfig:"INVENTORY_MEMCACHE_TIMEOUT" default:"500ms"`
	MemoryMaxEntries int           `envconfig:"INVENTORY_CACHE_MEMORY_MAX_ENTRIES" default:"10000"`
}

func (c CacheConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case CacheDriverRedis, CacheDriverMemcache, CacheDriverMemory:
	default:
		return fmt.Errorf("unsupported cache driver %q", c.Driver)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvCacheTTL)
	}
	return nil
}

type JWTConfig struct {
	Secret                 string `envconfig:"INVENTORY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"INVENTORY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"INVENTORY_JWT_EXPIRATION_MINUTES" default:"5"`
	RefreshTokenTTLMinutes int    `envconfig:"INVENTORY_REFRESH_TOKEN_TTL_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"INVENTORY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"INVENTORY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"INVENTORY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"INVENTORY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"INVENTORY_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"INVENTORY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"INVENTORY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

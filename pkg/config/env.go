package config

const EnvPrefix = "INVENTORY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	CacheDriverRedis    = "redis"
	CacheDriverMemcache = "memcache"
	CacheDriverMemory   = "memory"
)

const (
	EnvAppEnv   = "INVENTORY_APP_ENV"
	EnvPort     = "INVENTORY_APP_PORT"
	EnvLogLevel = "INVENTORY_LOG_LEVEL"

	EnvDBDSN     = "INVENTORY_DB_DSN"
	EnvDBDriver  = "INVENTORY_DB_DRIVER"
	EnvDBHost    = "INVENTORY_DB_HOST"
	EnvDBUser    = "INVENTORY_DB_USER"
	EnvDBName    = "INVENTORY_DB_NAME"
	EnvUseSQLite = "INVENTORY_USE_SQLITE"

	EnvAutoMigrate = "INVENTORY_AUTO_MIGRATE"

	EnvRedisURL = "INVENTORY_REDIS_URL"

	EnvCacheDriver     = "INVENTORY_CACHE_DRIVER"
	EnvCacheTTL        = "INVENTORY_CACHE_TTL"
	EnvMemcacheServers = "INVENTORY_MEMCACHE_SERVERS"

	EnvJWTSecret              = "INVENTORY_JWT_SECRET"
	EnvJWTIssuer              = "INVENTORY_JWT_ISSUER"
	EnvJWTExpMins             = "INVENTORY_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "INVENTORY_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

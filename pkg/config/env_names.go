package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// AURELIA_* names so the prefix only matters for unannotated additions.
const EnvPrefix = "AURELIA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvDBDSN    = "AURELIA_DB_DSN"
	EnvDBDriver = "AURELIA_DB_DRIVER"
)

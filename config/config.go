package config

import (
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/spf13/viper"

	"github.com/benchwise/gridvault/catalog"
	"github.com/benchwise/gridvault/db"
	"github.com/benchwise/gridvault/db/params"
	"github.com/benchwise/gridvault/logging"
)

const (
	DefaultDatabaseDriver = "pgx"
	DefaultDatabaseURI    = "postgres://localhost:5432/postgres?search_path=gridvault&sslmode=disable"

	DefaultDatabaseMaxOpenConnections    = 25
	DefaultDatabaseMaxIdleConnections    = 25
	DefaultDatabaseConnectionMaxLifetime = "5m"

	DefaultLoggingFormat = "text"
	DefaultLoggingLevel  = "INFO"
	DefaultLoggingOutput = "-"

	DefaultCacheVersionSize = 64
	DefaultCacheDiffSize    = 128
)

type Config struct{}

func NewConfig() *Config {
	setDefaults()
	setupLogger()
	return &Config{}
}

func setDefaults() {
	viper.SetDefault("logging.format", DefaultLoggingFormat)
	viper.SetDefault("logging.level", DefaultLoggingLevel)
	viper.SetDefault("logging.output", DefaultLoggingOutput)

	viper.SetDefault("database.driver", DefaultDatabaseDriver)
	viper.SetDefault("database.uri", DefaultDatabaseURI)
	viper.SetDefault("database.max_open_connections", DefaultDatabaseMaxOpenConnections)
	viper.SetDefault("database.max_idle_connections", DefaultDatabaseMaxIdleConnections)
	viper.SetDefault("database.connection_max_lifetime", DefaultDatabaseConnectionMaxLifetime)

	viper.SetDefault("cache.version_size", DefaultCacheVersionSize)
	viper.SetDefault("cache.diff_size", DefaultCacheDiffSize)
}

func setupLogger() {
	logging.SetOutputFormat(viper.GetString("logging.format"))
	logging.SetOutputs(viper.GetStringSlice("logging.output"),
		viper.GetInt("logging.file_max_size_mb"),
		viper.GetInt("logging.files_keep"))
	logging.SetLevel(viper.GetString("logging.level"))
}

func (c *Config) GetDatabaseParams() params.Database {
	return params.Database{
		Driver:                DefaultDatabaseDriver,
		ConnectionString:      viper.GetString("database.uri"),
		MaxOpenConnections:    viper.GetInt("database.max_open_connections"),
		MaxIdleConnections:    viper.GetInt("database.max_idle_connections"),
		ConnectionMaxLifetime: viper.GetDuration("database.connection_max_lifetime"),
	}
}

func (c *Config) ConnectDatabase() db.Database {
	database, err := db.ConnectDB(c.GetDatabaseParams())
	if err != nil {
		panic(err)
	}
	return database
}

func (c *Config) BuildCataloger(database db.Database) catalog.Cataloger {
	return catalog.NewCataloger(database,
		catalog.WithCacheSizes(
			viper.GetInt("cache.version_size"),
			viper.GetInt("cache.diff_size"),
		))
}

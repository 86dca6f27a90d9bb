package config

import (
	"github.com/dmitrijs2005/machinewatch/internal/envx"
)

// parseEnv overlays the deployment environment:
//
//	DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME   user store
//	JWT_SECRET                                        signing secret
//	ALLOW_DEV_SECRET                                  development secret fallback
//	RUN_MIGRATIONS                                    apply schema at startup
//
// Malformed numeric or boolean values panic.
func parseEnv(config *Config) {
	config.Store.DBHost = envx.Default("DB_HOST", config.Store.DBHost)
	config.Store.DBUser = envx.Default("DB_USER", config.Store.DBUser)
	config.Store.DBPassword = envx.Default("DB_PASSWORD", config.Store.DBPassword)
	config.Store.DBName = envx.Default("DB_NAME", config.Store.DBName)
	config.SecretKey = envx.Default("JWT_SECRET", config.SecretKey)

	port, err := envx.Int("DB_PORT", config.Store.DBPort)
	if err != nil {
		panic(err)
	}
	config.Store.DBPort = port

	allowDev, err := envx.Bool("ALLOW_DEV_SECRET", config.AllowDevSecret)
	if err != nil {
		panic(err)
	}
	config.AllowDevSecret = allowDev

	migrate, err := envx.Bool("RUN_MIGRATIONS", config.RunMigrations)
	if err != nil {
		panic(err)
	}
	config.RunMigrations = migrate
}

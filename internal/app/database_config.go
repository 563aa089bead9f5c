package app

import (
	"strings"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/database"
)

// ConnectionConfig converts DatabaseConfig into the database package
// representation. Host based settings are taken from the block matching the
// resolved driver.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	cfg := database.Config{
		Driver: strings.TrimSpace(c.Driver),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	auth := c.Postgres
	if strings.EqualFold(cfg.Driver, database.DriverMySQL) {
		auth = c.MySQL
	}
	cfg.Host = strings.TrimSpace(auth.Host)
	cfg.Port = auth.Port
	cfg.Name = strings.TrimSpace(auth.Database)
	cfg.User = strings.TrimSpace(auth.Username)
	cfg.Password = auth.Password
	if mode := strings.TrimSpace(auth.SSLMode); mode != "" {
		cfg.Options = map[string]string{"sslmode": mode}
	}
	return cfg
}

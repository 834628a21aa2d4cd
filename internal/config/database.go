package config

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	connectAttempts = 10
	connectBackoff  = 3 * time.Second
)

// ConnectDB opens the MySQL pool and waits until the server answers a ping.
func ConnectDB(cfg DBConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = sql.Open("mysql", cfg.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				logger.Info().Msgf("Connected to DB %s", cfg.Name)
				db.SetMaxOpenConns(25)
				db.SetMaxIdleConns(25)
				db.SetConnMaxLifetime(5 * time.Minute)
				return db, nil
			}
			db.Close()
		}
		logger.Warn().Err(err).Msgf("Retry %d: Failed to connect to DB %s (%s:%s)", i+1, cfg.Name, cfg.Host, cfg.Port)
		time.Sleep(connectBackoff)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %w", cfg.Name, cfg.Host, cfg.Port, err)
}

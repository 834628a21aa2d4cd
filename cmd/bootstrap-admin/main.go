// Command bootstrap-admin provisions the first administrator from
// INIT_ADMIN_EMAIL and INIT_ADMIN_PASSWORD. It does nothing when an active
// admin already exists.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/Austinpowers7/storehive-backend/internal/auth"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/config"
	"github.com/Austinpowers7/storehive-backend/internal/repository/mysql"
	"github.com/Austinpowers7/storehive-backend/internal/service"
	"github.com/Austinpowers7/storehive-backend/migrations"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.InitAdminEmail == "" || cfg.InitAdminPass == "" {
		logger.Fatal().Msg("INIT_ADMIN_EMAIL and INIT_ADMIN_PASSWORD are required")
	}
	if cfg.StoreDriver != config.DriverMySQL {
		logger.Fatal().Msgf("bootstrap-admin needs STORE_DRIVER=%s", config.DriverMySQL)
	}

	ctx := context.Background()
	db, err := config.ConnectDB(cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()

	if err := migrations.AutoMigrate(ctx, db, cfg.DB.MigrateRetries); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate")
	}

	store := mysql.NewStore(db)
	users := service.NewUserService(store, authz.NewEvaluator(authz.NewRepositoryDirectory(store)), auth.NewBcryptHasher(cfg.BcryptCost))

	admin, created, err := users.BootstrapAdmin(ctx, cfg.InitAdminEmail, cfg.InitAdminPass)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to bootstrap admin")
	}
	if !created {
		logger.Info().Msg("An active admin already exists, nothing to do")
		return
	}
	logger.Info().Msgf("Created admin %s (%s)", admin.Email, admin.ID)
}

package migrate

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/cmd/util"
	"github.com/mpapenbr/accbroadcast-go/pkg/config"
	"github.com/mpapenbr/accbroadcast-go/pkg/db/migrate"
	"github.com/mpapenbr/accbroadcast-go/pkg/utils"
)

var errNoDatabase = errors.New("no database configured")

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	return cmd
}

func startMigration() error {
	ctx := context.Background()
	util.SetupLogger(ctx)
	if config.DB == "" {
		log.Error("no database configured (use --db)")
		return errNoDatabase
	}
	// wait for database
	timeout := util.ParseDuration(config.WaitForServices, 60*time.Second)
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err := utils.WaitForTCP(ctx, postgresAddr, timeout); err != nil {
		log.Error("database not ready", log.ErrorField(err))
		return err
	}

	if err := migrate.MigrateDb(config.DB); err != nil {
		log.Error("migration failed", log.ErrorField(err))
		return err
	}
	version, dirty, err := migrate.Version(config.DB)
	if err != nil {
		return err
	}
	log.Info("Database migrated", log.Uint("version", version), log.Bool("dirty", dirty))
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/scdig/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the built-in configuration template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		return fmt.Errorf("%w: --output", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Config written to %s\n", path)
}

// SetupDatabase initializes the cache database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Cache.Path)

	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		r.logger.Info("rolled back latest migration", "path", r.config.Cache.Path)
		return r.writePlain("✓ Rolled back latest migration\n")
	}

	r.logger.Infof("setup complete for database: %v", r.config.Cache.Path)
	return r.writePlain("✓ Cache database ready at %s\n", r.config.Cache.Path)
}

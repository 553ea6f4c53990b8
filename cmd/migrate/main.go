package main

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/crobbins327/histocartography/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var url string

	open := func() (*migrate.Migrate, error) {
		if url == "" {
			cfg, err := config.Load()
			if err != nil {
				return nil, fmt.Errorf("load config: %w", err)
			}
			url = cfg.Database.URL()
		}
		src, err := iofs.New(migrations, "migrations")
		if err != nil {
			return nil, fmt.Errorf("open migrations: %w", err)
		}
		return migrate.NewWithSourceInstance("iofs", src, url)
	}

	// run opens the migrator, applies fn and treats ErrNoChange as success.
	run := func(cmd *cobra.Command, fn func(*migrate.Migrate) error) error {
		m, err := open()
		if err != nil {
			return err
		}
		defer m.Close()

		if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			cmd.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		cmd.Printf("schema version %d (dirty: %t)\n", v, dirty)
		return nil
	}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the record set and meta-explanation schema",
		Long:         "migrate applies the embedded schema migrations. The database comes from\n--url or, when omitted, from the HISTO_DB_* configuration.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&url, "url", "", "postgres:// connection URL (default: from config)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, (*migrate.Migrate).Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert every applied migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, (*migrate.Migrate).Down)
			},
		},
		&cobra.Command{
			Use:   "steps N",
			Short: "Apply N migrations, or revert when N is negative",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return run(cmd, func(m *migrate.Migrate) error { return m.Steps(n) })
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return run(cmd, func(m *migrate.Migrate) error { return m.Force(v) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, func(*migrate.Migrate) error { return nil })
			},
		},
	)
	return root
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Materiales-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Materiales-api/pkg/config"
	"github.com/jhoicas/Materiales-api/pkg/logger"
)

// Comando de mantenimiento del esquema: up, down [n], version.
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dir string
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Migraciones del esquema de Materiales API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "", "directorio de migraciones (por defecto DB_MIGRATIONS_PATH)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(dir, func(mg *postgres.Migrator) error {
				return mg.Up()
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down [n]",
		Short: "Revierte n migraciones (todas si se omite)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 0
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 1 {
					return fmt.Errorf("n debe ser un entero positivo: %q", args[0])
				}
				n = v
			}
			return withMigrator(dir, func(mg *postgres.Migrator) error {
				return mg.Down(n)
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Muestra la versión actual del esquema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(dir, func(mg *postgres.Migrator) error {
				v, dirty, err := mg.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			})
		},
	})

	return root
}

func withMigrator(dir string, fn func(*postgres.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if dir == "" {
		dir = cfg.DB.MigrationsPath
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "materiales-migrate"})

	mg, err := postgres.NewMigrator(dir, cfg.DB.ConnectionString(), log.Component("migrate"))
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

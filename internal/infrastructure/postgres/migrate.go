package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // driver postgres://
	_ "github.com/golang-migrate/migrate/v4/source/file"       // fuente file://
	"github.com/rs/zerolog"
)

// Migrator envuelve golang-migrate con el logger de la app.
type Migrator struct {
	m   *migrate.Migrate
	log zerolog.Logger
}

// NewMigrator abre la fuente de migraciones (directorio) contra la base dada.
func NewMigrator(migrationsPath, databaseURL string, log zerolog.Logger) (*Migrator, error) {
	source := migrationsPath
	if !strings.Contains(source, "://") {
		source = "file://" + source
	}
	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones: %w", err)
	}
	m.Log = &migrateLogger{log: log}
	log.Debug().Str("source", source).Str("database", redactDSN(databaseURL)).Msg("migrador listo")
	return &Migrator{m: m, log: log}, nil
}

// Up aplica las migraciones pendientes. No hacer nada no es un error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info().Msg("migraciones: sin cambios")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	mg.log.Info().Msg("migraciones aplicadas")
	return nil
}

// Down revierte n migraciones (todas si n <= 0).
func (mg *Migrator) Down(n int) error {
	var err error
	if n <= 0 {
		err = mg.m.Down()
	} else {
		err = mg.m.Steps(-n)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version versión actual y si quedó marcada como sucia.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close libera la fuente y la conexión.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

type migrateLogger struct {
	log zerolog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.Debug().Msgf("migrate: "+strings.TrimSuffix(format, "\n"), v...)
}

func (l *migrateLogger) Verbose() bool { return l.log.GetLevel() <= zerolog.DebugLevel }

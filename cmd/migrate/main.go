package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"

	"media-market/internal/config"
	"media-market/internal/logging"
	"media-market/internal/migrations"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Env, cfg.LogLevel)

	if cfg.DSN == "" {
		log.Error("DSN is required")
		os.Exit(1)
	}

	db, err := sqlx.Connect("pgx", cfg.DSN)
	if err != nil {
		log.Error("cannot connect to database", logging.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	m, err := migrations.New(db.DB)
	if err != nil {
		log.Error("cannot initialise migrations", logging.Err(err))
		os.Exit(1)
	}

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "goto":
		if len(os.Args) < 3 {
			log.Error("goto needs a version number")
			os.Exit(1)
		}
		var version uint64
		version, err = strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Error("invalid version", logging.Err(err))
			os.Exit(1)
		}
		err = m.Migrate(uint(version))
	case "status":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			log.Info("no migrations applied yet")
			return
		}
		if verr != nil {
			log.Error("cannot read version", logging.Err(verr))
			os.Exit(1)
		}
		log.Info("current version", "version", version, "dirty", dirty)
		return
	default:
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no change")
		return
	}
	if err != nil {
		log.Error("migration failed", "command", os.Args[1], logging.Err(err))
		os.Exit(1)
	}
	log.Info("migration done", "command", os.Args[1])
}

func printUsage() {
	fmt.Println("usage: migrate <command>")
	fmt.Println("  up      apply all pending migrations")
	fmt.Println("  down    roll back the last migration")
	fmt.Println("  goto N  migrate to version N")
	fmt.Println("  status  print the current version")
}

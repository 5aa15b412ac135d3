package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/customeros/mailserver/internal/config"
	"github.com/customeros/mailserver/internal/database"
	"github.com/customeros/mailserver/server"
)

// main is a thin urfave/cli/v2 entry point exposing "migrate" and "serve",
// grounded on the pack's maddy/internal/cli/app.go command-table shape.
func main() {
	app := &cli.App{
		Name:  "mailserver",
		Usage: "multi-account IMAP ingestion, indexing and search service",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "run database migrations",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return fmt.Errorf("config: %w", err)
					}
					db, err := database.Init(toDatabaseConfig(cfg.Database))
					if err != nil {
						return fmt.Errorf("database init: %w", err)
					}
					if err := database.Migrate(db); err != nil {
						return fmt.Errorf("migrate: %w", err)
					}
					log.Println("database migration completed successfully")
					return nil
				},
			},
			{
				Name:  "serve",
				Usage: "start the HTTP server and account scheduler",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return fmt.Errorf("config: %w", err)
					}
					db, err := database.Init(toDatabaseConfig(cfg.Database))
					if err != nil {
						return fmt.Errorf("database init: %w", err)
					}
					return server.New(cfg, db).Run()
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func toDatabaseConfig(cfg config.DatabaseConfig) *database.DatabaseConfig {
	return &database.DatabaseConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		DBName:          cfg.DBName,
		SSLMode:         cfg.SSLMode,
		MaxConn:         cfg.MaxConn,
		MaxIdleConn:     cfg.MaxIdleConn,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogLevel:        cfg.LogLevel,
	}
}

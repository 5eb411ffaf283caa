package main

import (
	"embed"

	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := migrator.RunMigrations(cfg.DatabaseURL, MigrationsFS, "goose_item_version"); err != nil {
		panic(err)
	}
}

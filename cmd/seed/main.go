// Command seed loads a YAML fixture of teams, personnel, products and leads.
// Without -file it loads the bundled demo data.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	catalogrepo "leadpipeline_backend/internal/catalog/repository"
	leadrepo "leadpipeline_backend/internal/leads/repository"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/internal/seed"
	"leadpipeline_backend/migrations"
	"leadpipeline_backend/platform/config"
	"leadpipeline_backend/platform/db"
	"leadpipeline_backend/platform/logger"
)

func main() {
	file := flag.String("file", "", "path to a seed fixture (defaults to the bundled demo data)")
	migrate := flag.Bool("migrate", true, "apply migrations before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fixture, err := loadFixture(*file)
	if err != nil {
		log.Error("invalid seed fixture", "file", *file, "error", err)
		os.Exit(1)
	}

	if *migrate {
		if err := db.RunMigrations(ctx, cfg, migrations.FS); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	loader := seed.NewLoader(catalogrepo.New(pool), personnelrepo.New(pool), leadrepo.New(pool), log)
	if _, err := loader.Load(ctx, fixture); err != nil {
		log.Error("seed failed", "error", err)
		pool.Close()
		os.Exit(1)
	}
}

func loadFixture(path string) (seed.Fixture, error) {
	if path == "" {
		return seed.Demo()
	}
	f, err := os.Open(path)
	if err != nil {
		return seed.Fixture{}, err
	}
	defer f.Close()
	return seed.Parse(f)
}

// @title MRI Screening Platform API
// @version 1.0
// @description Backend for the MRI technician pre-screening and assessment platform.

// @contact.name API Support

// @license.name MIT

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"mri_screening_backend/internal/app"
	"mri_screening_backend/internal/config"
	"mri_screening_backend/pkg/configwatcher"
	"mri_screening_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	migrate := flag.Bool("migrate", false, "force database migration on startup")
	detectPlagiarism := flag.Bool("detect-plagiarism", false, "run one plagiarism scan over completed attempts and exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly || *detectPlagiarism

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration completed, exiting")
		return
	}

	if *detectPlagiarism {
		if err := application.RunPlagiarismScan(); err != nil {
			log.Fatalf("Plagiarism scan failed: %v", err)
		}
		return
	}

	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}

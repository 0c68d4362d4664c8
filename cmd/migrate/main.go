package main

import (
	"flag"

	"relay-panel/internal/config"
	"relay-panel/internal/repository"

	"github.com/sirupsen/logrus"
)

// migrateLogger lets golang-migrate report through logrus.
type migrateLogger struct {
	*logrus.Logger
}

func (l migrateLogger) Verbose() bool {
	return l.IsLevelEnabled(logrus.DebugLevel)
}

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the YAML config file")
	steps := flag.Int("steps", 0, "migrate this many versions up (positive) or down (negative); 0 applies all")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Info("Applying database migrations...")
	if err := repository.Migrate(cfg.Database.URL, *steps, migrateLogger{log}); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	log.Info("Database migrations applied successfully.")
}

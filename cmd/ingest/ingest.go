package main

import (
	"os"

	"github.com/DRSN-tech/fashion-search/internal/app"
	config "github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	log := logger.NewSlogLogger()

	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadIngestion(log)
	if err != nil {
		log.Errorf(err, "failed to load ingestion config")
		os.Exit(1)
	}

	if err := app.RunIngestion(cfg, log); err != nil {
		log.Errorf(err, "ingestion run failed")
		os.Exit(1)
	}
}

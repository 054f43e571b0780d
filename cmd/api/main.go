package main

import (
	_ "time/tzdata"

	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/app"
	"github.com/chasmapasal/chasmapasal-api/internal/config"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	// httperr and cache log through the package-level logger
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	if err := a.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

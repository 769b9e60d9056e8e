package main

import (
	"flag"
	"os"
	"strings"
	"syscall"

	"github.com/modboard-next/internal/app"
	"github.com/modboard-next/internal/config"
	"github.com/modboard-next/internal/logger"
	"github.com/modboard-next/internal/store"
)

func main() {
	mode := flag.String("mode", app.ModeAll, "run mode: all | api | worker")
	flag.Parse()

	cfg := config.Load()
	log := logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions()).Sugar()
	defer func() {
		_ = log.Sync()
	}()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("config_invalid", "error", err)
	}
	if len(cfg.JWT.SecretKey) < 32 {
		log.Warnw("jwt_secret_weak", "hint", "use at least 32 random bytes")
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalw("store_open_failed",
			"driver", cfg.Database.Driver,
			"database", cfg.Database.Name,
			"error", err,
		)
	}
	defer func() {
		_ = st.Close()
	}()
	log.Infow("store_ready", "driver", cfg.Database.Driver, "database", cfg.Database.Name)

	err = app.Run(st, app.Options{
		Config:  cfg,
		Logger:  log,
		Mode:    *mode,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	})
	if err != nil {
		log.Fatalw("app_exit", "error", err)
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if driver == "memory" {
		return store.NewMemoryStore(), nil
	}
	return store.OpenDocumentStore(driver, cfg.Database.DSN)
}

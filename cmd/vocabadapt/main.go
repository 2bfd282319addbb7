// Command vocabadapt wires the core service and its background sweep into
// a long-running process, following the teacher's main.go pattern of a
// signal channel and a done channel for graceful shutdown.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/vocabadapt/internal/activity"
	"github.com/example/vocabadapt/internal/assembler"
	"github.com/example/vocabadapt/internal/background"
	"github.com/example/vocabadapt/internal/catalog"
	"github.com/example/vocabadapt/internal/catalogcache"
	"github.com/example/vocabadapt/internal/clock"
	"github.com/example/vocabadapt/internal/config"
	"github.com/example/vocabadapt/internal/core"
	"github.com/example/vocabadapt/internal/placement"
	"github.com/example/vocabadapt/internal/progress"
	"github.com/example/vocabadapt/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate("migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	clk := clock.Real{}

	catalogStore := catalog.NewStore(db)
	cachedCatalog := catalogcache.New(catalogStore, cfg.CatalogCacheSize, cfg.CatalogCacheTTL)

	progressStore := progress.NewStore(db)
	placementStore := placement.NewStore(db)
	placementSvc := placement.NewService(placementStore, cachedCatalog, placement.Params{
		RegressionInterval: cfg.RegressionInterval,
		RegressionFactor:   cfg.RegressionFactor,
		MinRange:           cfg.MinRange,
		MaxQuestions:       cfg.MaxQuestions,
	})
	asm := assembler.New(progressStore, cachedCatalog)
	activityTracker := activity.NewTracker(db, cfg.DailyGoal)

	svc := core.New(cfg, clk, logger, cachedCatalog, progressStore, placementSvc, asm, activityTracker)
	_ = svc // svc is the facade a future transport layer (HTTP/RPC, out of scope) binds to.

	sweep := background.New(placementStore, cachedCatalog, cfg.SweepInterval, 24*time.Hour, logger)
	sweep.Start()
	defer sweep.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		sweep.Stop()
		close(done)
	}()

	logger.Info("vocabadapt core started")
	<-done
	logger.Info("vocabadapt core stopped")
}

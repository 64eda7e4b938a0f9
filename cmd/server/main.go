package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/api"
	"github.com/cbodonnell/cardbridge/pkg/bridge"
	"github.com/cbodonnell/cardbridge/pkg/config"
	"github.com/cbodonnell/cardbridge/pkg/dispatch"
	"github.com/cbodonnell/cardbridge/pkg/game"
	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/queue"
	"github.com/cbodonnell/cardbridge/pkg/repositories"
	"github.com/cbodonnell/cardbridge/pkg/snapshot"
	"github.com/cbodonnell/cardbridge/pkg/version"
	"github.com/cbodonnell/cardbridge/pkg/workers"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	outcomeChanSize = 256
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	flag.StringVar(&cfg.Host, "host", cfg.Host, "Host to listen on")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "Simulation tick interval")
	flag.IntVar(&cfg.QueueCapacity, "queue-capacity", cfg.QueueCapacity, "Action queue capacity (0 for unbounded)")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Run seed (0 seeds from the clock)")
	flag.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Outcome journal database URL")
	flag.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the outcome store")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stdout, parsedLogLevel))
	log.Info("Log level set to %s", parsedLogLevel)
	log.Info("Starting cardbridge version %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("Server exited with error: %v", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Submission ids restart at 1 with every process.
	sessionID := uuid.NewString()
	log.Info("Starting session %s", sessionID)

	var outcomes bridge.OutcomeStore
	if cfg.RedisURL != "" {
		redisStore, err := bridge.NewRedisOutcomeStoreFromURL(ctx, cfg.RedisURL, sessionID, cfg.OutcomeTTL)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		log.Info("Storing outcomes in redis")
		outcomes = redisStore
	} else {
		outcomes = bridge.NewMemoryOutcomeStore(bridge.NewMemoryOutcomeStoreOptions{
			Capacity: cfg.OutcomeCapacity,
			TTL:      cfg.OutcomeTTL,
		})
	}

	actionBridge := bridge.NewBridge(bridge.NewBridgeOptions{
		Queue:          queue.NewInMemoryQueue(cfg.QueueCapacity),
		Outcomes:       outcomes,
		MaxOutcomeWait: cfg.MaxOutcomeWait,
	})

	g, ctx := errgroup.WithContext(ctx)

	broadcastChan := make(chan workers.OutcomeEvent, outcomeChanSize)
	outcomeChans := []chan<- workers.OutcomeEvent{broadcastChan}

	var repository repositories.Repository
	if cfg.DatabaseURL != "" {
		repo, err := repositories.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer repo.Close(context.Background())
		repository = repo

		log.Info("Journaling outcomes for session %s", sessionID)
		journalChan := make(chan workers.OutcomeEvent, outcomeChanSize)
		outcomeChans = append(outcomeChans, journalChan)
		journalWorker := workers.NewJournalWorker(workers.NewJournalWorkerOptions{
			Repository:  repository,
			OutcomeChan: journalChan,
			SessionID:   sessionID,
			Interval:    cfg.JournalInterval,
			BatchSize:   cfg.JournalBatch,
		})
		g.Go(func() error {
			journalWorker.Start(ctx)
			return nil
		})
	}

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		Bridge:           actionBridge,
		OutcomeChans:     outcomeChans,
		GameLoopInterval: cfg.TickInterval,
		ActionsPerTick:   cfg.ActionsPerTick,
		Seed:             cfg.Seed,
		AutoStart:        cfg.AutoStart,
		AutoRestart:      cfg.AutoRestart,
		RestartDelay:     cfg.RestartDelay,
	})

	dispatcher := dispatch.NewDispatcher(dispatch.NewDispatcherOptions{
		State:   snapshot.NewSnapshotter(gameManager),
		Actions: actionBridge,
	})
	hub := api.NewHub(api.NewHubOptions{Dispatcher: dispatcher})

	broadcastWorker := workers.NewOutcomeBroadcastWorker(workers.NewOutcomeBroadcastWorkerOptions{
		Broadcaster: hub,
		OutcomeChan: broadcastChan,
	})
	g.Go(func() error {
		broadcastWorker.Start(ctx)
		return nil
	})

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Addr:       cfg.Addr(),
		Dispatcher: dispatcher,
		Hub:        hub,
		Repository: repository,
	})
	g.Go(apiServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return apiServer.Stop(shutdownCtx)
	})

	log.Info("Starting game manager")
	g.Go(func() error {
		return gameManager.Start(ctx)
	})

	return g.Wait()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/services/crawler"
	"github.com/ternarybob/venari/internal/services/knowledge"
	"github.com/ternarybob/venari/internal/services/ledger"
	"github.com/ternarybob/venari/internal/services/llm"
	"github.com/ternarybob/venari/internal/services/pagestore"
	"github.com/ternarybob/venari/internal/services/validator"
	"github.com/ternarybob/venari/internal/storage/badger"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	targetsDir   = flag.String("targets", "", "Targets directory (overrides config)")
	validateOnce = flag.Bool("validate-once", false, "Run the validation pipeline over pending records once and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Venari version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup order: config, CLI overrides, logger, banner
	configPath := *configFile
	if configPath == "" {
		configPath = *configFileC
	}
	if configPath == "" {
		if _, err := os.Stat("venari.toml"); err == nil {
			configPath = "venari.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if *targetsDir != "" {
		config.Targets.Dir = *targetsDir
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.LoadVersionFromFile())

	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", config.Environment).
		Str("targets_dir", config.Targets.Dir).
		Str("llm_provider", config.LLM.DefaultProvider).
		Msg("Starting venari")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("Shutdown requested")
		cancel()
	}()

	runFn := run
	if *validateOnce {
		runFn = runValidateOnce
	}
	if err := runFn(ctx, config, logger); err != nil {
		logger.Fatal().Err(err).Msg("Venari failed")
		os.Exit(1)
	}
	logger.Debug().Int64("goroutines_spawned", common.GetGoroutineCount()).Msg("Shutdown complete")
}

func run(ctx context.Context, config *common.Config, logger arbor.ILogger) error {
	targets, err := common.LoadTargets(config.Targets.Dir)
	if err != nil {
		return err
	}
	logger.Info().Int("targets", len(targets)).Msg("Crawl targets loaded")

	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return err
	}
	defer storageManager.Close()

	knowledgeSvc, err := knowledge.NewService(ctx, storageManager.Knowledge(), logger)
	if err != nil {
		return err
	}
	ledgerSvc := ledger.NewService(storageManager.Ledger(), logger)
	store := pagestore.NewStore(config.Storage.Filesystem.Data, config.Storage.Filesystem.Output, logger)

	provider, err := llm.NewProvider(&config.LLM, logger)
	if err != nil {
		return err
	}
	llmSvc := llm.NewService(provider, logger)
	defer llmSvc.Close()

	fetcher := crawler.NewFetcher(&config.Crawler, logger)
	quarantine := crawler.NewQuarantine(config.Storage.Filesystem.Quarantine, logger)
	pipeline := crawler.NewPipeline(&config.Crawler, fetcher, quarantine, knowledgeSvc, logger)
	crawlSvc := crawler.NewService(&config.Crawler, pipeline, knowledgeSvc, ledgerSvc, store, logger)

	validatorSvc := validator.NewService(&config.Processing, store, knowledgeSvc, ledgerSvc, llmSvc, logger)
	if err := validatorSvc.Start(ctx); err != nil {
		return err
	}
	defer validatorSvc.Stop()

	// One session per target, all concurrent. The fetcher's semaphore
	// keeps total request concurrency bounded across sessions.
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		t := target
		common.SafeGoWithContext(ctx, logger, "crawl:"+t.SiteIdentifier, func(ctx context.Context) {
			defer wg.Done()
			if _, err := crawlSvc.Crawl(ctx, t); err != nil {
				logger.Error().Err(err).Str("site", t.SiteIdentifier).Msg("Crawl session failed")
			}
		})
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil
	}

	// Drain anything the scheduled runs have not picked up yet
	logger.Info().Msg("Crawl sessions complete, draining pending records")
	if err := validatorSvc.ProcessPending(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	reportPatterns(ctx, knowledgeSvc, logger)
	return nil
}

// runValidateOnce drives one validation pass over whatever records are
// pending, without starting any crawl sessions or the schedule
func runValidateOnce(ctx context.Context, config *common.Config, logger arbor.ILogger) error {
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return err
	}
	defer storageManager.Close()

	knowledgeSvc, err := knowledge.NewService(ctx, storageManager.Knowledge(), logger)
	if err != nil {
		return err
	}
	ledgerSvc := ledger.NewService(storageManager.Ledger(), logger)
	store := pagestore.NewStore(config.Storage.Filesystem.Data, config.Storage.Filesystem.Output, logger)

	provider, err := llm.NewProvider(&config.LLM, logger)
	if err != nil {
		return err
	}
	llmSvc := llm.NewService(provider, logger)
	defer llmSvc.Close()

	validatorSvc := validator.NewService(&config.Processing, store, knowledgeSvc, ledgerSvc, llmSvc, logger)
	if err := validatorSvc.ProcessPending(ctx); err != nil {
		return err
	}

	reportPatterns(ctx, knowledgeSvc, logger)
	return nil
}

// reportPatterns logs what the knowledge base learned this run
func reportPatterns(ctx context.Context, knowledgeSvc *knowledge.Service, logger arbor.ILogger) {
	patterns, err := knowledgeSvc.PatternReport(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load pattern report")
		return
	}
	for _, p := range patterns {
		logger.Debug().
			Str("domain", p.Domain).
			Str("pattern", p.Pattern).
			Float64("avg_score", p.AverageScore).
			Int("samples", p.SampleCount).
			Int("failures", p.FailureCount).
			Msg("Learned pattern")
	}
	logger.Info().Int("patterns", len(patterns)).Msg("Knowledge base summary")
}

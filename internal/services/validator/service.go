// Package validator runs the staged post-crawl pipeline over pending
// page records: a parse-failure check, a programmatic quality heuristic,
// an LLM relevance gatekeeper, and deep enrichment for what survives.
// Accepted records become outbound packets; everything else is archived
// to the rejected area with its reason fed back into the knowledge base.
package validator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/normalize"
	"github.com/ternarybob/venari/internal/services/pagestore"
)

// Service implements interfaces.ValidationService
type Service struct {
	config    *common.ProcessingConfig
	store     *pagestore.Store
	knowledge interfaces.KnowledgeService
	ledger    interfaces.LedgerService
	llm       interfaces.LLMService
	logger    arbor.ILogger

	cron    *cron.Cron
	running int32
}

// NewService creates the validation service
func NewService(cfg *common.ProcessingConfig, store *pagestore.Store, knowledge interfaces.KnowledgeService, ledger interfaces.LedgerService, llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		config:    cfg,
		store:     store,
		knowledge: knowledge,
		ledger:    ledger,
		llm:       llm,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules recurring processing runs. Overlapping runs are
// skipped rather than queued.
func (s *Service) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Validation pipeline disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
			s.logger.Debug().Msg("Previous validation run still active, skipping")
			return
		}
		defer atomic.StoreInt32(&s.running, 0)

		if err := s.ProcessPending(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Validation run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule validation runs: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Validation pipeline scheduled")
	return nil
}

// Stop halts the schedule. In-flight runs finish on their own.
func (s *Service) Stop() {
	s.cron.Stop()
}

// ProcessPending validates every pending record once, with bounded
// concurrency across files
func (s *Service) ProcessPending(ctx context.Context) error {
	pending, err := s.store.ListPending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	s.logger.Info().Int("files", len(pending)).Msg("Processing pending records")

	concurrency := s.config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, file := range pending {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(file pagestore.PendingFile) {
			defer wg.Done()
			defer func() { <-sem }()
			s.processFile(ctx, file)
		}(file)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *Service) processFile(ctx context.Context, file pagestore.PendingFile) {
	record, err := s.store.ReadRecord(file.Path)
	if err != nil {
		s.logger.Error().Err(err).Str("file", file.Path).Msg("Unreadable record, rejecting")
		s.reject(file, "")
		return
	}

	target := record.SourceInfo
	if err := target.Resolve(); err != nil {
		s.logger.Warn().Err(err).Str("file", file.Path).Msg("Record has invalid source info, rejecting")
		s.reject(file, "")
		return
	}

	url := record.CrawledContent.URL
	text := record.CrawledContent.ExtractedText

	// Stage 0: attachment parse failures recorded by the crawler
	if strings.Contains(text, normalize.AttachmentFailureMarker) {
		s.recordFailure(ctx, target.BaseDomain, url)
		s.logger.Info().Str("url", url).Msg("Rejected: attachment parsing failure")
		s.reject(file, url)
		return
	}

	// Stage 1: programmatic quality heuristic
	if isLowQualityText(text) {
		s.recordScore(ctx, target.BaseDomain, url, 0.0)
		s.logger.Info().Str("url", url).Msg("Rejected: list-style low quality content")
		s.reject(file, url)
		return
	}

	// Stage 2: LLM gatekeeper
	if !s.llm.IsRelevant(ctx, target.InstructionPrompt, text) {
		s.recordScore(ctx, target.BaseDomain, url, 0.0)
		s.logger.Info().Str("url", url).Msg("Rejected: gatekeeper deemed not relevant")
		s.reject(file, url)
		return
	}

	// Stage 3: deep enrichment, accept on threshold
	enrichment := s.llm.Enrich(ctx, target.InstructionPrompt, text)
	s.recordScore(ctx, target.BaseDomain, url, enrichment.RelevanceScore)

	if enrichment.Failed || enrichment.RelevanceScore < s.config.RelevanceThreshold {
		s.logger.Info().
			Str("url", url).
			Float64("score", enrichment.RelevanceScore).
			Msg("Rejected: below relevance threshold")
		s.reject(file, url)
		return
	}

	s.accept(ctx, file, record, enrichment)
}

func (s *Service) accept(ctx context.Context, file pagestore.PendingFile, record *models.StoredRecord, enrichment *models.Enrichment) {
	packet := models.NewPacket(s.config.AgentID, record, enrichment)
	if _, err := s.store.WritePacket(file.Site, file.Path, packet); err != nil {
		s.logger.Error().Err(err).Str("file", file.Path).Msg("Failed to write packet")
		return
	}

	// Ledger updates only on acceptance so rejected pages get another
	// chance when their content changes
	if err := s.ledger.Record(ctx, record.CrawledContent.URL, record.CrawledContent.ExtractedText); err != nil {
		s.logger.Warn().Err(err).Str("url", record.CrawledContent.URL).Msg("Failed to update ledger")
	}

	if err := s.store.MoveToProcessed(file); err != nil {
		s.logger.Error().Err(err).Str("file", file.Path).Msg("Failed to archive accepted record")
		return
	}

	s.logger.Info().
		Str("url", record.CrawledContent.URL).
		Float64("score", enrichment.RelevanceScore).
		Msg("Record accepted and packaged")
}

func (s *Service) reject(file pagestore.PendingFile, url string) {
	if err := s.store.MoveToRejected(file); err != nil {
		s.logger.Error().Err(err).Str("file", file.Path).Str("url", url).Msg("Failed to archive rejected record")
	}
}

func (s *Service) recordScore(ctx context.Context, domain, url string, score float64) {
	if err := s.knowledge.RecordScore(ctx, domain, url, score); err != nil {
		s.logger.Debug().Err(err).Str("url", url).Msg("Failed to record score")
	}
}

func (s *Service) recordFailure(ctx context.Context, domain, url string) {
	if err := s.knowledge.RecordFailure(ctx, domain, url); err != nil {
		s.logger.Debug().Err(err).Str("url", url).Msg("Failed to record failure")
	}
}

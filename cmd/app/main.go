// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"diy-research-agent/internal/config"
	"diy-research-agent/internal/domain/ports/adapter"
	aiAdapters "diy-research-agent/internal/infra/adapters/ai"
	mailAdapters "diy-research-agent/internal/infra/adapters/mail"
	"diy-research-agent/internal/infra/agents"
	"diy-research-agent/internal/infra/logging"
	"diy-research-agent/internal/infra/metrics"
	red "diy-research-agent/internal/infra/redis"
	"diy-research-agent/internal/infra/status"
	"diy-research-agent/internal/infra/web"
	"diy-research-agent/internal/infra/worker"
	"diy-research-agent/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI and mail adapters)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- AI adapter (OpenAI + Gemini behind a model router) ----
	var ai adapter.AIServiceAdapter
	if cfg.Runtime.Dev {
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Info().Msg("AI adapter: noop")
	} else {
		byProvider := make(map[string]adapter.AIServiceAdapter)
		if cfg.AI.OpenAIKey != "" {
			oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.SearchModel)
			if err != nil {
				log.Fatalf("openai adapter: %v", err)
			}
			byProvider["openai"] = oa
			logger.Info().Str("model", cfg.AI.SearchModel).Msg("AI adapter: OpenAI")
		}
		if cfg.AI.GeminiKey != "" {
			ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.SearchModel, 0)
			if err != nil {
				log.Fatalf("gemini adapter: %v", err)
			}
			byProvider["gemini"] = ga
			logger.Info().Str("base", cfg.AI.GeminiURL).Msg("AI adapter: Gemini")
		}
		if len(byProvider) == 0 {
			log.Fatalf("no AI provider configured: set ai.openai_key or ai.gemini_key in %s", *cfgPath)
		}
		ai = aiAdapters.NewMultiAIAdapter(cfg.AI.DefaultProvider, byProvider)
		ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)
	}

	// ---- Mail adapter ----
	var mail adapter.MailAdapter
	if cfg.Runtime.Dev {
		mail = mailAdapters.NewNoopMailAdapter()
		logger.Info().Msg("mail adapter: noop")
	} else {
		mail, err = mailAdapters.NewSendGridAdapter(cfg.Mail.SendGridKey, cfg.Mail.FromEmail)
		if err != nil {
			log.Fatalf("sendgrid adapter: %v", err)
		}
		logger.Info().Str("from", cfg.Mail.FromEmail).Msg("mail adapter: SendGrid")
	}

	// ---- Optional Redis search cache ----
	var cache agents.SummaryCache
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		cache = red.NewSearchCache(redisClient, cfg.Redis.TTL, logger)
		logger.Info().Msg("search cache: redis")
	}

	// ---- Pipeline wiring ----
	statusStore := status.NewMemoryStore()
	jobs := worker.NewGroup()

	uc := usecase.NewResearchUseCase(
		statusStore,
		usecase.Agents{
			Classifier: agents.NewLLMClassifier(ai, cfg.AI.GuardModel),
			Planner:    agents.NewLLMPlanner(ai, cfg.AI.PlannerModel, cfg.Pipeline.HowManySearches),
			Searcher:   agents.NewLLMSearcher(ai, cfg.AI.SearchModel, cache),
			Writer:     agents.NewLLMWriter(ai, cfg.AI.WriterModel, 0),
			Auditor:    agents.NewLLMAuditor(ai, cfg.AI.GuardModel),
			Mailer:     agents.NewReportMailer(mail),
		},
		jobs,
		cfg.Pipeline.MaxConcurrency,
		cfg.Pipeline.StageTimeout,
		logger,
	)

	// ---- HTTP server ----
	srv := web.NewServer(cfg, uc, logger)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Pipeline.DrainTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := jobs.Drain(shutdownCtx); err != nil {
		logger.Warn().Int64("in_flight", jobs.InFlight()).Msg("drain timed out; jobs abandoned")
	}
	cancel()
}

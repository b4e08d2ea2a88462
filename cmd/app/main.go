// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/rs/zerolog"

	"ai-showcase-client/internal/config"
	"ai-showcase-client/internal/domain/ports/adapter"
	"ai-showcase-client/internal/domain/ports/repository"
	aiAdapters "ai-showcase-client/internal/infra/adapters/ai"
	"ai-showcase-client/internal/infra/i18n"
	"ai-showcase-client/internal/infra/logging"
	"ai-showcase-client/internal/infra/memory"
	"ai-showcase-client/internal/infra/metrics"
	"ai-showcase-client/internal/infra/notify"
	red "ai-showcase-client/internal/infra/redis"
	"ai-showcase-client/internal/infra/sched"
	"ai-showcase-client/internal/infra/security"
	"ai-showcase-client/internal/infra/web"
	"ai-showcase-client/internal/store"
	"ai-showcase-client/internal/usecase"
)

var (
	// Version and Commit are set via ldflags.
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Run wires the client process and blocks until a signal arrives or a
// component fails.
func Run(ctx context.Context, args []string) error {
	// ---- CLI flags ----
	app := kingpin.New("ai-showcase-client", "Client for the AI showcase backend.")
	app.DefaultEnvars()
	cfgPath := app.Flag("config", "Path to YAML config file.").Default("config.yaml").String()
	devMode := app.Flag("dev", "Developer mode: noop backend unless base_url is set, console logs.").Bool()
	addr := app.Flag("addr", "Override http.addr.").String()
	lang := app.Flag("lang", "Notification language catalog (en, de).").Default(i18n.DefaultLang).String()
	if _, err := app.Parse(args[1:]); err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(Version, Commit)

	// ---- Token store ----
	tokens, closeTokens, err := newTokenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTokens()
	authUC := usecase.NewAuthUseCase(tokens, logger)
	if cfg.Auth.Token != "" {
		if _, err := authUC.Login(ctx, cfg.Auth.Token); err != nil {
			logger.Warn().Err(err).Msg("configured auth token rejected")
		}
	}

	// ---- Backend ----
	backend, err := newBackend(cfg, authUC.Token, logger)
	if err != nil {
		return err
	}

	// ---- Store, notifications, use cases ----
	st := store.New(
		store.WithJobCap(cfg.Store.JobCap),
		store.WithMutationHook(func(op string, s store.State) {
			metrics.ObserveStore(op, len(s.RecentJobs), len(s.ChatMessages))
		}),
	)
	toaster := notify.NewToaster(cfg.Notify.Keep, logger)
	refresher := sched.NewQueryRefresher(logger)
	invokeUC := usecase.NewInvocationUseCase(st, backend, toaster, refresher, logger, cfg.Runtime.Dev)
	if *lang != i18n.DefaultLang {
		tr, err := i18n.NewTranslator(i18n.LocalesFS, *lang)
		if err != nil {
			return fmt.Errorf("i18n: %w", err)
		}
		invokeUC.WithTranslator(tr)
	}

	refresher.Register(usecase.QueryJobs, invokeUC.RefreshJobs, cfg.Refresh.JobsInterval)
	refresher.Register(usecase.QueryChatHistory, invokeUC.LoadChatHistory, 0)

	srv := web.NewServer(invokeUC, authUC, st, toaster, logger)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()
		g.Add(
			func() error {
				<-signalCtx.Done()
				logger.Info().Msg("Termination signal received")
				return nil
			},
			func(_ error) { signalCancel() },
		)
	}

	// Query refresher.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				if err := refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("query refresher: %w", err)
				}
				return nil
			},
			func(_ error) { cancel() },
		)
	}

	// HTTP server.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				if err := srv.Run(ctx, cfg.HTTP.Addr); err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			},
			func(_ error) { cancel() },
		)
	}

	err = g.Run()
	logger.Info().Msg("Shutdown complete")
	return err
}

func newTokenStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.TokenStore, func(), error) {
	if cfg.Redis.URL == "" {
		logger.Info().Msg("auth token kept in memory")
		return memory.NewTokenStore(), func() {}, nil
	}

	var cipher security.TokenCipher = security.PlainCipher{}
	if key := cfg.Security.EncryptionKey; key != "" {
		enc, err := security.NewAESCipher(key)
		if err != nil {
			return nil, nil, fmt.Errorf("encryption: %w", err)
		}
		cipher = enc
	} else if !cfg.Runtime.Dev {
		logger.Warn().Msg("security.encryption_key not set; auth token stored unencrypted")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := red.NewClient(pingCtx, &cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("redis close")
		}
	}
	return red.NewTokenStore(client, cipher, cfg.Auth.Profile, cfg.Redis.TTL), closeFn, nil
}

func newBackend(cfg *config.Config, token aiAdapters.TokenSource, logger *zerolog.Logger) (adapter.AIBackend, error) {
	var backend adapter.AIBackend
	if cfg.Backend.BaseURL == "" && cfg.Runtime.Dev {
		logger.Warn().Msg("backend.base_url not set; using noop AI backend")
		backend = aiAdapters.NewNoopAIAdapter(750 * time.Millisecond)
	} else {
		httpBackend, err := aiAdapters.NewHTTPBackend(cfg.Backend.BaseURL, aiAdapters.NewHTTPClient(cfg.Backend.Timeout), token, logger)
		if err != nil {
			return nil, fmt.Errorf("ai backend: %w", err)
		}
		backend = httpBackend
	}
	backend = aiAdapters.NewInstrumentedAI(backend)
	return aiAdapters.NewLimitedAI(backend, cfg.AI.ConcurrentLimit), nil
}

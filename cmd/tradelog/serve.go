package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/tradelog/internal/config"
	"github.com/telhawk-systems/tradelog/internal/gitrepo"
	"github.com/telhawk-systems/tradelog/internal/handlers"
	"github.com/telhawk-systems/tradelog/internal/logging"
	"github.com/telhawk-systems/tradelog/internal/logstore"
	"github.com/telhawk-systems/tradelog/internal/ratelimit"
	"github.com/telhawk-systems/tradelog/internal/server"
	"github.com/telhawk-systems/tradelog/internal/service"
	"github.com/telhawk-systems/tradelog/internal/signature"
	"github.com/telhawk-systems/tradelog/internal/syncer"
)

var (
	serveTrade    bool
	serveTelegram bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook listeners",
	Long:  `Starts the trade and Telegram webhook listeners and the background sync worker.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveTrade, "trade", true, "run the trade listener")
	serveCmd.Flags().BoolVar(&serveTelegram, "telegram", true, "run the Telegram listener")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("tradelog"))
	logging.SetDefault(logger)

	slog.Info("Starting tradelog listeners",
		slog.Int("trade_port", cfg.Server.TradePort),
		slog.Int("telegram_port", cfg.Server.TelegramPort),
		slog.String("logs_dir", cfg.Logs.Dir),
		slog.Bool("secret_configured", cfg.Webhook.Secret != ""),
		slog.Bool("remote_token_configured", cfg.Git.RemoteToken != ""),
	)

	writer := logstore.NewWriter(cfg.Logs.Dir)

	repo := gitrepo.New(gitrepo.Config{
		Dir:         cfg.Git.Dir,
		Branch:      cfg.Git.Branch,
		RemoteToken: cfg.Git.RemoteToken,
		OpTimeout:   cfg.Git.OpTimeout,
		PushTimeout: cfg.Git.PushTimeout,
	})

	coordinator := syncer.New(repo, cfg.Sync.LockFile, logger)
	defer coordinator.Close()

	var limiter ratelimit.RateLimiter = &ratelimit.NoOpRateLimiter{}
	if cfg.RateLimit.Enabled {
		redisLimiter, err := ratelimit.NewRedisRateLimiter(cfg.RateLimit.RedisURL, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		if err != nil {
			slog.Warn("rate limiter unavailable, continuing without rate limiting", logging.Error(err))
		} else {
			limiter = redisLimiter
			slog.Info("rate limiting enabled",
				slog.Int("requests", cfg.RateLimit.Requests),
				slog.Duration("window", cfg.RateLimit.Window),
			)
		}
	}
	defer limiter.Close()

	svc := service.NewIngestService(
		signature.New(cfg.Webhook.Secret),
		writer,
		coordinator,
		cfg.Telegram.ChatID,
		logger,
	)

	probes := handlers.NewProbeHandler(repo, cfg.Logs.Dir, logger)

	var servers []*http.Server
	if serveTrade {
		servers = append(servers, &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.TradePort),
			Handler:      server.NewTradeRouter(handlers.NewTradeHandler(svc, limiter, logger), probes, logger),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		})
	}
	if serveTelegram {
		servers = append(servers, &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.TelegramPort),
			Handler:      server.NewTelegramRouter(handlers.NewTelegramHandler(svc, limiter, logger), probes, logger),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		})
	}
	if len(servers) == 0 {
		return fmt.Errorf("nothing to serve: both listeners disabled")
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			slog.Info("listener started", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("listener %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	slog.Info("Shutting down listeners")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown failed", slog.String("addr", srv.Addr), logging.Error(err))
			}
		}(srv)
	}
	wg.Wait()

	slog.Info("Listeners stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"MarketBreadth/internal/chart"
	"MarketBreadth/internal/config"
	"MarketBreadth/internal/loader"
	"MarketBreadth/internal/notifier"
	"MarketBreadth/internal/recorder"
	"MarketBreadth/internal/scheduler"
	"MarketBreadth/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketBreadth starting...")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	ttl, _ := cfg.CacheTTL()

	preset, err := chart.LookupPreset(cfg.Chart.Preset, cfg.Chart.TrailingRows, cfg.Chart.VisibleMonths)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Init fetcher
	fetcher, err := newFetcher(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init fetcher: %v", err)
	}
	log.Printf("[INFO] data source: %s, cache ttl %v, preset %s", fetcher.Name(), ttl, preset.Name)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ld := loader.NewLoader(fetcher, loader.NewCache(ttl), rec)

	srv, err := web.NewServer(ld, preset)
	if err != nil {
		log.Fatalf("[FATAL] init web server: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Snapshot job and chat commands run only with Telegram or a history store.
	if cfg.TelegramEnabled() || cfg.Database.SQLitePath != "" {
		var n notifier.Notifier = notifier.LogNotifier{}
		var tn *notifier.TelegramNotifier
		if cfg.TelegramEnabled() {
			tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
			n = tn
		}

		sched := scheduler.NewScheduler(ctx, ld, n, rec, preset.RollingWindow)
		if err := sched.RegisterAll(cfg.Schedule.SnapshotCron); err != nil {
			log.Fatalf("[FATAL] register cron tasks: %v", err)
		}
		sched.Start()
		defer sched.Stop()

		if tn != nil {
			go tn.StartPolling(ctx, sched.HandleCommand)
		}

		if os.Getenv("RUN_ON_START") == "true" {
			log.Println("[INFO] RUN_ON_START enabled, taking snapshot now")
			go sched.RunSnapshotNow()
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[INFO] dashboard listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[ERROR] HTTP server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] shutdown: %v", err)
	}
	log.Println("[INFO] MarketBreadth stopped")
}

func newFetcher(cfg *config.Config) (loader.Fetcher, error) {
	switch {
	case cfg.Sheet.Mock:
		return loader.NewMockFetcher(cfg.Sheet.MockDays), nil
	case cfg.Sheet.CSVURL != "":
		return loader.NewURLFetcher(cfg.Sheet.CSVURL, cfg.Sheet.APIKey, cfg.Proxy), nil
	default:
		return loader.NewSheetsFetcher(cfg.Sheet.URL, cfg.Sheet.Name, cfg.Proxy)
	}
}

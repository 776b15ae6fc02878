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

	"github.com/whisper/chat-bot/internal/config"
	"github.com/whisper/chat-bot/internal/dispatch"
	"github.com/whisper/chat-bot/internal/i18n"
	"github.com/whisper/chat-bot/internal/message"
	"github.com/whisper/chat-bot/internal/messaging"
	"github.com/whisper/chat-bot/internal/metrics"
	"github.com/whisper/chat-bot/internal/moderation"
	"github.com/whisper/chat-bot/internal/protocol"
	"github.com/whisper/chat-bot/internal/settings"
	"github.com/whisper/chat-bot/internal/source"
)

func main() {
	log.Println("Starting chat bot moderation service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// --- Settings ---
	store, closeStore, err := openSettings(cfg)
	if err != nil {
		log.Fatalf("failed to open settings store: %v", err)
	}
	var cache *settings.CachedStore
	if cfg.SettingsCacheTTL > 0 {
		cache = settings.NewCachedStore(store, cfg.SettingsCacheSize, cfg.SettingsCacheTTL)
		store = cache
	}

	// --- Localization ---
	lang, err := i18n.New(cfg.Language)
	if err != nil {
		log.Fatalf("failed to load translations: %v", err)
	}

	// --- NATS ---
	natsConfig := messaging.DefaultNATSConfig()
	natsConfig.URL = cfg.NATSURL
	natsConfig.Name = "chat-bot-moderator"

	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	adapters := make([]message.SourceAdapter, 0, len(cfg.Platforms))
	for _, p := range cfg.Platforms {
		a, err := source.New(p, natsClient)
		if err != nil {
			log.Fatalf("failed to create %s adapter: %v", p, err)
		}
		adapters = append(adapters, a)
	}

	moderator := moderation.New(store, lang)
	dispatcher := dispatch.NewDispatcher(moderator, adapters...)

	ctx, cancel := context.WithCancel(context.Background())

	// Each platform subscription delivers its events in order; platforms are
	// handled concurrently.
	for _, p := range cfg.Platforms {
		platform := p
		err := natsClient.SubscribeInbound(platform.String(), func(data []byte) {
			if _, err := dispatcher.Dispatch(ctx, data); err != nil {
				log.Printf("[moderator] %s event failed: %v", platform, err)
			}
		})
		if err != nil {
			log.Fatalf("failed to subscribe to %s messages: %v", platform, err)
		}
	}

	if cache != nil {
		err := natsClient.SubscribeSettingsChanged(func(data []byte) {
			ev, err := protocol.ParseSettingsChanged(data)
			if err != nil {
				log.Printf("[moderator] invalid settings event: %v", err)
				return
			}
			cache.Invalidate(ev.Platform, ev.OrgID)
		})
		if err != nil {
			log.Fatalf("failed to subscribe to settings changes: %v", err)
		}
	}

	// --- Metrics ---
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server error: %v", err)
		}
	}()

	log.Printf("Chat bot moderation service running")
	log.Printf("  nats_url:     %s", natsConfig.URL)
	log.Printf("  platforms:    %v", cfg.Platforms)
	log.Printf("  language:     %s", lang.Language())
	log.Printf("  cache_ttl:    %s", cfg.SettingsCacheTTL)
	log.Printf("  metrics_addr: %s", cfg.MetricsAddr)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	natsClient.Close()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown: %v", err)
	}

	if err := closeStore(); err != nil {
		log.Printf("settings store close: %v", err)
	}
}

// openSettings opens the Postgres settings store when DATABASE_URL is set and
// the Redis one otherwise.
func openSettings(cfg config.Config) (settings.Store, func() error, error) {
	if cfg.DatabaseURL != "" {
		if err := settings.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err := settings.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("  settings:     postgres")
		return settings.NewPostgresStore(db), db.Close, nil
	}

	rs, err := settings.NewRedisStore(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("  settings:     redis %s", cfg.RedisAddr)
	return rs, rs.Close, nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/activity"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/internal/visitor"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

const (
	sweepEvery   = time.Minute
	tokenMaxIdle = 30 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("config_load_error", "error", err)
		os.Exit(1)
	}
	l := logging.New(cfg.LogLevel)
	ctx, stop := context.WithCancel(logging.IntoContext(context.Background(), l))
	defer stop()

	gdb, err := db.Open(ctx, cfg.TokenDB)
	if err != nil {
		l.Error("token_db_open_error", "error", err)
		os.Exit(1)
	}
	tokens, err := tokenstore.NewGormStore(gdb)
	if err != nil {
		l.Error("token_db_migrate_error", "error", err)
		os.Exit(1)
	}

	var events activity.Publisher = activity.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		if err := activity.EnsureTopic(cfg.KafkaBrokers[0], cfg.KafkaTopic, 3); err != nil {
			l.Warn("ensure_topic_error", "topic", cfg.KafkaTopic, "error", err)
		}
		events = activity.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		l.Info("activity_enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	visitors := visitor.NewRegistry(visitor.Options{
		BaseURL: cfg.ShopAPIURL,
		Timeout: cfg.ShopAPITimeout,
		TTL:     cfg.VisitorTTL,
	}, tokens)
	go visitors.Run(ctx, sweepEvery)
	go purgeTokens(ctx, tokens)

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CookieSecure

	sessionKey := cfg.SessionKey
	if sessionKey == nil {
		l.Warn("session_key_generated", "reason", "SESSION_KEY unset or shorter than 32 bytes; visitors lose their session on restart")
		sessionKey = securecookie.GenerateRandomKey(32)
	}

	e := echo.New()
	e.HideBanner = true
	httpserver.Register(e, &httpserver.Deps{
		Visitors: visitors,
		Events:   events,
		Logger:   l,
		CSRF:     csrfCfg,
		Cookies:  httpserver.NewCookieStore(sessionKey, cfg.CookieSecure),
		Metrics:  metrics.New(),
		Ready: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ShopAPITimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		l.Info("listening", "addr", srv.Addr, "api", cfg.ShopAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http_server_error", "error", err)
			stop()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	go func() {
		<-quit
		l.Warn("force_exit")
		os.Exit(1)
	}()

	l.Info("shutting_down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}
	if err := events.Close(); err != nil {
		l.Error("activity_close_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		l.Error("db_close_error", "error", err)
	}
	l.Info("shutdown_complete")
}

// purgeTokens drops tokens nobody has refreshed for tokenMaxIdle.
func purgeTokens(ctx context.Context, store *tokenstore.GormStore) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := store.Purge(ctx, time.Now().Add(-tokenMaxIdle))
			if err != nil {
				logging.FromContext(ctx).Error("purge_tokens_error", "error", err)
				continue
			}
			if n > 0 {
				logging.FromContext(ctx).Info("tokens_purged", "count", n)
			}
		}
	}
}

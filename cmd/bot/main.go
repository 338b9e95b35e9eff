// Command bot runs the daily "Tu préfères ?" bot: it connects to the gateway,
// posts a scraped question every day at the stored time, tallies the button
// votes and serves an optional ops HTTP endpoint.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/wyr-bot/internal/bot"
	"github.com/tbourn/wyr-bot/internal/config"
	httpapi "github.com/tbourn/wyr-bot/internal/http"
	"github.com/tbourn/wyr-bot/internal/observability"
	"github.com/tbourn/wyr-bot/internal/repo"
	"github.com/tbourn/wyr-bot/internal/scheduler"
	"github.com/tbourn/wyr-bot/internal/scrape"
	"github.com/tbourn/wyr-bot/internal/services"
	"github.com/tbourn/wyr-bot/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
}

func run() error {
	// .env is optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		sysutil.SetupLogger(os.Stderr, "info", false)
		return err
	}
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
	log.Info().Str("version", ver).Str("db_driver", cfg.DBDriver).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(db); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()
	if cfg.OTEL.Enabled {
		if err := repo.Instrument(db); err != nil {
			return err
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	s := bot.NewState(cfg.Discord.Token)

	// Without ERROR_NOTIFY_USER_ID the notifier only drops errors; they are
	// logged where they occur.
	notifier := services.NewNotifier(s, cfg.Discord.ErrorNotifyID, cfg.Notify.Rate, cfg.Notify.Burst)

	tallies := &services.TallyService{DB: db}
	schedules := &services.ScheduleService{DB: db, Default: cfg.Schedule.Default}
	collectors := services.NewCollectors(tallies, s, notifier, cfg.Schedule.CollectorTTL)

	source := scrape.NewSource(cfg.Scrape.Timeout, cfg.Scrape.UserAgent)
	source.OnError = notifier.Notify

	poster := &services.DailyPoster{
		DB:         db,
		Source:     source,
		Messenger:  s,
		Collectors: collectors,
		Notifier:   notifier,
	}
	commands := &services.CommandHandler{
		Messenger:  s,
		Poster:     poster,
		Schedules:  schedules,
		Notifier:   notifier,
		Authorized: cfg.Discord.AuthorizedUserID,
	}

	b := &bot.Bot{
		Platform:     s,
		Commands:     commands,
		Collectors:   collectors,
		Poster:       poster,
		Notifier:     notifier,
		DailyChannel: cfg.Discord.DailyChannelID,
		Status:       cfg.Discord.Status,
	}
	b.Attach(ctx, s)

	trigger := scheduler.New(cfg.Schedule.Location, b.FireDaily)
	if err := trigger.Start(ctx, schedules); err != nil {
		return err
	}
	defer trigger.Stop()
	if cfg.Schedule.LiveReload {
		commands.Rescheduler = trigger
	}
	if cfg.Schedule.Retention > 0 {
		retention := cfg.Schedule.Retention
		if err := trigger.AddRetention(func(ctx context.Context) {
			n, err := tallies.Prune(ctx, retention)
			if err != nil {
				log.Error().Err(err).Msg("prune votes")
				notifier.Notify(ctx, err)
				return
			}
			log.Info().Int64("deleted", n).Dur("retention", retention).Msg("pruned old votes")
		}); err != nil {
			return err
		}
	}

	if err := s.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("close gateway")
		}
	}()
	defer collectors.Close()

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		engine := httpapi.NewEngine(cfg)
		httpapi.RegisterRoutes(engine, db, cfg)
		srv = httpapi.NewServer(cfg, engine)
		go func() {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("ops http listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("ops http server")
				stop()
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	trigger.Stop()

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("ops http shutdown")
		}
	}
	return nil
}

// cmd/discord/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"pursebot/internal/command"
	"pursebot/internal/commands/core"
	economycmds "pursebot/internal/commands/economy"
	gamecmds "pursebot/internal/commands/games"
	"pursebot/internal/config"
	"pursebot/internal/discord"
	"pursebot/internal/economy"
	"pursebot/internal/events"
	"pursebot/internal/games"
	"pursebot/internal/logging"
	"pursebot/internal/metrics"
	"pursebot/internal/storage"
	"pursebot/internal/version"
	"pursebot/pkg/jobmgr"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.New()
	if err != nil {
		fallback := logging.New("")
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logging.New(cfg.LogFile)
	log.Info().Str("version", version.AppVersion).Msgf("starting %s", version.AppName)

	if cfg.DiscordToken == "" {
		log.Fatal().Msg("DISCORD_TOKEN is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.StoragePath, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open ledger store")
	}
	defer store.Close()

	m := metrics.New()

	recorder, err := events.New(cfg.EventsPath, cfg.Economy.EventLogLimit, log, func() {
		m.EventsDropped.Inc()
	})
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.EventsPath).Msg("failed to open event log")
	}
	defer recorder.Close()

	engine := economy.New(store, cfg.Economy, log, recorder.Emit)
	dealer := games.NewDealer(time.Now().UnixNano())

	registry := command.NewRegistry()
	core.Register(registry)
	economycmds.Register(registry)
	gamecmds.Register(registry)

	gate := command.NewCooldownGate()
	usage := command.NewUsageTracker(m.ObserveCommand)
	flood := command.NewFloodGate(30, 5)

	bot := discord.New(cfg, log)
	dispatcher := command.NewDispatcher(registry, gate, usage, flood, command.Env{
		Economy:   engine,
		Games:     dealer,
		Messenger: bot,
		Events:    recorder,
		Emit:      recorder.Emit,
	}, cfg, log)
	dispatcher.SetDurationObserver(func(name string, d time.Duration) {
		m.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
	})
	bot.SetDispatcher(dispatcher)

	jobs := jobmgr.NewManager(func(msg string) {
		log.Debug().Str("job", msg).Msg("job status")
	})

	errCh := make(chan error, 1)
	_ = jobs.Start(ctx, "cooldown-sweeper", func(ctx context.Context) error {
		gate.RunSweeper(ctx, sweepInterval, log)
		return nil
	})
	_ = jobs.Start(ctx, "metrics", func(ctx context.Context) error {
		m.Serve(ctx, cfg.MetricsAddr, log)
		return nil
	})
	_ = jobs.Start(ctx, "discord", func(ctx context.Context) error {
		err := bot.Run(ctx)
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
		return err
	})

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("discord bot error")
	}
	stop()
	jobs.Wait()

	log.Info().Msg("exited cleanly")
}

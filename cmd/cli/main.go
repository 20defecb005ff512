// cmd/cli/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pursebot/internal/command"
	"pursebot/internal/commands/core"
	economycmds "pursebot/internal/commands/economy"
	gamecmds "pursebot/internal/commands/games"
	"pursebot/internal/config"
	"pursebot/internal/console"
	"pursebot/internal/economy"
	"pursebot/internal/events"
	"pursebot/internal/games"
	"pursebot/internal/logging"
	"pursebot/internal/storage"
	"pursebot/internal/version"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	var asUser string

	root := &cobra.Command{
		Use:           "pursebot",
		Short:         "Local console for the pursebot economy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&asUser, "as", "", "act as this username (default CONSOLE_USER)")

	root.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "Interactive console against the local ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, cleanup, err := buildEnv(asUser)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repl := &console.REPL{
				Dispatcher: env.dispatcher,
				User:       env.user,
				Prefix:     env.cfg.Prefix,
				In:         os.Stdin,
				Out:        os.Stdout,
				Log:        env.log,
			}
			if err := repl.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "exec <command line>",
		Short: "Run a single command against the local ledger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			env, cleanup, err := buildEnv(asUser)
			if err != nil {
				return err
			}
			defer cleanup()

			line := strings.Join(args, " ")
			if !strings.HasPrefix(line, env.cfg.Prefix) {
				line = env.cfg.Prefix + line
			}
			res := env.dispatcher.Dispatch(env.user, line, time.Now())
			if res == nil {
				return fmt.Errorf("not a command: %s", line)
			}
			fmt.Println(res.Message)
			if !res.Success {
				os.Exit(1)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("%s %s (built %s)\n", version.AppName, version.AppVersion, version.BuildDate)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type cliEnv struct {
	cfg        *config.Config
	dispatcher *command.Dispatcher
	user       string
	log        zerolog.Logger
}

// buildEnv wires a full local stack: ledger, event log, engine, registry
// and dispatcher, with the console standing in for the messaging layer.
func buildEnv(asUser string) (*cliEnv, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(cfg.LogFile)

	store, err := storage.New(cfg.StoragePath, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger store: %w", err)
	}

	recorder, err := events.New(cfg.EventsPath, cfg.Economy.EventLogLimit, log, nil)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to open event log: %w", err)
	}

	engine := economy.New(store, cfg.Economy, log, recorder.Emit)
	dealer := games.NewDealer(time.Now().UnixNano())

	registry := command.NewRegistry()
	core.Register(registry)
	economycmds.Register(registry)
	gamecmds.Register(registry)

	gate := command.NewCooldownGate()
	usage := command.NewUsageTracker(nil)

	user := asUser
	if user == "" {
		user = cfg.ConsoleUser
	}

	dispatcher := command.NewDispatcher(registry, gate, usage, nil, command.Env{
		Economy:   engine,
		Games:     dealer,
		Messenger: &console.Messenger{Out: os.Stdout},
		Events:    recorder,
		Emit:      recorder.Emit,
	}, cfg, log)

	cleanup := func() {
		_ = recorder.Close()
		_ = store.Close()
	}
	return &cliEnv{cfg: cfg, dispatcher: dispatcher, user: user, log: log}, cleanup, nil
}

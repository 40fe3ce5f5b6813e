package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	charmlog "charm.land/log/v2"
	kitlog "github.com/go-kit/log"
	"github.com/nakamauwu/chatsync/config"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config.Config
	rootFlags := cfg.FlagSet()

	c := &cli{cfg: &cfg}
	root := &ff.Command{
		Name:      "chatsync",
		Usage:     "chatsync [FLAGS] <SUBCOMMAND> ...",
		ShortHelp: "real-time chat and notifications client",
		Flags:     rootFlags,
		Subcommands: []*ff.Command{
			c.loginCommand(rootFlags),
			c.logoutCommand(rootFlags),
			c.watchCommand(rootFlags),
			c.sendCommand(rootFlags),
			c.conversationsCommand(rootFlags),
			c.historyCommand(rootFlags),
			c.notificationsCommand(rootFlags),
			c.downloadCommand(rootFlags),
		},
		Exec: func(context.Context, []string) error {
			return ff.ErrHelp
		},
	}

	err := config.Parse(root, os.Args[1:])
	if errors.Is(err, ff.ErrHelp) {
		fmt.Println(ffhelp.Command(root.GetSelected()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	level := charmlog.InfoLevel
	if cfg.Debug {
		level = charmlog.DebugLevel
	}
	c.errLogger = slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	}))
	c.infoLogger = slog.New(charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	}))
	c.httpLogger = kitlog.With(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)),
		"ts", kitlog.DefaultTimestampUTC,
		"component", "http",
	)

	err = root.Run(ctx)
	if errors.Is(err, ff.ErrHelp) {
		fmt.Println(ffhelp.Command(root.GetSelected()))
		return nil
	}
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/hako/durafmt"
	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/transport/socket"
	"github.com/peterbourgon/ff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

var watchedCategories = []dispatch.Category{
	dispatch.CategoryNewMessage,
	dispatch.CategoryMessageDelivered,
	dispatch.CategoryMessageRead,
	dispatch.CategoryMessageDeleted,
	dispatch.CategoryReactionAdded,
	dispatch.CategoryReactionRemoved,
	dispatch.CategoryTypingStart,
	dispatch.CategoryTypingStop,
	dispatch.CategoryUserStatusChange,
	dispatch.CategoryPresenceBulk,
	dispatch.CategoryMessageNotification,
	dispatch.CategoryNotification,
}

func (c *cli) watchCommand(parent *ff.FlagSet) *ff.Command {
	return &ff.Command{
		Name:      "watch",
		ShortHelp: "stay connected and log every real-time event",
		Flags:     ff.NewFlagSet("watch").SetParent(parent),
		Exec: func(ctx context.Context, args []string) error {
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return c.watch(ctx, a)
		},
	}
}

func (c *cli) watch(ctx context.Context, a *app) error {
	start := time.Now()

	for _, category := range watchedCategories {
		_, unregister := a.registry.Register(category, "watch", func(payload any, subtype string) {
			c.infoLogger.Info(category.String(), "subtype", subtype, "payload", fmt.Sprintf("%+v", payload))
		})
		defer unregister()
	}

	defer a.session.OnStateChange(func(state socket.State) {
		c.infoLogger.Info("connection", "state", state)
	})()

	if err := a.session.Connect(ctx, a.cred); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := a.svc.Conversations.Refresh(ctx); err != nil {
		return err
	}

	for _, conv := range a.svc.Conversations.Conversations() {
		if err := a.session.Join(ctx, conv.ID); err != nil {
			c.errLogger.Warn("could not join conversation", "conversation", conv.ID, "err", err)
		}
	}

	c.infoLogger.Info("watching",
		"user", a.cred.User.Name,
		"conversations", len(a.session.Rooms()),
		"took", time.Since(start),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.svc.Run(gctx)
	})

	g.Go(func() error {
		c.drainErrs(gctx, a)
		return nil
	})

	if c.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, c.cfg.MetricsAddr, a.prom, c.infoLogger)
		})
	}

	err := g.Wait()

	c.infoLogger.Info("stopped watching",
		"uptime", durafmt.Parse(time.Since(start)).LimitFirstN(2).String(),
	)
	return err
}

// drainErrs logs background failures until ctx is done. A closed channel is
// dropped from the select.
func (c *cli) drainErrs(ctx context.Context, a *app) {
	sessionErrs, svcErrs, callbackErrs := a.session.Errs(), a.svc.Errs(), a.registry.Errs()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-sessionErrs:
			if !ok {
				sessionErrs = nil
				continue
			}
			c.errLogger.Error("connection", "err", err)
		case err, ok := <-svcErrs:
			if !ok {
				svcErrs = nil
				continue
			}
			c.errLogger.Error("sync", "err", err)
		case err, ok := <-callbackErrs:
			if !ok {
				callbackErrs = nil
				continue
			}
			c.errLogger.Error("callback", "err", err)
		}
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	srv := &nethttp.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serve metrics: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}

	if err := <-errs; err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

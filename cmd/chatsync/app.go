package main

import (
	"context"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/nakamauwu/chatsync/auth"
	"github.com/nakamauwu/chatsync/config"
	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/metrics"
	"github.com/nakamauwu/chatsync/minio"
	"github.com/nakamauwu/chatsync/service"
	"github.com/nakamauwu/chatsync/transport/http"
	"github.com/nakamauwu/chatsync/transport/socket"
	"github.com/nakamauwu/chatsync/types"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	backgroundTimeout = 15 * time.Second
	pollInterval      = 250 * time.Millisecond
)

type cli struct {
	cfg        *config.Config
	errLogger  *slog.Logger
	infoLogger *slog.Logger
	httpLogger kitlog.Logger
}

// app is everything a logged in subcommand works with.
type app struct {
	cred     types.Credential
	store    *auth.Store
	client   *http.Client
	registry *dispatch.Registry
	session  *socket.Session
	svc      *service.Service
	prom     *prometheus.Registry
}

func (c *cli) credentialStore() (*auth.Store, error) {
	path := c.cfg.StateFile
	if path == "" {
		var err error
		path, err = auth.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return auth.NewStore(path), nil
}

func (c *cli) restClient(store *auth.Store) (*http.Client, error) {
	return http.New(http.Config{
		BaseURL: c.cfg.APIURL,
		Token:   store.Token,
		Timeout: c.cfg.RequestTimeout,
		Logger:  c.httpLogger,
		OnUnauthorized: func() {
			if err := store.Clear(); err != nil {
				c.errLogger.Error("could not clear rejected credential", "err", err)
				return
			}
			c.errLogger.Warn("credential rejected, logged out")
		},
	})
}

func (c *cli) dialer() (socket.Dialer, error) {
	codec, err := socket.CodecByName(c.cfg.Codec)
	if err != nil {
		return nil, err
	}

	base := c.cfg.SocketBaseURL()
	ws := socket.WebsocketDialer{URL: base + "/realtime/ws", Codec: codec}
	poll := socket.LongPollDialer{
		BaseURL:     base,
		HTTPClient:  &nethttp.Client{Timeout: c.cfg.ConnectTimeout},
		MinInterval: pollInterval,
	}

	switch c.cfg.Transport {
	case "websocket":
		return ws, nil
	case "longpoll":
		return poll, nil
	case "nats":
		return socket.NATSDialer{URL: c.cfg.NATSURL, Codec: codec}, nil
	}
	return socket.FallbackDialer{Dialers: []socket.Dialer{ws, poll}, Logger: c.errLogger}, nil
}

func (c *cli) objects() (service.ObjectOpener, error) {
	if c.cfg.MinioEndpoint == "" {
		return nil, nil
	}
	m, err := minio.Dial(minio.Config{
		Endpoint:  c.cfg.MinioEndpoint,
		AccessKey: c.cfg.MinioAccessKey,
		SecretKey: c.cfg.MinioSecretKey,
		Secure:    c.cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// newApp loads the stored credential and builds the stores on top of the
// REST client and a not yet connected push session.
func (c *cli) newApp(ctx context.Context) (*app, error) {
	store, err := c.credentialStore()
	if err != nil {
		return nil, err
	}

	cred, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load credential (run chatsync login): %w", err)
	}

	client, err := c.restClient(store)
	if err != nil {
		return nil, err
	}

	dialer, err := c.dialer()
	if err != nil {
		return nil, err
	}

	objects, err := c.objects()
	if err != nil {
		return nil, err
	}

	maxFileSize, err := c.cfg.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	prom := prometheus.NewRegistry()
	m := metrics.New(prom)
	registry := dispatch.NewRegistry(c.errLogger, m)

	session := socket.NewSession(socket.SessionConfig{
		Dialer:            dialer,
		Registry:          registry,
		Logger:            c.errLogger,
		Metrics:           m,
		ConnectTimeout:    c.cfg.ConnectTimeout,
		ReconnectAttempts: c.cfg.ReconnectAttempts,
		ReconnectDelay:    c.cfg.ReconnectDelay,
		ReconnectDelayMax: c.cfg.ReconnectDelayMax,
	})

	svc := service.New(&service.Config{
		Messages:          client,
		Conversations:     client,
		Attachments:       client,
		Notifications:     client,
		Emitter:           session,
		Registry:          registry,
		Objects:           objects,
		Alerter:           service.AlerterFunc(c.alert),
		Me:                cred.User,
		Logger:            c.errLogger,
		Metrics:           m,
		MaxFileSize:       maxFileSize,
		RefreshInterval:   c.cfg.RefreshInterval,
		TypingQuiet:       c.cfg.TypingQuiet,
		TypingExpiry:      c.cfg.TypingExpiry,
		BaseCtx:           ctx,
		BackgroundTimeout: backgroundTimeout,
	})

	return &app{
		cred:     cred,
		store:    store,
		client:   client,
		registry: registry,
		session:  session,
		svc:      svc,
		prom:     prom,
	}, nil
}

// connect opens the push session. Commands that only need REST keep
// working without it, so a failure is only logged.
func (a *app) connect(ctx context.Context, logger *slog.Logger) bool {
	if err := a.session.Connect(ctx, a.cred); err != nil {
		logger.Warn("push connection unavailable", "err", err)
		return false
	}
	return true
}

func (a *app) Close() error {
	err := a.session.Close()
	if svcErr := a.svc.Close(); err == nil {
		err = svcErr
	}
	return err
}

func (c *cli) alert(n types.Notification) {
	c.infoLogger.Info(n.Title, "type", n.Type, "message", n.Message)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Packages
	client "github.com/mutablelogic/go-client"
	httpclient "github.com/mutablelogic/go-dms/pkg/httpclient"
	version "github.com/mutablelogic/go-dms/pkg/version"
	zerolog "github.com/rs/zerolog"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	Endpoint string        `name:"endpoint" env:"DMS_ENDPOINT" default:"http://localhost:8080/api/dms" help:"API endpoint"`
	Token    string        `name:"token" env:"DMS_TOKEN" help:"Bearer token"`
	Timeout  time.Duration `name:"timeout" env:"DMS_TIMEOUT" default:"30s" help:"Request timeout (uploads and downloads are not limited)"`
	Debug    bool          `name:"debug" help:"Enable debug output"`

	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func NewApp(app Globals) *Globals {
	// This context is cancelled when the process receives a SIGINT or SIGTERM
	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Console logging, raised to debug with --debug
	level := zerolog.InfoLevel
	if app.Debug {
		level = zerolog.DebugLevel
	}
	app.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	return &app
}

func (app *Globals) Close() error {
	app.cancel()
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (app *Globals) Context() context.Context {
	return app.ctx
}

// Client builds an API client from the global flags
func (app *Globals) Client() (*httpclient.Client, error) {
	clientopts := []client.ClientOpt{}
	if app.Debug {
		clientopts = append(clientopts, client.OptTrace(os.Stderr, false))
	}
	if app.Timeout > 0 {
		clientopts = append(clientopts, client.OptTimeout(app.Timeout))
	}
	opts := []httpclient.Opt{httpclient.WithUserAgent(version.UserAgent(execName()))}
	if app.Token != "" {
		opts = append(opts, httpclient.WithToken(app.Token))
	}
	return httpclient.NewWithClient(app.Endpoint, clientopts, opts...)
}

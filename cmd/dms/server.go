package main

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	// Packages
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	backend "github.com/mutablelogic/go-dms/pkg/backend"
	config "github.com/mutablelogic/go-dms/pkg/config"
	httphandler "github.com/mutablelogic/go-dms/pkg/httphandler"
	manager "github.com/mutablelogic/go-dms/pkg/manager"
	metrics "github.com/mutablelogic/go-dms/pkg/metrics"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	version "github.com/mutablelogic/go-dms/pkg/version"
	httprouter "github.com/mutablelogic/go-server/pkg/httprouter"
	httpserver "github.com/mutablelogic/go-server/pkg/httpserver"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
	prometheus "github.com/prometheus/client_golang/prometheus"
	collectors "github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	zerolog "github.com/rs/zerolog"
	otel "go.opentelemetry.io/otel"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ServerCommands struct {
	Server RunServerCommand `cmd:"" name:"server" group:"SERVER" help:"Run the HTTP server"`
	Token  TokenCommand     `cmd:"" name:"token" group:"SERVER" help:"Issue a bearer token"`
}

type RunServerCommand struct {
	Config  string `name:"config" short:"c" env:"DMS_CONFIG" type:"existingfile" help:"YAML configuration file" optional:""`
	Listen  string `name:"listen" help:"Listen address, overrides the configuration"`
	Backend string `name:"backend" help:"Storage URL (mem://name, file://name/path, s3://bucket), overrides the configuration"`
	Secret  string `name:"secret" env:"DMS_SECRET" help:"Secret for bearer tokens and signed URLs, overrides the configuration"`
}

type TokenCommand struct {
	User   string        `arg:"" help:"User name"`
	Role   string        `name:"role" default:"viewer" enum:"viewer,editor,admin" help:"Role (${enum})"`
	TTL    time.Duration `name:"ttl" default:"24h" help:"Token lifetime, zero for no expiry"`
	Secret string        `name:"secret" env:"DMS_SECRET" required:"" help:"Secret shared with the server"`
	Issuer string        `name:"issuer" help:"Token issuer"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *RunServerCommand) Run(app *Globals) error {
	// Load the configuration
	cfg := config.Default()
	if cmd.Config != "" {
		var err error
		if cfg, err = config.Load(cmd.Config); err != nil {
			return err
		}
	}
	if cmd.Listen != "" {
		cfg.Listen = cmd.Listen
	}
	if cmd.Backend != "" {
		cfg.Backend = cmd.Backend
	}
	if cmd.Secret != "" {
		cfg.Secret = cmd.Secret
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	expiry, err := cfg.PresignExpiry()
	if err != nil {
		return err
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Storage
	backendOpts, err := cmd.backendOpts(app, cfg)
	if err != nil {
		return err
	}

	// Create the manager
	mgr, err := manager.New(app.ctx,
		manager.WithBackend(app.ctx, cfg.Backend, backendOpts...),
		manager.WithLogger(app.logger),
		manager.WithMetrics(metrics.New(registry)),
		manager.WithTracer(otel.Tracer(schema.SchemaName)),
		manager.WithExpiry(expiry),
		manager.WithMaxSize(cfg.MaxSize),
		manager.WithCapacity(cfg.Capacity),
	)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}
	defer mgr.Close()

	// Create the hierarchy
	if n, err := mgr.Seed(app.ctx, cfg.SeedNodes()); err != nil {
		return fmt.Errorf("failed to seed hierarchy: %w", err)
	} else if n > 0 {
		app.logger.Info().Int("nodes", n).Msg("seeded hierarchy")
	}

	authority, err := auth.New([]byte(cfg.Secret), "")
	if err != nil {
		return err
	}
	return serve(app, cfg, mgr, authority, registry)
}

func (cmd *TokenCommand) Run(app *Globals) error {
	authority, err := auth.New([]byte(cmd.Secret), cmd.Issuer)
	if err != nil {
		return err
	}
	token, err := authority.NewToken(cmd.User, schema.Role(cmd.Role), cmd.TTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// serve registers HTTP handlers and runs the server until the context is done
func serve(app *Globals, cfg *config.Config, mgr *manager.Manager, authority *auth.Authority, registry *prometheus.Registry) error {
	router, err := httprouter.NewRouter(app.ctx, cfg.Prefix, cfg.Origin, schema.SchemaName, version.Version())
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}
	if err := httphandler.RegisterHandlers(mgr, authority, router); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	if err := router.RegisterFunc("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP, true, types.Ptr(openapi.PathItem{
		Get: &openapi.Operation{
			Description: "Prometheus metrics",
		},
	})); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	srv, err := httpserver.New(cfg.Listen, accessLog(app.logger, router), nil)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	app.logger.Info().
		Str("version", version.Version()).
		Str("listen", cfg.Listen).
		Str("prefix", cfg.Prefix).
		Str("storage", mgr.StorageURL().String()).
		Msg("dms started")
	if err := srv.Run(app.ctx); err != nil {
		return err
	}
	app.logger.Info().Msg("dms stopped")
	return nil
}

// backendOpts returns the storage options: AWS configuration for s3://
// backends, and a URL signer pointing at the transfer handler otherwise
func (cmd *RunServerCommand) backendOpts(app *Globals, cfg *config.Config) ([]backend.Opt, error) {
	if strings.HasPrefix(cfg.Backend, "s3:") {
		awscfg, err := cfg.S3.AWSConfig(app.ctx)
		if err != nil {
			return nil, err
		}
		opts := []backend.Opt{backend.WithAWSConfig(awscfg)}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, backend.WithEndpoint(cfg.S3.Endpoint))
		}
		if cfg.S3.Anonymous {
			opts = append(opts, backend.WithAnonymous())
		}
		return opts, nil
	}

	transfer := cfg.TransferURL()
	if transfer == "" {
		endpoint, err := localEndpoint(cfg.Listen, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		transfer = endpoint + "/transfer"
		app.logger.Warn().Str("url", transfer).Msg("public_url is not set, signed URLs are only valid locally")
	}
	opts := []backend.Opt{backend.WithSigner(transfer, []byte(cfg.Secret))}
	if strings.HasPrefix(cfg.Backend, "file:") {
		opts = append(opts, backend.WithCreateDir())
	}
	return opts, nil
}

// localEndpoint returns the API URL for a listen address
func localEndpoint(listen, prefix string) (string, error) {
	scheme := "http"
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "", err
	}
	if host == "" {
		host = "localhost"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	portn, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return "", err
	}
	if portn == 443 {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%v%s", scheme, host, portn, strings.TrimSuffix(types.NormalisePath(prefix), "/")), nil
}

///////////////////////////////////////////////////////////////////////////////
// ACCESS LOG

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

// accessLog logs each request at debug level, and failed requests at warn
func accessLog(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		event := logger.Debug()
		if sw.status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Int64("bytes", sw.bytes).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(data []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(data)
	w.bytes += int64(n)
	return n, err
}

// Flush supports streaming responses
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/quixsi/wedding/internal/config"
	"github.com/quixsi/wedding/internal/db/backend"
	"github.com/quixsi/wedding/internal/notify"
	"github.com/quixsi/wedding/internal/portal"
	templates "github.com/quixsi/wedding/internal/portal/tmp"
	"github.com/quixsi/wedding/internal/server"
	"github.com/quixsi/wedding/internal/wedding"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("unable to load config", "error", err)
		os.Exit(1)
	}

	var (
		serviceName = flag.String("service-name", cfg.ServiceName, "otel service name")
		addr        = flag.String("addr", cfg.Addr, "default server address")
		dbStr       = flag.String("db", cfg.DB, "database connection string, one of kvdb://, jsondb://, sqlite://, redis://, mem://")
		otlpAddr    = flag.String("otlp-grpc", cfg.OTLPGRPC, "default otlp/gRPC address, by default disabled. Example value: localhost:4317")
		logLevelArg = flag.String("log-level", cfg.LogLevel, "log level")
		staticDir   = flag.String("static-dir", cfg.StaticDir, "path to static directory")
		locationArg = flag.String("location", cfg.Location, "time zone of the wedding date, e.g. Asia/Manila")
	)
	flag.Parse()

	var logLevel slog.Level
	err = logLevel.UnmarshalText([]byte(*logLevelArg))
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(jsonHandler)
	if err != nil {
		logger.Error("unable to parse log level", "level-input", *logLevelArg, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)
	logger.Info("start and listen", "address", *addr)
	logger.Info("otlp/gRPC", "address", *otlpAddr, "service", *serviceName)
	logger.Info("static-dir", "directory", *staticDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *otlpAddr != "" {
		shutdown, err := setupOTLP(ctx, *otlpAddr)
		if err != nil {
			logger.Error("failed to set up otlp exporter", "error", err)
			os.Exit(1)
		}
		defer shutdown()
	}

	location, err := time.LoadLocation(*locationArg)
	if err != nil {
		logger.Error("unknown location", "location", *locationArg, "error", err)
		os.Exit(1)
	}

	storage, err := backend.Open(ctx, *dbStr)
	if err != nil {
		logger.Error("could not open storage", "db", *dbStr, "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	provider := wedding.New(ctx, storage,
		notify.Multi(notify.NewLogSink(logger), notify.ContextSink),
		wedding.WithLogger(logger),
		wedding.WithLocation(location),
	)
	defer provider.Close()

	api := server.NewServer(*serviceName, provider,
		server.WithAdminPassword(cfg.AdminPassword),
		server.WithStaticDir(*staticDir),
		server.WithCORSOrigins(cfg.CORSOrigins...),
	)
	site := portal.NewPortal(logger, templates.NewTemplateHandler(), provider, nil)

	mux := http.NewServeMux()
	mux.Handle("/api/", api)
	mux.Handle("/admin/", api)
	mux.Handle("/static/", api)
	mux.Handle("/", site.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("error during listen and serve", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown")
}

func setupOTLP(ctx context.Context, otlpAddr string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	grpcOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock()}
	conn, err := grpc.DialContext(ctx, strings.TrimPrefix(otlpAddr, "grpc://"), grpcOptions...)
	if err != nil {
		return nil, err
	}

	// Set up a trace exporter
	otelExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(otelExporter))
	otel.SetTracerProvider(tp)

	return func() {
		_ = tp.Shutdown(context.Background())
		_ = conn.Close()
	}, nil
}

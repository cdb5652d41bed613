package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/neurolearn/shell"
	"github.com/neurolearn/shell/internal/config"
	"github.com/neurolearn/shell/internal/infrastructure"
	http3 "github.com/neurolearn/shell/internal/infrastructure/fasthttp"
	"github.com/neurolearn/shell/store"
	"github.com/neurolearn/shell/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func serveCmd(g *globals) *cobra.Command {
	var (
		listen string
		debug  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API and web shell server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("listen") {
				cfg.HTTP.Listen = listen
			}

			if cmd.Flags().Changed("debug") {
				cfg.HTTP.Debug = debug
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, overrides http.listen")
	cmd.Flags().BoolVar(&debug, "debug", false, "Mount profiler at /debug")

	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	l, err := infrastructure.NewServiceLocator(cfg.Storage, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := l.Close(); err != nil {
			logger.Error("close services", zap.Error(err))
		}
	}()

	st := store.New(cfg.APIBaseURL(), store.WithLogger(logger.Named("store")))

	unsubscribe := st.Subscribe(func(s store.State) {
		logger.Debug("store state",
			zap.Int("resources", len(s.Resources)),
			zap.Bool("loading", s.Loading),
			zap.Stringp("error", s.Error),
		)
	})
	defer unsubscribe()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := http3.NewRouter(l, cfg.HTTP, view.DefaultTable(st), registry)

	srv := &fasthttp.Server{
		Handler: shell.RequestHandler(r),
		Name:    "neurolearn",
	}

	errc := make(chan error, 1)

	go func() {
		errc <- srv.ListenAndServe(cfg.HTTP.Listen)
	}()

	logger.Info("server started", zap.String("listen", cfg.HTTP.Listen), zap.String("api", cfg.APIBaseURL()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")

		return srv.Shutdown()
	}
}

package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/hyper/internal/config"
	"github.com/vango-dev/hyper/internal/demo"
	"github.com/vango-dev/hyper/internal/errors"
	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/middleware"
	"github.com/vango-dev/hyper/pkg/server"
)

type serveFlags struct {
	configPath string
	addr       string
	demo       string
	logLevel   string
	trace      bool
}

func serveCmd() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo app over WebSocket",
		Long: `Serve a demo app. Every WebSocket connection gets its own session
running a fresh instance of the app.

Settings come from hyper.yaml in the working directory (or --config),
then from flags.

Examples:
  hyper serve
  hyper serve --demo todo --addr :9000
  hyper serve --config ./deploy/hyper.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, f.trace, cmd)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to hyper.yaml")
	cmd.Flags().StringVarP(&f.addr, "addr", "a", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVarP(&f.demo, "demo", "d", "", "Demo app to serve (see 'hyper demos')")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "Create an OpenTelemetry span per dispatch")

	return cmd
}

func loadServeConfig(f serveFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(".")
		if config.IsNotFound(err) {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if f.addr != "" {
		host, port, err := net.SplitHostPort(f.addr)
		if err != nil {
			return nil, errors.New("E122").WithDetail("--addr " + f.addr + ": " + err.Error())
		}
		cfg.Server.Host = host
		if cfg.Server.Port, err = net.LookupPort("tcp", port); err != nil {
			return nil, errors.New("E122").WithDetail("--addr " + f.addr + ": " + err.Error())
		}
	}
	if f.demo != "" {
		cfg.App.Demo = f.demo
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config, trace bool, cmd *cobra.Command) error {
	d, ok := demo.Lookup(cfg.App.Demo)
	if !ok {
		return errors.New("E160").
			WithDetail("No demo named " + cfg.App.Demo).
			WithSuggestion("Run 'hyper demos' to list them")
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.Prometheus(middleware.WithRegistry(reg))

	mw := []app.Middleware{middleware.Logger(logger)}
	if trace {
		mw = append(mw, middleware.OpenTelemetry())
	}

	srv, err := server.New(cfg.Runtime(), d.Factory,
		server.WithLogger(logger),
		server.WithMetrics(metrics, reg),
		server.WithAppOptions(app.WithMiddleware(mw...)),
	)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return errors.New("E180").Wrap(err)
	}
	success(cmd.OutOrStdout(), "serving %s on ws://%s%s", d.Name, ln.Addr(), cfg.Server.WebSocketPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}

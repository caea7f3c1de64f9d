package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/tachikv-go/internal/arena"
	"github.com/yndnr/tachikv-go/internal/infra/buildinfo"
	"github.com/yndnr/tachikv-go/internal/infra/confloader"
	"github.com/yndnr/tachikv-go/internal/infra/shutdown"
	"github.com/yndnr/tachikv-go/internal/server/config"
	"github.com/yndnr/tachikv-go/internal/server/respserver"
	"github.com/yndnr/tachikv-go/internal/store"
	"github.com/yndnr/tachikv-go/internal/telemetry/logger"
	"github.com/yndnr/tachikv-go/internal/telemetry/metric"
)

func main() {
	app := &cli.App{
		Name:    "tachikv-server",
		Usage:   "In-memory RESP key-value store",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "bind",
				Usage: "Listen address",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port",
			},
			&cli.IntFlag{
				Name:  "arena-size",
				Usage: "Value arena capacity in bytes",
			},
			&cli.BoolFlag{
				Name:  "reuse-port",
				Usage: "Set SO_REUSEPORT for multi-instance scale-out",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Prometheus listen address (enables metrics)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := ulid.Make().String()
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	}).With("run_id", runID)

	log.Info("starting tachikv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", c.String("config"))

	mem := arena.New(cfg.Arena.SizeBytes)
	keys := store.New(mem)
	metrics := metric.New()

	srv := respserver.New(&respserver.Config{
		Bind:       cfg.Server.Bind,
		Port:       cfg.Server.Port,
		Backlog:    cfg.Server.Backlog,
		ReusePort:  cfg.Server.ReusePort,
		AcceptRate: cfg.Server.AcceptRate,
		RunID:      runID,
	}, mem, keys, metrics, log)

	if err := srv.Listen(); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	handler := shutdown.NewHandler(30 * time.Second)

	// Metrics endpoint (side listener; the event loop never blocks on it).
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

		go func() {
			log.Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()

		handler.OnShutdown(func(ctx context.Context) error {
			log.Info("stopping metrics server")
			return metricsSrv.Shutdown(ctx)
		})
	}

	handler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping event loop")
		select {
		case <-srv.Done():
			return nil
		default:
		}
		if err := srv.Shutdown(); err != nil {
			select {
			case <-srv.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case <-srv.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	// Watch the config file so log level edits apply without restart.
	if path := c.String("config"); path != "" {
		watcher, err := confloader.NewWatcher(log, func(changed string) {
			fresh := config.Default()
			if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(fresh); err != nil {
				log.Warn("config reload failed", "file", changed, "error", err)
				return
			}
			if fresh.Log.Level != logger.Level() {
				logger.SetLevel(fresh.Log.Level)
				log.Info("log level changed", "level", fresh.Log.Level)
			}
		})
		if err != nil {
			return fmt.Errorf("config watcher: %w", err)
		}
		if err := watcher.Watch(path); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		go watcher.Start()

		handler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	// A fatal loop error (listener failure, epoll failure) ends the
	// process through the same shutdown path.
	go func() {
		if err := <-serveErr; err != nil {
			log.Error("event loop failed", "error", err)
		}
		handler.Trigger()
	}()

	log.Info("server started")
	if err := handler.Wait(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// loadConfig merges defaults, the optional YAML file, environment
// variables, and CLI flags (strongest last).
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	if path := c.String("config"); path != "" {
		if err := loader.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := loader.LoadEnv(); err != nil {
		return nil, err
	}
	if overrides := flagOverrides(c); len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
	}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// flagOverrides maps the flags the user actually set to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	if c.IsSet("bind") {
		overrides["server.bind"] = c.String("bind")
	}
	if c.IsSet("port") {
		overrides["server.port"] = c.Int("port")
	}
	if c.IsSet("arena-size") {
		overrides["arena.size_bytes"] = c.Int("arena-size")
	}
	if c.IsSet("reuse-port") {
		overrides["server.reuse_port"] = c.Bool("reuse-port")
	}
	if c.IsSet("metrics-addr") {
		overrides["metrics.enabled"] = true
		overrides["metrics.addr"] = c.String("metrics-addr")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	return overrides
}

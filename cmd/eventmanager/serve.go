package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/eventmanager/internal/config"
	"github.com/vango-dev/eventmanager/internal/errors"
	"github.com/vango-dev/eventmanager/pkg/bridge"
	"github.com/vango-dev/eventmanager/pkg/dom"
	"github.com/vango-dev/eventmanager/pkg/inspect"
	"github.com/vango-dev/eventmanager/pkg/metrics"
	"github.com/vango-dev/eventmanager/pkg/tracker"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var (
		dir  string
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inspect API and the WebSocket bridge",
		Long: `Run an HTTP server exposing the listener registry.

Each WebSocket client connecting to the bridge gets a click listener on
its "root" element, tracked under the name conn:<n> and removed when the
client disconnects. The inspect API shows and cleans up the registry.

Examples:
  eventmanager serve
  eventmanager serve --port=8080
  eventmanager serve --config=./deploy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dir, host, port)
		},
	}

	cmd.Flags().StringVarP(&dir, "config", "c", ".", "Directory containing eventmanager.json")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from eventmanager.json)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from eventmanager.json)")

	return cmd
}

func runServe(dir, host string, port int) error {
	cfg, err := config.LoadOrDefault(dir)
	if err != nil {
		return err
	}
	if port < 0 || port > 65535 {
		return errors.New("E150").
			WithDetail(fmt.Sprintf("--port %d is out of range", port))
	}
	if port > 0 {
		cfg.Inspect.Port = port
	}
	if host != "" {
		cfg.Inspect.Host = host
	}

	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	t := tracker.New(
		tracker.WithLogger(logger.With("component", "tracker")),
		tracker.WithObserver(metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithSubsystem(cfg.Metrics.Subsystem),
		)),
	)

	inspectOpts := []inspect.Option{
		inspect.WithLogger(logger.With("component", "inspect")),
		inspect.WithTracerName(cfg.Tracing.TracerName),
	}
	if cfg.MetricsEnabled() {
		inspectOpts = append(inspectOpts, inspect.WithGatherer(reg))
	}

	sessions := &bridgeSessions{
		tracker: t,
		logger:  logger.With("component", "bridge"),
		opts: []bridge.Option{
			bridge.WithLogger(logger.With("component", "bridge")),
			bridge.WithWriteTimeout(cfg.WriteTimeout()),
			bridge.WithReadLimit(cfg.Bridge.ReadLimit),
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Mount(cfg.Inspect.Prefix, inspect.NewHandler(t, inspectOpts...))
	r.Handle(cfg.Bridge.Path, sessions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	success("Listening on http://%s", cfg.Address())
	info("inspect: http://%s%s/listeners", cfg.Address(), cfg.Inspect.Prefix)
	info("bridge:  ws://%s%s", cfg.Address(), cfg.Bridge.Path)

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("E170").
				WithDetail("Could not listen on " + cfg.Address()).
				Wrap(err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("E171").Wrap(err)
	}

	if err := t.RemoveAll(); err != nil {
		warn("%d listeners could not be detached: %v", t.Len(), err)
	}
	success("Server stopped")
	return nil
}

// bridgeSessions tracks one named click listener per bridge connection.
type bridgeSessions struct {
	tracker *tracker.Tracker
	logger  *slog.Logger
	opts    []bridge.Option
	next    atomic.Uint64
}

func (b *bridgeSessions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := bridge.Upgrade(w, r, b.opts...)
	if err != nil {
		b.logger.Warn("upgrade failed", "error", err)
		return
	}

	name := fmt.Sprintf("conn:%d", b.next.Add(1))
	logger := b.logger.With("conn", name)

	onClick := tracker.NewCallback(func(e tracker.Event) {
		logger.Info("event", "type", e.Type, "target", e.Target, "data", e.Data)
	})
	if err := b.tracker.AddNamed(conn.Element("root"), dom.Click, onClick, name); err != nil {
		logger.Error("track root listener", "error", err)
		conn.Close()
		return
	}
	logger.Info("connected")

	if err := conn.ReadLoop(r.Context()); err != nil && !stderrors.Is(err, context.Canceled) {
		logger.Warn("read loop ended", "error", err)
	}

	if err := b.tracker.RemoveNamed(name); err != nil {
		logger.Error("remove connection listeners", "error", err)
	}
	logger.Info("disconnected")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/cli"
	"osprey-hq/talon/pkg/compiler"
	"osprey-hq/talon/pkg/compiler/snapshot"
	"osprey-hq/talon/pkg/config"
	"osprey-hq/talon/pkg/inventory"
	"osprey-hq/talon/pkg/telemetry/health"
	"osprey-hq/talon/pkg/telemetry/metrics"
	"osprey-hq/talon/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Talon compiler service",
	Long: `Start the Talon compiler service with the specified configuration.

The service compiles the policy set once at startup and then keeps the
published snapshot current: file watching recompiles on input changes,
and an optional cron schedule recompiles periodically. A failed
recompile keeps the previous snapshot published.

The service exposes /healthz, /readyz, /version, the Prometheus
metrics endpoint, and a POST /evaluate slow-path endpoint.

Examples:
  # Start with default config
  talon run

  # Start with custom config
  talon run --config /etc/talon/config.yaml

  # Override listen address
  talon run --listen 0.0.0.0:9464

  # Validate config without starting
  talon run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override metrics/health listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the service")
}

func runService(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load config: %w", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Telemetry.Metrics.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Talon v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	collector := metrics.NewCollector(nil)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer tracer.Shutdown(context.Background())

	fileSource := compiler.NewFileSource(cfg.Data.PoliciesDir, cfg.Data.EntitiesFile, cfg.Data.SchemaFile, logger)

	opts := compiler.Options{
		Policies:        fileSource,
		Entities:        fileSource,
		Schema:          fileSource,
		AttrOrder:       cfg.Key.AttrOrder,
		TrustThresholds: cfg.Key.TrustThresholds,
		Workers:         cfg.Compiler.Workers,
		Metrics:         collector.Compile,
		Tracer:          tracer,
		Logger:          logger,
	}

	var invStore *inventory.Store
	if cfg.Inventory.Enabled {
		invStore, err = inventory.NewStore(inventory.Config{Path: cfg.Inventory.Path})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open inventory: %w", err))
		}
		defer invStore.Close()
		opts.Entities = inventory.NewEntitySource(invStore)
		fmt.Println("✓ Inventory store opened")
	}

	var store *snapshot.Store
	if cfg.Snapshot.Enabled {
		store, err = openSnapshotStore(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()
		opts.Store = store
		fmt.Println("✓ Snapshot store opened")
	}

	comp, err := compiler.New(opts)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	snap, err := comp.Recompile(ctx)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initial compile failed: %w", err))
	}
	fmt.Printf("✓ Compiled snapshot %s (%d destinations)\n", snap.ID, len(snap.Keys))

	if store != nil && cfg.Snapshot.Keep > 0 {
		if pruned, err := store.Prune(ctx, cfg.Snapshot.Keep); err != nil {
			logger.Warn("snapshot prune failed", "error", err)
		} else if pruned > 0 {
			logger.Info("pruned old snapshots", "count", pruned)
		}
	}

	// File watcher
	if cfg.Compiler.Watch {
		watcherCfg := compiler.DefaultFileWatcherConfig()
		watcherCfg.Paths = []string{cfg.Data.PoliciesDir, cfg.Data.EntitiesFile, cfg.Data.SchemaFile}
		if cfg.Compiler.WatchDebounce > 0 {
			watcherCfg.DebounceInterval = cfg.Compiler.WatchDebounce
		}
		watcher, err := compiler.NewFileWatcher(watcherCfg, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()

		go func() {
			if err := watcher.Watch(ctx, func() error {
				_, err := comp.Recompile(ctx)
				return err
			}); err != nil {
				logger.Error("file watcher stopped", "error", err)
			}
		}()
		fmt.Println("✓ File watcher started")
	}

	// Cron scheduler
	if cfg.Compiler.Schedule != "" {
		scheduler := compiler.NewScheduler(comp, cfg.Compiler.Schedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			logger.Info("recompile scheduler started", "schedule", cfg.Compiler.Schedule, "next_run", next)
		}
	}

	// Health checks
	checker := health.New(5 * time.Second)
	checker.Register("snapshot", func(ctx context.Context) error {
		if comp.Current() == nil {
			return fmt.Errorf("no snapshot published")
		}
		return nil
	})
	if store != nil {
		checker.Register("snapshot_store", func(ctx context.Context) error {
			_, err := store.List(ctx, 1)
			return err
		})
	}
	if invStore != nil {
		checker.Register("inventory", func(ctx context.Context) error {
			_, err := invStore.CountSources(ctx)
			return err
		})
	}

	// HTTP surface: health, version, metrics, slow-path evaluate
	mux := http.NewServeMux()
	health.Register(mux, checker, Version, GitCommit, BuildDate)
	if cfg.Telemetry.Metrics.Enabled {
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
	}
	mux.Handle("/evaluate", &evaluateHandler{
		cfg:      cfg,
		logger:   logger,
		entities: opts.Entities,
		metrics:  collector.Evaluation,
		tracer:   tracer,
	})

	srv := &http.Server{
		Addr:              cfg.Telemetry.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Serving on %s\n", srv.Addr)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", srv.Addr)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", srv.Addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case <-ctx.Done():
		fmt.Println("\nShutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Service stopped")
		return nil
	}
}

// evaluateHandler is the slow-path HTTP endpoint: it evaluates the
// configured policy set exactly for one source/destination pair.
type evaluateHandler struct {
	cfg      *config.Config
	logger   *slog.Logger
	entities compiler.EntitySource
	metrics  *metrics.EvaluationMetrics
	tracer   *tracing.Tracer
}

type evaluateRequest struct {
	SourceIP string            `json:"source_ip"`
	DestIP   string            `json:"dest_ip"`
	Env      map[string]string `json:"env,omitempty"`
	Policy   string            `json:"policy,omitempty"`
}

func (h *evaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("malformed request: %v", err), http.StatusBadRequest)
		return
	}
	if req.SourceIP == "" || req.DestIP == "" {
		http.Error(w, "source_ip and dest_ip are required", http.StatusBadRequest)
		return
	}

	var env entity.Environment
	if len(req.Env) > 0 {
		env = make(entity.Environment, len(req.Env))
		for key, raw := range req.Env {
			if !strings.HasPrefix(key, ast.EnvPrefix) {
				key = ast.EnvPrefix + key
			}
			env[key] = parseEnvValue(raw)
		}
	}

	ctx, span := h.tracer.Start(r.Context(), "server.evaluate")
	defer span.End()

	start := time.Now()
	decisions, err := evaluatePair(ctx, h.cfg, h.logger, h.entities, req.SourceIP, req.DestIP, env, req.Policy)
	if err != nil {
		tracing.SetError(span, err)
		h.metrics.RecordError(fmt.Sprintf("%T", err))
		h.logger.Warn("evaluate request failed", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	for _, d := range decisions {
		h.metrics.RecordEvaluation(d.Effect, time.Since(start))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(decisions); err != nil {
		h.logger.Warn("failed to write evaluate response", "error", err)
	}
}

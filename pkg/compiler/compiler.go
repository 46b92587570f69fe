package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"

	"osprey-hq/talon/pkg/abac/classify"
	"osprey-hq/talon/pkg/abac/eval"
	"osprey-hq/talon/pkg/compiler/snapshot"
	"osprey-hq/talon/pkg/telemetry/metrics"
	"osprey-hq/talon/pkg/telemetry/tracing"
)

// Snapshot is the compiled artifact a recompile run produces. See
// the snapshot package for its persistence and export surfaces.
type Snapshot = snapshot.Snapshot

// SnapshotStore persists compiled snapshots. The compiler only needs
// the write side; retrieval goes through the store directly.
type SnapshotStore interface {
	Save(ctx context.Context, snap *snapshot.Snapshot) error
}

// Options configures a Compiler. Policies, Entities, Schema,
// AttrOrder, and TrustThresholds are required; everything else is
// optional.
type Options struct {
	// Policies, Entities, and Schema provide the compile inputs.
	// One FileSource or MemorySource value can serve all three.
	Policies PolicySource
	Entities EntitySource
	Schema   SchemaSource

	// AttrOrder fixes the source attribute slot order of compiled
	// keys.
	AttrOrder []string

	// TrustThresholds is the ascending threshold ladder for
	// Src.TrustScore bounds.
	TrustThresholds []int64

	// Workers bounds classifier concurrency. Zero means one worker
	// per logical CPU.
	Workers int

	// Store receives every successful snapshot. Nil disables
	// persistence.
	Store SnapshotStore

	// Metrics receives compile counters and histograms. Nil disables
	// instrumentation.
	Metrics *metrics.CompileMetrics

	// Tracer emits per-stage spans. Nil disables tracing.
	Tracer *tracing.Tracer

	Logger *slog.Logger
}

// Compiler turns a policy set, entity inventory, and schema into
// published snapshots. Recompile runs are serialized; the latest
// snapshot is always readable through Current without blocking on an
// in-flight run.
type Compiler struct {
	opts       Options
	classifier *classify.Classifier
	logger     *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[snapshot.Snapshot]
}

// New creates a compiler from options.
func New(opts Options) (*Compiler, error) {
	if opts.Policies == nil || opts.Entities == nil || opts.Schema == nil {
		return nil, fmt.Errorf("compiler: policy, entity, and schema sources are all required")
	}
	if len(opts.AttrOrder) == 0 {
		return nil, fmt.Errorf("compiler: attribute order cannot be empty")
	}
	if len(opts.TrustThresholds) == 0 {
		return nil, fmt.Errorf("compiler: trust threshold ladder cannot be empty")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "compiler")

	classifier := classify.New(
		&classify.Config{Workers: opts.Workers},
		eval.New(logger),
		logger,
	)

	return &Compiler{
		opts:       opts,
		classifier: classifier,
		logger:     logger,
	}, nil
}

// Current returns the most recently published snapshot, or nil before
// the first successful Recompile.
func (c *Compiler) Current() *Snapshot {
	return c.current.Load()
}

// Recompile loads all inputs, compiles them, persists the snapshot if
// a store is configured, and publishes it. On any error the previous
// snapshot stays published.
func (c *Compiler) Recompile(ctx context.Context) (snap *Snapshot, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	defer func() {
		if c.opts.Metrics != nil {
			c.opts.Metrics.RecordRun(err, time.Since(start))
		}
	}()

	ctx, span := c.startSpan(ctx, "compiler.recompile")
	defer func() {
		tracing.SetError(span, err)
		span.End()
	}()

	snap, err = c.compile(ctx)
	if err != nil {
		c.logger.Error("recompile failed, keeping previous snapshot",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	if c.opts.Store != nil {
		_, persistSpan := c.startSpan(ctx, "compiler.persist",
			tracing.WithAttributes(tracing.Stage("persist"), tracing.SnapshotID(snap.ID)))
		err = c.opts.Store.Save(ctx, snap)
		tracing.SetError(persistSpan, err)
		persistSpan.End()
		if err != nil {
			c.logger.Error("failed to persist snapshot, keeping previous snapshot",
				"snapshot_id", snap.ID,
				"error", err,
			)
			return nil, err
		}
	}

	previous := c.current.Load()
	c.current.Store(snap)
	c.logReloadDiff(previous, snap)

	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordDestinations(len(snap.Keys))
		for _, dr := range snap.Rules {
			c.opts.Metrics.RecordApplicableRules(len(dr.Rules))
		}
	}

	c.logger.Info("snapshot published",
		"snapshot_id", snap.ID,
		"digest", snap.Digest,
		"policy_count", len(snap.PolicyNames),
		"destination_count", len(snap.Keys),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return snap, nil
}

// compile runs the load, classify, and key-building stages and seals
// the resulting snapshot.
func (c *Compiler) compile(ctx context.Context) (*Snapshot, error) {
	loadCtx, loadSpan := c.startSpan(ctx, "compiler.load",
		tracing.WithAttributes(tracing.Stage("load")))

	schemaMap, err := c.opts.Schema.LoadSchema(loadCtx)
	if err != nil {
		tracing.SetError(loadSpan, err)
		loadSpan.End()
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	entities, err := c.opts.Entities.LoadEntities(loadCtx, schemaMap)
	if err != nil {
		tracing.SetError(loadSpan, err)
		loadSpan.End()
		return nil, fmt.Errorf("loading entities: %w", err)
	}

	policies, err := c.opts.Policies.LoadPolicies(loadCtx)
	if err != nil {
		tracing.SetError(loadSpan, err)
		loadSpan.End()
		return nil, fmt.Errorf("loading policies: %w", err)
	}
	loadSpan.SetAttributes(
		tracing.PolicyCount(len(policies)),
		tracing.DestinationCount(len(entities.Destinations)),
	)
	loadSpan.End()

	classifyCtx, classifySpan := c.startSpan(ctx, "compiler.classify",
		tracing.WithAttributes(tracing.Stage("classify")))
	rules, err := c.classifier.ApplicableRules(classifyCtx, policies, entities.Destinations)
	tracing.SetError(classifySpan, err)
	classifySpan.End()
	if err != nil {
		return nil, fmt.Errorf("filtering applicable rules: %w", err)
	}

	keysCtx, keysSpan := c.startSpan(ctx, "compiler.keys",
		tracing.WithAttributes(tracing.Stage("keys")))
	keys, err := c.classifier.RequirementKeys(keysCtx, policies, entities.Destinations,
		schemaMap, c.opts.AttrOrder, c.opts.TrustThresholds)
	tracing.SetError(keysSpan, err)
	keysSpan.End()
	if err != nil {
		return nil, fmt.Errorf("building requirement keys: %w", err)
	}

	policyNames := make([]string, 0, len(policies))
	for _, p := range policies {
		policyNames = append(policyNames, p.Name)
	}

	snap := &Snapshot{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
		PolicyNames:     policyNames,
		AttrOrder:       append([]string(nil), c.opts.AttrOrder...),
		TrustThresholds: append([]int64(nil), c.opts.TrustThresholds...),
		Keys:            keys,
		Rules:           rules,
	}
	if err := snap.Seal(); err != nil {
		return nil, fmt.Errorf("sealing snapshot: %w", err)
	}

	return snap, nil
}

// diffView is the part of a snapshot surfaced in reload diffs: what
// changed, not when it was compiled.
type diffView struct {
	PolicyNames []string                    `json:"policy_names"`
	Keys        []classify.DestinationKey   `json:"keys"`
	Rules       []classify.DestinationRules `json:"rules"`
}

// logReloadDiff logs a JSON patch describing what changed between the
// previously published snapshot and the new one.
func (c *Compiler) logReloadDiff(previous, next *Snapshot) {
	if previous == nil {
		return
	}

	patch, err := jsondiff.Compare(
		diffView{PolicyNames: previous.PolicyNames, Keys: previous.Keys, Rules: previous.Rules},
		diffView{PolicyNames: next.PolicyNames, Keys: next.Keys, Rules: next.Rules},
	)
	if err != nil {
		c.logger.Warn("failed to diff snapshots", "error", err)
		return
	}
	if len(patch) == 0 {
		c.logger.Debug("recompile produced an identical artifact",
			"snapshot_id", next.ID,
		)
		return
	}

	c.logger.Info("compiled artifact changed",
		"previous_snapshot_id", previous.ID,
		"snapshot_id", next.ID,
		"change_count", len(patch),
		"changes", patch.String(),
	)
}

// startSpan delegates to the configured tracer, or returns a span
// that records nothing.
func (c *Compiler) startSpan(ctx context.Context, name string, opts ...tracing.SpanStartOption) (context.Context, tracing.Span) {
	if c.opts.Tracer != nil {
		return c.opts.Tracer.Start(ctx, name, opts...)
	}
	return tracing.NoopSpan(ctx, name, opts...)
}

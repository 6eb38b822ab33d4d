// Package pipeline runs the single evaluate, reconcile and dispatch loop.
//
// Entity upserts and settings changes mark work as pending and wake one worker
// goroutine; a ticker schedules a periodic full sweep so time-based rules (expiry
// windows) fire without any data change. Only the worker, or a caller of RunOnce,
// evaluates, and passes never overlap.
package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/alerts"
	"github.com/sonaligoyal925/FlePort/internal/rules"
	"github.com/sonaligoyal925/FlePort/internal/settings"
	"github.com/sonaligoyal925/FlePort/internal/store"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// Dispatcher hands newly created alerts to notification senders.
type Dispatcher interface {
	Dispatch(ctx context.Context, alerts []types.Alert, s types.Settings) int
}

// Options configures the Pipeline behavior.
type Options struct {
	// SweepInterval is the period of full re-evaluation. Default: 1 minute.
	SweepInterval time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{SweepInterval: time.Minute}
}

type entityKey struct {
	t  types.EntityType
	id string
}

// Pipeline wires the entity store, rule engine, alert manager and dispatcher.
type Pipeline struct {
	logger     *zap.Logger
	store      *store.Store
	engine     *rules.Engine
	manager    *alerts.Manager
	settings   *settings.Store
	dispatcher Dispatcher
	rules      []types.Rule
	opts       Options
	clock      func() time.Time

	// runMu serializes passes between the worker and RunOnce.
	runMu sync.Mutex

	mu        sync.Mutex
	pending   map[entityKey]struct{}
	fullSweep bool
	lastRun   time.Time
	signal    chan struct{}
}

// New creates a Pipeline. dispatcher may be nil, in which case new alerts are only stored.
func New(
	st *store.Store,
	engine *rules.Engine,
	manager *alerts.Manager,
	settingsStore *settings.Store,
	dispatcher Dispatcher,
	ruleSet []types.Rule,
	logger *zap.Logger,
	opts Options,
) *Pipeline {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultOptions().SweepInterval
	}
	return &Pipeline{
		logger:     logger.Named("pipeline"),
		store:      st,
		engine:     engine,
		manager:    manager,
		settings:   settingsStore,
		dispatcher: dispatcher,
		rules:      ruleSet,
		opts:       opts,
		clock:      time.Now,
		pending:    make(map[entityKey]struct{}),
		signal:     make(chan struct{}, 1),
	}
}

// SetClock overrides the evaluation time source. Must be called before Start (not concurrent).
func (p *Pipeline) SetClock(clock func() time.Time) {
	p.clock = clock
}

// OnStoreChange is the callback for store.OnChangeFunc. It never blocks.
func (p *Pipeline) OnStoreChange(event store.ChangeEvent) {
	p.mu.Lock()
	p.pending[entityKey{t: event.Type, id: event.ID}] = struct{}{}
	p.mu.Unlock()
	p.wake()
}

// OnSettingsChange is the callback for settings.OnChangeFunc. Newly enabled
// categories need every entity re-evaluated.
func (p *Pipeline) OnSettingsChange(_, _ types.Settings) {
	p.TriggerSweep()
}

// TriggerSweep schedules a full re-evaluation on the worker. It never blocks.
func (p *Pipeline) TriggerSweep() {
	p.mu.Lock()
	p.fullSweep = true
	p.mu.Unlock()
	p.wake()
}

func (p *Pipeline) wake() {
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// Start runs the worker loop. Blocks until ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) error {
	p.logger.Info("Starting evaluation pipeline",
		zap.Duration("sweep_interval", p.opts.SweepInterval),
		zap.Int("rules", len(p.rules)))

	ticker := time.NewTicker(p.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Evaluation pipeline stopped")
			return nil
		case <-ticker.C:
			p.TriggerSweep()
		case <-p.signal:
			p.processPending(ctx)
		}
	}
}

// LastRun returns the evaluation time of the most recent pass, zero before the first.
func (p *Pipeline) LastRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRun
}

// RunOnce evaluates every entity synchronously and returns the alerts it created.
func (p *Pipeline) RunOnce(ctx context.Context) []types.Alert {
	p.mu.Lock()
	p.fullSweep = false
	p.pending = make(map[entityKey]struct{})
	p.mu.Unlock()

	return p.run(ctx, p.store.All(), "full")
}

// processPending evaluates whatever was marked since the last pass.
func (p *Pipeline) processPending(ctx context.Context) {
	p.mu.Lock()
	pending := p.pending
	fullSweep := p.fullSweep
	p.pending = make(map[entityKey]struct{})
	p.fullSweep = false
	p.mu.Unlock()

	if fullSweep {
		p.run(ctx, p.store.All(), "full")
		return
	}
	if len(pending) == 0 {
		return
	}
	p.run(ctx, p.lookup(pending), "incremental")
}

// lookup fetches the current snapshot of each pending entity in store type order,
// then by id, so incremental passes are deterministic too.
func (p *Pipeline) lookup(pending map[entityKey]struct{}) []types.Entity {
	keys := make([]entityKey, 0, len(pending))
	for k := range pending {
		keys = append(keys, k)
	}
	typeRank := make(map[types.EntityType]int)
	for i, t := range types.EntityTypes() {
		typeRank[t] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].t != keys[j].t {
			return typeRank[keys[i].t] < typeRank[keys[j].t]
		}
		return keys[i].id < keys[j].id
	})

	entities := make([]types.Entity, 0, len(keys))
	for _, k := range keys {
		e, err := p.store.Get(k.t, k.id)
		if err != nil {
			p.logger.Debug("Pending entity vanished", zap.String("type", string(k.t)), zap.String("id", k.id))
			continue
		}
		entities = append(entities, e)
	}
	return entities
}

func (p *Pipeline) run(ctx context.Context, entities []types.Entity, scope string) []types.Alert {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()
	now := p.clock()
	current := p.settings.Get()
	result := p.engine.Evaluate(entities, p.rules, now, current)
	created := p.manager.Reconcile(result.Candidates)

	dispatched := 0
	if p.dispatcher != nil && len(created) > 0 {
		dispatched = p.dispatcher.Dispatch(ctx, created, current)
	}

	p.mu.Lock()
	p.lastRun = now
	p.mu.Unlock()

	runsTotal.WithLabelValues(scope).Inc()
	runDuration.Observe(time.Since(start).Seconds())

	if len(created) > 0 || len(result.Errors) > 0 {
		p.logger.Info("Evaluation pass finished",
			zap.String("scope", scope),
			zap.Int("entities", len(entities)),
			zap.Int("candidates", len(result.Candidates)),
			zap.Int("created", len(created)),
			zap.Int("dispatched", dispatched),
			zap.Int("rule_errors", len(result.Errors)),
		)
	}
	return created
}

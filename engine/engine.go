// Package engine is the operation layer of dex. Each exported method takes a
// typed request, runs against a fresh scan of the vault and returns a typed
// result, or a *Rejection carrying a reason code and a suggestion.
//
// Operations run one at a time. Nothing is cached between calls: the Markdown
// files are the state and may be edited by hand at any moment.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/dex/am"
	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/relations"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/tasks/dedup"
	"github.com/teranos/dex/vault"
)

// Options configures an Engine
type Options struct {
	Config *am.Config

	// Strategy pins pillars and limits. When nil, System/pillars.yaml is read
	// at the start of every operation.
	Strategy *am.Strategy

	// Now is the clock; time.Now when nil
	Now func() time.Time
}

// Engine runs dex operations against one vault
type Engine struct {
	mu       sync.Mutex
	cfg      *am.Config
	vault    *vault.Vault
	strategy *am.Strategy
	now      func() time.Time
}

// New validates the configuration and returns an engine for its vault.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, errors.New("engine: config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:      opts.Config,
		vault:    vault.New(opts.Config.Vault.Path, opts.Config.Vault.DemoMode),
		strategy: opts.Strategy,
		now:      now,
	}, nil
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() *am.Config { return e.cfg }

// Vault returns the underlying vault
func (e *Engine) Vault() *vault.Vault { return e.vault }

// scope is what one operation sees: demo mode and the strategy are resolved
// once, at the start, and hold until the operation returns.
type scope struct {
	ctx      context.Context
	layout   vault.Layout
	strategy *am.Strategy
	now      time.Time
	log      *zap.SugaredLogger
}

func (e *Engine) begin(ctx context.Context, op string) *scope {
	ctx = logger.WithOperation(ctx, op)
	l := e.vault.Layout()
	strategy := e.strategy
	if strategy == nil {
		strategy = am.LoadPillars(l.Pillars())
	}
	log := logger.LoggerFromContext(ctx)
	log.Debugw("Operation started", logger.FieldDemo, l.Demo, "base", l.Base)
	return &scope{
		ctx:      ctx,
		layout:   l,
		strategy: strategy,
		now:      e.now(),
		log:      log,
	}
}

func (s *scope) loadTasks() ([]tasks.Task, error) {
	return tasks.Load(s.layout, s.strategy)
}

func (s *scope) builder(historyLimit int) *relations.Builder {
	return relations.NewBuilder(s.layout, historyLimit)
}

func (e *Engine) dedupOptions() dedup.Options {
	return dedup.Options{
		Threshold:      e.cfg.Dedup.SimilarityThreshold,
		MergeThreshold: e.cfg.Dedup.MergeThreshold,
		MaxMatches:     e.cfg.Dedup.MaxMatches,
	}
}

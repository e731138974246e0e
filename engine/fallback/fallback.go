// Package fallback resolves an asset request through the requested asset, the default asset and
// finally the procedural placeholder, and hands the result to the scene on the event loop.
package fallback

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/placeholder"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
)

// DefaultAsset is used when no default asset option is given.
const DefaultAsset = "default.glb"

// policy is the implementation of the Policy interface.
type policy struct {
	mu *sync.Mutex

	loader    loader.Loader
	generator placeholder.Generator
	installer Installer
	dispatch  Dispatcher
	logger    *slog.Logger

	defaultAsset string
	workers      int
	pool         worker.DynamicWorkerPool
	observers    []Observer

	seq    atomic.Uint64
	ctx    context.Context
	stop   context.CancelFunc
	cancel context.CancelFunc
	closed bool
}

// Policy drives the requested → default → placeholder chain.
//
// Every chain is assigned a monotonically increasing sequence number. Only the result of the chain
// holding the latest number is installed; older results are disposed on arrival.
type Policy interface {
	// Resolve runs a chain synchronously and returns its result without installing it.
	// Unless ctx is cancelled, the result always carries a fragment, which the caller then owns.
	// Resolve takes a sequence number like Request does and cancels a pending Request chain, whose
	// result is then discarded.
	//
	// Parameters:
	//   - ctx: cancels the chain
	//   - name: the requested asset; empty means the default asset
	//
	// Returns:
	//   - Result: the chain result
	Resolve(ctx context.Context, name string) Result

	// Request starts a chain in the background and returns immediately. The previous chain is
	// cancelled, and its result will be discarded even if it completes.
	// The result is installed through the Installer on the Dispatcher's goroutine.
	//
	// Parameters:
	//   - name: the requested asset; empty means the default asset
	//
	// Returns:
	//   - uint64: the sequence number of the new chain, or 0 after Close
	Request(name string) uint64

	// Latest returns the most recently issued sequence number.
	//
	// Returns:
	//   - uint64: the latest sequence number, 0 before the first request
	Latest() uint64

	// DefaultAsset returns the name of the default asset.
	//
	// Returns:
	//   - string: the default asset name
	DefaultAsset() string

	// Close cancels the running chain and stops the worker pool. Requests made afterwards are ignored.
	Close()
}

var _ Policy = &policy{}

// NewPolicy creates a new Policy.
//
// Parameters:
//   - l: the loader used for the requested and default tiers
//   - installer: receives the fragment of the latest chain
//   - options: a variadic list of PolicyBuilderOption functions to configure the Policy
//
// Returns:
//   - Policy: the policy
func NewPolicy(l loader.Loader, installer Installer, options ...PolicyBuilderOption) Policy {
	p := &policy{
		mu:           &sync.Mutex{},
		loader:       l,
		installer:    installer,
		generator:    placeholder.NewGenerator(),
		logger:       logging.NewNop(),
		defaultAsset: DefaultAsset,
		workers:      2,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.dispatch == nil {
		p.dispatch = func(fn func()) { fn() }
	}
	p.ctx, p.stop = context.WithCancel(context.Background())
	p.pool = worker.NewDynamicWorkerPool(p.workers, 256, 1*time.Second)
	return p
}

func (p *policy) DefaultAsset() string {
	return p.defaultAsset
}

func (p *policy) Latest() uint64 {
	return p.seq.Load()
}

func (p *policy) Resolve(ctx context.Context, name string) Result {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	seq := p.seq.Add(1)
	p.mu.Unlock()
	return p.resolve(ctx, seq, name)
}

func (p *policy) Request(name string) uint64 {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0
	}
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancel = cancel
	seq := p.seq.Add(1)
	p.mu.Unlock()

	p.pool.SubmitTask(worker.Task{
		ID:      int(seq),
		Payload: name,
		Do: func() (any, error) {
			res := p.resolve(ctx, seq, name)
			p.dispatch(func() { p.complete(res) })
			return res, nil
		},
	})
	return seq
}

func (p *policy) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.stop()
	p.pool.Stop()
}

// resolve is the chain itself: load the requested asset, then the default, then generate.
func (p *policy) resolve(ctx context.Context, seq uint64, name string) Result {
	if name == "" {
		name = p.defaultAsset
	}
	res := Result{Seq: seq, Requested: name}
	p.emit(Transition{Seq: seq, Requested: name, From: Idle, To: RequestingPrimary})

	primary, elapsed := p.load(ctx, name)
	if primary.Ok() {
		return p.finish(res, Installed, primary, TierRequested, elapsed)
	}
	res.Failures = append(res.Failures, primary)
	if ctx.Err() != nil {
		return p.abandon(res, RequestingPrimary, primary, TierRequested, elapsed)
	}

	if name == p.defaultAsset {
		p.emit(Transition{Seq: seq, Requested: name, From: RequestingPrimary, To: Placeholder,
			Asset: name, Tier: TierRequested, Err: primary.Err(), Elapsed: elapsed})
		return p.generate(res)
	}

	p.emit(Transition{Seq: seq, Requested: name, From: RequestingPrimary, To: RequestingDefault,
		Asset: name, Tier: TierRequested, Err: primary.Err(), Elapsed: elapsed})

	fallback, elapsed := p.load(ctx, p.defaultAsset)
	if fallback.Ok() {
		return p.finish(res, Installed, fallback, TierDefault, elapsed)
	}
	res.Failures = append(res.Failures, fallback)
	if ctx.Err() != nil {
		return p.abandon(res, RequestingDefault, fallback, TierDefault, elapsed)
	}

	p.emit(Transition{Seq: seq, Requested: name, From: RequestingDefault, To: Placeholder,
		Asset: p.defaultAsset, Tier: TierDefault, Err: fallback.Err(), Elapsed: elapsed})
	return p.generate(res)
}

func (p *policy) load(ctx context.Context, name string) (loader.Outcome, time.Duration) {
	start := time.Now()
	out := p.loader.Load(ctx, name)
	return out, time.Since(start)
}

func (p *policy) finish(res Result, final State, out loader.Outcome, tier Tier, elapsed time.Duration) Result {
	from := RequestingPrimary
	if tier == TierDefault {
		from = RequestingDefault
	}
	p.emit(Transition{Seq: res.Seq, Requested: res.Requested, From: from, To: final,
		Asset: out.Source(), Tier: tier, Elapsed: elapsed})
	res.Final = final
	res.Fragment = out.Fragment()
	res.Source = out.Source()
	return res
}

func (p *policy) generate(res Result) Result {
	res.Final = Placeholder
	res.Fragment = p.generator.Generate()
	return res
}

// abandon ends a chain whose context was cancelled by a newer request or by Close.
func (p *policy) abandon(res Result, from State, out loader.Outcome, tier Tier, elapsed time.Duration) Result {
	p.emit(Transition{Seq: res.Seq, Requested: res.Requested, From: from, To: Idle,
		Asset: out.Source(), Tier: tier, Err: out.Err(), Elapsed: elapsed, Stale: true})
	res.Final = Idle
	return res
}

// complete runs on the dispatcher goroutine and installs the result if it is still the latest.
func (p *policy) complete(res Result) {
	if res.Fragment == nil {
		return
	}
	if res.Seq != p.seq.Load() || p.isClosed() {
		p.logger.Debug("discarding stale result", "seq", res.Seq, "requested", res.Requested, "latest", p.seq.Load())
		res.Fragment.Dispose()
		p.emit(Transition{Seq: res.Seq, Requested: res.Requested, From: res.Final, To: Idle,
			Asset: res.Source, Tier: res.Tier(), Stale: true})
		return
	}

	p.installer.Install(res.Fragment)
	p.emit(Transition{Seq: res.Seq, Requested: res.Requested, From: res.Final, To: Idle,
		Asset: res.Source, Tier: res.Tier()})
}

func (p *policy) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *policy) emit(t Transition) {
	for _, o := range p.observers {
		o(t)
	}
}

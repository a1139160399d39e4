package html2pdf

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// launchKey is the single singleflight key: there is only ever one engine.
const launchKey = "engine"

// EnginePool owns the process-wide browser engine.
// The engine is launched lazily on first Acquire, replaced when it crashes,
// and replaced when it sat unused for longer than the idle timeout.
// Idle eviction is checked on Acquire only; there is no background sweeper.
type EnginePool struct {
	launch LaunchFunc
	idle   time.Duration
	now    func() time.Time
	logger *zap.Logger

	launches singleflight.Group

	mu           sync.Mutex
	engine       Engine
	lastAcquired time.Time
	closed       bool
}

// PoolOption configures an EnginePool.
type PoolOption func(*EnginePool)

// WithIdleTimeout sets how long the engine may sit unused before the next
// Acquire replaces it. Values <= 0 are ignored.
func WithIdleTimeout(d time.Duration) PoolOption {
	return func(p *EnginePool) {
		if d > 0 {
			p.idle = d
		}
	}
}

// WithPoolLogger sets the pool logger.
func WithPoolLogger(l *zap.Logger) PoolOption {
	return func(p *EnginePool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) PoolOption {
	return func(p *EnginePool) {
		if now != nil {
			p.now = now
		}
	}
}

// NewEnginePool creates an empty pool. No engine is launched until Acquire.
func NewEnginePool(launch LaunchFunc, opts ...PoolOption) *EnginePool {
	p := &EnginePool{
		launch: launch,
		idle:   DefaultIdleTimeout,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns the live engine, launching one if needed.
// Concurrent callers share a single in-flight launch. A caller whose context
// ends stops waiting, but the launch itself keeps going for the others.
func (p *EnginePool) Acquire(ctx context.Context) (Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if eng := p.reuse(); eng != nil {
		return eng, nil
	}

	ch := p.launches.DoChan(launchKey, p.launchEngine)
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Engine), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// reuse returns the current engine if it is fresh and connected, and stamps
// the acquisition. A stale or disconnected engine is evicted and nil returned.
func (p *EnginePool) reuse() Engine {
	p.mu.Lock()
	eng, last, closed := p.engine, p.lastAcquired, p.closed
	p.mu.Unlock()

	if eng == nil || closed {
		return nil
	}

	if idle := p.now().Sub(last); idle > p.idle {
		p.evict(eng, "idle timeout", zap.Duration("idle", idle))
		return nil
	}

	// Probe outside the lock: Connected may round-trip to the browser.
	if !eng.Connected() {
		p.evict(eng, "engine disconnected")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.engine != eng {
		// Replaced while probing; take the launch path to get the new one.
		return nil
	}
	p.lastAcquired = p.now()
	return eng
}

// evict drops eng from the pool and disposes it. Only the caller that
// actually removes eng disposes it, so an engine is never closed twice.
func (p *EnginePool) evict(eng Engine, reason string, fields ...zap.Field) {
	p.mu.Lock()
	if p.engine != eng {
		p.mu.Unlock()
		return
	}
	p.engine = nil
	p.mu.Unlock()

	p.logger.Info("evicting browser engine", append(fields, zap.String("reason", reason))...)
	p.dispose(eng)
}

// launchEngine runs inside the singleflight group.
func (p *EnginePool) launchEngine() (any, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.engine != nil {
		// A launch finished between our reuse check and joining the group.
		eng := p.engine
		p.lastAcquired = p.now()
		p.mu.Unlock()
		return eng, nil
	}
	p.mu.Unlock()

	start := p.now()
	eng, err := p.launch()
	if err != nil {
		p.logger.Error("browser launch failed", zap.Error(err))
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.dispose(eng)
		return nil, ErrPoolClosed
	}
	p.engine = eng
	p.lastAcquired = p.now()
	p.mu.Unlock()

	p.logger.Info("browser engine ready", zap.Duration("launch", p.now().Sub(start)))
	return eng, nil
}

// dispose closes eng, logging instead of returning failures.
func (p *EnginePool) dispose(eng Engine) {
	if err := eng.Close(); err != nil {
		p.logger.Warn("closing browser engine", zap.Error(err))
	}
}

// State reports the engine state. It probes the engine when one is present.
func (p *EnginePool) State() EngineState {
	p.mu.Lock()
	eng := p.engine
	p.mu.Unlock()

	switch {
	case eng == nil:
		return StateAbsent
	case eng.Connected():
		return StateLive
	default:
		return StateDisconnected
	}
}

// Close disposes the engine. Call it once during process shutdown; later
// Acquire calls fail with ErrPoolClosed. Errors are logged, not returned.
func (p *EnginePool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	eng := p.engine
	p.engine = nil
	p.mu.Unlock()

	if eng != nil {
		p.dispose(eng)
		p.logger.Info("browser engine closed")
	}
}

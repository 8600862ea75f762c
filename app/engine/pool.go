package engine

import (
	"context"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrPoolClosed = errors.New("engine pool is closed")

type PoolConfig struct {
	Path    string
	Size    int // number of engine processes
	Threads int // Threads option per engine; 0 splits the CPUs evenly
	HashMB  int // Hash option per engine; 0 keeps the engine default
}

// Pool owns a fixed set of engines and lends each to one caller at a time.
type Pool struct {
	cfg   PoolConfig
	log   zerolog.Logger
	start func() (*UCIEngine, error)

	idle chan *UCIEngine
	done chan struct{}

	mu     sync.Mutex
	all    map[*UCIEngine]struct{}
	closed bool
}

// NewPool starts every engine before returning. If any fails to start, the
// ones already running are shut down.
func NewPool(ctx context.Context, cfg PoolConfig, logger zerolog.Logger) (*Pool, error) {
	cfg = normalizePoolConfig(cfg)
	p := newPool(cfg, logger, func() (*UCIEngine, error) { return startEngine(cfg) })
	if err := p.fill(ctx); err != nil {
		return nil, err
	}
	p.log.Info().
		Str("engine", cfg.Path).
		Int("pool_size", cfg.Size).
		Int("threads", cfg.Threads).
		Int("hash_mb", cfg.HashMB).
		Msg("engine pool started")
	return p, nil
}

func newPool(cfg PoolConfig, logger zerolog.Logger, start func() (*UCIEngine, error)) *Pool {
	return &Pool{
		cfg:   cfg,
		log:   logger,
		start: start,
		idle:  make(chan *UCIEngine, cfg.Size),
		done:  make(chan struct{}),
		all:   make(map[*UCIEngine]struct{}, cfg.Size),
	}
}

func normalizePoolConfig(cfg PoolConfig) PoolConfig {
	if cfg.Path == "" {
		cfg.Path = "stockfish"
	}
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU() / cfg.Size
		if cfg.Threads < 1 {
			cfg.Threads = 1
		}
	}
	return cfg
}

func startEngine(cfg PoolConfig) (*UCIEngine, error) {
	eng, err := NewUCIEngine(cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := eng.SetOption("Threads", cfg.Threads); err != nil {
		_ = eng.Close()
		return nil, errors.WithMessage(err, "set Threads")
	}
	if cfg.HashMB > 0 {
		if err := eng.SetOption("Hash", cfg.HashMB); err != nil {
			_ = eng.Close()
			return nil, errors.WithMessage(err, "set Hash")
		}
	}
	return eng, nil
}

func (p *Pool) fill(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	started := make(chan *UCIEngine, p.cfg.Size)
	for i := 0; i < p.cfg.Size; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			eng, err := p.start()
			if err != nil {
				return err
			}
			started <- eng
			return nil
		})
	}
	err := g.Wait()
	close(started)

	if err != nil {
		for eng := range started {
			_ = eng.Close()
		}
		return errors.WithMessage(err, "start engine pool")
	}
	for eng := range started {
		p.all[eng] = struct{}{}
		p.idle <- eng
	}
	return nil
}

// Acquire checks out an idle engine, waiting until one is released.
func (p *Pool) Acquire(ctx context.Context) (*UCIEngine, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrPoolClosed
	case eng := <-p.idle:
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return nil, ErrPoolClosed
		}
		return eng, nil
	}
}

// Release checks an engine back in. Engines that are no longer ready are
// replaced in the background.
func (p *Pool) Release(eng *UCIEngine) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		_ = eng.Close()
		return
	}
	if !eng.Ready() {
		go p.replace(eng)
		return
	}
	p.idle <- eng
}

func (p *Pool) replace(old *UCIEngine) {
	p.mu.Lock()
	delete(p.all, old)
	p.mu.Unlock()
	if err := old.Close(); err != nil {
		p.log.Debug().Err(err).Msg("closing broken engine")
	}

	eng, err := p.start()
	if err != nil {
		p.log.Error().Err(err).Msg("failed to restart engine; pool shrinks by one")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = eng.Close()
		return
	}
	p.all[eng] = struct{}{}
	p.idle <- eng
	p.log.Warn().Msg("replaced broken engine")
}

// Size is the number of engines the pool currently owns.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}

// Close shuts every engine down, including checked-out ones, so callers should
// stop issuing searches first.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	engines := make([]*UCIEngine, 0, len(p.all))
	for eng := range p.all {
		engines = append(engines, eng)
	}
	p.all = map[*UCIEngine]struct{}{}
	p.mu.Unlock()

	var result error
	for _, eng := range engines {
		if err := eng.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

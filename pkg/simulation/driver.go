package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/render"
)

var (
	// ErrRendererInit wraps any failure of the renderer's Init. It is fatal.
	ErrRendererInit = errors.New("renderer initialisation failed")
	// ErrNotRunning is returned by Frame before a successful Start.
	ErrNotRunning = errors.New("simulation is not running")
	// ErrAlreadyRunning is returned by a second Start.
	ErrAlreadyRunning = errors.New("simulation is already running")
	// ErrStopped is returned by Frame once Stop has been called.
	ErrStopped = errors.New("simulation stopped")
)

// State of the Driver.
type State int32

const (
	Uninitialized State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "uninitialized"
}

// Clock supplies a monotonically increasing timestamp per frame.
type Clock interface {
	Now() time.Duration
}

// MonotonicClock measures elapsed time since it was created.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now is the time elapsed since NewMonotonicClock.
func (c *MonotonicClock) Now() time.Duration { return time.Since(c.start) }

// SteppedClock advances by a fixed Step on every call, starting at zero.
// Headless runs use it so results do not depend on machine speed.
type SteppedClock struct {
	Step time.Duration
	now  time.Duration
	used bool
}

// Now returns 0 on the first call, then Step more on each following call.
func (c *SteppedClock) Now() time.Duration {
	if c.used {
		c.now += c.Step
	}
	c.used = true
	return c.now
}

// Driver owns the population and runs one logical step per frame:
// rules, integration and transforms for every agent, then one Submit.
//
// Frame is not safe for concurrent use; hosts call it from a single
// goroutine. Stop may be called from anywhere.
type Driver struct {
	cfg      *Config
	settings behavior.SettingsSource
	renderer render.Renderer
	logger   log.Logger
	rng      *rand.Rand

	state   atomic.Int32
	stopped atomic.Bool

	pop      behavior.Population
	producer *render.Producer
	buf      []float32

	lastTimestamp time.Duration
	hasTimestamp  bool
	frames        uint64

	// once-per-second frame rate line
	fpsWindowStart time.Duration
	fpsFrames      int
}

// NewDriver prepares a driver. Nothing is allocated for the population until Start.
func NewDriver(cfg *Config, settings behavior.SettingsSource, renderer render.Renderer, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.DiscardLogger
	}
	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Driver{
		cfg:      cfg,
		settings: settings,
		renderer: renderer,
		logger:   logger,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Start creates the population and initialises the renderer. On error the
// driver stays Uninitialized.
func (d *Driver) Start() error {
	if d.State() == Running {
		return ErrAlreadyRunning
	}
	layout, err := render.ParseLayout(d.cfg.Layout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRendererInit, err)
	}
	if err := d.renderer.Init(d.cfg.Population, layout); err != nil {
		return fmt.Errorf("%w: %w", ErrRendererInit, err)
	}

	d.pop = behavior.NewRandomPopulation(d.cfg.Population, d.cfg.InitialSpeed, d.rng)
	d.producer = render.NewProducer(layout)
	d.buf = d.producer.Resize(nil, len(d.pop))
	d.state.Store(int32(Running))

	d.logger.Infof("simulation running: %d agents, %s layout", len(d.pop), layout)
	return nil
}

// Frame advances the simulation to timestamp ts and submits the transforms.
// The first frame uses a zero time step.
func (d *Driver) Frame(ts time.Duration) error {
	if d.stopped.Load() {
		return ErrStopped
	}
	if d.State() != Running {
		return ErrNotRunning
	}

	dt := 0.0
	if d.hasTimestamp {
		dt = float64(ts-d.lastTimestamp) / float64(time.Millisecond)
		if dt < 0 {
			dt = 0
		}
	} else {
		d.fpsWindowStart = ts
	}
	d.lastTimestamp, d.hasTimestamp = ts, true

	s := d.settings.Load()
	behavior.Step(d.pop, s, dt, func(i int, a *behavior.Agent) {
		d.producer.Put(d.buf, i, *a)
	})
	d.renderer.Submit(d.buf)
	d.frames++

	d.countFPS(ts)
	return nil
}

func (d *Driver) countFPS(ts time.Duration) {
	d.fpsFrames++
	if elapsed := ts - d.fpsWindowStart; elapsed >= time.Second {
		d.logger.Debugf("FPS: %d", int(float64(d.fpsFrames)/elapsed.Seconds()+0.5))
		d.fpsFrames = 0
		d.fpsWindowStart = ts
	}
}

// Run drives frames from clock until ctx is done, Stop is called or maxFrames
// frames have run (0 means no limit). after, if not nil, is called after
// each frame. Run returns nil when it ends because of a limit or Stop.
func (d *Driver) Run(ctx context.Context, clock Clock, maxFrames uint64, after func(d *Driver)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := d.Frame(clock.Now()); err != nil {
			if errors.Is(err, ErrStopped) {
				return nil
			}
			return err
		}
		if after != nil {
			after(d)
		}
		if maxFrames > 0 && d.frames >= maxFrames {
			d.logger.Infof("frame limit reached: %d", d.frames)
			return nil
		}
	}
}

// Stop asks the driver to stop; the next Frame returns ErrStopped.
func (d *Driver) Stop() {
	if !d.stopped.Swap(true) {
		d.logger.Info("simulation stop requested")
	}
}

// Stopped reports whether Stop has been called.
func (d *Driver) Stopped() bool { return d.stopped.Load() }

// State reports Uninitialized or Running.
func (d *Driver) State() State { return State(d.state.Load()) }

// Frames is the number of completed frames.
func (d *Driver) Frames() uint64 { return d.frames }

// Population gives read access to the agents between frames. Callers must
// not keep it across frames.
func (d *Driver) Population() behavior.Population { return d.pop }

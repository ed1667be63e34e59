package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/TFMV/nodefield/metrics"
	"github.com/TFMV/nodefield/models"
)

// ErrLoopRunning is returned by Start when the loop is already ticking
var ErrLoopRunning = errors.New("loop already running")

// DefaultInterval is one frame at 60 fps
const DefaultInterval = time.Second / 60

// LoopOptions configures a Loop
type LoopOptions struct {
	Interval   time.Duration
	Metrics    *metrics.Metrics
	SimOptions []Option // applied to simulations built by Reconfigure
}

// Topology describes the fixed structure of the running simulation
type Topology struct {
	SimulationID string        `json:"simulation_id"`
	NodeCount    int           `json:"node_count"`
	Noise        string        `json:"noise"`
	Edges        []models.Edge `json:"edges"`
	Degrees      []int         `json:"degrees"` // indexed by node id
}

type swapRequest struct {
	sim  *Simulation
	done chan struct{}
}

type subscriber struct {
	id uint64
	fn func(models.FrameSnapshot)
}

// Loop drives a Simulation on a fixed schedule. While running, the loop's
// goroutine is the only one advancing the simulation.
type Loop struct {
	interval   time.Duration
	metrics    *metrics.Metrics
	simOptions []Option
	swap       chan swapRequest

	sim *Simulation

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	subscribers []subscriber
	nextID      uint64
	latest      models.FrameSnapshot
	hasLatest   bool
	topology    Topology
}

// NewLoop creates a stopped loop around sim
func NewLoop(sim *Simulation, opts LoopOptions) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	l := &Loop{
		interval:   opts.Interval,
		metrics:    opts.Metrics,
		simOptions: opts.SimOptions,
		swap:       make(chan swapRequest),
	}
	l.install(sim)
	return l
}

// Start launches the ticking goroutine. It stops when ctx is canceled or
// Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return ErrLoopRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	l.running = true
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx, l.done)
	log.Printf("Frame loop started (interval %s, simulation %s)", l.interval, l.topology.SimulationID)
	return nil
}

// Stop cancels the loop and waits for its goroutine to exit. No subscriber
// is called after Stop returns. Calling Stop on a stopped loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.cancel()
	done := l.done
	l.mu.Unlock()

	<-done
}

// Running reports whether the loop goroutine is active
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Subscribe registers fn to receive every frame. Callbacks run on the loop
// goroutine in subscription order and must not block.
func (l *Loop) Subscribe(fn func(models.FrameSnapshot)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.subscribers = append(l.subscribers, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, s := range l.subscribers {
				if s.id == id {
					l.subscribers = append(l.subscribers[:i:i], l.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// Latest returns the most recent frame, if any has been produced
func (l *Loop) Latest() (models.FrameSnapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest, l.hasLatest
}

// Topology returns the structure of the current simulation
func (l *Loop) Topology() Topology {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.topology
}

// Config returns the configuration of the current simulation
func (l *Loop) Config() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Config()
}

// Reconfigure builds a new simulation from cfg and swaps it in between
// ticks, returning once the swap is done. On error the current simulation
// keeps running.
func (l *Loop) Reconfigure(cfg Config) error {
	sim, err := New(cfg, l.simOptions...)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if !l.running {
		l.installLocked(sim)
		l.mu.Unlock()
		return nil
	}
	done := l.done
	l.mu.Unlock()

	req := swapRequest{sim: sim, done: make(chan struct{})}
	select {
	case l.swap <- req:
		<-req.done
	case <-done:
		l.install(sim)
	}
	return nil
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(l.interval)
	defer func() {
		ticker.Stop()
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
		close(done)
		log.Println("Frame loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-l.swap:
			l.install(req.sim)
			close(req.done)
		case <-ticker.C:
			// a stop may race with a ready tick; never tick after cancel
			if ctx.Err() != nil {
				return
			}
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	l.mu.Lock()
	sim := l.sim
	l.mu.Unlock()

	start := time.Now()
	frame := sim.Advance()
	l.metrics.ObserveTick(time.Since(start))

	l.mu.Lock()
	l.latest = frame
	l.hasLatest = true
	subs := make([]subscriber, len(l.subscribers))
	copy(subs, l.subscribers)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(frame)
	}
}

func (l *Loop) install(sim *Simulation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.installLocked(sim)
}

// installLocked requires l.mu
func (l *Loop) installLocked(sim *Simulation) {
	replacing := l.sim != nil
	l.sim = sim
	l.topology = Topology{
		SimulationID: sim.ID(),
		NodeCount:    sim.NodeCount(),
		Noise:        sim.Noise(),
		Edges:        sim.Edges(),
		Degrees:      sim.Graph().Degrees(),
	}
	l.hasLatest = false

	l.metrics.SetTopology(l.topology.NodeCount, len(l.topology.Edges))
	if replacing {
		l.metrics.Reconfigured()
		log.Printf("Simulation replaced: %s (%d nodes, %d edges)",
			l.topology.SimulationID, l.topology.NodeCount, len(l.topology.Edges))
	}
}

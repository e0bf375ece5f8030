package highway

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// Watched is anything a Monitor can periodically probe for liveness: a
// Highway, or any other component exposing the same SelfCheck/Name
// contract. Pool does not implement it.
type Watched interface {
	Name() string
	SelfCheck() Phase
}

// Monitor periodically calls SelfCheck on every registered Watched,
// grounded in highways/HighWaysMonitoring.h's periodic liveness probe over
// a set of highways. Unlike the original, which logs every stuck event
// unconditionally, Monitor rate-limits its repeated "highway appears
// stuck" log warnings per watched name using go-catrate, so a highway that
// stays stuck for a long time logs periodically instead of once per
// monitor tick. SelfCheck itself still runs on every tick, and whatever
// it reports to the exception handler is not rate-limited.
type Monitor struct {
	interval time.Duration
	limiter  *catrate.Limiter
	logger   *Logger

	watched []Watched
	quit    chan struct{}
	done    chan struct{}
}

// NewMonitor creates a Monitor that probes every watched item once per
// interval. The default rate limit reports at most once per 10 seconds and
// at most 3 times per minute, per watched name.
func NewMonitor(interval time.Duration, logger *Logger, watched ...Watched) *Monitor {
	if logger == nil {
		logger = NewNoopLogger()
	}
	return &Monitor{
		interval: interval,
		limiter: catrate.NewLimiter(map[time.Duration]int{
			10 * time.Second: 1,
			time.Minute:      3,
		}),
		logger:  logger,
		watched: watched,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the monitor's background polling goroutine.
func (m *Monitor) Start() {
	go m.loop()
}

// Stop halts the monitor and waits for its goroutine to exit.
func (m *Monitor) Stop() {
	close(m.quit)
	<-m.done
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.quit:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	for _, w := range m.watched {
		phase := w.SelfCheck()
		if phase == PhaseSleep || phase == PhaseStopped {
			continue
		}
		if _, allowed := m.limiter.Allow(w.Name()); !allowed {
			continue
		}
		m.logger.Warning().Str("highway", w.Name()).Str("phase", phase.String()).Log("highway appears stuck")
	}
}

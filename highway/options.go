package highway

import (
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the logging facade Highway, Pool, and Monitor log through. It
// is fixed to stumpy's event type as the bundled backend (see
// highway/stumpylog), which keeps call sites free of generic type
// parameters while still going through logiface's structured-field API
// rather than a bespoke interface.
type Logger = logiface.Logger[*stumpy.Event]

// NewNoopLogger returns a Logger with no writer configured, so every call
// is a no-op. This is the default used when no WithLogger option is given,
// matching the teacher's NewNoOpLogger default.
func NewNoopLogger() *Logger {
	return stumpy.L.New()
}

type config struct {
	name                 string
	capacity             uint32
	maxTaskExecutionTime time.Duration
	idleWaitTimeout      time.Duration
	exceptionHandler     ExceptionHandler
	logger               *Logger
	freeTimeLogic        FreeTimeLogic
	workerCount          uint32
}

func defaultConfig() config {
	return config{
		name:                 "Highway",
		capacity:             1024,
		maxTaskExecutionTime: 50 * time.Second,
		idleWaitTimeout:      100 * time.Millisecond,
		// exceptionHandler is left nil here: New/NewPool install
		// defaultExceptionHandler(cfg.logger) once the logger from any
		// WithLogger option is known, so the default handler actually logs
		// through whatever logger the caller configured instead of a fixed
		// one captured before options were applied.
		logger: NewNoopLogger(),
	}
}

// Option configures a Highway or Pool at construction time,
// following the teacher's eventloop/options.go functional-options idiom.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithName sets the highway's name, used in log fields and stuck-task
// reports.
func WithName(name string) Option {
	return optionFunc(func(c *config) { c.name = name })
}

// WithCapacity bounds the number of mailbox holders the highway allocates;
// Highway.SetCapacity can raise the bound later.
func WithCapacity(capacity uint32) Option {
	return optionFunc(func(c *config) { c.capacity = capacity })
}

// WithMaxTaskExecutionTime sets the duration after which a still-running
// task is reported to the exception handler as stuck.
func WithMaxTaskExecutionTime(d time.Duration) Option {
	return optionFunc(func(c *config) { c.maxTaskExecutionTime = d })
}

// WithIdleWaitTimeout bounds how long the worker sleeps between checking
// for new messages when none are pending, matching FreeTimeLogicDefault's
// max_wait_time parameter.
func WithIdleWaitTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) { c.idleWaitTimeout = d })
}

// WithExceptionHandler overrides the handler invoked for every *Exception
// the highway raises or recovers. The default handler logs them through
// the configured logger (see WithLogger) rather than discarding them.
func WithExceptionHandler(h ExceptionHandler) Option {
	return optionFunc(func(c *config) { c.exceptionHandler = h })
}

// WithLogger overrides the structured logger used for lifecycle and
// diagnostic events.
func WithLogger(l *Logger) Option {
	return optionFunc(func(c *config) { c.logger = l })
}

// WithFreeTimeLogic installs a hook run once per idle pass through the
// worker loop, after the mailbox has been fully drained and before the
// worker goes back to sleep. keepRunning reports whether the highway is
// still on the run generation that started the loop; the hook should
// return promptly if it reads false. Grounded in highways/FreeTimeLogic.h.
func WithFreeTimeLogic(logic FreeTimeLogic) Option {
	return optionFunc(func(c *config) { c.freeTimeLogic = logic })
}

// WithWorkerCount sets the number of worker goroutines a Pool spawns to
// share its single mailbox. It has no effect on a single-threaded Highway.
func WithWorkerCount(n uint32) Option {
	return optionFunc(func(c *config) { c.workerCount = n })
}

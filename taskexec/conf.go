package taskexec

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/time/rate"
)

// Option is a functional option for configuring an Executor.
type Option func(*config)

type config struct {
	workerCount int
	grace       time.Duration
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

const defaultGracePeriod = 3 * time.Second

func newConfig(opts ...Option) *config {
	cfg := &config{
		// Operations are expected to block on subprocesses and I/O, not
		// compute, hence the 2x heuristic instead of one worker per core.
		workerCount: 2 * runtime.GOMAXPROCS(0),
		grace:       defaultGracePeriod,
		logger:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithWorkerCount sets the number of concurrent workers.
// If not specified, defaults to 2 x runtime.GOMAXPROCS(0).
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithGracePeriod sets how long a cancellation request stays cooperative
// before the Future is forcibly resolved Cancelled and the operation is
// abandoned. Zero disables the forced tier entirely. Defaults to 3s.
func WithGracePeriod(d time.Duration) Option {
	return func(cfg *config) {
		if d >= 0 {
			cfg.grace = d
		}
	}
}

// WithRateLimit sets a rate limiter for controlling task throughput.
// tasksPerSecond specifies the maximum number of tasks started per second and
// burst the maximum started at once. Useful for preventing overwhelming
// external services. If not specified, no rate limiting is applied.
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithLogger sets a structured logger for executor lifecycle events.
// The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

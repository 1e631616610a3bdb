package dsketch

import (
	"fmt"
	"log/slog"

	"github.com/qpopss/dsketch/internal/sketch"
)

// AggregationMode selects how per-worker local heavy-hitter views are
// combined into the global view (§4.4).
type AggregationMode int

const (
	// SharedMap publishes every worker's deltas into one lock-free
	// concurrent map that queries scan directly.
	SharedMap AggregationMode = iota
	// OwnerLocal keeps each worker's view local, guarded by a
	// reader-biased mutex, and unions them at query time.
	OwnerLocal
)

// EvaluationMode selects the evaluator goroutine's operating mode.
type EvaluationMode int

const (
	// Throughput runs the evaluator as a passive background sweeper.
	Throughput EvaluationMode = iota
	// Latency runs the evaluator more frequently, trading CPU for
	// fresher heavy-hitter snapshots.
	Latency
	// Accuracy runs the most frequent sweep, for workloads that need
	// the tightest possible bound on staleness.
	Accuracy
)

// Config holds every tunable of an Engine. Populate it through Option
// values passed to New; do not construct it directly.
type Config struct {
	Threads            int
	Theta              float64
	FilterCapacity     int
	BucketCount        uint32
	PromotionThreshold uint32
	DecayBase          float64
	MaxKickDepth       int
	LocalTrackerSize   int
	Aggregation        AggregationMode
	Evaluation         EvaluationMode
	Logger             *slog.Logger
}

// defaultConfig returns the parameter set used throughout this module's
// examples and tests: 8 threads, theta=0.01, filter capacity 16, the CHK
// defaults from sketch.DefaultConfig, SHARED_MAP aggregation, throughput
// evaluation.
func defaultConfig() *Config {
	sc := sketch.DefaultConfig()
	return &Config{
		Threads:            8,
		Theta:              sc.Theta,
		FilterCapacity:     16,
		BucketCount:        sc.Buckets,
		PromotionThreshold: sc.PromotionThreshold,
		DecayBase:          sc.DecayBase,
		MaxKickDepth:       sc.MaxKickDepth,
		LocalTrackerSize:   64,
		Aggregation:        SharedMap,
		Evaluation:         Throughput,
		Logger:             slog.Default(),
	}
}

// Option is a functional option for configuring an Engine.
type Option func(*Config)

// WithThreads sets the number of delegation/worker threads T.
func WithThreads(n int) Option {
	return func(c *Config) { c.Threads = n }
}

// WithTheta sets the heavy-hitter threshold fraction.
func WithTheta(theta float64) Option {
	return func(c *Config) { c.Theta = theta }
}

// WithFilterCapacity sets the per-(source,owner) delegation filter
// capacity C; must be a positive multiple of 4.
func WithFilterCapacity(c int) Option {
	return func(cfg *Config) { cfg.FilterCapacity = c }
}

// WithBucketCount sets the CHK sketch's per-table bucket count; must be
// a power of two.
func WithBucketCount(n uint32) Option {
	return func(c *Config) { c.BucketCount = n }
}

// WithPromotionThreshold sets the CHK lobby promotion threshold P.
func WithPromotionThreshold(p uint32) Option {
	return func(c *Config) { c.PromotionThreshold = p }
}

// WithDecayBase sets the CHK weighted-decay base b.
func WithDecayBase(b float64) Option {
	return func(c *Config) { c.DecayBase = b }
}

// WithMaxKickDepth sets the CHK bounded kick-out chain length D.
func WithMaxKickDepth(d int) Option {
	return func(c *Config) { c.MaxKickDepth = d }
}

// WithLocalTrackerSize sets the per-worker local heavy-hitter heap bound K.
func WithLocalTrackerSize(k int) Option {
	return func(c *Config) { c.LocalTrackerSize = k }
}

// WithAggregationMode selects SHARED_MAP or OWNER_LOCAL global
// aggregation.
func WithAggregationMode(m AggregationMode) Option {
	return func(c *Config) { c.Aggregation = m }
}

// WithEvaluationMode selects the evaluator goroutine's operating mode.
func WithEvaluationMode(m EvaluationMode) Option {
	return func(c *Config) { c.Evaluation = m }
}

// WithLogger sets the structured logger used for lifecycle events.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// validate checks every field and returns a wrapped sentinel error for
// the first violation found.
func (c *Config) validate() error {
	if c.Threads <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreadCount, c.Threads)
	}
	if c.Theta < 0 || c.Theta > 1 {
		return fmt.Errorf("%w: got %f", ErrInvalidTheta, c.Theta)
	}
	if c.FilterCapacity <= 0 || c.FilterCapacity%4 != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFilterCapacity, c.FilterCapacity)
	}
	if c.BucketCount == 0 || c.BucketCount&(c.BucketCount-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBucketCount, c.BucketCount)
	}
	if c.LocalTrackerSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLocalTrackerSize, c.LocalTrackerSize)
	}
	return nil
}

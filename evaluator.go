package dsketch

import (
	"context"
	"time"
)

// evaluationInterval maps an EvaluationMode to a sweep period: Accuracy
// sweeps most often (tightest staleness bound, most CPU), Throughput
// least often.
func (e *Engine) evaluationInterval() time.Duration {
	switch e.cfg.Evaluation {
	case Accuracy:
		return time.Millisecond
	case Latency:
		return 5 * time.Millisecond
	default:
		return 50 * time.Millisecond
	}
}

// runEvaluator periodically sweeps every worker's local tracker, evicting
// entries that have fallen below the current heavy-hitter threshold
// (§4.5's pop_all_below) and erasing them from the global view so a
// transient spike doesn't linger forever.
func (e *Engine) runEvaluator(ctx context.Context) error {
	pinWorker()
	<-e.barrier

	ticker := time.NewTicker(e.evaluationInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.sweep()
		}
	}
}

func (e *Engine) sweep() {
	threshold := uint64(float64(e.streamSizeValue()) * e.cfg.Theta)
	for _, w := range e.workers {
		evicted := w.local.PopBelow(threshold)
		if e.global == nil || len(evicted) == 0 {
			continue
		}
		for _, ent := range evicted {
			e.global.Erase(ent.Key)
		}
	}
}

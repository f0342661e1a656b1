package simulate

import (
	"context"
	"math"
	"runtime"
	"sync"

	apperrors "github.com/tradelab/journal-insights/internal/errors"
	"github.com/tradelab/journal-insights/pkg/types"
)

// SweepPool manages parallel evaluation of independent sweep points. Every
// point is a pure function of the immutable per-day groups, so points may run
// in any order; only within-day chronology matters and each job preserves it.
type SweepPool struct {
	workerCount int
	jobQueue    chan sweepJob
	resultQueue chan sweepResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

type sweepJob struct {
	index int
	run   func() (float64, int, error)
}

type sweepResult struct {
	index int
	value float64
	kept  int
	err   error
}

// NewSweepPool creates a pool with the given number of workers, defaulting
// to the CPU count.
func NewSweepPool(ctx context.Context, workerCount, jobBufferSize int) *SweepPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &SweepPool{
		workerCount: workerCount,
		jobQueue:    make(chan sweepJob, jobBufferSize),
		resultQueue: make(chan sweepResult, jobBufferSize),
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// Start launches the workers.
func (p *SweepPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop drains the pool gracefully.
func (p *SweepPool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()
}

func (p *SweepPool) submit(j sweepJob) error {
	select {
	case p.jobQueue <- j:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func (p *SweepPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			value, kept, err := job.run()
			select {
			case p.resultQueue <- sweepResult{index: job.index, value: value, kept: kept, err: err}:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// ParallelCooldownCurve computes the cooldown curve with sweep points spread
// across the pool's workers. Results are ordered by duration regardless of
// completion order; the first job error aborts the sweep.
func ParallelCooldownCurve(ctx context.Context, groups []types.DailyGroup, durations []float64, metric Metric, agg Aggregation, workers int) ([]CooldownPoint, error) {
	if len(durations) == 0 {
		return nil, nil
	}
	if metric == nil {
		metric = PnLMetric
	}

	pool := NewSweepPool(ctx, workers, len(durations))
	pool.Start()

	submitted := 0
	for i, cooldown := range durations {
		cooldown := cooldown
		job := sweepJob{index: i, run: func() (float64, int, error) {
			return cooldownPoint(groups, cooldown, metric, agg)
		}}
		if err := pool.submit(job); err != nil {
			break
		}
		submitted++
	}

	points := make([]CooldownPoint, len(durations))
	var firstErr error
	for i := 0; i < submitted; i++ {
		r := <-pool.results()
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		points[r.index] = CooldownPoint{Seconds: durations[r.index], Value: r.value, Kept: r.kept}
	}
	pool.Stop()

	if firstErr != nil {
		return nil, firstErr
	}
	if submitted < len(durations) {
		return nil, apperrors.Wrap(ctx.Err(), apperrors.CategoryDataQuality, component, "ParallelCooldownCurve")
	}
	return points, nil
}

func (p *SweepPool) results() <-chan sweepResult {
	return p.resultQueue
}

// cooldownPoint evaluates a single sweep duration across all active days.
func cooldownPoint(groups []types.DailyGroup, cooldown float64, metric Metric, agg Aggregation) (float64, int, error) {
	var values []float64
	var pnls []float64
	wins := 0
	for _, g := range groups {
		if len(g.Trades) < 2 {
			continue
		}
		for _, t := range SimulateDayCooldown(g.Trades, cooldown) {
			v := metric(t)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, apperrors.Newf(apperrors.CategoryDataQuality, component, "CooldownCurve",
					"non-finite metric value for trade opened %s", t.OpenTime.Format("2006-01-02 15:04:05"))
			}
			values = append(values, v)
			pnls = append(pnls, t.PnL)
			if t.Win() {
				wins++
			}
		}
	}
	value, err := aggregate(values, pnls, wins, agg)
	return value, len(values), err
}

// Package resample estimates standard errors of rolled-up scores by
// bootstrap resampling of test records. Iterations run in parallel on a
// bounded worker pool; each iteration draws from its own seeded source, so
// results are identical for a given seed whatever the worker count.
package resample

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alignbench/domain/scoring"
	"alignbench/internal/engine"
	"alignbench/internal/errors"
	"alignbench/internal/logging"
)

// Options bound the resampling run
type Options struct {
	Iterations int
	Seed       int64
	Workers    int
}

// Estimate summarizes one resampled statistic
type Estimate struct {
	Mean float64
	SE   float64
	N    int
}

// Run executes opts.Iterations independent iterations of fn. Iteration i
// receives rand.New(rand.NewSource(opts.Seed + i)) and its result lands at
// index i. The first error cancels the remaining iterations.
func Run[T any](ctx context.Context, opts Options, fn func(ctx context.Context, rng *rand.Rand) (T, error)) ([]T, error) {
	if opts.Iterations <= 0 {
		return nil, errors.ValidationError("resample iterations must be positive")
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]T, opts.Iterations)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < opts.Iterations; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(opts.Seed + int64(i)))
			v, err := fn(ctx, rng)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summarize reduces resampled values to their mean and sample standard
// deviation. Non-finite values are skipped; ok is false with fewer than two
// usable values.
func Summarize(values []float64) (Estimate, bool) {
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	if len(data) < 2 {
		return Estimate{}, false
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return Estimate{}, false
	}
	sd, err := stats.StandardDeviationSample(data)
	if err != nil {
		return Estimate{}, false
	}
	return Estimate{Mean: mean, SE: sd, N: len(data)}, true
}

// RepeatRunSE is the standard error of the mean of repeated agent runs of one
// study, sd/√n
func RepeatRunSE(scores []float64) (float64, bool) {
	est, ok := Summarize(scores)
	if !ok {
		return 0, false
	}
	return est.SE / math.Sqrt(float64(est.N)), true
}

// Resample draws records with replacement within each study, keeping every
// study's test count
func Resample(records []scoring.TestRecord, rng *rand.Rand) []scoring.TestRecord {
	byStudy := make(map[string][]scoring.TestRecord)
	for _, rec := range records {
		byStudy[rec.StudyID] = append(byStudy[rec.StudyID], rec)
	}
	ids := make([]string, 0, len(byStudy))
	for id := range byStudy {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]scoring.TestRecord, 0, len(records))
	for _, id := range ids {
		pool := byStudy[id]
		for range pool {
			out = append(out, pool[rng.Intn(len(pool))])
		}
	}
	return out
}

// StudySE bootstraps the pas_raw of every study in the dataset and returns
// the standard error per study id. Studies whose score could not be
// recomputed in at least two iterations are absent from the map.
func StudySE(ctx context.Context, scorer *engine.Scorer, ds scoring.Dataset, opts Options) (map[string]float64, error) {
	logger := logging.New("resample")

	runs, err := Run(ctx, opts, func(_ context.Context, rng *rand.Rand) (map[string]float64, error) {
		sample := ds
		sample.Records = Resample(ds.Records, rng)
		result, err := scorer.Score(sample)
		if err != nil {
			return nil, err
		}
		scores := make(map[string]float64, len(result.Studies))
		for _, st := range result.Studies {
			if st.PASRaw != nil {
				scores[st.StudyID] = *st.PASRaw
			}
		}
		return scores, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap failed")
	}

	values := make(map[string][]float64)
	for _, run := range runs {
		for id, v := range run {
			values[id] = append(values[id], v)
		}
	}

	ses := make(map[string]float64, len(values))
	for id, vs := range values {
		if est, ok := Summarize(vs); ok {
			ses[id] = est.SE
		}
	}

	logger.Info("bootstrap complete",
		zap.Int("iterations", opts.Iterations),
		zap.Int("workers", opts.Workers),
		zap.Int("studies", len(ses)))
	return ses, nil
}

// Benchmark scores the dataset with bootstrap SEs attached, so the benchmark
// carries pas_se and an inverse-variance pas_ivw
func Benchmark(ctx context.Context, scorer *engine.Scorer, ds scoring.Dataset, opts Options) (*scoring.BenchmarkResult, error) {
	ses, err := StudySE(ctx, scorer, ds, opts)
	if err != nil {
		return nil, err
	}
	return scorer.ScoreWithSE(ds, ses)
}

package encoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rtm0/bioyearly/internal/georef"
	"github.com/rtm0/bioyearly/internal/observability"
)

// Sink persists a raster under a file name.
type Sink interface {
	Write(ctx context.Context, name string, r *Raster) error
}

// StepResult is the outcome of one time step.
type StepResult struct {
	Step  int
	Label float64
	Name  string
	Err   error
}

// Summary reports every time step in time axis order.
type Summary struct {
	Results []StepResult
}

// Written returns the steps whose raster was persisted.
func (s Summary) Written() []StepResult {
	return s.filter(func(r StepResult) bool { return r.Err == nil })
}

// Failed returns the steps that produced no raster.
func (s Summary) Failed() []StepResult {
	return s.filter(func(r StepResult) bool { return r.Err != nil })
}

func (s Summary) filter(keep func(StepResult) bool) []StepResult {
	var out []StepResult
	for _, r := range s.Results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Err joins the errors of all failed steps, or returns nil.
func (s Summary) Err() error {
	var errs []error
	for _, r := range s.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
	}
	return errors.Join(errs...)
}

// Encoder writes one raster per time step through a Sink.
type Encoder struct {
	sink        Sink
	naming      Naming
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithClock sets the clock used to time raster writes.
func WithClock(c clockwork.Clock) Option {
	return func(e *Encoder) { e.clock = c }
}

// New creates an Encoder running up to concurrency time steps at once.
func New(sink Sink, naming Naming, concurrency int, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Encoder {
	e := &Encoder{
		sink:        sink,
		naming:      naming,
		concurrency: max(concurrency, 1),
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run encodes every time step of src. A failing step does not stop the
// others; its error is reported in the summary. A step whose file name
// repeats an earlier step's is failed without being written. Cancelling ctx stops
// dispatching, and steps not yet started fail with the context error.
func (e *Encoder) Run(ctx context.Context, src Source, ref georef.Georef) Summary {
	times := src.Times()
	results := make([]StepResult, len(times))
	pending := make([]int, 0, len(times))
	seen := make(map[string]int, len(times))
	for i, label := range times {
		results[i] = StepResult{Step: i, Label: label, Name: e.naming.FileName(label)}
		if first, ok := seen[results[i].Name]; ok {
			results[i].Err = fmt.Errorf("%w: step %d and step %d both map to %s", ErrDuplicateName, first, i, results[i].Name)
			e.logger.Error("raster failed", "year", Label(label), "file", results[i].Name, "error", results[i].Err)
			e.metrics.RastersFailed.Inc()
			continue
		}
		seen[results[i].Name] = i
		pending = append(pending, i)
	}

	stepsCh := make(chan int)
	progressCh := make(chan int)
	var wg sync.WaitGroup
	for range e.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range stepsCh {
				results[i].Err = e.encodeStep(ctx, src, ref, results[i])
				progressCh <- i
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var finished float64
		total := float64(len(pending))
		start := e.clock.Now()
		for range progressCh {
			finished++
			percent := fmt.Sprintf("%.2f%%", 100*finished/total)
			duration := e.clock.Since(start).Round(time.Second)
			e.logger.Info("progress", "done", percent, "in", duration)
		}
	}()

	dispatched := 0
dispatch:
	for _, i := range pending {
		select {
		case <-ctx.Done():
			break dispatch
		case stepsCh <- i:
			dispatched++
		}
	}
	close(stepsCh)
	wg.Wait()
	close(progressCh)
	<-done

	for _, i := range pending[dispatched:] {
		results[i].Err = ctx.Err()
		e.metrics.RastersFailed.Inc()
	}
	return Summary{Results: results}
}

func (e *Encoder) encodeStep(ctx context.Context, src Source, ref georef.Georef, res StepResult) error {
	start := e.clock.Now()
	e.logger.Info("processing year", "year", Label(res.Label), "file", res.Name)

	r, err := Build(src, ref, res.Step)
	if err == nil {
		err = e.sink.Write(ctx, res.Name, r)
	}
	if err != nil {
		e.logger.Error("raster failed", "year", Label(res.Label), "file", res.Name, "error", err)
		e.metrics.RastersFailed.Inc()
		return err
	}

	e.metrics.RasterEncodeDuration.Observe(e.clock.Since(start).Seconds())
	e.metrics.RastersWritten.Inc()
	for i, b := range r.Bands {
		e.logger.Debug("band", "file", res.Name, "band", i+1, "variable", b.Label)
	}
	e.logger.Info("raster written", "file", res.Name, "bands", len(r.Bands))
	return nil
}

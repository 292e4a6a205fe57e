package hlcd

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/Aljumaily/hlcd-search/field"
	"github.com/Aljumaily/hlcd-search/logging"
)

// DefaultCombinationCeiling bounds the combination store at 2^26 entries (512 MiB)
const DefaultCombinationCeiling uint64 = 1 << 26

// contextCheckInterval is how many candidates are tested between context checks
const contextCheckInterval = 1 << 12

// Result is the outcome of one search session
type Result struct {
	Params           CodeParameters
	Matrix           *Matrix
	Combinations     *CombinationView
	Found            bool
	RecursiveCalls   uint64
	CandidatesTested uint64
	Elapsed          time.Duration
}

type Option func(*Engine)

func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithCombinationCeiling rejects searches needing more than ceiling stored
// combinations. Zero disables the check.
func WithCombinationCeiling(ceiling uint64) Option {
	return func(e *Engine) { e.ceiling = ceiling }
}

// WithExperimentalConcurrency allows parameters requesting multithreading to
// run the concurrent orthogonality check. Its behaviour is not verified.
func WithExperimentalConcurrency() Option {
	return func(e *Engine) { e.experimentalConcurrency = true }
}

// Engine runs one depth-first search for a generator matrix
type Engine struct {
	params                  CodeParameters
	field                   *field.Field
	matrix                  *Matrix
	store                   *CombinationStore
	logger                  *logging.Logger
	metrics                 *Metrics
	ceiling                 uint64
	experimentalConcurrency bool

	recursiveCalls     uint64
	candidatesTested   uint64
	candidatesRejected uint64
}

func NewEngine(params CodeParameters, opts ...Option) (*Engine, error) {
	e := &Engine{
		params:  params,
		ceiling: DefaultCombinationCeiling,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.MustGetLogger("hlcd.search")
	}

	if params.IsMultithreaded() && !e.experimentalConcurrency {
		return nil, errors.Wrap(ErrUnsupportedOperation, "the multithreaded search is experimental and was not enabled")
	}

	f, err := field.InitField(params.Base())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidBase, err.Error())
	}
	matrix, err := NewMatrix(params.K(), params.N(), params.Base())
	if err != nil {
		return nil, err
	}
	store, err := NewCombinationStore(params, e.ceiling)
	if err != nil {
		return nil, err
	}

	e.field = f
	e.matrix = matrix
	e.store = store
	return e, nil
}

// RunSearch searches for a generator matrix with the given parameters
func RunSearch(ctx context.Context, params CodeParameters, opts ...Option) (*Result, error) {
	e, err := NewEngine(params, opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

// Run performs the search. A code that does not exist is reported through
// Result.Found, errors are reserved for invalid use and cancellation.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	e.logger.Infow("starting search", "code", e.params.String(),
		"hlcd", e.params.IsHLCD(), "restricted", e.params.RestrictCodewordGeneration())

	found, err := e.search(ctx)
	result := &Result{
		Params:           e.params,
		Matrix:           e.matrix,
		Combinations:     e.store.View(),
		Found:            found,
		RecursiveCalls:   e.recursiveCalls,
		CandidatesTested: e.candidatesTested,
		Elapsed:          time.Since(start),
	}
	e.metrics.observe(result, e.candidatesRejected, err)
	if err != nil {
		e.logger.Warnw("search aborted", "code", e.params.String(), "error", err)
		return nil, err
	}

	e.logger.Infow("search finished", "code", e.params.String(), "found", found,
		"calls", e.recursiveCalls, "candidates", e.candidatesTested, "elapsed", result.Elapsed)
	return result, nil
}

func (e *Engine) search(ctx context.Context) (bool, error) {
	e.store.Set(0, 0)
	generator := NewVectorGenerator(e.params)
	if !e.params.RestrictCodewordGeneration() {
		return e.backtrack(ctx, 0, generator)
	}

	first := generator.CanonicalFirstRow()
	if !e.isVectorLinearlyOrthogonal(1, first) {
		e.logger.Debugw("canonical first row is below the minimum distance", "row", first)
		return false, nil
	}
	e.matrix.rows[0] = first
	return e.backtrack(ctx, 1, generator)
}

// backtrack fills row and every row below it. Returning false asks the caller
// to try its next candidate.
func (e *Engine) backtrack(ctx context.Context, row int, generator *VectorGenerator) (bool, error) {
	e.recursiveCalls++

	if row >= e.params.K() {
		ok, err := e.isComplete()
		if err != nil || ok {
			return ok, err
		}
		e.matrix.rows[e.params.K()-1] = 0
		return false, nil
	}

	limit := power(e.params.Base(), row)
	for {
		if e.candidatesTested%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return false, errors.Wrapf(err, "search interrupted at row %d", row)
			}
		}

		candidate, ok, err := generator.NextFullVector(row)
		if err != nil {
			return false, err
		}
		if !ok {
			e.matrix.rows[row] = 0
			return false, nil
		}
		e.candidatesTested++

		if !e.isVectorLinearlyOrthogonal(limit, candidate) {
			e.candidatesRejected++
			continue
		}

		e.matrix.rows[row] = candidate
		if e.logger.IsEnabledFor(zapcore.DebugLevel) {
			e.logger.Debugw("accepted row", "row", row, "vector", candidate)
		}
		found, err := e.backtrack(ctx, row+1, generator.Successor())
		if err != nil || found {
			return found, err
		}
	}
}

// isComplete gates a fully assigned matrix: Hermitian LCD codes need G·Ḡᵗ invertible
func (e *Engine) isComplete() (bool, error) {
	if !e.params.IsHLCD() {
		return true, nil
	}
	gPrime, err := e.matrix.GPrime()
	if err != nil {
		return false, err
	}
	return gPrime.IsInvertible()
}

// isVectorLinearlyOrthogonal checks that every multiple of candidate added to
// each of the first limit combinations keeps the minimum distance. The sums
// are stored at c·limit + i as they are computed, so an accepted candidate
// leaves the store holding base·limit combinations.
func (e *Engine) isVectorLinearlyOrthogonal(limit uint64, candidate field.Vector) bool {
	if e.params.IsMultithreaded() {
		return e.isVectorLinearlyOrthogonalConcurrent(limit, candidate)
	}

	d := e.params.D()
	for c := byte(1); int(c) < e.params.Base(); c++ {
		multiple := e.field.MultiplyByScalar(candidate, c)
		offset := uint64(c) * limit
		for i := uint64(0); i < limit; i++ {
			sum := field.Add(multiple, e.store.Get(i))
			if e.field.HammingWeight(sum) < d {
				return false
			}
			e.store.Set(offset+i, sum)
		}
	}
	return true
}

// isVectorLinearlyOrthogonalConcurrent checks each scalar multiple in its own
// goroutine. The first violation raises a shared flag that stops the others.
func (e *Engine) isVectorLinearlyOrthogonalConcurrent(limit uint64, candidate field.Vector) bool {
	var violated atomic.Bool
	d := e.params.D()
	e.store.Reserve(uint64(e.params.Base()) * limit)

	var g errgroup.Group
	for c := byte(1); int(c) < e.params.Base(); c++ {
		c := c
		g.Go(func() error {
			multiple := e.field.MultiplyByScalar(candidate, c)
			offset := uint64(c) * limit
			for i := uint64(0); i < limit; i++ {
				if violated.Load() {
					return nil
				}
				sum := field.Add(multiple, e.store.Get(i))
				if e.field.HammingWeight(sum) < d {
					violated.Store(true)
					return nil
				}
				e.store.Set(offset+i, sum)
			}
			return nil
		})
	}
	_ = g.Wait()
	return !violated.Load()
}

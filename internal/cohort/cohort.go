// Package cohort runs populations of virtual patients in parallel,
// perturbing the initial resistant fraction across replicates.
package cohort

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/oncodyn/tumorsim/internal/models"
	"github.com/oncodyn/tumorsim/internal/therapy"
)

type Ensemble struct {
	variant   string
	overrides map[string]float64
	numRuns   int
	seed      int64

	// FracResJitter is the +/- half-width of the uniform perturbation
	// applied to fracRes per replicate. Zero disables perturbation.
	FracResJitter float64
}

type Result struct {
	Replicate int
	FracRes   float64
	Success   bool
	Record    *therapy.Record
}

func NewEnsemble(variant string, overrides map[string]float64, numRuns int, seed int64) *Ensemble {
	return &Ensemble{
		variant:   variant,
		overrides: overrides,
		numRuns:   numRuns,
		seed:      seed,
	}
}

// Run executes one policy instance per replicate and collects every
// trajectory, even failed ones. Policies carry internal state between
// decisions, so each replicate builds its own via the factory.
func (e *Ensemble) Run(ctx context.Context, newPolicy func() therapy.Policy) ([]Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}

	fracs := e.drawFractions()

	results := make([]Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			if ctx.Err() != nil {
				errs[idx] = ctx.Err()
				return
			}

			overrides := make(map[string]float64, len(e.overrides)+1)
			for k, v := range e.overrides {
				overrides[k] = v
			}
			overrides["fracRes"] = fracs[idx]

			sys, err := models.New(e.variant, overrides)
			if err != nil {
				errs[idx] = err
				return
			}

			model := therapy.NewModel(sys)
			ok := newPolicy().Run(model)

			results[idx] = Result{
				Replicate: idx,
				FracRes:   fracs[idx],
				Success:   ok,
				Record:    model.Record(),
			}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// drawFractions is sequential so a fixed seed yields the same cohort
// regardless of goroutine scheduling.
func (e *Ensemble) drawFractions() []float64 {
	base := 0.01
	if v, ok := e.overrides["fracRes"]; ok {
		base = v
	}

	rng := rand.New(rand.NewSource(e.seed))
	fracs := make([]float64, e.numRuns)
	for i := range fracs {
		f := base
		if e.FracResJitter > 0 {
			f += (2*rng.Float64() - 1) * e.FracResJitter
		}
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		fracs[i] = f
	}
	return fracs
}

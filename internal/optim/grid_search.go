// Package optim tunes dosing-policy parameters by exhaustive grid
// search over a scalar trajectory metric.
package optim

import (
	"context"
	"math"

	"github.com/oncodyn/tumorsim/internal/metrics"
	"github.com/oncodyn/tumorsim/internal/therapy"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every grid cell and returns the parameter set
// minimising the named metric. buildRun maps a candidate parameter set
// to a fresh model and policy; failed runs are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildRun func(params map[string]float64) (*therapy.Model, therapy.Policy, error),
	metricName string,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), buildRun, metricName, &best, &bestParams)

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildRun func(map[string]float64) (*therapy.Model, therapy.Policy, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		model, policy, err := buildRun(current)
		if err != nil {
			return
		}

		if !policy.Run(model) {
			return
		}

		val, err := metrics.Compute(metricName, model.Record())
		if err != nil {
			return
		}

		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, buildRun, metricName, best, bestParams)
	}
}

// Package optim searches parameter grids for the run that minimizes a metric.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/experiment"
)

// MetricIterations ranks runs by their record count instead of a metric.
const MetricIterations = "iterations"

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search tries every grid point on top of base and returns the parameters
// with the smallest metric. Runs that fail, or Newton runs that do not
// converge, are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	reg *experiment.Registry,
	base *config.Config,
	metricName string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, reg, 0, base, make(map[string]float64), metricName, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("optim: no grid point produced a usable run")
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	reg *experiment.Registry,
	depth int,
	cfg *config.Config,
	current map[string]float64,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil
		}
		if result.Method == dynamo.NewtonRaphson && result.Status != dynamo.StatusConverged {
			return nil
		}

		val, ok := result.Metrics[metricName]
		if metricName == MetricIterations {
			val, ok = float64(len(result.Records)), true
		}
		if ok && val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next, err := experiment.WithField(cfg, paramName, val)
		if err != nil {
			continue
		}

		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, reg, depth+1, next, newParams, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

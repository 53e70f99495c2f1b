package matrixgame

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// RegretMatching returns the strategy proportional to the positive part
// of each action's cumulative regret, or the uniform strategy if no
// action has positive regret.
func RegretMatching(regrets []float64) []float64 {
	strat := make([]float64, len(regrets))
	total := 0.0
	for i, r := range regrets {
		if r > 0 {
			strat[i] = r
			total += r
		}
	}

	if total <= 0 {
		return Uniform(len(regrets))
	}

	floats.Scale(1/total, strat)
	return strat
}

// RegretMinimization runs nIter iterations of regret matching self-play on
// g and returns the average strategy profile after each iteration.
//
// Each iteration both players play the regret-matching strategy of their
// cumulative regrets, and every action's regret grows by its payoff against
// the opponent's strategy minus the realized payoff. Average regret
// decreases as O(1/sqrt(t)), so in zero-sum games the average profile
// approaches an equilibrium.
func RegretMinimization(g *Game, nIter int) ([]Profile, error) {
	if nIter < 0 {
		return nil, errors.Errorf("invalid number of iterations: %d", nIter)
	}

	n, m := g.Dims()
	p0Regrets := make([]float64, n)
	p1Regrets := make([]float64, m)
	p0StrategySum := make([]float64, n)
	p1StrategySum := make([]float64, m)
	colPayoffs := g.Col.T()

	p0Values := allocFloatSlice(n)
	defer freeFloatSlice(p0Values)
	p1Values := allocFloatSlice(m)
	defer freeFloatSlice(p1Values)

	result := make([]Profile, 0, nIter)
	for i := 1; i <= nIter; i++ {
		p0 := RegretMatching(p0Regrets)
		p1 := RegretMatching(p1Regrets)

		actionValuesTo(p0Values, g.Row, p1)
		actionValuesTo(p1Values, colPayoffs, p0)
		accumulateRegrets(p0Regrets, p0Values, floats.Dot(p0, p0Values))
		accumulateRegrets(p1Regrets, p1Values, floats.Dot(p1, p1Values))

		floats.Add(p0StrategySum, p0)
		floats.Add(p1StrategySum, p1)
		result = append(result, Profile{
			Row: averageStrategy(p0StrategySum, i),
			Col: averageStrategy(p1StrategySum, i),
		})

		if nIter >= 10 && i%(nIter/10) == 0 {
			glog.V(1).Infof("After %d iterations, player 0 regrets: %v", i, p0Regrets)
			glog.V(1).Infof("After %d iterations, player 1 regrets: %v", i, p1Regrets)
		}
	}

	return result, nil
}

func accumulateRegrets(regrets, values []float64, realized float64) {
	for i, v := range values {
		regrets[i] += v - realized
	}
}

func averageStrategy(strategySum []float64, n int) []float64 {
	result := make([]float64, len(strategySum))
	floats.ScaleTo(result, 1/float64(n), strategySum)
	return result
}

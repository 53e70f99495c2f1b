package matrixgame

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// FictitiousPlayOptions configures FictitiousPlay.
type FictitiousPlayOptions struct {
	// Naive makes each player best-respond to the opponent's most recent
	// best response rather than to the opponent's average strategy.
	Naive bool
}

// FictitiousPlay runs nIter iterations of fictitious play on g and returns
// the average strategy profile after each iteration.
//
// Both players start by playing their first action, which counts as the
// first sample of their average. At iteration t (1-based) each player
// best-responds to the opponent's average strategy (or last response, if
// Naive) and the response is mixed into the player's average with weight
// 1/(t+1). In zero-sum games the exploitability of the average profile
// converges to zero.
func FictitiousPlay(g *Game, nIter int, opts FictitiousPlayOptions) ([]Profile, error) {
	if nIter < 0 {
		return nil, errors.Errorf("invalid number of iterations: %d", nIter)
	}

	n, m := g.Dims()
	p0Average := PureStrategy(n, 0)
	p1Average := PureStrategy(m, 0)
	p0Last := PureStrategy(n, 0)
	p1Last := PureStrategy(m, 0)
	colPayoffs := g.Col.T()

	result := make([]Profile, 0, nIter)
	for i := 1; i <= nIter; i++ {
		p0Target, p1Target := p1Average, p0Average
		if opts.Naive {
			p0Target, p1Target = p1Last, p0Last
		}

		p0Selected := bestResponse(actionValues(g.Row, p0Target), n)
		p1Selected := bestResponse(actionValues(colPayoffs, p1Target), m)
		p0Last, p1Last = p0Selected.Strategy, p1Selected.Strategy

		weight := 1 / float64(i+1)
		p0Average = mixInto(p0Average, p0Last, weight)
		p1Average = mixInto(p1Average, p1Last, weight)
		result = append(result, Profile{Row: p0Average, Col: p1Average})

		if nIter >= 10 && i%(nIter/10) == 0 {
			glog.V(1).Infof("After %d iterations, player 0 weights: %v", i, p0Average)
			glog.V(1).Infof("After %d iterations, player 1 weights: %v", i, p1Average)
		}
	}

	return result, nil
}

// mixInto returns (1-weight)*average + weight*s as a new slice.
func mixInto(average, s []float64, weight float64) []float64 {
	result := make([]float64, len(average))
	floats.AddScaledTo(result, average, -weight, average)
	floats.AddScaled(result, weight, s)
	return result
}

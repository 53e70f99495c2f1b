package matrixgame

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Response is a pure best response to a fixed opponent strategy.
type Response struct {
	// Action is the lowest-indexed maximizing action.
	Action int
	// Actions are all actions within Epsilon of the maximum, ascending.
	Actions []int
	// Strategy is the point mass on Action.
	Strategy []float64
	// Value is the utility achieved by Action.
	Value float64
}

// Utility returns xᵀMy.
func Utility(m mat.Matrix, x, y []float64) (float64, error) {
	n, k := m.Dims()
	if len(x) != n || len(y) != k {
		return 0, errors.Wrapf(ErrShapeMismatch, "%dx%d payoffs with strategies of length %d and %d",
			n, k, len(x), len(y))
	}

	return utility(m, x, y), nil
}

func utility(m mat.Matrix, x, y []float64) float64 {
	return floats.Dot(x, actionValues(m, y))
}

// actionValues returns M·y, the value of each row action against y.
func actionValues(m mat.Matrix, y []float64) []float64 {
	n, _ := m.Dims()
	result := make([]float64, n)
	actionValuesTo(result, m, y)
	return result
}

// actionValuesTo stores M·y in dst, which must have one entry per row of m.
func actionValuesTo(dst []float64, m mat.Matrix, y []float64) {
	v := mat.NewVecDense(len(dst), dst)
	v.MulVec(m, mat.NewVecDense(len(y), y))
}

// Evaluate returns the expected utility of each player under p.
func Evaluate(g *Game, p Profile) (rowUtility, colUtility float64, err error) {
	if err := p.Validate(g); err != nil {
		return 0, 0, err
	}

	return utility(g.Row, p.Row, p.Col), utility(g.Col, p.Row, p.Col), nil
}

// EvaluateZeroSum returns the utilities of both players in the zero-sum
// game with row payoffs m.
func EvaluateZeroSum(m mat.Matrix, x, y []float64) (rowUtility, colUtility float64, err error) {
	u, err := Utility(m, x, y)
	if err != nil {
		return 0, 0, err
	}

	return u, -u, nil
}

// BestResponse returns the best response of the player whose payoffs are
// the rows of m against the opponent strategy over the columns of m.
// Ties are broken in favor of the lowest action index.
func BestResponse(m mat.Matrix, opponent []float64) (Response, error) {
	n, k := m.Dims()
	if err := ValidateStrategy(opponent, k); err != nil {
		return Response{}, errors.Wrap(err, "opponent strategy")
	}

	return bestResponse(actionValues(m, opponent), n), nil
}

func bestResponse(values []float64, n int) Response {
	best := 0
	for i, v := range values {
		if v > values[best]+Epsilon {
			best = i
		}
	}

	var actions []int
	for i, v := range values {
		if math.Abs(v-values[best]) <= Epsilon {
			actions = append(actions, i)
		}
	}

	return Response{
		Action:   best,
		Actions:  actions,
		Strategy: PureStrategy(n, best),
		Value:    values[best],
	}
}

// BestResponseAgainstCol returns the row player's best response to the
// column strategy y.
func BestResponseAgainstCol(rowPayoffs mat.Matrix, y []float64) (Response, error) {
	return BestResponse(rowPayoffs, y)
}

// BestResponseAgainstRow returns the column player's best response to the
// row strategy x.
func BestResponseAgainstRow(colPayoffs mat.Matrix, x []float64) (Response, error) {
	return BestResponse(colPayoffs.T(), x)
}

// EvaluateAgainstBestResponse returns the utility of playing strategy when
// the opponent best-responds to it. Both matrices are oriented with the
// evaluated player's actions on the rows: self holds that player's
// payoffs, opponent holds the opponent's.
func EvaluateAgainstBestResponse(self, opponent mat.Matrix, strategy []float64) (float64, error) {
	sr, sc := self.Dims()
	or, oc := opponent.Dims()
	if sr != or || sc != oc {
		return 0, errors.Wrapf(ErrShapeMismatch, "payoffs are %dx%d and %dx%d", sr, sc, or, oc)
	}

	br, err := BestResponse(opponent.T(), strategy)
	if err != nil {
		return 0, err
	}

	return utility(self, strategy, br.Strategy), nil
}

// EvaluateRowAgainstBestResponse returns the row player's utility for x
// when the column player best-responds.
func EvaluateRowAgainstBestResponse(g *Game, x []float64) (float64, error) {
	return EvaluateAgainstBestResponse(g.Row, g.Col, x)
}

// EvaluateColAgainstBestResponse returns the column player's utility for y
// when the row player best-responds.
func EvaluateColAgainstBestResponse(g *Game, y []float64) (float64, error) {
	return EvaluateAgainstBestResponse(g.Col.T(), g.Row.T(), y)
}

// ValuePoint is the row player's guaranteed value when playing its first
// action with probability P.
type ValuePoint struct {
	P     float64
	Value float64
}

// BestResponseValueFunction samples the lower envelope of the zero-sum
// 2xN game with row payoffs m: for P = 0, stepSize, 2*stepSize, ..., 1
// it returns the row player's utility for (P, 1-P) when the column player
// best-responds.
func BestResponseValueFunction(m mat.Matrix, stepSize float64) ([]ValuePoint, error) {
	n, k := m.Dims()
	if n != 2 {
		return nil, errors.Wrapf(ErrShapeMismatch, "value function requires 2 row actions, got %d", n)
	}
	if !(stepSize > 0 && stepSize <= 1) {
		return nil, errors.Errorf("step size must be in (0, 1], got %v", stepSize)
	}

	negated := negatedTranspose(m)
	nSteps := int(math.Floor(1/stepSize + Epsilon))
	result := make([]ValuePoint, 0, nSteps+2)
	for i := 0; i <= nSteps; i++ {
		p := math.Min(float64(i)*stepSize, 1)
		result = append(result, valuePoint(negated, k, p))
	}
	if last := result[len(result)-1].P; last < 1-Epsilon {
		result = append(result, valuePoint(negated, k, 1))
	}

	return result, nil
}

func valuePoint(negated mat.Matrix, k int, p float64) ValuePoint {
	br := bestResponse(actionValues(negated, []float64{p, 1 - p}), k)
	return ValuePoint{P: p, Value: -br.Value}
}

package matrixgame

import (
	"expvar"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/internal/linprog"
)

var supportPairsChecked = expvar.NewInt("matrixgame/support_pairs_checked")

// Equilibrium is a Nash equilibrium together with the supports it was
// derived from.
type Equilibrium struct {
	Profile
	RowSupport []int
	ColSupport []int
}

// VerifySupport looks for an opponent strategy, supported on colSupport,
// against which the player with payoffs m (rows) is indifferent among all
// actions in rowSupport and weakly prefers them to every other action.
//
// It returns the opponent strategy over all columns of m (zero outside
// colSupport). If no such strategy exists the error has ErrNoSolution as
// its cause.
func VerifySupport(m mat.Matrix, rowSupport, colSupport []int) ([]float64, error) {
	n, k := m.Dims()
	if err := validateSupport(rowSupport, n); err != nil {
		return nil, errors.Wrap(err, "row support")
	}
	if err := validateSupport(colSupport, k); err != nil {
		return nil, errors.Wrap(err, "column support")
	}

	// With payoffs shifted into [1, 2], scaling an opponent strategy y by
	// its best-response payoff gives w with max_i M'[i]·w = 1. The actions
	// in rowSupport are all best responses exactly when
	//
	//	maximize Σ_{i in rowSupport} M'[i]·w  subject to  M'[i]·w <= 1 for all i
	//
	// reaches len(rowSupport).
	shifted, _, _ := unitPayoffs(m)
	prob := linprog.NewProblem(len(colSupport))
	objective := make([]float64, len(colSupport))
	for i := 0; i < n; i++ {
		row := make([]float64, len(colSupport))
		for s, j := range colSupport {
			row[s] = shifted.At(i, j)
		}
		prob.AddConstraint(row, 1)
	}
	for _, i := range rowSupport {
		for s, j := range colSupport {
			objective[s] += shifted.At(i, j)
		}
	}
	prob.Maximize(objective)

	sol, err := prob.Solve()
	if err != nil {
		return nil, err
	}

	if shortfall := float64(len(rowSupport)) - sol.Value; shortfall > supportTolerance {
		return nil, errors.Wrapf(ErrNoSolution, "support actions fall short of a best response by %v", shortfall)
	}

	result := make([]float64, k)
	for s, j := range colSupport {
		result[j] = sol.X[s]
	}

	return cleanDistribution(result), nil
}

func validateSupport(support []int, n int) error {
	if len(support) == 0 {
		return errors.Wrap(ErrEmptySupport, "support is empty")
	}

	seen := make(map[int]bool, len(support))
	for _, a := range support {
		if a < 0 || a >= n {
			return errors.Wrapf(ErrEmptySupport, "action %d out of range [0, %d)", a, n)
		}
		if seen[a] {
			return errors.Wrapf(ErrEmptySupport, "action %d repeated", a)
		}
		seen[a] = true
	}

	return nil
}

// SupportEnumeration returns the Nash equilibria of g found by checking
// every pair of non-empty supports: first by row support size, then column
// support size, then lexicographically. Equilibria found from more than one
// support pair are reported once.
//
// The number of support pairs is (2^n - 1)(2^m - 1), so this is only
// practical for small games.
func SupportEnumeration(g *Game) ([]Equilibrium, error) {
	n, m := g.Dims()
	var result []Equilibrium
	for rowSize := 1; rowSize <= n; rowSize++ {
		for colSize := 1; colSize <= m; colSize++ {
			var err error
			forEachSubset(n, rowSize, func(rowSupport []int) bool {
				forEachSubset(m, colSize, func(colSupport []int) bool {
					var eq *Equilibrium
					eq, err = checkSupportPair(g, rowSupport, colSupport)
					if err != nil {
						return false
					}

					if eq != nil && !containsEquilibrium(result, eq.Profile) {
						glog.V(1).Infof("Found equilibrium %v on supports %v, %v",
							eq.Profile, rowSupport, colSupport)
						result = append(result, *eq)
					}

					return true
				})

				return err == nil
			})

			if err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

func checkSupportPair(g *Game, rowSupport, colSupport []int) (*Equilibrium, error) {
	supportPairsChecked.Add(1)
	y, err := VerifySupport(g.Row, rowSupport, colSupport)
	if IsNoSolution(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	x, err := VerifySupport(g.Col.T(), colSupport, rowSupport)
	if IsNoSolution(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	p := Profile{Row: x, Col: y}
	if !isBestResponsePair(g, p) {
		return nil, nil
	}

	return &Equilibrium{
		Profile:    p,
		RowSupport: append([]int(nil), rowSupport...),
		ColSupport: append([]int(nil), colSupport...),
	}, nil
}

// isBestResponsePair checks that no action, inside or outside the
// supports, improves on either player's payoff under p.
func isBestResponsePair(g *Game, p Profile) bool {
	d, err := ComputeDeltas(g, p)
	if err != nil {
		return false
	}

	return d.Row <= supportTolerance && d.Col <= supportTolerance
}

// supportTolerance bounds the payoff error accepted from the LP solutions
// of VerifySupport.
const supportTolerance = 1e-7

func containsEquilibrium(eqs []Equilibrium, p Profile) bool {
	for _, eq := range eqs {
		if floats.EqualApprox(eq.Row, p.Row, Tolerance) && floats.EqualApprox(eq.Col, p.Col, Tolerance) {
			return true
		}
	}

	return false
}

// forEachSubset calls fn with each size-k subset of [0, n) in
// lexicographic order until fn returns false. The slice passed to fn is
// reused between calls.
func forEachSubset(n, k int, fn func([]int) bool) {
	if k <= 0 || k > n {
		return
	}

	subset := make([]int, k)
	for i := range subset {
		subset[i] = i
	}

	for {
		if !fn(subset) {
			return
		}

		// Advance to the next combination.
		i := k - 1
		for i >= 0 && subset[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}

		subset[i]++
		for j := i + 1; j < k; j++ {
			subset[j] = subset[j-1] + 1
		}
	}
}

// Package linprog solves small dense linear programs of the form
//
//	maximize    cᵀx
//	subject to  Gx <= h
//	            x >= 0
//
// with h >= 0. The origin is then feasible and the slack variables of
// [G | I] form the initial basis, so gonum's simplex never has to search
// for a feasible starting point.
//
// The right-hand side is loosened by a tiny pseudo-random amount before
// solving, which keeps the pivots away from degenerate vertices. The
// optimal basis found for the loosened program is then re-solved against
// the exact right-hand side.
package linprog

import (
	"expvar"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// ErrNoSolution is returned when a program is unbounded, or when the
// caller's formulation has no point meeting its acceptance criterion.
var ErrNoSolution = errors.New("linear program has no solution")

const (
	simplexTolerance = 1e-10
	// feasibilityTolerance bounds the constraint violation accepted in a
	// returned point, relative to the scale of the constraint row.
	feasibilityTolerance = 1e-7
)

// Each attempt loosens the constraints by a larger perturbation.
var perturbations = []float64{1e-10, 1e-9, 1e-8}

var (
	solves     = expvar.NewInt("linprog/solves")
	noSolution = expvar.NewInt("linprog/no_solution")
	retries    = expvar.NewInt("linprog/retries")
	polished   = expvar.NewInt("linprog/polished")
)

// Problem accumulates the objective and constraint rows of a linear
// program over a fixed number of non-negative variables.
type Problem struct {
	nVar int
	c    []float64
	g    []float64
	h    []float64
}

// NewProblem returns a problem with a zero objective over nVar
// non-negative variables.
func NewProblem(nVar int) *Problem {
	if nVar <= 0 {
		panic("linprog: problem must have at least one variable")
	}

	return &Problem{
		nVar: nVar,
		c:    make([]float64, nVar),
	}
}

// NumVariables returns the number of variables in the problem.
func (p *Problem) NumVariables() int {
	return p.nVar
}

// NumConstraints returns the number of constraint rows in the problem.
func (p *Problem) NumConstraints() int {
	return len(p.h)
}

// Maximize sets the objective vector.
func (p *Problem) Maximize(c []float64) {
	p.checkLen(c)
	copy(p.c, c)
}

// AddConstraint adds the constraint coeffs·x <= rhs. The right-hand side
// must be non-negative.
func (p *Problem) AddConstraint(coeffs []float64, rhs float64) {
	p.checkLen(coeffs)
	if rhs < 0 || math.IsNaN(rhs) {
		panic(errors.Errorf("linprog: right-hand side must be non-negative, got %v", rhs))
	}

	p.g = append(p.g, coeffs...)
	p.h = append(p.h, rhs)
}

func (p *Problem) checkLen(v []float64) {
	if len(v) != p.nVar {
		panic(errors.Errorf("linprog: expected %d coefficients, got %d", p.nVar, len(v)))
	}
}

// Solution is an optimal point of a Problem.
type Solution struct {
	X []float64
	// Value is cᵀX.
	Value float64
}

// Solve finds an optimal point. If the problem is unbounded the returned
// error has ErrNoSolution as its cause.
func (p *Problem) Solve() (*Solution, error) {
	solves.Add(1)

	// Variables that appear in no constraint are fixed at zero, or make
	// the problem unbounded if they improve the objective.
	var active []int
	for j := 0; j < p.nVar; j++ {
		if p.c[j] > 0 && p.columnIsZero(j) {
			noSolution.Add(1)
			return nil, errors.Wrapf(ErrNoSolution, "variable %d is unbounded", j)
		}
		if !p.columnIsZero(j) {
			active = append(active, j)
		}
	}

	x := make([]float64, p.nVar)
	if len(active) == 0 {
		return &Solution{X: x}, nil
	}

	sf := p.standardForm(active)
	var lastErr error
	for attempt, scale := range perturbations {
		if attempt > 0 {
			retries.Add(1)
		}

		xStd, err := sf.solve(scale, int64(attempt+1))
		if err == lp.ErrUnbounded {
			noSolution.Add(1)
			return nil, errors.Wrap(ErrNoSolution, err.Error())
		} else if err != nil {
			lastErr = err
			continue
		}

		for i, j := range active {
			x[j] = math.Max(xStd[i], 0)
		}
		if err := p.checkFeasible(x); err != nil {
			lastErr = err
			continue
		}

		return &Solution{X: x, Value: floats.Dot(p.c, x)}, nil
	}

	return nil, errors.Wrap(lastErr, "simplex failed")
}

func (p *Problem) columnIsZero(j int) bool {
	for i := range p.h {
		if p.g[i*p.nVar+j] != 0 {
			return false
		}
	}

	return true
}

func (p *Problem) checkFeasible(x []float64) error {
	for i, rhs := range p.h {
		row := p.g[i*p.nVar : (i+1)*p.nVar]
		scale := 1 + math.Max(rhs, floats.Norm(row, math.Inf(1)))
		if lhs := floats.Dot(row, x); lhs > rhs+feasibilityTolerance*scale {
			return errors.Errorf("constraint %d violated: %v > %v", i, lhs, rhs)
		}
	}

	return nil
}

// standardForm is the program minimize cᵀz subject to Az = b, z >= 0
// with A = [G | I] restricted to the active variables.
type standardForm struct {
	c     []float64
	a     *mat.Dense
	b     []float64
	basis []int
}

func (p *Problem) standardForm(active []int) *standardForm {
	m := len(p.h)
	n := len(active) + m
	sf := &standardForm{
		c:     make([]float64, n),
		a:     mat.NewDense(m, n, nil),
		b:     append([]float64(nil), p.h...),
		basis: make([]int, m),
	}

	for k, j := range active {
		sf.c[k] = -p.c[j]
		for i := 0; i < m; i++ {
			sf.a.Set(i, k, p.g[i*p.nVar+j])
		}
	}

	for i := 0; i < m; i++ {
		slack := len(active) + i
		sf.a.Set(i, slack, 1)
		sf.basis[i] = slack
	}

	return sf
}

// solve runs the simplex on the right-hand side loosened by up to twice
// scale, then re-solves the optimal basis against the exact b.
func (sf *standardForm) solve(scale float64, seed int64) ([]float64, error) {
	rng := rand.New(rand.NewSource(seed))
	bMax := math.Max(1, floats.Max(sf.b))
	loosened := make([]float64, len(sf.b))
	for i, v := range sf.b {
		loosened[i] = v + scale*bMax*(1+rng.Float64())
	}

	_, z, err := lp.Simplex(sf.c, sf.a, loosened, simplexTolerance, sf.basis)
	if err != nil {
		return nil, err
	}

	if exact, ok := sf.polish(z); ok {
		polished.Add(1)
		return exact, nil
	}

	return z, nil
}

// polish recovers the basis of z, whose basic variables are exactly its
// non-zero entries when the loosened program is nondegenerate, and solves
// for the vertex of that basis under the exact right-hand side.
func (sf *standardForm) polish(z []float64) ([]float64, bool) {
	m, _ := sf.a.Dims()
	basis := make([]int, 0, m)
	for j, v := range z {
		if v != 0 {
			basis = append(basis, j)
		}
	}
	if len(basis) != m {
		return nil, false
	}

	ab := mat.NewDense(m, m, nil)
	col := make([]float64, m)
	for k, j := range basis {
		mat.Col(col, j, sf.a)
		ab.SetCol(k, col)
	}

	var xb mat.VecDense
	if err := xb.SolveVec(ab, mat.NewVecDense(m, sf.b)); err != nil {
		return nil, false
	}

	exact := make([]float64, len(z))
	for k, j := range basis {
		v := xb.AtVec(k)
		if v < -feasibilityTolerance {
			return nil, false
		}
		exact[j] = math.Max(v, 0)
	}

	return exact, true
}

// IsNoSolution reports whether err was caused by a program without an
// acceptable solution.
func IsNoSolution(err error) bool {
	return errors.Cause(err) == ErrNoSolution
}

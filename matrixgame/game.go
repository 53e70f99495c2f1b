// Package matrixgame computes and certifies equilibria of two-player games
// in normal (matrix) form.
//
// Payoff matrices are indexed [row action][column action]. Functions that
// concern a single player take that player's payoffs oriented with the player's
// own actions on the rows; the column player's matrix is passed through
// mat.Matrix.T() for those functions.
package matrixgame

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// Tolerance is the absolute slack allowed when checking that a
	// probability vector sums to one.
	Tolerance = 1e-6
	// Epsilon is used for strictness and indifference comparisons
	// between payoffs.
	Epsilon = 1e-9
)

// Game is a finite two-player game in normal form.
type Game struct {
	// Row holds the row player's payoffs.
	Row *mat.Dense
	// Col holds the column player's payoffs.
	Col *mat.Dense
}

// NewGame returns a general-sum game built from the given payoffs.
// The matrices are copied.
func NewGame(row, col mat.Matrix) (*Game, error) {
	rr, rc := row.Dims()
	cr, cc := col.Dims()
	if rr != cr || rc != cc {
		return nil, errors.Wrapf(ErrShapeMismatch, "row payoffs are %dx%d, column payoffs are %dx%d",
			rr, rc, cr, cc)
	}

	return &Game{
		Row: mat.DenseCopyOf(row),
		Col: mat.DenseCopyOf(col),
	}, nil
}

// NewZeroSumGame returns the game in which the column player's payoffs
// are the negation of the row player's.
func NewZeroSumGame(row mat.Matrix) *Game {
	col := mat.DenseCopyOf(row)
	col.Scale(-1, col)
	return &Game{
		Row: mat.DenseCopyOf(row),
		Col: col,
	}
}

// FromRows builds a game from nested slices, as is convenient for small
// literal games.
func FromRows(row, col [][]float64) (*Game, error) {
	r, err := denseFromRows(row)
	if err != nil {
		return nil, errors.Wrap(err, "row payoffs")
	}
	c, err := denseFromRows(col)
	if err != nil {
		return nil, errors.Wrap(err, "column payoffs")
	}

	return NewGame(r, c)
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "payoff matrix is empty")
	}

	nCols := len(rows[0])
	data := make([]float64, 0, len(rows)*nCols)
	for i, r := range rows {
		if len(r) != nCols {
			return nil, errors.Wrapf(ErrShapeMismatch, "row %d has %d entries, expected %d",
				i, len(r), nCols)
		}
		data = append(data, r...)
	}

	return mat.NewDense(len(rows), nCols, data), nil
}

// Dims returns the number of actions of the row and column players.
func (g *Game) Dims() (int, int) {
	return g.Row.Dims()
}

// IsZeroSum reports whether Row + Col is zero everywhere.
func (g *Game) IsZeroSum() bool {
	n, m := g.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if math.Abs(g.Row.At(i, j)+g.Col.At(i, j)) > Epsilon {
				return false
			}
		}
	}

	return true
}

// Transpose returns the game with the roles of the players exchanged.
func (g *Game) Transpose() *Game {
	return &Game{
		Row: mat.DenseCopyOf(g.Col.T()),
		Col: mat.DenseCopyOf(g.Row.T()),
	}
}

// Restrict returns the subgame in which the players may only use
// the given actions, in the given order.
func (g *Game) Restrict(rowActions, colActions []int) *Game {
	return &Game{
		Row: submatrix(g.Row, rowActions, colActions),
		Col: submatrix(g.Col, rowActions, colActions),
	}
}

func submatrix(m mat.Matrix, rows, cols []int) *mat.Dense {
	result := mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		for j, c := range cols {
			result.Set(i, j, m.At(r, c))
		}
	}

	return result
}

// String implements fmt.Stringer.
func (g *Game) String() string {
	n, m := g.Dims()
	return fmt.Sprintf("%dx%d game\nrow payoffs:\n%v\ncolumn payoffs:\n%v",
		n, m, mat.Formatted(g.Row), mat.Formatted(g.Col))
}

// Profile is a pair of mixed strategies, one for each player.
type Profile struct {
	Row []float64
	Col []float64
}

// String implements fmt.Stringer.
func (p Profile) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.Row, p.Col)
}

// Validate checks that both strategies are probability vectors of the
// right length for g.
func (p Profile) Validate(g *Game) error {
	n, m := g.Dims()
	if err := ValidateStrategy(p.Row, n); err != nil {
		return errors.Wrap(err, "row strategy")
	}
	if err := ValidateStrategy(p.Col, m); err != nil {
		return errors.Wrap(err, "column strategy")
	}

	return nil
}

// ValidateStrategy checks that s is a probability vector over n actions.
// Invalid strategies are reported, never repaired.
func ValidateStrategy(s []float64, n int) error {
	if len(s) != n {
		return errors.Wrapf(ErrInvalidStrategy, "strategy has %d entries, expected %d", len(s), n)
	}

	for i, p := range s {
		if math.IsNaN(p) || p < 0 {
			return errors.Wrapf(ErrInvalidStrategy, "probability of action %d is %v", i, p)
		}
	}

	if total := floats.Sum(s); math.Abs(total-1) > Tolerance {
		return errors.Wrapf(ErrInvalidStrategy, "probabilities sum to %v", total)
	}

	return nil
}

// PureStrategy returns the strategy playing action with probability one.
func PureStrategy(n, action int) []float64 {
	s := make([]float64, n)
	s[action] = 1
	return s
}

// Uniform returns the uniform strategy over n actions.
func Uniform(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1.0 / float64(n)
	}
	return s
}

// Support returns the actions played with probability above Epsilon,
// in ascending order.
func Support(s []float64) []int {
	var result []int
	for i, p := range s {
		if p > Epsilon {
			result = append(result, i)
		}
	}

	return result
}

// cleanDistribution zeroes the round-off negatives an LP solve can leave
// in a probability vector and renormalizes it in place.
func cleanDistribution(s []float64) []float64 {
	for i, p := range s {
		if p < 0 {
			s[i] = 0
		}
	}

	if total := floats.Sum(s); total > 0 {
		for i := range s {
			s[i] /= total
		}
	}

	return s
}

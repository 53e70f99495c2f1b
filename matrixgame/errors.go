package matrixgame

import (
	"github.com/pkg/errors"

	"github.com/timpalpant/equilibria/internal/linprog"
)

var (
	// ErrShapeMismatch is returned when payoff matrices or strategies do not
	// have compatible dimensions.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidStrategy is returned for strategies that are not probability vectors.
	ErrInvalidStrategy = errors.New("invalid strategy")
	// ErrEmptySupport is returned when a support has no actions or
	// refers to actions outside the game.
	ErrEmptySupport = errors.New("invalid support")
	// ErrNoSolution is the cause of errors from infeasible or unbounded
	// linear programs, and of supports that admit no equilibrium strategy.
	ErrNoSolution = linprog.ErrNoSolution
)

// IsNoSolution reports whether err means that no solution exists, as
// opposed to invalid input or a solver failure.
func IsNoSolution(err error) bool {
	return errors.Cause(err) == ErrNoSolution
}

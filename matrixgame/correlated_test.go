package matrixgame_test

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/games"
	"github.com/timpalpant/equilibria/matrixgame"
)

func assertCorrelatedEquilibrium(t *testing.T, g *matrixgame.Game, joint mat.Matrix) {
	n, m := g.Dims()
	r, c := joint.Dims()
	require.Equal(t, n, r)
	require.Equal(t, m, c)

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			assert.GreaterOrEqual(t, joint.At(i, j), 0.0)
		}
	}
	assert.InDelta(t, 1.0, mat.Sum(joint), 1e-9)

	rowRegret, colRegret, err := matrixgame.CorrelatedRegrets(g, joint)
	require.NoError(t, err)
	assert.LessOrEqual(t, rowRegret, 1e-6)
	assert.LessOrEqual(t, colRegret, 1e-6)
}

func TestFindCorrelatedEquilibrium_ClassicGames(t *testing.T) {
	for _, g := range []*matrixgame.Game{
		games.Chicken(),
		games.BattleOfTheSexes(),
		games.PrisonersDilemma(),
		games.RockPaperScissors(),
	} {
		joint, err := matrixgame.FindCorrelatedEquilibrium(g)
		require.NoError(t, err)
		t.Logf("Correlated equilibrium:\n%v", mat.Formatted(joint))
		assertCorrelatedEquilibrium(t, g, joint)
	}
}

func TestFindCorrelatedEquilibrium_RandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 10; i++ {
		g := games.RandomGeneralSum(rng, 8)
		joint, err := matrixgame.FindCorrelatedEquilibrium(g)
		require.NoError(t, err)
		assertCorrelatedEquilibrium(t, g, joint)
	}
}

func TestFindCorrelatedEquilibrium_SmallIntegerGames(t *testing.T) {
	// Small games with integer payoffs have many tied incentive
	// constraints, all of them tight at the origin.
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		g := games.RandomGeneralSum(rng, 6)
		joint, err := matrixgame.FindCorrelatedEquilibrium(g)
		require.NoError(t, err, "game %d:\n%v", i, g)
		assertCorrelatedEquilibrium(t, g, joint)
	}
}

func TestFindCorrelatedEquilibrium_ConstantGame(t *testing.T) {
	g, err := matrixgame.FromRows(
		[][]float64{{3, 3}, {3, 3}},
		[][]float64{{-1, -1}, {-1, -1}},
	)
	require.NoError(t, err)

	joint, err := matrixgame.FindCorrelatedEquilibrium(g)
	require.NoError(t, err)
	assertCorrelatedEquilibrium(t, g, joint)
}

func TestCorrelatedRegrets(t *testing.T) {
	g := games.PrisonersDilemma()
	cooperate := mat.NewDense(2, 2, []float64{1, 0, 0, 0})
	row, col, err := matrixgame.CorrelatedRegrets(g, cooperate)
	require.NoError(t, err)
	assert.Equal(t, 1.0, row)
	assert.Equal(t, 1.0, col)

	// The product of a Nash equilibrium is a correlated equilibrium.
	bos := games.BattleOfTheSexes()
	var product mat.Dense
	product.Outer(1, mat.NewVecDense(2, []float64{0.6, 0.4}), mat.NewVecDense(2, []float64{0.4, 0.6}))
	row, col, err = matrixgame.CorrelatedRegrets(bos, &product)
	require.NoError(t, err)
	assert.InDelta(t, 0, row, 1e-12)
	assert.InDelta(t, 0, col, 1e-12)

	_, _, err = matrixgame.CorrelatedRegrets(bos, mat.NewDense(3, 2, nil))
	assert.Equal(t, matrixgame.ErrShapeMismatch, errors.Cause(err))
}

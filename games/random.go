package games

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/matrixgame"
)

// RandomGeneralSum returns a game with between 2 and maxActions actions
// per player and integer payoffs. Each player's payoffs are drawn
// uniformly from their own random range within [-100, 100).
func RandomGeneralSum(rng *rand.Rand, maxActions int) *matrixgame.Game {
	n := randomActionCount(rng, maxActions)
	m := randomActionCount(rng, maxActions)
	return &matrixgame.Game{
		Row: randomPayoffs(rng, n, m),
		Col: randomPayoffs(rng, n, m),
	}
}

// RandomZeroSum returns a zero-sum game drawn like RandomGeneralSum.
func RandomZeroSum(rng *rand.Rand, maxActions int) *matrixgame.Game {
	n := randomActionCount(rng, maxActions)
	m := randomActionCount(rng, maxActions)
	return matrixgame.NewZeroSumGame(randomPayoffs(rng, n, m))
}

func randomActionCount(rng *rand.Rand, maxActions int) int {
	if maxActions < 2 {
		panic("games: maxActions must be at least 2")
	}

	return 2 + rng.Intn(maxActions-1)
}

func randomPayoffs(rng *rand.Rand, n, m int) *mat.Dense {
	minUtility := randInt(rng, -100, 75)
	maxUtility := randInt(rng, minUtility+1, 100)
	result := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			result.Set(i, j, float64(randInt(rng, minUtility, maxUtility)))
		}
	}

	return result
}

// randInt returns a uniform integer in [lo, hi).
func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo)
}

// DominanceChain is a game built from a core game by repeatedly adding an
// action that is strictly dominated by an existing action of the same player.
type DominanceChain struct {
	*matrixgame.Game
	// CoreRows and CoreCols are the number of actions of the core, which
	// occupy the leading rows and columns.
	CoreRows int
	CoreCols int
}

// RandomWithDominatedStrategies returns a game with 3 to 19 actions per
// player in which iterated removal of strictly dominated actions reduces
// the game to (at most) its leading CoreRows x CoreCols core.
func RandomWithDominatedStrategies(rng *rand.Rand) DominanceChain {
	nRows := randInt(rng, 3, 20)
	nCols := randInt(rng, 3, 20)
	minUtility := randInt(rng, -100, 0)
	maxUtility := randInt(rng, minUtility+1, 100)
	coreRows := randInt(rng, 1, nRows)
	coreCols := randInt(rng, 1, nCols)

	var order []bool // true adds a row.
	for i := coreRows; i < nRows; i++ {
		order = append(order, true)
	}
	for j := coreCols; j < nCols; j++ {
		order = append(order, false)
	}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	uniform := func() float64 {
		return float64(randInt(rng, minUtility, maxUtility+1))
	}
	row := make([][]float64, coreRows)
	col := make([][]float64, coreRows)
	for i := range row {
		row[i] = make([]float64, coreCols)
		col[i] = make([]float64, coreCols)
		for j := range row[i] {
			row[i][j] = uniform()
			col[i][j] = uniform()
		}
	}

	for _, addRow := range order {
		nr, nc := len(row), len(row[0])
		if addRow {
			dominating := rng.Intn(nr)
			newRow := make([]float64, nc)
			newCol := make([]float64, nc)
			for j := range newRow {
				newRow[j] = row[dominating][j] - float64(randInt(rng, 1, 6))
				newCol[j] = uniform()
			}
			row = append(row, newRow)
			col = append(col, newCol)
		} else {
			dominating := rng.Intn(nc)
			for i := range row {
				row[i] = append(row[i], uniform())
				col[i] = append(col[i], col[i][dominating]-float64(randInt(rng, 1, 6)))
			}
		}
	}

	return DominanceChain{
		Game:     mustFromRows(row, col),
		CoreRows: coreRows,
		CoreCols: coreCols,
	}
}

// RandomPureStrategy returns a point mass on a uniformly chosen action.
func RandomPureStrategy(rng *rand.Rand, n int) []float64 {
	return matrixgame.PureStrategy(n, rng.Intn(n))
}

// RandomMixedStrategy returns a strategy with independent uniform weights,
// normalized.
func RandomMixedStrategy(rng *rand.Rand, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = rng.Float64()
	}
	if total := floats.Sum(s); total > 0 {
		floats.Scale(1/total, s)
	} else {
		return matrixgame.Uniform(n)
	}

	return s
}

package matrixgame_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/equilibria/games"
	"github.com/timpalpant/equilibria/matrixgame"
)

func TestDoubleOracle_RockPaperScissors(t *testing.T) {
	g := games.RockPaperScissors()
	rounds, err := matrixgame.DoubleOracle(g.Row, 1e-6, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.NotEmpty(t, rounds)

	final := rounds[len(rounds)-1]
	assert.Equal(t, []int{0, 1, 2}, final.RowSupport)
	assert.Equal(t, []int{0, 1, 2}, final.ColSupport)
	assert.InDeltaSlice(t, matrixgame.Uniform(3), final.Row, 1e-7)
	assert.InDeltaSlice(t, matrixgame.Uniform(3), final.Col, 1e-7)
	assert.InDelta(t, 0, final.Gap(), 1e-7)
}

func TestDoubleOracle_RandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	eps := 1e-6
	for i := 0; i < 10; i++ {
		g := games.RandomZeroSum(rng, 40)
		rounds, err := matrixgame.DoubleOracle(g.Row, eps, rng)
		require.NoError(t, err)
		require.NotEmpty(t, rounds)

		for j, r := range rounds {
			require.NoError(t, r.Validate(g))
			assert.LessOrEqual(t, r.LowerBound, r.UpperBound+1e-7)
			if j > 0 {
				prev := rounds[j-1]
				assert.GreaterOrEqual(t, len(r.RowSupport), len(prev.RowSupport))
				assert.GreaterOrEqual(t, len(r.ColSupport), len(prev.ColSupport))
				assert.True(t, len(r.RowSupport)+len(r.ColSupport) > len(prev.RowSupport)+len(prev.ColSupport))
			}
		}

		final := rounds[len(rounds)-1]
		e, err := matrixgame.Exploitability(g, final.Profile)
		require.NoError(t, err)
		t.Logf("Game %d: %d rounds, exploitability %v", i, len(rounds), e)
		assert.Less(t, e, eps)

		sol, err := matrixgame.FindNashEquilibrium(g.Row)
		require.NoError(t, err)
		assert.InDelta(t, sol.Value, final.LowerBound, 1e-6)
	}
}

func TestDoubleOracle_ManyRandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	eps := 1e-6
	for i := 0; i < 100; i++ {
		g := games.RandomZeroSum(rng, 30)
		rounds, err := matrixgame.DoubleOracle(g.Row, eps, rng)
		require.NoError(t, err, "game %d", i)

		final := rounds[len(rounds)-1]
		e, err := matrixgame.Exploitability(g, final.Profile)
		require.NoError(t, err)
		assert.Less(t, e, eps, "game %d", i)
	}
}

func TestDoubleOracle_InvalidEps(t *testing.T) {
	_, err := matrixgame.DoubleOracle(games.MatchingPennies().Row, 0, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

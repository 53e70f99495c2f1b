package matrixgame_test

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/equilibria/games"
	"github.com/timpalpant/equilibria/matrixgame"
)

func TestSupportEnumeration_MatchingPennies(t *testing.T) {
	eqs, err := matrixgame.SupportEnumeration(games.MatchingPennies())
	require.NoError(t, err)
	require.Len(t, eqs, 1)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, eqs[0].Row, 1e-7)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, eqs[0].Col, 1e-7)
	assert.Equal(t, []int{0, 1}, eqs[0].RowSupport)
	assert.Equal(t, []int{0, 1}, eqs[0].ColSupport)
}

func TestSupportEnumeration_BattleOfTheSexes(t *testing.T) {
	eqs, err := matrixgame.SupportEnumeration(games.BattleOfTheSexes())
	require.NoError(t, err)
	require.Len(t, eqs, 3)

	assert.Equal(t, []float64{1, 0}, eqs[0].Row)
	assert.Equal(t, []float64{1, 0}, eqs[0].Col)
	assert.Equal(t, []float64{0, 1}, eqs[1].Row)
	assert.Equal(t, []float64{0, 1}, eqs[1].Col)
	assert.InDeltaSlice(t, []float64{0.6, 0.4}, eqs[2].Row, 1e-7)
	assert.InDeltaSlice(t, []float64{0.4, 0.6}, eqs[2].Col, 1e-7)
}

func TestSupportEnumeration_ClassicGames(t *testing.T) {
	testCases := []struct {
		name  string
		game  *matrixgame.Game
		count int
	}{
		{"PrisonersDilemma", games.PrisonersDilemma(), 1},
		{"RockPaperScissors", games.RockPaperScissors(), 1},
		{"StagHunt", games.StagHunt(), 3},
		{"Chicken", games.Chicken(), 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			eqs, err := matrixgame.SupportEnumeration(tc.game)
			require.NoError(t, err)
			assert.Len(t, eqs, tc.count)
			for _, eq := range eqs {
				nc, err := matrixgame.NashConv(tc.game, eq.Profile)
				require.NoError(t, err)
				assert.InDelta(t, 0, nc, 1e-6)
			}
		})
	}
}

func TestSupportEnumeration_RandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 20; i++ {
		g := games.RandomGeneralSum(rng, 4)
		eqs, err := matrixgame.SupportEnumeration(g)
		require.NoError(t, err)
		require.NotEmpty(t, eqs, "every finite game has an equilibrium")

		for _, eq := range eqs {
			require.NoError(t, eq.Validate(g))
			nc, err := matrixgame.NashConv(g, eq.Profile)
			require.NoError(t, err)
			assert.InDelta(t, 0, nc, 1e-6)
			for _, a := range matrixgame.Support(eq.Row) {
				assert.Contains(t, eq.RowSupport, a)
			}
			for _, a := range matrixgame.Support(eq.Col) {
				assert.Contains(t, eq.ColSupport, a)
			}
		}
	}
}

func TestVerifySupport(t *testing.T) {
	g := games.MatchingPennies()

	y, err := matrixgame.VerifySupport(g.Row, []int{0, 1}, []int{0, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, y, 1e-7)

	// Against Tails only, Heads is not a best response.
	_, err = matrixgame.VerifySupport(g.Row, []int{0}, []int{1})
	assert.True(t, matrixgame.IsNoSolution(err))

	y, err = matrixgame.VerifySupport(g.Row, []int{1}, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, y)
}

func TestVerifySupport_InvalidSupports(t *testing.T) {
	g := games.MatchingPennies()
	for _, supports := range [][2][]int{
		{nil, {0}},
		{{0}, {}},
		{{2}, {0}},
		{{0}, {-1}},
		{{0, 0}, {1}},
	} {
		_, err := matrixgame.VerifySupport(g.Row, supports[0], supports[1])
		assert.Equal(t, matrixgame.ErrEmptySupport, errors.Cause(err), "supports %v", supports)
	}
}

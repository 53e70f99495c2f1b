package efg_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/efg"
	"github.com/timpalpant/equilibria/games"
)

func TestConvertToSequenceForm_MatchingPennies(t *testing.T) {
	game, err := efg.Compile(sequentialMatchingPennies())
	require.NoError(t, err)

	sf := efg.ConvertToSequenceForm(game)
	expectedPayoffs := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, 1, -1,
		0, -1, 1,
	})
	assert.True(t, mat.Equal(expectedPayoffs, sf.Payoffs[0]), "got %v", mat.Formatted(sf.Payoffs[0]))

	expectedConstraints := mat.NewDense(2, 3, []float64{
		1, 0, 0,
		-1, 1, 1,
	})
	for p := 0; p < 2; p++ {
		assert.True(t, mat.Equal(expectedConstraints, sf.Constraints[p]))
		assert.Equal(t, []float64{1, 0}, sf.RHS[p])
	}
}

func TestConvertToSequenceForm_KuhnPoker(t *testing.T) {
	game, err := efg.Compile(games.KuhnPoker())
	require.NoError(t, err)

	sf := efg.ConvertToSequenceForm(game)
	for p := 0; p < 2; p++ {
		r, c := sf.Constraints[p].Dims()
		assert.Equal(t, 7, r)
		assert.Equal(t, 13, c)
	}

	// Terminal histories reached by ("J" bet, "Qb" call): J loses 2 with
	// chance weight 1/6.
	j, ok := game.LookupInfoSet(0, "J")
	require.True(t, ok)
	qb, ok := game.LookupInfoSet(1, "Qb")
	require.True(t, ok)
	assert.InDelta(t, -2.0/6, sf.Payoffs[0].At(j.Sequence(games.Bet), qb.Sequence(games.Bet)), 1e-12)
	assert.InDelta(t, 2.0/6, sf.Payoffs[1].At(j.Sequence(games.Bet), qb.Sequence(games.Bet)), 1e-12)

	// A uniform behavioural strategy for both players: the sequence-form
	// utility must agree with the average over all pure strategy pairs.
	var plans [2][]float64
	for p := 0; p < 2; p++ {
		plans[p], err = efg.BehaviouralToRealizationPlan(game, p, uniformBehavioural(game, p))
		require.NoError(t, err)
	}
	u, err := sf.ExpectedUtility(plans[0], plans[1])
	require.NoError(t, err)

	nf, err := efg.ConvertToNormalForm(game)
	require.NoError(t, err)
	n, m := nf.Dims()
	expected := mat.Sum(nf.Row) / float64(n*m)
	assert.InDelta(t, expected, u[0], 1e-9)
	assert.InDelta(t, -expected, u[1], 1e-9)

	_, err = sf.ExpectedUtility(plans[0][:3], plans[1])
	assert.Equal(t, efg.ErrInvalidPlan, errors.Cause(err))
}

func TestFindNashEquilibriumSequenceForm_KuhnPoker(t *testing.T) {
	game, err := efg.Compile(games.KuhnPoker())
	require.NoError(t, err)

	sol, err := efg.FindNashEquilibriumSequenceForm(game)
	require.NoError(t, err)
	assert.InDelta(t, games.KuhnPokerValue, sol.Value, 1e-6)

	for p := 0; p < 2; p++ {
		assert.NoError(t, efg.ValidateRealizationPlan(game, p, sol.Plans[p]))
	}

	sf := efg.ConvertToSequenceForm(game)
	u, err := sf.ExpectedUtility(sol.Plans[0], sol.Plans[1])
	require.NoError(t, err)
	assert.InDelta(t, games.KuhnPokerValue, u[0], 1e-6)

	// Player 1's equilibrium strategy is unique.
	strategy, err := efg.RealizationPlanToBehavioural(game, 1, sol.Plans[1])
	require.NoError(t, err)
	byKey := strategy.ByKey(game, 1)
	t.Logf("Player 1 strategy: %v", byKey)
	assert.InDeltaSlice(t, []float64{0, 1}, byKey["Kb"], 1e-6)
	assert.InDeltaSlice(t, []float64{1, 0}, byKey["Jb"], 1e-6)
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, byKey["Qb"], 1e-5)
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, byKey["Jp"], 1e-5)
}

func TestFindNashEquilibriumSequenceForm_MatchingPennies(t *testing.T) {
	game, err := efg.Compile(sequentialMatchingPennies())
	require.NoError(t, err)

	sol, err := efg.FindNashEquilibriumSequenceForm(game)
	require.NoError(t, err)
	assert.InDelta(t, 0, sol.Value, 1e-7)
	assert.InDeltaSlice(t, []float64{1, 0.5, 0.5}, sol.Plans[0], 1e-7)
	assert.InDeltaSlice(t, []float64{1, 0.5, 0.5}, sol.Plans[1], 1e-7)
}

func TestFindNashEquilibriumSequenceForm_NotZeroSum(t *testing.T) {
	root := efg.NewPlayerNode(0, "a",
		efg.NewTerminalNode(1, 1),
		efg.NewTerminalNode(0, 0))
	game, err := efg.Compile(root)
	require.NoError(t, err)

	_, err = efg.FindNashEquilibriumSequenceForm(game)
	assert.Equal(t, efg.ErrNotZeroSum, errors.Cause(err))
}

func TestConvertToSequenceForm_Reach(t *testing.T) {
	game, err := efg.Compile(sequentialMatchingPennies())
	require.NoError(t, err)

	sf := efg.ConvertToSequenceForm(game)
	expected := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		0, 1, 1,
		0, 1, 1,
	})
	assert.True(t, mat.Equal(expected, sf.Reach), "got %v", mat.Formatted(sf.Reach))

	// Every deal of Kuhn poker ends in one of five terminal histories.
	game, err = efg.Compile(games.KuhnPoker())
	require.NoError(t, err)
	sf = efg.ConvertToSequenceForm(game)
	assert.InDelta(t, 5, mat.Sum(sf.Reach), 1e-12)
}

func TestFindNashEquilibriumSequenceForm_OnePlayerMoves(t *testing.T) {
	// Player 0 has no decisions and chance picks which of player 1's
	// information sets is reached.
	root := efg.NewChanceNode([]float64{0.25, 0.75},
		efg.NewPlayerNode(1, "left",
			efg.NewTerminalNode(3, -3),
			efg.NewTerminalNode(5, -5)),
		efg.NewPlayerNode(1, "right",
			efg.NewTerminalNode(-2, 2),
			efg.NewTerminalNode(-4, 4)))
	game, err := efg.Compile(root)
	require.NoError(t, err)

	sol, err := efg.FindNashEquilibriumSequenceForm(game)
	require.NoError(t, err)
	assert.InDelta(t, 0.25*3+0.75*-4, sol.Value, 1e-7)
	assert.Equal(t, []float64{1}, sol.Plans[0])
	assert.InDeltaSlice(t, []float64{1, 1, 0, 0, 1}, sol.Plans[1], 1e-7)
}

func TestFindNashEquilibriumSequenceForm_ConstantUtilities(t *testing.T) {
	root := efg.NewPlayerNode(0, "a",
		efg.NewPlayerNode(1, "b",
			efg.NewTerminalNode(2, -2),
			efg.NewTerminalNode(2, -2)),
		efg.NewTerminalNode(2, -2))
	game, err := efg.Compile(root)
	require.NoError(t, err)

	sol, err := efg.FindNashEquilibriumSequenceForm(game)
	require.NoError(t, err)
	assert.InDelta(t, 2, sol.Value, 1e-7)
	for p := 0; p < 2; p++ {
		assert.NoError(t, efg.ValidateRealizationPlan(game, p, sol.Plans[p]))
	}
}

func uniformBehavioural(game *efg.Game, player int) efg.BehaviouralStrategy {
	infoSets := game.InfoSets(player)
	result := make(efg.BehaviouralStrategy, len(infoSets))
	for _, is := range infoSets {
		result[is.Index] = make([]float64, is.NumActions)
		for a := range result[is.Index] {
			result[is.Index][a] = 1 / float64(is.NumActions)
		}
	}

	return result
}

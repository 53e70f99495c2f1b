package cfrtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timpalpant/go-cfr"
	"github.com/timpalpant/go-cfr/kuhn"
	"github.com/timpalpant/go-cfr/tree"

	"github.com/timpalpant/equilibria/efg"
	"github.com/timpalpant/equilibria/games"
)

func TestCompile_KuhnPoker(t *testing.T) {
	fromCFR, err := Compile(games.NewKuhnGame())
	require.NoError(t, err)
	fromTree, err := efg.Compile(games.KuhnPoker())
	require.NoError(t, err)

	assert.Equal(t, fromTree.NumNodes(), fromCFR.NumNodes())
	for p := 0; p < 2; p++ {
		assert.Equal(t, fromTree.InfoSets(p), fromCFR.InfoSets(p))
		assert.Equal(t, fromTree.Sequences(p), fromCFR.Sequences(p))
	}
}

func TestCompile_GoCFRKuhnPoker(t *testing.T) {
	root := kuhn.NewGame()
	assert.Equal(t, 58, tree.CountNodes(root))
	assert.Equal(t, 30, tree.CountTerminalNodes(root))
	assert.Equal(t, 12, tree.CountInfoSets(root))

	game, err := Compile(root)
	require.NoError(t, err)
	assert.Equal(t, 58, game.NumNodes())
	for p := 0; p < 2; p++ {
		assert.Equal(t, 6, game.NumInfoSets(p))
		assert.Equal(t, 13, game.NumSequences(p))
	}

	_, ok := game.LookupInfoSet(0, "K-rr")
	assert.True(t, ok)
	_, ok = game.LookupInfoSet(1, "Q-rrb")
	assert.True(t, ok)

	sol, err := efg.FindNashEquilibriumSequenceForm(game)
	require.NoError(t, err)
	assert.InDelta(t, games.KuhnPokerValue, sol.Value, 1e-6)
}

func TestSolve_KuhnPoker(t *testing.T) {
	game, err := Compile(games.NewKuhnGame())
	require.NoError(t, err)

	sol, err := efg.FindNashEquilibriumSequenceForm(game)
	require.NoError(t, err)
	assert.InDelta(t, games.KuhnPokerValue, sol.Value, 1e-6)
}

func TestNode_Types(t *testing.T) {
	root := Wrap(games.NewKuhnGame())
	assert.Equal(t, efg.ChanceNode, root.Type())
	assert.Equal(t, 6, root.NumChildren())
	assert.InDelta(t, 1.0/6, root.GetChildProbability(0), 1e-12)

	deal := root.GetChild(0)
	assert.Equal(t, efg.PlayerNode, deal.Type())
	assert.Equal(t, 0, deal.Player())
	assert.Equal(t, "J", deal.InfoSetKey())

	// Player 0 holds J and player 1 holds Q.
	response := deal.GetChild(games.Bet)
	assert.Equal(t, 1, response.Player())
	assert.Equal(t, "Qb", response.InfoSetKey())

	call := response.GetChild(games.Bet)
	assert.Equal(t, efg.TerminalNode, call.Type())
	assert.Equal(t, 0, call.NumChildren())
	assert.Equal(t, -2.0, call.Utility(0))
	assert.Equal(t, 2.0, call.Utility(1))
}

func TestStrategy_VanillaCFR(t *testing.T) {
	game, err := Compile(games.NewKuhnGame())
	require.NoError(t, err)

	solver := cfr.NewVanilla()
	root := games.NewKuhnGame()
	var value float64
	for i := 0; i < 5000; i++ {
		value = solver.Run(root)
	}
	t.Logf("Last iteration value: %v", value)

	var plans [2][]float64
	for p := 0; p < 2; p++ {
		strategy, err := Strategy(solver, game, p)
		require.NoError(t, err)
		t.Logf("Player %d strategy: %v", p, strategy.ByKey(game, p))

		plans[p], err = efg.BehaviouralToRealizationPlan(game, p, strategy)
		require.NoError(t, err)
	}

	sf := efg.ConvertToSequenceForm(game)
	u, err := sf.ExpectedUtility(plans[0], plans[1])
	require.NoError(t, err)
	assert.InDelta(t, games.KuhnPokerValue, u[0], 0.02)
}

func TestStrategy_Untrained(t *testing.T) {
	game, err := Compile(games.NewKuhnGame())
	require.NoError(t, err)

	strategy, err := Strategy(cfr.NewVanilla(), game, 1)
	require.NoError(t, err)
	for _, probs := range strategy {
		assert.Equal(t, []float64{0.5, 0.5}, probs)
	}
}

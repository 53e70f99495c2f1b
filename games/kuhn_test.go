package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timpalpant/go-cfr"
	"github.com/timpalpant/go-cfr/tree"

	"github.com/timpalpant/equilibria/efg"
)

func TestKuhnPoker_Payoffs(t *testing.T) {
	testCases := []struct {
		cards    [2]int
		history  kuhnHistory
		expected float64
		terminal bool
	}{
		{[2]int{2, 0}, "pp", 1, true},
		{[2]int{0, 2}, "pp", -1, true},
		{[2]int{0, 1}, "bp", 1, true},
		{[2]int{2, 1}, "pbp", -1, true},
		{[2]int{1, 2}, "bb", -2, true},
		{[2]int{1, 0}, "pbb", 2, true},
		{[2]int{1, 0}, "pb", 0, false},
		{[2]int{1, 0}, "", 0, false},
	}

	for _, tc := range testCases {
		u, ok := tc.history.payoff(tc.cards)
		assert.Equal(t, tc.terminal, ok, "history %q", tc.history)
		assert.Equal(t, tc.expected, u, "history %q", tc.history)
	}
}

func TestKuhnPoker_Tree(t *testing.T) {
	root := KuhnPoker()
	assert.Equal(t, efg.ChanceNode, root.Type())
	assert.Equal(t, 6, root.NumChildren())

	total := 0.0
	for i := 0; i < root.NumChildren(); i++ {
		total += root.GetChildProbability(i)
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	// Deal K to player 0 and J to player 1; player 0 bets and player 1 folds.
	deal := root.GetChild(4)
	assert.Equal(t, "K", deal.InfoSetKey())
	response := deal.GetChild(Bet)
	assert.Equal(t, "Jb", response.InfoSetKey())
	fold := response.GetChild(Pass)
	assert.Equal(t, efg.TerminalNode, fold.Type())
	assert.Equal(t, 1.0, fold.Utility(0))
}

func TestKuhnNode(t *testing.T) {
	root := NewKuhnGame()
	assert.Equal(t, cfr.ChanceNode, root.Type())
	assert.Equal(t, -1, root.Player())
	assert.Equal(t, 0, root.NumChildren(), "children are built on demand")

	root.BuildChildren()
	defer root.FreeChildren()
	assert.Equal(t, 6, root.NumChildren())
	assert.InDelta(t, 1.0/6, root.GetChildProbability(0), 1e-12)

	// Player 0 holds K and player 1 holds J.
	deal := root.GetChild(4)
	assert.Equal(t, cfr.PlayerNode, deal.Type())
	assert.Equal(t, 0, deal.Player())
	assert.Equal(t, "K", deal.InfoSet(0))
	assert.Equal(t, "J", deal.InfoSet(1))

	deal.BuildChildren()
	check := deal.GetChild(Pass)
	check.BuildChildren()
	terminal := check.GetChild(Pass)
	assert.Equal(t, cfr.TerminalNode, terminal.Type())
	assert.Equal(t, 0, terminal.Player(), "terminals report the player to act next")
	assert.Equal(t, 1.0, terminal.Utility(0))
	assert.Equal(t, -1.0, terminal.Utility(1))

	deal.FreeChildren()
	assert.Equal(t, 0, deal.NumChildren())
}

func TestKuhnNode_Tree(t *testing.T) {
	root := NewKuhnGame()
	assert.Equal(t, 55, tree.CountNodes(root))
	assert.Equal(t, 30, tree.CountTerminalNodes(root))
	assert.Equal(t, 12, tree.CountInfoSets(root))

	var keys []string
	tree.VisitInfoSets(root, func(player int, infoSet string) {
		if player == 1 {
			keys = append(keys, infoSet)
		}
	})
	assert.ElementsMatch(t, []string{"Jp", "Jb", "Qp", "Qb", "Kp", "Kb"}, keys)
}

func TestKuhnNode_VanillaCFR(t *testing.T) {
	solver := cfr.NewVanilla()
	root := NewKuhnGame()
	total := 0.0
	n := 2000
	for i := 0; i < n; i++ {
		total += solver.Run(root)
	}

	// The average value over iterations approaches the game value.
	assert.InDelta(t, KuhnPokerValue, total/float64(n), 0.02)

	// Player 1 always calls with K and folds J to a bet.
	kb := solver.GetStrategy(1, "Kb")
	require.Len(t, kb, 2)
	assert.InDelta(t, 1, kb[Bet], 0.05)
	jb := solver.GetStrategy(1, "Jb")
	require.Len(t, jb, 2)
	assert.InDelta(t, 1, jb[Pass], 0.05)
}

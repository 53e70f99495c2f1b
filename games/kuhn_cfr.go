package games

import (
	"fmt"

	"github.com/timpalpant/go-cfr"
)

const chancePlayer = -1

// KuhnNode implements cfr.GameTreeNode for Kuhn poker. It describes the
// same game as KuhnPoker, with all six deals made by a single chance node.
//
// As go-cfr requires, children exist only between BuildChildren and
// FreeChildren.
type KuhnNode struct {
	dealt bool
	cards [2]int
	h     kuhnHistory

	children      []KuhnNode
	probabilities []float64
}

// Verify that we implement the interface.
var _ cfr.GameTreeNode = &KuhnNode{}

// NewKuhnGame returns the root of a Kuhn poker game, before the deal.
func NewKuhnGame() *KuhnNode {
	return &KuhnNode{}
}

// Type implements cfr.GameTreeNode.
func (k *KuhnNode) Type() cfr.NodeType {
	if !k.dealt {
		return cfr.ChanceNode
	}

	if _, ok := k.h.payoff(k.cards); ok {
		return cfr.TerminalNode
	}

	return cfr.PlayerNode
}

// Player implements cfr.GameTreeNode. Terminal nodes report the player
// who would act next, whose utility go-cfr propagates up the tree.
func (k *KuhnNode) Player() int {
	if !k.dealt {
		return chancePlayer
	}

	return k.h.player()
}

// InfoSet implements cfr.GameTreeNode.
func (k *KuhnNode) InfoSet(player int) string {
	return kuhnCards[k.cards[player]] + string(k.h)
}

// Utility implements cfr.GameTreeNode.
func (k *KuhnNode) Utility(player int) float64 {
	u, ok := k.h.payoff(k.cards)
	if !ok {
		panic("cannot get the utility of a non-terminal node")
	}

	if player == 1 {
		return -u
	}

	return u
}

// BuildChildren implements cfr.GameTreeNode.
func (k *KuhnNode) BuildChildren() {
	switch k.Type() {
	case cfr.ChanceNode:
		deals := kuhnDeals()
		k.children = make([]KuhnNode, len(deals))
		k.probabilities = make([]float64, len(deals))
		for i, cards := range deals {
			k.children[i] = KuhnNode{dealt: true, cards: cards}
			k.probabilities[i] = 1 / float64(len(deals))
		}
	case cfr.PlayerNode:
		k.children = []KuhnNode{
			{dealt: true, cards: k.cards, h: k.h.next(Pass)},
			{dealt: true, cards: k.cards, h: k.h.next(Bet)},
		}
	}
}

// FreeChildren implements cfr.GameTreeNode.
func (k *KuhnNode) FreeChildren() {
	k.children = nil
	k.probabilities = nil
}

// NumChildren implements cfr.GameTreeNode.
func (k *KuhnNode) NumChildren() int {
	return len(k.children)
}

// GetChild implements cfr.GameTreeNode.
func (k *KuhnNode) GetChild(i int) cfr.GameTreeNode {
	return &k.children[i]
}

// GetChildProbability implements cfr.GameTreeNode.
func (k *KuhnNode) GetChildProbability(i int) float64 {
	if k.Type() != cfr.ChanceNode {
		panic("cannot get the probability of a non-chance node")
	}

	return k.probabilities[i]
}

// String implements fmt.Stringer.
func (k *KuhnNode) String() string {
	if !k.dealt {
		return "deal"
	}

	return fmt.Sprintf("%s/%s %q", kuhnCards[k.cards[0]], kuhnCards[k.cards[1]], k.h)
}

package games

import (
	"github.com/timpalpant/equilibria/efg"
)

// Actions available at every Kuhn poker decision. Pass is a check or a
// fold; Bet is a bet or a call.
const (
	Pass = iota
	Bet
)

// KuhnPokerValue is player 0's expected payoff in every equilibrium.
const KuhnPokerValue = -1.0 / 18

var kuhnCards = [...]string{"J", "Q", "K"}

// kuhnHistory is the string of actions taken so far, "p" for Pass and "b" for Bet.
type kuhnHistory string

func (h kuhnHistory) player() int {
	return len(h) % 2
}

func (h kuhnHistory) next(action int) kuhnHistory {
	if action == Pass {
		return h + "p"
	}

	return h + "b"
}

// payoff returns player 0's winnings if h ends the hand.
func (h kuhnHistory) payoff(cards [2]int) (float64, bool) {
	switch h {
	case "pp":
		return showdown(cards, 1), true
	case "bp":
		return 1, true
	case "pbp":
		return -1, true
	case "bb", "pbb":
		return showdown(cards, 2), true
	default:
		return 0, false
	}
}

func showdown(cards [2]int, stake float64) float64 {
	if cards[0] > cards[1] {
		return stake
	}

	return -stake
}

// kuhnDeals enumerates the six equally likely (player 0, player 1) deals.
func kuhnDeals() [][2]int {
	var deals [][2]int
	for c0 := range kuhnCards {
		for c1 := range kuhnCards {
			if c0 != c1 {
				deals = append(deals, [2]int{c0, c1})
			}
		}
	}

	return deals
}

func kuhnInfoSetKey(cards [2]int, h kuhnHistory) string {
	return kuhnCards[cards[h.player()]] + string(h)
}

// KuhnPoker returns the game tree of Kuhn poker. Each player antes 1 and
// is dealt one of J, Q, K; player 0 acts first and a single bet of 1 is
// allowed. Information set keys are the acting player's card followed by
// the betting history, e.g. "Qpb".
func KuhnPoker() *efg.TreeNode {
	deals := kuhnDeals()
	probs := make([]float64, len(deals))
	children := make([]*efg.TreeNode, len(deals))
	for i, cards := range deals {
		probs[i] = 1 / float64(len(deals))
		children[i] = kuhnSubtree(cards, "")
	}

	return efg.NewChanceNode(probs, children...)
}

func kuhnSubtree(cards [2]int, h kuhnHistory) *efg.TreeNode {
	if u, ok := h.payoff(cards); ok {
		return efg.NewTerminalNode(u, -u)
	}

	return efg.NewPlayerNode(h.player(), kuhnInfoSetKey(cards, h),
		kuhnSubtree(cards, h.next(Pass)),
		kuhnSubtree(cards, h.next(Bet)))
}

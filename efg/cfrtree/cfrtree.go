// Package cfrtree exposes game trees written for github.com/timpalpant/go-cfr
// as efg.Node values, so they can be converted to normal or sequence form,
// and reads strategies trained by go-cfr back into efg's representation.
package cfrtree

import (
	"github.com/pkg/errors"
	"github.com/timpalpant/go-cfr"

	"github.com/timpalpant/equilibria/efg"
)

// Node wraps a cfr.GameTreeNode whose children have been built.
type Node struct {
	node cfr.GameTreeNode
}

// Verify that we implement the interface.
var _ efg.Node = Node{}

// Wrap builds the children of node and returns it as an efg.Node. The
// children of nodes reached through GetChild are built as they are
// visited, and stay in memory until node.FreeChildren is called.
func Wrap(node cfr.GameTreeNode) Node {
	node.BuildChildren()
	return Node{node}
}

// Compile compiles the go-cfr game tree rooted at root, releasing the
// expanded tree afterwards.
func Compile(root cfr.GameTreeNode) (*efg.Game, error) {
	defer root.FreeChildren()
	return efg.Compile(Wrap(root))
}

// Type implements efg.Node.
func (n Node) Type() efg.NodeType {
	switch n.node.Type() {
	case cfr.ChanceNode:
		return efg.ChanceNode
	case cfr.TerminalNode:
		return efg.TerminalNode
	case cfr.PlayerNode:
		return efg.PlayerNode
	default:
		return 0
	}
}

// Player implements efg.Node.
func (n Node) Player() int {
	return n.node.Player()
}

// InfoSetKey implements efg.Node.
func (n Node) InfoSetKey() string {
	return n.node.InfoSet(n.node.Player())
}

// NumChildren implements efg.Node.
func (n Node) NumChildren() int {
	return n.node.NumChildren()
}

// GetChild implements efg.Node.
func (n Node) GetChild(i int) efg.Node {
	return Wrap(n.node.GetChild(i))
}

// GetChildProbability implements efg.Node.
func (n Node) GetChildProbability(i int) float64 {
	return n.node.GetChildProbability(i)
}

// Utility implements efg.Node.
func (n Node) Utility(player int) float64 {
	return n.node.Utility(player)
}

// Strategy returns the behavioural strategy of player in game held by a
// trained go-cfr solver, indexed like game.InfoSets(player). Information
// sets the solver never visited are played uniformly.
func Strategy(solver cfr.CFR, game *efg.Game, player int) (efg.BehaviouralStrategy, error) {
	infoSets := game.InfoSets(player)
	result := make(efg.BehaviouralStrategy, len(infoSets))
	for _, is := range infoSets {
		probs := solver.GetStrategy(player, is.Key)
		if probs == nil {
			probs = make([]float64, is.NumActions)
			for a := range probs {
				probs[a] = 1 / float64(is.NumActions)
			}
		}

		if len(probs) != is.NumActions {
			return nil, errors.Errorf("information set %q has %d actions, solver strategy has %d",
				is.Key, is.NumActions, len(probs))
		}

		result[is.Index] = append([]float64(nil), probs...)
	}

	return result, nil
}

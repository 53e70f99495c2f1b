// Package efg converts two-player extensive-form games into their normal
// form and sequence form representations and solves zero-sum games in
// sequence form.
//
// Game trees are supplied through the Node interface and compiled into a
// Game, which indexes information sets and sequences with integer handles.
// All conversions operate on the compiled Game.
package efg

import (
	"fmt"
)

// NodeType is the kind of a node in a game tree.
type NodeType uint8

const (
	_ NodeType = iota
	ChanceNode
	PlayerNode
	TerminalNode
)

var nodeTypeStr = [...]string{
	"Invalid",
	"Chance",
	"Player",
	"Terminal",
}

func (t NodeType) String() string {
	if int(t) >= len(nodeTypeStr) {
		return fmt.Sprintf("NodeType(%d)", t)
	}

	return nodeTypeStr[t]
}

// Node is a read-only view of a node in a two-player game tree.
type Node interface {
	// Type returns the kind of node.
	Type() NodeType
	// Player returns the player (0 or 1) to act at a PlayerNode.
	Player() int
	// InfoSetKey identifies the acting player's information set at a
	// PlayerNode. Nodes the player cannot distinguish share a key.
	InfoSetKey() string
	// NumChildren returns the number of actions available at the node.
	NumChildren() int
	// GetChild returns the node reached by the i'th action.
	GetChild(i int) Node
	// GetChildProbability returns the probability of the i'th action at a ChanceNode.
	GetChildProbability(i int) float64
	// Utility returns the payoff to player at a TerminalNode.
	Utility(player int) float64
}

// TreeNode is an in-memory game tree node.
type TreeNode struct {
	nodeType NodeType
	player   int
	infoSet  string
	children []*TreeNode
	probs    []float64
	utility  [2]float64
}

// Verify that we implement the interface.
var _ Node = &TreeNode{}

// NewChanceNode returns a node at which the i'th child is reached with probability probs[i].
func NewChanceNode(probs []float64, children ...*TreeNode) *TreeNode {
	return &TreeNode{
		nodeType: ChanceNode,
		player:   -1,
		children: children,
		probs:    probs,
	}
}

// NewPlayerNode returns a decision node for player within the given information set.
func NewPlayerNode(player int, infoSet string, children ...*TreeNode) *TreeNode {
	return &TreeNode{
		nodeType: PlayerNode,
		player:   player,
		infoSet:  infoSet,
		children: children,
	}
}

// NewTerminalNode returns a leaf with the given payoffs for players 0 and 1.
func NewTerminalNode(u0, u1 float64) *TreeNode {
	return &TreeNode{
		nodeType: TerminalNode,
		player:   -1,
		utility:  [2]float64{u0, u1},
	}
}

// Type implements Node.
func (n *TreeNode) Type() NodeType {
	return n.nodeType
}

// Player implements Node.
func (n *TreeNode) Player() int {
	return n.player
}

// InfoSetKey implements Node.
func (n *TreeNode) InfoSetKey() string {
	return n.infoSet
}

// NumChildren implements Node.
func (n *TreeNode) NumChildren() int {
	return len(n.children)
}

// GetChild implements Node.
func (n *TreeNode) GetChild(i int) Node {
	return n.children[i]
}

// GetChildProbability implements Node.
func (n *TreeNode) GetChildProbability(i int) float64 {
	if n.nodeType != ChanceNode {
		panic("cannot get the probability of a non-chance node")
	}

	return n.probs[i]
}

// Utility implements Node.
func (n *TreeNode) Utility(player int) float64 {
	if n.nodeType != TerminalNode {
		panic("cannot get the utility of a non-terminal node")
	}

	return n.utility[player]
}

// String implements fmt.Stringer.
func (n *TreeNode) String() string {
	switch n.nodeType {
	case PlayerNode:
		return fmt.Sprintf("player %d at %q (%d actions)", n.player, n.infoSet, len(n.children))
	case ChanceNode:
		return fmt.Sprintf("chance %v", n.probs)
	case TerminalNode:
		return fmt.Sprintf("terminal %v", n.utility)
	default:
		return n.nodeType.String()
	}
}

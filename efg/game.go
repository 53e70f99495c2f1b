package efg

import (
	"math"

	"github.com/pkg/errors"

	"github.com/timpalpant/equilibria/matrixgame"
)

var (
	// ErrInvalidTree is returned for malformed game trees.
	ErrInvalidTree = errors.New("invalid game tree")
	// ErrImperfectRecall is returned when an information set can be reached
	// by different sequences of its player's own choices.
	ErrImperfectRecall = errors.New("game does not have perfect recall")
)

// EmptySequence is the index of each player's empty sequence.
const EmptySequence = 0

// InfoSet is an information set of one player.
type InfoSet struct {
	Player     int
	Key        string
	NumActions int
	// Index is the position of the information set among its player's
	// information sets, in order of discovery.
	Index int
	// Parent is the player's sequence leading to the information set.
	Parent int
	// FirstSequence is the sequence extending Parent by action 0. Action a
	// extends to FirstSequence + a.
	FirstSequence int
}

// Sequence returns the sequence extending Parent by the given action.
func (is InfoSet) Sequence(action int) int {
	return is.FirstSequence + action
}

// Sequence is a player's path of (information set, action) choices from the root.
type Sequence struct {
	// InfoSet is the index of the last information set on the path, or -1
	// for the empty sequence.
	InfoSet int
	// Action is the action taken at InfoSet.
	Action int
	// Parent is the sequence without its last choice, or -1 for the empty sequence.
	Parent int
}

type node struct {
	nodeType NodeType
	player   int
	infoSet  int
	children []int
	probs    []float64
	utility  [2]float64
	// sequences are each player's sequence leading to the node.
	sequences [2]int
	// chanceReach is the product of chance probabilities on the path to the node.
	chanceReach float64
}

// Game is a compiled two-player extensive-form game in which nodes,
// information sets and sequences are addressed by integer handles.
// Node 0 is the root.
type Game struct {
	nodes          []node
	infoSets       []InfoSet
	playerInfoSets [2][]int
	sequences      [2][]Sequence
	infoSetIndex   [2]map[string]int
}

// Compile walks the tree rooted at root and indexes its information sets
// and sequences. The tree is only read.
func Compile(root Node) (*Game, error) {
	g := &Game{}
	for p := range g.sequences {
		g.sequences[p] = []Sequence{{InfoSet: -1, Parent: -1}}
		g.infoSetIndex[p] = make(map[string]int)
	}

	if _, err := g.compile(root, [2]int{EmptySequence, EmptySequence}, 1); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *Game) compile(n Node, sequences [2]int, chanceReach float64) (int, error) {
	idx := len(g.nodes)
	g.nodes = append(g.nodes, node{
		nodeType:    n.Type(),
		player:      -1,
		infoSet:     -1,
		sequences:   sequences,
		chanceReach: chanceReach,
	})

	switch n.Type() {
	case TerminalNode:
		g.nodes[idx].utility = [2]float64{n.Utility(0), n.Utility(1)}
		return idx, nil
	case ChanceNode:
		probs, err := chanceProbabilities(n)
		if err != nil {
			return idx, err
		}

		g.nodes[idx].probs = probs
		for i := range probs {
			child, err := g.compile(n.GetChild(i), sequences, chanceReach*probs[i])
			if err != nil {
				return idx, err
			}
			g.nodes[idx].children = append(g.nodes[idx].children, child)
		}

		return idx, nil
	case PlayerNode:
		player := n.Player()
		if player != 0 && player != 1 {
			return idx, errors.Wrapf(ErrInvalidTree, "invalid player %d", player)
		}

		infoSet, err := g.lookupInfoSet(n, sequences[player])
		if err != nil {
			return idx, err
		}

		g.nodes[idx].player = player
		g.nodes[idx].infoSet = infoSet
		is := g.infoSets[infoSet]
		for a := 0; a < is.NumActions; a++ {
			childSequences := sequences
			childSequences[player] = is.Sequence(a)
			child, err := g.compile(n.GetChild(a), childSequences, chanceReach)
			if err != nil {
				return idx, err
			}
			g.nodes[idx].children = append(g.nodes[idx].children, child)
		}

		return idx, nil
	default:
		return idx, errors.Wrapf(ErrInvalidTree, "unknown node type %v", n.Type())
	}
}

func chanceProbabilities(n Node) ([]float64, error) {
	if n.NumChildren() == 0 {
		return nil, errors.Wrap(ErrInvalidTree, "chance node has no children")
	}

	probs := make([]float64, n.NumChildren())
	total := 0.0
	for i := range probs {
		p := n.GetChildProbability(i)
		if math.IsNaN(p) || p < 0 {
			return nil, errors.Wrapf(ErrInvalidTree, "chance probability %v for action %d", p, i)
		}
		probs[i] = p
		total += p
	}

	if math.Abs(total-1) > matrixgame.Tolerance {
		return nil, errors.Wrapf(ErrInvalidTree, "chance probabilities sum to %v", total)
	}

	return probs, nil
}

// lookupInfoSet returns the information set of n, creating it and its
// sequences the first time it is reached.
func (g *Game) lookupInfoSet(n Node, parent int) (int, error) {
	player := n.Player()
	key := n.InfoSetKey()
	numActions := n.NumChildren()
	if numActions == 0 {
		return -1, errors.Wrapf(ErrInvalidTree, "information set %q has no actions", key)
	}

	if id, ok := g.infoSetIndex[player][key]; ok {
		is := g.infoSets[id]
		if is.NumActions != numActions {
			return -1, errors.Wrapf(ErrInvalidTree, "information set %q has %d and %d actions",
				key, is.NumActions, numActions)
		}
		if is.Parent != parent {
			return -1, errors.Wrapf(ErrImperfectRecall, "information set %q reached by sequences %d and %d",
				key, is.Parent, parent)
		}
		return id, nil
	}

	id := len(g.infoSets)
	is := InfoSet{
		Player:        player,
		Key:           key,
		NumActions:    numActions,
		Index:         len(g.playerInfoSets[player]),
		Parent:        parent,
		FirstSequence: len(g.sequences[player]),
	}
	g.infoSets = append(g.infoSets, is)
	g.playerInfoSets[player] = append(g.playerInfoSets[player], id)
	g.infoSetIndex[player][key] = id
	for a := 0; a < numActions; a++ {
		g.sequences[player] = append(g.sequences[player], Sequence{
			InfoSet: id,
			Action:  a,
			Parent:  parent,
		})
	}

	return id, nil
}

// NumNodes returns the number of nodes in the tree.
func (g *Game) NumNodes() int {
	return len(g.nodes)
}

// InfoSet returns the information set with the given handle.
func (g *Game) InfoSet(id int) InfoSet {
	return g.infoSets[id]
}

// InfoSets returns player's information sets ordered by InfoSet.Index.
func (g *Game) InfoSets(player int) []InfoSet {
	result := make([]InfoSet, len(g.playerInfoSets[player]))
	for i, id := range g.playerInfoSets[player] {
		result[i] = g.infoSets[id]
	}
	return result
}

// NumInfoSets returns the number of information sets of player.
func (g *Game) NumInfoSets(player int) int {
	return len(g.playerInfoSets[player])
}

// LookupInfoSet returns the information set of player with the given key.
func (g *Game) LookupInfoSet(player int, key string) (InfoSet, bool) {
	id, ok := g.infoSetIndex[player][key]
	if !ok {
		return InfoSet{}, false
	}

	return g.infoSets[id], true
}

// Sequences returns player's sequences. Index 0 is the empty sequence, and
// every sequence's parent precedes it.
func (g *Game) Sequences(player int) []Sequence {
	return append([]Sequence(nil), g.sequences[player]...)
}

// NumSequences returns the number of sequences of player, including the empty sequence.
func (g *Game) NumSequences(player int) int {
	return len(g.sequences[player])
}

package efg

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/matrixgame"
)

// MaxPureStrategies bounds the number of pure strategies per player that
// PureStrategies will enumerate.
const MaxPureStrategies = 1 << 16

// ErrTooManyStrategies is returned when a player has more than
// MaxPureStrategies pure strategies.
var ErrTooManyStrategies = errors.New("too many pure strategies")

// PureStrategy selects one action for each of a player's information
// sets, indexed by InfoSet.Index.
type PureStrategy []int

// NumPureStrategies returns the number of pure strategies of player.
func (g *Game) NumPureStrategies(player int) (int, error) {
	n := 1
	for _, id := range g.playerInfoSets[player] {
		n *= g.infoSets[id].NumActions
		if n > MaxPureStrategies {
			return 0, errors.Wrapf(ErrTooManyStrategies, "player %d has more than %d", player, MaxPureStrategies)
		}
	}

	return n, nil
}

// PureStrategies enumerates the pure strategies of player. Strategies are
// ordered like an odometer in which the last information set's action
// changes fastest.
func (g *Game) PureStrategies(player int) ([]PureStrategy, error) {
	n, err := g.NumPureStrategies(player)
	if err != nil {
		return nil, err
	}

	infoSets := g.InfoSets(player)
	result := make([]PureStrategy, 0, n)
	current := make(PureStrategy, len(infoSets))
	for {
		strategy := make(PureStrategy, len(current))
		copy(strategy, current)
		result = append(result, strategy)

		i := len(current) - 1
		for ; i >= 0; i-- {
			current[i]++
			if current[i] < infoSets[i].NumActions {
				break
			}
			current[i] = 0
		}

		if i < 0 {
			break
		}
	}

	return result, nil
}

// ExpectedUtility returns both players' expected payoffs when player 0
// plays pure0 and player 1 plays pure1, averaging over chance.
func (g *Game) ExpectedUtility(pure0, pure1 PureStrategy) ([2]float64, error) {
	pure := [2]PureStrategy{pure0, pure1}
	for p, s := range pure {
		if len(s) != g.NumInfoSets(p) {
			return [2]float64{}, errors.Errorf("player %d strategy has %d actions for %d information sets",
				p, len(s), g.NumInfoSets(p))
		}
		for i, is := range g.InfoSets(p) {
			if s[i] < 0 || s[i] >= is.NumActions {
				return [2]float64{}, errors.Errorf("player %d plays action %d at %q with %d actions",
					p, s[i], is.Key, is.NumActions)
			}
		}
	}

	return g.expectedUtility(0, pure), nil
}

func (g *Game) expectedUtility(idx int, pure [2]PureStrategy) [2]float64 {
	n := &g.nodes[idx]
	switch n.nodeType {
	case TerminalNode:
		return n.utility
	case ChanceNode:
		var result [2]float64
		for i, child := range n.children {
			if n.probs[i] == 0 {
				continue
			}

			u := g.expectedUtility(child, pure)
			result[0] += n.probs[i] * u[0]
			result[1] += n.probs[i] * u[1]
		}
		return result
	default:
		action := pure[n.player][g.infoSets[n.infoSet].Index]
		return g.expectedUtility(n.children[action], pure)
	}
}

// ConvertToNormalForm returns the matrix game whose rows are player 0's
// pure strategies and whose columns are player 1's, both in the order
// returned by PureStrategies.
func ConvertToNormalForm(g *Game) (*matrixgame.Game, error) {
	rowStrategies, err := g.PureStrategies(0)
	if err != nil {
		return nil, err
	}
	colStrategies, err := g.PureStrategies(1)
	if err != nil {
		return nil, err
	}

	glog.V(1).Infof("Converting to %dx%d normal form", len(rowStrategies), len(colStrategies))
	row := mat.NewDense(len(rowStrategies), len(colStrategies), nil)
	col := mat.NewDense(len(rowStrategies), len(colStrategies), nil)
	for i, s0 := range rowStrategies {
		for j, s1 := range colStrategies {
			u := g.expectedUtility(0, [2]PureStrategy{s0, s1})
			row.Set(i, j, u[0])
			col.Set(i, j, u[1])
		}
	}

	return &matrixgame.Game{Row: row, Col: col}, nil
}

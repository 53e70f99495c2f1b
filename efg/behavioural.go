package efg

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/timpalpant/equilibria/matrixgame"
)

// ErrInvalidPlan is returned for realization plans and behavioural
// strategies that do not fit the game.
var ErrInvalidPlan = errors.New("invalid realization plan")

// BehaviouralStrategy holds one distribution over actions for each of a
// player's information sets, indexed by InfoSet.Index.
type BehaviouralStrategy [][]float64

// ValidateRealizationPlan checks that plan is a non-negative vector over
// player's sequences satisfying the flow constraints within Tolerance.
func ValidateRealizationPlan(g *Game, player int, plan []float64) error {
	if len(plan) != g.NumSequences(player) {
		return errors.Wrapf(ErrInvalidPlan, "plan has %d entries, player %d has %d sequences",
			len(plan), player, g.NumSequences(player))
	}

	for s, v := range plan {
		if math.IsNaN(v) || v < -matrixgame.Tolerance {
			return errors.Wrapf(ErrInvalidPlan, "mass %v on sequence %d", v, s)
		}
	}

	if math.Abs(plan[EmptySequence]-1) > matrixgame.Tolerance {
		return errors.Wrapf(ErrInvalidPlan, "empty sequence has mass %v", plan[EmptySequence])
	}

	for _, is := range g.InfoSets(player) {
		total := floats.Sum(plan[is.FirstSequence : is.FirstSequence+is.NumActions])
		if math.Abs(total-plan[is.Parent]) > matrixgame.Tolerance {
			return errors.Wrapf(ErrInvalidPlan, "information set %q has mass %v, parent sequence has %v",
				is.Key, total, plan[is.Parent])
		}
	}

	return nil
}

// RealizationPlanToBehavioural converts a realization plan of player into
// the behavioural strategy that induces it. Information sets the plan
// never reaches are assigned the uniform distribution.
func RealizationPlanToBehavioural(g *Game, player int, plan []float64) (BehaviouralStrategy, error) {
	if err := ValidateRealizationPlan(g, player, plan); err != nil {
		return nil, err
	}

	infoSets := g.InfoSets(player)
	result := make(BehaviouralStrategy, len(infoSets))
	for _, is := range infoSets {
		parent := plan[is.Parent]
		if parent <= matrixgame.Epsilon {
			result[is.Index] = matrixgame.Uniform(is.NumActions)
			continue
		}

		probs := make([]float64, is.NumActions)
		for a := range probs {
			probs[a] = math.Max(plan[is.Sequence(a)], 0) / parent
		}
		if total := floats.Sum(probs); total > 0 {
			floats.Scale(1/total, probs)
		} else {
			probs = matrixgame.Uniform(is.NumActions)
		}
		result[is.Index] = probs
	}

	return result, nil
}

// BehaviouralToRealizationPlan returns the realization plan induced by
// player following strategy.
func BehaviouralToRealizationPlan(g *Game, player int, strategy BehaviouralStrategy) ([]float64, error) {
	infoSets := g.InfoSets(player)
	if len(strategy) != len(infoSets) {
		return nil, errors.Wrapf(ErrInvalidPlan, "strategy covers %d information sets, player %d has %d",
			len(strategy), player, len(infoSets))
	}
	for _, is := range infoSets {
		if err := matrixgame.ValidateStrategy(strategy[is.Index], is.NumActions); err != nil {
			return nil, errors.Wrapf(err, "information set %q", is.Key)
		}
	}

	sequences := g.sequences[player]
	plan := make([]float64, len(sequences))
	plan[EmptySequence] = 1
	for s := 1; s < len(sequences); s++ {
		seq := sequences[s]
		is := g.infoSets[seq.InfoSet]
		plan[s] = plan[seq.Parent] * strategy[is.Index][seq.Action]
	}

	return plan, nil
}

// ByKey returns strategy keyed by information set key.
func (s BehaviouralStrategy) ByKey(g *Game, player int) map[string][]float64 {
	result := make(map[string][]float64, len(s))
	for _, is := range g.InfoSets(player) {
		if is.Index < len(s) {
			result[is.Key] = s[is.Index]
		}
	}

	return result
}

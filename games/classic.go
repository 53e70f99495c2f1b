// Package games provides small games with known equilibria, random game
// generators, and Kuhn poker.
package games

import (
	"github.com/timpalpant/equilibria/matrixgame"
)

func mustFromRows(row, col [][]float64) *matrixgame.Game {
	g, err := matrixgame.FromRows(row, col)
	if err != nil {
		panic(err)
	}

	return g
}

// MatchingPennies is zero-sum. Its only equilibrium is uniform for both players.
func MatchingPennies() *matrixgame.Game {
	return mustFromRows(
		[][]float64{{1, -1}, {-1, 1}},
		[][]float64{{-1, 1}, {1, -1}},
	)
}

// PrisonersDilemma has actions (Cooperate, Defect). Defect strictly
// dominates Cooperate for both players.
func PrisonersDilemma() *matrixgame.Game {
	return mustFromRows(
		[][]float64{{-1, -3}, {0, -2}},
		[][]float64{{-1, 0}, {-3, -2}},
	)
}

// RockPaperScissors is zero-sum with actions (Rock, Paper, Scissors).
func RockPaperScissors() *matrixgame.Game {
	return mustFromRows(
		[][]float64{{0, -1, 1}, {1, 0, -1}, {-1, 1, 0}},
		[][]float64{{0, 1, -1}, {-1, 0, 1}, {1, -1, 0}},
	)
}

// BattleOfTheSexes has two pure equilibria on the diagonal and a mixed
// equilibrium ((3/5, 2/5), (2/5, 3/5)).
func BattleOfTheSexes() *matrixgame.Game {
	return mustFromRows(
		[][]float64{{3, 0}, {0, 2}},
		[][]float64{{2, 0}, {0, 3}},
	)
}

// StagHunt has actions (Stag, Hare), pure equilibria (Stag, Stag) and
// (Hare, Hare), and a mixed equilibrium in which both play (1/2, 1/2).
func StagHunt() *matrixgame.Game {
	return mustFromRows(
		[][]float64{{4, 1}, {3, 2}},
		[][]float64{{4, 3}, {1, 2}},
	)
}

// Chicken has actions (Swerve, Straight), pure equilibria in which exactly
// one player swerves, and a mixed equilibrium in which both play (9/10, 1/10).
func Chicken() *matrixgame.Game {
	return mustFromRows(
		[][]float64{{0, -1}, {1, -10}},
		[][]float64{{0, 1}, {-1, -10}},
	)
}

// Command solve_matrix_game computes equilibria of a two-player matrix game.
//
// The game is either one of the built-in classic games or a pair of
// payoff matrices stored as .npy files. With only -row given the game is
// zero-sum.
package main

import (
	"flag"
	"math/rand"
	"net/http"
	_ "net/http/pprof"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/games"
	"github.com/timpalpant/equilibria/matrixgame"
	"github.com/timpalpant/equilibria/npyio"
)

var classicGames = map[string]func() *matrixgame.Game{
	"matching_pennies":    games.MatchingPennies,
	"prisoners_dilemma":   games.PrisonersDilemma,
	"rock_paper_scissors": games.RockPaperScissors,
	"battle_of_the_sexes": games.BattleOfTheSexes,
	"stag_hunt":           games.StagHunt,
	"chicken":             games.Chicken,
}

type params struct {
	algorithm  string
	iterations int
	eps        float64
	rng        *rand.Rand
}

// result holds the profiles produced by an algorithm, in order. The last
// profile is reported as the solution.
type result struct {
	profiles []matrixgame.Profile
	extra    map[string]mat.Matrix
}

func main() {
	gameName := flag.String("game", "", "Built-in game: "+strings.Join(classicGameNames(), ", "))
	rowFile := flag.String("row", "", "Row player payoffs (.npy)")
	colFile := flag.String("col", "", "Column player payoffs (.npy). Defaults to the negated row payoffs")
	algorithm := flag.String("algorithm", "support_enumeration",
		"One of: dominance, support_enumeration, lp, correlated, fictitious_play, "+
			"naive_fictitious_play, regret_minimization, double_oracle")
	iterations := flag.Int("iterations", 10000, "Number of iterations for iterative algorithms")
	eps := flag.Float64("eps", 1e-6, "Convergence threshold for double oracle")
	seed := flag.Int64("seed", 123, "Random seed")
	output := flag.String("output", "", "Write the solution to this .npz file")
	debugAddr := flag.String("debug_addr", "", "Serve pprof and expvar on this address")
	flag.Parse()

	if *debugAddr != "" {
		go http.ListenAndServe(*debugAddr, nil)
	}

	g, err := loadGame(*gameName, *rowFile, *colFile)
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Loaded %v", g)

	p := params{
		algorithm:  *algorithm,
		iterations: *iterations,
		eps:        *eps,
		rng:        rand.New(rand.NewSource(*seed)),
	}
	res, err := solve(g, p)
	if err != nil {
		glog.Fatal(err)
	}

	if len(res.profiles) > 0 {
		exploitability, err := matrixgame.ExploitabilitySequence(g, res.profiles)
		if err != nil {
			glog.Fatal(err)
		}

		final := res.profiles[len(res.profiles)-1]
		rowU, colU, err := matrixgame.Evaluate(g, final)
		if err != nil {
			glog.Fatal(err)
		}
		glog.Infof("Solution: %v", final)
		glog.Infof("Utilities: %.6f, %.6f. Exploitability: %.6g",
			rowU, colU, exploitability[len(exploitability)-1])

		res.extra["row_strategy"] = mat.NewDense(1, len(final.Row), final.Row)
		res.extra["col_strategy"] = mat.NewDense(1, len(final.Col), final.Col)
		res.extra["exploitability"] = mat.NewDense(1, len(exploitability), exploitability)
	}

	if *output != "" {
		glog.Infof("Saving solution to %v", *output)
		if err := npyio.MakeNPZ(*output, res.extra); err != nil {
			glog.Fatal(err)
		}
	}
}

func classicGameNames() []string {
	var names []string
	for name := range classicGames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadGame(name, rowFile, colFile string) (*matrixgame.Game, error) {
	if name != "" {
		newGame, ok := classicGames[name]
		if !ok {
			return nil, errors.Errorf("unknown game %q", name)
		}
		return newGame(), nil
	}

	if rowFile == "" {
		return nil, errors.New("either -game or -row is required")
	}

	row, err := npyio.ReadMatrixFile(rowFile)
	if err != nil {
		return nil, err
	}

	if colFile == "" {
		return matrixgame.NewZeroSumGame(row), nil
	}

	col, err := npyio.ReadMatrixFile(colFile)
	if err != nil {
		return nil, err
	}

	return matrixgame.NewGame(row, col)
}

func solve(g *matrixgame.Game, p params) (*result, error) {
	res := &result{extra: make(map[string]mat.Matrix)}
	var err error
	switch p.algorithm {
	case "dominance":
		var r *matrixgame.Reduction
		r, err = matrixgame.IteratedRemoval(g)
		if err == nil {
			glog.Infof("Surviving row actions: %v", r.RowActions)
			glog.Infof("Surviving column actions: %v", r.ColActions)
			res.extra["reduced_row"] = r.Game.Row
			res.extra["reduced_col"] = r.Game.Col
		}
	case "support_enumeration":
		var eqs []matrixgame.Equilibrium
		eqs, err = matrixgame.SupportEnumeration(g)
		for i, eq := range eqs {
			glog.Infof("Equilibrium %d: %v (supports %v, %v)", i, eq.Profile, eq.RowSupport, eq.ColSupport)
			res.profiles = append(res.profiles, eq.Profile)
		}
	case "lp":
		if !g.IsZeroSum() {
			return nil, errors.New("lp requires a zero-sum game")
		}

		var sol *matrixgame.Solution
		sol, err = matrixgame.FindNashEquilibrium(g.Row)
		if err == nil {
			glog.Infof("Game value: %.6f", sol.Value)
			res.profiles = append(res.profiles, sol.Profile)
		}
	case "correlated":
		var joint *mat.Dense
		joint, err = matrixgame.FindCorrelatedEquilibrium(g)
		if err == nil {
			glog.Infof("Correlated equilibrium:\n%v", mat.Formatted(joint))
			res.extra["joint"] = joint
		}
	case "fictitious_play", "naive_fictitious_play":
		opts := matrixgame.FictitiousPlayOptions{Naive: p.algorithm == "naive_fictitious_play"}
		res.profiles, err = matrixgame.FictitiousPlay(g, p.iterations, opts)
	case "regret_minimization":
		res.profiles, err = matrixgame.RegretMinimization(g, p.iterations)
	case "double_oracle":
		if !g.IsZeroSum() {
			return nil, errors.New("double_oracle requires a zero-sum game")
		}

		var rounds []matrixgame.Round
		rounds, err = matrixgame.DoubleOracle(g.Row, p.eps, p.rng)
		for _, r := range rounds {
			res.profiles = append(res.profiles, r.Profile)
		}
		if len(rounds) > 0 {
			final := rounds[len(rounds)-1]
			glog.Infof("Finished after %d rounds with value in [%v, %v]",
				len(rounds), final.LowerBound, final.UpperBound)
		}
	default:
		return nil, errors.Errorf("unknown algorithm %q", p.algorithm)
	}

	return res, errors.Wrap(err, p.algorithm)
}

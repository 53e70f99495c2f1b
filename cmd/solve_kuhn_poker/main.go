// Command solve_kuhn_poker solves Kuhn poker through its normal form and
// through its sequence form, and logs the game value and the behavioural
// strategies of both players. With -cfr_iterations it also trains vanilla
// CFR on the go-cfr game tree and reports the value of its average strategy.
package main

import (
	"flag"
	"net/http"
	_ "net/http/pprof"
	"sort"

	"github.com/golang/glog"
	"github.com/timpalpant/go-cfr"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/efg"
	"github.com/timpalpant/equilibria/efg/cfrtree"
	"github.com/timpalpant/equilibria/games"
	"github.com/timpalpant/equilibria/matrixgame"
	"github.com/timpalpant/equilibria/npyio"
)

func main() {
	useCFRTree := flag.Bool("cfr_tree", false, "Build the game from the go-cfr game tree")
	cfrIterations := flag.Int("cfr_iterations", 0, "Number of vanilla CFR iterations to run (0 to skip)")
	skipNormalForm := flag.Bool("skip_normal_form", false, "Only solve the sequence form")
	output := flag.String("output", "", "Write realization plans to this .npz file")
	debugAddr := flag.String("debug_addr", "", "Serve pprof and expvar on this address")
	flag.Parse()

	if *debugAddr != "" {
		go http.ListenAndServe(*debugAddr, nil)
	}

	var game *efg.Game
	var err error
	if *useCFRTree {
		game, err = cfrtree.Compile(games.NewKuhnGame())
	} else {
		game, err = efg.Compile(games.KuhnPoker())
	}
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Compiled game with %d nodes, %d and %d information sets",
		game.NumNodes(), game.NumInfoSets(0), game.NumInfoSets(1))

	if !*skipNormalForm {
		solveNormalForm(game)
	}

	sol, err := efg.FindNashEquilibriumSequenceForm(game)
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Sequence form game value: %.6f (expected %.6f)", sol.Value, games.KuhnPokerValue)

	for p := 0; p < 2; p++ {
		strategy, err := efg.RealizationPlanToBehavioural(game, p, sol.Plans[p])
		if err != nil {
			glog.Fatal(err)
		}
		logStrategy(p, strategy.ByKey(game, p))
	}

	if *cfrIterations > 0 {
		runCFR(game, *cfrIterations)
	}

	if *output != "" {
		glog.Infof("Saving realization plans to %v", *output)
		err := npyio.MakeNPZ(*output, map[string]mat.Matrix{
			"plan_0": mat.NewDense(1, len(sol.Plans[0]), sol.Plans[0]),
			"plan_1": mat.NewDense(1, len(sol.Plans[1]), sol.Plans[1]),
		})
		if err != nil {
			glog.Fatal(err)
		}
	}
}

func solveNormalForm(game *efg.Game) {
	nf, err := efg.ConvertToNormalForm(game)
	if err != nil {
		glog.Fatal(err)
	}

	n, m := nf.Dims()
	glog.Infof("Normal form has %dx%d pure strategies", n, m)
	sol, err := matrixgame.FindNashEquilibrium(nf.Row)
	if err != nil {
		glog.Fatal(err)
	}

	exploitability, err := matrixgame.Exploitability(nf, sol.Profile)
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Normal form game value: %.6f (exploitability %.3g)", sol.Value, exploitability)
}

func runCFR(game *efg.Game, iterations int) {
	solver := cfr.NewVanilla()
	root := games.NewKuhnGame()
	expectedValue := 0.0
	for i := 1; i <= iterations; i++ {
		expectedValue += solver.Run(root)
		if i%(1+iterations/10) == 0 {
			glog.Infof("[CFR iteration %d] Average game value: %.6f", i, expectedValue/float64(i))
		}
	}

	var plans [2][]float64
	for p := 0; p < 2; p++ {
		strategy, err := cfrtree.Strategy(solver, game, p)
		if err != nil {
			glog.Fatal(err)
		}

		plans[p], err = efg.BehaviouralToRealizationPlan(game, p, strategy)
		if err != nil {
			glog.Fatal(err)
		}
		logStrategy(p, strategy.ByKey(game, p))
	}

	u, err := efg.ConvertToSequenceForm(game).ExpectedUtility(plans[0], plans[1])
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("CFR average strategy value: %.6f (expected %.6f)", u[0], games.KuhnPokerValue)
}

func logStrategy(player int, strategy map[string][]float64) {
	keys := make([]string, 0, len(strategy))
	for key := range strategy {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		glog.Infof("Player %d at %-4s pass/bet: %.4f", player, key, strategy[key])
	}
}

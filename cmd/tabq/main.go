// Command tabq trains a tabular Q-learning agent at an m,n,k game through
// self-play, persists what it learned, and then lets a human challenge it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/logrusorgru/aurora"

	"github.com/tabq/tabq"
	gifenc "github.com/tabq/tabq/encoding/gif"
	"github.com/tabq/tabq/game"
	"github.com/tabq/tabq/game/mnk"
)

type config struct {
	Name         string  `yaml:"name" env:"TABQ_NAME" env-default:"Tic Tac Toe"`
	M            int     `yaml:"m" env:"TABQ_M" env-default:"3"`
	N            int     `yaml:"n" env:"TABQ_N" env-default:"3"`
	K            int     `yaml:"k" env:"TABQ_K" env-default:"3"`
	Episodes     int     `yaml:"episodes" env:"TABQ_EPISODES" env-default:"100000"`
	Alpha        float32 `yaml:"alpha" env:"TABQ_ALPHA" env-default:"0.5"`
	Gamma        float32 `yaml:"gamma" env:"TABQ_GAMMA" env-default:"0.9"`
	Epsilon      float64 `yaml:"epsilon" env:"TABQ_EPSILON" env-default:"1.0"`
	EpsilonDecay float64 `yaml:"epsilon-decay" env:"TABQ_EPSILON_DECAY" env-default:"0.00001"`
	EpsilonMin   float64 `yaml:"epsilon-min" env:"TABQ_EPSILON_MIN" env-default:"0.01"`
	Seed         int64   `yaml:"seed" env:"TABQ_SEED" env-default:"1337"`
	StatsEvery   int     `yaml:"stats-every" env:"TABQ_STATS_EVERY" env-default:"1000"`

	ModelPath string `yaml:"model-path" env:"TABQ_MODEL_PATH" env-default:"tabq.model"`
	StatsPath string `yaml:"stats-path" env:"TABQ_STATS_PATH" env-default:"stats.csv"`
	ChartPath string `yaml:"chart-path" env:"TABQ_CHART_PATH" env-default:"stats.html"`
	GifPath   string `yaml:"gif-path" env:"TABQ_GIF_PATH" env-default:""`
	DotPath   string `yaml:"dot-path" env:"TABQ_DOT_PATH" env-default:""`
	DotDepth  int    `yaml:"dot-depth" env:"TABQ_DOT_DEPTH" env-default:"2"`
}

func main() {
	configPath := flag.String("config", "", "path to a yaml config; environment variables otherwise")
	loadModel := flag.Bool("load", false, "load the model instead of training")
	noPlay := flag.Bool("noplay", false, "skip the interactive game")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	conf, err := initConfig(*configPath)
	if err != nil {
		logger.Error("unable to load config", "error", err)
		os.Exit(1)
	}
	if err := run(logger, conf, *loadModel, *noPlay); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func initConfig(path string) (*config, error) {
	conf := &config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, conf); err != nil {
			return nil, fmt.Errorf("unable to load config file %s: %w", path, err)
		}
		return conf, nil
	}
	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}
	return conf, nil
}

func run(logger *slog.Logger, conf *config, loadModel, noPlay bool) error {
	tconf := tabq.Config{
		Name:         conf.Name,
		M:            conf.M,
		N:            conf.N,
		K:            conf.K,
		Alpha:        conf.Alpha,
		Gamma:        conf.Gamma,
		Epsilon:      conf.Epsilon,
		EpsilonDecay: conf.EpsilonDecay,
		EpsilonMin:   conf.EpsilonMin,
		Seed:         conf.Seed,
		StatsEvery:   conf.StatsEvery,
	}

	var gifFile *os.File
	if conf.GifPath != "" {
		var err error
		if gifFile, err = os.Create(conf.GifPath); err != nil {
			return err
		}
		defer gifFile.Close()
		tconf.OutputEncoder = gifenc.NewEncoder(600, 400, gifFile)
	}

	tq, err := tabq.New(tconf)
	if err != nil {
		return err
	}

	if loadModel {
		if err := tq.Load(conf.ModelPath); err != nil {
			return err
		}
		logger.Info("loaded model", "path", conf.ModelPath, "states", tq.Table.States())
	} else {
		logger.Info("training", "episodes", conf.Episodes, "board", fmt.Sprintf("%dx%d, %d to win", conf.M, conf.N, conf.K))
		start := time.Now()
		if err := tq.Learn(conf.Episodes); err != nil {
			return err
		}
		logger.Info("trained",
			"elapsed", time.Since(start),
			"states", tq.Table.States(),
			"unexplored", tq.Table.Unexplored(conf.M*conf.N),
		)

		if err := tq.Save(conf.ModelPath); err != nil {
			return err
		}
		logger.Info("saved model", "path", conf.ModelPath)

		if err := tq.Statistics.Dump(conf.StatsPath); err != nil {
			return err
		}
		chart, err := os.Create(conf.ChartPath)
		if err != nil {
			return err
		}
		if err := tq.Statistics.Chart(conf.Name, chart); err != nil {
			chart.Close()
			return err
		}
		if err := chart.Close(); err != nil {
			return err
		}
		logger.Info("dumped statistics", "csv", conf.StatsPath, "chart", conf.ChartPath)
	}

	if conf.DotPath != "" {
		g, err := mnk.New(conf.M, conf.N, conf.K)
		if err != nil {
			return err
		}
		dot, err := tq.Table.ToDot(g, conf.DotDepth)
		if err != nil {
			return err
		}
		if err := os.WriteFile(conf.DotPath, []byte(dot), 0644); err != nil {
			return err
		}
		logger.Info("dumped policy graph", "path", conf.DotPath)
	}

	if conf.GifPath != "" {
		winner, err := tq.Exhibition()
		if err != nil {
			return err
		}
		logger.Info("recorded exhibition game", "path", conf.GifPath, "winner", fmt.Sprintf("%v", winner))
	}

	if noPlay {
		return nil
	}
	return playHuman(tq, conf)
}

// playHuman runs games of human versus the trained agent until the human
// quits. The human plays X and goes first; the agent plays its best known
// moves with no exploration.
func playHuman(tq *tabq.TQ, conf *config) error {
	g, err := mnk.New(conf.M, conf.N, conf.K)
	if err != nil {
		return err
	}
	agent := tq.A
	agent.Player = mnk.Nought

	in := bufio.NewScanner(os.Stdin)
	for {
		g.Reset()
		g.SetToMove(mnk.Cross)
		fmt.Printf("You are %s. Enter a cell number, or q to quit.\n", aurora.Green("X"))
		printBoard(g)

		for {
			move, quit := readMove(in, g)
			if quit {
				return nil
			}
			if _, err := g.Apply(game.PlayerMove{Player: mnk.Cross, Single: move}); err != nil {
				// readMove only hands out checked moves
				return err
			}
			printBoard(g)
			if done := announce(g); done {
				break
			}

			reply, err := agent.BestMove(g)
			if err != nil {
				return err
			}
			if _, err := g.Apply(game.PlayerMove{Player: mnk.Nought, Single: reply}); err != nil {
				return err
			}
			fmt.Printf("agent plays %d\n", reply)
			printBoard(g)
			if done := announce(g); done {
				break
			}
		}

		fmt.Println("again? (y/n)")
		if !in.Scan() || strings.TrimSpace(in.Text()) != "y" {
			return nil
		}
	}
}

// readMove prompts until the human enters a legal move or quits.
func readMove(in *bufio.Scanner, g game.State) (move game.Single, quit bool) {
	for {
		fmt.Print("your move> ")
		if !in.Scan() {
			return -1, true
		}
		text := strings.TrimSpace(in.Text())
		if text == "q" || text == "quit" {
			return -1, true
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Println(aurora.Red("that's not a cell number"))
			continue
		}
		// reject before converting: game.Single is an int32, and an
		// out-of-range int would silently wrap to a valid cell
		if n < 0 || n >= g.ActionSpace() {
			fmt.Println(aurora.Red("that cell is occupied or out of range"))
			continue
		}
		move = game.Single(n)
		if !g.Check(game.PlayerMove{Player: g.ToMove(), Single: move}) {
			fmt.Println(aurora.Red("that cell is occupied or out of range"))
			continue
		}
		return move, false
	}
}

// announce prints the outcome if the game has ended.
func announce(g game.State) bool {
	ended, winner := g.Ended()
	if !ended {
		return false
	}
	switch winner {
	case mnk.Cross:
		fmt.Println(aurora.Green("you win"))
	case mnk.Nought:
		fmt.Println(aurora.Blue("the agent wins"))
	default:
		fmt.Println(aurora.White("draw"))
	}
	return true
}

// printBoard renders the board with cell numbers on the empty cells, so the
// human knows what to type.
func printBoard(g game.State) {
	_, n := g.BoardSize()
	width := len(strconv.Itoa(g.ActionSpace() - 1))
	for i, c := range g.Board() {
		if i%n == 0 {
			fmt.Print("  ")
		}
		switch c {
		case game.Black:
			fmt.Printf("%s ", aurora.Green(fmt.Sprintf("%*s", width, "X")))
		case game.White:
			fmt.Printf("%s ", aurora.Blue(fmt.Sprintf("%*s", width, "O")))
		default:
			fmt.Printf("%s ", aurora.Gray(8, fmt.Sprintf("%*d", width, i)))
		}
		if (i+1)%n == 0 {
			fmt.Println()
		}
	}
}

package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var CurrentTime time.Time

func GetFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "debug,d",
			Usage: "Debug mode",
		},
		cli.BoolTFlag{
			Name:  "verbosity,verb",
			Usage: "Verbosity mode",
		},
		cli.StringFlag{
			Name:  "input-file, in",
			Usage: "Input cnf file for solving(required)",
			Value: "None",
		},
		cli.IntFlag{
			Name:  "cpu-time-limit",
			Usage: "Limit on CPU time allowed in seconds",
			Value: -1,
		},
		cli.BoolTFlag{
			Name:  "reduce",
			Usage: "Periodically reduce the learnt clause database",
		},
		cli.BoolTFlag{
			Name:  "reduce-glue",
			Usage: "Use glue as the primary key when reducing",
		},
		cli.IntFlag{
			Name:  "reduce-init",
			Usage: "Initial conflict interval between reductions",
			Value: 300,
		},
		cli.IntFlag{
			Name:  "reduce-inc",
			Usage: "Initial increment of the reduction interval",
			Value: 10,
		},
	}
}

func ValidateFlags(c *cli.Context) error {
	if c.String("input-file") == "None" {
		return fmt.Errorf("input-file is required")
	}
	return nil
}

func newLogger(c *cli.Context) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	switch {
	case c.GlobalBool("debug") || c.Bool("debug"):
		logger.SetLevel(logrus.DebugLevel)
	case c.BoolT("verbosity"):
		logger.SetLevel(logrus.InfoLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func printProblemStatistics(s *Solver) {
	fmt.Printf("c ============================[ Problem Statistics ]=============================\n")
	fmt.Printf("c |                                                                             |\n")
	fmt.Printf("c |  Number of variables:  %12d                                         |\n", s.NumVars())
	fmt.Printf("c |  Number of clauses:    %12d                                         |\n", s.Statistics.Irredundant)
	fmt.Printf("c ================================================================================\n")
}

func printStatistics(s *Solver) {
	elapsedTimeSeconds := time.Since(CurrentTime).Seconds()
	fmt.Printf("c ================================================================================\n")
	fmt.Printf("c restarts: %12d\n", s.Statistics.Restarts)
	fmt.Printf("c conflicts: %12d (%.02f / sec)\n", s.Statistics.Conflicts, float64(s.Statistics.Conflicts)/elapsedTimeSeconds)
	fmt.Printf("c decisions: %12d (%.02f / sec)\n", s.Statistics.Decisions, float64(s.Statistics.Decisions)/elapsedTimeSeconds)
	fmt.Printf("c propagations: %12d (%.02f / sec)\n", s.Statistics.Propagations, float64(s.Statistics.Propagations)/elapsedTimeSeconds)
	fmt.Printf("c reductions: %12d\n", s.Statistics.Reductions)
	fmt.Printf("c reduced clauses: %12d\n", s.Statistics.Reduced)
	fmt.Printf("c collections: %12d\n", s.Statistics.Collections)
	fmt.Printf("c collected bytes: %12d\n", s.Statistics.Collected)
	fmt.Printf("c cpu time: %12f\n", elapsedTimeSeconds)
}

func setTimeOut(s *Solver, limitTimeSeconds int) {
	if limitTimeSeconds <= 0 {
		return
	}
	go func() {
		<-time.After(time.Duration(limitTimeSeconds) * time.Second)
		fmt.Println("c TIMEOUT")
		if s.Opts.Verbosity {
			printStatistics(s)
		}
		fmt.Println("\ns INDETERMINATE")
		os.Exit(0)
	}()
}

func setInterrupt(s *Solver) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("c INTERRUPT")
		if s.Opts.Verbosity {
			printStatistics(s)
		}
		fmt.Println("\ns INDETERMINATE")
		os.Exit(0)
	}()
}

func printModel(s *Solver) {
	fmt.Print("v ")
	for i := 0; i < s.NumVars(); i++ {
		if s.Model[i] == LitBoolTrue {
			fmt.Printf("%d ", i+1)
		} else {
			fmt.Printf("%d ", -(i + 1))
		}
	}
	fmt.Print("0\n")
}

func init() {
	CurrentTime = time.Now()
}

func main() {
	app := cli.NewApp()
	app.Name = "nekosat"
	app.Usage = "A CDCL SAT Solver written in Go"
	app.Flags = GetFlags()

	app.Action = func(c *cli.Context) error {
		if err := ValidateFlags(c); err != nil {
			fmt.Println(err)
			cli.ShowAppHelpAndExit(c, 2)
		}

		inputFile := c.String("input-file")
		fp, err := os.Open(inputFile)
		if err != nil {
			return err
		}
		defer fp.Close()

		in := bufio.NewScanner(fp)
		solver := NewSolver(OptionsFromContext(c), newLogger(c))
		setTimeOut(solver, c.Int("cpu-time-limit"))
		setInterrupt(solver)
		if err := parseDimacs(in, solver); err != nil {
			return err
		}
		if solver.Opts.Verbosity {
			printProblemStatistics(solver)
		}
		status := solver.Solve()

		if solver.Opts.Verbosity {
			printStatistics(solver)
		}
		if status == LitBoolTrue {
			fmt.Println("\ns SATISFIABLE")
			printModel(solver)
		} else if status == LitBoolFalse {
			fmt.Println("\ns UNSATISFIABLE")
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

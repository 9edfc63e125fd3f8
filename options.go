package main

import "github.com/urfave/cli"

// Options are the recognized run-time options of the solver.
type Options struct {
	Reduce     bool  // enable learnt clause reduction
	ReduceGlue bool  // use glue as the primary reduction sort key
	ReduceInit int64 // initial conflict interval between reductions
	ReduceInc  int64 // initial additive increment of the interval
	Verbosity  bool
}

func DefaultOptions() *Options {
	return &Options{
		Reduce:     true,
		ReduceGlue: true,
		ReduceInit: 300,
		ReduceInc:  10,
		Verbosity:  true,
	}
}

func OptionsFromContext(c *cli.Context) *Options {
	return &Options{
		Reduce:     c.BoolT("reduce"),
		ReduceGlue: c.BoolT("reduce-glue"),
		ReduceInit: int64(c.Int("reduce-init")),
		ReduceInc:  int64(c.Int("reduce-inc")),
		Verbosity:  c.BoolT("verbosity"),
	}
}

// Limit holds the trigger and threshold values the reduction policy reads
// and writes across cycles.
type Limit struct {
	Reduce                int64 // conflict count that triggers the next reduction
	Analyzed              int64 // analyzed stamp threshold for reduction candidates
	KeptSize              int   // maximum size among clauses kept by the last reduction
	KeptGlue              int   // maximum glue among clauses kept by the last reduction
	ConflictsAtLastReduce int64
	FixedAtLastCollect    int64
}

// Inc holds limit increments. Reduce is the additive conflict interval;
// RedInc shrinks toward 1 so reductions become more frequent over time.
type Inc struct {
	Reduce int64
	RedInc int64
}

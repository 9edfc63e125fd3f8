package main

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSolver() *Solver {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewSolver(DefaultOptions(), logger)
}

// mkLits converts DIMACS style literals, growing the variable tables as
// needed.
func mkLits(s *Solver, ints ...int) []Lit {
	lits := make([]Lit, 0, len(ints))
	for _, n := range ints {
		if n == 0 {
			panic("literal 0")
		}
		neg := n < 0
		if neg {
			n = -n
		}
		v := Var(n - 1)
		for v >= Var(s.NumVars()) {
			s.NewVar()
		}
		lits = append(lits, NewLit(v, neg))
	}
	return lits
}

func addProblem(s *Solver, clauses [][]int) {
	for _, ints := range clauses {
		s.addClause(mkLits(s, ints...))
	}
}

// modelSatisfies checks every clause of the problem against the model.
func modelSatisfies(s *Solver, clauses [][]int) bool {
	for _, ints := range clauses {
		sat := false
		for _, n := range ints {
			v := n
			neg := v < 0
			if neg {
				v = -v
			}
			value := s.Model[v-1]
			if (!neg && value == LitBoolTrue) || (neg && value == LitBoolFalse) {
				sat = true
				break
			}
		}
		if !sat {
			return false
		}
	}
	return true
}

func TestSolveSat(t *testing.T) {
	clauses := [][]int{{1, 2}, {-1, 2}, {1, -2}}
	s := newTestSolver()
	addProblem(s, clauses)
	require.Equal(t, LitBoolTrue, s.Solve())
	assert.True(t, modelSatisfies(s, clauses))
}

func TestSolveUnsat(t *testing.T) {
	s := newTestSolver()
	addProblem(s, [][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}})
	assert.Equal(t, LitBoolFalse, s.Solve())
}

func TestSolveImplicationChain(t *testing.T) {
	clauses := [][]int{{1}}
	for v := 1; v < 10; v++ {
		clauses = append(clauses, []int{-v, v + 1})
	}
	s := newTestSolver()
	addProblem(s, clauses)
	require.Equal(t, LitBoolTrue, s.Solve())
	for i := 0; i < 10; i++ {
		assert.Equal(t, LitBoolTrue, s.Model[i])
	}
}

// pigeonhole returns the clauses placing pigeons+1 pigeons into pigeons
// holes, which is unsatisfiable.
func pigeonhole(holes int) [][]int {
	pigeons := holes + 1
	v := func(p, h int) int { return p*holes + h + 1 }
	var clauses [][]int
	for p := 0; p < pigeons; p++ {
		clause := make([]int, 0, holes)
		for h := 0; h < holes; h++ {
			clause = append(clause, v(p, h))
		}
		clauses = append(clauses, clause)
	}
	for h := 0; h < holes; h++ {
		for p := 0; p < pigeons; p++ {
			for q := p + 1; q < pigeons; q++ {
				clauses = append(clauses, []int{-v(p, h), -v(q, h)})
			}
		}
	}
	return clauses
}

func TestSolvePigeonhole(t *testing.T) {
	s := newTestSolver()
	addProblem(s, pigeonhole(3))
	assert.Equal(t, LitBoolFalse, s.Solve())
	assert.Greater(t, s.Statistics.Conflicts, int64(0))
}

func TestSolveWithFrequentReductions(t *testing.T) {
	opts := DefaultOptions()
	opts.ReduceInit = 1
	opts.ReduceInc = 1
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := NewSolver(opts, logger)
	addProblem(s, pigeonhole(4))
	assert.Equal(t, LitBoolFalse, s.Solve())
	assert.Greater(t, s.Statistics.Reductions, int64(0))
	assert.Greater(t, s.Statistics.Collections, int64(0))
	for _, ref := range s.Clauses {
		c := s.ClaAllocator.Clause(ref)
		assert.False(t, c.Moved())
	}
}

func TestAddClauseEmptyMakesUnsat(t *testing.T) {
	s := newTestSolver()
	mkLits(s, 1) // allocate the variable
	s.addClause(mkLits(s, 1))
	s.addClause(mkLits(s, -1))
	assert.False(t, s.OK)
	assert.Equal(t, LitBoolFalse, s.Solve())
}

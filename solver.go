package main

import (
	"fmt"
	"math"

	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
)

type Solver struct {
	ClaAllocator *ClauseAllocator  // owns the bytes of all clauses
	Clauses      []ClauseReference // directory of live clauses, original and learnt
	Watches      *Watches          // watches[lit] holds the clauses that must be inspected when lit becomes true
	Assigns      []LitBool         // current assignment per variable
	Qhead        int               // head of the propagation queue (index into the trail)
	Trail        []Lit             // assignment stack in assignment order
	TrailLim     []int             // separator indices for decision levels in the trail
	NextVar      Var               // next variable to be created
	Decision     []bool            // whether a variable is eligible as a decision
	VarData      []VarData         // reason and level per variable
	VarOrder     *VarOrder         // activity ordered decision heap
	OK           bool              // false once the formula is known unsatisfiable

	RestartFirst         int     // initial restart limit
	RestartIncreaseRatio float64 // luby base for the restart sequence
	VarIncreaseRatio     float64 // amount to bump the next variable with
	VarDecayRatio        float64

	Seen  []int // generation marks for conflict analysis, indexed by variable
	seenG int

	Model []LitBool // satisfying assignment, filled on a SAT answer

	Opts       *Options
	Lim        Limit
	Inc        Inc
	Statistics *Statistics
	Logger     *logrus.Logger

	refUpdaters []func(ForwardFunc)
}

func NewSolver(opts *Options, logger *logrus.Logger) *Solver {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = logrus.New()
	}
	s := &Solver{
		ClaAllocator:         NewClauseAllocator(),
		Watches:              NewWatches(),
		VarOrder:             NewVarOrder(),
		OK:                   true,
		RestartFirst:         100,
		RestartIncreaseRatio: 2,
		VarIncreaseRatio:     1.0,
		VarDecayRatio:        0.95,
		Opts:                 opts,
		Statistics:           NewStatistics(),
		Logger:               logger,
	}
	s.Lim.Reduce = opts.ReduceInit
	s.Inc.Reduce = opts.ReduceInit
	s.Inc.RedInc = opts.ReduceInc
	return s
}

func (s *Solver) NewVar() Var {
	v := s.NextVar
	s.NextVar++
	s.Assigns = append(s.Assigns, LitBoolUndef)
	s.VarData = append(s.VarData, NewVarData(ClaRefUndef, 0))
	s.Seen = append(s.Seen, 0)
	s.Decision = append(s.Decision, true)
	s.Watches.Init(v)
	s.SetDecisionVar(v, true)
	return v
}

func (s *Solver) ValueVar(x Var) LitBool {
	return s.Assigns[x]
}

func (s *Solver) ValueLit(p Lit) LitBool {
	switch s.Assigns[p.Var()] {
	case LitBoolUndef:
		return LitBoolUndef
	case LitBoolTrue:
		if !p.Sign() {
			return LitBoolTrue
		}
	case LitBoolFalse:
		if p.Sign() {
			return LitBoolTrue
		}
	}
	return LitBoolFalse
}

func (s *Solver) Reason(x Var) ClauseReference {
	return s.VarData[x].Reason
}

func (s *Solver) Level(x Var) int {
	return s.VarData[x].Level
}

func (s *Solver) NumVars() int {
	return int(s.NextVar)
}

func (s *Solver) NumAssigns() int {
	return len(s.Trail)
}

func (s *Solver) SetDecisionVar(x Var, eligible bool) {
	s.Decision[x] = eligible
	s.InsertVarOrder(x)
}

func (s *Solver) InsertVarOrder(x Var) {
	if !s.VarOrder.InHeap(x) && s.Decision[x] {
		s.VarOrder.PushBack(x)
	}
}

func (s *Solver) varDecayActivity() {
	s.VarIncreaseRatio *= 1 / s.VarDecayRatio
}

func (s *Solver) varBumpActivity(x Var) {
	s.VarOrder.activity[x] += s.VarIncreaseRatio
	if s.VarOrder.activity[x] > 1e100 {
		for i := 0; i < s.NumVars(); i++ {
			s.VarOrder.activity[i] *= 1e-100
		}
		s.VarIncreaseRatio *= 1e-100
	}
	if s.VarOrder.InHeap(x) {
		s.VarOrder.Decrease(x)
	}
}

func (s *Solver) UncheckedEnqueue(p Lit, from ClauseReference) {
	if s.ValueLit(p) != LitBoolUndef {
		panic(fmt.Errorf("enqueue of already assigned literal %s = %v", p, s.ValueLit(p)))
	}
	if !p.Sign() {
		s.Assigns[p.Var()] = LitBoolTrue
	} else {
		s.Assigns[p.Var()] = LitBoolFalse
	}
	s.VarData[p.Var()] = NewVarData(from, s.decisionLevel())
	if s.decisionLevel() == 0 {
		s.Statistics.Fixed++
	}
	s.Trail = append(s.Trail, p)
}

// newClause allocates, publishes and attaches a clause. A learnt clause is
// extended, i.e. carries the pos and analyzed tail fields, unless it is as
// small or as low-glue as the clauses the last reduction decided to keep
// anyway. Before the first reduction both limits are zero and every learnt
// clause is extended.
func (s *Solver) newClause(lits []Lit, redundant bool, glue int) ClauseReference {
	extended := redundant && len(lits) > s.Lim.KeptSize && glue > s.Lim.KeptGlue
	cr := s.ClaAllocator.NewAllocate(lits, redundant, extended)
	c := s.ClaAllocator.Clause(cr)
	c.SetGlue(glue)
	if c.HaveAnalyzed() {
		s.Statistics.Analyzed++
		c.SetAnalyzed(s.Statistics.Analyzed)
	}
	if redundant {
		s.Statistics.Redundant++
		s.Statistics.Learned++
	} else {
		s.Statistics.Irredundant++
	}
	s.Clauses = append(s.Clauses, cr)
	s.attachClause(cr)
	return cr
}

func (s *Solver) attachClause(cr ClauseReference) {
	c := s.ClaAllocator.Clause(cr)
	if c.Size() < 2 {
		panic(fmt.Errorf("attach of clause with size %d", c.Size()))
	}
	first := c.At(0)
	second := c.At(1)
	s.Watches.Append(first.Flip(), Watcher{ClaRef: cr, Blocker: second})
	s.Watches.Append(second.Flip(), Watcher{ClaRef: cr, Blocker: first})
}

// addClause adds an original clause at the root level. Satisfied clauses
// and duplicate literals are dropped, falsified literals are skipped, and
// units are enqueued directly. Returns false on an immediate root conflict.
func (s *Solver) addClause(lits []Lit) bool {
	if s.decisionLevel() != 0 {
		panic(fmt.Errorf("clause added at decision level %d", s.decisionLevel()))
	}
	if !s.OK {
		return false
	}
	prev := LitUndef
	j := 0
	for i := 0; i < len(lits); i++ {
		if s.ValueLit(lits[i]) == LitBoolTrue || lits[i] == prev.Flip() {
			return true
		}
		if s.ValueLit(lits[i]) != LitBoolFalse && lits[i] != prev {
			lits[j] = lits[i]
			prev = lits[i]
			j++
		}
	}
	lits = lits[:j]

	switch len(lits) {
	case 0:
		s.OK = false
	case 1:
		s.UncheckedEnqueue(lits[0], ClaRefUndef)
		if confl := s.Propagate(); confl != ClaRefUndef {
			s.OK = false
		}
	default:
		s.newClause(lits, false, 1)
	}
	return s.OK
}

func (s *Solver) Propagate() ClauseReference {
	confl := ClaRefUndef

	for s.Qhead < len(s.Trail) {
		p := s.Trail[s.Qhead]
		s.Qhead++
		ws := s.Watches.Lookup(p)
		lastIdx, copiedIdx := 0, 0

	WatcherLoop:
		for lastIdx < len(*ws) {
			w := (*ws)[lastIdx]
			s.Statistics.Propagations++

			// Try to avoid inspecting the clause.
			if s.ValueLit(w.Blocker) == LitBoolTrue {
				(*ws)[copiedIdx] = w
				copiedIdx++
				lastIdx++
				continue
			}

			cr := w.ClaRef
			c := s.ClaAllocator.Clause(cr)

			// Make sure the false literal is literal 1.
			falseLit := p.Flip()
			if c.At(0) == falseLit {
				c.SetLit(0, c.At(1))
				c.SetLit(1, falseLit)
			}
			if c.At(1) != falseLit {
				panic(fmt.Errorf("watched literal 1 of clause %d is not %s", cr, falseLit))
			}
			lastIdx++

			// If watch 0 is true the clause is already satisfied.
			first := c.At(0)
			nw := Watcher{ClaRef: cr, Blocker: first}
			if first != w.Blocker && s.ValueLit(first) == LitBoolTrue {
				(*ws)[copiedIdx] = nw
				copiedIdx++
				continue
			}
			if b := c.Blocked(); b != LitUndef && b != falseLit && s.ValueLit(b) == LitBoolTrue {
				(*ws)[copiedIdx] = nw
				copiedIdx++
				continue
			}

			// Look for a new literal to watch, resuming at the position of
			// the last replacement when the clause caches one.
			start := 2
			if c.HavePos() {
				if pos := c.Pos(); pos < c.Size() {
					start = pos
				}
			}
			for i := start; i < c.Size(); i++ {
				if s.ValueLit(c.At(i)) != LitBoolFalse {
					c.SetLit(1, c.At(i))
					c.SetLit(i, falseLit)
					if c.HavePos() {
						c.SetPos(i)
					}
					s.Watches.Append(c.At(1).Flip(), nw)
					continue WatcherLoop
				}
			}
			for i := 2; i < start; i++ {
				if s.ValueLit(c.At(i)) != LitBoolFalse {
					c.SetLit(1, c.At(i))
					c.SetLit(i, falseLit)
					if c.HavePos() {
						c.SetPos(i)
					}
					s.Watches.Append(c.At(1).Flip(), nw)
					continue WatcherLoop
				}
			}

			// No replacement: the clause is unit under the assignment.
			(*ws)[copiedIdx] = nw
			copiedIdx++
			if s.ValueLit(first) == LitBoolFalse {
				confl = cr
				s.Qhead = len(s.Trail)
				for lastIdx < len(*ws) {
					(*ws)[copiedIdx] = (*ws)[lastIdx]
					copiedIdx++
					lastIdx++
				}
			} else {
				s.UncheckedEnqueue(first, cr)
			}
		}
		*ws = (*ws)[:copiedIdx]
	}

	return confl
}

func (s *Solver) seen(x Var) bool {
	return s.Seen[x] == s.seenG
}

func (s *Solver) markSeen(x Var) {
	s.Seen[x] = s.seenG
}

// Analyze derives the first-UIP learnt clause from a conflict and returns
// it together with the backtrack level. Every resolved redundant clause
// that tracks utility gets a fresh analyzed stamp.
func (s *Solver) Analyze(confl ClauseReference) (learntClause []Lit, backTrackLevel int) {
	s.seenG++

	p := LitUndef
	pathConflict := 0
	idx := len(s.Trail) - 1

	learntClause = append(learntClause, p) // room for the asserting literal
	for {
		if confl == ClaRefUndef {
			pp.Println(s.VarData[p.Var()], p.Var(), s.decisionLevel(), s.ValueLit(p), pathConflict)
			panic("conflict analysis ran out of antecedents")
		}
		conflCla := s.ClaAllocator.Clause(confl)
		if conflCla.Redundant() && conflCla.HaveAnalyzed() {
			s.Statistics.Analyzed++
			conflCla.SetAnalyzed(s.Statistics.Analyzed)
		}
		startIndex := 1
		if p == LitUndef {
			startIndex = 0
		}
		for i := startIndex; i < conflCla.Size(); i++ {
			q := conflCla.At(i)
			if !s.seen(q.Var()) && s.Level(q.Var()) > 0 {
				s.varBumpActivity(q.Var())
				s.markSeen(q.Var())
				if s.Level(q.Var()) > s.decisionLevel() {
					panic("seen variable above the current decision level")
				}
				if s.Level(q.Var()) == s.decisionLevel() {
					pathConflict++
				} else {
					learntClause = append(learntClause, q)
				}
			}
		}
		// Select the next clause to look at.
		for {
			p = s.Trail[idx]
			idx--
			if s.seen(p.Var()) {
				break
			}
		}
		confl = s.Reason(p.Var())
		s.Seen[p.Var()] = 0
		pathConflict--
		if pathConflict <= 0 {
			break
		}
	}
	learntClause[0] = p.Flip()

	// Minimize: drop literals whose reason is subsumed by the rest.
	j := 1
	for i := 1; i < len(learntClause); i++ {
		x := learntClause[i].Var()
		if s.Reason(x) == ClaRefUndef {
			learntClause[j] = learntClause[i]
			j++
			continue
		}
		c := s.ClaAllocator.Clause(s.Reason(x))
		for k := 1; k < c.Size(); k++ {
			v := c.At(k)
			if !s.seen(v.Var()) && s.Level(v.Var()) > 0 {
				learntClause[j] = learntClause[i]
				j++
				break
			}
		}
	}
	learntClause = learntClause[:j]

	if len(learntClause) == 1 {
		backTrackLevel = 0
	} else {
		// Find the first literal assigned at the next-highest level and
		// swap it into the second watch position.
		maxIdx := 1
		for i := 2; i < len(learntClause); i++ {
			if s.Level(learntClause[i].Var()) > s.Level(learntClause[maxIdx].Var()) {
				maxIdx = i
			}
		}
		backTrackLevel = s.Level(learntClause[maxIdx].Var())
		learntClause[maxIdx], learntClause[1] = learntClause[1], learntClause[maxIdx]
	}

	return learntClause, backTrackLevel
}

func (s *Solver) CancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	for c := len(s.Trail) - 1; c >= s.TrailLim[level]; c-- {
		x := s.Trail[c].Var()
		s.Assigns[x] = LitBoolUndef
		//TODO Phase Saving
		s.InsertVarOrder(x)
	}
	s.Qhead = s.TrailLim[level]
	s.Trail = s.Trail[:s.Qhead]
	s.TrailLim = s.TrailLim[:level]
}

func (s *Solver) pickBranchLit() Lit {
	nextVar := VarUndef
	for nextVar == VarUndef || s.ValueVar(nextVar) != LitBoolUndef || !s.Decision[nextVar] {
		if s.VarOrder.Empty() {
			return LitUndef
		}
		nextVar = s.VarOrder.RemoveMin()
	}
	return NewLit(nextVar, true)
}

func (s *Solver) newDecisionLevel() {
	s.TrailLim = append(s.TrailLim, len(s.Trail))
}

func (s *Solver) decisionLevel() int {
	return len(s.TrailLim)
}

func (s *Solver) luby(y float64, x int) float64 {
	var seq, size int
	for size, seq = 1, 0; size < x+1; seq, size = seq+1, 2*size+1 {
	}
	for size-1 != x {
		size = (size - 1) >> 1
		seq--
		x = x % size
	}
	return math.Pow(y, float64(seq))
}

func (s *Solver) Search(maxConflictCount int) LitBool {
	if !s.OK {
		panic("search on an unsatisfiable solver")
	}

	conflictCount := 0
	for {
		confl := s.Propagate()
		if confl != ClaRefUndef {
			s.Statistics.Conflicts++
			conflictCount++

			if s.decisionLevel() == 0 {
				return LitBoolFalse
			}

			learntClause, backTrackLevel := s.Analyze(confl)
			s.CancelUntil(backTrackLevel)

			if len(learntClause) == 1 {
				s.Statistics.Units++
				s.UncheckedEnqueue(learntClause[0], ClaRefUndef)
			} else {
				glue := s.ComputeLBD(learntClause)
				cr := s.newClause(learntClause, true, glue)
				s.UncheckedEnqueue(learntClause[0], cr)
			}

			s.varDecayActivity()
			continue
		}

		// No conflict.
		if maxConflictCount >= 0 && conflictCount > maxConflictCount {
			s.CancelUntil(0)
			return LitBoolUndef
		}

		if s.reducing() {
			s.reduce()
		}

		s.Statistics.Decisions++
		nextLit := s.pickBranchLit()
		if nextLit == LitUndef {
			// Model found.
			return LitBoolTrue
		}
		s.newDecisionLevel()
		s.UncheckedEnqueue(nextLit, ClaRefUndef)
	}
}

func (s *Solver) Solve() LitBool {
	if !s.OK {
		return LitBoolFalse
	}
	status := LitBoolUndef
	currentRestartCount := 0
	for status == LitBoolUndef {
		restartBase := s.luby(s.RestartIncreaseRatio, currentRestartCount)
		maxConflictCount := int(restartBase) * s.RestartFirst
		status = s.Search(maxConflictCount)
		if status == LitBoolUndef {
			s.Statistics.Restarts++
			currentRestartCount++
		}
	}
	if status == LitBoolTrue {
		s.Model = s.Model[:0]
		for i := 0; i < s.NumVars(); i++ {
			s.Model = append(s.Model, s.ValueVar(Var(i)))
		}
	} else {
		s.OK = false
	}
	s.CancelUntil(0)
	return status
}

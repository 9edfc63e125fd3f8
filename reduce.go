package main

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// reducing reports whether enough conflicts have accumulated to run the
// next reduction cycle.
func (s *Solver) reducing() bool {
	if !s.Opts.Reduce {
		return false
	}
	return s.Statistics.Conflicts >= s.Lim.Reduce
}

// Reason clauses of assignments on non-zero decision levels can not be
// collected because reduce does not backtrack. protectReasons marks them
// before and unprotectReasons unmarks them after garbage collection.
// Collections triggered from the root level see an empty protection set and
// run through the same code path.

func (s *Solver) protectReasons() {
	for _, p := range s.Trail {
		vd := s.VarData[p.Var()]
		if vd.Level == 0 || vd.Reason == ClaRefUndef {
			continue
		}
		s.ClaAllocator.Clause(vd.Reason).SetReason(true)
	}
}

func (s *Solver) unprotectReasons() {
	for _, p := range s.Trail {
		vd := s.VarData[p.Var()]
		if vd.Level == 0 || vd.Reason == ClaRefUndef {
			continue
		}
		c := s.ClaAllocator.Clause(vd.Reason)
		if !c.Reason() {
			panic(fmt.Errorf("reason flag of clause %d was not set", vd.Reason))
		}
		c.SetReason(false)
	}
}

// markGarbage schedules a clause for collection and keeps the clause counts
// accurate eagerly, so reports between now and the next collection do not
// drift.
func (s *Solver) markGarbage(ref ClauseReference) {
	c := s.ClaAllocator.Clause(ref)
	if c.Garbage() {
		panic(fmt.Errorf("clause %d marked garbage twice", ref))
	}
	if c.Redundant() {
		s.Statistics.Redundant--
	} else {
		s.Statistics.Irredundant--
	}
	c.SetGarbage(true)
}

// markUselessRedundantClausesAsGarbage implements the reduction policy. It
// collects the learnt clauses whose analyzed stamp has not moved past the
// threshold of the previous cycle, orders them so the least useful come
// first and marks that half as garbage. Clauses with a smaller glue are
// considered more useful; the analyzed stamp breaks ties, preferring to
// keep more recently resolved clauses. The kept half is re-stamped so that
// a cycle without intervening conflicts finds nothing to reduce.
func (s *Solver) markUselessRedundantClausesAsGarbage() {
	stack := make([]ClauseReference, 0, s.Statistics.Redundant)
	for _, ref := range s.Clauses {
		c := s.ClaAllocator.Clause(ref)
		if !c.Redundant() { // keep irredundant
			continue
		}
		if c.HasBlocked() { // keep blocked clauses
			continue
		}
		if c.Reason() { // need to keep reasons
			continue
		}
		if c.Garbage() { // already marked
			continue
		}
		if !c.HaveAnalyzed() {
			continue
		}
		if c.Analyzed() > s.Lim.Analyzed {
			continue
		}
		stack = append(stack, ref)
	}
	if len(stack) == 0 {
		return
	}

	lessUseful := func(i, j int) bool {
		x := s.ClaAllocator.Clause(stack[i])
		y := s.ClaAllocator.Clause(stack[j])
		if s.Opts.ReduceGlue && x.Glue() != y.Glue() {
			return x.Glue() > y.Glue()
		}
		return x.Analyzed() < y.Analyzed()
	}
	sort.SliceStable(stack, lessUseful)

	target := len(stack) / 2
	for _, ref := range stack[:target] {
		s.markGarbage(ref)
		s.Statistics.Reduced++
	}
	keptSize, keptGlue := 0, 0
	for _, ref := range stack[target:] {
		c := s.ClaAllocator.Clause(ref)
		if c.Size() > keptSize {
			keptSize = c.Size()
		}
		if c.Glue() > keptGlue {
			keptGlue = c.Glue()
		}
		s.Statistics.Analyzed++
		c.SetAnalyzed(s.Statistics.Analyzed)
	}
	s.Lim.KeptSize = keptSize
	s.Lim.KeptGlue = keptGlue

	s.Logger.WithFields(logrus.Fields{
		"reductions": s.Statistics.Reductions,
		"marked":     target,
		"keptsize":   keptSize,
		"keptglue":   keptGlue,
	}).Debug("marked useless redundant clauses")
}

// reduce runs one reduction cycle: protect reasons, mark root satisfied and
// useless learnt clauses as garbage, collect, unprotect, and move the
// trigger. The additive increment shrinks toward 1 so reductions become
// more frequent as the search ages.
func (s *Solver) reduce() {
	s.Statistics.Reductions++
	analyzedAtStart := s.Statistics.Analyzed
	s.Logger.WithFields(logrus.Fields{
		"reductions": s.Statistics.Reductions,
		"conflicts":  s.Statistics.Conflicts,
		"learnts":    s.Statistics.Redundant,
	}).Info("reduce")

	s.protectReasons()
	s.markSatisfiedClausesAsGarbage()
	s.markUselessRedundantClausesAsGarbage()
	s.garbageCollection()
	s.unprotectReasons()

	s.Inc.Reduce += s.Inc.RedInc
	if s.Inc.RedInc > 1 {
		s.Inc.RedInc--
	}
	s.Lim.Reduce = s.Statistics.Conflicts + s.Inc.Reduce
	s.Lim.Analyzed = analyzedAtStart
	s.Lim.ConflictsAtLastReduce = s.Statistics.Conflicts

	s.Logger.WithFields(logrus.Fields{
		"reductions": s.Statistics.Reductions,
		"reduced":    s.Statistics.Reduced,
		"next":       s.Lim.Reduce,
	}).Info("reduce done")
}

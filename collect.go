package main

import (
	"github.com/sirupsen/logrus"
)

// ForwardFunc maps a pre-collection clause reference to its post-collection
// reference. The second result is false if the clause was collected.
type ForwardFunc func(ClauseReference) (ClauseReference, bool)

// RegisterReferenceUpdater registers a callback that is invoked during the
// rewiring pass of every garbage collection, so collaborators holding
// clause references outside the watch lists and the trail can rewrite them
// through forwarding.
func (s *Solver) RegisterReferenceUpdater(update func(ForwardFunc)) {
	s.refUpdaters = append(s.refUpdaters, update)
}

// fixed returns 1 if p is satisfied at the root level, -1 if it is
// falsified at the root level and 0 otherwise.
func (s *Solver) fixed(p Lit) int {
	if s.VarData[p.Var()].Level != 0 {
		return 0
	}
	switch s.ValueLit(p) {
	case LitBoolTrue:
		return 1
	case LitBoolFalse:
		return -1
	}
	return 0
}

// clauseContainsFixedLiteral returns 1 if the clause is root level
// satisfied, -1 if it contains a root level falsified literal and 0
// otherwise.
func (s *Solver) clauseContainsFixedLiteral(c Clause) int {
	res := 0
	for i := 0; res <= 0 && i < c.Size(); i++ {
		switch s.fixed(c.At(i)) {
		case 1:
			res = 1
		case -1:
			if res == 0 {
				res = -1
			}
		}
	}
	return res
}

// removeFalsifiedLiterals flushes root level falsified literals from the
// tail of the clause. The two watched literals stay in place, so the watch
// lists remain valid. The record keeps its allocation; only the size field
// is adjusted.
func (s *Solver) removeFalsifiedLiterals(c Clause) {
	j := 2
	for i := 2; i < c.Size(); i++ {
		p := c.At(i)
		if s.fixed(p) < 0 {
			continue
		}
		c.SetLit(j, p)
		j++
	}
	flushed := c.Size() - j
	if flushed == 0 {
		return
	}
	c.Shrink(j)
	c.UpdateAfterShrinking()
	s.Statistics.Collected += int64(flushed * wordBytes)
}

// markSatisfiedClausesAsGarbage marks every clause satisfied at the root
// level as garbage and shrinks clauses containing root level falsified
// literals. Only needed if there are new fixed variables since last time.
func (s *Solver) markSatisfiedClausesAsGarbage() {
	if s.Lim.FixedAtLastCollect >= s.Statistics.Fixed {
		return
	}
	s.Lim.FixedAtLastCollect = s.Statistics.Fixed
	for _, ref := range s.Clauses {
		c := s.ClaAllocator.Clause(ref)
		if c.Garbage() {
			continue
		}
		switch s.clauseContainsFixedLiteral(c) {
		case 1:
			s.markGarbage(ref)
		case -1:
			s.removeFalsifiedLiterals(c)
		}
	}
}

// flushWatches drops watchers of collected clauses and rewrites the
// remaining ones through forwarding, refreshing the blocker literal of
// moved clauses from their new records.
func (s *Solver) flushWatches() {
	ca := s.ClaAllocator
	for li := range s.Watches.occs {
		ws := s.Watches.occs[li]
		j := 0
		for _, w := range ws {
			c := ca.Clause(w.ClaRef)
			if c.Collect() {
				continue
			}
			if newRef, moved := ca.Forward(w.ClaRef); moved {
				w.ClaRef = newRef
				d := ca.ToClause(newRef)
				watched := Lit(li).Flip()
				if d.At(0) == watched {
					w.Blocker = d.At(1)
				} else {
					w.Blocker = d.At(0)
				}
			}
			ws[j] = w
			j++
		}
		s.Watches.occs[li] = ws[:j]
	}
}

// copyNonGarbageClauses is the moving garbage collector. The first pass
// copies every surviving clause in directory order into a fresh arena and
// leaves a forwarding reference in the old record. The second pass rewrites
// the watch lists, the trail reasons, any registered secondary references
// and the directory itself, then swaps the arenas.
func (s *Solver) copyNonGarbageClauses() {
	ca := s.ClaAllocator

	movedWords, movedClauses := 0, 0
	collectedBytes, collectedClauses := 0, 0
	for _, ref := range s.Clauses {
		c := ca.Clause(ref)
		if c.Collect() {
			collectedBytes += c.Bytes()
			collectedClauses++
		} else {
			movedWords += c.wordSize()
			movedClauses++
		}
	}

	ca.BeginMove(movedWords)
	for _, ref := range s.Clauses {
		c := ca.Clause(ref)
		if !c.Collect() {
			ca.Move(ref)
		}
	}

	// Reason references on the trail. A collected reason can only belong to
	// a root level assignment, which never resolves its antecedent again.
	for _, p := range s.Trail {
		vd := &s.VarData[p.Var()]
		if vd.Reason == ClaRefUndef {
			continue
		}
		if ca.Clause(vd.Reason).Collect() {
			vd.Reason = ClaRefUndef
			continue
		}
		if newRef, moved := ca.Forward(vd.Reason); moved {
			vd.Reason = newRef
		}
	}

	s.flushWatches()

	forward := func(ref ClauseReference) (ClauseReference, bool) {
		if ca.Clause(ref).Collect() {
			return ClaRefUndef, false
		}
		newRef, _ := ca.Forward(ref)
		return newRef, true
	}
	for _, update := range s.refUpdaters {
		update(forward)
	}

	j := 0
	for _, ref := range s.Clauses {
		c := ca.Clause(ref)
		if c.Collect() {
			continue
		}
		newRef, _ := ca.Forward(ref)
		s.Clauses[j] = newRef
		j++
	}
	s.Clauses = s.Clauses[:j]

	ca.FinishMove()
	s.Statistics.Collected += int64(collectedBytes)

	s.Logger.WithFields(logrus.Fields{
		"collections": s.Statistics.Collections,
		"moved":       movedClauses,
		"collected":   collectedClauses,
		"bytes":       collectedBytes,
	}).Debug("collected garbage clauses")
}

// garbageCollection compacts the clause arena. It is the only operation
// that invalidates clause references; collaborators treat every reduce as a
// compaction barrier and re-read their references through forwarding.
func (s *Solver) garbageCollection() {
	if !s.OK {
		return
	}
	s.Statistics.Collections++
	s.markSatisfiedClausesAsGarbage()
	s.copyNonGarbageClauses()
}

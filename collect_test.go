package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clauseSnapshot struct {
	size, glue int
	redundant  bool
	garbage    bool
	reason     bool
	lits       []Lit
}

func snapshot(c Clause) clauseSnapshot {
	s := clauseSnapshot{
		size:      c.Size(),
		glue:      c.Glue(),
		redundant: c.Redundant(),
		garbage:   c.Garbage(),
		reason:    c.Reason(),
	}
	for i := 0; i < c.Size(); i++ {
		s.lits = append(s.lits, c.At(i))
	}
	return s
}

// Compaction preserves every surviving clause bit for bit, modulo the moved
// flag, and drops the collected ones.
func TestCompactionPreservesSurvivors(t *testing.T) {
	s := newTestSolver()
	c1 := s.newClause(mkLits(s, 1, 2, 3), false, 1)
	c2 := s.newClause(mkLits(s, -1, -2, -3, 4), true, 3)
	c3 := s.newClause(mkLits(s, 2, -4), true, 2)

	want := []clauseSnapshot{
		snapshot(s.ClaAllocator.Clause(c1)),
		snapshot(s.ClaAllocator.Clause(c3)),
	}
	s.markGarbage(c2)

	s.garbageCollection()

	require.Len(t, s.Clauses, 2)
	liveWords := 0
	for i, ref := range s.Clauses {
		c := s.ClaAllocator.Clause(ref)
		assert.Equal(t, want[i], snapshot(c))
		assert.False(t, c.Moved())
		liveWords += c.wordSize()
	}
	// The from-space was dropped; the arena holds exactly the survivors.
	assert.Equal(t, liveWords, s.ClaAllocator.Size())
	assert.Equal(t, int64(1), s.Statistics.Collections)
	assert.Greater(t, s.Statistics.Collected, int64(0))
}

// A collaborator holding a reference across a collection re-reads it
// through the registered updater and sees the identical clause.
func TestRegisteredReferenceUpdater(t *testing.T) {
	s := newTestSolver()
	c1 := s.newClause(mkLits(s, 1, 2, 3), true, 2)
	c2 := s.newClause(mkLits(s, -1, 4), true, 1)

	want := snapshot(s.ClaAllocator.Clause(c2))
	held := c2
	alive := true
	s.RegisterReferenceUpdater(func(forward ForwardFunc) {
		held, alive = forward(held)
	})

	s.markGarbage(c1)
	s.garbageCollection()

	require.True(t, alive)
	got := s.ClaAllocator.Clause(held)
	assert.Equal(t, want, snapshot(got))
	assert.False(t, got.Moved())

	// A collected clause reports as dead on the next collection.
	s.markGarbage(held)
	s.garbageCollection()
	assert.False(t, alive)
	assert.Equal(t, ClaRefUndef, held)
}

// After a collection every watcher references a live clause and its blocker
// is the other watched literal.
func TestWatchersRewiredThroughForwarding(t *testing.T) {
	s := newTestSolver()
	s.newClause(mkLits(s, 1, 2, 3), false, 1)
	victim := s.newClause(mkLits(s, -1, -2), true, 1)
	s.newClause(mkLits(s, 3, -4, 5), true, 2)
	s.newClause(mkLits(s, -5, 4), true, 1)

	s.markGarbage(victim)
	s.garbageCollection()

	live := map[ClauseReference]bool{}
	for _, ref := range s.Clauses {
		live[ref] = true
	}
	seen := 0
	for li := range s.Watches.occs {
		watched := Lit(li).Flip()
		for _, w := range *s.Watches.Lookup(Lit(li)) {
			require.True(t, live[w.ClaRef], "watcher references collected or stale clause %d", w.ClaRef)
			c := s.ClaAllocator.Clause(w.ClaRef)
			if c.At(0) == watched {
				assert.Equal(t, c.At(1), w.Blocker)
			} else {
				require.Equal(t, c.At(1), watched)
				assert.Equal(t, c.At(0), w.Blocker)
			}
			seen++
		}
	}
	// Two watchers per live clause.
	assert.Equal(t, 2*len(s.Clauses), seen)
}

func TestMarkSatisfiedClausesAsGarbage(t *testing.T) {
	s := newTestSolver()
	satisfied := s.newClause(mkLits(s, 1, 2), false, 1)
	shrinkable := s.newClause(mkLits(s, 2, 3, -1, 4), false, 1)
	untouched := s.newClause(mkLits(s, 3, 4), false, 1)

	// Fix x1 at the root level.
	s.UncheckedEnqueue(mkLits(s, 1)[0], ClaRefUndef)
	require.Equal(t, int64(1), s.Statistics.Fixed)

	s.markSatisfiedClausesAsGarbage()

	assert.True(t, s.ClaAllocator.Clause(satisfied).Garbage())

	c := s.ClaAllocator.Clause(shrinkable)
	assert.False(t, c.Garbage())
	require.Equal(t, 3, c.Size())
	assert.Equal(t, mkLits(s, 2, 3, 4), []Lit{c.At(0), c.At(1), c.At(2)})

	assert.False(t, s.ClaAllocator.Clause(untouched).Garbage())

	// Nothing new was fixed, so the next call is gated off even after the
	// remaining clauses change.
	s.markSatisfiedClausesAsGarbage()
	assert.Equal(t, s.Statistics.Fixed, s.Lim.FixedAtLastCollect)
}

// After a full reduce cycle no live clause is garbage or moved and every
// trail reason resolves into the directory.
func TestReduceRestoresSteadyState(t *testing.T) {
	s := newTestSolver()
	for i := 0; i < 6; i++ {
		addLearnt(s, 3+i%3, 2+i%2, int64(i+1))
	}
	reasonClause := s.newClause(mkLits(s, 1, 2, 3), false, 1)
	s.newDecisionLevel()
	s.UncheckedEnqueue(mkLits(s, -2)[0], ClaRefUndef)
	s.UncheckedEnqueue(mkLits(s, 1)[0], reasonClause)

	s.Lim.Analyzed = 1000
	s.Statistics.Conflicts = 100
	s.reduce()

	live := map[ClauseReference]bool{}
	for _, ref := range s.Clauses {
		c := s.ClaAllocator.Clause(ref)
		assert.False(t, c.Garbage())
		assert.False(t, c.Moved())
		assert.False(t, c.Reason())
		live[ref] = true
	}
	for _, p := range s.Trail {
		if r := s.Reason(p.Var()); r != ClaRefUndef {
			assert.True(t, live[r])
		}
	}
}

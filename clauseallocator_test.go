package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveInstallsForwarding(t *testing.T) {
	ca := NewClauseAllocator()
	lits := []Lit{NewLit(0, false), NewLit(1, true), NewLit(2, false)}
	cr := ca.NewAllocate(lits, true, true)
	ca.Clause(cr).SetGlue(3)
	ca.Clause(cr).SetAnalyzed(42)

	ca.BeginMove(ca.Clause(cr).wordSize())
	newRef := ca.Move(cr)

	old := ca.Clause(cr)
	assert.True(t, old.Moved())
	forwarded, moved := ca.Forward(cr)
	assert.True(t, moved)
	assert.Equal(t, newRef, forwarded)
	// The literal area of the old record is no longer readable.
	assert.Panics(t, func() { old.At(0) })

	d := ca.ToClause(newRef)
	assert.False(t, d.Moved())
	assert.Equal(t, 3, d.Glue())
	assert.Equal(t, int64(42), d.Analyzed())
	for i, p := range lits {
		assert.Equal(t, p, d.At(i))
	}

	ca.FinishMove()
	d = ca.Clause(newRef)
	require.Equal(t, len(lits), d.Size())
	for i, p := range lits {
		assert.Equal(t, p, d.At(i))
	}
}

func TestMoveTwicePanics(t *testing.T) {
	ca := NewClauseAllocator()
	cr := ca.NewAllocate([]Lit{NewLit(0, false), NewLit(1, false)}, false, false)
	ca.BeginMove(16)
	ca.Move(cr)
	assert.Panics(t, func() { ca.Move(cr) })
	ca.FinishMove()
}

func TestForwardOfUnmovedClause(t *testing.T) {
	ca := NewClauseAllocator()
	cr := ca.NewAllocate([]Lit{NewLit(0, false), NewLit(1, false)}, false, false)
	ref, moved := ca.Forward(cr)
	assert.False(t, moved)
	assert.Equal(t, cr, ref)
}

func TestFreeReclaimsLastAllocation(t *testing.T) {
	ca := NewClauseAllocator()
	first := ca.NewAllocate([]Lit{NewLit(0, false), NewLit(1, false)}, false, false)
	before := ca.Size()
	second := ca.NewAllocate([]Lit{NewLit(2, false), NewLit(3, false)}, true, true)

	ca.Free(second)
	assert.Equal(t, before, ca.Size())

	// Freeing anything but the top allocation only marks it garbage.
	third := ca.NewAllocate([]Lit{NewLit(2, false), NewLit(3, false)}, false, false)
	ca.Free(first)
	assert.True(t, ca.Clause(first).Garbage())
	assert.False(t, ca.Clause(third).Garbage())
	assert.Equal(t, before+ca.Clause(third).wordSize(), ca.Size())
}

func BenchmarkNewAllocate(b *testing.B) {
	ca := NewClauseAllocator()
	rng := rand.New(rand.NewSource(114514))
	lits := make([]Lit, 100)
	for i := 0; i < b.N; i++ {
		if ca.Size() > 1<<26 {
			ca = NewClauseAllocator()
		}
		for j := range lits {
			lits[j] = NewLit(Var(j), rng.Int()%2 == 0)
		}
		redundant := rng.Int()%2 == 0
		ca.NewAllocate(lits, redundant, redundant)
	}
}

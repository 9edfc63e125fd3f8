package main

import (
	"fmt"
	"math"
)

// ClauseReference is the word offset of a clause record in the arena. It is
// the only form of clause identity that crosses operation boundaries;
// dereference it with ClauseAllocator.Clause. References are invalidated by
// garbage collection and must be re-read through the forwarding contract.
type ClauseReference uint32

const ClaRefUndef ClauseReference = math.MaxUint32

// ClauseAllocator owns the bytes of every clause. Records are bump
// allocated into a single []uint32 arena; during a collection survivors are
// copied in directory order into a fresh to-space which then replaces the
// arena wholesale.
type ClauseAllocator struct {
	words []uint32 // live arena
	to    []uint32 // to-space, non-nil only between BeginMove and FinishMove
}

func NewClauseAllocator() *ClauseAllocator {
	return &ClauseAllocator{}
}

// NewAllocate allocates a record for the given literals and returns its
// reference. An extended clause additionally carries the pos and analyzed
// tail fields. The caller publishes the reference to the directory and the
// watch lists itself, after filling glue and blocked.
func (ca *ClauseAllocator) NewAllocate(lits []Lit, redundant, extended bool) ClauseReference {
	if len(lits) < 2 {
		panic(fmt.Errorf("allocation of clause with %d literals", len(lits)))
	}
	n := fixedHeaderWords + len(lits)
	if extended {
		n += 3 // pos plus the two analyzed words
	}
	ref := ClauseReference(len(ca.words))
	ca.words = append(ca.words, make([]uint32, n)...)

	header := uint32(1) // glue defaults to its lower bound
	if redundant {
		header |= redundantMask
	}
	if extended {
		header |= havePosMask | haveAnalyzedMask
	}
	buf := ca.words[ref:]
	buf[headerWord] = header
	litUndef := int32(LitUndef)
	buf[blockedWord] = uint32(litUndef)
	buf[sizeWord] = uint32(len(lits))
	c := Clause{buf: buf}
	if extended {
		c.SetPos(2)
	}
	for i, p := range lits {
		c.SetLit(i, p)
	}
	return ref
}

// Clause resolves a reference into a view of the record. The view stays
// valid until the next allocation or collection.
func (ca *ClauseAllocator) Clause(ref ClauseReference) Clause {
	return Clause{buf: ca.words[ref:]}
}

// Start is the byte offset of the record's allocation start within the
// arena; Start plus Bytes is the end of its allocation region.
func (ca *ClauseAllocator) Start(ref ClauseReference) int {
	return int(ref) * wordBytes
}

// Size is the number of allocated arena words.
func (ca *ClauseAllocator) Size() int {
	return len(ca.words)
}

// Free releases an unpublished allocation. Only the most recent allocation
// can be reclaimed in place; anything older is marked garbage and reclaimed
// by the next collection.
func (ca *ClauseAllocator) Free(ref ClauseReference) {
	c := ca.Clause(ref)
	if int(ref)+c.wordSize() == len(ca.words) {
		ca.words = ca.words[:ref]
		return
	}
	c.SetGarbage(true)
}

// BeginMove prepares a to-space for the given number of survivor words.
func (ca *ClauseAllocator) BeginMove(words int) {
	if ca.to != nil {
		panic(fmt.Errorf("nested clause move"))
	}
	ca.to = make([]uint32, 0, words)
}

// Move copies a record into the to-space and installs the forwarding
// reference in the old record. The copied record is bit-identical to the
// original apart from the moved flag.
func (ca *ClauseAllocator) Move(ref ClauseReference) ClauseReference {
	c := ca.Clause(ref)
	if c.Moved() {
		panic(fmt.Errorf("clause %d moved twice", ref))
	}
	newRef := ClauseReference(len(ca.to))
	ca.to = append(ca.to, ca.words[ref:int(ref)+c.wordSize()]...)
	c.setForward(newRef)
	return newRef
}

// Forward maps a reference through the forwarding pointer of a moved
// record. It reports false for records that have not been moved.
func (ca *ClauseAllocator) Forward(ref ClauseReference) (ClauseReference, bool) {
	c := ca.Clause(ref)
	if !c.Moved() {
		return ref, false
	}
	return c.forward(), true
}

// ToClause resolves a reference into the to-space. Only valid between
// BeginMove and FinishMove.
func (ca *ClauseAllocator) ToClause(ref ClauseReference) Clause {
	return Clause{buf: ca.to[ref:]}
}

// FinishMove discards the from-space and makes the to-space the live arena.
// Every reference not re-read through Forward is invalid from here on.
func (ca *ClauseAllocator) FinishMove() {
	ca.words = ca.to
	ca.to = nil
}

package main

// Watcher pairs a watched clause with a blocker literal. If the blocker is
// already true the clause is satisfied and propagation skips inspecting it.
type Watcher struct {
	ClaRef  ClauseReference
	Blocker Lit
}

// Watches holds one watcher list per literal, indexed by the literal
// encoding. Lists hold clause references, not records; the garbage
// collector rewrites them through forwarding after every move.
type Watches struct {
	occs [][]Watcher
}

func NewWatches() *Watches {
	return &Watches{}
}

// Init grows the table so that both literals of v can be looked up.
func (w *Watches) Init(v Var) {
	size := 2*int(v) + 1
	for len(w.occs) <= size {
		w.occs = append(w.occs, nil)
	}
}

// Lookup returns the watcher list of l for in-place mutation.
func (w *Watches) Lookup(l Lit) *[]Watcher {
	return &w.occs[l]
}

func (w *Watches) Append(l Lit, watcher Watcher) {
	w.occs[l] = append(w.occs[l], watcher)
}

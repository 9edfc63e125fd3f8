package main

// ComputeLBD returns the literal block distance of lits: the number of
// distinct decision levels among their assignments. Lower is better; a
// learnt clause with glue g needs g-1 decisions before it can propagate
// again.
func (s *Solver) ComputeLBD(lits []Lit) int {
	levels := make(map[int]struct{}, len(lits))
	for _, p := range lits {
		levels[s.Level(p.Var())] = struct{}{}
	}
	return len(levels)
}

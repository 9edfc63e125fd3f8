package main

// VarData stores the reason and decision level of an assigned variable.
// The reason is the antecedent clause that forced the assignment, or
// ClaRefUndef for decisions and unassigned variables.
type VarData struct {
	Reason ClauseReference
	Level  int
}

func NewVarData(claRef ClauseReference, level int) VarData {
	return VarData{
		Reason: claRef,
		Level:  level,
	}
}

package main

type Statistics struct {
	Restarts     int64
	Decisions    int64
	Propagations int64
	Conflicts    int64
	Reductions   int64 // reduce calls
	Reduced      int64 // clauses marked useless by reduce
	Collections  int64 // garbage collections
	Collected    int64 // collected bytes
	Analyzed     int64 // analyzed clause time stamp counter
	Fixed        int64 // top level assigned variables
	Learned      int64 // learnt clauses
	Units        int64 // learnt unit clauses
	Redundant    int64 // current learnt clauses
	Irredundant  int64 // current original clauses
}

func NewStatistics() *Statistics {
	return &Statistics{}
}

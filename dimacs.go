package main

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func readClause(line string, s *Solver) ([]Lit, error) {
	values := strings.Fields(line)
	if len(values) == 0 || values[len(values)-1] != "0" {
		return nil, errors.Errorf("clause line does not end with 0: %q", line)
	}
	lits := make([]Lit, 0, len(values)-1)
	for _, value := range values[:len(values)-1] {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid literal %q", value)
		}
		if parsed == 0 {
			return nil, errors.Errorf("literal 0 inside clause: %q", line)
		}
		neg := parsed < 0
		if neg {
			parsed = -parsed
		}
		v := Var(parsed - 1)
		for v >= Var(s.NumVars()) {
			s.NewVar()
		}
		lits = append(lits, NewLit(v, neg))
	}
	return lits, nil
}

func parseDimacs(in *bufio.Scanner, s *Solver) error {
	declaredClauses := -1
	cnt := 0
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p cnf") {
			values := strings.Fields(line)
			if len(values) != 4 {
				return errors.Errorf("invalid problem line: %q", line)
			}
			var err error
			if _, err = strconv.Atoi(values[2]); err != nil {
				return errors.Wrap(err, "invalid variable count")
			}
			if declaredClauses, err = strconv.Atoi(values[3]); err != nil {
				return errors.Wrap(err, "invalid clause count")
			}
			continue
		}
		cnt++
		lits, err := readClause(line, s)
		if err != nil {
			return err
		}
		s.addClause(lits)
	}
	if err := in.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	if declaredClauses >= 0 && cnt != declaredClauses {
		s.Logger.Warnf("header declared %d clauses but %d were read", declaredClauses, cnt)
	}
	return nil
}

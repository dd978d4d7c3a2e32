package grammar

import (
	"fmt"
	"sort"
	"sync"
)

// ActionKind discriminates the parse actions stored in a [Table].
type ActionKind int8

const (
	ShiftAction ActionKind = iota
	ReduceAction
	AcceptAction
)

// Action is a parse decision for one terminal in one state. Target is the
// destination state for shifts and the rule index for reductions.
type Action struct {
	Sym    int32
	Target int32
	Kind   ActionKind
}

// Goto is a non-terminal transition taken after a reduction.
type Goto struct {
	Sym   int32
	State int32
}

// State holds the actions and gotos of one LALR state, each sorted by
// symbol for binary search.
type State struct {
	Actions []Action
	Gotos   []Goto
}

// Table is a complete LALR(1) parse table. All exported fields are plain
// slices so that gob encoding of equal tables is byte-identical, which
// lets concurrent cache writers race safely.
type Table struct {
	Symbols     []string
	States      []State
	RuleLHS     []int32
	RuleLen     []int32
	Start       string
	Sum         uint64
	SRConflicts int
	RRConflicts int

	once  sync.Once
	symID map[string]int32
}

// index builds the symbol lookup map on first use. Tables decoded from a
// cache arrive without it.
func (t *Table) index() {
	t.once.Do(func() {
		t.symID = make(map[string]int32, len(t.Symbols))
		for i, s := range t.Symbols {
			t.symID[s] = int32(i)
		}
	})
}

func (t *Table) action(state int32, sym int32) (Action, bool) {
	acts := t.States[state].Actions

	i := sort.Search(len(acts), func(i int) bool { return acts[i].Sym >= sym })
	if i < len(acts) && acts[i].Sym == sym {
		return acts[i], true
	}

	return Action{}, false
}

func (t *Table) gotoState(state int32, sym int32) (int32, bool) {
	gotos := t.States[state].Gotos

	i := sort.Search(len(gotos), func(i int) bool { return gotos[i].Sym >= sym })
	if i < len(gotos) && gotos[i].Sym == sym {
		return gotos[i].State, true
	}

	return 0, false
}

// NextFunc supplies tokens to the driver: the terminal symbol name, the
// token literal, and its source line.
type NextFunc func() (sym string, lit string, line int, err error)

// Parse runs the shift-reduce driver over the token stream, evaluating the
// semantic actions of rules as reductions occur, and returns the value of
// the start symbol. The rules must be the same slice the table was built
// from; the table stores only rule shapes, never actions.
//
// The [End] sentinel is supplied internally once the stream's ENDMARKER
// terminal has been shifted; callers never produce it. ENDMARKER itself is
// shifted like any other token.
func (t *Table) Parse(rules []Rule, next NextFunc, filename string) (any, error) {
	t.index()

	if len(rules)+1 != len(t.RuleLHS) {
		return nil, fmt.Errorf("table built from %d rules, got %d",
			len(t.RuleLHS)-1, len(rules))
	}

	endID := t.symID[End]

	states := []int32{0}

	var (
		vals  []any
		lines []int
	)

	// One token of lookahead. After the stream is exhausted the sentinel
	// repeats forever.
	var (
		curSym       int32
		curLit       string
		curLine      int
		exhausted    bool
		endDelivered bool
	)

	fetch := func() error {
		if exhausted {
			curSym = endID
			curLit = ""

			return nil
		}

		sym, lit, line, err := next()
		if err != nil {
			return err
		}

		id, ok := t.symID[sym]
		if !ok {
			return &UnexpectedToken{Symbol: sym, Literal: lit, Line: line}
		}

		curSym, curLit, curLine = id, lit, line

		if sym == "ENDMARKER" {
			if endDelivered {
				exhausted = true
				curSym = endID
				curLit = ""

				return nil
			}

			endDelivered = true
		}

		return nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}

	for {
		act, ok := t.action(states[len(states)-1], curSym)
		if !ok {
			return nil, &UnexpectedToken{
				Symbol:  t.Symbols[curSym],
				Literal: curLit,
				Line:    curLine,
			}
		}

		switch act.Kind {
		case ShiftAction:
			states = append(states, act.Target)
			vals = append(vals, curLit)
			lines = append(lines, curLine)

			if err := fetch(); err != nil {
				return nil, err
			}

		case ReduceAction:
			n := int(t.RuleLen[act.Target])
			rule := rules[act.Target-1]

			p := &Prod{
				vals:     vals[len(vals)-n:],
				lines:    lines[len(lines)-n:],
				filename: filename,
			}

			var (
				out  any
				line int
			)

			if n > 0 {
				line = p.lines[0]
			} else {
				line = curLine
			}

			if rule.Action != nil {
				var err error

				out, err = rule.Action(p)
				if err != nil {
					return nil, err
				}
			} else if n > 0 {
				out = p.vals[0]
			}

			states = states[:len(states)-n]
			vals = vals[:len(vals)-n]
			lines = lines[:len(lines)-n]

			gt, ok := t.gotoState(states[len(states)-1], t.RuleLHS[act.Target])
			if !ok {
				return nil, fmt.Errorf("no goto for %s in state %d",
					t.Symbols[t.RuleLHS[act.Target]], states[len(states)-1])
			}

			states = append(states, gt)
			vals = append(vals, out)
			lines = append(lines, line)

		case AcceptAction:
			return vals[len(vals)-1], nil
		}
	}
}

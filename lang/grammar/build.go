package grammar

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sort"
)

// builder holds the interned form of an augmented grammar during table
// construction. Rule 0 is always the synthetic start production and the
// lookahead of its initial item is [End].
type builder struct {
	syms     []string
	id       map[string]int32
	lhs      []int32
	rhs      [][]int32
	byLHS    map[int32][]int32
	first    []map[int32]struct{}
	nullable []bool
	nonterm  []bool
	endID    int32
}

// item is a dotted rule with one lookahead terminal, packed for use as a
// map key. Rule and dot counts are small; lookaheads fit in 16 bits.
type item uint64

func mkItem(rule, dot, la int32) item {
	return item(uint64(rule)<<32 | uint64(dot)<<16 | uint64(la))
}

func (it item) rule() int32 { return int32(it >> 32) }
func (it item) dot() int32  { return int32(it>>16) & 0xffff }
func (it item) la() int32   { return int32(it) & 0xffff }

// core strips the lookahead, identifying the LR(0) item.
func (it item) core() uint64 { return uint64(it) &^ 0xffff }

func (b *builder) intern(s string) int32 {
	if id, ok := b.id[s]; ok {
		return id
	}

	id := int32(len(b.syms))
	b.id[s] = id
	b.syms = append(b.syms, s)

	return id
}

func newBuilder(rules []Rule, start string) (*builder, error) {
	b := &builder{id: make(map[string]int32)}

	// Rule 0 augments the grammar with a synthetic start production.
	b.lhs = append(b.lhs, b.intern("S'"))
	b.rhs = append(b.rhs, []int32{b.intern(start)})

	for _, r := range rules {
		b.lhs = append(b.lhs, b.intern(r.LHS))

		rhs := make([]int32, len(r.RHS))
		for i, s := range r.RHS {
			rhs[i] = b.intern(s)
		}

		b.rhs = append(b.rhs, rhs)
	}

	b.endID = b.intern(End)

	b.nonterm = make([]bool, len(b.syms))
	for _, lhs := range b.lhs {
		b.nonterm[lhs] = true
	}

	if !b.nonterm[b.id[start]] {
		return nil, fmt.Errorf("start symbol %q has no productions", start)
	}

	b.byLHS = make(map[int32][]int32)
	for i, lhs := range b.lhs {
		b.byLHS[lhs] = append(b.byLHS[lhs], int32(i))
	}

	b.computeFirst()

	return b, nil
}

// computeFirst derives FIRST sets and nullability for every symbol by
// fixed-point iteration. Terminals (and End) have themselves as FIRST.
func (b *builder) computeFirst() {
	b.first = make([]map[int32]struct{}, len(b.syms))
	b.nullable = make([]bool, len(b.syms))

	for id := range b.syms {
		b.first[id] = make(map[int32]struct{})
		if !b.nonterm[id] {
			b.first[id][int32(id)] = struct{}{}
		}
	}

	for changed := true; changed; {
		changed = false

		for ri := range b.lhs {
			f := b.first[b.lhs[ri]]
			before := len(f)
			allNull := true

			for _, sym := range b.rhs[ri] {
				for t := range b.first[sym] {
					f[t] = struct{}{}
				}

				if !b.nullable[sym] {
					allNull = false

					break
				}
			}

			if allNull && !b.nullable[b.lhs[ri]] {
				b.nullable[b.lhs[ri]] = true
				changed = true
			}

			if len(f) != before {
				changed = true
			}
		}
	}
}

// firstSeq accumulates FIRST of a symbol sequence followed by lookahead la.
func (b *builder) firstSeq(seq []int32, la int32, out map[int32]struct{}) {
	for _, sym := range seq {
		for t := range b.first[sym] {
			out[t] = struct{}{}
		}

		if !b.nullable[sym] {
			return
		}
	}

	out[la] = struct{}{}
}

// closure expands an item set in place over all nonterminal transitions.
func (b *builder) closure(set map[item]struct{}) {
	work := make([]item, 0, len(set))
	for it := range set {
		work = append(work, it)
	}

	las := make(map[int32]struct{})

	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		rhs := b.rhs[it.rule()]
		dot := int(it.dot())

		if dot >= len(rhs) {
			continue
		}

		sym := rhs[dot]
		if !b.nonterm[sym] {
			continue
		}

		clear(las)
		b.firstSeq(rhs[dot+1:], it.la(), las)

		for _, rj := range b.byLHS[sym] {
			for la := range las {
				next := mkItem(rj, 0, la)
				if _, ok := set[next]; !ok {
					set[next] = struct{}{}
					work = append(work, next)
				}
			}
		}
	}
}

// advance computes the goto set of items over sym, or nil when empty.
func (b *builder) advance(set map[item]struct{}, sym int32) map[item]struct{} {
	var moved map[item]struct{}

	for it := range set {
		rhs := b.rhs[it.rule()]
		dot := int(it.dot())

		if dot < len(rhs) && rhs[dot] == sym {
			if moved == nil {
				moved = make(map[item]struct{})
			}

			moved[mkItem(it.rule(), it.dot()+1, it.la())] = struct{}{}
		}
	}

	if moved == nil {
		return nil
	}

	b.closure(moved)

	return moved
}

// setKey produces a canonical string key for an item set.
func setKey(set map[item]struct{}) string {
	items := make([]uint64, 0, len(set))
	for it := range set {
		items = append(items, uint64(it))
	}

	slices.Sort(items)

	buf := make([]byte, 8*len(items))
	for i, v := range items {
		binary.LittleEndian.PutUint64(buf[8*i:], v)
	}

	return string(buf)
}

// coreKey produces a canonical string key for the LR(0) core of a set.
func coreKey(set map[item]struct{}) string {
	seen := make(map[uint64]struct{}, len(set))
	for it := range set {
		seen[it.core()] = struct{}{}
	}

	cores := make([]uint64, 0, len(seen))
	for c := range seen {
		cores = append(cores, c)
	}

	slices.Sort(cores)

	buf := make([]byte, 8*len(cores))
	for i, v := range cores {
		binary.LittleEndian.PutUint64(buf[8*i:], v)
	}

	return string(buf)
}

type transition struct {
	from int32
	sym  int32
}

// Build constructs the LALR(1) parse table for rules with the given start
// symbol. Shift/reduce conflicts resolve in favor of the shift, and
// reduce/reduce conflicts in favor of the earlier rule; both are tallied
// on the returned table.
func Build(rules []Rule, start string) (*Table, error) {
	b, err := newBuilder(rules, start)
	if err != nil {
		return nil, err
	}

	// Canonical LR(1) states.
	initial := map[item]struct{}{mkItem(0, 0, b.endID): {}}
	b.closure(initial)

	states := []map[item]struct{}{initial}
	index := map[string]int32{setKey(initial): 0}
	trans := make(map[transition]int32)

	for si := 0; si < len(states); si++ {
		// Collect transition symbols in deterministic order.
		var syms []int32

		seen := make(map[int32]struct{})

		for it := range states[si] {
			rhs := b.rhs[it.rule()]
			if dot := int(it.dot()); dot < len(rhs) {
				if _, ok := seen[rhs[dot]]; !ok {
					seen[rhs[dot]] = struct{}{}
					syms = append(syms, rhs[dot])
				}
			}
		}

		slices.Sort(syms)

		for _, sym := range syms {
			next := b.advance(states[si], sym)
			if next == nil {
				continue
			}

			key := setKey(next)

			ti, ok := index[key]
			if !ok {
				ti = int32(len(states))
				index[key] = ti
				states = append(states, next)
			}

			trans[transition{int32(si), sym}] = ti
		}
	}

	// Merge states sharing an LR(0) core into LALR states.
	mergedOf := make([]int32, len(states))
	cores := make(map[string]int32)

	var merged []map[item]struct{}

	for i, st := range states {
		key := coreKey(st)

		mi, ok := cores[key]
		if !ok {
			mi = int32(len(merged))
			cores[key] = mi
			merged = append(merged, make(map[item]struct{}, len(st)))
		}

		for it := range st {
			merged[mi][it] = struct{}{}
		}

		mergedOf[i] = mi
	}

	mtrans := make(map[transition]int32, len(trans))
	for tr, ti := range trans {
		mtrans[transition{mergedOf[tr.from], tr.sym}] = mergedOf[ti]
	}

	t := &Table{
		Symbols: slices.Clone(b.syms),
		Start:   start,
		Sum:     Fingerprint(rules, start),
		RuleLHS: make([]int32, len(b.lhs)),
		RuleLen: make([]int32, len(b.rhs)),
		States:  make([]State, len(merged)),
	}
	copy(t.RuleLHS, b.lhs)

	for i, rhs := range b.rhs {
		t.RuleLen[i] = int32(len(rhs))
	}

	for mi, st := range merged {
		actions := make(map[int32]Action)

		for it := range st {
			rhs := b.rhs[it.rule()]
			if int(it.dot()) < len(rhs) {
				continue
			}

			if it.rule() == 0 {
				actions[b.endID] = Action{Sym: b.endID, Kind: AcceptAction}

				continue
			}

			prev, ok := actions[it.la()]
			if !ok {
				actions[it.la()] = Action{
					Sym:    it.la(),
					Kind:   ReduceAction,
					Target: it.rule(),
				}
			} else if prev.Kind == ReduceAction && prev.Target != it.rule() {
				t.RRConflicts++

				if it.rule() < prev.Target {
					prev.Target = it.rule()
					actions[it.la()] = prev
				}
			}
		}

		var gotos []Goto

		for sym := int32(0); sym < int32(len(b.syms)); sym++ {
			ti, ok := mtrans[transition{int32(mi), sym}]
			if !ok {
				continue
			}

			if b.nonterm[sym] {
				gotos = append(gotos, Goto{Sym: sym, State: ti})

				continue
			}

			if prev, ok := actions[sym]; ok && prev.Kind == ReduceAction {
				t.SRConflicts++
			}

			actions[sym] = Action{Sym: sym, Kind: ShiftAction, Target: ti}
		}

		acts := make([]Action, 0, len(actions))
		for _, a := range actions {
			acts = append(acts, a)
		}

		sort.Slice(acts, func(i, j int) bool { return acts[i].Sym < acts[j].Sym })

		t.States[mi] = State{Actions: acts, Gotos: gotos}
	}

	return t, nil
}

package pegvm

import (
	"errors"
)

// Grammar is a linked program: every rule body reachable from the
// start rule concatenated behind a bootstrap sequence, with all call
// sites patched to relative offsets. A Grammar is immutable once
// linked and may be shared by sequential parses.
type Grammar struct {
	prog Program
}

// Program exposes the grammar's linked program.
func (g *Grammar) Program() *Program {
	return &g.prog
}

type linkFrame struct {
	rule     *Rule
	leftMost bool
}

type workItem struct {
	stack []linkFrame
	prog  *Program
}

type callSite struct {
	prog *Program
	addr int
}

// Start links the rules reachable from start into a grammar. Rule
// bodies are copied: linking does not alias or mutate the rules. Call
// sites of left-recursive rules keep their precedence immediate (at
// least one); all other call sites are patched to precedence zero.
func Start(start *Rule) (g *Grammar, err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok && (errors.Is(e, ErrProgramLimit) || errors.Is(e, ErrResourceLimit) || errors.Is(e, ErrBadGrammar)) {
				g, err = nil, e
				return
			}
			panic(p)
		}
	}()

	g = &Grammar{}
	enc := NewEncoder(&g.prog)
	enc.CallRule(start, 0, false)
	enc.Encode(OpAccept, AltAcceptFinal, 0)
	enc.Finish()

	addresses := make(map[*Program]int)
	leftRecursive := make(map[*Program]bool)
	calls := []callSite{{&start.prog, 0}}
	work := []workItem{{[]linkFrame{{start, false}}, &start.prog}}

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]
		if _, seen := addresses[item.prog]; seen {
			continue
		}
		address := words(g.prog.Code)
		addresses[item.prog] = address
		g.prog.Concatenate(item.prog)
		g.prog.Code = appendPrefix(g.prog.Code, OpRet, 0, 0)
		top := item.stack[len(item.stack)-1].rule
		if top == nil {
			continue
		}
		for _, c := range top.callees {
			calls = append(calls, callSite{c.prog, address + c.off})
			recursive := false
			if c.rule != nil && c.leftMost {
				for i := len(item.stack) - 1; i >= 0; i-- {
					if item.stack[i].rule == c.rule {
						leftRecursive[c.prog] = true
						recursive = true
						break
					}
					if !item.stack[i].leftMost {
						break
					}
				}
			}
			if !recursive {
				stack := make([]linkFrame, len(item.stack)+1)
				copy(stack, item.stack)
				stack[len(item.stack)] = linkFrame{c.rule, c.leftMost}
				work = append(work, workItem{stack, c.prog})
			}
		}
	}

	for _, site := range calls {
		if Opcode(g.prog.Code[site.addr*wordSize]) == OpCall {
			val := getVal(g.prog.Code, site.addr)
			if leftRecursive[site.prog] {
				if val == 0 {
					val = 1
				}
			} else {
				val = 0
			}
			putVal(g.prog.Code, site.addr, val)
		}
		rel := int64(getOffset(g.prog.Code, site.addr+1)) + int64(addresses[site.prog]) - int64(site.addr+2)
		if rel < -1<<31 || rel > 1<<31-1 {
			return nil, ErrProgramLimit
		}
		putOffset(g.prog.Code, site.addr+1, int32(rel))
	}
	return g, nil
}

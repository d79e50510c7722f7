package pegvm

import (
	"unicode/utf8"
)

// Encoder appends instructions to a program under construction. The
// zero-length stack mirrors structural scope during lowering: the top
// entry is true while the expression encoded so far in the current
// scope may succeed without consuming input. Left-most call detection
// and Program.MatchesEps both derive from it.
//
// An Encoder with a nil program only counts instruction words; the
// lowerings use that mode to precompute forward branch offsets.
type Encoder struct {
	prog   *Program
	rule   *Rule
	length int
	zstack []bool
}

// NewEncoder returns an Encoder appending to p. Call Finish when done
// to fold the zero-length analysis into p.MatchesEps.
func NewEncoder(p *Program) *Encoder {
	p.MatchesEps = true
	return &Encoder{prog: p, zstack: []bool{true}}
}

func newLengthEncoder() *Encoder {
	return &Encoder{zstack: []bool{true}}
}

func newRuleEncoder(r *Rule) *Encoder {
	r.encoding = true
	return &Encoder{prog: &r.prog, rule: r, zstack: []bool{true}}
}

// Finish records the outcome of the zero-length analysis on the
// program being encoded.
func (e *Encoder) Finish() {
	if e.prog != nil {
		e.prog.MatchesEps = e.zstack[len(e.zstack)-1]
	}
	if e.rule != nil {
		e.rule.encoding = false
	}
}

// Len returns the number of instruction words appended so far.
func (e *Encoder) Len() int {
	if e.prog == nil {
		return e.length
	}
	return words(e.prog.Code)
}

func (e *Encoder) lengthOnly() bool { return e.prog == nil }

func (e *Encoder) emit(op Opcode, aux byte, val uint16) {
	if e.prog == nil {
		e.length += instrLen(aux, val)
		return
	}
	if words(e.prog.Code)+instrLen(aux, val) > maxProgramWords {
		panic(ErrProgramLimit)
	}
	e.prog.Code = appendPrefix(e.prog.Code, op, aux, val)
	// Offset and string payload words follow from the caller.
}

// Zclr forces the current scope to "consumed input" when c is true.
func (e *Encoder) Zclr(c bool) *Encoder {
	if c {
		e.zstack[len(e.zstack)-1] = false
	}
	return e
}

// Zpsh opens a scope seeded from the n-th entry counted from the top,
// where n = 1 is the top itself.
func (e *Encoder) Zpsh(n int) *Encoder {
	e.zstack = append(e.zstack, e.zstack[len(e.zstack)-n])
	return e
}

// Zpop discards the current scope.
func (e *Encoder) Zpop() *Encoder {
	e.zstack = e.zstack[:len(e.zstack)-1]
	return e
}

// Zand folds the top n scopes with AND into the scope beneath them.
func (e *Encoder) Zand(n int) *Encoder {
	z := true
	for i := 0; i < n; i++ {
		z = z && e.zstack[len(e.zstack)-1-i]
	}
	e.zstack = e.zstack[:len(e.zstack)-n]
	e.zstack[len(e.zstack)-1] = z
	return e
}

// MatchesEps reports the zero-length analysis of the current scope.
func (e *Encoder) MatchesEps() bool { return e.zstack[len(e.zstack)-1] }

// Encode appends a prefix-only instruction.
func (e *Encoder) Encode(op Opcode, alt Altcode, imm uint16) *Encoder {
	e.emit(op, byte(alt)&auxAlt, imm)
	return e
}

// EncodeOff appends an instruction with a relative offset operand, in
// word units from the word following the offset.
func (e *Encoder) EncodeOff(op Opcode, alt Altcode, off int, imm uint16) *Encoder {
	if off < -1<<31 || off > 1<<31-1 {
		panic(ErrProgramLimit)
	}
	e.emit(op, auxOff|byte(alt)&auxAlt, imm)
	if e.prog != nil {
		e.prog.Code = appendOffset(e.prog.Code, int32(off))
	}
	return e
}

// EncodeStr appends a string-bearing instruction. val is the count
// packed into the high half of the immediate: the rune count for
// match, the first-bound byte length for match_range, the constant
// width for class payloads. Both val and len(s) must be in [1, 256].
func (e *Encoder) EncodeStr(op Opcode, alt Altcode, val int, s []byte) *Encoder {
	if val < 1 || val > MaxStrLen || len(s) < 1 || len(s) > MaxStrLen {
		panic(ErrResourceLimit)
	}
	packed := uint16((val-1)<<8 | (len(s) - 1))
	e.emit(op, auxStr|byte(alt)&auxAlt, packed)
	if e.prog != nil {
		e.prog.Code = appendStr(e.prog.Code, s)
	}
	return e
}

func (e *Encoder) addPredicate(p Predicate) uint16 {
	if e.prog == nil {
		return 0
	}
	if len(e.prog.Predicates) >= maxTableLen {
		panic(ErrResourceLimit)
	}
	e.prog.Predicates = append(e.prog.Predicates, p)
	return uint16(len(e.prog.Predicates) - 1)
}

func (e *Encoder) addAction(a Action) uint16 {
	if e.prog == nil {
		return 0
	}
	if len(e.prog.Actions) >= maxTableLen {
		panic(ErrResourceLimit)
	}
	e.prog.Actions = append(e.prog.Actions, a)
	return uint16(len(e.prog.Actions) - 1)
}

func (e *Encoder) addCapture(a CaptureAction) uint16 {
	if e.prog == nil {
		return 0
	}
	if len(e.prog.Captures) >= maxTableLen {
		panic(ErrResourceLimit)
	}
	e.prog.Captures = append(e.prog.Captures, a)
	return uint16(len(e.prog.Captures) - 1)
}

// EncodePredicate appends a predicate instruction.
func (e *Encoder) EncodePredicate(p Predicate) *Encoder {
	return e.Encode(OpPredicate, AltNone, e.addPredicate(p))
}

// EncodeAction appends an action instruction.
func (e *Encoder) EncodeAction(a Action) *Encoder {
	return e.Encode(OpAction, AltNone, e.addAction(a))
}

// EncodeCaptureEnd appends an end_capture instruction.
func (e *Encoder) EncodeCaptureEnd(a CaptureAction) *Encoder {
	return e.Encode(OpEndCapture, AltNone, e.addCapture(a))
}

// AppendProgram concatenates a compiled program fragment.
func (e *Encoder) AppendProgram(p *Program) *Encoder {
	if e.prog == nil {
		e.length += words(p.Code)
		return e
	}
	e.prog.Concatenate(p)
	return e
}

// addCallee folds the callee's eps-matchability into the current scope
// and, when encoding a rule, records the call site for the linker.
func (e *Encoder) addCallee(r *Rule, p *Program, off int) {
	leftMost := e.zstack[len(e.zstack)-1]
	e.zstack[len(e.zstack)-1] = leftMost && p.MatchesEps
	if e.rule != nil {
		e.rule.callees = append(e.rule.callees, callee{rule: r, prog: p, off: off, leftMost: leftMost})
	}
}

// CallProgram appends a call to a bare program with the given
// left-recursion precedence. The offset operand is patched by Start.
func (e *Encoder) CallProgram(p *Program, prec int) *Encoder {
	e.addCallee(nil, p, e.Len())
	return e.EncodeOff(OpCall, AltNone, 0, uint16(prec))
}

// CallGrammar appends a call to an already linked grammar. The offset
// seed of 3 skips the grammar's own bootstrap sequence.
func (e *Encoder) CallGrammar(g *Grammar, prec int) *Encoder {
	e.addCallee(nil, &g.prog, e.Len())
	return e.EncodeOff(OpCall, AltNone, 3, uint16(prec))
}

// CallRule appends a call to a rule, inlining the body instead when the
// rule is small: no precedence, not currently being encoded, no callees
// of its own, non-empty, at most eight instruction words and one entry
// per side table.
func (e *Encoder) CallRule(r *Rule, prec int, allowInline bool) *Encoder {
	p := &r.prog
	if allowInline && prec <= 0 && !r.encoding && len(r.callees) == 0 && len(p.Code) > 0 &&
		words(p.Code) <= 8 && len(p.Predicates) <= 1 && len(p.Actions) <= 1 && len(p.Captures) <= 1 {
		return e.Zclr(!p.MatchesEps).AppendProgram(p)
	}
	e.addCallee(r, p, e.Len())
	return e.EncodeOff(OpCall, AltNone, 0, uint16(prec))
}

// Match appends instructions matching the literal byte sequence s.
// Sequences longer than MaxStrLen bytes are split into a chain of
// match instructions at UTF-8 rune boundaries. An empty s encodes a
// no-op match.
func (e *Encoder) Match(s string) *Encoder {
	for len(s) > MaxStrLen {
		k := MaxStrLen
		for k > 0 && !utf8.RuneStart(s[k]) {
			k--
		}
		if k == 0 {
			k = MaxStrLen
		}
		chunk := s[:k]
		e.EncodeStr(OpMatch, AltNone, utf8.RuneCountInString(chunk), []byte(chunk))
		s = s[k:]
	}
	if len(s) == 0 {
		return e.Encode(OpMatch, AltNone, 0)
	}
	e.EncodeStr(OpMatch, AltNone, utf8.RuneCountInString(s), []byte(s))
	return e.Zclr(true)
}

// MatchRange appends an instruction matching one rune whose UTF-8
// encoding falls lexicographically between first and last.
func (e *Encoder) MatchRange(first, last string) *Encoder {
	if first == last {
		return e.Match(first)
	}
	e.EncodeStr(OpMatchRange, AltNone, len(first), []byte(first+last))
	return e.Zclr(true)
}

// Evaluate lowers an expression into the encoder.
func (e *Encoder) Evaluate(x Expr) *Encoder {
	x(e)
	return e
}

// EvaluateLength measures the encoded word length of an expression
// without materialising it. Inside a measurement it returns zero: the
// nested offsets it would compute do not contribute to length, and
// short-circuiting keeps measurement linear in expression size.
func (e *Encoder) EvaluateLength(x Expr) int {
	if e.lengthOnly() {
		return 0
	}
	le := newLengthEncoder()
	x(le)
	return le.length
}

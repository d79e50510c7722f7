package pegvm

// callee records an outbound call site within a rule's program:
// which rule and program are called, the word offset of the call
// prefix, and whether the site is reachable from the rule's entry
// without consuming input.
type callee struct {
	rule     *Rule
	prog     *Program
	off      int
	leftMost bool
}

// Rule is a named point of recursion in a grammar: a compiled program
// plus the call sites the linker must resolve. Declare rules up front
// with NewRule so they can reference each other, then fill each one in
// with Define.
type Rule struct {
	prog     Program
	callees  []callee
	encoding bool
}

// NewRule returns an empty rule suitable for forward references. An
// undefined rule is presumed eps-matching until Define settles it.
func NewRule() *Rule {
	return &Rule{prog: Program{MatchesEps: true}}
}

// Define compiles the expression into the rule's body. It must be
// called exactly once per rule, before Start.
func (r *Rule) Define(x Expr) *Rule {
	e := newRuleEncoder(r)
	defer e.Finish()
	e.Evaluate(x)
	return r
}

// Define is shorthand for NewRule().Define(x).
func Define(x Expr) *Rule {
	return NewRule().Define(x)
}

// Ref returns an expression that calls the rule. A precedence above
// zero marks the call site for bounded left recursion: higher values
// bind tighter, and a left-recursive call is only taken while its
// precedence is at least that of the enclosing growth.
func (r *Rule) Ref(prec int) Expr {
	return func(d *Encoder) { d.CallRule(r, prec, true) }
}

// Program exposes the rule's compiled body.
func (r *Rule) Program() *Program {
	return &r.prog
}

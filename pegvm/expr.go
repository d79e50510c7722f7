package pegvm

import (
	"github.com/chronos-tachyon/go-pegvm/uniprop"
)

// Expr is the single capability shared by all combinators: given an
// encoder, emit instructions. Grammars are composed by nesting Exprs
// and handing the result to a Rule.
type Expr func(*Encoder)

// Lit matches the literal byte sequence s.
func Lit(s string) Expr {
	return func(d *Encoder) { d.Match(s) }
}

// Ch matches the single rune r.
func Ch(r rune) Expr {
	return Lit(string(r))
}

// ChRange matches one rune in the inclusive range [lo, hi].
func ChRange(lo, hi rune) Expr {
	return func(d *Encoder) { d.MatchRange(string(lo), string(hi)) }
}

// Any matches any single rune.
var Any Expr = func(d *Encoder) {
	d.Encode(OpMatchAny, AltNone, 0).Zclr(true)
}

// Eps matches the empty string.
var Eps Expr = func(d *Encoder) {
	d.Encode(OpMatch, AltNone, 0)
}

// Eoi matches only at the end of input.
var Eoi Expr = func(d *Encoder) {
	d.EncodeOff(OpChoice, AltNone, 2, 0)
	d.Encode(OpMatchAny, AltNone, 0)
	d.Encode(OpFail, AltNone, 1)
}

// Cut commits the parse to the current alternative: pending actions
// and captures are accepted and consumed input may be discarded.
var Cut Expr = func(d *Encoder) {
	d.Encode(OpAccept, AltNone, 0)
}

// Newline registers a line break for position tracking without
// consuming input.
var Newline Expr = func(d *Encoder) {
	d.Encode(OpNewline, AltNone, 0)
}

// Eol matches "\n", "\r\n", or "\r" and advances the line counter.
var Eol Expr = func(d *Encoder) {
	d.EncodeOff(OpChoice, AltNone, 4, 0)
	d.Match("\n")
	d.EncodeOff(OpCommit, AltNone, 7, 0)
	d.Match("\r")
	d.EncodeOff(OpChoice, AltNone, 3, 0)
	d.Match("\n")
	d.Encode(OpCommit, AltNone, 0)
	d.Encode(OpNewline, AltNone, 0)
}

// Space matches one whitespace character, treating line breaks as Eol.
var Space Expr = func(d *Encoder) {
	n := d.EvaluateLength(Eol)
	d.EncodeOff(OpChoice, AltNone, 4, 0)
	d.Match(" ")
	d.EncodeOff(OpCommit, AltNone, 6+n, 0)
	d.EncodeOff(OpChoice, AltNone, 2+n, 0)
	d.Evaluate(Eol)
	d.EncodeOff(OpCommit, AltNone, 2, 0)
	d.MatchRange("\t", "\r")
}

// Seq matches each expression in order.
func Seq(xs ...Expr) Expr {
	return func(d *Encoder) {
		for _, x := range xs {
			d.Evaluate(x)
		}
	}
}

func choice2(x1, x2 Expr) Expr {
	return func(d *Encoder) {
		d.EncodeOff(OpChoice, AltNone, 2+d.EvaluateLength(x1), 0)
		d.Zpsh(1).Evaluate(x1)
		d.EncodeOff(OpCommit, AltNone, d.EvaluateLength(x2), 0)
		d.Zpsh(2).Evaluate(x2).Zand(2)
	}
}

// Cho matches the first expression that succeeds, in order. Unlike a
// regular-expression alternation the choice is committed: once an
// alternative matches, later ones are never retried.
func Cho(xs ...Expr) Expr {
	if len(xs) == 0 {
		return Eps
	}
	x := xs[len(xs)-1]
	for i := len(xs) - 2; i >= 0; i-- {
		x = choice2(xs[i], x)
	}
	return x
}

// Star matches x zero or more times, greedily.
func Star(x Expr) Expr {
	return func(d *Encoder) {
		n := d.EvaluateLength(x)
		d.EncodeOff(OpChoice, AltNone, 2+n, 0)
		d.Zpsh(1).Evaluate(x).Zpop()
		d.EncodeOff(OpCommit, AltCommitPartial, -(2 + n), 0)
	}
}

// Plus matches x one or more times, greedily.
func Plus(x Expr) Expr {
	return Seq(x, Star(x))
}

// Opt matches x or the empty string.
func Opt(x Expr) Expr {
	return Cho(x, Eps)
}

// Not is negative lookahead: it succeeds iff x fails, consuming
// nothing.
func Not(x Expr) Expr {
	return func(d *Encoder) {
		d.EncodeOff(OpChoice, AltNone, 1+d.EvaluateLength(x), 0)
		d.Zpsh(1).Evaluate(x).Zpop()
		d.Encode(OpFail, AltNone, 1)
	}
}

// And is positive lookahead: it succeeds iff x succeeds, consuming
// nothing.
func And(x Expr) Expr {
	return func(d *Encoder) {
		d.EncodeOff(OpChoice, AltNone, 2+d.EvaluateLength(x), 0)
		d.Zpsh(1).Evaluate(x).Zpop()
		d.EncodeOff(OpCommit, AltCommitBack, 1, 0)
		d.Encode(OpFail, AltNone, 0)
	}
}

// Pred gates the parse on a semantic predicate. The predicate may
// inspect the parser but must not reenter it.
func Pred(p Predicate) Expr {
	return func(d *Encoder) { d.EncodePredicate(p) }
}

// Cond gates the parse on a plain boolean function.
func Cond(f func() bool) Expr {
	return Pred(func(*Parser) bool { return f() })
}

// Act attaches a semantic action fired after x matches. Actions are
// buffered during the parse and replayed in match order on accept.
func Act(x Expr, a Action) Expr {
	return func(d *Encoder) {
		d.Evaluate(x).EncodeAction(a)
	}
}

// Attr attaches an action that pushes the result of f as an attribute.
func Attr[T any](x Expr, f func() T) Expr {
	return Act(x, func(s *Semantics) { s.PushAttribute(f()) })
}

// Capt attaches a capture action fired with the matched text and its
// positions after x matches.
func Capt(x Expr, a CaptureAction) Expr {
	return func(d *Encoder) {
		d.Encode(OpBeginCapture, AltNone, 0)
		d.Evaluate(x)
		d.EncodeCaptureEnd(a)
	}
}

// Class matches one rune belonging to any of the character classes in
// the mask.
func Class(c uniprop.Ctype) Expr {
	return func(d *Encoder) {
		d.Encode(OpMatchClass, AltNone, uint16(c)).Zclr(true)
	}
}

// Property matches one rune carrying any of the binary properties in
// the mask.
func Property(p uniprop.Ptype) Expr {
	return func(d *Encoder) {
		payload := appendConstant64(nil, uint64(p))
		d.EncodeStr(OpMatchClass, AltClassProperty, len(payload), payload).Zclr(true)
	}
}

// Category matches one rune in any of the general categories in the
// mask.
func Category(g uniprop.Gctype) Expr {
	return func(d *Encoder) {
		payload := appendConstant32(nil, uint32(g))
		d.EncodeStr(OpMatchClass, AltClassCategory, len(payload), payload).Zclr(true)
	}
}

// Script matches one rune belonging to the given script.
func Script(sc uniprop.Sctype) Expr {
	return func(d *Encoder) {
		d.Encode(OpMatchClass, AltClassScript, uint16(sc)).Zclr(true)
	}
}

// Embed calls into an already linked grammar, skipping its bootstrap.
func Embed(g *Grammar) Expr {
	return func(d *Encoder) { d.CallGrammar(g, 0) }
}

// Fragment wraps a separately compiled program as an expression.
func Fragment(p *Program) Expr {
	return func(d *Encoder) {
		d.Zclr(!p.MatchesEps)
		d.AppendProgram(p)
	}
}

// BindText attaches a capture that stores the matched text into v at
// the invocation's call depth.
func BindText(v *Variable[string], x Expr) Expr {
	return Capt(x, func(s *Semantics, syn SyntaxView) { v.Set(string(syn.Capture)) })
}

// BindAttr attaches an action that pops the top attribute into v at
// the invocation's call depth.
func BindAttr[T any](v *Variable[T], x Expr) Expr {
	return Act(x, func(s *Semantics) { v.Set(s.PopAttribute().(T)) })
}

// Package pattern compiles string patterns — literal text, ".", and
// bracket expressions like "[abc]", "[^a-z]", or "[[:alpha:]]" — into
// pegvm instruction fragments. The pattern language is itself parsed
// by a pegvm grammar: the engine bootstraps its own notation.
package pattern

import (
	"bytes"
	"errors"

	"github.com/chronos-tachyon/go-pegvm/pegvm"
	"github.com/chronos-tachyon/go-pegvm/uniprop"
)

var (
	ErrBadPattern        = errors.New("invalid string or bracket expression")
	ErrBadCharacterClass = errors.New("invalid character class")
)

// generator accumulates one bracket expression at a time while the
// pattern grammar replays its actions, and emits the compiled
// instructions into the output fragment.
type generator struct {
	enc        *pegvm.Encoder
	ranges     [][2]string
	classes    uniprop.Ctype
	circumflex bool
}

func gen(s *pegvm.Semantics) *generator {
	return s.Data.(*generator)
}

func (g *generator) bracketClass(name []byte) {
	c, ok := uniprop.CtypeFromString(string(name))
	if !ok {
		panic(ErrBadCharacterClass)
	}
	g.classes |= c
}

func (g *generator) bracketRange(first, last string) {
	if first > last {
		first, last = last, first
	}
	g.ranges = append(g.ranges, [2]string{first, last})
}

// bracketCommit lowers the accumulated alternatives. Membership is an
// ordered choice over the merged ranges and the class mask; a
// circumflex wraps that in negative lookahead followed by match_any.
func (g *generator) bracketCommit() {
	merged := mergeRanges(g.ranges)

	var matches pegvm.Program
	if g.classes != uniprop.None {
		me := pegvm.NewEncoder(&matches)
		me.Encode(pegvm.OpMatchClass, pegvm.AltNone, uint16(g.classes))
	}
	for i := len(merged) - 1; i >= 0; i-- {
		var left pegvm.Program
		le := pegvm.NewEncoder(&left)
		le.MatchRange(merged[i][0], merged[i][1])
		if len(matches.Code) == 0 {
			matches = left
			continue
		}
		var both pegvm.Program
		be := pegvm.NewEncoder(&both)
		be.EncodeOff(pegvm.OpChoice, pegvm.AltNone, 2+fragWords(&left), 0)
		be.AppendProgram(&left)
		be.EncodeOff(pegvm.OpCommit, pegvm.AltNone, fragWords(&matches), 0)
		be.AppendProgram(&matches)
		matches = both
	}

	if g.circumflex {
		g.enc.EncodeOff(pegvm.OpChoice, pegvm.AltNone, 1+fragWords(&matches), 0)
		g.enc.AppendProgram(&matches)
		g.enc.Encode(pegvm.OpFail, pegvm.AltNone, 1)
		g.enc.Encode(pegvm.OpMatchAny, pegvm.AltNone, 0)
	} else {
		g.enc.AppendProgram(&matches)
	}
	g.enc.Zclr(true)

	g.ranges = g.ranges[:0]
	g.classes = uniprop.None
	g.circumflex = false
}

func fragWords(p *pegvm.Program) int {
	return len(p.Code) / 4
}

func mergeRanges(ranges [][2]string) [][2]string {
	sorted := make([][2]string, len(ranges))
	copy(sorted, ranges)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j][0] < sorted[j-1][0]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	merged := sorted[:0]
	for _, r := range sorted {
		if n := len(merged); n > 0 && r[0] <= merged[n-1][1] {
			if r[1] > merged[n-1][1] {
				merged[n-1][1] = r[1]
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

var patternGrammar *pegvm.Grammar

func init() {
	lit := pegvm.Lit
	seq := pegvm.Seq

	empty := pegvm.Define(pegvm.Act(pegvm.Eps, func(s *pegvm.Semantics) {
		gen(s).enc.Encode(pegvm.OpMatch, pegvm.AltNone, 0)
	}))
	dot := pegvm.Define(pegvm.Act(lit("."), func(s *pegvm.Semantics) {
		gen(s).enc.Encode(pegvm.OpMatchAny, pegvm.AltNone, 0).Zclr(true)
	}))
	element := pegvm.Define(pegvm.Cho(
		pegvm.Capt(seq(pegvm.Any, lit("-"), pegvm.Not(lit("]")), pegvm.Any),
			func(s *pegvm.Semantics, x pegvm.SyntaxView) {
				i := bytes.IndexByte(x.Capture, '-')
				gen(s).bracketRange(string(x.Capture[:i]), string(x.Capture[i+1:]))
			}),
		pegvm.Capt(seq(lit("[:"), pegvm.Plus(seq(pegvm.Not(lit(":")), pegvm.Any)), lit(":]")),
			func(s *pegvm.Semantics, x pegvm.SyntaxView) {
				gen(s).bracketClass(x.Capture[2 : len(x.Capture)-2])
			}),
		pegvm.Capt(pegvm.Any, func(s *pegvm.Semantics, x pegvm.SyntaxView) {
			r := string(x.Capture)
			gen(s).bracketRange(r, r)
		}),
	))
	bracket := pegvm.Define(seq(
		lit("["),
		pegvm.Opt(pegvm.Act(lit("^"), func(s *pegvm.Semantics) { gen(s).circumflex = true })),
		element.Ref(0),
		pegvm.Star(seq(pegvm.Not(lit("]")), element.Ref(0))),
		pegvm.Act(lit("]"), func(s *pegvm.Semantics) { gen(s).bracketCommit() }),
	))
	sequence := pegvm.Define(pegvm.Capt(
		pegvm.Plus(seq(pegvm.Not(pegvm.Cho(lit("."), lit("["))), pegvm.Any)),
		func(s *pegvm.Semantics, x pegvm.SyntaxView) {
			gen(s).enc.Match(string(x.Capture))
		}))

	root := pegvm.Define(seq(
		pegvm.Cho(
			pegvm.Plus(pegvm.Cho(dot.Ref(0), bracket.Ref(0), sequence.Ref(0))),
			empty.Ref(0),
		),
		pegvm.Eoi,
	))

	g, err := pegvm.Start(root)
	if err != nil {
		panic(err)
	}
	patternGrammar = g
}

// Compile parses a pattern and returns the expression it denotes.
func Compile(pat string) (x pegvm.Expr, err error) {
	frag := &pegvm.Program{}
	g := &generator{enc: pegvm.NewEncoder(frag)}
	sema := pegvm.NewSemantics()
	sema.Data = g

	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok && errors.Is(e, ErrBadCharacterClass) {
				x, err = nil, e
				return
			}
			panic(p)
		}
	}()

	ok, perr := pegvm.ParseWith([]byte(pat), patternGrammar, sema)
	if perr != nil {
		return nil, perr
	}
	if !ok {
		return nil, ErrBadPattern
	}
	g.enc.Finish()
	return pegvm.Fragment(frag), nil
}

// MustCompile is like Compile but panics on a malformed pattern.
func MustCompile(pat string) pegvm.Expr {
	x, err := Compile(pat)
	if err != nil {
		panic(err)
	}
	return x
}

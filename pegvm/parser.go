package pegvm

import (
	"bufio"
	"io"
	"os"
)

// Source feeds the input buffer on demand. It returns the next chunk
// of text and whether it may have more to give; a Source that reports
// no more is popped after that call, whether or not it returned text.
type Source func() (text string, more bool)

// Registers are the parser's machine registers: input byte index,
// column, line, response count, program counter (in words), and fail
// counter. Predicates may inspect and adjust them.
type Registers struct {
	IR, CR, LR, RC, PC, FC int
}

type subject struct {
	ir, cr, lr int
}

type frameKind uint8

const (
	frameBacktrack frameKind = iota
	frameCall
	frameCapture
	frameLRCall
)

type btFrame struct {
	ir, cr, lr, rc, pc int
}

// lrFail marks a left-recursion memo whose seed has not grown yet.
const lrFail = -1

// lrMemo is the per-frame memo of the seed-and-grow algorithm: the
// subject at entry, the best answer so far, the response count at
// entry, the return and body program counters, the responses produced
// by the best answer, and the call-site precedence.
type lrMemo struct {
	sr, sa    subject
	rcr       int
	pcr, pca  int
	responses []Response
	prec      int
}

// Parser runs a grammar over a streaming input buffer. The grammar is
// borrowed read-only for the duration of each parse; the parser owns
// the buffer and truncates consumed input at every cut.
type Parser struct {
	grammar *Grammar
	sema    *Semantics

	input    []byte
	regs     Registers
	maxInput subject

	parsing     bool
	reading     bool
	cutDeferred bool
	cutFrame    int

	sources []Source

	frames  []frameKind
	bt      []btFrame
	calls   []int
	caps    []subject
	lrmemos []lrMemo
}

// NewParser returns a parser for the grammar, reporting into sema. A
// nil sema gets a fresh buffer.
func NewParser(g *Grammar, sema *Semantics) *Parser {
	if sema == nil {
		sema = NewSemantics()
	}
	return &Parser{
		grammar:  g,
		sema:     sema,
		regs:     Registers{IR: 0, CR: 1, LR: 1},
		maxInput: subject{0, 1, 1},
	}
}

// Grammar returns the grammar being parsed.
func (p *Parser) Grammar() *Grammar { return p.grammar }

// Semantics returns the semantics buffer responses accumulate into.
func (p *Parser) Semantics() *Semantics { return p.sema }

// Registers returns the live machine registers. During a predicate
// they reflect the current parse position.
func (p *Parser) Registers() *Registers { return &p.regs }

// InputView returns the buffered input from the current position on.
func (p *Parser) InputView() []byte { return p.input[p.regs.IR:] }

// InputPosition returns the current column and line.
func (p *Parser) InputPosition() SyntaxPosition {
	return SyntaxPosition{Column: p.regs.CR, Line: p.regs.LR}
}

// MaxInputPosition returns the furthest position the parse reached,
// for diagnostics after a failed parse.
func (p *Parser) MaxInputPosition() SyntaxPosition {
	return SyntaxPosition{Column: p.maxInput.cr, Line: p.maxInput.lr}
}

// Enqueue appends input to the buffer.
func (p *Parser) Enqueue(text []byte) *Parser {
	if p.reading {
		panic(ErrReentrantRead)
	}
	p.input = append(p.input, text...)
	return p
}

// PushSource pushes an on-demand input source. Sources are drained in
// LIFO order when the buffer runs dry mid-parse.
func (p *Parser) PushSource(src Source) *Parser {
	if p.reading {
		panic(ErrReentrantRead)
	}
	p.sources = append(p.sources, src)
	return p
}

// Available reports whether n bytes of input are buffered at the
// current position, pulling from sources as needed.
func (p *Parser) Available(n int) bool {
	return p.available(n, p.regs.IR)
}

// available reports whether n bytes are buffered at ir. Sources are
// only consulted once the read head has drained the buffer: a partial
// tail fails the match instead of blocking on more input.
func (p *Parser) available(n int, ir int) bool {
	for {
		if n <= len(p.input)-ir {
			return true
		}
		if ir < len(p.input) {
			return false
		}
		if !p.readMore() {
			return false
		}
	}
}

func (p *Parser) readMore() bool {
	if p.reading {
		panic(ErrReentrantRead)
	}
	p.reading = true
	defer func() { p.reading = false }()
	var text string
	for len(p.sources) > 0 && text == "" {
		var more bool
		text, more = p.sources[len(p.sources)-1]()
		p.input = append(p.input, text...)
		if !more {
			p.sources = p.sources[:len(p.sources)-1]
		}
	}
	return text != ""
}

// Parse runs input against the grammar. See Parser.Parse for the
// failure and error contract.
func Parse(input []byte, g *Grammar) (bool, error) {
	return ParseWith(input, g, nil)
}

// ParseWith runs input against the grammar, reporting into sema.
func ParseWith(input []byte, g *Grammar, sema *Semantics) (bool, error) {
	return NewParser(g, sema).Enqueue(input).Parse()
}

// ParseReader runs the reader's contents against the grammar, feeding
// one line at a time with a terminating newline appended to each.
func ParseReader(r io.Reader, g *Grammar, sema *Semantics) (bool, error) {
	scanner := bufio.NewScanner(r)
	return NewParser(g, sema).PushSource(func() (string, bool) {
		if scanner.Scan() {
			return scanner.Text() + "\n", true
		}
		return "", false
	}).Parse()
}

// ParseStdin runs standard input against the grammar, line by line.
func ParseStdin(g *Grammar, sema *Semantics) (bool, error) {
	return ParseReader(os.Stdin, g, sema)
}

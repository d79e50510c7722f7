package pegvm

import (
	"math"
)

// Predicate gates the parse on inspected parser state. It runs during
// the parse, not at accept time, and must not reenter the parser.
type Predicate func(*Parser) bool

// Action is a deferred semantic callback, buffered during the parse
// and fired in match order on accept.
type Action func(*Semantics)

// CaptureAction is an Action that also receives the captured text and
// its positions.
type CaptureAction func(*Semantics, SyntaxView)

// SyntaxPosition is a 1-based column and line.
type SyntaxPosition struct {
	Column int
	Line   int
}

// SyntaxRange locates a capture inside the accepted input.
type SyntaxRange struct {
	Index int
	Size  int
	Start SyntaxPosition
	End   SyntaxPosition
}

// SyntaxView is the capture text handed to a CaptureAction.
type SyntaxView struct {
	Capture []byte
	Start   SyntaxPosition
	End     SyntaxPosition
}

// Response records one buffered semantic callback: the call depth it
// was produced at, the side-table index of its action, and the index
// of its capture range, or noCapture for plain actions.
type Response struct {
	Depth   uint16
	Action  uint16
	Capture uint32
}

const noCapture = math.MaxUint32

const maxDepth = math.MaxUint16

// Semantics buffers the responses produced during a parse and replays
// them on accept. Backtracking truncates the buffer; left-recursion
// growth saves and restores windows of it.
type Semantics struct {
	// Data carries user state shared by a grammar's actions, for
	// grammars whose callbacks outlive any single parse.
	Data any

	match      []byte
	pruneDepth uint16
	callDepth  uint16
	responses  []Response
	captures   []SyntaxRange
	attributes []any
}

// NewSemantics returns an empty semantics buffer.
func NewSemantics() *Semantics {
	return &Semantics{pruneDepth: maxDepth}
}

// Match returns the input accepted by the most recent parse. It is
// only meaningful inside callbacks fired by Accept.
func (s *Semantics) Match() []byte { return s.match }

// CallDepth returns the call depth of the response currently being
// replayed.
func (s *Semantics) CallDepth() uint16 { return s.callDepth }

// Escape prunes the remaining responses at or deeper than the current
// call depth, until one at a shallower depth is reached.
func (s *Semantics) Escape() { s.pruneDepth = s.callDepth }

// PushAttribute pushes a type-erased attribute value.
func (s *Semantics) PushAttribute(x any) {
	s.attributes = append(s.attributes, x)
}

// PopAttribute pops the most recently pushed attribute.
func (s *Semantics) PopAttribute() any {
	assert(len(s.attributes) != 0, "attribute stack is empty")
	x := s.attributes[len(s.attributes)-1]
	s.attributes = s.attributes[:len(s.attributes)-1]
	return x
}

func (s *Semantics) pushResponse(depth int, action uint16) int {
	s.responses = append(s.responses, Response{Depth: uint16(depth), Action: action, Capture: noCapture})
	return len(s.responses)
}

func (s *Semantics) pushCaptureResponse(depth int, action uint16, r SyntaxRange) int {
	s.captures = append(s.captures, r)
	s.responses = append(s.responses, Response{Depth: uint16(depth), Action: action, Capture: uint32(len(s.captures) - 1)})
	return len(s.responses)
}

func (s *Semantics) popResponsesAfter(n int) {
	if n < len(s.responses) {
		s.responses = s.responses[:n]
	}
}

func (s *Semantics) dropResponsesAfter(n int) []Response {
	if n >= len(s.responses) {
		return nil
	}
	dropped := make([]Response, len(s.responses)-n)
	copy(dropped, s.responses[n:])
	s.responses = s.responses[:n]
	return dropped
}

func (s *Semantics) restoreResponsesAfter(n int, saved []Response) int {
	s.popResponsesAfter(n)
	s.responses = append(s.responses, saved...)
	return len(s.responses)
}

// Accept replays the buffered responses in insertion order against the
// grammar's action tables, skipping any pruned by Escape, then clears
// the buffer.
func (s *Semantics) Accept(g *Grammar, input []byte) {
	prog := &g.prog
	s.match = input
	for _, r := range s.responses {
		if s.pruneDepth <= r.Depth {
			continue
		}
		s.pruneDepth = maxDepth
		s.callDepth = r.Depth
		if r.Capture != noCapture {
			rng := s.captures[r.Capture]
			// A cut between begin_capture and replay may have
			// truncated the buffer out from under the range.
			i := min(rng.Index, len(s.match))
			j := min(rng.Index+rng.Size, len(s.match))
			view := SyntaxView{
				Capture: s.match[i:j],
				Start:   rng.Start,
				End:     rng.End,
			}
			prog.Captures[r.Action](s, view)
		} else {
			prog.Actions[r.Action](s)
		}
	}
	s.Clear()
}

// Clear resets the buffer for a fresh parse.
func (s *Semantics) Clear() {
	s.match = nil
	s.pruneDepth = maxDepth
	s.callDepth = 0
	s.responses = s.responses[:0]
	s.attributes = s.attributes[:0]
}

// Variable gives each rule invocation its own T, keyed by the call
// depth of the response being replayed. Actions in a recursive rule
// can accumulate into their caller's slot without clobbering their
// own.
type Variable[T any] struct {
	sema  *Semantics
	state map[uint16]T
}

// NewVariable returns a Variable bound to s.
func NewVariable[T any](s *Semantics) *Variable[T] {
	return &Variable[T]{sema: s, state: make(map[uint16]T)}
}

// Get returns the value at the current call depth.
func (v *Variable[T]) Get() T {
	return v.state[v.sema.callDepth]
}

// Set stores the value at the current call depth.
func (v *Variable[T]) Set(x T) {
	v.state[v.sema.callDepth] = x
}

// At returns the value at an explicit call depth.
func (v *Variable[T]) At(depth uint16) T {
	return v.state[depth]
}

// Package pegvm implements a virtual machine for Parsing Expression
// Grammars, embedded as a combinator DSL.
//
// A grammar is composed from Expr combinators, collected into Rules,
// and linked by Start into a single flat bytecode program. A Parser
// then runs input against the program, answering accept or reject and
// replaying the buffered semantic callbacks in match order on accept.
//
// The VM uses the following instruction encoding for its bytecode:
//
// Instructions are packed 32-bit words. Every instruction begins with
// one prefix word:
//
//	[ op: u8 | aux: u8 | val: u16 ]
//
// The aux byte carries two flag bits and a six-bit altcode refining
// the base opcode:
//
//	+------+----------------------+
//	| 0x80 | string payload next  |
//	| 0x40 | offset payload next  |
//	| 0x3f | altcode              |
//	+------+----------------------+
//
// When the offset flag is set, the next word is a signed 32-bit
// relative branch target counted in words from the word that follows
// it. When the string flag is set, val packs two small counts:
//
//	val = (count-1) << 8 | (bytelen-1)
//
// and ceil(bytelen/4) words of inline string payload follow, padded
// with zero bytes. For match, count is the rune count of the literal;
// for match_range it is the byte length of the lower bound inside the
// concatenated bound pair. Otherwise val is an immediate: a precedence
// for call, a fail-unit count for fail, a class mask or script for
// match_class, or a side-table index for predicate, action, and
// end_capture.
//
// The opcodes:
//
//	match         consume an exact byte sequence
//	match_any     consume one rune
//	match_class   consume one rune in a character class
//	match_range   consume one rune within inclusive bounds
//	choice        push a backtrack frame
//	commit        pop it (.back restores, .partial refreshes) and jump
//	jump          unconditional branch
//	call          enter a rule body; nonzero val is a left-recursion
//	              precedence and engages the seed-and-grow memo
//	ret           leave a rule body, growing the seed if recursive
//	fail          unwind val+1 frame units
//	accept        cut; .final accepts the whole parse
//	newline       reset the column and advance the line counter
//	predicate     consult a semantic predicate
//	action        buffer a semantic response
//	begin_capture push a capture frame
//	end_capture   pop it and buffer a capture response
//
// Left recursion is bounded by Warth-style seed growing: a
// left-recursive call plants a failing seed, the rule body is rerun
// from the same subject while each return extends the match, and the
// best answer is committed when growth stops. The memo lives on its
// own stack frame, not in a global table.
//
// Semantic actions never run speculatively. They are buffered as
// responses, pruned when backtracking discards the speculation that
// produced them, and replayed in match order once an accept commits
// the parse.
package pegvm

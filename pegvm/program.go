package pegvm

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

// maxProgramWords bounds program growth so that every relative offset
// can be patched into a signed 32-bit word.
const maxProgramWords = 1 << 30

// maxTableLen bounds the side tables so that every entry is addressable
// by a 16-bit immediate.
const maxTableLen = 0xffff

// Program is a compiled expression: an instruction stream plus the side
// tables its predicate, action, and end_capture instructions index.
// MatchesEps is true iff the program can succeed without consuming any
// input.
type Program struct {
	Code       []byte
	Predicates []Predicate
	Actions    []Action
	Captures   []CaptureAction
	MatchesEps bool
}

// Concatenate appends a copy of src, rebasing the side-table indices of
// its predicate, action, and end_capture instructions. Panics with
// ErrResourceLimit or ErrProgramLimit when a rebased index or the
// instruction count overflows; Start converts these into errors.
func (p *Program) Concatenate(src *Program) {
	if words(p.Code)+words(src.Code) > maxProgramWords {
		panic(ErrProgramLimit)
	}
	base := words(p.Code)
	p.Code = append(p.Code, src.Code...)
	for pc := base; pc < words(p.Code); {
		op := Opcode(p.Code[pc*wordSize])
		aux := p.Code[pc*wordSize+1]
		val := getVal(p.Code, pc)
		var rebase int
		switch op {
		case OpPredicate:
			rebase = len(p.Predicates)
		case OpAction:
			rebase = len(p.Actions)
		case OpEndCapture:
			rebase = len(p.Captures)
		}
		if rebase != 0 {
			v := int(val) + rebase
			if v > maxTableLen {
				panic(ErrResourceLimit)
			}
			putVal(p.Code, pc, uint16(v))
		}
		pc += instrLen(aux, val)
	}
	p.Predicates = append(p.Predicates, src.Predicates...)
	p.Actions = append(p.Actions, src.Actions...)
	p.Captures = append(p.Captures, src.Captures...)
	p.MatchesEps = p.MatchesEps && src.MatchesEps
}

// Disassemble writes an assembly listing of the program to w.
func (p *Program) Disassemble(w io.Writer) (int, error) {
	// First pass: find the word offsets that need labels.
	targets := make(map[int]struct{})
	for pc := 0; pc < words(p.Code); {
		op, _, _, off, _, next, err := decode(p.Code, pc)
		if err != nil {
			return 0, err
		}
		if hasOffsetOperand(op, p.Code[pc*wordSize+1]) {
			targets[next+off] = struct{}{}
		}
		pc = next
	}
	labels := make([]int, 0, len(targets))
	for t := range targets {
		labels = append(labels, t)
	}
	sort.Ints(labels)
	names := make(map[int]string, len(labels))
	for i, t := range labels {
		names[t] = fmt.Sprintf(".L%d", i)
	}

	// Second pass: the listing itself.
	var buf bytes.Buffer
	var total int
	flush := func() error {
		n, err := w.Write(buf.Bytes())
		total += n
		buf.Reset()
		return err
	}
	for pc := 0; pc < words(p.Code); {
		op, alt, imm, off, str, next, err := decode(p.Code, pc)
		if err != nil {
			return total, err
		}
		if name, ok := names[pc]; ok {
			buf.WriteString(name)
			buf.WriteByte(':')
			buf.WriteByte('\n')
			if err := flush(); err != nil {
				return total, err
			}
		}
		buf.WriteByte('\t')
		hasOff := hasOffsetOperand(op, p.Code[pc*wordSize+1])
		p.writeOp(&buf, op, alt, imm, off, str, next, hasOff, names)
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
		pc = next
	}
	return total, nil
}

func hasOffsetOperand(op Opcode, aux byte) bool {
	return aux&auxOff != 0
}

func (p *Program) writeOp(buf *bytes.Buffer, op Opcode, alt Altcode, imm, off int, str []byte, next int, hasOff bool, names map[int]string) {
	target := func() {
		if hasOff {
			fmt.Fprintf(buf, " %s <.%+d>", names[next+off], off)
		}
	}
	switch op {
	case OpMatch:
		fmt.Fprintf(buf, "match %q", str)
	case OpMatchAny:
		buf.WriteString("match_any")
	case OpMatchClass:
		switch alt {
		case AltClassProperty:
			v, _ := decodeConstant64(str)
			fmt.Fprintf(buf, "match_class.prop %#x", v)
		case AltClassCategory:
			v, _ := decodeConstant32(str)
			fmt.Fprintf(buf, "match_class.gc %#x", v)
		case AltClassScript:
			fmt.Fprintf(buf, "match_class.sc %d", imm)
		default:
			fmt.Fprintf(buf, "match_class %#x", imm)
		}
	case OpMatchRange:
		fmt.Fprintf(buf, "match_range %q %q", str[:imm], str[imm:])
	case OpChoice:
		buf.WriteString("choice")
		if imm != 0 {
			fmt.Fprintf(buf, " %d,", imm)
		}
		target()
	case OpCommit:
		switch alt {
		case AltCommitBack:
			buf.WriteString("commit.back")
		case AltCommitPartial:
			buf.WriteString("commit.partial")
		default:
			buf.WriteString("commit")
		}
		target()
	case OpJump:
		buf.WriteString("jump")
		target()
	case OpCall:
		fmt.Fprintf(buf, "call %d,", imm)
		target()
	case OpRet:
		buf.WriteString("ret")
	case OpFail:
		buf.WriteString("fail")
		if imm != 0 {
			fmt.Fprintf(buf, " %d", imm)
		}
	case OpAccept:
		if alt == AltAcceptFinal {
			buf.WriteString("accept.final")
		} else {
			buf.WriteString("accept")
		}
	case OpNewline:
		buf.WriteString("newline")
	case OpPredicate:
		fmt.Fprintf(buf, "predicate %d", imm)
	case OpAction:
		fmt.Fprintf(buf, "action %d", imm)
	case OpBeginCapture:
		buf.WriteString("begin_capture")
	case OpEndCapture:
		fmt.Fprintf(buf, "end_capture %d", imm)
	default:
		fmt.Fprintf(buf, "%s", op)
	}
}

// String provides a programmer-friendly debugging string for the Program.
func (p *Program) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Program{%d words, %d predicates, %d actions, %d captures, eps=%v}",
		words(p.Code), len(p.Predicates), len(p.Actions), len(p.Captures), p.MatchesEps)
	return buf.String()
}

package pegvm

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"github.com/chronos-tachyon/go-pegvm/uniprop"
)

// Parse runs the buffered input against the grammar. It returns true
// on acceptance, after the buffered semantic responses have been
// replayed, and false on an ordinary parse failure, with the furthest
// position reached available from MaxInputPosition. The error is
// non-nil only for an empty grammar, corrupt bytecode, or a reentrant
// call. Panics from user callbacks propagate after the parser unwinds.
func (p *Parser) Parse() (result bool, err error) {
	if p.parsing {
		return false, ErrReentrantParse
	}
	p.parsing = true
	defer func() {
		p.parsing = false
		if r := recover(); r != nil {
			p.frames, p.bt, p.calls = p.frames[:0], p.bt[:0], p.calls[:0]
			p.caps, p.lrmemos = p.caps[:0], p.lrmemos[:0]
			if e, ok := r.(error); ok && errors.Is(e, ErrReentrantRead) {
				result, err = false, e
				return
			}
			panic(r)
		}
	}()

	prog := &p.grammar.prog
	if len(prog.Code) == 0 {
		return false, ErrBadGrammar
	}

	ir, cr, lr := p.regs.IR, p.regs.CR, p.regs.LR
	rc, pc, fc := 0, 0, 0
	p.cutDeferred = false
	p.cutFrame = 0
	p.sema.Clear()
	done := false

	storeRegs := func() { p.regs = Registers{ir, cr, lr, rc, pc, 0} }
	loadRegs := func() {
		ir, cr, lr, rc, pc, fc = p.regs.IR, p.regs.CR, p.regs.LR, p.regs.RC, p.regs.PC, p.regs.FC
	}

	// acceptCut commits the parse so far: replay responses, discard
	// consumed input, and floor the frame stack at its current size.
	acceptCut := func() {
		p.regs = Registers{ir, cr, lr, rc, pc, 0}
		p.sema.Accept(p.grammar, p.input)
		p.input = p.input[ir:]
		ir, rc = 0, 0
		p.regs.IR, p.regs.RC = 0, 0
		p.maxInput.ir = 0
		p.cutDeferred = false
		p.cutFrame = len(p.frames)
	}

	popFrame := func() {
		p.frames = p.frames[:len(p.frames)-1]
		if p.cutFrame > len(p.frames) {
			p.cutFrame = len(p.frames)
		}
	}

	// deferredCut runs a pending cut once the last capture or
	// left-recursion frame is gone.
	deferredCut := func() {
		if p.cutDeferred && len(p.caps) == 0 && len(p.lrmemos) == 0 {
			acceptCut()
		}
	}

	// failure unwinds fc+1 frame units: a backtrack frame absorbs one
	// unit and restores the saved registers, while call, capture, and
	// answerless left-recursion frames are transparent to failure and
	// add one unit each. The parse fails terminally when the frame
	// stack is at the cut floor.
	failure := func() {
		if ir > p.maxInput.ir {
			p.maxInput = subject{ir, cr, lr}
		}
		for fc++; fc > 0; fc-- {
			if p.cutFrame >= len(p.frames) {
				done = true
				break
			}
			switch p.frames[len(p.frames)-1] {
			case frameBacktrack:
				f := p.bt[len(p.bt)-1]
				ir, cr, lr, rc, pc = f.ir, f.cr, f.lr, f.rc, f.pc
				p.bt = p.bt[:len(p.bt)-1]
				popFrame()
			case frameCall:
				p.calls = p.calls[:len(p.calls)-1]
				popFrame()
				fc++
			case frameCapture:
				f := p.caps[len(p.caps)-1]
				ir, cr, lr = f.ir, f.cr, f.lr
				p.caps = p.caps[:len(p.caps)-1]
				popFrame()
				deferredCut()
				fc++
			case frameLRCall:
				m := &p.lrmemos[len(p.lrmemos)-1]
				if m.sa.ir != lrFail {
					ir, cr, lr = m.sa.ir, m.sa.cr, m.sa.lr
					pc = m.pcr
					rc = p.sema.restoreResponsesAfter(m.rcr, m.responses)
				} else {
					fc++
				}
				p.lrmemos = p.lrmemos[:len(p.lrmemos)-1]
				popFrame()
				deferredCut()
			}
		}
		fc = 0
		p.sema.popResponsesAfter(rc)
	}

dispatch:
	for !done {
		opPC := pc
		op, alt, imm, off, str, next, derr := decode(prog.Code, pc)
		if derr != nil {
			storeRegs()
			return false, derr
		}
		pc = next
		switch op {
		case OpMatch:
			if len(str) != 0 {
				if !p.available(len(str), ir) || !bytes.HasPrefix(p.input[ir:], str) {
					failure()
					continue
				}
				ir += len(str)
				cr += imm
			}

		case OpMatchAny:
			if !p.available(1, ir) {
				failure()
				continue
			}
			_, sz := utf8.DecodeRune(p.input[ir:])
			ir += sz
			cr++

		case OpMatchClass:
			if !p.available(1, ir) {
				failure()
				continue
			}
			r, sz := utf8.DecodeRune(p.input[ir:])
			rec := uniprop.Query(r)
			var member bool
			switch alt {
			case AltClassProperty:
				v, cerr := decodeConstant64(str)
				if cerr != nil {
					storeRegs()
					return false, &DecodeError{Err: cerr, PC: opPC}
				}
				member = rec.HasProperty(uniprop.Ptype(v))
			case AltClassCategory:
				v, cerr := decodeConstant32(str)
				if cerr != nil {
					storeRegs()
					return false, &DecodeError{Err: cerr, PC: opPC}
				}
				member = rec.InCategory(uniprop.Gctype(v))
			case AltClassScript:
				member = rec.Script() == uniprop.Sctype(imm)
			default:
				member = rec.Is(uniprop.Ctype(imm))
			}
			if !member {
				failure()
				continue
			}
			ir += sz
			cr++

		case OpMatchRange:
			first, last := str[:imm], str[imm:]
			if !p.available(min(len(first), len(last)), ir) {
				failure()
				continue
			}
			_, sz := utf8.DecodeRune(p.input[ir:])
			seg := p.input[ir : ir+sz]
			if bytes.Compare(seg, first) < 0 || bytes.Compare(seg, last) > 0 {
				failure()
				continue
			}
			ir += sz
			cr++

		case OpChoice:
			p.frames = append(p.frames, frameBacktrack)
			p.bt = append(p.bt, btFrame{ir - imm&0xff, cr - imm>>8, lr, rc, pc + off})

		case OpCommit:
			if len(p.frames) == 0 || p.frames[len(p.frames)-1] != frameBacktrack {
				failure()
				continue
			}
			switch alt {
			case AltCommitPartial:
				f := &p.bt[len(p.bt)-1]
				f.ir, f.cr, f.lr, f.rc = ir, cr, lr, rc
			case AltCommitBack:
				f := p.bt[len(p.bt)-1]
				ir, cr, lr = f.ir, f.cr, f.lr
				p.bt = p.bt[:len(p.bt)-1]
				popFrame()
			default:
				p.bt = p.bt[:len(p.bt)-1]
				popFrame()
			}
			pc += off

		case OpJump:
			pc += off

		case OpCall:
			if imm != 0 {
				for i := len(p.lrmemos) - 1; i >= 0 && p.lrmemos[i].sr.ir >= ir; i-- {
					m := &p.lrmemos[i]
					if m.sr.ir == ir && m.pca == pc+off {
						if m.sa.ir == lrFail || imm < m.prec {
							failure()
							continue dispatch
						}
						ir, cr, lr = m.sa.ir, m.sa.cr, m.sa.lr
						rc = p.sema.restoreResponsesAfter(rc, m.responses)
						continue dispatch
					}
				}
				p.frames = append(p.frames, frameLRCall)
				p.lrmemos = append(p.lrmemos, lrMemo{
					sr:   subject{ir, cr, lr},
					sa:   subject{lrFail, 0, 0},
					rcr:  rc,
					pcr:  pc,
					pca:  pc + off,
					prec: imm,
				})
			} else {
				p.frames = append(p.frames, frameCall)
				p.calls = append(p.calls, pc)
			}
			pc += off

		case OpRet:
			if len(p.frames) == 0 {
				failure()
				continue
			}
			switch p.frames[len(p.frames)-1] {
			case frameCall:
				pc = p.calls[len(p.calls)-1]
				p.calls = p.calls[:len(p.calls)-1]
				popFrame()
			case frameLRCall:
				m := &p.lrmemos[len(p.lrmemos)-1]
				if m.sa.ir == lrFail || ir > m.sa.ir {
					// The answer grew: snapshot it and reenter the
					// body from the seed subject.
					m.sa = subject{ir, cr, lr}
					m.responses = p.sema.dropResponsesAfter(m.rcr)
					ir, cr, lr = m.sr.ir, m.sr.cr, m.sr.lr
					rc = m.rcr
					pc = m.pca
					continue
				}
				ir, cr, lr = m.sa.ir, m.sa.cr, m.sa.lr
				pc = m.pcr
				rc = p.sema.restoreResponsesAfter(m.rcr, m.responses)
				p.lrmemos = p.lrmemos[:len(p.lrmemos)-1]
				popFrame()
				deferredCut()
			default:
				failure()
				continue
			}

		case OpFail:
			fc = imm
			failure()
			continue

		case OpAccept:
			p.cutDeferred = len(p.caps) != 0 || len(p.lrmemos) != 0
			if !p.cutDeferred {
				acceptCut()
				if alt == AltAcceptFinal {
					result = true
					done = true
				}
			}

		case OpNewline:
			cr = 1
			lr++

		case OpPredicate:
			storeRegs()
			if ir > p.maxInput.ir {
				p.maxInput = subject{ir, cr, lr}
			}
			accepted := prog.Predicates[imm](p)
			loadRegs()
			p.sema.popResponsesAfter(rc)
			if !accepted {
				failure()
				continue
			}

		case OpAction:
			rc = p.sema.pushResponse(len(p.calls)+len(p.lrmemos), uint16(imm))

		case OpBeginCapture:
			p.frames = append(p.frames, frameCapture)
			p.caps = append(p.caps, subject{ir, cr, lr})

		case OpEndCapture:
			if len(p.frames) == 0 || p.frames[len(p.frames)-1] != frameCapture {
				failure()
				continue
			}
			f := p.caps[len(p.caps)-1]
			ir1, cr1, lr1 := ir, cr, lr
			p.caps = p.caps[:len(p.caps)-1]
			popFrame()
			deferredCut()
			if f.ir > ir1 {
				failure()
				continue
			}
			rng := SyntaxRange{
				Index: f.ir,
				Size:  ir1 - f.ir,
				Start: SyntaxPosition{f.cr, f.lr},
				End:   SyntaxPosition{cr1, lr1},
			}
			rc = p.sema.pushCaptureResponse(len(p.calls)+len(p.lrmemos), uint16(imm), rng)

		default:
			storeRegs()
			return false, &DecodeError{Err: ErrBadOpcode, PC: opPC}
		}
	}
	storeRegs()
	return result, nil
}

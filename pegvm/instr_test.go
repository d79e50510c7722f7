package pegvm

import (
	"testing"
)

func TestDecode_prefix(t *testing.T) {
	type testrow struct {
		Op  Opcode
		Alt Altcode
		Imm uint16
	}

	data := []testrow{
		testrow{OpMatchAny, AltNone, 0},
		testrow{OpRet, AltNone, 0},
		testrow{OpFail, AltNone, 1},
		testrow{OpAccept, AltAcceptFinal, 0},
		testrow{OpPredicate, AltNone, 7},
		testrow{OpAction, AltNone, 65535},
		testrow{OpMatchClass, AltClassScript, 12},
	}

	for i, row := range data {
		var p Program
		NewEncoder(&p).Encode(row.Op, row.Alt, row.Imm)
		op, alt, imm, off, str, next, err := decode(p.Code, 0)
		if err != nil {
			t.Errorf("%s/%03d: error: %v", t.Name(), i, err)
			continue
		}
		if op != row.Op || alt != row.Alt || imm != int(row.Imm) || off != 0 || str != nil || next != 1 {
			t.Errorf("%s/%03d: wrong decode: op=%v alt=%d imm=%d off=%d str=%q next=%d",
				t.Name(), i, op, alt, imm, off, str, next)
		}
	}
}

func TestDecode_offset(t *testing.T) {
	type testrow struct {
		Off int
	}

	data := []testrow{
		testrow{0},
		testrow{1},
		testrow{-4},
		testrow{1 << 20},
		testrow{-(1 << 20)},
	}

	for i, row := range data {
		var p Program
		NewEncoder(&p).EncodeOff(OpChoice, AltNone, row.Off, 0)
		op, _, _, off, _, next, err := decode(p.Code, 0)
		if err != nil {
			t.Errorf("%s/%03d: error: %v", t.Name(), i, err)
			continue
		}
		if op != OpChoice || off != row.Off || next != 2 {
			t.Errorf("%s/%03d: wrong decode: op=%v off=%d next=%d", t.Name(), i, op, off, next)
		}
	}
}

func TestDecode_strings(t *testing.T) {
	type testrow struct {
		Input     string
		WantImm   int
		WantWords int
	}

	data := []testrow{
		testrow{"a", 1, 2},
		testrow{"ab", 2, 2},
		testrow{"abcd", 4, 2},
		testrow{"abcde", 5, 3},
		testrow{"hé", 2, 2},       // 3 bytes, 2 runes
		testrow{"ééx", 3, 3}, // 5 bytes, 3 runes
	}

	for i, row := range data {
		var p Program
		NewEncoder(&p).Match(row.Input)
		op, _, imm, _, str, next, err := decode(p.Code, 0)
		if err != nil {
			t.Errorf("%s/%03d: error: %v", t.Name(), i, err)
			continue
		}
		if op != OpMatch || imm != row.WantImm || string(str) != row.Input || next != row.WantWords {
			t.Errorf("%s/%03d: wrong decode: op=%v imm=%d str=%q next=%d",
				t.Name(), i, op, imm, str, next)
		}
	}
}

func TestDecode_truncated(t *testing.T) {
	var p Program
	NewEncoder(&p).EncodeOff(OpChoice, AltNone, 2, 0)
	if _, _, _, _, _, _, err := decode(p.Code[:wordSize], 0); err == nil {
		t.Errorf("%s: expected error for truncated offset", t.Name())
	}
	if _, _, _, _, _, _, err := decode(p.Code, 5); err == nil {
		t.Errorf("%s: expected error for out-of-range pc", t.Name())
	}
}

func TestMatch_longLiteral(t *testing.T) {
	long := make([]byte, 0, 600)
	for len(long) < 600 {
		long = append(long, 'a')
	}

	var p Program
	NewEncoder(&p).Match(string(long))

	var sizes []int
	for pc := 0; pc < words(p.Code); {
		op, _, _, _, str, next, err := decode(p.Code, pc)
		if err != nil {
			t.Fatalf("%s: error: %v", t.Name(), err)
		}
		if op != OpMatch {
			t.Fatalf("%s: unexpected op %v", t.Name(), op)
		}
		sizes = append(sizes, len(str))
		pc = next
	}
	want := []int{256, 256, 88}
	if len(sizes) != len(want) {
		t.Fatalf("%s: wrong chunk count: %v", t.Name(), sizes)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("%s: chunk %d: got %d, want %d", t.Name(), i, sizes[i], want[i])
		}
	}
}

func TestMatch_longLiteralRuneBoundary(t *testing.T) {
	// 2-byte runes; 256 is not a boundary when offset by one leading
	// ASCII byte, so the first chunk must stop at 255.
	s := "x"
	for i := 0; i < 200; i++ {
		s += "é"
	}

	var p Program
	NewEncoder(&p).Match(s)

	var total int
	for pc := 0; pc < words(p.Code); {
		_, _, _, _, str, next, err := decode(p.Code, pc)
		if err != nil {
			t.Fatalf("%s: error: %v", t.Name(), err)
		}
		if len(str) > MaxStrLen {
			t.Fatalf("%s: oversized chunk %d", t.Name(), len(str))
		}
		if str[0]&0xc0 == 0x80 {
			t.Fatalf("%s: chunk starts mid-rune", t.Name())
		}
		total += len(str)
		pc = next
	}
	if total != len(s) {
		t.Errorf("%s: chunks cover %d bytes, want %d", t.Name(), total, len(s))
	}
}

func TestConcatenate_rebasesSideTables(t *testing.T) {
	mk := func() *Program {
		var p Program
		e := NewEncoder(&p)
		e.EncodeAction(func(*Semantics) {})
		e.EncodePredicate(func(*Parser) bool { return true })
		e.Finish()
		return &p
	}

	var dst Program
	dst.MatchesEps = true
	dst.Concatenate(mk())
	dst.Concatenate(mk())

	var actions, predicates []int
	for pc := 0; pc < words(dst.Code); {
		op, _, imm, _, _, next, err := decode(dst.Code, pc)
		if err != nil {
			t.Fatalf("%s: error: %v", t.Name(), err)
		}
		switch op {
		case OpAction:
			actions = append(actions, imm)
		case OpPredicate:
			predicates = append(predicates, imm)
		}
		pc = next
	}
	if len(actions) != 2 || actions[0] != 0 || actions[1] != 1 {
		t.Errorf("%s: wrong action indices: %v", t.Name(), actions)
	}
	if len(predicates) != 2 || predicates[0] != 0 || predicates[1] != 1 {
		t.Errorf("%s: wrong predicate indices: %v", t.Name(), predicates)
	}
	if len(dst.Actions) != 2 || len(dst.Predicates) != 2 {
		t.Errorf("%s: wrong table sizes: %d actions, %d predicates",
			t.Name(), len(dst.Actions), len(dst.Predicates))
	}
}

package uniprop

import (
	"testing"
)

func TestQuery_ctype(t *testing.T) {
	type testrow struct {
		Rune   rune
		Mask   Ctype
		Output bool
	}

	data := []testrow{
		testrow{'A', Alpha, true},
		testrow{'A', Upper, true},
		testrow{'A', Lower, false},
		testrow{'a', Lower, true},
		testrow{'é', Alpha, true},
		testrow{'5', Digit, true},
		testrow{'5', Alpha, false},
		testrow{'f', Xdigit, true},
		testrow{'g', Xdigit, false},
		testrow{' ', Space, true},
		testrow{' ', Blank, true},
		testrow{'\n', Space, true},
		testrow{'\n', Blank, false},
		testrow{'\t', Blank, true},
		testrow{0x07, Cntrl, true},
		testrow{'!', Punct, true},
		testrow{'x', Graph, true},
		testrow{' ', Graph, false},
		testrow{'_', Word, true},
		testrow{'_', Alnum, false},
		testrow{'9', Alnum, true},
		testrow{'x', Digit | Space, false},
		testrow{'x', Digit | Alpha, true},
	}

	for i, row := range data {
		if got := Query(row.Rune).Is(row.Mask); got != row.Output {
			t.Errorf("%s/%03d: Query(%q).Is(%#x) = %v, want %v",
				t.Name(), i, row.Rune, row.Mask, got, row.Output)
		}
	}
}

func TestCtypeFromString(t *testing.T) {
	for name := range ctypeNames {
		if _, ok := CtypeFromString(name); !ok {
			t.Errorf("%s: %q not resolved", t.Name(), name)
		}
	}
	if _, ok := CtypeFromString("bogus"); ok {
		t.Errorf("%s: bogus class resolved", t.Name())
	}
}

func TestQuery_properties(t *testing.T) {
	type testrow struct {
		Rune   rune
		Mask   Ptype
		Output bool
	}

	data := []testrow{
		testrow{' ', WhiteSpace, true},
		testrow{'x', WhiteSpace, false},
		testrow{'-', Dash, true},
		testrow{'-', Hyphen, true},
		testrow{'"', QuotationMark, true},
		testrow{'.', TerminalPunctuation, true},
		testrow{'f', HexDigit, true},
		testrow{'g', HexDigit, false},
		testrow{'x', WhiteSpace | Dash, false},
		testrow{'-', WhiteSpace | Dash, true},
	}

	for i, row := range data {
		if got := Query(row.Rune).HasProperty(row.Mask); got != row.Output {
			t.Errorf("%s/%03d: Query(%q).HasProperty(%#x) = %v, want %v",
				t.Name(), i, row.Rune, row.Mask, got, row.Output)
		}
	}
}

func TestQuery_categories(t *testing.T) {
	type testrow struct {
		Rune   rune
		Mask   Gctype
		Output bool
	}

	data := []testrow{
		testrow{'A', Lu, true},
		testrow{'a', Ll, true},
		testrow{'a', Lu, false},
		testrow{'5', Nd, true},
		testrow{'(', Ps, true},
		testrow{'$', Sc, true},
		testrow{'x', L, true},
		testrow{'5', N, true},
		testrow{'x', N, false},
		testrow{' ', Zs, true},
	}

	for i, row := range data {
		if got := Query(row.Rune).InCategory(row.Mask); got != row.Output {
			t.Errorf("%s/%03d: Query(%q).InCategory(%#x) = %v, want %v",
				t.Name(), i, row.Rune, row.Mask, got, row.Output)
		}
	}
}

func TestQuery_scripts(t *testing.T) {
	type testrow struct {
		Rune   rune
		Script Sctype
	}

	data := []testrow{
		testrow{'x', ScLatin},
		testrow{'П', ScCyrillic},
		testrow{'λ', ScGreek},
		testrow{'א', ScHebrew},
		testrow{'ひ', ScHiragana},
		testrow{'字', ScHan},
		testrow{'1', ScCommon},
	}

	for i, row := range data {
		if got := Query(row.Rune).Script(); got != row.Script {
			t.Errorf("%s/%03d: Query(%q).Script() = %d, want %d",
				t.Name(), i, row.Rune, got, row.Script)
		}
	}
}

func TestScriptFromString(t *testing.T) {
	if sc, ok := ScriptFromString("Cyrillic"); !ok || sc != ScCyrillic {
		t.Errorf("%s: Cyrillic not resolved", t.Name())
	}
	if _, ok := ScriptFromString("Klingon"); ok {
		t.Errorf("%s: unknown script resolved", t.Name())
	}
}

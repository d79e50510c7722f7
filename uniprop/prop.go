package uniprop

import (
	"unicode"
)

// Ptype is a bitmask of Unicode binary properties.
type Ptype uint64

const (
	WhiteSpace Ptype = 1 << iota
	Dash
	Hyphen
	QuotationMark
	TerminalPunctuation
	Diacritic
	Extender
	HexDigit
	Ideographic
	JoinControl
	NoncharacterCodePoint
	PatternSyntax
	PatternWhiteSpace
	SoftDotted
)

var propTables = []struct {
	mask  Ptype
	table *unicode.RangeTable
}{
	{WhiteSpace, unicode.White_Space},
	{Dash, unicode.Properties["Dash"]},
	{Hyphen, unicode.Properties["Hyphen"]},
	{QuotationMark, unicode.Properties["Quotation_Mark"]},
	{TerminalPunctuation, unicode.Properties["Terminal_Punctuation"]},
	{Diacritic, unicode.Properties["Diacritic"]},
	{Extender, unicode.Properties["Extender"]},
	{HexDigit, unicode.Properties["Hex_Digit"]},
	{Ideographic, unicode.Properties["Ideographic"]},
	{JoinControl, unicode.Properties["Join_Control"]},
	{NoncharacterCodePoint, unicode.Properties["Noncharacter_Code_Point"]},
	{PatternSyntax, unicode.Properties["Pattern_Syntax"]},
	{PatternWhiteSpace, unicode.Properties["Pattern_White_Space"]},
	{SoftDotted, unicode.Properties["Soft_Dotted"]},
}

// Gctype is a bitmask of Unicode general categories.
type Gctype uint32

const (
	Lu Gctype = 1 << iota
	Ll
	Lt
	Lm
	Lo
	Mn
	Mc
	Me
	Nd
	Nl
	No
	Pc
	Pd
	Ps
	Pe
	Pi
	Pf
	Po
	Sm
	Sc
	Sk
	So
	Zs
	Zl
	Zp
	Cc
	Cf
	Co
	Cs
)

// Composite category masks.
const (
	L Gctype = Lu | Ll | Lt | Lm | Lo
	M Gctype = Mn | Mc | Me
	N Gctype = Nd | Nl | No
	P Gctype = Pc | Pd | Ps | Pe | Pi | Pf | Po
	S Gctype = Sm | Sc | Sk | So
	Z Gctype = Zs | Zl | Zp
	C Gctype = Cc | Cf | Co | Cs
)

var gctypeTables = []struct {
	mask  Gctype
	table *unicode.RangeTable
}{
	{Lu, unicode.Lu}, {Ll, unicode.Ll}, {Lt, unicode.Lt}, {Lm, unicode.Lm}, {Lo, unicode.Lo},
	{Mn, unicode.Mn}, {Mc, unicode.Mc}, {Me, unicode.Me},
	{Nd, unicode.Nd}, {Nl, unicode.Nl}, {No, unicode.No},
	{Pc, unicode.Pc}, {Pd, unicode.Pd}, {Ps, unicode.Ps}, {Pe, unicode.Pe},
	{Pi, unicode.Pi}, {Pf, unicode.Pf}, {Po, unicode.Po},
	{Sm, unicode.Sm}, {Sc, unicode.Sc}, {Sk, unicode.Sk}, {So, unicode.So},
	{Zs, unicode.Zs}, {Zl, unicode.Zl}, {Zp, unicode.Zp},
	{Cc, unicode.Cc}, {Cf, unicode.Cf}, {Co, unicode.Co}, {Cs, unicode.Cs},
}

// Sctype identifies a Unicode script. ScUnknown is the zero value.
type Sctype uint16

const (
	ScUnknown Sctype = iota
	ScLatin
	ScGreek
	ScCyrillic
	ScArmenian
	ScHebrew
	ScArabic
	ScDevanagari
	ScBengali
	ScTamil
	ScThai
	ScGeorgian
	ScHangul
	ScEthiopic
	ScCherokee
	ScMongolian
	ScHiragana
	ScKatakana
	ScBopomofo
	ScHan
	ScTibetan
	ScMyanmar
	ScKhmer
	ScRunic
	ScOgham
	ScCommon
	ScInherited

	numScripts
)

var scriptTables = [numScripts]*unicode.RangeTable{
	ScLatin:      unicode.Latin,
	ScGreek:      unicode.Greek,
	ScCyrillic:   unicode.Cyrillic,
	ScArmenian:   unicode.Armenian,
	ScHebrew:     unicode.Hebrew,
	ScArabic:     unicode.Arabic,
	ScDevanagari: unicode.Devanagari,
	ScBengali:    unicode.Bengali,
	ScTamil:      unicode.Tamil,
	ScThai:       unicode.Thai,
	ScGeorgian:   unicode.Georgian,
	ScHangul:     unicode.Hangul,
	ScEthiopic:   unicode.Ethiopic,
	ScCherokee:   unicode.Cherokee,
	ScMongolian:  unicode.Mongolian,
	ScHiragana:   unicode.Hiragana,
	ScKatakana:   unicode.Katakana,
	ScBopomofo:   unicode.Bopomofo,
	ScHan:        unicode.Han,
	ScTibetan:    unicode.Tibetan,
	ScMyanmar:    unicode.Myanmar,
	ScKhmer:      unicode.Khmer,
	ScRunic:      unicode.Runic,
	ScOgham:      unicode.Ogham,
	ScCommon:     unicode.Common,
	ScInherited:  unicode.Inherited,
}

var scriptNames = map[string]Sctype{
	"Latin": ScLatin, "Greek": ScGreek, "Cyrillic": ScCyrillic,
	"Armenian": ScArmenian, "Hebrew": ScHebrew, "Arabic": ScArabic,
	"Devanagari": ScDevanagari, "Bengali": ScBengali, "Tamil": ScTamil,
	"Thai": ScThai, "Georgian": ScGeorgian, "Hangul": ScHangul,
	"Ethiopic": ScEthiopic, "Cherokee": ScCherokee, "Mongolian": ScMongolian,
	"Hiragana": ScHiragana, "Katakana": ScKatakana, "Bopomofo": ScBopomofo,
	"Han": ScHan, "Tibetan": ScTibetan, "Myanmar": ScMyanmar,
	"Khmer": ScKhmer, "Runic": ScRunic, "Ogham": ScOgham,
	"Common": ScCommon, "Inherited": ScInherited,
}

// ScriptFromString maps a script name like "Cyrillic" to its Sctype.
func ScriptFromString(name string) (Sctype, bool) {
	sc, ok := scriptNames[name]
	return sc, ok
}

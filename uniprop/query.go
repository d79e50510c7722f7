package uniprop

import (
	"unicode"
)

// Record is the property record for one rune.
type Record struct {
	Rune  rune
	ctype Ctype
}

// Query returns the property record for r.
func Query(r rune) Record {
	return Record{Rune: r, ctype: classify(r)}
}

// Is reports whether the rune belongs to any class in the mask.
func (rec Record) Is(c Ctype) bool {
	return rec.ctype&c != 0
}

// HasProperty reports whether the rune carries any binary property in
// the mask.
func (rec Record) HasProperty(p Ptype) bool {
	for _, row := range propTables {
		if p&row.mask != 0 && row.table != nil && unicode.Is(row.table, rec.Rune) {
			return true
		}
	}
	return false
}

// InCategory reports whether the rune is in any general category in
// the mask.
func (rec Record) InCategory(g Gctype) bool {
	for _, row := range gctypeTables {
		if g&row.mask != 0 && unicode.Is(row.table, rec.Rune) {
			return true
		}
	}
	return false
}

// Script returns the script the rune belongs to, or ScUnknown.
// Specific scripts win over Common and Inherited.
func (rec Record) Script() Sctype {
	for sc := ScLatin; sc < ScCommon; sc++ {
		if unicode.Is(scriptTables[sc], rec.Rune) {
			return sc
		}
	}
	for sc := ScCommon; sc < numScripts; sc++ {
		if unicode.Is(scriptTables[sc], rec.Rune) {
			return sc
		}
	}
	return ScUnknown
}

package player

import "strings"

// MaxNameLength is the number of name slots a password can carry.
const MaxNameLength = 6

// NameAlphabet lists the characters allowed in a name. A character's
// code is its index plus one; code 0 marks an empty slot.
const NameAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz "

// emptySlotGrowth is what an unused name slot adds to the growth total.
const emptySlotGrowth = 15

// NameCode returns the code of r, or false if r cannot appear in a name.
func NameCode(r rune) (int, bool) {
	i := strings.IndexRune(NameAlphabet, r)
	if i < 0 {
		return 0, false
	}
	return i + 1, true
}

// NameRune is the inverse of NameCode.
func NameRune(code int) (rune, bool) {
	if code < 1 || code > len(NameAlphabet) {
		return 0, false
	}
	return rune(NameAlphabet[code-1]), true
}

// NormalizeName drops characters outside NameAlphabet, keeps at most
// MaxNameLength of them and trims surrounding spaces.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	n := 0
	for _, r := range name {
		if n == MaxNameLength {
			break
		}
		if _, ok := NameCode(r); !ok {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}

// Growth holds the per-name stat modifiers. A is a flat bonus; B and C
// pick which stats keep their base values.
type Growth struct {
	A, B, C int
}

// GrowthFor derives the modifiers from the normalized name.
func GrowthFor(name string) Growth {
	name = NormalizeName(name)
	total := 0
	slots := 0
	for _, r := range name {
		code, _ := NameCode(r)
		total += code % 16
		slots++
	}
	total += (MaxNameLength - slots) * emptySlotGrowth
	total %= 16
	return Growth{A: (total / 4) % 4, B: (total / 2) % 2, C: total % 2}
}

func (g Growth) apply(base int, keep bool) int {
	if keep {
		return base
	}
	return base*9/10 + g.A
}

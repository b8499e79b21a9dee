// Package password turns a hero into a short typeable string and back.
//
// Format version 2 packs 145 bits MSB-first:
//
//	name     6 x 6  character codes, 0 for an empty slot
//	level    5
//	exp      16
//	gold     16
//	hp       8
//	mp       8
//	weapon   3
//	armor    3
//	shield   2
//	herbs    4
//	keys     4
//	items    8 x 4  inventory slots, 0 for an empty slot
//	flags    6      scale, ring, necklace, dragon, golem, belt
//	padding  2      always zero
//
// The bits form 29 five-bit symbols, each added to a running sum so that
// similar heroes do not share long prefixes. A 20-bit trailer holds the
// format version and a CRC-16 of the scrambled symbols. Every symbol is
// written with the Crockford base32 alphabet.
package password

import (
	"slices"
	"strings"
	"unicode/utf8"

	"damdara/internal/fault"
	"damdara/internal/player"
	"damdara/internal/registry"
)

const (
	Version  = 2
	Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	Length   = payloadSymbols + trailerSymbols

	symbolBits     = 5
	payloadBits    = 145
	payloadSymbols = payloadBits / symbolBits
	trailerSymbols = 4
	scrambleKey    = 13
)

const (
	nameCodeBits = 6
	levelBits    = 5
	expBits      = 16
	goldBits     = 16
	hpBits       = 8
	mpBits       = 8
	weaponBits   = 3
	armorBits    = 3
	shieldBits   = 2
	countBits    = 4
	itemBits     = 4
	flagBits     = 6
	padBits      = 2
)

// Encode validates p against reg and returns its password.
func Encode(reg *registry.Registry, p *player.Player) (string, error) {
	if p == nil {
		return "", fault.ErrNoActivePlayer
	}
	if err := p.Validate(reg); err != nil {
		return "", err
	}
	for _, f := range []struct {
		what  string
		id    int
		width int
	}{
		{"weapon", p.Weapon, weaponBits},
		{"armor", p.Armor, armorBits},
		{"shield", p.Shield, shieldBits},
		{"item", slices.Max(p.Items[:]), itemBits},
	} {
		if f.id >= 1<<f.width {
			return "", fault.New(fault.InvalidEquipment, "%s %d does not fit in a password", f.what, f.id)
		}
	}

	var w bitWriter
	runes := []rune(p.Name)
	for i := 0; i < player.MaxNameLength; i++ {
		code := 0
		if i < len(runes) {
			code, _ = player.NameCode(runes[i])
		}
		w.write(code, nameCodeBits)
	}
	w.write(p.Level, levelBits)
	w.write(p.Experience, expBits)
	w.write(p.Gold, goldBits)
	w.write(p.HP, hpBits)
	w.write(p.MP, mpBits)
	w.write(p.Weapon, weaponBits)
	w.write(p.Armor, armorBits)
	w.write(p.Shield, shieldBits)
	w.write(p.Herbs, countBits)
	w.write(p.Keys, countBits)
	for _, id := range p.Items {
		w.write(id, itemBits)
	}
	w.write(packFlags(p.Flags), flagBits)
	w.write(0, padBits)

	symbols := scramble(w.symbols())
	trailer := Version<<16 | int(crc16(symbols))
	for i := trailerSymbols - 1; i >= 0; i-- {
		symbols = append(symbols, trailer>>(i*symbolBits)&0x1F)
	}

	var b strings.Builder
	b.Grow(Length)
	for _, s := range symbols {
		b.WriteByte(Alphabet[s])
	}
	return b.String(), nil
}

// Decode parses a password and returns the hero it describes. Leading and
// trailing whitespace is ignored; anything else that is wrong yields an
// InvalidPassword error and no hero.
func Decode(reg *registry.Registry, s string) (*player.Player, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fault.New(fault.InvalidPassword, "password is empty")
	}
	if n := utf8.RuneCountInString(s); n != Length {
		return nil, fault.New(fault.InvalidPassword, "password must be %d characters, got %d", Length, n)
	}

	symbols := make([]int, 0, Length)
	for i, r := range []rune(s) {
		v := strings.IndexRune(Alphabet, r)
		if v < 0 {
			return nil, fault.New(fault.InvalidPassword, "character %q is not allowed", r).With("position", i+1)
		}
		symbols = append(symbols, v)
	}

	payload, tail := symbols[:payloadSymbols], symbols[payloadSymbols:]
	trailer := 0
	for _, t := range tail {
		trailer = trailer<<symbolBits | t
	}
	if uint16(trailer&0xFFFF) != crc16(payload) {
		return nil, fault.New(fault.InvalidPassword, "checksum mismatch")
	}
	if v := trailer >> 16; v != Version {
		return nil, fault.New(fault.InvalidPassword, "unsupported password version %d", v)
	}

	r := newBitReader(unscramble(payload))
	name, err := readName(r)
	if err != nil {
		return nil, err
	}
	p := &player.Player{
		Name:       name,
		Level:      r.read(levelBits),
		Experience: r.read(expBits),
		Gold:       r.read(goldBits),
		HP:         r.read(hpBits),
		MP:         r.read(mpBits),
		Weapon:     r.read(weaponBits),
		Armor:      r.read(armorBits),
		Shield:     r.read(shieldBits),
		Herbs:      r.read(countBits),
		Keys:       r.read(countBits),
	}
	for i := range p.Items {
		p.Items[i] = r.read(itemBits)
	}
	p.Flags = unpackFlags(r.read(flagBits))
	if r.read(padBits) != 0 {
		return nil, fault.New(fault.InvalidPassword, "padding bits are set")
	}
	if err := p.Validate(reg); err != nil {
		return nil, fault.New(fault.InvalidPassword, "password describes an impossible hero").WithCause(err)
	}
	return p, nil
}

func readName(r *bitReader) (string, error) {
	var b strings.Builder
	ended := false
	for i := 0; i < player.MaxNameLength; i++ {
		code := r.read(nameCodeBits)
		if code == 0 {
			ended = true
			continue
		}
		if ended {
			return "", fault.New(fault.InvalidPassword, "name has a gap at slot %d", i)
		}
		c, ok := player.NameRune(code)
		if !ok {
			return "", fault.New(fault.InvalidPassword, "name code %d is not a character", code)
		}
		b.WriteRune(c)
	}
	return b.String(), nil
}

func scramble(symbols []int) []int {
	out := make([]int, len(symbols))
	prev := 0
	for i, s := range symbols {
		out[i] = (s + scrambleKey + prev) & 0x1F
		prev = out[i]
	}
	return out
}

func unscramble(symbols []int) []int {
	out := make([]int, len(symbols))
	prev := 0
	for i, s := range symbols {
		out[i] = (s - scrambleKey - prev) & 0x1F
		prev = s
	}
	return out
}

func packFlags(f player.Flags) int {
	v := 0
	for _, set := range []bool{f.DragonScale, f.WarriorRing, f.CursedNecklace, f.DefeatedDragon, f.DefeatedGolem, f.CursedBelt} {
		v <<= 1
		if set {
			v |= 1
		}
	}
	return v
}

func unpackFlags(v int) player.Flags {
	bit := func(i int) bool { return v>>(flagBits-1-i)&1 == 1 }
	return player.Flags{
		DragonScale:    bit(0),
		WarriorRing:    bit(1),
		CursedNecklace: bit(2),
		DefeatedDragon: bit(3),
		DefeatedGolem:  bit(4),
		CursedBelt:     bit(5),
	}
}

// Package player owns the progression rules of the single hero: levels,
// derived stats, rewards, equipment and the shop.
package player

import (
	"damdara/internal/fault"
	"damdara/internal/registry"
)

const (
	MaxExperience = 65535
	MaxGold       = 65535
	MaxItemCount  = 6

	// InventorySlots is the number of slots for items other than herbs and
	// keys. Slot value 0 marks an empty slot.
	InventorySlots = 8
)

// Flags are progression markers that change derived stats or are
// remembered across saves.
type Flags struct {
	DragonScale    bool `json:"dragon_scale"`
	WarriorRing    bool `json:"warrior_ring"`
	CursedNecklace bool `json:"cursed_necklace"`
	DefeatedDragon bool `json:"defeated_dragon"`
	DefeatedGolem  bool `json:"defeated_golem"`
	CursedBelt     bool `json:"cursed_belt"`
}

// Player is the mutable hero record. Strength, agility and the hp/mp caps
// are not stored; they follow from Name and Level.
type Player struct {
	Name       string
	Level      int
	HP         int
	MP         int
	Experience int
	Gold       int
	Weapon     int
	Armor      int
	Shield     int
	Herbs      int
	Keys       int
	Items      [InventorySlots]int
	Flags      Flags
}

// Args seeds NewWith. Zero fields take their defaults; Experience is
// raised to the threshold of Level when it falls short.
type Args struct {
	Name       string
	Level      int
	Experience int
	Gold       int
	Weapon     int
	Armor      int
	Shield     int
	Herbs      int
	Keys       int
	Items      [InventorySlots]int
	Flags      Flags
}

// New creates a level 1 hero with full hp and mp.
func New(name string) (*Player, error) {
	return NewWith(Args{Name: name})
}

// NewWith creates a hero from explicit progression values. Equipment ids
// are not checked here; Validate does that against a registry.
func NewWith(args Args) (*Player, error) {
	name := NormalizeName(args.Name)
	if name == "" {
		return nil, fault.New(fault.EmptyName, "name %q has no usable characters", args.Name)
	}
	exp := min(max(args.Experience, ExperienceFor(args.Level), 0), MaxExperience)
	level := LevelForExperience(exp)
	stats := StatsFor(name, level)
	p := &Player{
		Name:       name,
		Level:      level,
		HP:         stats.MaxHP,
		MP:         stats.MaxMP,
		Experience: exp,
		Gold:       min(max(args.Gold, 0), MaxGold),
		Weapon:     args.Weapon,
		Armor:      args.Armor,
		Shield:     args.Shield,
		Herbs:      min(max(args.Herbs, 0), MaxItemCount),
		Keys:       min(max(args.Keys, 0), MaxItemCount),
		Items:      args.Items,
		Flags:      args.Flags,
	}
	return p, nil
}

// Stats returns the hero's level row after name growth.
func (p *Player) Stats() LevelStats {
	return StatsFor(p.Name, p.Level)
}

func (p *Player) MaxHP() int    { return p.Stats().MaxHP }
func (p *Player) MaxMP() int    { return p.Stats().MaxMP }
func (p *Player) Strength() int { return p.Stats().Strength }
func (p *Player) Agility() int  { return p.Stats().Agility }

func (p *Player) Alive() bool { return p.HP > 0 }

// Derived is the full derived-stat view of a hero.
type Derived struct {
	MaxHP        int
	MaxMP        int
	Strength     int
	Agility      int
	AttackPower  int
	DefensePower int
	Weapon       registry.WeaponSpec
	Armor        registry.ArmorSpec
	Shield       registry.ShieldSpec
}

// Derive computes the stats that are never persisted. It fails when an
// equipped id does not resolve in reg.
func (p *Player) Derive(reg *registry.Registry) (Derived, error) {
	w, err := reg.Weapon(p.Weapon)
	if err != nil {
		return Derived{}, fault.New(fault.InvalidEquipment, "weapon %d is not in the registry", p.Weapon).WithCause(err)
	}
	a, err := reg.Armor(p.Armor)
	if err != nil {
		return Derived{}, fault.New(fault.InvalidEquipment, "armor %d is not in the registry", p.Armor).WithCause(err)
	}
	s, err := reg.Shield(p.Shield)
	if err != nil {
		return Derived{}, fault.New(fault.InvalidEquipment, "shield %d is not in the registry", p.Shield).WithCause(err)
	}

	st := p.Stats()
	d := Derived{
		MaxHP:        st.MaxHP,
		MaxMP:        st.MaxMP,
		Strength:     st.Strength,
		Agility:      st.Agility,
		AttackPower:  st.Strength + w.Attack,
		DefensePower: st.Agility/2 + a.Defense + s.Defense,
		Weapon:       w,
		Armor:        a,
		Shield:       s,
	}
	if p.Flags.WarriorRing {
		d.AttackPower += 2
	}
	if p.Flags.DragonScale {
		d.DefensePower += 2
	}
	return d, nil
}

// AwardExperienceAndGold adds the rewards, saturating at their caps, and
// returns every level gained in order. Current hp and mp are left alone;
// only their caps rise.
func (p *Player) AwardExperienceAndGold(exp, gold int) []int {
	p.Experience = min(p.Experience+max(exp, 0), MaxExperience)
	p.Gold = min(p.Gold+max(gold, 0), MaxGold)

	var gained []int
	for p.Level < MaxLevel && p.Experience >= ExperienceFor(p.Level+1) {
		p.Level++
		gained = append(gained, p.Level)
	}
	return gained
}

// maxItems is the quest-complete bag: scale, ring, token, love, harp,
// stones, staff and drop.
var maxItems = [InventorySlots]int{5, 7, 8, 9, 11, 13, 14, 15}

// Maximize gives the hero the best of everything: capped experience and
// gold, the strongest gear, full item pouches, a bag of quest items, every
// flag but the belt curse, full hp and mp.
func (p *Player) Maximize() {
	p.AwardExperienceAndGold(MaxExperience, MaxGold)
	p.Weapon, p.Armor, p.Shield = 7, 7, 3
	p.Herbs, p.Keys = MaxItemCount, MaxItemCount
	p.Items = maxItems
	p.Flags = Flags{
		DragonScale:    true,
		WarriorRing:    true,
		CursedNecklace: true,
		DefeatedDragon: true,
		DefeatedGolem:  true,
	}
	p.HP, p.MP = p.MaxHP(), p.MaxMP()
}

// AdjustHP changes hp by delta, clamped to 0..MaxHP, and returns the
// amount actually applied.
func (p *Player) AdjustHP(delta int) int {
	before := p.HP
	p.HP = min(max(p.HP+delta, 0), p.MaxHP())
	return p.HP - before
}

// AdjustMP is AdjustHP for mp.
func (p *Player) AdjustMP(delta int) int {
	before := p.MP
	p.MP = min(max(p.MP+delta, 0), p.MaxMP())
	return p.MP - before
}

// Validate checks every invariant a restored or hand-built hero must hold.
func (p *Player) Validate(reg *registry.Registry) error {
	switch {
	case p.Name == "" || NormalizeName(p.Name) != p.Name:
		return fault.New(fault.EmptyName, "name %q is not a valid name", p.Name)
	case p.Level < 1 || p.Level > MaxLevel:
		return fault.New(fault.InvalidPassword, "level %d is out of range", p.Level)
	case p.Experience < 0 || p.Experience > MaxExperience:
		return fault.New(fault.InvalidPassword, "experience %d is out of range", p.Experience)
	case LevelForExperience(p.Experience) != p.Level:
		return fault.New(fault.InvalidPassword, "level %d does not match experience %d", p.Level, p.Experience)
	case p.Gold < 0 || p.Gold > MaxGold:
		return fault.New(fault.InvalidPassword, "gold %d is out of range", p.Gold)
	case p.HP < 0 || p.HP > p.MaxHP():
		return fault.New(fault.InvalidPassword, "hp %d exceeds %d", p.HP, p.MaxHP())
	case p.MP < 0 || p.MP > p.MaxMP():
		return fault.New(fault.InvalidPassword, "mp %d exceeds %d", p.MP, p.MaxMP())
	case p.Herbs < 0 || p.Herbs > MaxItemCount:
		return fault.New(fault.InvalidPassword, "herb count %d is out of range", p.Herbs)
	case p.Keys < 0 || p.Keys > MaxItemCount:
		return fault.New(fault.InvalidPassword, "key count %d is out of range", p.Keys)
	}
	for i, id := range p.Items {
		if id == 0 {
			continue
		}
		it, err := reg.Item(id)
		if err != nil {
			return fault.New(fault.InvalidEquipment, "slot %d holds item %d, which is not in the registry", i, id).WithCause(err)
		}
		if it.Counted() {
			return fault.New(fault.InvalidEquipment, "slot %d holds %s, which is carried as a count", i, it.Name)
		}
	}
	_, err := p.Derive(reg)
	return err
}

package player

import (
	"strings"

	"damdara/internal/fault"
	"damdara/internal/registry"
)

// Slot names an equipment slot.
type Slot string

const (
	SlotWeapon Slot = "weapon"
	SlotArmor  Slot = "armor"
	SlotShield Slot = "shield"
)

// ParseSlot accepts a slot name in any case.
func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotWeapon:
		return SlotWeapon, nil
	case SlotArmor:
		return SlotArmor, nil
	case SlotShield:
		return SlotShield, nil
	}
	return "", fault.New(fault.InvalidEquipment, "unknown equipment slot %q", s)
}

type gear struct {
	name  string
	price int
	sell  int
}

func lookupGear(reg *registry.Registry, slot Slot, id int) (gear, error) {
	var (
		g   gear
		err error
	)
	switch slot {
	case SlotWeapon:
		var w registry.WeaponSpec
		w, err = reg.Weapon(id)
		g = gear{w.Name, w.Price, w.Sell}
	case SlotArmor:
		var a registry.ArmorSpec
		a, err = reg.Armor(id)
		g = gear{a.Name, a.Price, a.Sell}
	case SlotShield:
		var s registry.ShieldSpec
		s, err = reg.Shield(id)
		g = gear{s.Name, s.Price, s.Sell}
	default:
		return gear{}, fault.New(fault.InvalidEquipment, "unknown equipment slot %q", slot)
	}
	if err != nil {
		return gear{}, fault.New(fault.InvalidEquipment, "%s %d is not in the registry", slot, id).WithCause(err)
	}
	return g, nil
}

func (p *Player) slot(slot Slot) *int {
	switch slot {
	case SlotWeapon:
		return &p.Weapon
	case SlotArmor:
		return &p.Armor
	case SlotShield:
		return &p.Shield
	}
	return nil
}

// Equip puts item id into slot without charging for it.
func (p *Player) Equip(reg *registry.Registry, slot Slot, id int) error {
	if _, err := lookupGear(reg, slot, id); err != nil {
		return err
	}
	*p.slot(slot) = id
	return nil
}

// Unequip empties slot.
func (p *Player) Unequip(slot Slot) error {
	ptr := p.slot(slot)
	if ptr == nil {
		return fault.New(fault.InvalidEquipment, "unknown equipment slot %q", slot)
	}
	*ptr = 0
	return nil
}

// Buy equips item id after trading in whatever occupies slot at its sell
// price. It returns the gold spent.
func (p *Player) Buy(reg *registry.Registry, slot Slot, id int) (int, error) {
	want, err := lookupGear(reg, slot, id)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fault.New(fault.InvalidEquipment, "nothing to buy in the %s slot", slot)
	}
	current := *p.slot(slot)
	if current == id {
		return 0, fault.New(fault.InvalidEquipment, "%s is already equipped", want.name)
	}
	have, err := lookupGear(reg, slot, current)
	if err != nil {
		return 0, err
	}
	cost := max(want.price-have.sell, 0)
	if cost > p.Gold {
		return 0, fault.New(fault.InvalidEquipment, "%s costs %d gold, have %d", want.name, cost, p.Gold).
			With("trade_in", have.sell)
	}
	p.Gold -= cost
	*p.slot(slot) = id
	return cost, nil
}

// BuyItem adds one of item id for its price. Herbs and keys go to their
// pouches; anything else takes the first free inventory slot.
func (p *Player) BuyItem(reg *registry.Registry, id int) error {
	it, err := reg.Item(id)
	if err != nil {
		return fault.New(fault.InvalidEquipment, "item %d is not in the registry", id).WithCause(err)
	}
	if it.Price == 0 {
		return fault.New(fault.InvalidEquipment, "%s is not for sale", it.Name)
	}
	count := p.itemCount(id)
	switch {
	case count != nil && *count >= MaxItemCount:
		return fault.New(fault.InvalidEquipment, "cannot carry more than %d of %s", MaxItemCount, it.Name)
	case count == nil && p.freeSlot() < 0:
		return fault.New(fault.InvalidEquipment, "no free slot for %s", it.Name).With("slots", InventorySlots)
	case it.Price > p.Gold:
		return fault.New(fault.InvalidEquipment, "%s costs %d gold, have %d", it.Name, it.Price, p.Gold)
	}
	p.Gold -= it.Price
	if count != nil {
		*count++
		return nil
	}
	p.Items[p.freeSlot()] = id
	return nil
}

// AddItem places item id in the first free inventory slot. Herbs and keys
// are not slot items.
func (p *Player) AddItem(reg *registry.Registry, id int) error {
	it, err := reg.Item(id)
	if err != nil {
		return fault.New(fault.InvalidEquipment, "item %d is not in the registry", id).WithCause(err)
	}
	if it.Counted() {
		return fault.New(fault.InvalidEquipment, "%s is not a slot item", it.Name)
	}
	slot := p.freeSlot()
	if slot < 0 {
		return fault.New(fault.InvalidEquipment, "no free slot for %s", it.Name).With("slots", InventorySlots)
	}
	p.Items[slot] = id
	return nil
}

// ItemCount returns how many of item id the hero carries.
func (p *Player) ItemCount(id int) int {
	if c := p.itemCount(id); c != nil {
		return *c
	}
	n := 0
	for _, v := range p.Items {
		if v == id {
			n++
		}
	}
	return n
}

// HasItem reports whether the hero carries at least one of item id.
func (p *Player) HasItem(id int) bool {
	return p.ItemCount(id) > 0
}

// TakeItem removes one of item id, reporting false if none is carried.
func (p *Player) TakeItem(id int) bool {
	if c := p.itemCount(id); c != nil {
		if *c == 0 {
			return false
		}
		*c--
		return true
	}
	for i, v := range p.Items {
		if v == id {
			p.Items[i] = 0
			return true
		}
	}
	return false
}

func (p *Player) freeSlot() int {
	for i, v := range p.Items {
		if v == 0 {
			return i
		}
	}
	return -1
}

func (p *Player) itemCount(id int) *int {
	switch id {
	case registry.ItemHerb:
		return &p.Herbs
	case registry.ItemKey:
		return &p.Keys
	}
	return nil
}

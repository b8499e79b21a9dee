package battle

import "damdara/internal/registry"

const critOdds = 32

// escapeRange returns the upper bound of the monster's side of the escape
// roll. Stronger monsters are harder to outrun.
func escapeRange(monsterID int) int {
	switch {
	case monsterID < 20:
		return 63
	case monsterID < 30:
		return 94
	case monsterID < 35:
		return 127
	}
	return 255
}

func (b *Battle) next() Action {
	if len(b.queue) == 0 {
		return Action{Kind: Attack}
	}
	a := b.queue[0]
	b.queue = b.queue[1:]
	return a
}

func (b *Battle) heroTurn() {
	b.defending = false
	action := b.next()
	name := b.hero.Name

	if b.heroAsleep {
		if !chance(b.dice, 1, 3) {
			b.logf("%s is fast asleep.", name)
			return
		}
		b.heroAsleep = false
		b.wake("%s wakes up.", name)
	}

	switch action.Kind {
	case Attack:
		b.heroAttack()
	case Defend:
		b.defending = true
		b.logf("%s braces for the next blow.", name)
	case CastSpell:
		b.heroSpell(action.ID)
	case UseItem:
		b.heroItem(action.ID)
	case Flee:
		b.heroFlee()
	default:
		b.logf("%s hesitates.", name)
	}
}

func (b *Battle) heroAttack() {
	m := &b.monster
	name := b.hero.Name

	if chance(b.dice, m.Evade, 256) {
		b.logf("%s attacks! The %s dodges.", name, m.Name)
		return
	}
	atk := b.derived.AttackPower
	if !m.Boss && chance(b.dice, 1, critOdds) {
		dmg := max(atk-(atk/2*b.dice.IntN(256))/256, 1)
		b.logf("%s lands an excellent hit! The %s takes %d damage.", name, m.Name, dmg)
		b.hurtMonster(dmg)
		return
	}
	dmg := Damage(atk, m.Defense)
	b.logf("%s attacks! The %s takes %d damage.", name, m.Name, dmg)
	b.hurtMonster(dmg)
}

func (b *Battle) heroSpell(id int) {
	name := b.hero.Name
	m := &b.monster

	spell, err := b.reg.Spell(id)
	if err != nil {
		b.logf("%s tries to recall a spell that does not exist.", name)
		return
	}
	if b.hero.Level < spell.Level {
		b.logf("%s has not learned %s.", name, spell.Name)
		return
	}
	if b.hero.MP < spell.MP {
		b.logf("%s does not have enough MP for %s.", name, spell.Name)
		return
	}
	b.hero.AdjustMP(-spell.MP)
	if b.heroSealed {
		b.logf("%s casts %s! But the spell has been blocked.", name, spell.Name)
		return
	}

	switch spell.Effect {
	case registry.EffectHeal:
		healed := b.hero.AdjustHP(between(b.dice, spell.Min, spell.Max))
		b.logf("%s casts %s and recovers %d HP.", name, spell.Name, healed)
	case registry.EffectHurt:
		if chance(b.dice, m.Resist.Hurt, 16) {
			b.logf("%s casts %s! The %s is unaffected.", name, spell.Name, m.Name)
			return
		}
		dmg := between(b.dice, spell.Min, spell.Max)
		b.logf("%s casts %s! The %s takes %d damage.", name, spell.Name, m.Name, dmg)
		b.hurtMonster(dmg)
	case registry.EffectSleep:
		if chance(b.dice, m.Resist.Sleep, 16) {
			b.logf("%s casts %s! The %s is unaffected.", name, spell.Name, m.Name)
			return
		}
		m.Asleep = true
		b.logf("%s casts %s! The %s falls asleep.", name, spell.Name, m.Name)
	case registry.EffectStopspell:
		if chance(b.dice, m.Resist.Stopspell, 16) {
			b.logf("%s casts %s! The %s is unaffected.", name, spell.Name, m.Name)
			return
		}
		m.Sealed = true
		b.logf("%s casts %s! The %s's spells are sealed.", name, spell.Name, m.Name)
	default:
		b.logf("%s casts %s, but nothing happens.", name, spell.Name)
	}
}

func (b *Battle) heroItem(id int) {
	name := b.hero.Name
	m := &b.monster

	item, err := b.reg.Item(id)
	if err != nil {
		b.logf("%s rummages for an item that does not exist.", name)
		return
	}
	if !item.Battle {
		b.logf("%s cannot use the %s in battle.", name, item.Name)
		return
	}
	if !b.hero.HasItem(id) {
		b.logf("%s has no %s left.", name, item.Name)
		return
	}

	flags := &b.hero.Flags
	switch item.Effect {
	case registry.ItemEffectHeal:
		b.hero.TakeItem(id)
		healed := b.hero.AdjustHP(between(b.dice, item.Min, item.Max))
		b.logf("%s uses a %s and recovers %d HP.", name, item.Name, healed)
	case registry.ItemEffectScale:
		if flags.DragonScale {
			b.logf("%s is already wearing the %s.", name, item.Name)
			return
		}
		flags.DragonScale = true
		b.rederive()
		b.logf("%s puts on the %s. Defense rises.", name, item.Name)
	case registry.ItemEffectRing:
		if flags.WarriorRing {
			b.logf("%s adjusts the %s.", name, item.Name)
			return
		}
		flags.WarriorRing = true
		b.rederive()
		b.logf("%s puts on the %s. Attack rises.", name, item.Name)
	case registry.ItemEffectFlute:
		if m.ID != GolemID {
			b.logf("%s plays the %s. But nothing happens.", name, item.Name)
			return
		}
		m.Asleep = true
		b.logf("%s plays the %s. The %s falls asleep.", name, item.Name, m.Name)
	case registry.ItemEffectHarp:
		b.logf("%s plays the %s. The %s looks happy.", name, item.Name, m.Name)
	case registry.ItemEffectBelt:
		flags.CursedBelt = true
		b.logf("%s puts on the %s. %s is cursed!", name, item.Name, name)
	case registry.ItemEffectNecklace:
		flags.CursedNecklace = true
		b.logf("%s puts on the %s. %s is cursed!", name, item.Name, name)
	default:
		b.logf("%s uses the %s. But nothing happens.", name, item.Name)
	}
}

// rederive refreshes the derived stats after a worn item changes them.
// Equipment was checked by Start, so Derive cannot fail here.
func (b *Battle) rederive() {
	if d, err := b.hero.Derive(b.reg); err == nil {
		b.derived = d
	}
}

func (b *Battle) heroFlee() {
	m := b.monster
	// An asleep monster cannot give chase.
	if m.Asleep || b.derived.Agility*b.dice.IntN(256) >= m.Defense*b.dice.IntN(escapeRange(m.ID)+1) {
		b.logf("%s runs away.", b.hero.Name)
		b.state = PlayerEscaped
		return
	}
	b.logf("%s tries to run, but the %s blocks the way.", b.hero.Name, m.Name)
}

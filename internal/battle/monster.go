package battle

import "damdara/internal/registry"

type spellRange struct{ lo, hi int }

var monsterRanges = map[string]spellRange{
	registry.ActionHeal:       {20, 27},
	registry.ActionHealmore:   {85, 100},
	registry.ActionHurt:       {3, 10},
	registry.ActionHurtmore:   {30, 45},
	registry.ActionFire:       {16, 23},
	registry.ActionFireStrong: {65, 72},
}

var monsterSpellNames = map[string]string{
	registry.ActionHeal:      "Heal",
	registry.ActionHealmore:  "Healmore",
	registry.ActionHurt:      "Hurt",
	registry.ActionHurtmore:  "Hurtmore",
	registry.ActionSleep:     "Sleep",
	registry.ActionStopspell: "Stopspell",
}

// monsterTurn follows a fixed policy:
//
//  1. A sleeping monster wakes with probability 1/3 and then acts,
//     otherwise it skips.
//  2. Against a hero at least twice its attack in strength it flees 1 time
//     in 4.
//  3. The first support action (heal, sleep, stopspell) whose rate roll
//     succeeds is used if it would help: heals only at a quarter hp or
//     less, sleep only on an awake hero, stopspell only on an unsealed one.
//  4. Otherwise the first damaging action whose rate roll succeeds.
//  5. Otherwise a plain attack.
func (b *Battle) monsterTurn() {
	m := &b.monster
	if m.Asleep {
		if !chance(b.dice, 1, 3) {
			b.logf("The %s is asleep.", m.Name)
			return
		}
		m.Asleep = false
		b.wake("The %s wakes up.", m.Name)
	}

	if b.derived.Strength >= 2*m.Attack && chance(b.dice, 1, 4) {
		b.logf("The %s runs away.", m.Name)
		b.state = MonsterEscaped
		return
	}

	if act, ok := b.pick(true); ok && b.useful(act) {
		b.monsterAction(act)
		return
	}
	if act, ok := b.pick(false); ok {
		b.monsterAction(act)
		return
	}
	b.monsterAttack()
}

func (b *Battle) pick(support bool) (registry.MonsterAction, bool) {
	for _, a := range b.monster.Actions {
		if a.Support() != support {
			continue
		}
		if chance(b.dice, a.Rate, 100) {
			return a, true
		}
	}
	return registry.MonsterAction{}, false
}

func (b *Battle) useful(a registry.MonsterAction) bool {
	switch a.Kind {
	case registry.ActionHeal, registry.ActionHealmore:
		return b.monster.HP <= b.monster.MaxHP/4
	case registry.ActionSleep:
		return !b.heroAsleep
	case registry.ActionStopspell:
		return !b.heroSealed
	}
	return false
}

func (b *Battle) monsterAttack() {
	dmg := Damage(b.monster.Attack, b.derived.DefensePower)
	if b.defending {
		dmg = max(dmg/2, 1)
	}
	b.logf("The %s attacks! %s takes %d damage.", b.monster.Name, b.hero.Name, dmg)
	b.hurtHero(dmg)
}

func (b *Battle) monsterAction(a registry.MonsterAction) {
	m := &b.monster
	name := b.hero.Name
	armor := b.derived.Armor

	if a.Kind == registry.ActionFire || a.Kind == registry.ActionFireStrong {
		r := monsterRanges[a.Kind]
		dmg := between(b.dice, r.lo, r.hi)
		if armor.FireGuard {
			dmg = dmg * 2 / 3
		}
		b.logf("The %s breathes fire! %s takes %d damage.", m.Name, name, dmg)
		b.hurtHero(dmg)
		return
	}

	spell := monsterSpellNames[a.Kind]
	if m.Sealed {
		b.logf("The %s casts %s! But the spell has been blocked.", m.Name, spell)
		return
	}

	switch a.Kind {
	case registry.ActionHeal, registry.ActionHealmore:
		r := monsterRanges[a.Kind]
		before := m.HP
		m.HP = min(m.HP+between(b.dice, r.lo, r.hi), m.MaxHP)
		b.logf("The %s casts %s and recovers %d HP.", m.Name, spell, m.HP-before)
	case registry.ActionHurt, registry.ActionHurtmore:
		r := monsterRanges[a.Kind]
		dmg := between(b.dice, r.lo, r.hi)
		if armor.SpellGuard {
			dmg = dmg * 2 / 3
		}
		b.logf("The %s casts %s! %s takes %d damage.", m.Name, spell, name, dmg)
		b.hurtHero(dmg)
	case registry.ActionSleep:
		b.heroAsleep = true
		b.logf("The %s casts %s! %s falls asleep.", m.Name, spell, name)
	case registry.ActionStopspell:
		if armor.SealProof {
			b.logf("The %s casts %s! But %s is unaffected.", m.Name, spell, name)
			return
		}
		b.heroSealed = true
		b.logf("The %s casts %s! %s's spells are sealed.", m.Name, spell, name)
	default:
		b.monsterAttack()
	}
}

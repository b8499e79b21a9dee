package registry

// Special actions a monster may take instead of a plain attack.
const (
	ActionHeal       = "heal"
	ActionHealmore   = "healmore"
	ActionSleep      = "sleep"
	ActionStopspell  = "stopspell"
	ActionHurt       = "hurt"
	ActionHurtmore   = "hurtmore"
	ActionFire       = "fire"
	ActionFireStrong = "fire_strong"
)

// Spell effects.
const (
	EffectHeal      = "heal"
	EffectHurt      = "hurt"
	EffectSleep     = "sleep"
	EffectStopspell = "stopspell"
	EffectField     = "field" // no use in battle
)

// Item effects when used in battle.
const (
	ItemEffectHeal     = "heal"
	ItemEffectScale    = "dragon_scale"
	ItemEffectFlute    = "fairy_flute"
	ItemEffectRing     = "warrior_ring"
	ItemEffectBelt     = "cursed_belt"
	ItemEffectNecklace = "death_necklace"
	ItemEffectHarp     = "silver_harp"
)

// MonsterSpec is one row of the monster table.
type MonsterSpec struct {
	ID      int             `yaml:"id" json:"id"`
	Name    string          `yaml:"name" json:"name"`
	HP      int             `yaml:"hp" json:"hp"`
	Attack  int             `yaml:"attack" json:"attack"`
	Defense int             `yaml:"defense" json:"defense"`
	Exp     int             `yaml:"exp" json:"exp"`
	Gold    int             `yaml:"gold" json:"gold"`
	Evade   int             `yaml:"evade" json:"evade"` // out of 256
	Resist  Resistance      `yaml:"resist" json:"resist"`
	Actions []MonsterAction `yaml:"actions" json:"actions,omitempty"`
	Boss    bool            `yaml:"boss" json:"boss,omitempty"`
}

// Resistance holds the chance, out of 16, that a spell has no effect.
type Resistance struct {
	Hurt      int `yaml:"hurt" json:"hurt"`
	Sleep     int `yaml:"sleep" json:"sleep"`
	Stopspell int `yaml:"stopspell" json:"stopspell"`
}

// MonsterAction is a special action tried with Rate percent probability.
type MonsterAction struct {
	Kind string `yaml:"kind" json:"kind"`
	Rate int    `yaml:"rate" json:"rate"`
}

// Support reports whether the action targets the monster itself or
// hinders the player rather than dealing damage.
func (a MonsterAction) Support() bool {
	switch a.Kind {
	case ActionHeal, ActionHealmore, ActionSleep, ActionStopspell:
		return true
	}
	return false
}

type WeaponSpec struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Price  int    `yaml:"price" json:"price"`
	Sell   int    `yaml:"sell" json:"sell"`
	Attack int    `yaml:"attack" json:"attack"`
}

type ArmorSpec struct {
	ID         int    `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Price      int    `yaml:"price" json:"price"`
	Sell       int    `yaml:"sell" json:"sell"`
	Defense    int    `yaml:"defense" json:"defense"`
	SpellGuard bool   `yaml:"spell_guard" json:"spell_guard,omitempty"`
	FireGuard  bool   `yaml:"fire_guard" json:"fire_guard,omitempty"`
	SealProof  bool   `yaml:"seal_proof" json:"seal_proof,omitempty"`
}

type ShieldSpec struct {
	ID      int    `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Price   int    `yaml:"price" json:"price"`
	Sell    int    `yaml:"sell" json:"sell"`
	Defense int    `yaml:"defense" json:"defense"`
}

// SpellSpec describes a player spell. Min and Max bound the heal or
// damage roll for heal and hurt effects.
type SpellSpec struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Level       int    `yaml:"level" json:"level"`
	MP          int    `yaml:"mp" json:"mp"`
	Effect      string `yaml:"effect" json:"effect"`
	Min         int    `yaml:"min" json:"min,omitempty"`
	Max         int    `yaml:"max" json:"max,omitempty"`
	Description string `yaml:"description" json:"description"`
}

// ItemSpec describes an item. Battle items carry an Effect; for heal
// effects Min and Max bound the roll. A Price of 0 means no shop sells it.
type ItemSpec struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Price       int    `yaml:"price" json:"price"`
	Sell        int    `yaml:"sell" json:"sell"`
	Battle      bool   `yaml:"battle" json:"battle"`
	Effect      string `yaml:"effect" json:"effect,omitempty"`
	Min         int    `yaml:"min" json:"min,omitempty"`
	Max         int    `yaml:"max" json:"max,omitempty"`
	Description string `yaml:"description" json:"description"`
}

// Counted reports whether the player carries the item as a plain count
// rather than in an inventory slot.
func (it ItemSpec) Counted() bool {
	return it.ID == ItemHerb || it.ID == ItemKey
}

// document is the shape of every data file. A file may fill any subset
// of the tables.
type document struct {
	Monsters []MonsterSpec `yaml:"monsters"`
	Weapons  []WeaponSpec  `yaml:"weapons"`
	Armors   []ArmorSpec   `yaml:"armors"`
	Shields  []ShieldSpec  `yaml:"shields"`
	Spells   []SpellSpec   `yaml:"spells"`
	Items    []ItemSpec    `yaml:"items"`
}

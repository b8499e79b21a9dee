// Package battle runs one fight between the hero and a monster. A battle
// consumes queued player actions front to back and falls back to attack
// once the queue runs dry.
package battle

import (
	"fmt"

	"damdara/internal/fault"
	"damdara/internal/player"
	"damdara/internal/registry"
)

// DefaultMaxRounds bounds a single Run regardless of how many actions are
// queued.
const DefaultMaxRounds = 255

// Monsters whose defeat is remembered on the hero.
const (
	GreenDragonID = 30
	GolemID       = 32
)

type State string

const (
	Idle           State = "idle"
	InProgress     State = "in_progress"
	Won            State = "won"
	Lost           State = "lost"
	PlayerEscaped  State = "player_escaped"
	MonsterEscaped State = "monster_escaped"
)

// Terminal reports whether no further round can be played.
func (s State) Terminal() bool {
	return s != Idle && s != InProgress
}

// Monster is a live copy of a MonsterSpec.
type Monster struct {
	registry.MonsterSpec
	MaxHP  int
	HP     int
	Asleep bool
	Sealed bool
}

// Result summarizes a finished battle.
type Result struct {
	Messages        []string `json:"messages"`
	Rounds          int      `json:"rounds"`
	State           State    `json:"state"`
	PlayerSurvived  bool     `json:"player_survived"`
	MonsterDefeated bool     `json:"monster_defeated"`
	PlayerEscaped   bool     `json:"player_escaped"`
	MonsterEscaped  bool     `json:"monster_escaped"`
	MonsterHP       int      `json:"monster_hp"`
	LevelsGained    []int    `json:"levels_gained,omitempty"`
}

type Battle struct {
	// MaxRounds caps Run. Zero or negative means DefaultMaxRounds.
	MaxRounds int

	reg     *registry.Registry
	hero    *player.Player
	derived player.Derived
	monster Monster
	dice    Dice

	queue    []Action
	state    State
	rounds   int
	limit    int
	messages []string
	gained   []int
	// pending opens the next message; a sleeper that wakes reports it as
	// part of the action it then takes.
	pending string

	heroAsleep bool
	heroSealed bool
	defending  bool
}

// Start sets up a battle against monsterID. The hero is mutated in place
// as the battle runs.
func Start(reg *registry.Registry, hero *player.Player, monsterID int, dice Dice) (*Battle, error) {
	if hero == nil {
		return nil, fault.ErrNoActivePlayer
	}
	spec, err := reg.Monster(monsterID)
	if err != nil {
		return nil, fault.New(fault.UnknownMonster, "monster %d does not exist", monsterID).WithCause(err)
	}
	derived, err := hero.Derive(reg)
	if err != nil {
		return nil, err
	}
	if dice == nil {
		dice = NewDice(0)
	}

	hp := max(spec.HP-spec.HP*dice.IntN(256)/1024, 1)
	b := &Battle{
		MaxRounds: DefaultMaxRounds,
		reg:       reg,
		hero:      hero,
		derived:   derived,
		monster:   Monster{MonsterSpec: spec, MaxHP: hp, HP: hp},
		dice:      dice,
		state:     Idle,
	}
	b.logf("A %s draws near!", spec.Name)
	return b, nil
}

// Queue appends actions to the pending queue.
func (b *Battle) Queue(actions ...Action) {
	b.queue = append(b.queue, actions...)
}

// Pending returns the actions Run did not consume.
func (b *Battle) Pending() []Action {
	out := make([]Action, len(b.queue))
	copy(out, b.queue)
	return out
}

func (b *Battle) State() State     { return b.state }
func (b *Battle) Monster() Monster { return b.monster }

// Run plays rounds until the battle reaches a terminal state. The battle
// lasts at most one round per queued action plus one more played with the
// default attack, and never more than MaxRounds. A battle still undecided
// after that ends with the monster leaving. Calling Run again on a
// finished battle returns the same result.
func (b *Battle) Run() Result {
	if b.state == Idle {
		b.state = InProgress
		b.limit = min(len(b.queue)+1, b.maxRounds())
		if !b.hero.Alive() {
			b.logf("%s is too wounded to fight.", b.hero.Name)
			b.state = Lost
		}
	}

	for !b.state.Terminal() {
		if b.rounds >= b.limit {
			b.logf("The %s grows bored and wanders off.", b.monster.Name)
			b.state = MonsterEscaped
			break
		}
		b.rounds++
		if b.heroFirst() {
			b.heroTurn()
			if !b.state.Terminal() {
				b.monsterTurn()
			}
		} else {
			b.monsterTurn()
			if !b.state.Terminal() {
				b.heroTurn()
			}
		}
	}
	return b.result()
}

func (b *Battle) maxRounds() int {
	if b.MaxRounds <= 0 {
		return DefaultMaxRounds
	}
	return b.MaxRounds
}

// heroFirst compares the hero's agility with the monster's speed, which
// the tables express through defense. Ties go to the hero.
func (b *Battle) heroFirst() bool {
	return b.derived.Agility >= b.monster.Defense
}

func (b *Battle) result() Result {
	msgs := make([]string, len(b.messages))
	copy(msgs, b.messages)
	return Result{
		Messages:        msgs,
		Rounds:          b.rounds,
		State:           b.state,
		PlayerSurvived:  b.state != Lost,
		MonsterDefeated: b.state == Won,
		PlayerEscaped:   b.state == PlayerEscaped,
		MonsterEscaped:  b.state == MonsterEscaped,
		MonsterHP:       b.monster.HP,
		LevelsGained:    append([]int(nil), b.gained...),
	}
}

// Damage is the plain physical damage formula. It never returns less
// than 1 so that every hit makes progress.
func Damage(attack, defense int) int {
	return max(attack-defense, 1)
}

// logf appends one message per resolved action. Outcome messages (the
// appearance, victory, level-ups, new spells, the monster wandering off)
// are logged on their own.
func (b *Battle) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if b.pending != "" {
		msg = b.pending + " " + msg
		b.pending = ""
	}
	b.messages = append(b.messages, msg)
}

// wake records that a sleeper woke; the note opens the message of the
// action it takes this turn.
func (b *Battle) wake(format string, args ...any) {
	b.pending = fmt.Sprintf(format, args...)
}

// amend extends the latest message with the consequence of its action.
func (b *Battle) amend(format string, args ...any) {
	if len(b.messages) == 0 {
		b.logf(format, args...)
		return
	}
	b.messages[len(b.messages)-1] += " " + fmt.Sprintf(format, args...)
}

func (b *Battle) hurtMonster(n int) {
	b.monster.HP = max(b.monster.HP-n, 0)
	if b.monster.HP == 0 {
		b.win()
	}
}

func (b *Battle) hurtHero(n int) {
	b.hero.AdjustHP(-n)
	if !b.hero.Alive() {
		b.amend("%s has died.", b.hero.Name)
		b.state = Lost
	}
}

func (b *Battle) win() {
	b.state = Won
	m := b.monster
	b.logf("The %s is defeated! %s gains %d experience and %d gold.", m.Name, b.hero.Name, m.Exp, m.Gold)

	before := b.hero.Level
	b.gained = b.hero.AwardExperienceAndGold(m.Exp, m.Gold)
	for _, lv := range b.gained {
		b.logf("%s reached level %d.", b.hero.Name, lv)
	}
	for _, s := range b.reg.Spells() {
		if s.Level > before && s.Level <= b.hero.Level {
			b.logf("%s learned %s.", b.hero.Name, s.Name)
		}
	}

	switch m.ID {
	case GreenDragonID:
		b.hero.Flags.DefeatedDragon = true
	case GolemID:
		b.hero.Flags.DefeatedGolem = true
	}
}

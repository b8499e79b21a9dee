// Package game is the facade the UI talks to. An Engine owns at most one
// active hero plus the queue of battle actions for the next fight.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"damdara/internal/battle"
	"damdara/internal/fault"
	"damdara/internal/password"
	"damdara/internal/player"
	"damdara/internal/registry"
)

// Engine is not safe for concurrent use. The Registry may be shared.
type Engine struct {
	Registry  *registry.Registry
	Dice      battle.Dice
	Logger    *slog.Logger
	MaxRounds int

	player *player.Player
	queue  []battle.Action
}

// New returns an Engine over reg with a clock-seeded dice and a silent
// logger.
func New(reg *registry.Registry) *Engine {
	return &Engine{Registry: reg}
}

func (e *Engine) log() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Engine) dice() battle.Dice {
	if e.Dice == nil {
		e.Dice = battle.NewDice(0)
	}
	return e.Dice
}

// CreatePlayer replaces any active hero with a fresh level 1 one.
func (e *Engine) CreatePlayer(name string) (Summary, error) {
	p, err := player.New(name)
	if err != nil {
		return Summary{}, err
	}
	e.player = p
	e.log().Info("game: player created", "name", p.Name, "hp", p.HP, "mp", p.MP)
	return summarize(p), nil
}

// CreatePlayerWith replaces any active hero with one built from args.
// The hero is checked against the registry before it becomes active.
func (e *Engine) CreatePlayerWith(args player.Args) (Summary, error) {
	p, err := player.NewWith(args)
	if err != nil {
		return Summary{}, err
	}
	if err := p.Validate(e.Registry); err != nil {
		return Summary{}, err
	}
	e.player = p
	e.log().Info("game: player created", "name", p.Name, "level", p.Level, "hp", p.HP, "mp", p.MP)
	return summarize(p), nil
}

// MaximizePlayer turns the active hero into a fully equipped level 30.
func (e *Engine) MaximizePlayer() (PlayerState, error) {
	return e.mutate(func(p *player.Player) error {
		p.Maximize()
		return nil
	})
}

// GeneratePassword encodes the active hero.
func (e *Engine) GeneratePassword() (string, error) {
	if e.player == nil {
		return "", fault.ErrNoActivePlayer
	}
	pw, err := password.Encode(e.Registry, e.player)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return pw, nil
}

// LoadFromPassword replaces the active hero with the one pw describes.
// On failure the active hero is left as it was.
func (e *Engine) LoadFromPassword(pw string) (Summary, error) {
	p, err := password.Decode(e.Registry, pw)
	if err != nil {
		e.log().Warn("game: password rejected", "error", err)
		return Summary{}, err
	}
	e.player = p
	e.log().Info("game: player loaded", "name", p.Name, "level", p.Level)
	return summarize(p), nil
}

func (e *Engine) HasPlayer() bool {
	return e.player != nil
}

// ClearPlayer drops the active hero and any queued actions.
func (e *Engine) ClearPlayer() {
	e.player = nil
	e.queue = nil
}

// PlayerState returns a snapshot of the active hero.
func (e *Engine) PlayerState() (PlayerState, error) {
	if e.player == nil {
		return PlayerState{}, fault.ErrNoActivePlayer
	}
	return e.snapshot(e.player)
}

func (e *Engine) snapshot(p *player.Player) (PlayerState, error) {
	d, err := p.Derive(e.Registry)
	if err != nil {
		return PlayerState{}, err
	}
	st := PlayerState{
		Summary: summarize(p),
		StrengthStatus: StrengthStatus{
			Level:        p.Level,
			MaxHP:        d.MaxHP,
			MaxMP:        d.MaxMP,
			Strength:     d.Strength,
			Agility:      d.Agility,
			AttackPower:  d.AttackPower,
			DefensePower: d.DefensePower,
			Weapon:       d.Weapon.Name,
			Armor:        d.Armor.Name,
			Shield:       d.Shield.Name,
		},
		Items:  []string{},
		Spells: []string{},
	}
	for _, it := range e.Registry.Items() {
		if n := p.ItemCount(it.ID); n > 0 {
			st.Items = append(st.Items, fmt.Sprintf("%s x%d", it.Name, n))
		}
	}
	for _, s := range e.Registry.LearnedSpells(p.Level) {
		st.Spells = append(st.Spells, s.Name)
	}
	return st, nil
}

func summarize(p *player.Player) Summary {
	return Summary{
		Name:       p.Name,
		Level:      p.Level,
		HP:         p.HP,
		MP:         p.MP,
		Gold:       p.Gold,
		Experience: p.Experience,
	}
}

// ClearBattleInput empties the action queue.
func (e *Engine) ClearBattleInput() {
	e.queue = nil
}

// QueueBattleAction parses kind and appends it to the queue for the next
// battle.
func (e *Engine) QueueBattleAction(kind string) error {
	if e.player == nil {
		return fault.ErrNoActivePlayer
	}
	a, err := battle.ParseAction(kind)
	if err != nil {
		return err
	}
	e.queue = append(e.queue, a)
	return nil
}

// QueuedActions lists the pending actions in the order they will run.
func (e *Engine) QueuedActions() []string {
	out := make([]string, len(e.queue))
	for i, a := range e.queue {
		out[i] = a.String()
	}
	return out
}

// RunBattle fights monsterID with the queued actions. Actions the battle
// did not reach stay queued.
func (e *Engine) RunBattle(monsterID int) (BattleResult, error) {
	if e.player == nil {
		return BattleResult{}, fault.ErrNoActivePlayer
	}
	b, err := battle.Start(e.Registry, e.player, monsterID, e.dice())
	if err != nil {
		return BattleResult{}, err
	}
	if e.MaxRounds > 0 {
		b.MaxRounds = e.MaxRounds
	}
	b.Queue(e.queue...)
	res := b.Run()
	e.queue = b.Pending()

	st, err := e.snapshot(e.player)
	if err != nil {
		return BattleResult{}, err
	}
	e.log().LogAttrs(context.Background(), slog.LevelInfo, "game: battle finished",
		slog.String("monster", b.Monster().Name),
		slog.String("state", string(res.State)),
		slog.Int("rounds", res.Rounds),
		slog.Int("hp", e.player.HP),
		slog.Int("pending", len(e.queue)),
	)
	return BattleResult{Result: res, FinalPlayerState: st}, nil
}

func (e *Engine) Monsters() []registry.MonsterSpec { return e.Registry.Monsters() }
func (e *Engine) Weapons() []registry.WeaponSpec   { return e.Registry.Weapons() }
func (e *Engine) Armors() []registry.ArmorSpec     { return e.Registry.Armors() }
func (e *Engine) Shields() []registry.ShieldSpec   { return e.Registry.Shields() }
func (e *Engine) Spells() []registry.SpellSpec     { return e.Registry.Spells() }
func (e *Engine) Items() []registry.ItemSpec       { return e.Registry.Items() }
func (e *Engine) Levels() []player.LevelStats      { return player.Levels() }

// Equip puts item id into the named slot free of charge.
func (e *Engine) Equip(slot string, id int) (PlayerState, error) {
	return e.mutate(func(p *player.Player) error {
		s, err := player.ParseSlot(slot)
		if err != nil {
			return err
		}
		return p.Equip(e.Registry, s, id)
	})
}

// Unequip empties the named slot.
func (e *Engine) Unequip(slot string) (PlayerState, error) {
	return e.mutate(func(p *player.Player) error {
		s, err := player.ParseSlot(slot)
		if err != nil {
			return err
		}
		return p.Unequip(s)
	})
}

// Buy purchases item id for the named slot, trading in the current one.
func (e *Engine) Buy(slot string, id int) (PlayerState, error) {
	return e.mutate(func(p *player.Player) error {
		s, err := player.ParseSlot(slot)
		if err != nil {
			return err
		}
		cost, err := p.Buy(e.Registry, s, id)
		if err == nil {
			e.log().Info("game: bought equipment", "slot", string(s), "id", id, "cost", cost)
		}
		return err
	})
}

// BuyItem purchases one item: a herb, a key or a slot item from a shop.
func (e *Engine) BuyItem(id int) (PlayerState, error) {
	return e.mutate(func(p *player.Player) error {
		return p.BuyItem(e.Registry, id)
	})
}

// mutate applies f to a copy of the hero and keeps the copy only if f
// succeeds.
func (e *Engine) mutate(f func(p *player.Player) error) (PlayerState, error) {
	if e.player == nil {
		return PlayerState{}, fault.ErrNoActivePlayer
	}
	next := *e.player
	if err := f(&next); err != nil {
		return PlayerState{}, err
	}
	e.player = &next
	return e.snapshot(e.player)
}

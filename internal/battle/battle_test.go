package battle

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"damdara/internal/fault"
	"damdara/internal/player"
	"damdara/internal/registry"
)

// seqDice returns its scripted values in order, clamped into range, and
// the highest possible roll once they run out. The highest roll makes
// every probability check below certainty fail.
type seqDice struct {
	vals []int
}

func (d *seqDice) IntN(n int) int {
	if len(d.vals) == 0 {
		return n - 1
	}
	v := d.vals[0]
	d.vals = d.vals[1:]
	return min(v, n-1)
}

type zeroDice struct{}

func (zeroDice) IntN(int) int { return 0 }

func newAlice(t *testing.T) *player.Player {
	t.Helper()
	p, err := player.New("Alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return p
}

func attacks(n int) []Action {
	out := make([]Action, n)
	for i := range out {
		out[i] = Action{Kind: Attack}
	}
	return out
}

func TestDamageFloor(t *testing.T) {
	for atk := 0; atk <= 300; atk += 7 {
		for def := 0; def <= 300; def += 5 {
			if d := Damage(atk, def); d < 1 {
				t.Fatalf("Damage(%d, %d) = %d, expected at least 1", atk, def, d)
			}
		}
	}
	if Damage(14, 3) != 11 {
		t.Errorf("Expected 11, got %d", Damage(14, 3))
	}
}

func TestStart_Errors(t *testing.T) {
	reg := registry.Default()

	if _, err := Start(reg, nil, 0, zeroDice{}); !errors.Is(err, fault.ErrNoActivePlayer) {
		t.Errorf("Expected NoActivePlayer, got %v", err)
	}
	for _, id := range []int{-1, 40} {
		if _, err := Start(reg, newAlice(t), id, zeroDice{}); !errors.Is(err, fault.ErrUnknownMonster) {
			t.Errorf("Expected UnknownMonster for %d, got %v", id, err)
		}
	}
	if _, err := Start(&registry.Registry{}, newAlice(t), 0, zeroDice{}); !errors.Is(err, fault.ErrUnknownMonster) {
		t.Errorf("Expected UnknownMonster for an empty registry, got %v", err)
	}
}

func TestRun_TwentyAttacksBeatSlime(t *testing.T) {
	reg := registry.Default()
	hero := newAlice(t)

	b, err := Start(reg, hero, 0, NewDice(42))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b.Queue(attacks(20)...)
	res := b.Run()

	if !res.MonsterDefeated || !res.PlayerSurvived {
		t.Fatalf("Expected a win, got %+v", res)
	}
	if res.State != Won || res.PlayerEscaped || res.MonsterEscaped {
		t.Errorf("Unexpected flags: %+v", res)
	}
	if res.Rounds > 21 {
		t.Errorf("Expected at most 21 rounds, got %d", res.Rounds)
	}
	if hero.Experience != 1 || hero.Gold != 2 {
		t.Errorf("Expected 1 exp and 2 gold, got %d and %d", hero.Experience, hero.Gold)
	}
	if !strings.Contains(res.Messages[0], "Slime draws near") {
		t.Errorf("Expected an appearance message first, got %q", res.Messages[0])
	}
	last := res.Messages[len(res.Messages)-1]
	if !strings.Contains(last, "defeated") {
		t.Errorf("Expected a victory message last, got %q", last)
	}
	if len(b.Pending()) != 20-res.Rounds {
		t.Errorf("Expected %d pending actions, got %d", 20-res.Rounds, len(b.Pending()))
	}
}

func TestRun_HighRollsScript(t *testing.T) {
	reg := registry.Default()
	hero := newAlice(t)

	b, _ := Start(reg, hero, 0, &seqDice{})
	b.Queue(attacks(5)...)
	res := b.Run()

	// Alice hits for 1 and goes first; the slime hits for 3.
	want := []string{
		"A Slime draws near!",
		"Alice attacks! The Slime takes 1 damage.",
		"The Slime attacks! Alice takes 3 damage.",
		"Alice attacks! The Slime takes 1 damage.",
		"The Slime attacks! Alice takes 3 damage.",
		"Alice attacks! The Slime takes 1 damage.",
		"The Slime is defeated! Alice gains 1 experience and 2 gold.",
	}
	if !slices.Equal(res.Messages, want) {
		t.Errorf("Unexpected log:\n%s", strings.Join(res.Messages, "\n"))
	}
	if hero.HP != 14-6 {
		t.Errorf("Expected hp 8, got %d", hero.HP)
	}
	if res.Rounds != 3 {
		t.Errorf("Expected 3 rounds, got %d", res.Rounds)
	}
}

func TestRun_Deterministic(t *testing.T) {
	reg := registry.Default()
	run := func() Result {
		hero, _ := player.NewWith(player.Args{Name: "Alice", Level: 12, Weapon: 4, Armor: 3, Herbs: 2})
		b, _ := Start(reg, hero, 20, NewDice(7))
		b.Queue(Action{Kind: CastSpell, ID: 1}, Action{Kind: Defend}, Action{Kind: UseItem, ID: 0})
		b.Queue(attacks(10)...)
		return b.Run()
	}
	a, b := run(), run()
	if !slices.Equal(a.Messages, b.Messages) || a.State != b.State {
		t.Errorf("Expected identical battles, got\n%v\nand\n%v", a.Messages, b.Messages)
	}
}

func TestRun_Lost(t *testing.T) {
	reg := registry.Default()
	hero := newAlice(t)

	b, _ := Start(reg, hero, 37, &seqDice{})
	b.Queue(attacks(3)...)
	res := b.Run()

	if res.State != Lost || res.PlayerSurvived || res.MonsterDefeated {
		t.Fatalf("Expected a loss, got %+v", res)
	}
	if hero.HP != 0 {
		t.Errorf("Expected hp 0, got %d", hero.HP)
	}
	if hero.Experience != 0 || hero.Gold != 0 {
		t.Errorf("Expected no rewards, got %d exp and %d gold", hero.Experience, hero.Gold)
	}
	// The dragon is faster and kills Alice before she acts; her death
	// closes the message for the blow that caused it.
	if res.Rounds != 1 || len(res.Messages) != 2 {
		t.Errorf("Expected 1 round and 2 messages, got %d and %v", res.Rounds, res.Messages)
	}
	if !strings.HasSuffix(res.Messages[1], " Alice has died.") {
		t.Errorf("Expected the death in the damage message, got %q", res.Messages[1])
	}
}

func TestRun_DeadHeroCannotFight(t *testing.T) {
	reg := registry.Default()
	hero := newAlice(t)
	hero.HP = 0

	b, _ := Start(reg, hero, 0, &seqDice{})
	res := b.Run()
	if res.State != Lost || res.Rounds != 0 {
		t.Errorf("Expected an immediate loss, got %+v", res)
	}
}

func TestRun_Flee(t *testing.T) {
	reg := registry.Default()
	hero := newAlice(t)

	b, _ := Start(reg, hero, 0, zeroDice{})
	b.Queue(Action{Kind: Flee})
	res := b.Run()

	if res.State != PlayerEscaped || !res.PlayerEscaped || !res.PlayerSurvived {
		t.Errorf("Expected an escape, got %+v", res)
	}
	if res.MonsterDefeated || res.MonsterEscaped {
		t.Errorf("Expected exclusive flags, got %+v", res)
	}
}

func TestRun_FleeBlocked(t *testing.T) {
	reg := registry.Default()
	hero := newAlice(t)

	// Full slime hp, then a zero roll for Alice against a high roll for
	// the slime.
	b, _ := Start(reg, hero, 0, &seqDice{vals: []int{0, 0}})
	b.Queue(Action{Kind: Flee})
	b.Queue(attacks(3)...)
	res := b.Run()

	if !strings.Contains(res.Messages[1], "tries to run") {
		t.Errorf("Expected a blocked escape, got %q", res.Messages[1])
	}
	if res.State != Won || res.Rounds != 4 {
		t.Errorf("Expected a win in 4 rounds, got %s in %d", res.State, res.Rounds)
	}
	if hero.HP != 14-9 {
		t.Errorf("Expected hp 5, got %d", hero.HP)
	}
}

func TestRun_DefendHalvesDamage(t *testing.T) {
	reg := registry.Default()

	for _, tc := range []struct {
		action Action
		wantHP int
	}{
		{Action{Kind: Defend}, 13},
		{Action{Kind: Attack}, 11},
	} {
		hero := newAlice(t)
		b, _ := Start(reg, hero, 0, &seqDice{})
		b.MaxRounds = 1
		b.Queue(tc.action)
		res := b.Run()

		if hero.HP != tc.wantHP {
			t.Errorf("%s: expected hp %d, got %d", tc.action, tc.wantHP, hero.HP)
		}
		if res.State != MonsterEscaped || res.Rounds != 1 {
			t.Errorf("%s: expected the round cap to end the battle, got %+v", tc.action, res)
		}
	}
}

func TestRun_TerminatesWithinQueuePlusOne(t *testing.T) {
	reg := registry.Default()

	for seed := uint64(1); seed <= 20; seed++ {
		for queued := 0; queued <= 6; queued++ {
			for _, id := range []int{0, 7, 27, 39} {
				hero, _ := player.NewWith(player.Args{Name: "Alice", Level: 1 + int(seed), Herbs: 1})
				b, err := Start(reg, hero, id, NewDice(seed))
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				for i := 0; i < queued; i++ {
					b.Queue([]Action{{Kind: Attack}, {Kind: Defend}, {Kind: UseItem}, {Kind: CastSpell, ID: 1}}[i%4])
				}
				res := b.Run()
				if !res.State.Terminal() {
					t.Fatalf("Expected a terminal state, got %s", res.State)
				}
				if res.Rounds > queued+1 {
					t.Fatalf("seed %d monster %d: %d rounds for %d queued actions", seed, id, res.Rounds, queued)
				}
				flags := 0
				for _, f := range []bool{res.MonsterDefeated, res.PlayerEscaped, res.MonsterEscaped, !res.PlayerSurvived} {
					if f {
						flags++
					}
				}
				if flags != 1 {
					t.Fatalf("Expected exactly one outcome flag, got %+v", res)
				}
			}
		}
	}
}

func TestRun_LevelUpMessages(t *testing.T) {
	reg := registry.Default()
	hero, _ := player.NewWith(player.Args{Name: "Alice", Experience: 20, Weapon: 7, Armor: 7, Shield: 3})

	// Skeleton gives 11 exp: 20 -> 31 crosses level 3 and teaches Heal.
	b, _ := Start(reg, hero, 7, &seqDice{})
	b.Queue(attacks(5)...)
	res := b.Run()

	if res.State != Won {
		t.Fatalf("Expected a win, got %s: %v", res.State, res.Messages)
	}
	if !slices.Equal(res.LevelsGained, []int{3}) {
		t.Errorf("Expected level 3 gained, got %v", res.LevelsGained)
	}
	n := len(res.Messages)
	if res.Messages[n-2] != "Alice reached level 3." || res.Messages[n-1] != "Alice learned Heal." {
		t.Errorf("Unexpected closing messages: %v", res.Messages[n-3:])
	}
}

func TestRun_GolemFlag(t *testing.T) {
	reg := registry.Default()
	hero, _ := player.NewWith(player.Args{Name: "Alice", Level: 30, Weapon: 7, Armor: 7, Shield: 3})

	b, _ := Start(reg, hero, GolemID, &seqDice{})
	b.Queue(attacks(10)...)
	res := b.Run()
	if res.State != Won {
		t.Fatalf("Expected a win, got %s: %v", res.State, res.Messages)
	}
	if !hero.Flags.DefeatedGolem || hero.Flags.DefeatedDragon {
		t.Errorf("Expected only the golem flag, got %+v", hero.Flags)
	}
}

func TestRun_Spells(t *testing.T) {
	reg := registry.Default()

	t.Run("not learned", func(t *testing.T) {
		hero := newAlice(t)
		b, _ := Start(reg, hero, 0, &seqDice{})
		b.MaxRounds = 1
		b.Queue(Action{Kind: CastSpell, ID: 9})
		res := b.Run()
		if res.Messages[1] != "Alice has not learned Hurtmore." {
			t.Errorf("Unexpected message %q", res.Messages[1])
		}
	})

	t.Run("hurt", func(t *testing.T) {
		hero, _ := player.NewWith(player.Args{Name: "Alice", Level: 4})
		mp := hero.MP
		b, _ := Start(reg, hero, 0, &seqDice{})
		b.MaxRounds = 1
		b.Queue(Action{Kind: CastSpell, ID: 1})
		res := b.Run()
		// Top roll of 5..12 is 12.
		if res.Messages[1] != "Alice casts Hurt! The Slime takes 12 damage." {
			t.Errorf("Unexpected message %q", res.Messages[1])
		}
		if hero.MP != mp-2 {
			t.Errorf("Expected mp %d, got %d", mp-2, hero.MP)
		}
	})

	t.Run("sleep keeps the monster down", func(t *testing.T) {
		hero, _ := player.NewWith(player.Args{Name: "Alice", Level: 7})
		b, _ := Start(reg, hero, 6, &seqDice{})
		b.MaxRounds = 2
		b.Queue(Action{Kind: CastSpell, ID: 2}, Action{Kind: Defend})
		res := b.Run()
		asleep := 0
		for _, m := range res.Messages {
			if m == "The Scorpion is asleep." {
				asleep++
			}
		}
		if asleep != 2 {
			t.Errorf("Expected the scorpion to sleep through both rounds, got %v", res.Messages)
		}
	})
}

func TestRun_HerbHeals(t *testing.T) {
	reg := registry.Default()
	hero, _ := player.NewWith(player.Args{Name: "Alice", Level: 5, Herbs: 1})
	hero.HP = 1

	b, _ := Start(reg, hero, 0, &seqDice{})
	b.MaxRounds = 1
	b.Queue(Action{Kind: UseItem, ID: registry.ItemHerb})
	res := b.Run()

	if hero.Herbs != 0 {
		t.Errorf("Expected the herb to be used, got %d left", hero.Herbs)
	}
	if !strings.HasPrefix(res.Messages[1], "Alice uses a Medical Herb and recovers 30 HP.") {
		t.Errorf("Unexpected message %q", res.Messages[1])
	}
}

func TestRun_WakingFoldsIntoAction(t *testing.T) {
	reg := registry.Default()

	t.Run("monster", func(t *testing.T) {
		hero := newAlice(t)
		b, _ := Start(reg, hero, 0, zeroDice{})
		b.MaxRounds = 1
		b.monster.Asleep = true
		b.Queue(Action{Kind: Defend})
		res := b.Run()

		want := []string{
			"A Slime draws near!",
			"Alice braces for the next blow.",
			"The Slime wakes up. The Slime attacks! Alice takes 1 damage.",
			"The Slime grows bored and wanders off.",
		}
		if !slices.Equal(res.Messages, want) {
			t.Errorf("Unexpected log:\n%s", strings.Join(res.Messages, "\n"))
		}
	})

	t.Run("hero", func(t *testing.T) {
		hero := newAlice(t)
		b, _ := Start(reg, hero, 0, zeroDice{})
		b.MaxRounds = 1
		b.heroAsleep = true
		b.Queue(Action{Kind: Defend})
		res := b.Run()

		if res.Messages[1] != "Alice wakes up. Alice braces for the next blow." {
			t.Errorf("Unexpected message %q", res.Messages[1])
		}
		if len(res.Messages) != 4 {
			t.Errorf("Expected one message per action, got %v", res.Messages)
		}
	})
}

func TestRun_Items(t *testing.T) {
	reg := registry.Default()
	const (
		torch    = 2
		scale    = 5
		flute    = 6
		ring     = 7
		belt     = 10
		harp     = 11
		necklace = 12
	)

	cases := []struct {
		name  string
		carry int
		use   int
		want  string
		check func(t *testing.T, b *Battle, before player.Derived)
	}{
		{name: "not usable in battle", carry: torch, use: torch, want: "Alice cannot use the Torch in battle."},
		{name: "not carried", use: flute, want: "Alice has no Fairy Flute left."},
		{name: "unknown", use: 99, want: "Alice rummages for an item that does not exist."},
		{name: "flute on a slime", carry: flute, use: flute, want: "Alice plays the Fairy Flute. But nothing happens."},
		{name: "harp", carry: harp, use: harp, want: "Alice plays the Silver Harp. The Slime looks happy."},
		{
			name: "scale", carry: scale, use: scale, want: "Alice puts on the Dragon's Scale. Defense rises.",
			check: func(t *testing.T, b *Battle, before player.Derived) {
				if !b.hero.Flags.DragonScale || b.derived.DefensePower != before.DefensePower+2 {
					t.Errorf("Expected defense %d with the scale, got %d", before.DefensePower+2, b.derived.DefensePower)
				}
				if !b.hero.HasItem(scale) {
					t.Error("Expected the scale to stay in the inventory")
				}
			},
		},
		{
			name: "ring", carry: ring, use: ring, want: "Alice puts on the Warrior's Ring. Attack rises.",
			check: func(t *testing.T, b *Battle, before player.Derived) {
				if !b.hero.Flags.WarriorRing || b.derived.AttackPower != before.AttackPower+2 {
					t.Errorf("Expected attack %d with the ring, got %d", before.AttackPower+2, b.derived.AttackPower)
				}
			},
		},
		{
			name: "belt", carry: belt, use: belt, want: "Alice puts on the Cursed Belt. Alice is cursed!",
			check: func(t *testing.T, b *Battle, _ player.Derived) {
				if !b.hero.Flags.CursedBelt || b.hero.Flags.CursedNecklace {
					t.Errorf("Expected only the belt curse, got %+v", b.hero.Flags)
				}
			},
		},
		{
			name: "necklace", carry: necklace, use: necklace, want: "Alice puts on the Death Necklace. Alice is cursed!",
			check: func(t *testing.T, b *Battle, _ player.Derived) {
				if !b.hero.Flags.CursedNecklace {
					t.Errorf("Expected the necklace curse, got %+v", b.hero.Flags)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hero := newAlice(t)
			hero.Items[0] = tc.carry
			before, _ := hero.Derive(reg)

			b, _ := Start(reg, hero, 0, &seqDice{})
			b.MaxRounds = 1
			b.Queue(Action{Kind: UseItem, ID: tc.use})
			res := b.Run()

			if res.Messages[1] != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, res.Messages[1])
			}
			if tc.check != nil {
				tc.check(t, b, before)
			}
		})
	}
}

func TestRun_ScaleAlreadyWorn(t *testing.T) {
	reg := registry.Default()
	hero := newAlice(t)
	hero.Items[3] = 5
	hero.Flags.DragonScale = true

	b, _ := Start(reg, hero, 0, &seqDice{})
	b.MaxRounds = 1
	b.Queue(Action{Kind: UseItem, ID: 5})
	res := b.Run()

	if res.Messages[1] != "Alice is already wearing the Dragon's Scale." {
		t.Errorf("Unexpected message %q", res.Messages[1])
	}
}

func TestRun_FluteSendsGolemToSleep(t *testing.T) {
	reg := registry.Default()
	hero, _ := player.NewWith(player.Args{Name: "Alice", Level: 25, Armor: 7, Shield: 3})
	hero.Items[0] = 6

	b, _ := Start(reg, hero, GolemID, &seqDice{})
	b.MaxRounds = 1
	b.Queue(Action{Kind: UseItem, ID: 6})
	res := b.Run()

	if !slices.Contains(res.Messages, "Alice plays the Fairy Flute. The Golem falls asleep.") {
		t.Fatalf("Expected the golem to fall asleep, got %v", res.Messages)
	}
	if !b.Monster().Asleep && !slices.Contains(res.Messages, "The Golem is asleep.") {
		t.Errorf("Expected the golem to stay asleep, got %v", res.Messages)
	}
	if !hero.HasItem(6) {
		t.Error("Expected the flute to be kept")
	}
}

func TestParseAction(t *testing.T) {
	cases := []struct {
		in   string
		want Action
	}{
		{"attack", Action{Kind: Attack}},
		{" ATTACK ", Action{Kind: Attack}},
		{"defend", Action{Kind: Defend}},
		{"flee", Action{Kind: Flee}},
		{"escape", Action{Kind: Flee}},
		{"spell:3", Action{Kind: CastSpell, ID: 3}},
		{"cast_spell:9", Action{Kind: CastSpell, ID: 9}},
		{"item:0", Action{Kind: UseItem}},
		{"use_item: 1", Action{Kind: UseItem, ID: 1}},
	}
	for _, c := range cases {
		got, err := ParseAction(c.in)
		if err != nil {
			t.Errorf("ParseAction(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAction(%q): expected %v, got %v", c.in, c.want, got)
		}
	}

	for _, in := range []string{"", "dance", "spell", "spell:x", "item:-1", "attack:2"} {
		if _, err := ParseAction(in); !errors.Is(err, fault.ErrInvalidAction) {
			t.Errorf("ParseAction(%q): expected InvalidAction, got %v", in, err)
		}
	}

	if s := (Action{Kind: CastSpell, ID: 4}).String(); s != "spell:4" {
		t.Errorf("Expected spell:4, got %s", s)
	}
}

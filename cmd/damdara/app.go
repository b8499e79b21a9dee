package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"damdara/internal/battle"
	"damdara/internal/config"
	"damdara/internal/fault"
	"damdara/internal/game"
	"damdara/internal/player"
	"damdara/internal/policy"
	"damdara/internal/registry"
)

const usage = `usage: damdara [-config file] [-seed n] <command> [flags]

commands:
  start   -name NAME                  create a level 1 hero
  save    -name NAME [-level n ...]   build a hero and print its password
  load    PASSWORD                    show the hero a password describes
  status  [-name NAME] [-level n]     show the level table
  list    KIND                        monsters, weapons, armors, shields, spells, items
  battle  (-name|-password) -monster ID [-actions a,b,c | -policy file.js]
  repl                                interactive sessions
`

var errUsage = errors.New("invalid usage")

type app struct {
	cfg config.Config
	reg *registry.Registry
	log *slog.Logger
	in  io.Reader
	out io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("damdara", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { fmt.Fprint(errOut, usage) }
	cfgPath := fs.String("config", "", "YAML config file")
	seed := fs.Uint64("seed", 0, "dice seed, overrides the config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	a := &app{cfg: cfg, log: cfg.Logger(errOut), in: in, out: out}
	if a.reg, err = a.registry(); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}
	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "start":
		return a.start(cmdArgs)
	case "save":
		return a.save(cmdArgs)
	case "load":
		return a.load(cmdArgs)
	case "status":
		return a.status(cmdArgs)
	case "list":
		return a.list(cmdArgs)
	case "battle":
		return a.battle(ctx, cmdArgs)
	case "repl":
		return a.repl(ctx)
	}
	fs.Usage()
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) registry() (*registry.Registry, error) {
	if a.cfg.DataDir == "" {
		return registry.Default(), nil
	}
	reg, err := registry.LoadDir(a.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	a.log.Info("damdara: loaded tables", "dir", a.cfg.DataDir, "monsters", len(reg.Monsters()))
	return reg, nil
}

func (a *app) engine() *game.Engine {
	return &game.Engine{
		Registry:  a.reg,
		Dice:      battle.NewDice(a.cfg.Seed),
		Logger:    a.log,
		MaxRounds: a.cfg.Battle.MaxRounds,
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) start(args []string) error {
	fs := a.flags("start")
	name := fs.String("name", "", "hero name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	e := a.engine()
	if _, err := e.CreatePlayer(*name); err != nil {
		return err
	}
	return a.showWithPassword(e)
}

func (a *app) save(args []string) error {
	fs := a.flags("save")
	var pa player.Args
	fs.StringVar(&pa.Name, "name", "", "hero name")
	fs.IntVar(&pa.Level, "level", 1, "level")
	fs.IntVar(&pa.Experience, "exp", 0, "experience")
	fs.IntVar(&pa.Gold, "gold", 0, "gold")
	fs.IntVar(&pa.Weapon, "weapon", 0, "weapon id")
	fs.IntVar(&pa.Armor, "armor", 0, "armor id")
	fs.IntVar(&pa.Shield, "shield", 0, "shield id")
	fs.IntVar(&pa.Herbs, "herbs", 0, "medical herbs")
	fs.IntVar(&pa.Keys, "keys", 0, "magic keys")
	fs.Func("items", "comma-separated inventory item ids", func(v string) error {
		return parseItems(v, &pa.Items)
	})
	maximize := fs.Bool("max", false, "max out everything")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e := a.engine()
	if _, err := e.CreatePlayerWith(pa); err != nil {
		return err
	}
	if *maximize {
		if _, err := e.MaximizePlayer(); err != nil {
			return err
		}
	}
	return a.showWithPassword(e)
}

// parseItems fills the inventory slots in order from a list like "6,5".
func parseItems(v string, slots *[player.InventorySlots]int) error {
	fields := strings.Split(v, ",")
	if len(fields) > player.InventorySlots {
		return fmt.Errorf("at most %d items fit the inventory", player.InventorySlots)
	}
	*slots = [player.InventorySlots]int{}
	for i, f := range fields {
		id, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return fmt.Errorf("item %q is not an id", f)
		}
		slots[i] = id
	}
	return nil
}

func (a *app) load(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: load takes one password", errUsage)
	}
	e := a.engine()
	if _, err := e.LoadFromPassword(args[0]); err != nil {
		return err
	}
	st, err := e.PlayerState()
	if err != nil {
		return err
	}
	printState(a.out, st)
	return nil
}

func (a *app) status(args []string) error {
	fs := a.flags("status")
	name := fs.String("name", "", "apply the growth of this name")
	level := fs.Int("level", 0, "show only this level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *level < 0 || *level > player.MaxLevel {
		return fmt.Errorf("%w: level must be between 1 and %d", errUsage, player.MaxLevel)
	}

	rows := player.Levels()
	if *name != "" {
		for i := range rows {
			rows[i] = player.StatsFor(*name, rows[i].Level)
		}
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "LV\tSTR\tAGI\tHP\tMP\tEXP\t")
	for _, r := range rows {
		if *level != 0 && r.Level != *level {
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%s\t\n",
			r.Level, r.Strength, r.Agility, r.MaxHP, r.MaxMP, humanize.Comma(int64(r.Experience)))
	}
	return tw.Flush()
}

func (a *app) list(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: list takes one kind", errUsage)
	}
	return printList(a.out, a.reg, args[0])
}

func (a *app) battle(ctx context.Context, args []string) error {
	fs := a.flags("battle")
	name := fs.String("name", "", "fight with a new hero of this name")
	pw := fs.String("password", "", "fight with the hero this password describes")
	monster := fs.String("monster", "0", "monster id or name")
	actions := fs.String("actions", "", "comma separated actions")
	script := fs.String("policy", "", "JavaScript file defining plan(ctx)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *actions != "" && *script != "" {
		return fmt.Errorf("%w: -actions and -policy are exclusive", errUsage)
	}

	e := a.engine()
	var err error
	switch {
	case *pw != "":
		_, err = e.LoadFromPassword(*pw)
	case *name != "":
		_, err = e.CreatePlayer(*name)
	default:
		err = fmt.Errorf("%w: battle needs -name or -password", errUsage)
	}
	if err != nil {
		return err
	}

	m, err := findMonster(a.reg, *monster)
	if err != nil {
		return err
	}
	if *actions != "" {
		for _, s := range strings.Split(*actions, ",") {
			if err := e.QueueBattleAction(s); err != nil {
				return err
			}
		}
	}
	if *script != "" {
		if err := a.plan(ctx, e, m, *script); err != nil {
			return err
		}
	}

	res, err := e.RunBattle(m.ID)
	if err != nil {
		return err
	}
	printBattle(a.out, res)
	if res.PlayerSurvived {
		return a.showPassword(e)
	}
	return nil
}

func (a *app) plan(ctx context.Context, e *game.Engine, m registry.MonsterSpec, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := policy.Compile(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	p.Logger = a.log
	st, err := e.PlayerState()
	if err != nil {
		return err
	}
	planned, err := p.Plan(ctx, st, m)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, act := range planned {
		if err := e.QueueBattleAction(act.String()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) showWithPassword(e *game.Engine) error {
	st, err := e.PlayerState()
	if err != nil {
		return err
	}
	printState(a.out, st)
	return a.showPassword(e)
}

func (a *app) showPassword(e *game.Engine) error {
	pw, err := e.GeneratePassword()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Password: %s\n", pw)
	return nil
}

// findMonster accepts a table id or a case-insensitive name.
func findMonster(reg *registry.Registry, s string) (registry.MonsterSpec, error) {
	if id, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		m, err := reg.Monster(id)
		if err != nil {
			return m, fault.New(fault.UnknownMonster, "no monster with id %d", id).WithCause(err)
		}
		return m, nil
	}
	m, ok := reg.FindMonster(s)
	if !ok {
		return m, fault.New(fault.UnknownMonster, "no monster named %q", s)
	}
	return m, nil
}

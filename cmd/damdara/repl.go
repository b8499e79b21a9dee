package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"damdara/internal/fault"
	"damdara/internal/game"
	"damdara/internal/session"
)

const replHelp = `commands:
  new NAME              start a session with a new hero
  open PASSWORD         start a session from a password
  use ID                switch to a session (an id prefix is enough)
  sessions              list sessions
  drop                  close the current session
  status                show the hero
  password              show the hero's password
  queue ACTION...       queue battle actions (attack, defend, flee, spell:N, item:N)
  clear                 empty the action queue
  fight MONSTER         fight a monster by id or name
  equip SLOT ID         equip for free
  unequip SLOT          empty a slot
  buy SLOT ID           buy equipment, trading in the old piece
  buyitem ID            buy an item (list items shows ids)
  list KIND             show a table
  quit
`

type repl struct {
	*app
	store   session.Store[*game.Engine]
	current string
}

func (a *app) repl(ctx context.Context) error {
	r := &repl{app: a, store: session.NewMemoryStore[*game.Engine]()}
	sc := bufio.NewScanner(a.in)

	fmt.Fprintln(a.out, `damdara: type "help" for commands`)
	for {
		fmt.Fprint(a.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(a.out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := r.exec(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (r *repl) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprint(r.out, replHelp)
		return nil
	case "new":
		return r.open(ctx, func(e *game.Engine) error {
			_, err := e.CreatePlayer(strings.Join(args, " "))
			return err
		})
	case "open":
		return r.open(ctx, func(e *game.Engine) error {
			_, err := e.LoadFromPassword(strings.Join(args, ""))
			return err
		})
	case "use":
		return r.use(ctx, args)
	case "sessions":
		return r.sessions(ctx)
	case "list":
		if len(args) != 1 {
			return fmt.Errorf("%w: list KIND", errUsage)
		}
		return printList(r.out, r.reg, args[0])
	}

	e, err := r.engine(ctx)
	if err != nil {
		return err
	}
	switch cmd {
	case "drop":
		if err := r.store.Delete(ctx, r.current); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "closed %s\n", short(r.current))
		r.current = ""
		return nil
	case "status":
		return r.show(e.PlayerState())
	case "password":
		return r.showPassword(e)
	case "queue":
		for _, s := range args {
			if err := e.QueueBattleAction(s); err != nil {
				return err
			}
		}
		fmt.Fprintf(r.out, "queued: %s\n", joinOrDash(e.QueuedActions()))
		return nil
	case "clear":
		e.ClearBattleInput()
		return nil
	case "fight":
		m, err := findMonster(r.reg, strings.Join(args, " "))
		if err != nil {
			return err
		}
		res, err := e.RunBattle(m.ID)
		if err != nil {
			return err
		}
		printBattle(r.out, res)
		return nil
	case "equip", "buy":
		if len(args) != 2 {
			return fmt.Errorf("%w: %s SLOT ID", errUsage, cmd)
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: bad id %q", errUsage, args[1])
		}
		if cmd == "equip" {
			return r.show(e.Equip(args[0], id))
		}
		return r.show(e.Buy(args[0], id))
	case "unequip":
		if len(args) != 1 {
			return fmt.Errorf("%w: unequip SLOT", errUsage)
		}
		return r.show(e.Unequip(args[0]))
	case "buyitem":
		if len(args) != 1 {
			return fmt.Errorf("%w: buyitem ID", errUsage)
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: bad id %q", errUsage, args[0])
		}
		return r.show(e.BuyItem(id))
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// open runs init against a fresh engine and keeps it as a new session
// only if init succeeds.
func (r *repl) open(ctx context.Context, init func(e *game.Engine) error) error {
	e := r.app.engine()
	if err := init(e); err != nil {
		return err
	}
	id := r.store.NewID()
	if err := r.store.Put(ctx, id, e); err != nil {
		return err
	}
	r.current = id
	fmt.Fprintf(r.out, "session %s\n", short(id))
	return r.show(e.PlayerState())
}

func (r *repl) use(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: use ID", errUsage)
	}
	ids, err := r.store.IDs(ctx)
	if err != nil {
		return err
	}
	var match []string
	for _, id := range ids {
		if strings.HasPrefix(id, args[0]) {
			match = append(match, id)
		}
	}
	switch len(match) {
	case 0:
		return fault.New(fault.NotFound, "no session matches %q", args[0])
	case 1:
		r.current = match[0]
		fmt.Fprintf(r.out, "session %s\n", short(r.current))
		return nil
	}
	return fmt.Errorf("%w: %q matches %d sessions", errUsage, args[0], len(match))
}

func (r *repl) sessions(ctx context.Context) error {
	ids, err := r.store.IDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(r.out, "no sessions")
		return nil
	}
	for _, id := range ids {
		e, _, err := r.store.Get(ctx, id)
		if err != nil {
			return err
		}
		mark := " "
		if id == r.current {
			mark = "*"
		}
		st, err := e.PlayerState()
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%s %s  %s  Lv %d\n", mark, short(id), st.Summary.Name, st.Summary.Level)
	}
	return nil
}

func (r *repl) engine(ctx context.Context) (*game.Engine, error) {
	if r.current == "" {
		return nil, errNoSession
	}
	e, ok, err := r.store.Get(ctx, r.current)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoSession
	}
	return e, nil
}

func (r *repl) show(st game.PlayerState, err error) error {
	if err != nil {
		return err
	}
	printState(r.out, st)
	return nil
}

var errNoSession = errors.New(`no session, use "new NAME" or "open PASSWORD"`)

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

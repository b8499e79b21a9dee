package battle

import (
	"fmt"
	"strconv"
	"strings"

	"damdara/internal/fault"
)

type ActionKind int

const (
	Attack ActionKind = iota
	Defend
	CastSpell
	UseItem
	Flee
)

func (k ActionKind) String() string {
	switch k {
	case Attack:
		return "attack"
	case Defend:
		return "defend"
	case CastSpell:
		return "spell"
	case UseItem:
		return "item"
	case Flee:
		return "flee"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is one queued player command. ID selects the spell or item.
type Action struct {
	Kind ActionKind
	ID   int
}

func (a Action) String() string {
	if a.Kind == CastSpell || a.Kind == UseItem {
		return a.Kind.String() + ":" + strconv.Itoa(a.ID)
	}
	return a.Kind.String()
}

// ParseAction reads "attack", "defend", "flee", "spell:<id>" or
// "item:<id>". "escape", "cast_spell:<id>" and "use_item:<id>" are
// accepted as aliases; case and surrounding space are ignored.
func ParseAction(s string) (Action, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	kind, arg, hasArg := strings.Cut(in, ":")

	switch kind {
	case "attack", "defend", "flee", "escape":
		if hasArg {
			return Action{}, fault.New(fault.InvalidAction, "%q takes no argument", kind)
		}
		switch kind {
		case "attack":
			return Action{Kind: Attack}, nil
		case "defend":
			return Action{Kind: Defend}, nil
		}
		return Action{Kind: Flee}, nil
	case "spell", "cast_spell", "item", "use_item":
		if !hasArg {
			return Action{}, fault.New(fault.InvalidAction, "%q needs an id, as in %s:0", kind, kind)
		}
		id, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || id < 0 {
			return Action{}, fault.New(fault.InvalidAction, "%q is not a valid id", arg)
		}
		if kind == "spell" || kind == "cast_spell" {
			return Action{Kind: CastSpell, ID: id}, nil
		}
		return Action{Kind: UseItem, ID: id}, nil
	}
	return Action{}, fault.New(fault.InvalidAction, "unknown action %q", s)
}

// Package policy runs user supplied JavaScript that decides which actions
// to queue before a battle. Scripts define plan(ctx) and return an array
// of action strings such as ["attack", "spell:1", "item:0"].
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"damdara/internal/battle"
	"damdara/internal/fault"
	"damdara/internal/game"
	"damdara/internal/registry"
)

const (
	compileTimeout = 2 * time.Second
	planTimeout    = 1 * time.Second
)

// Policy is a compiled script. It is safe for concurrent use; calls are
// serialised on the underlying runtime.
type Policy struct {
	// Timeout bounds a single Plan call. Zero means one second.
	Timeout time.Duration
	Logger  *slog.Logger

	mu   sync.Mutex
	rt   *goja.Runtime
	plan goja.Callable
}

// lockdown removes the constructor of every function prototype, so that
// no function value leads back to a code-compiling constructor once the
// Function global is gone. Kinds the runtime does not parse are skipped.
const lockdown = `(function () {
	var kinds = [
		"return function () {}",
		"return function* () {}",
		"return async function () {}",
		"return async function* () {}",
	];
	for (var i = 0; i < kinds.length; i++) {
		var proto;
		try {
			proto = Object.getPrototypeOf(Function(kinds[i])());
		} catch (e) {
			continue;
		}
		try {
			Object.defineProperty(proto, "constructor", {value: undefined, writable: false, configurable: false});
		} catch (e) {
			proto.constructor = undefined;
		}
	}
})();`

// Compile evaluates source in a fresh restricted runtime and looks up its
// plan function. The runtime has no require, eval or Function constructor
// and no host bindings beyond log; it is not a security boundary against
// hostile scripts, only a guard against accidental reach.
func Compile(source string) (*Policy, error) {
	p := &Policy{rt: goja.New()}
	if err := p.sandbox(); err != nil {
		return nil, fault.New(fault.InvalidAction, "policy runtime setup failed").WithCause(err)
	}

	err := p.run(context.Background(), compileTimeout, func() error {
		if _, err := p.rt.RunString(source); err != nil {
			return err
		}
		fn := p.rt.Get("plan")
		if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
			return fmt.Errorf("plan() is not defined")
		}
		callable, ok := goja.AssertFunction(fn)
		if !ok {
			return fmt.Errorf("plan is not a function")
		}
		p.plan = callable
		return nil
	})
	if err != nil {
		return nil, fault.New(fault.InvalidAction, "policy script rejected").WithCause(err)
	}
	return p, nil
}

func (p *Policy) sandbox() error {
	p.rt.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		p.log().Debug("policy: script log", "message", strings.Join(parts, " "))
		return goja.Undefined()
	})
	console := p.rt.NewObject()
	_ = console.Set("log", p.rt.Get("log"))
	p.rt.Set("console", console)

	if _, err := p.rt.RunString(lockdown); err != nil {
		return err
	}
	p.rt.Set("require", goja.Undefined())
	p.rt.Set("eval", goja.Undefined())
	p.rt.Set("Function", goja.Undefined())
	return nil
}

func (p *Policy) log() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// Plan calls the script's plan function with the hero and the monster
// about to be fought, and parses what it returns.
func (p *Policy) Plan(ctx context.Context, hero game.PlayerState, monster registry.MonsterSpec) ([]battle.Action, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = planTimeout
	}

	var out goja.Value
	err := p.run(ctx, timeout, func() error {
		v, err := p.plan(goja.Undefined(), p.rt.ToValue(scriptContext(hero, monster)))
		out = v
		return err
	})
	if err != nil {
		return nil, fault.New(fault.InvalidAction, "plan() failed").WithCause(err)
	}

	raw, ok := out.Export().([]any)
	if !ok {
		return nil, fault.New(fault.InvalidAction, "plan() must return an array of strings").
			With("got", out.String())
	}
	actions := make([]battle.Action, 0, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fault.New(fault.InvalidAction, "plan() entry %d is not a string", i)
		}
		a, err := battle.ParseAction(s)
		if err != nil {
			return nil, fmt.Errorf("plan() entry %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	p.log().Debug("policy: planned", "monster", monster.Name, "actions", len(actions))
	return actions, nil
}

// scriptContext is the ctx argument scripts see. Keys are snake_case to
// match the JSON views of the same data.
func scriptContext(hero game.PlayerState, m registry.MonsterSpec) map[string]any {
	s, st := hero.Summary, hero.StrengthStatus
	return map[string]any{
		"player": map[string]any{
			"name":       s.Name,
			"level":      s.Level,
			"hp":         s.HP,
			"mp":         s.MP,
			"gold":       s.Gold,
			"experience": s.Experience,
			"max_hp":     st.MaxHP,
			"max_mp":     st.MaxMP,
			"strength":   st.Strength,
			"agility":    st.Agility,
			"attack":     st.AttackPower,
			"defense":    st.DefensePower,
			"items":      hero.Items,
			"spells":     hero.Spells,
		},
		"monster": map[string]any{
			"id":      m.ID,
			"name":    m.Name,
			"hp":      m.HP,
			"attack":  m.Attack,
			"defense": m.Defense,
			"boss":    m.Boss,
		},
	}
}

// run executes fn and interrupts the runtime if it outlives timeout or
// ctx. fn always finishes before run returns so the runtime is never
// shared between goroutines.
func (p *Policy) run(ctx context.Context, timeout time.Duration, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.rt.ClearInterrupt()
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		p.rt.Interrupt("script execution timeout")
		err := <-done
		if err != nil {
			return fmt.Errorf("script timed out: %w", err)
		}
		return fmt.Errorf("script timed out")
	}
}

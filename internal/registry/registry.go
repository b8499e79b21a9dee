// Package registry holds the read-only master data tables: monsters,
// equipment, spells and items, each keyed by a dense id starting at 0.
package registry

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"damdara/internal/fault"
)

// Item ids the player model counts directly. Every other item occupies
// one of the player's inventory slots.
const (
	ItemHerb = 0
	ItemKey  = 1
)

// MaxItems bounds the item table so that any item id fits the four bits a
// password spends on each inventory slot.
const MaxItems = 16

//go:embed data/*.yaml
var embedded embed.FS

// Registry is safe to share between goroutines once loaded. The zero
// value is an empty registry.
type Registry struct {
	monsters []MonsterSpec
	weapons  []WeaponSpec
	armors   []ArmorSpec
	shields  []ShieldSpec
	spells   []SpellSpec
	items    []ItemSpec
}

var loadDefault = sync.OnceValues(func() (*Registry, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Default returns the built-in tables. It panics if the embedded data is
// malformed, which the package tests rule out.
func Default() *Registry {
	r, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("registry: embedded data: %v", err))
	}
	return r
}

// LoadDir loads every .yaml file in dir.
func LoadDir(dir string) (*Registry, error) {
	cleanDir := filepath.Clean(dir)
	info, err := os.Stat(cleanDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("registry: %s is not a directory", cleanDir)
	}
	return Load(os.DirFS(cleanDir))
}

// Load reads every .yaml file at the root of fsys in name order and
// merges the tables they define. A table defined by two files is an error.
func Load(fsys fs.FS) (*Registry, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var merged document
	seen := map[string]string{}
	claim := func(table, file string, n int) error {
		if n == 0 {
			return nil
		}
		if prev, ok := seen[table]; ok {
			return fmt.Errorf("registry: %s defined in both %s and %s", table, prev, file)
		}
		seen[table] = file
		return nil
	}

	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		var doc document
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("registry: %s: %w", path.Base(name), err)
		}
		for _, c := range []struct {
			table string
			n     int
		}{
			{"monsters", len(doc.Monsters)},
			{"weapons", len(doc.Weapons)},
			{"armors", len(doc.Armors)},
			{"shields", len(doc.Shields)},
			{"spells", len(doc.Spells)},
			{"items", len(doc.Items)},
		} {
			if err := claim(c.table, name, c.n); err != nil {
				return nil, err
			}
		}
		merged.Monsters = append(merged.Monsters, doc.Monsters...)
		merged.Weapons = append(merged.Weapons, doc.Weapons...)
		merged.Armors = append(merged.Armors, doc.Armors...)
		merged.Shields = append(merged.Shields, doc.Shields...)
		merged.Spells = append(merged.Spells, doc.Spells...)
		merged.Items = append(merged.Items, doc.Items...)
	}

	r := &Registry{
		monsters: merged.Monsters,
		weapons:  merged.Weapons,
		armors:   merged.Armors,
		shields:  merged.Shields,
		spells:   merged.Spells,
		items:    merged.Items,
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

type row struct {
	id   int
	name string
}

func rows[T any](table []T, f func(T) row) []row {
	return lo.Map(table, func(v T, _ int) row { return f(v) })
}

func (r *Registry) validate() error {
	tables := []struct {
		name string
		rows []row
	}{
		{"monsters", rows(r.monsters, func(m MonsterSpec) row { return row{m.ID, m.Name} })},
		{"weapons", rows(r.weapons, func(w WeaponSpec) row { return row{w.ID, w.Name} })},
		{"armors", rows(r.armors, func(a ArmorSpec) row { return row{a.ID, a.Name} })},
		{"shields", rows(r.shields, func(s ShieldSpec) row { return row{s.ID, s.Name} })},
		{"spells", rows(r.spells, func(s SpellSpec) row { return row{s.ID, s.Name} })},
		{"items", rows(r.items, func(it ItemSpec) row { return row{it.ID, it.Name} })},
	}
	for _, t := range tables {
		for i, rw := range t.rows {
			if rw.id != i {
				return fmt.Errorf("registry: %s row %d has id %d, ids must be dense from 0", t.name, i, rw.id)
			}
			if strings.TrimSpace(rw.name) == "" {
				return fmt.Errorf("registry: %s id %d has no name", t.name, i)
			}
		}
	}
	for _, m := range r.monsters {
		if m.HP <= 0 {
			return fmt.Errorf("registry: monster %d (%s) has no hp", m.ID, m.Name)
		}
	}
	// Row 0 of each equipment table stands for an empty slot: no price and
	// no bonus of any kind.
	for _, c := range []struct {
		table string
		empty bool
	}{
		{"weapons", len(r.weapons) == 0 || r.weapons[0] == (WeaponSpec{Name: r.weapons[0].Name})},
		{"armors", len(r.armors) == 0 || r.armors[0] == (ArmorSpec{Name: r.armors[0].Name})},
		{"shields", len(r.shields) == 0 || r.shields[0] == (ShieldSpec{Name: r.shields[0].Name})},
	} {
		if !c.empty {
			return fmt.Errorf("registry: %s row 0 must be an empty slot with no price or bonus", c.table)
		}
	}
	if len(r.items) > MaxItems {
		return fmt.Errorf("registry: %d items, at most %d fit a password", len(r.items), MaxItems)
	}
	return nil
}

func lookup[T any](table []T, id int, what string) (T, error) {
	var zero T
	if id < 0 || id >= len(table) {
		return zero, fault.New(fault.NotFound, "%s %d does not exist", what, id).With("count", len(table))
	}
	return table[id], nil
}

func list[T any](table []T) []T {
	out := make([]T, len(table))
	copy(out, table)
	return out
}

func (r *Registry) Monster(id int) (MonsterSpec, error) {
	if r == nil {
		return MonsterSpec{}, fault.New(fault.NotFound, "monster %d does not exist", id)
	}
	m, err := lookup(r.monsters, id, "monster")
	m.Actions = slices.Clone(m.Actions)
	return m, err
}

func (r *Registry) Weapon(id int) (WeaponSpec, error) {
	if r == nil {
		return WeaponSpec{}, fault.New(fault.NotFound, "weapon %d does not exist", id)
	}
	return lookup(r.weapons, id, "weapon")
}

func (r *Registry) Armor(id int) (ArmorSpec, error) {
	if r == nil {
		return ArmorSpec{}, fault.New(fault.NotFound, "armor %d does not exist", id)
	}
	return lookup(r.armors, id, "armor")
}

func (r *Registry) Shield(id int) (ShieldSpec, error) {
	if r == nil {
		return ShieldSpec{}, fault.New(fault.NotFound, "shield %d does not exist", id)
	}
	return lookup(r.shields, id, "shield")
}

func (r *Registry) Spell(id int) (SpellSpec, error) {
	if r == nil {
		return SpellSpec{}, fault.New(fault.NotFound, "spell %d does not exist", id)
	}
	return lookup(r.spells, id, "spell")
}

func (r *Registry) Item(id int) (ItemSpec, error) {
	if r == nil {
		return ItemSpec{}, fault.New(fault.NotFound, "item %d does not exist", id)
	}
	return lookup(r.items, id, "item")
}

// Monsters lists every monster in id order. The result is a copy and is
// never nil.
func (r *Registry) Monsters() []MonsterSpec {
	if r == nil {
		return []MonsterSpec{}
	}
	out := list(r.monsters)
	for i := range out {
		out[i].Actions = slices.Clone(out[i].Actions)
	}
	return out
}

func (r *Registry) Weapons() []WeaponSpec {
	if r == nil {
		return []WeaponSpec{}
	}
	return list(r.weapons)
}

func (r *Registry) Armors() []ArmorSpec {
	if r == nil {
		return []ArmorSpec{}
	}
	return list(r.armors)
}

func (r *Registry) Shields() []ShieldSpec {
	if r == nil {
		return []ShieldSpec{}
	}
	return list(r.shields)
}

func (r *Registry) Spells() []SpellSpec {
	if r == nil {
		return []SpellSpec{}
	}
	return list(r.spells)
}

func (r *Registry) Items() []ItemSpec {
	if r == nil {
		return []ItemSpec{}
	}
	return list(r.items)
}

// LearnedSpells returns the spells known at the given level.
func (r *Registry) LearnedSpells(level int) []SpellSpec {
	return lo.Filter(r.Spells(), func(s SpellSpec, _ int) bool {
		return s.Level <= level
	})
}

// FindMonster looks a monster up by case-insensitive name.
func (r *Registry) FindMonster(name string) (MonsterSpec, bool) {
	name = strings.TrimSpace(name)
	return lo.Find(r.Monsters(), func(m MonsterSpec) bool {
		return strings.EqualFold(m.Name, name)
	})
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"damdara/internal/game"
	"damdara/internal/registry"
)

func printState(w io.Writer, st game.PlayerState) {
	s, ss := st.Summary, st.StrengthStatus
	fmt.Fprintf(w, "%s  Lv %d  HP %d/%d  MP %d/%d  G %s  E %s\n",
		s.Name, s.Level, s.HP, ss.MaxHP, s.MP, ss.MaxMP,
		humanize.Comma(int64(s.Gold)), humanize.Comma(int64(s.Experience)))
	fmt.Fprintf(w, "STR %d  AGI %d  ATK %d  DEF %d\n",
		ss.Strength, ss.Agility, ss.AttackPower, ss.DefensePower)
	fmt.Fprintf(w, "Weapon: %s  Armor: %s  Shield: %s\n", ss.Weapon, ss.Armor, ss.Shield)
	fmt.Fprintf(w, "Items: %s\n", joinOrDash(st.Items))
	fmt.Fprintf(w, "Spells: %s\n", joinOrDash(st.Spells))
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}

func printBattle(w io.Writer, res game.BattleResult) {
	for _, m := range res.Messages {
		fmt.Fprintln(w, m)
	}
	fmt.Fprintf(w, "Result: %s after %s\n", res.State, rounds(res.Rounds))
	printState(w, res.FinalPlayerState)
}

func rounds(n int) string {
	if n == 1 {
		return "1 round"
	}
	return humanize.Comma(int64(n)) + " rounds"
}

func printList(w io.Writer, reg *registry.Registry, kind string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	g := func(n int) string { return humanize.Comma(int64(n)) }

	switch strings.ToLower(kind) {
	case "monsters":
		fmt.Fprintln(tw, "ID\tNAME\tHP\tATK\tDEF\tEXP\tGOLD")
		for _, m := range reg.Monsters() {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%s\n", m.ID, m.Name, m.HP, m.Attack, m.Defense, g(m.Exp), g(m.Gold))
		}
	case "weapons":
		fmt.Fprintln(tw, "ID\tNAME\tATK\tPRICE")
		for _, it := range reg.Weapons() {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", it.ID, it.Name, it.Attack, g(it.Price))
		}
	case "armors":
		fmt.Fprintln(tw, "ID\tNAME\tDEF\tPRICE")
		for _, it := range reg.Armors() {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", it.ID, it.Name, it.Defense, g(it.Price))
		}
	case "shields":
		fmt.Fprintln(tw, "ID\tNAME\tDEF\tPRICE")
		for _, it := range reg.Shields() {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", it.ID, it.Name, it.Defense, g(it.Price))
		}
	case "spells":
		fmt.Fprintln(tw, "ID\tNAME\tLV\tMP\tEFFECT")
		for _, s := range reg.Spells() {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", s.ID, s.Name, s.Level, s.MP, s.Description)
		}
	case "items":
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tEFFECT")
		for _, it := range reg.Items() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.ID, it.Name, g(it.Price), it.Description)
		}
	default:
		return fmt.Errorf("%w: unknown list %q", errUsage, kind)
	}
	return tw.Flush()
}

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"damdara/internal/fault"
	"damdara/internal/password"
)

func runCLI(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-seed", "1"}, args...), strings.NewReader(in), &out, io.Discard)
	return out.String(), err
}

func passwordFrom(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if pw, ok := strings.CutPrefix(line, "Password: "); ok {
			return pw
		}
	}
	t.Fatalf("No password in output:\n%s", out)
	return ""
}

func TestStart(t *testing.T) {
	out, err := runCLI(t, "", "start", "-name", "Alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Alice  Lv 1  HP 14/14") {
		t.Errorf("Expected Alice's summary, got:\n%s", out)
	}
	if pw := passwordFrom(t, out); len(pw) != password.Length {
		t.Errorf("Expected a %d character password, got %q", password.Length, pw)
	}
}

func TestSaveThenLoad(t *testing.T) {
	out, err := runCLI(t, "", "save", "-name", "Bob", "-level", "10", "-gold", "1500", "-weapon", "3", "-herbs", "2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	pw := passwordFrom(t, out)

	out, err = runCLI(t, "", "load", pw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"Bob  Lv 10", "G 1,500", "Weapon: Copper Sword", "Medical Herb x2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in:\n%s", want, out)
		}
	}
}

func TestSaveMax(t *testing.T) {
	out, err := runCLI(t, "", "save", "-name", "Loto", "-max")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Lv 30") || !strings.Contains(out, "G 65,535") {
		t.Errorf("Expected a maxed hero, got:\n%s", out)
	}
}

func TestSaveItems(t *testing.T) {
	out, err := runCLI(t, "", "save", "-name", "Ann", "-items", "6, 5")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out, err = runCLI(t, "", "load", passwordFrom(t, out))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Items: Dragon's Scale x1, Fairy Flute x1") {
		t.Errorf("Expected the scale and flute, got:\n%s", out)
	}

	if _, err := runCLI(t, "", "save", "-name", "Ann", "-items", "1"); !errors.Is(err, fault.ErrInvalidEquipment) {
		t.Errorf("Expected InvalidEquipment for a key in a slot, got %v", err)
	}
	if _, err := runCLI(t, "", "save", "-name", "Ann", "-items", "2,2,2,2,2,2,2,2,2"); err == nil {
		t.Error("Expected an error for nine items")
	}
	if _, err := runCLI(t, "", "save", "-name", "Ann", "-items", "torch"); err == nil {
		t.Error("Expected an error for a non-numeric id")
	}
}

func TestLoad_Invalid(t *testing.T) {
	_, err := runCLI(t, "", "load", "ABC")
	if !errors.Is(err, fault.ErrInvalidPassword) {
		t.Errorf("Expected InvalidPassword, got %v", err)
	}
}

func TestList(t *testing.T) {
	out, err := runCLI(t, "", "list", "monsters")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Slime") || !strings.Contains(out, "Dragonlord") {
		t.Errorf("Expected the monster table, got:\n%s", out)
	}

	if _, err := runCLI(t, "", "list", "potions"); !errors.Is(err, errUsage) {
		t.Errorf("Expected a usage error, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	out, err := runCLI(t, "", "status", "-level", "30")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected a header and one row, got:\n%s", out)
	}
	if !strings.Contains(lines[1], "65,535") {
		t.Errorf("Expected the level 30 threshold, got %q", lines[1])
	}
}

func TestBattle_Actions(t *testing.T) {
	out, err := runCLI(t, "", "battle", "-name", "Alice", "-monster", "slime", "-actions", "attack,attack,attack,attack,attack")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "A Slime draws near!") {
		t.Errorf("Expected the encounter message first, got:\n%s", out)
	}
	if !strings.Contains(out, "Result: won") {
		t.Errorf("Expected a win, got:\n%s", out)
	}
	passwordFrom(t, out)
}

func TestBattle_Policy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.js")
	src := `function plan(ctx) { return ["attack", "attack", "attack", "attack", "attack"]; }`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "battle", "-name", "Alice", "-monster", "0", "-policy", path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Result: won") {
		t.Errorf("Expected a win, got:\n%s", out)
	}
}

func TestBattle_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no hero", []string{"battle", "-monster", "0"}, errUsage},
		{"both inputs", []string{"battle", "-name", "A", "-actions", "attack", "-policy", "x.js"}, errUsage},
		{"unknown monster", []string{"battle", "-name", "A", "-monster", "99"}, fault.ErrUnknownMonster},
		{"unknown name", []string{"battle", "-name", "A", "-monster", "Kraken"}, fault.ErrUnknownMonster},
		{"bad action", []string{"battle", "-name", "A", "-actions", "attack,dance"}, fault.ErrInvalidAction},
		{"unknown command", []string{"fly"}, errUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, "", tt.args...); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "damdara.yaml")
	cfg := "seed: 7\nlog:\n  level: debug\n  format: json\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, logs bytes.Buffer
	err := run(context.Background(), []string{"-config", path, "start", "-name", "Alice"}, strings.NewReader(""), &out, &logs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(logs.String(), `"msg":"game: player created"`) {
		t.Errorf("Expected a JSON log record, got %q", logs.String())
	}
}

func TestREPL(t *testing.T) {
	script := strings.Join([]string{
		"status",
		"new Alice",
		"queue attack attack attack attack attack",
		"fight slime",
		"new Bob",
		"sessions",
		"buy armor 1",
		"frobnicate",
		"drop",
		"status",
		"quit",
	}, "\n")

	out, err := runCLI(t, script, "repl")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{
		"error: no session",
		"Alice  Lv 1  HP 14/14",
		"queued: attack, attack, attack, attack, attack",
		"A Slime draws near!",
		"Result: won",
		"Bob  Lv 1",
		"  Alice  Lv 1",
		"  Bob  Lv 1",
		"error: invalid_equipment",
		"closed ",
		"error: invalid usage: unknown command \"frobnicate\"",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("Expected %q in transcript:\n%s", w, out)
		}
	}
	if strings.Count(out, "error: no session") != 2 {
		t.Errorf("Expected two no-session errors, got:\n%s", out)
	}
}

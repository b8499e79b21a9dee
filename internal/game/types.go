package game

import "damdara/internal/battle"

// Summary is the short view of the active hero.
type Summary struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	HP         int    `json:"hp"`
	MP         int    `json:"mp"`
	Gold       int    `json:"gold"`
	Experience int    `json:"experience"`
}

// StrengthStatus lists the derived stats and the names of the equipped
// items.
type StrengthStatus struct {
	Level        int    `json:"level"`
	MaxHP        int    `json:"max_hp"`
	MaxMP        int    `json:"max_mp"`
	Strength     int    `json:"strength"`
	Agility      int    `json:"agility"`
	AttackPower  int    `json:"attack_power"`
	DefensePower int    `json:"defense_power"`
	Weapon       string `json:"weapon"`
	Armor        string `json:"armor"`
	Shield       string `json:"shield"`
}

// PlayerState is a read-only snapshot of the active hero.
type PlayerState struct {
	Summary        Summary        `json:"summary"`
	StrengthStatus StrengthStatus `json:"strength_status"`
	Items          []string       `json:"items"`
	Spells         []string       `json:"spells"`
}

// BattleResult is a finished battle plus the hero as it left the fight.
type BattleResult struct {
	battle.Result
	FinalPlayerState PlayerState `json:"final_player_state"`
}

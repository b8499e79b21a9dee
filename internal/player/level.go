package player

// LevelStats is one row of the level table before name growth is applied.
type LevelStats struct {
	Level      int `json:"level"`
	Strength   int `json:"strength"`
	Agility    int `json:"agility"`
	MaxHP      int `json:"max_hp"`
	MaxMP      int `json:"max_mp"`
	Experience int `json:"experience"` // cumulative experience needed
}

const MaxLevel = 30

var levelTable = [MaxLevel]LevelStats{
	{1, 4, 4, 15, 0, 0},
	{2, 5, 4, 22, 0, 7},
	{3, 7, 6, 24, 5, 23},
	{4, 7, 8, 31, 16, 47},
	{5, 12, 10, 35, 20, 110},
	{6, 16, 10, 38, 24, 220},
	{7, 18, 17, 40, 26, 450},
	{8, 22, 20, 46, 29, 800},
	{9, 30, 22, 50, 36, 1300},
	{10, 35, 31, 54, 40, 2000},
	{11, 40, 35, 62, 50, 2900},
	{12, 48, 40, 63, 58, 4000},
	{13, 52, 48, 70, 64, 5500},
	{14, 60, 55, 78, 70, 7500},
	{15, 68, 64, 86, 72, 10000},
	{16, 72, 70, 92, 95, 13000},
	{17, 72, 78, 100, 100, 17000},
	{18, 85, 84, 115, 108, 21000},
	{19, 87, 86, 130, 115, 25000},
	{20, 92, 88, 138, 128, 29000},
	{21, 95, 90, 149, 135, 33000},
	{22, 97, 90, 158, 146, 37000},
	{23, 99, 94, 165, 153, 41000},
	{24, 103, 98, 170, 161, 45000},
	{25, 113, 100, 174, 161, 49000},
	{26, 117, 105, 180, 168, 53000},
	{27, 125, 107, 189, 175, 57000},
	{28, 130, 115, 195, 180, 61000},
	{29, 135, 120, 200, 190, 65000},
	{30, 140, 130, 210, 200, 65535},
}

// Levels returns a copy of the base level table.
func Levels() []LevelStats {
	out := make([]LevelStats, MaxLevel)
	copy(out, levelTable[:])
	return out
}

// LevelForExperience returns the highest level whose threshold exp meets.
func LevelForExperience(exp int) int {
	level := 1
	for _, row := range levelTable {
		if exp >= row.Experience {
			level = row.Level
		}
	}
	return level
}

// ExperienceFor returns the cumulative experience needed for level,
// clamping level into 1..MaxLevel.
func ExperienceFor(level int) int {
	return baseStats(level).Experience
}

func baseStats(level int) LevelStats {
	level = min(max(level, 1), MaxLevel)
	return levelTable[level-1]
}

// StatsFor returns the level row adjusted by the growth of name.
func StatsFor(name string, level int) LevelStats {
	g := GrowthFor(name)
	base := baseStats(level)
	return LevelStats{
		Level:      base.Level,
		Strength:   g.apply(base.Strength, g.C == 1),
		Agility:    g.apply(base.Agility, g.B == 1),
		MaxHP:      g.apply(base.MaxHP, g.B == 0),
		MaxMP:      g.apply(base.MaxMP, g.C == 0),
		Experience: base.Experience,
	}
}

package gamedata

// EnemyDef defines an enemy template loaded from JSON.
type EnemyDef struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Level       int       `json:"level"`
	Stats       StatBlock `json:"stats"`
	BaseHealth  int       `json:"baseHealth"`
	BaseMana    int       `json:"baseMana"`
	Skills      []string  `json:"skills"`
	SpawnWeight int       `json:"spawnWeight"`
	// Experience is the base experience value granted on defeat, before the
	// difficulty multiplier is applied.
	Experience int `json:"experience"`
}

// EnemiesFile represents the structure of enemies.json.
type EnemiesFile struct {
	Enemies []EnemyDef `json:"enemies"`
}

// LoadEnemies loads enemy definitions from the embedded enemies.json file.
func LoadEnemies() ([]EnemyDef, error) {
	file, err := Load[EnemiesFile]("enemies.json")
	if err != nil {
		return nil, err
	}
	return file.Enemies, nil
}

// PhaseDef is one entry of a boss phase table. Threshold is the HP fraction
// at or below which the phase fires.
type PhaseDef struct {
	Threshold float64  `json:"threshold"`
	Abilities []string `json:"abilities"`
	Message   string   `json:"message"`
}

// BossDef defines a boss template loaded from JSON. A boss is an enemy with a
// phase table and resistances.
type BossDef struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Level            int        `json:"level"`
	Stats            StatBlock  `json:"stats"`
	BaseHealth       int        `json:"baseHealth"`
	BaseMana         int        `json:"baseMana"`
	Skills           []string   `json:"skills"`
	Experience       int        `json:"experience"`
	Phases           []PhaseDef `json:"phases"`
	StatusResistance float64    `json:"statusResistance,omitempty"`
	CritResistance   float64    `json:"critResistance,omitempty"`
	Trophy           string     `json:"trophy"`
}

// BossesFile represents the structure of bosses.json.
type BossesFile struct {
	Bosses []BossDef `json:"bosses"`
}

// LoadBosses loads boss definitions from the embedded bosses.json file.
func LoadBosses() ([]BossDef, error) {
	file, err := Load[BossesFile]("bosses.json")
	if err != nil {
		return nil, err
	}
	return file.Bosses, nil
}

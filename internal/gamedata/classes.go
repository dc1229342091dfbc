package gamedata

// StatBlock holds the four primary stats shared by every entity.
type StatBlock struct {
	Strength     int `json:"strength"`
	Agility      int `json:"agility"`
	Intelligence int `json:"intelligence"`
	Vitality     int `json:"vitality"`
}

// GrowthRates are the per-level fractional gains for each primary stat.
type GrowthRates struct {
	Strength     float64 `json:"strength"`
	Agility      float64 `json:"agility"`
	Intelligence float64 `json:"intelligence"`
	Vitality     float64 `json:"vitality"`
}

// ClassDef defines a playable class loaded from JSON.
type ClassDef struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	BaseStats      StatBlock   `json:"baseStats"`
	Growth         GrowthRates `json:"growth"`
	BaseHealth     int         `json:"baseHealth"`
	BaseMana       int         `json:"baseMana"`
	HealthPerLevel int         `json:"healthPerLevel"`
	ManaPerLevel   int         `json:"manaPerLevel"`
	Skills         []string    `json:"skills"`
}

// ClassesFile represents the structure of classes.json.
type ClassesFile struct {
	Classes []ClassDef `json:"classes"`
}

// LoadClasses loads class definitions from the embedded classes.json file.
func LoadClasses() ([]ClassDef, error) {
	file, err := Load[ClassesFile]("classes.json")
	if err != nil {
		return nil, err
	}
	return file.Classes, nil
}

// FactionDef defines a starting faction and its character-creation bonuses.
type FactionDef struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DefenseBonus   float64 `json:"defenseBonus,omitempty"` // multiplicative, e.g. 1.1
	HealthBonus    float64 `json:"healthBonus,omitempty"`  // multiplicative on max health
	ManaBonus      float64 `json:"manaBonus,omitempty"`    // multiplicative on max mana
	StartingGold   int     `json:"startingGold,omitempty"`
	BaseReputation int     `json:"baseReputation,omitempty"`
}

// FactionsFile represents the structure of factions.json.
type FactionsFile struct {
	Factions []FactionDef `json:"factions"`
}

// LoadFactions loads faction definitions from the embedded factions.json file.
func LoadFactions() ([]FactionDef, error) {
	file, err := Load[FactionsFile]("factions.json")
	if err != nil {
		return nil, err
	}
	return file.Factions, nil
}

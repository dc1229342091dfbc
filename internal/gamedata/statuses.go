package gamedata

// StatusType identifies a status effect from the fixed catalog.
type StatusType string

const (
	StatusNone          StatusType = ""
	StatusStrengthBoost StatusType = "strength_boost"
	StatusDefenseBoost  StatusType = "defense_boost"
	StatusSpeedBoost    StatusType = "speed_boost"
	StatusRegeneration  StatusType = "regeneration"
	StatusPoison        StatusType = "poison"
	StatusWeakness      StatusType = "weakness"
	StatusSlow          StatusType = "slow"
	StatusCurse         StatusType = "curse"
	StatusStunned       StatusType = "stunned"
	StatusBleeding      StatusType = "bleeding"
	StatusBurning       StatusType = "burning"
	StatusFrozen        StatusType = "frozen"
	StatusFocused       StatusType = "focused"
	StatusBlessed       StatusType = "blessed"
	StatusBlinded       StatusType = "blinded"
	StatusEnraged       StatusType = "enraged"
)

// StatusKind describes how a status effect's magnitude is interpreted.
type StatusKind string

const (
	// KindModifier scales damage, healing, accuracy or crit chance during
	// skill resolution. The multiplier lives in StatusDef.Magnitude.
	KindModifier StatusKind = "modifier"
	// KindDamageOverTime deals Magnitude*maxHealth damage at each
	// owner-turn end.
	KindDamageOverTime StatusKind = "dot"
	// KindHealOverTime restores Magnitude*maxHealth at each owner-turn end.
	KindHealOverTime StatusKind = "hot"
	// KindControl prevents the owner from acting while present.
	KindControl StatusKind = "control"
)

// StatusDef defines a catalog entry for one status effect type. Magnitude is
// the default payload copied onto instances when a skill applies the effect.
type StatusDef struct {
	Type        StatusType `json:"type"`
	Name        string     `json:"name"`
	Kind        StatusKind `json:"kind"`
	Magnitude   float64    `json:"magnitude"`
	Description string     `json:"description,omitempty"`
}

// IsControl reports whether the effect prevents its owner from acting.
func (d *StatusDef) IsControl() bool { return d.Kind == KindControl }

// StatusesFile represents the structure of statuses.json.
type StatusesFile struct {
	Statuses []StatusDef `json:"statuses"`
}

// LoadStatuses loads status effect definitions from the embedded statuses.json.
func LoadStatuses() ([]StatusDef, error) {
	file, err := Load[StatusesFile]("statuses.json")
	if err != nil {
		return nil, err
	}
	return file.Statuses, nil
}

// Package entity provides the combatant model shared by the player character,
// enemies and bosses, together with the factory that builds them from content
// tables.
package entity

import (
	"sort"

	"github.com/samdwyer/echocrawl/internal/gamedata"
)

// Skill is a live skill instance owned by an entity. The definition is shared
// and immutable; only the cooldown counter and unlock flag are per-instance.
type Skill struct {
	Def      *gamedata.SkillDef
	Cooldown int // turns until usable again; 0 means ready
	Unlocked bool
}

// Ready reports whether the skill can be selected this turn.
func (s *Skill) Ready() bool { return s.Unlocked && s.Cooldown == 0 }

// ActiveStatus is one status effect currently attached to an entity.
// Magnitude is interpreted per the status type's catalog kind.
type ActiveStatus struct {
	Type      gamedata.StatusType `json:"type"`
	Remaining int                 `json:"remaining"`
	Magnitude float64             `json:"magnitude"`
}

// StatusTick records what happened when one status effect was processed at
// end of turn.
type StatusTick struct {
	Type   gamedata.StatusType
	Damage int
	Heal   int
	Ended  bool
}

// Entity is any combatant: the run character, a regular enemy, or a boss.
type Entity struct {
	Name       string `json:"name"`
	TemplateID string `json:"templateId"`
	ClassID    string `json:"classId,omitempty"`
	FactionID  string `json:"factionId,omitempty"`

	Level            int `json:"level"`
	Experience       int `json:"experience"`
	ExperienceToNext int `json:"experienceToNext"`

	// Primary stats. BaseStats track permanent values; Stats are current
	// (identical outside combat, where temporary modifiers do not persist).
	Stats     gamedata.StatBlock   `json:"stats"`
	BaseStats gamedata.StatBlock   `json:"baseStats"`
	Growth    gamedata.GrowthRates `json:"growth"`

	BaseHealth     int `json:"baseHealth"`
	BaseMana       int `json:"baseMana"`
	HealthPerLevel int `json:"healthPerLevel"`
	ManaPerLevel   int `json:"manaPerLevel"`

	// Derived stats, recomputed whenever primaries change.
	MaxHealth int `json:"maxHealth"`
	MaxMana   int `json:"maxMana"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	Speed     int `json:"speed"`

	HP   int `json:"hp"`
	Mana int `json:"mana"`

	Gold int `json:"gold"`

	Statuses map[gamedata.StatusType]*ActiveStatus `json:"statuses"`
	Skills   []*Skill                              `json:"-"`

	// SkillIDs mirrors Skills for persistence; live instances are rebuilt
	// from the content tables on load.
	SkillIDs []string `json:"skillIds"`

	// Boss-only fields.
	IsBoss            bool                `json:"isBoss,omitempty"`
	Phases            []gamedata.PhaseDef `json:"phases,omitempty"`
	TriggeredPhases   map[int]bool        `json:"triggeredPhases,omitempty"`
	CurrentPhaseIndex int                 `json:"currentPhaseIndex,omitempty"`
	StatusResistance  float64             `json:"statusResistance,omitempty"`
	CritResistance    float64             `json:"critResistance,omitempty"`
	Trophy            string              `json:"trophy,omitempty"`

	// Reward inputs carried by enemies.
	BaseExperience int     `json:"baseExperience,omitempty"`
	DifficultyMult float64 `json:"difficultyMult,omitempty"`
}

// IsAlive reports whether the entity has health remaining.
func (e *Entity) IsAlive() bool { return e.HP > 0 }

// HPFraction returns current health as a fraction of maximum.
func (e *Entity) HPFraction() float64 {
	if e.MaxHealth <= 0 {
		return 0
	}
	return float64(e.HP) / float64(e.MaxHealth)
}

// TakeDamage reduces HP, flooring at zero, and returns the damage applied.
func (e *Entity) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > e.HP {
		amount = e.HP
	}
	e.HP -= amount
	return amount
}

// Heal restores HP, capping at MaxHealth, and returns the amount restored.
func (e *Entity) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	if e.HP+amount > e.MaxHealth {
		amount = e.MaxHealth - e.HP
	}
	e.HP += amount
	return amount
}

// SpendMana deducts the cost, returning false if insufficient.
func (e *Entity) SpendMana(cost int) bool {
	if e.Mana < cost {
		return false
	}
	e.Mana -= cost
	return true
}

// RestoreMana restores mana, capping at MaxMana.
func (e *Entity) RestoreMana(amount int) int {
	if amount <= 0 {
		return 0
	}
	if e.Mana+amount > e.MaxMana {
		amount = e.MaxMana - e.Mana
	}
	e.Mana += amount
	return amount
}

// HasStatus reports whether the named effect is active.
func (e *Entity) HasStatus(st gamedata.StatusType) bool {
	_, ok := e.Statuses[st]
	return ok
}

// StatusMagnitude returns the active effect's magnitude, or fallback when the
// effect is absent.
func (e *Entity) StatusMagnitude(st gamedata.StatusType, fallback float64) float64 {
	if s, ok := e.Statuses[st]; ok {
		return s.Magnitude
	}
	return fallback
}

// Incapacitated reports whether the entity is prevented from acting.
func (e *Entity) Incapacitated() bool {
	return e.HasStatus(gamedata.StatusStunned) || e.HasStatus(gamedata.StatusFrozen)
}

// AddStatus attaches an effect, refreshing duration if already present.
func (e *Entity) AddStatus(st gamedata.StatusType, duration int, magnitude float64) {
	if e.Statuses == nil {
		e.Statuses = make(map[gamedata.StatusType]*ActiveStatus)
	}
	e.Statuses[st] = &ActiveStatus{Type: st, Remaining: duration, Magnitude: magnitude}
}

// RemoveStatus detaches the named effect.
func (e *Entity) RemoveStatus(st gamedata.StatusType) {
	delete(e.Statuses, st)
}

// TickStatuses processes end-of-turn status effects: DoT/HoT amounts are
// applied and all durations decrement. Effects tick in sorted type order so
// the combat log is reproducible under a fixed seed. Expiring keys are
// collected during the pass and removed after it completes.
func (e *Entity) TickStatuses(tables *gamedata.Tables) []StatusTick {
	var ticks []StatusTick
	var expired []gamedata.StatusType

	keys := make([]gamedata.StatusType, 0, len(e.Statuses))
	for st := range e.Statuses {
		keys = append(keys, st)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, st := range keys {
		active := e.Statuses[st]
		tick := StatusTick{Type: st}
		if def := tables.Status(st); def != nil {
			switch def.Kind {
			case gamedata.KindDamageOverTime:
				amount := int(active.Magnitude * float64(e.MaxHealth))
				if amount < 1 {
					amount = 1
				}
				tick.Damage = e.TakeDamage(amount)
			case gamedata.KindHealOverTime:
				amount := int(active.Magnitude * float64(e.MaxHealth))
				if amount < 1 {
					amount = 1
				}
				tick.Heal = e.Heal(amount)
			}
		}
		active.Remaining--
		if active.Remaining <= 0 {
			tick.Ended = true
			expired = append(expired, st)
		}
		ticks = append(ticks, tick)
	}
	for _, st := range expired {
		delete(e.Statuses, st)
	}
	return ticks
}

// TickCooldowns decrements every skill cooldown that is above zero.
func (e *Entity) TickCooldowns() {
	for _, s := range e.Skills {
		if s.Cooldown > 0 {
			s.Cooldown--
		}
	}
}

// RecomputeDerived refreshes derived stats from current primaries. Current
// HP and mana are clamped into the new bounds.
func (e *Entity) RecomputeDerived() {
	e.MaxHealth = e.BaseHealth + e.Stats.Vitality*5
	e.MaxMana = e.BaseMana + e.Stats.Intelligence*3
	e.Attack = e.Stats.Strength
	e.Defense = int(float64(e.Stats.Vitality) * 0.8)
	e.Speed = e.Stats.Agility
	if e.HP > e.MaxHealth {
		e.HP = e.MaxHealth
	}
	if e.Mana > e.MaxMana {
		e.Mana = e.MaxMana
	}
}

// Clone returns a deep copy of the entity. Combat operates on clones so the
// canonical run character is untouched by intra-combat mutation.
func (e *Entity) Clone() *Entity {
	clone := *e
	clone.Statuses = make(map[gamedata.StatusType]*ActiveStatus, len(e.Statuses))
	for st, active := range e.Statuses {
		copied := *active
		clone.Statuses[st] = &copied
	}
	clone.Skills = make([]*Skill, len(e.Skills))
	for i, s := range e.Skills {
		copied := *s
		clone.Skills[i] = &copied
	}
	clone.SkillIDs = append([]string(nil), e.SkillIDs...)
	clone.Phases = append([]gamedata.PhaseDef(nil), e.Phases...)
	clone.TriggeredPhases = make(map[int]bool, len(e.TriggeredPhases))
	for idx, v := range e.TriggeredPhases {
		clone.TriggeredPhases[idx] = v
	}
	return &clone
}

// AttackStat returns the primary stat driving a skill type's damage:
// strength for physical, intelligence for magic, agility for ranged, and the
// generic attack stat otherwise.
func (e *Entity) AttackStat(t gamedata.SkillType) int {
	switch t {
	case gamedata.SkillPhysical:
		return e.Stats.Strength
	case gamedata.SkillMagic:
		return e.Stats.Intelligence
	case gamedata.SkillRanged:
		return e.Stats.Agility
	default:
		return e.Attack
	}
}

// HealStat returns the primary stat driving a skill type's healing:
// intelligence for magic skills, vitality otherwise.
func (e *Entity) HealStat(t gamedata.SkillType) int {
	if t == gamedata.SkillMagic {
		return e.Stats.Intelligence
	}
	return e.Stats.Vitality
}

package gamedata

// =============================================================================
// SKILL SYSTEM
// =============================================================================
//
// Skills are data-driven actions used by both the player character and
// enemies. They are defined in skills.json and loaded at startup.
//
// Damage calculation (resolved in internal/combat):
//   raw     = damage + attackStat(caster, skillType) * scalingFactor
//   attack stat: strength for physical, intelligence for magic,
//                agility for ranged, generic attack otherwise
//   mitigated = raw * (1 - defense/(defense+100))
//   then variance [0.85, 1.15], status modifiers, floor, minimum 1.
//
// Healing: healing + (intelligence|vitality) * scalingFactor.
//
// Omitted accuracy means "use the global default 0.90". Skills that should
// never miss set alwaysHits instead of relying on omission.

// SkillType categorizes a skill's damage/utility class.
type SkillType string

const (
	SkillPhysical SkillType = "physical"
	SkillMagic    SkillType = "magic"
	SkillRanged   SkillType = "ranged"
	SkillUtility  SkillType = "utility"
	SkillBuff     SkillType = "buff"
	SkillDebuff   SkillType = "debuff"
)

// SkillHook names a special-case behavior attached to specific skills.
// Hooks are validated at content-load time; an unknown hook is a content bug.
type SkillHook string

const (
	HookNone SkillHook = ""
	// HookCharge telegraphs a warning before a non-player caster resolves.
	HookCharge SkillHook = "charge"
	// HookFireball always hits and rolls its own burn chance.
	HookFireball SkillHook = "fireball"
	// HookIceStorm carries an independent freeze chance when used by a boss.
	HookIceStorm SkillHook = "ice_storm"
	// HookShadowStep always hits.
	HookShadowStep SkillHook = "shadow_step"
)

// KnownHooks is the set of hooks the combat engine implements.
var KnownHooks = map[SkillHook]bool{
	HookNone:       true,
	HookCharge:     true,
	HookFireball:   true,
	HookIceStorm:   true,
	HookShadowStep: true,
}

// SkillStatus is a status effect a skill may apply on use.
type SkillStatus struct {
	Type     StatusType `json:"type"`
	Duration int        `json:"duration"`
	Chance   float64    `json:"chance"`
	// TargetSelf applies the effect to the caster instead of the target.
	TargetSelf bool `json:"targetSelf,omitempty"`
}

// SkillDef defines a skill loaded from JSON.
type SkillDef struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Type          SkillType     `json:"type"`
	Damage        int           `json:"damage,omitempty"`
	Healing       int           `json:"healing,omitempty"`
	ManaCost      int           `json:"manaCost"`
	Cooldown      int           `json:"cooldown"`
	ScalingFactor float64       `json:"scalingFactor"`
	Accuracy      float64       `json:"accuracy,omitempty"` // 0 = default 0.90
	AlwaysHits    bool          `json:"alwaysHits,omitempty"`
	CritChance    float64       `json:"critChance,omitempty"` // 0 = default 0.10
	CritMult      float64       `json:"critMult,omitempty"`   // 0 = default 2.0
	UnlockLevel   int           `json:"unlockLevel,omitempty"`
	Statuses      []SkillStatus `json:"statuses,omitempty"`
	Hook          SkillHook     `json:"hook,omitempty"`
}

// EffectiveAccuracy returns the skill's accuracy, applying the 0.90 default.
func (s *SkillDef) EffectiveAccuracy() float64 {
	if s.Accuracy > 0 {
		return s.Accuracy
	}
	return 0.90
}

// EffectiveCritChance returns the skill's crit chance, applying the 0.10 default.
func (s *SkillDef) EffectiveCritChance() float64 {
	if s.CritChance > 0 {
		return s.CritChance
	}
	return 0.10
}

// EffectiveCritMult returns the skill's crit multiplier, applying the 2.0 default.
func (s *SkillDef) EffectiveCritMult() float64 {
	if s.CritMult > 0 {
		return s.CritMult
	}
	return 2.0
}

// IsOffensive reports whether the skill has a damage component.
func (s *SkillDef) IsOffensive() bool { return s.Damage > 0 }

// SkillsFile represents the structure of skills.json.
type SkillsFile struct {
	Skills []SkillDef `json:"skills"`
}

// LoadSkills loads skill definitions from the embedded skills.json file.
func LoadSkills() ([]SkillDef, error) {
	file, err := Load[SkillsFile]("skills.json")
	if err != nil {
		return nil, err
	}
	return file.Skills, nil
}

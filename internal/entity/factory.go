package entity

import (
	"fmt"
	"math"

	"github.com/samdwyer/echocrawl/internal/gamedata"
	"github.com/samdwyer/echocrawl/internal/rng"
)

const baseExperienceToNext = 100

// Factory creates characters, enemies and bosses from the content tables.
type Factory struct {
	tables *gamedata.Tables
	random rng.Source
}

// NewFactory creates an entity factory.
func NewFactory(tables *gamedata.Tables, random rng.Source) *Factory {
	return &Factory{tables: tables, random: random}
}

// instantiateSkills builds live skill instances for the given IDs, marking
// each unlocked when its level requirement is met.
func (f *Factory) instantiateSkills(ids []string, level int) []*Skill {
	skills := make([]*Skill, 0, len(ids))
	for _, id := range ids {
		def := f.tables.Skill(id)
		if def == nil {
			continue
		}
		skills = append(skills, &Skill{
			Def:      def,
			Cooldown: 0,
			Unlocked: def.UnlockLevel <= level,
		})
	}
	return skills
}

// CreateCharacter builds a level-1 run character from a class template and
// applies the faction's creation bonuses. An unknown class is a
// content-authoring bug and fails hard.
func (f *Factory) CreateCharacter(classID, factionID string) (*Entity, error) {
	class, err := f.tables.Class(classID)
	if err != nil {
		return nil, err
	}
	faction, err := f.tables.Faction(factionID)
	if err != nil {
		return nil, err
	}

	e := &Entity{
		Name:             class.Name,
		TemplateID:       class.ID,
		ClassID:          class.ID,
		FactionID:        faction.ID,
		Level:            1,
		ExperienceToNext: baseExperienceToNext,
		Stats:            class.BaseStats,
		BaseStats:        class.BaseStats,
		Growth:           class.Growth,
		BaseHealth:       class.BaseHealth,
		BaseMana:         class.BaseMana,
		HealthPerLevel:   class.HealthPerLevel,
		ManaPerLevel:     class.ManaPerLevel,
		Gold:             faction.StartingGold,
		Statuses:         make(map[gamedata.StatusType]*ActiveStatus),
		SkillIDs:         append([]string(nil), class.Skills...),
	}
	e.Skills = f.instantiateSkills(class.Skills, e.Level)
	e.RecomputeDerived()

	if faction.HealthBonus > 0 {
		e.MaxHealth = int(float64(e.MaxHealth) * faction.HealthBonus)
	}
	if faction.ManaBonus > 0 {
		e.MaxMana = int(float64(e.MaxMana) * faction.ManaBonus)
	}
	if faction.DefenseBonus > 0 {
		e.Defense = int(float64(e.Defense) * faction.DefenseBonus)
	}
	e.HP = e.MaxHealth
	e.Mana = e.MaxMana
	return e, nil
}

// LevelUpResult describes one level gained by GrantExperience.
type LevelUpResult struct {
	NewLevel       int
	StatGains      gamedata.StatBlock
	HealthGain     int
	ManaGain       int
	UnlockedSkills []string
}

// GrantExperience adds experience and applies as many level-ups as the total
// now covers. Each level raises stats by floor(growth + uniform(0,1)),
// increases health and mana by the class constant plus a stat-derived bonus,
// partially heals by the same delta, and unlocks any skills whose level
// requirement is now met.
func (f *Factory) GrantExperience(e *Entity, amount int) []LevelUpResult {
	e.Experience += amount
	var results []LevelUpResult

	for e.Experience >= e.ExperienceToNext {
		e.Experience -= e.ExperienceToNext
		e.ExperienceToNext = int(float64(e.ExperienceToNext) * 1.2)
		e.Level++

		gains := gamedata.StatBlock{
			Strength:     statGain(f.random, e.Growth.Strength),
			Agility:      statGain(f.random, e.Growth.Agility),
			Intelligence: statGain(f.random, e.Growth.Intelligence),
			Vitality:     statGain(f.random, e.Growth.Vitality),
		}
		e.BaseStats.Strength += gains.Strength
		e.BaseStats.Agility += gains.Agility
		e.BaseStats.Intelligence += gains.Intelligence
		e.BaseStats.Vitality += gains.Vitality
		e.Stats.Strength += gains.Strength
		e.Stats.Agility += gains.Agility
		e.Stats.Intelligence += gains.Intelligence
		e.Stats.Vitality += gains.Vitality

		healthGain := e.HealthPerLevel + gains.Vitality*2
		manaGain := e.ManaPerLevel + gains.Intelligence
		e.BaseHealth += healthGain
		e.BaseMana += manaGain
		e.RecomputeDerived()
		e.HP += healthGain
		if e.HP > e.MaxHealth {
			e.HP = e.MaxHealth
		}
		e.Mana += manaGain
		if e.Mana > e.MaxMana {
			e.Mana = e.MaxMana
		}

		var unlocked []string
		for _, s := range e.Skills {
			if !s.Unlocked && s.Def.UnlockLevel <= e.Level {
				s.Unlocked = true
				unlocked = append(unlocked, s.Def.ID)
			}
		}

		results = append(results, LevelUpResult{
			NewLevel:       e.Level,
			StatGains:      gains,
			HealthGain:     healthGain,
			ManaGain:       manaGain,
			UnlockedSkills: unlocked,
		})
	}
	return results
}

// statGain converts a fractional growth rate into this level's integer gain.
func statGain(random rng.Source, growth float64) int {
	return int(math.Floor(growth + random.Float64()))
}

// CreateEnemy builds a combat-ready enemy from its template, scaled by the
// node's difficulty multiplier.
func (f *Factory) CreateEnemy(templateID string, difficulty float64) (*Entity, error) {
	def := f.tables.Enemy(templateID)
	if def == nil {
		return nil, fmt.Errorf("%w: %s", gamedata.ErrUnknownEnemy, templateID)
	}
	e := &Entity{
		Name:           def.Name,
		TemplateID:     def.ID,
		Level:          def.Level,
		Stats:          def.Stats,
		BaseStats:      def.Stats,
		BaseHealth:     def.BaseHealth,
		BaseMana:       def.BaseMana,
		Statuses:       make(map[gamedata.StatusType]*ActiveStatus),
		SkillIDs:       append([]string(nil), def.Skills...),
		BaseExperience: def.Experience,
		DifficultyMult: difficulty,
	}
	e.Skills = f.instantiateSkills(def.Skills, e.Level)
	e.RecomputeDerived()
	scaleCombatStats(e, difficulty)
	e.HP = e.MaxHealth
	e.Mana = e.MaxMana
	return e, nil
}

// CreateBoss builds a boss entity from its template and scales it to the
// given difficulty.
func (f *Factory) CreateBoss(templateID string, difficulty float64) (*Entity, error) {
	def := f.tables.Boss(templateID)
	if def == nil {
		return nil, fmt.Errorf("%w: %s", gamedata.ErrUnknownBoss, templateID)
	}
	e := &Entity{
		Name:             def.Name,
		TemplateID:       def.ID,
		Level:            def.Level,
		Stats:            def.Stats,
		BaseStats:        def.Stats,
		BaseHealth:       def.BaseHealth,
		BaseMana:         def.BaseMana,
		Statuses:         make(map[gamedata.StatusType]*ActiveStatus),
		SkillIDs:         append([]string(nil), def.Skills...),
		BaseExperience:   def.Experience,
		IsBoss:           true,
		Phases:           append([]gamedata.PhaseDef(nil), def.Phases...),
		TriggeredPhases:  make(map[int]bool),
		StatusResistance: def.StatusResistance,
		CritResistance:   def.CritResistance,
		Trophy:           def.Trophy,
	}
	e.Skills = f.instantiateSkills(def.Skills, e.Level)
	e.RecomputeDerived()
	e.HP = e.MaxHealth
	e.Mana = e.MaxMana
	return f.ScaleBoss(e, difficulty), nil
}

// ScaleBoss returns a scaled copy of the boss: health, attack and defense are
// multiplied by the difficulty, level is raised to at least floor(diff*5),
// and past 1.5 difficulty the boss gains an enrage ability.
func (f *Factory) ScaleBoss(boss *Entity, difficulty float64) *Entity {
	scaled := boss.Clone()
	scaled.DifficultyMult = difficulty
	scaled.MaxHealth = int(float64(scaled.MaxHealth) * difficulty)
	scaled.HP = int(float64(scaled.HP) * difficulty)
	scaled.Attack = int(float64(scaled.Attack) * difficulty)
	scaled.Defense = int(float64(scaled.Defense) * difficulty)
	if minLevel := int(difficulty * 5); minLevel > scaled.Level {
		scaled.Level = minLevel
	}
	if difficulty > 1.5 && !scaled.hasSkill("enrage") {
		if def := f.tables.Skill("enrage"); def != nil {
			scaled.Skills = append(scaled.Skills, &Skill{Def: def, Unlocked: true})
			scaled.SkillIDs = append(scaled.SkillIDs, "enrage")
		}
	}
	return scaled
}

func (e *Entity) hasSkill(id string) bool {
	for _, s := range e.Skills {
		if s.Def.ID == id {
			return true
		}
	}
	return false
}

// RestoreSkills rebuilds live skill instances from persisted skill IDs.
// Used when loading a saved run; cooldowns reset, unlocks follow level.
func (f *Factory) RestoreSkills(e *Entity) {
	e.Skills = f.instantiateSkills(e.SkillIDs, e.Level)
}

// scaleCombatStats multiplies the derived combat stats by a difficulty
// factor, keeping at least the unscaled values for difficulty below 1.
func scaleCombatStats(e *Entity, difficulty float64) {
	if difficulty <= 0 {
		return
	}
	e.MaxHealth = int(float64(e.MaxHealth) * difficulty)
	e.Attack = int(float64(e.Attack) * difficulty)
	e.Defense = int(float64(e.Defense) * difficulty)
}

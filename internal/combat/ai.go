package combat

import (
	"strings"

	"github.com/samdwyer/echocrawl/internal/entity"
	"github.com/samdwyer/echocrawl/internal/gamedata"
	"github.com/samdwyer/echocrawl/internal/rng"
)

// aiCategory is a behavior priority an AI pattern weighs.
type aiCategory string

const (
	actAttack  aiCategory = "attack"
	actSpecial aiCategory = "special"
	actBuff    aiCategory = "buff"
	actDebuff  aiCategory = "debuff"
	actDefend  aiCategory = "defend"
	actHeal    aiCategory = "heal"
)

// aiPriority is one weighted entry of a behavior pattern.
type aiPriority struct {
	category aiCategory
	weight   float64
}

// Behavior patterns, chosen by enemy archetype. Weights are walked
// cumulatively against a single uniform draw.
var (
	patternAggressive = []aiPriority{{actAttack, 0.6}, {actSpecial, 0.3}, {actBuff, 0.1}}
	patternDefensive  = []aiPriority{{actDefend, 0.4}, {actAttack, 0.4}, {actBuff, 0.2}}
	patternTactical   = []aiPriority{{actSpecial, 0.4}, {actDebuff, 0.3}, {actAttack, 0.2}, {actHeal, 0.1}}
	patternBerserker  = []aiPriority{{actAttack, 0.7}, {actSpecial, 0.3}}
)

const (
	phaseAbilityChance = 0.30
	lowHealthFraction  = 0.30
	healBelowFraction  = 0.50
)

// enemyAct chooses and executes the enemy's action for this turn.
func (e *Engine) enemyAct() {
	// Bosses with unlocked phase abilities favor them.
	if e.enemy.IsBoss && len(e.phasePool) > 0 && e.random.Float64() < phaseAbilityChance {
		abilityID := rng.Choice(e.random, e.phasePool)
		if skill := e.findUsableSkill(abilityID); skill != nil {
			e.executeEnemySkill(skill)
			return
		}
	}

	pattern := e.selectPattern()
	category := e.drawCategory(pattern)

	if category == actDefend {
		e.enemyDefend()
		return
	}

	skill := e.resolveCategory(category)
	if skill == nil {
		e.log(e.enemy.Name+" hesitates.", SeverityInfo)
		return
	}
	e.executeEnemySkill(skill)
}

// selectPattern picks the behavior pattern by enemy archetype: giants and
// tanks turtle up, casters play tactically, berserkers (or anyone below 30%
// health) go all-in, everyone else defaults to aggressive.
func (e *Engine) selectPattern() []aiPriority {
	id := strings.ToLower(e.enemy.TemplateID)
	switch {
	case strings.Contains(id, "giant") || strings.Contains(id, "tank"):
		return patternDefensive
	case strings.Contains(id, "mage") || strings.Contains(id, "lich"):
		return patternTactical
	case strings.Contains(id, "berserker") || e.enemy.HPFraction() < lowHealthFraction:
		return patternBerserker
	default:
		return patternAggressive
	}
}

// drawCategory walks the pattern's cumulative weights against one uniform draw.
func (e *Engine) drawCategory(pattern []aiPriority) aiCategory {
	total := 0.0
	for _, p := range pattern {
		total += p.weight
	}
	roll := e.random.Float64() * total
	cumulative := 0.0
	for _, p := range pattern {
		cumulative += p.weight
		if roll < cumulative {
			return p.category
		}
	}
	return pattern[0].category
}

// resolveCategory maps a priority category to a concrete usable skill,
// falling back to the basic attack when the enemy has nothing suitable.
func (e *Engine) resolveCategory(category aiCategory) *entity.Skill {
	switch category {
	case actSpecial:
		if s := e.pickSkill(func(s *entity.Skill) bool {
			return s.Def.IsOffensive() && s.Def.ID != "attack"
		}); s != nil {
			return s
		}
	case actBuff:
		if s := e.pickSkill(func(s *entity.Skill) bool {
			return s.Def.Type == gamedata.SkillBuff && s.Def.Healing == 0
		}); s != nil {
			return s
		}
	case actDebuff:
		if s := e.pickSkill(func(s *entity.Skill) bool {
			return s.Def.Type == gamedata.SkillDebuff
		}); s != nil {
			return s
		}
	case actHeal:
		// Healing is only worthwhile when wounded and actually possible.
		if e.enemy.HPFraction() < healBelowFraction {
			if s := e.pickSkill(func(s *entity.Skill) bool {
				return s.Def.Healing > 0
			}); s != nil {
				return s
			}
		}
	}
	return e.basicAttack()
}

// pickSkill returns the first usable enemy skill matching the predicate.
func (e *Engine) pickSkill(match func(*entity.Skill) bool) *entity.Skill {
	for _, s := range e.enemy.Skills {
		if e.usable(s) && match(s) {
			return s
		}
	}
	return nil
}

// findUsableSkill locates a usable skill by ID on the enemy.
func (e *Engine) findUsableSkill(id string) *entity.Skill {
	for _, s := range e.enemy.Skills {
		if s.Def.ID == id && e.usable(s) {
			return s
		}
	}
	return nil
}

// basicAttack returns the enemy's basic attack, or any usable offensive
// skill as a last resort.
func (e *Engine) basicAttack() *entity.Skill {
	if s := e.findUsableSkill("attack"); s != nil {
		return s
	}
	return e.pickSkill(func(s *entity.Skill) bool { return s.Def.IsOffensive() })
}

// usable reports whether the enemy can pay for and fire the skill this turn.
func (e *Engine) usable(s *entity.Skill) bool {
	return s.Ready() && e.enemy.Mana >= s.Def.ManaCost
}

// enemyDefend applies a self defense boost in place of a skill.
func (e *Engine) enemyDefend() {
	magnitude := 0.7
	if def := e.tables.Status(gamedata.StatusDefenseBoost); def != nil {
		magnitude = def.Magnitude
	}
	e.enemy.AddStatus(gamedata.StatusDefenseBoost, 2, magnitude)
	e.log(e.enemy.Name+" assumes a defensive stance.", SeverityInfo)
}

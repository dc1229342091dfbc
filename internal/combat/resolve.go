package combat

import (
	"math"
	"strconv"

	"github.com/samdwyer/echocrawl/internal/entity"
	"github.com/samdwyer/echocrawl/internal/gamedata"
)

// queuedStatus is a status effect that rolled successfully during resolution
// and awaits application (subject to the recipient's resistance).
type queuedStatus struct {
	Type      gamedata.StatusType
	Duration  int
	Recipient *entity.Entity
}

// resolution is the outcome of resolving one skill, before application.
type resolution struct {
	skill    *gamedata.SkillDef
	hit      bool
	critical bool
	damage   int
	healing  int
	statuses []queuedStatus
}

// resolveSkill computes a skill's full effect. Random draws occur in a fixed
// order (variance, crit, hit, status rolls, hook rolls) so results are
// reproducible under a seeded source.
func (e *Engine) resolveSkill(caster, target *entity.Entity, skill *gamedata.SkillDef) resolution {
	res := resolution{skill: skill, hit: true}

	if skill.Hook == gamedata.HookCharge && caster != e.player {
		e.log(caster.Name+" rears back, gathering momentum!", SeverityWarning)
	}

	if skill.IsOffensive() {
		res.damage = e.rollDamage(caster, target, skill)
		res.critical = e.rollCritical(caster, target, skill)
		if res.critical {
			res.damage = int(float64(res.damage) * skill.EffectiveCritMult())
		}
		res.hit = e.rollHit(caster, target, skill)
		if !res.hit {
			res.damage = 0
		}
	}

	if skill.Healing > 0 {
		res.healing = e.rollHealing(caster, skill)
	}

	for _, st := range skill.Statuses {
		if e.random.Float64() >= st.Chance {
			continue
		}
		recipient := target
		if st.TargetSelf {
			recipient = caster
		}
		res.statuses = append(res.statuses, queuedStatus{
			Type:      st.Type,
			Duration:  st.Duration,
			Recipient: recipient,
		})
	}

	// Boss-cast ice storms carry their own independent freeze roll on top of
	// any authored status list.
	if skill.Hook == gamedata.HookIceStorm && caster.IsBoss {
		if e.random.Float64() < 0.3 {
			res.statuses = append(res.statuses, queuedStatus{
				Type:      gamedata.StatusFrozen,
				Duration:  1,
				Recipient: target,
			})
		}
	}

	return res
}

// rollDamage computes the damage amount: base plus scaled attack stat,
// reduced by defense, jittered by variance, scaled by status modifiers on
// both sides, floored with a minimum of 1.
func (e *Engine) rollDamage(caster, target *entity.Entity, skill *gamedata.SkillDef) int {
	raw := float64(skill.Damage) + float64(caster.AttackStat(skill.Type))*skill.ScalingFactor

	defense := float64(target.Defense)
	raw *= 1 - defense/(defense+100)

	variance := 0.85 + e.random.Float64()*0.30
	raw *= variance

	if caster.HasStatus(gamedata.StatusStrengthBoost) {
		raw *= caster.StatusMagnitude(gamedata.StatusStrengthBoost, 1.2)
	}
	if caster.HasStatus(gamedata.StatusEnraged) {
		raw *= caster.StatusMagnitude(gamedata.StatusEnraged, 1.2)
	}
	if caster.HasStatus(gamedata.StatusWeakness) {
		raw *= caster.StatusMagnitude(gamedata.StatusWeakness, 0.7)
	}
	if target.HasStatus(gamedata.StatusDefenseBoost) {
		raw *= target.StatusMagnitude(gamedata.StatusDefenseBoost, 0.7)
	}

	damage := int(math.Floor(raw))
	if damage < 1 {
		damage = 1
	}
	return damage
}

// rollCritical draws the critical-hit check: skill base chance plus an
// agility bonus, amplified while focused, dampened by boss crit resistance.
func (e *Engine) rollCritical(caster, target *entity.Entity, skill *gamedata.SkillDef) bool {
	chance := skill.EffectiveCritChance() + float64(caster.Stats.Agility)*0.001
	if caster.HasStatus(gamedata.StatusFocused) {
		chance *= caster.StatusMagnitude(gamedata.StatusFocused, 1.5)
	}
	if target.CritResistance > 0 {
		chance *= 1 - target.CritResistance
	}
	return e.random.Float64() < chance
}

// rollHit draws the accuracy check: skill accuracy adjusted by the speed
// differential and the defender's blinded/speed_boost effects, clamped to
// [0.10, 0.95]. Always-hit skills and the fireball/shadow-step hooks skip
// the roll entirely.
func (e *Engine) rollHit(caster, target *entity.Entity, skill *gamedata.SkillDef) bool {
	if skill.AlwaysHits || skill.Hook == gamedata.HookFireball || skill.Hook == gamedata.HookShadowStep {
		return true
	}

	accuracy := skill.EffectiveAccuracy() + float64(caster.Speed-target.Speed)*0.01
	if target.HasStatus(gamedata.StatusBlinded) {
		accuracy *= target.StatusMagnitude(gamedata.StatusBlinded, 1.3)
	}
	if target.HasStatus(gamedata.StatusSpeedBoost) {
		accuracy *= target.StatusMagnitude(gamedata.StatusSpeedBoost, 0.8)
	}
	if accuracy < 0.10 {
		accuracy = 0.10
	}
	if accuracy > 0.95 {
		accuracy = 0.95
	}
	return e.random.Float64() < accuracy
}

// rollHealing computes the healing amount: base plus scaled caster stat,
// amplified while blessed and dampened while cursed.
func (e *Engine) rollHealing(caster *entity.Entity, skill *gamedata.SkillDef) int {
	raw := float64(skill.Healing) + float64(caster.HealStat(skill.Type))*skill.ScalingFactor
	if caster.HasStatus(gamedata.StatusBlessed) {
		raw *= caster.StatusMagnitude(gamedata.StatusBlessed, 1.3)
	}
	if caster.HasStatus(gamedata.StatusCurse) {
		raw *= caster.StatusMagnitude(gamedata.StatusCurse, 0.7)
	}
	return int(math.Floor(raw))
}

// applyResolution commits a resolved skill: damage to the target, healing to
// the caster, then each queued status unless resisted. Damage against a boss
// triggers a phase scan.
func (e *Engine) applyResolution(caster, target *entity.Entity, res resolution) {
	name := res.skill.Name

	if res.skill.IsOffensive() && !res.hit {
		e.log(caster.Name+"'s "+name+" misses!", SeverityInfo)
	}

	if res.damage > 0 && res.hit {
		dealt := target.TakeDamage(res.damage)
		if res.critical {
			e.log(caster.Name+"'s "+name+" crits for "+strconv.Itoa(dealt)+" damage!", SeverityDamage)
		} else {
			e.log(caster.Name+"'s "+name+" hits for "+strconv.Itoa(dealt)+" damage.", SeverityDamage)
		}
		if target.IsBoss {
			e.checkBossPhases(target)
		}
	}

	if res.healing > 0 {
		healed := caster.Heal(res.healing)
		e.log(caster.Name+" recovers "+strconv.Itoa(healed)+" health.", SeverityHeal)
	}

	for _, qs := range res.statuses {
		e.applyStatus(qs)
	}
}

// applyStatus attaches a queued status to its recipient unless the
// recipient's status resistance absorbs it.
func (e *Engine) applyStatus(qs queuedStatus) {
	if qs.Recipient.StatusResistance > 0 && e.random.Float64() < qs.Recipient.StatusResistance {
		e.log(qs.Recipient.Name+" resists the effect!", SeverityInfo)
		return
	}
	def := e.tables.Status(qs.Type)
	magnitude := 0.0
	name := string(qs.Type)
	if def != nil {
		magnitude = def.Magnitude
		name = def.Name
	}
	qs.Recipient.AddStatus(qs.Type, qs.Duration, magnitude)
	e.log(qs.Recipient.Name+" is afflicted by "+name+".", SeverityInfo)
}

// checkBossPhases scans the boss's phase table from the current index for
// the first untriggered phase whose threshold covers the current HP
// fraction. At most one phase fires per scan, even if a single hit crossed
// several thresholds; the remainder fire on later damage events.
func (e *Engine) checkBossPhases(boss *entity.Entity) {
	fraction := boss.HPFraction()
	for i := boss.CurrentPhaseIndex; i < len(boss.Phases); i++ {
		if boss.TriggeredPhases[i] {
			continue
		}
		phase := boss.Phases[i]
		if phase.Threshold < fraction {
			continue
		}
		boss.TriggeredPhases[i] = true
		boss.CurrentPhaseIndex = i + 1
		e.log(phase.Message, SeverityWarning)
		for _, abilityID := range phase.Abilities {
			e.unlockPhaseAbility(boss, abilityID)
		}
		return
	}
}

// unlockPhaseAbility adds a phase ability to the boss's pool and skill list.
func (e *Engine) unlockPhaseAbility(boss *entity.Entity, abilityID string) {
	def := e.tables.Skill(abilityID)
	if def == nil {
		return
	}
	e.phasePool = append(e.phasePool, abilityID)
	for _, s := range boss.Skills {
		if s.Def.ID == abilityID {
			return
		}
	}
	boss.Skills = append(boss.Skills, &entity.Skill{Def: def, Unlocked: true})
	boss.SkillIDs = append(boss.SkillIDs, abilityID)
}

// Package combat provides the turn-based combat engine: the turn state
// machine, skill resolution, enemy action selection, boss phase transitions
// and end-of-combat reward calculation.
package combat

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/echocrawl/internal/entity"
	"github.com/samdwyer/echocrawl/internal/gamedata"
	"github.com/samdwyer/echocrawl/internal/rng"
	"github.com/samdwyer/echocrawl/internal/telemetry"
)

// State is the combat state machine position.
type State int

const (
	StateNotStarted State = iota
	StatePlayerTurn
	StateEnemyTurn
	StateResolved
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StatePlayerTurn:
		return "player_turn"
	case StateEnemyTurn:
		return "enemy_turn"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Outcome tags a terminal combat result.
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeFled    Outcome = "fled"
)

// Severity classifies a combat log message for the consuming layer.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDamage  Severity = "damage"
	SeverityHeal    Severity = "heal"
	SeveritySuccess Severity = "success"
)

// LogFunc receives combat log messages. The engine never depends on delivery
// succeeding; a nil LogFunc is valid.
type LogFunc func(message string, severity Severity)

// Snapshot is the read-only state handed to the observer after every state
// transition. It is the sole contract toward the rendering layer.
type Snapshot struct {
	Player      *entity.Entity
	Enemy       *entity.Entity
	State       State
	TurnCounter int
}

// ObserverFunc is invoked after every state transition.
type ObserverFunc func(Snapshot)

// Options configures one combat encounter.
type Options struct {
	AllowFlee bool
	Observer  ObserverFunc
	Log       LogFunc
}

// Rewards holds the spoils of a victorious combat.
type Rewards struct {
	Gold      int            `json:"gold"`
	Items     []string       `json:"items"`
	Resources map[string]int `json:"resources"`
}

// Result is the authoritative outcome of a combat encounter. Player carries
// the post-combat character state; the caller copies it back onto the
// canonical run character.
type Result struct {
	Outcome    Outcome
	Victory    bool
	Reason     string
	TurnCount  int
	Experience int
	Rewards    Rewards
	Player     *entity.Entity
}

const fleeChance = 0.70

// Engine runs a single combat encounter to resolution. It is not safe for
// concurrent use; at most one action may be in flight per session.
type Engine struct {
	tables *gamedata.Tables
	random rng.Source
	tracer trace.Tracer

	player *entity.Entity
	enemy  *entity.Entity

	state       State
	turnCounter int
	opts        Options
	result      *Result

	// phasePool collects ability IDs unlocked by triggered boss phases.
	phasePool []string

	// resolving guards against a second action arriving before the current
	// turn resolves.
	resolving bool

	ctx context.Context
}

// NewEngine creates a combat engine over the given content tables and
// randomness source.
func NewEngine(tables *gamedata.Tables, random rng.Source) *Engine {
	return &Engine{
		tables: tables,
		random: random,
		tracer: telemetry.Tracer("combat"),
		state:  StateNotStarted,
	}
}

// State returns the current state machine position.
func (e *Engine) State() State { return e.state }

// TurnCounter returns the current round number, starting at 1.
func (e *Engine) TurnCounter() int { return e.turnCounter }

// Player returns the in-combat player clone.
func (e *Engine) Player() *entity.Entity { return e.player }

// Enemy returns the in-combat enemy clone.
func (e *Engine) Enemy() *entity.Entity { return e.enemy }

// Result returns the terminal result, or nil while combat is unresolved.
func (e *Engine) Result() *Result { return e.result }

// StartCombat begins an encounter between deep copies of the given entities,
// so the canonical run character is unaffected by intra-combat mutation.
// Initiative goes to the higher speed; ties resolve to the player. If the
// enemy wins initiative its first action runs before this returns.
func (e *Engine) StartCombat(ctx context.Context, player, enemy *entity.Entity, opts Options) {
	e.ctx = ctx
	e.player = player.Clone()
	e.enemy = enemy.Clone()
	e.opts = opts
	e.turnCounter = 1
	e.result = nil
	e.phasePool = nil

	_, span := e.tracer.Start(ctx, "combat.start")
	span.SetAttributes(
		attribute.String("enemy", e.enemy.TemplateID),
		attribute.Bool("boss", e.enemy.IsBoss),
		attribute.Int("player_level", e.player.Level),
		attribute.Int("enemy_level", e.enemy.Level),
	)
	span.End()

	e.log(e.enemy.Name+" blocks your path!", SeverityWarning)

	if e.enemy.Speed > e.player.Speed {
		e.state = StateEnemyTurn
		e.notify()
		e.enemyTurn()
		return
	}
	e.state = StatePlayerTurn
	e.notify()
}

// UseSkill executes the player skill at the given index. It returns false,
// mutating nothing, when the action is invalid: wrong state, an action
// already in flight, a bad or locked index, an incapacitated player,
// insufficient mana, or an unfinished cooldown.
func (e *Engine) UseSkill(index int) bool {
	if e.state != StatePlayerTurn || e.resolving {
		return false
	}
	if index < 0 || index >= len(e.player.Skills) {
		e.log("No such skill.", SeverityWarning)
		return false
	}
	skill := e.player.Skills[index]
	if !skill.Unlocked {
		e.log(skill.Def.Name+" is not unlocked yet.", SeverityWarning)
		return false
	}
	if e.player.Incapacitated() {
		e.log("You cannot act!", SeverityWarning)
		return false
	}
	if e.player.Mana < skill.Def.ManaCost {
		e.log("Not enough mana for "+skill.Def.Name+".", SeverityWarning)
		return false
	}
	if skill.Cooldown > 0 {
		e.log(skill.Def.Name+" is still on cooldown.", SeverityWarning)
		return false
	}

	e.resolving = true
	defer func() { e.resolving = false }()

	e.player.SpendMana(skill.Def.ManaCost)
	skill.Cooldown = skill.Def.Cooldown

	res := e.resolveSkill(e.player, e.enemy, skill.Def)
	e.applyResolution(e.player, e.enemy, res)
	if e.checkDeath() {
		return true
	}

	e.endPlayerTurn()
	return true
}

// PassTurn forfeits the player's action, for use when the player is
// incapacitated. End-of-turn effects and cooldowns still tick.
func (e *Engine) PassTurn() bool {
	if e.state != StatePlayerTurn || e.resolving {
		return false
	}
	e.resolving = true
	defer func() { e.resolving = false }()

	e.log("You are unable to act this turn.", SeverityWarning)
	e.endPlayerTurn()
	return true
}

// AttemptFlee tries to escape combat. Fixed 70% success; a failed attempt
// consumes the player's turn. Returns false when fleeing is disallowed or it
// is not the player's turn.
func (e *Engine) AttemptFlee() bool {
	if e.state != StatePlayerTurn || e.resolving || !e.opts.AllowFlee {
		return false
	}
	e.resolving = true
	defer func() { e.resolving = false }()

	if e.random.Float64() < fleeChance {
		e.log("You slip away into the dark.", SeveritySuccess)
		e.resolve(OutcomeFled, "fled the battle")
		return true
	}
	e.log("You fail to escape!", SeverityWarning)
	e.endPlayerTurn()
	return true
}

// endPlayerTurn ticks the acting player's effects and cooldowns, hands the
// turn to the enemy, and runs the enemy's action.
func (e *Engine) endPlayerTurn() {
	e.tickEndOfTurn(e.player)
	if e.checkDeath() {
		return
	}
	e.state = StateEnemyTurn
	e.notify()
	e.enemyTurn()
}

// enemyTurn runs the enemy's automatic action and hands the turn back.
// A panic during AI resolution degrades to "no action taken" rather than
// leaving the session stuck.
func (e *Engine) enemyTurn() {
	if e.state != StateEnemyTurn {
		return
	}

	if e.enemy.Incapacitated() {
		e.log(e.enemy.Name+" cannot act!", SeverityInfo)
	} else {
		e.runEnemyAction()
		if e.state == StateResolved {
			return
		}
	}

	e.tickEndOfTurn(e.enemy)
	if e.checkDeath() {
		return
	}
	e.state = StatePlayerTurn
	e.turnCounter++
	e.notify()
}

// runEnemyAction selects and executes the enemy action, recovering from any
// panic in AI resolution.
func (e *Engine) runEnemyAction() {
	defer func() {
		if r := recover(); r != nil {
			e.log(e.enemy.Name+" hesitates.", SeverityInfo)
		}
	}()
	e.enemyAct()
}

// executeEnemySkill spends resources and resolves the chosen enemy skill
// against the player.
func (e *Engine) executeEnemySkill(skill *entity.Skill) {
	e.enemy.SpendMana(skill.Def.ManaCost)
	skill.Cooldown = skill.Def.Cooldown

	res := e.resolveSkill(e.enemy, e.player, skill.Def)
	e.applyResolution(e.enemy, e.player, res)
	e.checkDeath()
}

// tickEndOfTurn applies end-of-turn status effects and cooldown decay for
// the entity whose turn is ending.
func (e *Engine) tickEndOfTurn(owner *entity.Entity) {
	ticks := owner.TickStatuses(e.tables)
	for _, tick := range ticks {
		def := e.tables.Status(tick.Type)
		name := string(tick.Type)
		if def != nil {
			name = def.Name
		}
		switch {
		case tick.Damage > 0:
			e.log(owner.Name+" suffers "+strconv.Itoa(tick.Damage)+" damage from "+name+".", SeverityDamage)
		case tick.Heal > 0:
			e.log(owner.Name+" recovers "+strconv.Itoa(tick.Heal)+" health from "+name+".", SeverityHeal)
		}
		if tick.Ended {
			e.log(name+" wears off "+owner.Name+".", SeverityInfo)
		}
	}
	owner.TickCooldowns()
}

// checkDeath resolves combat if either side has reached zero health,
// short-circuiting any further turn processing. Returns true if combat ended.
func (e *Engine) checkDeath() bool {
	if e.state == StateResolved {
		return true
	}
	if !e.enemy.IsAlive() {
		e.log(e.enemy.Name+" is defeated!", SeveritySuccess)
		e.resolve(OutcomeVictory, e.enemy.Name+" defeated")
		return true
	}
	if !e.player.IsAlive() {
		e.log("You fall to "+e.enemy.Name+"...", SeverityWarning)
		e.resolve(OutcomeDefeat, "slain by "+e.enemy.Name)
		return true
	}
	return false
}

// resolve finalizes combat with the given outcome and computes rewards.
func (e *Engine) resolve(outcome Outcome, reason string) {
	e.state = StateResolved
	result := &Result{
		Outcome:   outcome,
		Victory:   outcome == OutcomeVictory,
		Reason:    reason,
		TurnCount: e.turnCounter,
		Player:    e.player,
	}
	if outcome == OutcomeVictory {
		result.Experience = e.experienceReward()
		result.Rewards = e.rollRewards()
	}
	e.result = result

	_, span := e.tracer.Start(e.ctx, "combat.end")
	span.SetAttributes(
		attribute.String("outcome", string(outcome)),
		attribute.Int("turns_taken", e.turnCounter),
		attribute.Int("player_hp_remaining", e.player.HP),
		attribute.Int("experience", result.Experience),
	)
	span.End()

	e.notify()
}

// notify invokes the observer with a state snapshot.
func (e *Engine) notify() {
	if e.opts.Observer == nil {
		return
	}
	e.opts.Observer(Snapshot{
		Player:      e.player,
		Enemy:       e.enemy,
		State:       e.state,
		TurnCounter: e.turnCounter,
	})
}

// log emits a message on the combat log channel, if one is attached.
func (e *Engine) log(message string, severity Severity) {
	if e.opts.Log != nil {
		e.opts.Log(message, severity)
	}
}

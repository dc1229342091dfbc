// Package run orchestrates a single playthrough: it walks the generated run
// map node by node, hands combat nodes to the combat engine, resolves event,
// resource, rest and merchant nodes, and applies rewards and meta-progression.
package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/echocrawl/internal/combat"
	"github.com/samdwyer/echocrawl/internal/entity"
	"github.com/samdwyer/echocrawl/internal/gamedata"
	"github.com/samdwyer/echocrawl/internal/rng"
	"github.com/samdwyer/echocrawl/internal/storage"
	"github.com/samdwyer/echocrawl/internal/telemetry"
	"github.com/samdwyer/echocrawl/internal/worldgen"
)

// State tracks where a run stands.
type State int

const (
	StateActive State = iota
	StateVictory
	StateDefeat
	StateAbandoned
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateVictory:
		return "victory"
	case StateDefeat:
		return "defeat"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// ErrWrongNode is returned when an operation does not match the current
// node's type.
var ErrWrongNode = errors.New("operation does not match current node type")

// NodeOutcome summarizes the resolution of a non-combat node for the caller.
type NodeOutcome struct {
	Text     string
	Gold     int
	Healed   int
	Damage   int
	Resource string
	Amount   int
}

// Controller sequences one run.
type Controller struct {
	ID        string
	Map       *worldgen.RunMap
	Character *entity.Entity
	NodeIndex int
	Resources map[string]int
	Items     []string
	State     State

	tables  *gamedata.Tables
	random  rng.Source
	factory *entity.Factory
	tracer  trace.Tracer

	// Combat result tallies rolled into meta-progression at run end.
	victories  int
	bossKilled bool
	goldEarned int
}

// NewController starts a fresh run: generates the map and creates the
// character from the chosen class and faction.
func NewController(ctx context.Context, tables *gamedata.Tables, random rng.Source, classID, factionID string) (*Controller, error) {
	factory := entity.NewFactory(tables, random)
	character, err := factory.CreateCharacter(classID, factionID)
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}

	generator := worldgen.NewGenerator(tables, random)
	runMap := generator.GenerateRun(ctx)

	return &Controller{
		ID:        uuid.NewString(),
		Map:       runMap,
		Character: character,
		Resources: make(map[string]int),
		State:     StateActive,
		tables:    tables,
		random:    random,
		factory:   factory,
		tracer:    telemetry.Tracer("run"),
	}, nil
}

// Resume rebuilds a controller from a persisted active run.
func Resume(tables *gamedata.Tables, random rng.Source, saved *storage.ActiveRun) *Controller {
	factory := entity.NewFactory(tables, random)
	factory.RestoreSkills(saved.Character)
	c := &Controller{
		ID:        saved.ID,
		Map:       saved.Map,
		Character: saved.Character,
		NodeIndex: saved.NodeIndex,
		Resources: saved.Resources,
		Items:     saved.Items,
		State:     StateActive,
		tables:    tables,
		random:    random,
		factory:   factory,
		tracer:    telemetry.Tracer("run"),
	}
	if c.Resources == nil {
		c.Resources = make(map[string]int)
	}
	return c
}

// Snapshot captures the run as a persistable record.
func (c *Controller) Snapshot() *storage.ActiveRun {
	return &storage.ActiveRun{
		ID:        c.ID,
		Map:       c.Map,
		Character: c.Character,
		NodeIndex: c.NodeIndex,
		Resources: c.Resources,
		Items:     c.Items,
	}
}

// CurrentNode returns the node awaiting resolution, or nil past the end.
func (c *Controller) CurrentNode() *worldgen.Node {
	return c.Map.NodeAt(c.NodeIndex)
}

// advance marks the current node completed and steps to the next.
func (c *Controller) advance() {
	if node := c.CurrentNode(); node != nil {
		node.Visited = true
		node.Completed = true
	}
	c.NodeIndex++
	if c.State == StateActive && c.Map.NodeAt(c.NodeIndex) == nil {
		c.State = StateVictory
	}
}

// EnterCombat builds the combat engine for the current combat or boss node.
// The caller drives the engine (UseSkill/AttemptFlee) and feeds the terminal
// result back through CompleteCombat.
func (c *Controller) EnterCombat(ctx context.Context, opts combat.Options) (*combat.Engine, error) {
	node := c.CurrentNode()
	if node == nil || node.Enemy == nil {
		return nil, ErrWrongNode
	}

	var enemy *entity.Entity
	var err error
	if node.Enemy.IsBoss {
		enemy, err = c.factory.CreateBoss(node.Enemy.TemplateID, node.Enemy.Difficulty)
	} else {
		enemy, err = c.factory.CreateEnemy(node.Enemy.TemplateID, node.Enemy.Difficulty)
	}
	if err != nil {
		return nil, fmt.Errorf("spawn encounter: %w", err)
	}

	engine := combat.NewEngine(c.tables, c.random)
	engine.StartCombat(ctx, c.Character, enemy, opts)
	return engine, nil
}

// CompleteCombat applies a terminal combat result: the authoritative player
// state is copied back onto the run character, rewards and experience are
// granted on victory, and the run ends on defeat or flight from the boss.
func (c *Controller) CompleteCombat(ctx context.Context, result *combat.Result) error {
	if result == nil {
		return errors.New("combat is not resolved")
	}
	node := c.CurrentNode()
	if node == nil || node.Enemy == nil {
		return ErrWrongNode
	}

	_, span := c.tracer.Start(ctx, "run.combat_complete")
	span.SetAttributes(
		attribute.String("outcome", string(result.Outcome)),
		attribute.Int("node", c.NodeIndex),
	)
	span.End()

	// Carry post-combat health, mana and status state back onto the
	// canonical character; permanent fields (level, experience) are only
	// ever advanced here, never inside combat. The result's player is the
	// engine's own clone, so its status map can be adopted as is.
	c.Character.HP = result.Player.HP
	c.Character.Mana = result.Player.Mana
	c.Character.Statuses = result.Player.Statuses

	switch result.Outcome {
	case combat.OutcomeVictory:
		c.victories++
		if node.Enemy.IsBoss {
			c.bossKilled = true
		}
		c.Character.Gold += result.Rewards.Gold
		c.goldEarned += result.Rewards.Gold
		c.Items = append(c.Items, result.Rewards.Items...)
		for resource, amount := range result.Rewards.Resources {
			c.Resources[resource] += amount
		}
		c.factory.GrantExperience(c.Character, result.Experience)
		c.advance()
	case combat.OutcomeDefeat:
		c.State = StateDefeat
	case combat.OutcomeFled:
		if node.Enemy.IsBoss {
			// No skipping the final fight; fleeing it forfeits the run.
			c.State = StateAbandoned
		} else {
			c.advance()
		}
	}
	return nil
}

// ResolveEvent rolls the current event node's outcome table, applies the
// chosen outcome (with its stat check, if any) and advances.
func (c *Controller) ResolveEvent(ctx context.Context) (*NodeOutcome, error) {
	node := c.CurrentNode()
	if node == nil || node.Event == nil {
		return nil, ErrWrongNode
	}

	event := c.tables.Event(node.Event.EventID)
	if event == nil || node.Event.Generic {
		// Unknown event template: generic fallback content for this node only.
		healed := c.Character.Heal(int(0.1 * float64(c.Character.MaxHealth)))
		c.advance()
		return &NodeOutcome{Text: "You find a quiet moment to catch your breath.", Healed: healed}, nil
	}

	outcome := c.drawOutcome(event)
	result := &NodeOutcome{Text: outcome.Text}

	success := true
	if outcome.Stat != "" {
		success = c.statCheck(outcome.Stat, outcome.Check)
		if !success {
			result.Text = outcome.FailText
		}
	}

	if success {
		if outcome.HealFrac > 0 {
			result.Healed = c.Character.Heal(int(outcome.HealFrac * float64(c.Character.MaxHealth)))
		}
		if outcome.Gold != 0 {
			c.Character.Gold += outcome.Gold
			result.Gold = outcome.Gold
		}
		if outcome.Resource != "" {
			c.Resources[outcome.Resource] += outcome.ResourceAmt
			result.Resource = outcome.Resource
			result.Amount = outcome.ResourceAmt
		}
	}
	// Damage and status riders land regardless of the check: they model the
	// event's cost, not its prize.
	if outcome.DamageFrac > 0 {
		result.Damage = c.Character.TakeDamage(int(outcome.DamageFrac * float64(c.Character.MaxHealth)))
	}
	if outcome.Status != gamedata.StatusNone {
		if def := c.tables.Status(outcome.Status); def != nil {
			c.Character.AddStatus(outcome.Status, outcome.StatusTurns, def.Magnitude)
		}
	}

	if !c.Character.IsAlive() {
		c.State = StateDefeat
		return result, nil
	}
	c.advance()
	return result, nil
}

// drawOutcome walks the event's weighted outcome table.
func (c *Controller) drawOutcome(event *gamedata.EventDef) gamedata.EventOutcome {
	total := 0.0
	for _, o := range event.Outcomes {
		total += o.Weight
	}
	roll := c.random.Float64() * total
	cumulative := 0.0
	for _, o := range event.Outcomes {
		cumulative += o.Weight
		if roll < cumulative {
			return o
		}
	}
	return event.Outcomes[0]
}

// statCheck rolls the named primary stat plus 1d4 against the check value.
func (c *Controller) statCheck(stat string, check int) bool {
	value := 0
	switch stat {
	case "strength":
		value = c.Character.Stats.Strength
	case "agility":
		value = c.Character.Stats.Agility
	case "intelligence":
		value = c.Character.Stats.Intelligence
	case "vitality":
		value = c.Character.Stats.Vitality
	}
	return value+c.random.IntRange(1, 4) >= check
}

// GatherResource collects the current resource node's cache and advances.
func (c *Controller) GatherResource() (*NodeOutcome, error) {
	node := c.CurrentNode()
	if node == nil || node.Resource == nil {
		return nil, ErrWrongNode
	}
	c.Resources[node.Resource.Type] += node.Resource.Amount
	c.advance()
	return &NodeOutcome{
		Text:     "You gather what you can carry.",
		Resource: node.Resource.Type,
		Amount:   node.Resource.Amount,
	}, nil
}

// Rest heals at the current rest node and advances.
func (c *Controller) Rest() (*NodeOutcome, error) {
	node := c.CurrentNode()
	if node == nil || node.Rest == nil {
		return nil, ErrWrongNode
	}
	healed := c.Character.Heal(int(node.Rest.HealFrac * float64(c.Character.MaxHealth)))
	c.Character.RestoreMana(c.Character.MaxMana / 4)
	c.advance()
	return &NodeOutcome{Text: "You rest by " + node.Rest.Flavor + ".", Healed: healed}, nil
}

// Buy purchases the indexed item from the current merchant node. The node
// stays open until LeaveMerchant is called.
func (c *Controller) Buy(index int) error {
	node := c.CurrentNode()
	if node == nil || node.Merchant == nil {
		return ErrWrongNode
	}
	if index < 0 || index >= len(node.Merchant.Inventory) {
		return errors.New("no such item")
	}
	line := node.Merchant.Inventory[index]
	if c.Character.Gold < line.Price {
		return errors.New("not enough gold")
	}
	c.Character.Gold -= line.Price
	c.Items = append(c.Items, line.Item)
	node.Merchant.Inventory = append(node.Merchant.Inventory[:index], node.Merchant.Inventory[index+1:]...)
	return nil
}

// LeaveMerchant closes the current merchant node and advances.
func (c *Controller) LeaveMerchant() error {
	node := c.CurrentNode()
	if node == nil || node.Merchant == nil {
		return ErrWrongNode
	}
	c.advance()
	return nil
}

// ApplyMeta rolls this run's results into the meta-progression record:
// echoes accrue from gold and victories, totals advance, and faction
// reputation grows with the run's standing.
func (c *Controller) ApplyMeta(meta *storage.MetaProgression) {
	meta.TotalRuns++
	echoes := c.goldEarned/2 + c.victories*10
	if c.bossKilled {
		echoes += 50
	}
	if c.State == StateVictory {
		meta.TotalVictories++
	}
	meta.Echoes += echoes

	if c.Character.FactionID != "" {
		delta := c.victories
		if c.State == StateVictory {
			delta += 5
		}
		meta.FactionReputations[c.Character.FactionID] += delta
	}

	forge := meta.Buildings["soulforge"]
	forge.Experience += echoes
	for forge.Experience >= (forge.Level+1)*100 {
		forge.Experience -= (forge.Level + 1) * 100
		forge.Level++
	}
	meta.Buildings["soulforge"] = forge
}

package worldgen

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/echocrawl/internal/gamedata"
	"github.com/samdwyer/echocrawl/internal/rng"
	"github.com/samdwyer/echocrawl/internal/telemetry"
)

const (
	minRegions = 2
	maxRegions = 4

	minRegionNodes = 4
	maxRegionNodes = 7

	// Per-node difficulty increment within a region.
	positionalDifficultyStep = 0.05

	// Boss node difficulty on top of its region's multiplier.
	bossDifficultyFactor = 1.5
)

// Generator produces run maps from the content tables and a random source.
// Output is purely a function of the tables and the sequence of draws.
type Generator struct {
	tables *gamedata.Tables
	random rng.Source
	tracer trace.Tracer
}

// NewGenerator creates a run map generator.
func NewGenerator(tables *gamedata.Tables, random rng.Source) *Generator {
	return &Generator{
		tables: tables,
		random: random,
		tracer: telemetry.Tracer("worldgen"),
	}
}

// GenerateRun builds a complete run map: 2-4 regions opened by the fixed
// starter region, 4-7 nodes per region plus a structurally guaranteed boss
// node closing the final region.
func (g *Generator) GenerateRun(ctx context.Context) *RunMap {
	_, span := g.tracer.Start(ctx, "worldgen.generate_run")
	defer span.End()

	regions := g.selectRegions()
	m := &RunMap{}

	for ri, def := range regions {
		last := ri == len(regions)-1
		region := g.generateRegion(def, last)
		m.Regions = append(m.Regions, region)
		m.Difficulty += def.Difficulty
	}
	m.Difficulty /= float64(len(regions))

	// Flatten into the run-wide ordered node list.
	global := 0
	for ri, region := range m.Regions {
		for _, node := range region.Nodes {
			node.GlobalIndex = global
			node.RegionIndex = ri
			m.Nodes = append(m.Nodes, node)
			global++
		}
	}

	span.SetAttributes(
		attribute.Int("run.regions", len(m.Regions)),
		attribute.Int("run.nodes", len(m.Nodes)),
		attribute.Float64("run.difficulty", m.Difficulty),
	)
	return m
}

// selectRegions picks 2-4 regions: the starter first, then distinct regions
// sampled uniformly from the remaining pool. Pool exhaustion is not an
// error; the run simply uses fewer regions.
func (g *Generator) selectRegions() []*gamedata.RegionDef {
	target := g.random.IntRange(minRegions, maxRegions)

	starter := g.tables.StarterRegion()
	selected := []*gamedata.RegionDef{starter}

	var pool []string
	for _, id := range g.tables.RegionIDs() {
		if starter == nil || id != starter.ID {
			pool = append(pool, id)
		}
	}

	for len(selected) < target && len(pool) > 0 {
		idx := g.random.Pick(len(pool))
		id := pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
		if def, err := g.tables.Region(id); err == nil {
			selected = append(selected, def)
		}
	}
	return selected
}

// generateRegion builds one region's node sequence. The last region gets one
// extra node reserved for the boss, so the boss is always the final node.
func (g *Generator) generateRegion(def *gamedata.RegionDef, last bool) *Region {
	region := &Region{
		TemplateID: def.ID,
		Name:       def.Name,
		Difficulty: def.Difficulty,
	}

	count := g.random.IntRange(minRegionNodes, maxRegionNodes)
	total := count
	if last {
		total++
	}

	for i := 0; i < count; i++ {
		nodeType := g.chooseNodeType(i, total)
		region.Nodes = append(region.Nodes, g.populateNode(def, nodeType, i))
	}

	if last {
		region.Nodes = append(region.Nodes, g.bossNode(def))
	}
	return region
}

// chooseNodeType runs the weighted node-type draw with contextual weight
// adjustments: openings favor combat and events over rest, interior slots
// favor merchants and resources, and the last two slots squeeze merchants
// out in favor of combat.
func (g *Generator) chooseNodeType(i, total int) gamedata.NodeType {
	catalog := g.tables.NodeWeights()
	keys := make([]string, 0, len(catalog))
	weights := make(map[string]float64, len(catalog))
	for _, nw := range catalog {
		keys = append(keys, string(nw.Type))
		weights[string(nw.Type)] = nw.Weight
	}

	if i == 0 {
		weights[string(gamedata.NodeCombat)] *= 1.5
		weights[string(gamedata.NodeEvent)] *= 1.5
		weights[string(gamedata.NodeRest)] *= 0.2
	}
	if i > 0 && i < total-2 {
		weights[string(gamedata.NodeMerchant)] *= 1.5
		weights[string(gamedata.NodeResource)] *= 1.5
	}
	if i >= total-2 {
		weights[string(gamedata.NodeMerchant)] *= 0.3
		weights[string(gamedata.NodeCombat)] *= 1.5
	}

	return gamedata.NodeType(rng.WeightedChoice(g.random, keys, weights))
}

// populateNode fills a node's type-specific payload.
func (g *Generator) populateNode(def *gamedata.RegionDef, nodeType gamedata.NodeType, position int) *Node {
	node := &Node{Type: nodeType}
	difficulty := def.Difficulty * (1 + float64(position)*positionalDifficultyStep)

	switch nodeType {
	case gamedata.NodeCombat:
		node.Enemy = &EnemyPayload{
			TemplateID: g.spawnEnemy(def),
			Difficulty: difficulty,
		}
	case gamedata.NodeEvent:
		eventID := rng.Choice(g.random, def.Events)
		if g.tables.Event(eventID) == nil {
			// Unknown event: substitute generic fallback content for this
			// node only, rather than failing the whole generation.
			node.Event = &EventPayload{EventID: eventID, Generic: true}
		} else {
			node.Event = &EventPayload{EventID: eventID}
		}
	case gamedata.NodeResource:
		resource := "essence"
		if len(def.Resources) > 0 {
			resource = rng.Choice(g.random, def.Resources)
		}
		node.Resource = &ResourcePayload{
			Type:   resource,
			Amount: g.random.IntRange(1, 3) + int(difficulty),
		}
	case gamedata.NodeMerchant:
		node.Merchant = &MerchantPayload{Inventory: g.merchantStock(difficulty)}
	case gamedata.NodeRest:
		node.Rest = &RestPayload{
			Flavor:   rng.Choice(g.random, restFlavors),
			HealFrac: 0.3,
		}
	}
	return node
}

// spawnEnemy runs the weighted spawn draw over the region's enemy pool.
func (g *Generator) spawnEnemy(def *gamedata.RegionDef) string {
	weights := make(map[string]float64, len(def.Enemies))
	for _, id := range def.Enemies {
		if enemy := g.tables.Enemy(id); enemy != nil {
			weights[id] = float64(enemy.SpawnWeight)
		}
	}
	return rng.WeightedChoice(g.random, def.Enemies, weights)
}

// bossNode generates the region's boss encounter at 1.5x region difficulty.
func (g *Generator) bossNode(def *gamedata.RegionDef) *Node {
	return &Node{
		Type: gamedata.NodeBoss,
		Enemy: &EnemyPayload{
			TemplateID: rng.Choice(g.random, def.Bosses),
			Difficulty: def.Difficulty * bossDifficultyFactor,
			IsBoss:     true,
		},
	}
}

var restFlavors = []string{
	"a guttering campfire ringed with old stones",
	"a dry alcove out of the wind",
	"a spring of clear, cold water",
	"an abandoned watchpost with a serviceable cot",
}

// merchantStock builds a merchant inventory with difficulty-scaled prices.
func (g *Generator) merchantStock(difficulty float64) []MerchantItem {
	count := g.random.IntRange(3, 4)
	stock := make([]MerchantItem, 0, count)
	for i := 0; i < count; i++ {
		item := rng.Choice(g.random, merchantGoods)
		price := int(float64(g.random.IntRange(8, 20)) * difficulty)
		stock = append(stock, MerchantItem{Item: item, Price: price})
	}
	return stock
}

var merchantGoods = []string{
	"healing_draught",
	"mana_philtre",
	"antidote",
	"whetstone",
	"iron_talisman",
	"smoke_bomb",
}

package run

import (
	"context"
	"errors"
	"testing"

	"github.com/samdwyer/echocrawl/internal/combat"
	"github.com/samdwyer/echocrawl/internal/entity"
	"github.com/samdwyer/echocrawl/internal/gamedata"
	"github.com/samdwyer/echocrawl/internal/rng"
	"github.com/samdwyer/echocrawl/internal/storage"
	"github.com/samdwyer/echocrawl/internal/worldgen"
)

// resumeWith builds a controller over a hand-crafted map so each node type can
// be exercised in isolation.
func resumeWith(t *testing.T, src rng.Source, nodes ...*worldgen.Node) *Controller {
	t.Helper()
	tables := gamedata.MustLoadTables()
	character, err := entity.NewFactory(tables, src).CreateCharacter("warrior", "ironveil")
	if err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	for i, node := range nodes {
		node.GlobalIndex = i
	}
	saved := &storage.ActiveRun{
		ID:        "test-run",
		Map:       &worldgen.RunMap{Nodes: nodes, Difficulty: 1.0},
		Character: character,
		Resources: map[string]int{},
	}
	return Resume(tables, src, saved)
}

func TestNewControllerGeneratesRun(t *testing.T) {
	tables := gamedata.MustLoadTables()
	c, err := NewController(context.Background(), tables, rng.NewScripted(0.0), "warrior", "ironveil")
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	if c.ID == "" {
		t.Error("controller has no run ID")
	}
	if c.State != StateActive {
		t.Errorf("state = %s, want active", c.State)
	}
	if len(c.Map.Nodes) == 0 {
		t.Fatal("generated map has no nodes")
	}
	if c.Character.ClassID != "warrior" {
		t.Errorf("class = %s, want warrior", c.Character.ClassID)
	}
	if c.CurrentNode() != c.Map.Nodes[0] {
		t.Error("controller does not start at the first node")
	}
}

func TestNewControllerUnknownClass(t *testing.T) {
	tables := gamedata.MustLoadTables()
	_, err := NewController(context.Background(), tables, rng.NewScripted(0.0), "bard", "ironveil")
	if !errors.Is(err, gamedata.ErrUnknownClass) {
		t.Errorf("error = %v, want ErrUnknownClass", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.5),
		&worldgen.Node{Type: gamedata.NodeRest, Rest: &worldgen.RestPayload{Flavor: "a fire", HealFrac: 0.3}},
	)
	c.Items = []string{"whetstone"}
	c.Resources["essence"] = 2

	snap := c.Snapshot()
	if snap.ID != c.ID || snap.NodeIndex != c.NodeIndex {
		t.Error("snapshot identity fields diverge from controller")
	}
	if snap.Character != c.Character || snap.Map != c.Map {
		t.Error("snapshot should reference the live run state")
	}

	restored := Resume(gamedata.MustLoadTables(), rng.NewScripted(0.5), snap)
	if restored.ID != c.ID {
		t.Errorf("restored ID = %s, want %s", restored.ID, c.ID)
	}
	if len(restored.Character.Skills) == 0 {
		t.Error("Resume should rebuild live skill instances")
	}
	if restored.Resources["essence"] != 2 || len(restored.Items) != 1 {
		t.Error("restored inventory diverges")
	}
}

func TestRestNodeHealsAndFinishesRun(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.5),
		&worldgen.Node{Type: gamedata.NodeRest, Rest: &worldgen.RestPayload{Flavor: "a spring", HealFrac: 0.5}},
	)
	c.Character.HP = c.Character.MaxHealth - 40
	c.Character.Mana = 0

	outcome, err := c.Rest()
	if err != nil {
		t.Fatalf("Rest: %v", err)
	}
	if outcome.Healed != 40 {
		t.Errorf("healed = %d, want 40 (half of max, capped by missing HP)", outcome.Healed)
	}
	if c.Character.Mana != c.Character.MaxMana/4 {
		t.Errorf("mana = %d, want quarter restore %d", c.Character.Mana, c.Character.MaxMana/4)
	}
	if !c.Map.Nodes[0].Completed {
		t.Error("rest node not marked completed")
	}
	if c.State != StateVictory {
		t.Errorf("state after final node = %s, want victory", c.State)
	}
}

func TestGatherResource(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.5),
		&worldgen.Node{Type: gamedata.NodeResource, Resource: &worldgen.ResourcePayload{Type: "iron_ore", Amount: 3}},
		&worldgen.Node{Type: gamedata.NodeRest, Rest: &worldgen.RestPayload{HealFrac: 0.3}},
	)

	outcome, err := c.GatherResource()
	if err != nil {
		t.Fatalf("GatherResource: %v", err)
	}
	if outcome.Resource != "iron_ore" || outcome.Amount != 3 {
		t.Errorf("outcome = %+v, want 3 iron_ore", outcome)
	}
	if c.Resources["iron_ore"] != 3 {
		t.Errorf("resources = %v, want iron_ore 3", c.Resources)
	}
	if c.NodeIndex != 1 || c.State != StateActive {
		t.Errorf("index/state = %d/%s, want 1/active", c.NodeIndex, c.State)
	}
}

func TestMerchantBuying(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.5),
		&worldgen.Node{Type: gamedata.NodeMerchant, Merchant: &worldgen.MerchantPayload{
			Inventory: []worldgen.MerchantItem{
				{Item: "healing_draught", Price: 8},
				{Item: "iron_talisman", Price: 500},
			},
		}},
	)
	c.Character.Gold = 10

	if err := c.Buy(1); err == nil {
		t.Error("buying an unaffordable item should fail")
	}
	if err := c.Buy(5); err == nil {
		t.Error("buying an out-of-range index should fail")
	}
	if err := c.Buy(0); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if c.Character.Gold != 2 {
		t.Errorf("gold = %d, want 2", c.Character.Gold)
	}
	if len(c.Items) != 1 || c.Items[0] != "healing_draught" {
		t.Errorf("items = %v, want the draught", c.Items)
	}
	if got := len(c.CurrentNode().Merchant.Inventory); got != 1 {
		t.Errorf("stock remaining = %d, want 1", got)
	}

	if err := c.LeaveMerchant(); err != nil {
		t.Fatalf("LeaveMerchant: %v", err)
	}
	if c.State != StateVictory {
		t.Errorf("state = %s, want victory after the only node", c.State)
	}
}

func TestWrongNodeOperations(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.5),
		&worldgen.Node{Type: gamedata.NodeRest, Rest: &worldgen.RestPayload{HealFrac: 0.3}},
	)

	if _, err := c.GatherResource(); !errors.Is(err, ErrWrongNode) {
		t.Errorf("GatherResource on rest node: %v, want ErrWrongNode", err)
	}
	if _, err := c.ResolveEvent(context.Background()); !errors.Is(err, ErrWrongNode) {
		t.Errorf("ResolveEvent on rest node: %v, want ErrWrongNode", err)
	}
	if _, err := c.EnterCombat(context.Background(), combat.Options{}); !errors.Is(err, ErrWrongNode) {
		t.Errorf("EnterCombat on rest node: %v, want ErrWrongNode", err)
	}
	if err := c.Buy(0); !errors.Is(err, ErrWrongNode) {
		t.Errorf("Buy on rest node: %v, want ErrWrongNode", err)
	}
}

func TestResolveEventHealOutcome(t *testing.T) {
	// ancient_shrine outcome 0 (weight 0.5): heal 30% of max health.
	c := resumeWith(t, rng.NewScripted(0.0),
		&worldgen.Node{Type: gamedata.NodeEvent, Event: &worldgen.EventPayload{EventID: "ancient_shrine"}},
	)
	c.Character.HP = 10

	outcome, err := c.ResolveEvent(context.Background())
	if err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	want := int(0.3 * float64(c.Character.MaxHealth))
	if outcome.Healed != want {
		t.Errorf("healed = %d, want %d", outcome.Healed, want)
	}
	if c.State != StateVictory {
		t.Errorf("state = %s, want victory", c.State)
	}
}

func TestResolveEventStatCheck(t *testing.T) {
	// collapsed_tunnel outcome 0: strength check 6 for 25 gold, with a 15%
	// max-health damage rider that lands either way.
	node := func() *worldgen.Node {
		return &worldgen.Node{Type: gamedata.NodeEvent, Event: &worldgen.EventPayload{EventID: "collapsed_tunnel"}}
	}

	c := resumeWith(t, rng.NewScripted(0.0), node())
	goldBefore := c.Character.Gold
	outcome, err := c.ResolveEvent(context.Background())
	if err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	// Warrior strength 8 passes check 6 on any die.
	if c.Character.Gold != goldBefore+25 {
		t.Errorf("gold = %d, want +25", c.Character.Gold)
	}
	if outcome.Damage != int(0.15*float64(c.Character.MaxHealth)) {
		t.Errorf("damage = %d, want the 15%% rider", outcome.Damage)
	}

	weak := resumeWith(t, rng.NewScripted(0.0), node())
	weak.Character.Stats.Strength = 1 // 1 + at most 4 cannot reach 6
	goldBefore = weak.Character.Gold
	outcome, err = weak.ResolveEvent(context.Background())
	if err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	if weak.Character.Gold != goldBefore {
		t.Error("failed check should grant no gold")
	}
	if outcome.Damage == 0 {
		t.Error("damage rider should land on failure too")
	}
}

func TestResolveEventGenericFallback(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.5),
		&worldgen.Node{Type: gamedata.NodeEvent, Event: &worldgen.EventPayload{EventID: "lost_tale", Generic: true}},
	)
	c.Character.HP = 10

	outcome, err := c.ResolveEvent(context.Background())
	if err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	if outcome.Healed != int(0.1*float64(c.Character.MaxHealth)) {
		t.Errorf("generic fallback healed = %d, want 10%% of max", outcome.Healed)
	}
	if outcome.Text == "" {
		t.Error("generic fallback has no text")
	}
}

func TestCompleteCombatVictory(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.0),
		&worldgen.Node{Type: gamedata.NodeCombat, Enemy: &worldgen.EnemyPayload{TemplateID: "goblin_scout", Difficulty: 1.0}},
		&worldgen.Node{Type: gamedata.NodeRest, Rest: &worldgen.RestPayload{HealFrac: 0.3}},
	)
	goldBefore := c.Character.Gold

	after := c.Character.Clone()
	after.HP = 60
	after.Mana = 12
	err := c.CompleteCombat(context.Background(), &combat.Result{
		Outcome:    combat.OutcomeVictory,
		Victory:    true,
		Experience: 100,
		Rewards: combat.Rewards{
			Gold:      9,
			Items:     []string{"whetstone"},
			Resources: map[string]int{"essence": 2},
		},
		Player: after,
	})
	if err != nil {
		t.Fatalf("CompleteCombat: %v", err)
	}

	// 100 experience levels the warrior to 2: with zero draws the gains are
	// +1 strength and +1 vitality, so the level-up partial heal adds 10 HP
	// (8 per level + 2 per vitality point) and 2 mana on top of the 60/12
	// carried out of combat.
	if c.Character.HP != 70 || c.Character.Mana != 14 {
		t.Errorf("post-combat vitals = %d/%d, want 70/14", c.Character.HP, c.Character.Mana)
	}
	if c.Character.Gold != goldBefore+9 {
		t.Errorf("gold = %d, want +9", c.Character.Gold)
	}
	if c.Character.Level != 2 {
		t.Errorf("level = %d, want 2 after 100 experience", c.Character.Level)
	}
	if c.Resources["essence"] != 2 || len(c.Items) != 1 {
		t.Error("combat rewards not accumulated")
	}
	if c.NodeIndex != 1 || c.State != StateActive {
		t.Errorf("index/state = %d/%s, want 1/active", c.NodeIndex, c.State)
	}
}

func TestCompleteCombatCarriesStatusesBack(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.0),
		&worldgen.Node{Type: gamedata.NodeCombat, Enemy: &worldgen.EnemyPayload{TemplateID: "goblin_scout", Difficulty: 1.0}},
		&worldgen.Node{Type: gamedata.NodeRest, Rest: &worldgen.RestPayload{HealFrac: 0.3}},
	)

	after := c.Character.Clone()
	after.HP = 50
	after.AddStatus(gamedata.StatusPoison, 2, 0.05)
	if err := c.CompleteCombat(context.Background(), &combat.Result{
		Outcome: combat.OutcomeVictory,
		Victory: true,
		Rewards: combat.Rewards{Resources: map[string]int{}},
		Player:  after,
	}); err != nil {
		t.Fatalf("CompleteCombat: %v", err)
	}

	if !c.Character.HasStatus(gamedata.StatusPoison) {
		t.Error("lingering poison should follow the character out of combat")
	}
	if c.Character.Statuses[gamedata.StatusPoison].Remaining != 2 {
		t.Errorf("poison remaining = %d, want 2", c.Character.Statuses[gamedata.StatusPoison].Remaining)
	}
}

func TestCompleteCombatDefeatEndsRun(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.0),
		&worldgen.Node{Type: gamedata.NodeCombat, Enemy: &worldgen.EnemyPayload{TemplateID: "goblin_scout", Difficulty: 1.0}},
	)
	dead := c.Character.Clone()
	dead.HP = 0

	err := c.CompleteCombat(context.Background(), &combat.Result{
		Outcome: combat.OutcomeDefeat,
		Player:  dead,
	})
	if err != nil {
		t.Fatalf("CompleteCombat: %v", err)
	}
	if c.State != StateDefeat {
		t.Errorf("state = %s, want defeat", c.State)
	}
}

func TestFleeingTheBossForfeitsTheRun(t *testing.T) {
	bossNode := &worldgen.Node{Type: gamedata.NodeBoss, Enemy: &worldgen.EnemyPayload{
		TemplateID: "gravewarden", Difficulty: 1.5, IsBoss: true,
	}}
	c := resumeWith(t, rng.NewScripted(0.0), bossNode)

	fled := c.Character.Clone()
	err := c.CompleteCombat(context.Background(), &combat.Result{
		Outcome: combat.OutcomeFled,
		Player:  fled,
	})
	if err != nil {
		t.Fatalf("CompleteCombat: %v", err)
	}
	if c.State != StateAbandoned {
		t.Errorf("state = %s, want abandoned", c.State)
	}
}

func TestFleeingARegularFightAdvances(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.0),
		&worldgen.Node{Type: gamedata.NodeCombat, Enemy: &worldgen.EnemyPayload{TemplateID: "goblin_scout", Difficulty: 1.0}},
		&worldgen.Node{Type: gamedata.NodeRest, Rest: &worldgen.RestPayload{HealFrac: 0.3}},
	)
	fled := c.Character.Clone()
	if err := c.CompleteCombat(context.Background(), &combat.Result{
		Outcome: combat.OutcomeFled,
		Player:  fled,
	}); err != nil {
		t.Fatalf("CompleteCombat: %v", err)
	}
	if c.NodeIndex != 1 || c.State != StateActive {
		t.Errorf("index/state = %d/%s, want 1/active", c.NodeIndex, c.State)
	}
}

func TestEnterCombatSpawnsEncounter(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.5),
		&worldgen.Node{Type: gamedata.NodeBoss, Enemy: &worldgen.EnemyPayload{
			TemplateID: "gravewarden", Difficulty: 2.0, IsBoss: true,
		}},
	)

	engine, err := c.EnterCombat(context.Background(), combat.Options{})
	if err != nil {
		t.Fatalf("EnterCombat: %v", err)
	}
	boss := engine.Enemy()
	if !boss.IsBoss {
		t.Error("spawned encounter is not a boss")
	}
	// gravewarden 140 max health scaled by difficulty 2.0
	if boss.MaxHealth != 280 {
		t.Errorf("boss maxHealth = %d, want 280", boss.MaxHealth)
	}
	if engine.State() == combat.StateNotStarted {
		t.Error("EnterCombat should start the encounter")
	}
}

func TestApplyMeta(t *testing.T) {
	c := resumeWith(t, rng.NewScripted(0.0),
		&worldgen.Node{Type: gamedata.NodeBoss, Enemy: &worldgen.EnemyPayload{
			TemplateID: "gravewarden", Difficulty: 1.0, IsBoss: true,
		}},
	)
	winner := c.Character.Clone()
	winner.HP = 30
	if err := c.CompleteCombat(context.Background(), &combat.Result{
		Outcome:    combat.OutcomeVictory,
		Victory:    true,
		Experience: 10,
		Rewards:    combat.Rewards{Gold: 20, Resources: map[string]int{}},
		Player:     winner,
	}); err != nil {
		t.Fatalf("CompleteCombat: %v", err)
	}
	if c.State != StateVictory {
		t.Fatalf("state = %s, want victory", c.State)
	}

	meta := storage.NewMetaProgression()
	c.ApplyMeta(meta)

	if meta.TotalRuns != 1 || meta.TotalVictories != 1 {
		t.Errorf("totals = %d/%d, want 1/1", meta.TotalRuns, meta.TotalVictories)
	}
	// echoes = 20 gold / 2 + 1 victory * 10 + 50 boss bonus = 70
	if meta.Echoes != 70 {
		t.Errorf("echoes = %d, want 70", meta.Echoes)
	}
	// reputation = 1 combat victory + 5 run victory bonus
	if meta.FactionReputations["ironveil"] != 6 {
		t.Errorf("reputation = %d, want 6", meta.FactionReputations["ironveil"])
	}
	if meta.Buildings["soulforge"].Experience != 70 {
		t.Errorf("soulforge experience = %d, want 70", meta.Buildings["soulforge"].Experience)
	}
}

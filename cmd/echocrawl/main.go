// Command echocrawl plays a full procedural run headlessly: it generates a
// map, walks every node, auto-resolves combat with a simple skill policy, and
// persists the run and meta-progression through the configured store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/samdwyer/echocrawl/internal/combat"
	"github.com/samdwyer/echocrawl/internal/config"
	"github.com/samdwyer/echocrawl/internal/gamedata"
	"github.com/samdwyer/echocrawl/internal/rng"
	"github.com/samdwyer/echocrawl/internal/run"
	"github.com/samdwyer/echocrawl/internal/storage"
	"github.com/samdwyer/echocrawl/internal/telemetry"
)

func main() {
	// Load .env file if present (ignore errors, rely on actual env vars)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			log.Printf("telemetry disabled: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Printf("telemetry shutdown: %v", err)
				}
			}()
		}
	}

	if err := play(ctx, cfg); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func play(ctx context.Context, cfg *config.Config) error {
	tables, err := gamedata.LoadTables()
	if err != nil {
		return fmt.Errorf("load content tables: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	meta, err := store.LoadMeta(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		meta = storage.NewMetaProgression()
	} else if err != nil {
		return fmt.Errorf("load meta: %w", err)
	}

	random := rng.New(cfg.Seed)

	var controller *run.Controller
	if cfg.ResumeRunID != "" {
		saved, err := store.LoadRun(ctx, cfg.ResumeRunID)
		if err != nil {
			return fmt.Errorf("resume run: %w", err)
		}
		controller = run.Resume(tables, random, saved)
		log.Printf("resuming run %s at node %d", controller.ID, controller.NodeIndex)
	} else {
		if !meta.HasClass(cfg.ClassID) {
			return fmt.Errorf("class %q is not unlocked", cfg.ClassID)
		}
		controller, err = run.NewController(ctx, tables, random, cfg.ClassID, cfg.FactionID)
		if err != nil {
			return err
		}
		log.Printf("run %s: %d regions, %d nodes, difficulty %.2f",
			controller.ID, len(controller.Map.Regions), len(controller.Map.Nodes), controller.Map.Difficulty)
	}

	for controller.State == run.StateActive {
		if err := store.SaveRun(ctx, controller.Snapshot()); err != nil {
			return fmt.Errorf("checkpoint run: %w", err)
		}
		if err := playNode(ctx, controller); err != nil {
			return err
		}
	}

	log.Printf("run %s over: %s (level %d, %d gold)",
		controller.ID, controller.State, controller.Character.Level, controller.Character.Gold)

	controller.ApplyMeta(meta)
	if err := store.SaveMeta(ctx, meta); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := store.DeleteRun(ctx, controller.ID); err != nil {
		return fmt.Errorf("clear finished run: %w", err)
	}
	log.Printf("meta: %d echoes, %d/%d victories", meta.Echoes, meta.TotalVictories, meta.TotalRuns)
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		return storage.OpenSQLite(cfg.StoragePath)
	default:
		return storage.NewJSONStore(cfg.StoragePath)
	}
}

// playNode resolves the current node and advances the controller.
func playNode(ctx context.Context, controller *run.Controller) error {
	node := controller.CurrentNode()
	if node == nil {
		return nil
	}
	log.Printf("node %d [%s]", node.GlobalIndex, node.Type)

	switch {
	case node.Enemy != nil:
		return playCombat(ctx, controller)
	case node.Event != nil:
		outcome, err := controller.ResolveEvent(ctx)
		if err != nil {
			return err
		}
		log.Printf("  %s", outcome.Text)
	case node.Resource != nil:
		outcome, err := controller.GatherResource()
		if err != nil {
			return err
		}
		log.Printf("  gathered %d %s", outcome.Amount, outcome.Resource)
	case node.Rest != nil:
		outcome, err := controller.Rest()
		if err != nil {
			return err
		}
		log.Printf("  %s (+%d hp)", outcome.Text, outcome.Healed)
	case node.Merchant != nil:
		// Buy whatever is affordable, cheapest first would be nicer but the
		// stock is small enough that greedy front-to-back is fine.
		for i := 0; i < len(node.Merchant.Inventory); {
			if err := controller.Buy(i); err != nil {
				i++
			}
		}
		return controller.LeaveMerchant()
	}
	return nil
}

// playCombat drives one fight to a terminal state with a simple policy: use
// the strongest ready offensive skill the player can afford, otherwise the
// basic attack, otherwise pass.
func playCombat(ctx context.Context, controller *run.Controller) error {
	engine, err := controller.EnterCombat(ctx, combat.Options{
		AllowFlee: true,
		Log: func(message string, severity combat.Severity) {
			if severity != combat.SeverityInfo {
				log.Printf("  ! %s", message)
			}
		},
	})
	if err != nil {
		return err
	}

	for engine.State() != combat.StateResolved {
		if engine.State() != combat.StatePlayerTurn {
			return fmt.Errorf("combat stalled in state %s", engine.State())
		}
		if idx := pickSkill(engine); idx >= 0 {
			if engine.UseSkill(idx) {
				continue
			}
		}
		if !engine.PassTurn() {
			return errors.New("player turn could not be resolved")
		}
	}

	result := engine.Result()
	log.Printf("  combat: %s in %d turns", result.Outcome, result.TurnCount)
	return controller.CompleteCombat(ctx, result)
}

// pickSkill returns the index of the best usable skill, or -1.
func pickSkill(engine *combat.Engine) int {
	player := engine.Player()
	best := -1
	bestDamage := -1
	for i, skill := range player.Skills {
		if !skill.Unlocked || !skill.Ready() || skill.Def.ManaCost > player.Mana {
			continue
		}
		if !skill.Def.IsOffensive() {
			// Heal when hurt, skip buffs otherwise.
			if skill.Def.Healing > 0 && player.HPFraction() < 0.4 {
				return i
			}
			continue
		}
		if skill.Def.Damage > bestDamage {
			best = i
			bestDamage = skill.Def.Damage
		}
	}
	return best
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ltime)
}

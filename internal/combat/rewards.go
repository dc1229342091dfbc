package combat

import (
	"math"

	"github.com/samdwyer/echocrawl/internal/rng"
)

// Common loot drops for regular enemies. Bosses always add their trophy and
// an essence bundle on top.
var lootTable = []string{
	"healing_draught",
	"mana_philtre",
	"whetstone",
	"iron_talisman",
}

const (
	dropChance     = 0.30
	bossDropChance = 0.80
)

// experienceReward computes the victory experience grant:
// level*10 + floor(baseExperience*difficulty), doubled level bonus for bosses.
func (e *Engine) experienceReward() int {
	xp := e.enemy.Level*10 + int(math.Floor(float64(e.enemy.BaseExperience)*e.enemy.DifficultyMult))
	if e.enemy.IsBoss {
		xp += e.enemy.Level * 10
	}
	return xp
}

// rollRewards computes gold, item drops and resources for a victory.
func (e *Engine) rollRewards() Rewards {
	rewards := Rewards{
		Gold:      e.random.IntRange(5, 15) + e.enemy.Level,
		Resources: make(map[string]int),
	}

	chance := dropChance
	if e.enemy.IsBoss {
		chance = bossDropChance
	}
	if e.random.Float64() < chance {
		rewards.Items = append(rewards.Items, rng.Choice(e.random, lootTable))
	}

	if e.enemy.IsBoss {
		if e.enemy.Trophy != "" {
			rewards.Items = append(rewards.Items, e.enemy.Trophy)
		}
		rewards.Resources["essence"] = e.random.IntRange(2, 5)
	}
	return rewards
}

package gamedata

import (
	"errors"
	"fmt"
)

// Sentinel errors for content-table lookups. Unknown classes are a
// content-authoring bug and callers are expected to hard-fail on them;
// unknown events degrade to generic fallback content at the call site.
var (
	ErrUnknownClass   = errors.New("unknown class")
	ErrUnknownFaction = errors.New("unknown faction")
	ErrUnknownRegion  = errors.New("unknown region")
	ErrUnknownEnemy   = errors.New("unknown enemy")
	ErrUnknownBoss    = errors.New("unknown boss")
	ErrUnknownSkill   = errors.New("unknown skill")
	ErrUnknownEvent   = errors.New("unknown event")
)

// Tables is the immutable content catalog injected into the map generator,
// entity factory and combat engine. There is deliberately no package-level
// singleton: tests substitute their own Tables value.
type Tables struct {
	classes  map[string]*ClassDef
	factions map[string]*FactionDef
	skills   map[string]*SkillDef
	statuses map[StatusType]*StatusDef
	enemies  map[string]*EnemyDef
	bosses   map[string]*BossDef
	regions  map[string]*RegionDef
	events   map[string]*EventDef

	regionOrder []string
	nodeWeights []NodeWeight
}

// NewTables builds a content catalog from definition slices and validates all
// cross-references. Classes, enemies and bosses referring to unknown skill
// IDs, or skills carrying unknown hooks, fail fast here rather than at use.
func NewTables(
	classes []ClassDef,
	factions []FactionDef,
	skills []SkillDef,
	statuses []StatusDef,
	enemies []EnemyDef,
	bosses []BossDef,
	regions []RegionDef,
	nodeWeights []NodeWeight,
	events []EventDef,
) (*Tables, error) {
	t := &Tables{
		classes:     make(map[string]*ClassDef, len(classes)),
		factions:    make(map[string]*FactionDef, len(factions)),
		skills:      make(map[string]*SkillDef, len(skills)),
		statuses:    make(map[StatusType]*StatusDef, len(statuses)),
		enemies:     make(map[string]*EnemyDef, len(enemies)),
		bosses:      make(map[string]*BossDef, len(bosses)),
		regions:     make(map[string]*RegionDef, len(regions)),
		events:      make(map[string]*EventDef, len(events)),
		nodeWeights: nodeWeights,
	}
	for i := range classes {
		t.classes[classes[i].ID] = &classes[i]
	}
	for i := range factions {
		t.factions[factions[i].ID] = &factions[i]
	}
	for i := range skills {
		t.skills[skills[i].ID] = &skills[i]
	}
	for i := range statuses {
		t.statuses[statuses[i].Type] = &statuses[i]
	}
	for i := range enemies {
		t.enemies[enemies[i].ID] = &enemies[i]
	}
	for i := range bosses {
		t.bosses[bosses[i].ID] = &bosses[i]
	}
	for i := range regions {
		t.regions[regions[i].ID] = &regions[i]
		t.regionOrder = append(t.regionOrder, regions[i].ID)
	}
	for i := range events {
		t.events[events[i].ID] = &events[i]
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validate cross-checks every skill, status, hook, enemy, boss and event
// reference in the catalog.
func (t *Tables) validate() error {
	for id, s := range t.skills {
		if !KnownHooks[s.Hook] {
			return fmt.Errorf("skill %s: unknown hook %q", id, s.Hook)
		}
		for _, st := range s.Statuses {
			if _, ok := t.statuses[st.Type]; !ok {
				return fmt.Errorf("skill %s: unknown status %q", id, st.Type)
			}
		}
	}
	for id, c := range t.classes {
		for _, sk := range c.Skills {
			if _, ok := t.skills[sk]; !ok {
				return fmt.Errorf("class %s: %w: %s", id, ErrUnknownSkill, sk)
			}
		}
	}
	for id, e := range t.enemies {
		for _, sk := range e.Skills {
			if _, ok := t.skills[sk]; !ok {
				return fmt.Errorf("enemy %s: %w: %s", id, ErrUnknownSkill, sk)
			}
		}
	}
	for id, b := range t.bosses {
		for _, sk := range b.Skills {
			if _, ok := t.skills[sk]; !ok {
				return fmt.Errorf("boss %s: %w: %s", id, ErrUnknownSkill, sk)
			}
		}
		for _, ph := range b.Phases {
			for _, sk := range ph.Abilities {
				if _, ok := t.skills[sk]; !ok {
					return fmt.Errorf("boss %s phase: %w: %s", id, ErrUnknownSkill, sk)
				}
			}
		}
	}
	starters := 0
	for id, r := range t.regions {
		if r.Starter {
			starters++
		}
		for _, e := range r.Enemies {
			if _, ok := t.enemies[e]; !ok {
				return fmt.Errorf("region %s: %w: %s", id, ErrUnknownEnemy, e)
			}
		}
		for _, b := range r.Bosses {
			if _, ok := t.bosses[b]; !ok {
				return fmt.Errorf("region %s: %w: %s", id, ErrUnknownBoss, b)
			}
		}
		for _, ev := range r.Events {
			if _, ok := t.events[ev]; !ok {
				return fmt.Errorf("region %s: %w: %s", id, ErrUnknownEvent, ev)
			}
		}
	}
	if starters != 1 {
		return fmt.Errorf("expected exactly one starter region, got %d", starters)
	}
	if len(t.nodeWeights) == 0 {
		return errors.New("node-type weight catalog is empty")
	}
	return nil
}

// LoadTables loads and validates the full embedded content catalog.
func LoadTables() (*Tables, error) {
	classes, err := LoadClasses()
	if err != nil {
		return nil, err
	}
	factions, err := LoadFactions()
	if err != nil {
		return nil, err
	}
	skills, err := LoadSkills()
	if err != nil {
		return nil, err
	}
	statuses, err := LoadStatuses()
	if err != nil {
		return nil, err
	}
	enemies, err := LoadEnemies()
	if err != nil {
		return nil, err
	}
	bosses, err := LoadBosses()
	if err != nil {
		return nil, err
	}
	regionsFile, err := LoadRegions()
	if err != nil {
		return nil, err
	}
	events, err := LoadEvents()
	if err != nil {
		return nil, err
	}
	return NewTables(classes, factions, skills, statuses, enemies, bosses,
		regionsFile.Regions, regionsFile.NodeWeights, events)
}

// MustLoadTables loads the embedded catalog, panicking on error.
func MustLoadTables() *Tables {
	t, err := LoadTables()
	if err != nil {
		panic(err)
	}
	return t
}

// Class returns the class definition for id.
func (t *Tables) Class(id string) (*ClassDef, error) {
	c, ok := t.classes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, id)
	}
	return c, nil
}

// Faction returns the faction definition for id.
func (t *Tables) Faction(id string) (*FactionDef, error) {
	f, ok := t.factions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFaction, id)
	}
	return f, nil
}

// Skill returns the skill definition for id, or nil if not found.
func (t *Tables) Skill(id string) *SkillDef { return t.skills[id] }

// Status returns the status catalog entry for the given type, or nil.
func (t *Tables) Status(st StatusType) *StatusDef { return t.statuses[st] }

// Enemy returns the enemy definition for id, or nil if not found.
func (t *Tables) Enemy(id string) *EnemyDef { return t.enemies[id] }

// Boss returns the boss definition for id, or nil if not found.
func (t *Tables) Boss(id string) *BossDef { return t.bosses[id] }

// Region returns the region definition for id.
func (t *Tables) Region(id string) (*RegionDef, error) {
	r, ok := t.regions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, id)
	}
	return r, nil
}

// Event returns the event definition for id, or nil if not found.
func (t *Tables) Event(id string) *EventDef { return t.events[id] }

// RegionIDs returns all region IDs in catalog order.
func (t *Tables) RegionIDs() []string { return t.regionOrder }

// StarterRegion returns the fixed easiest region that opens every run.
func (t *Tables) StarterRegion() *RegionDef {
	for _, id := range t.regionOrder {
		if t.regions[id].Starter {
			return t.regions[id]
		}
	}
	return nil
}

// NodeWeights returns the base node-type weight catalog.
func (t *Tables) NodeWeights() []NodeWeight { return t.nodeWeights }

// Package storage persists the meta-progression record and active runs.
// Two backends are provided: a JSON file store and a SQLite store.
package storage

import (
	"context"
	"errors"

	"github.com/samdwyer/echocrawl/internal/entity"
	"github.com/samdwyer/echocrawl/internal/worldgen"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Building tracks one meta-progression building.
type Building struct {
	Level      int `json:"level"`
	Experience int `json:"experience"`
}

// MetaProgression is the persistent account-level record carried across runs.
type MetaProgression struct {
	Echoes             int                 `json:"echoes"`
	TotalRuns          int                 `json:"totalRuns"`
	TotalVictories     int                 `json:"totalVictories"`
	Buildings          map[string]Building `json:"buildings"`
	UnlockedClasses    []string            `json:"unlockedClasses"`
	FactionReputations map[string]int      `json:"factionReputations"`
}

// NewMetaProgression returns an empty meta record with the default unlocks.
func NewMetaProgression() *MetaProgression {
	return &MetaProgression{
		Buildings:          make(map[string]Building),
		UnlockedClasses:    []string{"warrior"},
		FactionReputations: make(map[string]int),
	}
}

// HasClass reports whether the class is unlocked.
func (m *MetaProgression) HasClass(classID string) bool {
	for _, c := range m.UnlockedClasses {
		if c == classID {
			return true
		}
	}
	return false
}

// UnlockClass adds a class to the unlocked set.
func (m *MetaProgression) UnlockClass(classID string) {
	if !m.HasClass(classID) {
		m.UnlockedClasses = append(m.UnlockedClasses, classID)
	}
}

// ActiveRun mirrors an in-progress run: enough state to resume the run
// controller at the exact node index.
type ActiveRun struct {
	ID        string           `json:"id"`
	Map       *worldgen.RunMap `json:"map"`
	Character *entity.Entity   `json:"character"`
	NodeIndex int              `json:"nodeIndex"`
	Resources map[string]int   `json:"resources"`
	Items     []string         `json:"items"`
}

// Store defines the interface for game data persistence.
type Store interface {
	SaveMeta(ctx context.Context, meta *MetaProgression) error
	LoadMeta(ctx context.Context) (*MetaProgression, error)
	SaveRun(ctx context.Context, run *ActiveRun) error
	LoadRun(ctx context.Context, id string) (*ActiveRun, error)
	DeleteRun(ctx context.Context, id string) error
	Close() error
}

// Package worldgen generates run maps: the ordered regions and nodes a run
// walks through, with enemy, event, resource, merchant, rest and boss
// payloads drawn from the content tables.
package worldgen

import "github.com/samdwyer/echocrawl/internal/gamedata"

// EnemyPayload describes the encounter waiting at a combat or boss node.
type EnemyPayload struct {
	TemplateID string  `json:"templateId"`
	Difficulty float64 `json:"difficulty"`
	IsBoss     bool    `json:"isBoss,omitempty"`
}

// EventPayload references an event template; Generic carries fallback text
// when the region referenced an unknown event.
type EventPayload struct {
	EventID string `json:"eventId"`
	Generic bool   `json:"generic,omitempty"`
}

// ResourcePayload is a gatherable cache.
type ResourcePayload struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
}

// MerchantItem is one line of a merchant's stock.
type MerchantItem struct {
	Item  string `json:"item"`
	Price int    `json:"price"`
}

// MerchantPayload is a merchant node's inventory.
type MerchantPayload struct {
	Inventory []MerchantItem `json:"inventory"`
}

// RestPayload describes a rest site.
type RestPayload struct {
	Flavor   string  `json:"flavor"`
	HealFrac float64 `json:"healFrac"`
}

// Node is one step of the run map. Exactly one payload field is set,
// matching Type.
type Node struct {
	Type        gamedata.NodeType `json:"type"`
	GlobalIndex int               `json:"globalIndex"`
	RegionIndex int               `json:"regionIndex"`
	Visited     bool              `json:"visited"`
	Completed   bool              `json:"completed"`

	Enemy    *EnemyPayload    `json:"enemy,omitempty"`
	Event    *EventPayload    `json:"event,omitempty"`
	Resource *ResourcePayload `json:"resource,omitempty"`
	Merchant *MerchantPayload `json:"merchant,omitempty"`
	Rest     *RestPayload     `json:"rest,omitempty"`
}

// Region is a themed sequence of nodes with a shared difficulty multiplier.
type Region struct {
	TemplateID string  `json:"templateId"`
	Name       string  `json:"name"`
	Difficulty float64 `json:"difficulty"`
	Nodes      []*Node `json:"nodes"`
}

// RunMap is a complete generated run: ordered regions, plus the flattened
// node list with global indices.
type RunMap struct {
	Regions []*Region `json:"regions"`
	Nodes   []*Node   `json:"nodes"`
	// Difficulty is the mean of the selected regions' base difficulties.
	Difficulty float64 `json:"difficulty"`
}

// BossNode returns the run's boss node. Generation guarantees it is the last
// node of the last region.
func (m *RunMap) BossNode() *Node {
	if len(m.Nodes) == 0 {
		return nil
	}
	return m.Nodes[len(m.Nodes)-1]
}

// NodeAt returns the node at the given global index, or nil out of range.
func (m *RunMap) NodeAt(index int) *Node {
	if index < 0 || index >= len(m.Nodes) {
		return nil
	}
	return m.Nodes[index]
}

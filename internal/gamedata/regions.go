package gamedata

// NodeType tags what a run-map node contains.
type NodeType string

const (
	NodeCombat   NodeType = "combat"
	NodeEvent    NodeType = "event"
	NodeResource NodeType = "resource"
	NodeMerchant NodeType = "merchant"
	NodeRest     NodeType = "rest"
	NodeBoss     NodeType = "boss"
)

// NodeWeight is one entry of the node-type catalog used by weighted node
// typing. Order in the catalog is the tie-break order for a zero total weight.
type NodeWeight struct {
	Type   NodeType `json:"type"`
	Weight float64  `json:"weight"`
}

// RegionDef defines a themed run region loaded from JSON.
type RegionDef struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Difficulty float64  `json:"difficulty"`
	Enemies    []string `json:"enemies"`
	Bosses     []string `json:"bosses"`
	Events     []string `json:"events"`
	Resources  []string `json:"resources"`
	// Starter marks the fixed easiest region that opens every run.
	Starter bool `json:"starter,omitempty"`
}

// RegionsFile represents the structure of regions.json.
type RegionsFile struct {
	Regions     []RegionDef  `json:"regions"`
	NodeWeights []NodeWeight `json:"nodeWeights"`
}

// LoadRegions loads region definitions and the node-type weight catalog from
// the embedded regions.json file.
func LoadRegions() (*RegionsFile, error) {
	file, err := Load[RegionsFile]("regions.json")
	if err != nil {
		return nil, err
	}
	return &file, nil
}

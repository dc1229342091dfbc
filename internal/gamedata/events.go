package gamedata

// EventOutcome is one weighted result of an event node. A zero Stat means the
// outcome applies unconditionally; otherwise the named primary stat is
// checked against Check and the outcome degrades to its failure text.
type EventOutcome struct {
	Weight      float64    `json:"weight"`
	Text        string     `json:"text"`
	Stat        string     `json:"stat,omitempty"`
	Check       int        `json:"check,omitempty"`
	FailText    string     `json:"failText,omitempty"`
	HealFrac    float64    `json:"healFrac,omitempty"`   // fraction of max health restored
	DamageFrac  float64    `json:"damageFrac,omitempty"` // fraction of max health lost
	Gold        int        `json:"gold,omitempty"`
	Resource    string     `json:"resource,omitempty"`
	ResourceAmt int        `json:"resourceAmt,omitempty"`
	Status      StatusType `json:"status,omitempty"`
	StatusTurns int        `json:"statusTurns,omitempty"`
}

// EventDef defines an event template loaded from JSON.
type EventDef struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Outcomes    []EventOutcome `json:"outcomes"`
}

// EventsFile represents the structure of events.json.
type EventsFile struct {
	Events []EventDef `json:"events"`
}

// LoadEvents loads event definitions from the embedded events.json file.
func LoadEvents() ([]EventDef, error) {
	file, err := Load[EventsFile]("events.json")
	if err != nil {
		return nil, err
	}
	return file.Events, nil
}

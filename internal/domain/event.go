package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event names used for subscriptions and message headers.
const (
	EventDemandCalculated     = "demand_analysis_calculated"
	EventHighDemandIdentified = "high_demand_area_identified"
)

// Event is something that happened to a demand analysis.
type Event interface {
	Name() string
	Area() AreaID
	Metadata() EventMetadata
}

// EventMetadata identifies a single occurrence of an event.
type EventMetadata struct {
	ID         string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Metadata returns m; it lets embedding structs satisfy Event.
func (m EventMetadata) Metadata() EventMetadata { return m }

func newEventMetadata() EventMetadata {
	return EventMetadata{ID: uuid.NewString(), OccurredAt: clock.Now().UTC()}
}

// DemandCalculated is emitted every time an area's priority is recalculated.
type DemandCalculated struct {
	EventMetadata
	AreaID       AreaID         `json:"area_id"`
	Population   int            `json:"population"`
	StationCount int            `json:"station_count"`
	Priority     DemandPriority `json:"priority"`
}

func (DemandCalculated) Name() string   { return EventDemandCalculated }
func (e DemandCalculated) Area() AreaID { return e.AreaID }

// HighDemandIdentified is emitted alongside DemandCalculated when the new
// priority is HIGH. External planning systems consume it.
type HighDemandIdentified struct {
	EventMetadata
	AreaID       AreaID  `json:"area_id"`
	Population   int     `json:"population"`
	StationCount int     `json:"station_count"`
	UrgencyScore float64 `json:"urgency_score"`
}

func (HighDemandIdentified) Name() string   { return EventHighDemandIdentified }
func (e HighDemandIdentified) Area() AreaID { return e.AreaID }

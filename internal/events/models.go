package events

// LookupEvent is emitted once per lookup, successful or not. Table rows never travel
// in an event.
type LookupEvent struct {
	RequestID     string  `json:"request_id,omitempty"`
	Surface       string  `json:"surface"`
	Dataset       string  `json:"dataset,omitempty"`
	Outcome       string  `json:"outcome"`
	PowerColumn   string  `json:"power_column,omitempty"`
	PowerKW       float64 `json:"power_kw,omitempty"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	EnergyKWh     float64 `json:"energy_kwh,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Package kafka publishes and consumes catalog change events so multiple
// service instances keep their formula snapshots coherent.
package kafka

import "time"

// TopicFormulaChanged carries FormulaChangedEvent payloads.
const TopicFormulaChanged = "formula.changed"

// Change types for FormulaChangedEvent.
const (
	ChangeCreated  = "created"
	ChangeUpdated  = "updated"
	ChangeDeleted  = "deleted"
	ChangeReloaded = "reloaded"
)

// FormulaChangedEvent signals that the formula catalog changed and
// subscribers should rebuild their snapshots.
type FormulaChangedEvent struct {
	Type       string    `json:"type"`
	FormulaID  string    `json:"formula_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventPrediction is the AI-written preview article attached to an event
type EventPrediction struct {
	ID      int64  `db:"id" json:"id"`
	EventID int64  `db:"event_id" json:"eventId"`
	Title   string `db:"title" json:"title"`
	Model   string `db:"model" json:"model,omitempty"`

	// Sections (JSONB), in display order
	Sections []PredictionSection `db:"sections" json:"sections"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PredictionSection is one heading/description pair of a prediction article
type PredictionSection struct {
	Key         string `json:"key"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
}

// SectionsJSON encodes the sections for the JSONB column
func (p *EventPrediction) SectionsJSON() ([]byte, error) {
	if p.Sections == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Sections)
}

// Section returns the section with the given key, or an empty one
func (p *EventPrediction) Section(key string) PredictionSection {
	for _, s := range p.Sections {
		if s.Key == key {
			return s
		}
	}
	return PredictionSection{Key: key}
}

// Validate ensures a prediction is worth persisting
func (p *EventPrediction) Validate() error {
	if p.EventID <= 0 {
		return fmt.Errorf("event_id must be positive")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

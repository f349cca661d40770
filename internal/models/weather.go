package models

import "time"

// Weather is the current conditions shown on the dashboard widget.
type Weather struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	Condition   string    `json:"condition"`
	FetchedAt   time.Time `json:"fetchedAt"`
	Cached      bool      `json:"cached"`
}

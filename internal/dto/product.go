package dto

import "time"

type ProductResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Category    string         `json:"category"`
	Summary     string         `json:"summary"`
	Description string         `json:"description,omitempty"`
	Specs       map[string]any `json:"specs,omitempty"`
	Images      []string       `json:"images"`
	Featured    bool           `json:"featured"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type ProductFilter struct {
	Category string
	Search   string
	Featured *bool
}

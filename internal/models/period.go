package models

import "time"

// Period is a time-bounded management term. At most one is meant to be active.
type Period struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	IsActive  bool       `json:"isActive"`
	Theme     string     `json:"theme,omitempty"`
	Vision    string     `json:"vision,omitempty"`
	Mission   string     `json:"mission,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

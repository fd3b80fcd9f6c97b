package models

import "time"

// PositionLevel ranks a role within the organization.
type PositionLevel string

const (
	LevelProtector   PositionLevel = "protector"
	LevelAdvisor     PositionLevel = "advisor"
	LevelChair       PositionLevel = "chair"
	LevelViceChair   PositionLevel = "vice_chair"
	LevelSecretary   PositionLevel = "secretary"
	LevelTreasurer   PositionLevel = "treasurer"
	LevelCoordinator PositionLevel = "coordinator"
	LevelMember      PositionLevel = "member"
)

// Position is a role within a period. Order drives display; lower comes first.
type Position struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Level       PositionLevel `json:"level"`
	Department  string        `json:"department,omitempty"`
	Order       int           `json:"order"`
	Period      Relation      `json:"period"`
	Description string        `json:"description,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty"`
}

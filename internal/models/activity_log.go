package models

import "time"

// ActivityAction names what an actor did.
type ActivityAction string

const (
	ActionCreate ActivityAction = "create"
	ActionUpdate ActivityAction = "update"
	ActionDelete ActivityAction = "delete"
	ActionLogin  ActivityAction = "login"
	ActionLogout ActivityAction = "logout"
)

// ActivityLog is an append-only audit entry. DocumentID is a weak reference and may dangle.
type ActivityLog struct {
	ID         string         `json:"id"`
	Action     ActivityAction `json:"action"`
	User       Relation       `json:"user,omitempty"`
	Collection string         `json:"collection,omitempty"`
	DocumentID string         `json:"documentId,omitempty"`
	Details    string         `json:"details,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	CreatedAt  *time.Time     `json:"createdAt,omitempty"`
}

// ActivityLogFilter narrows the admin listing.
type ActivityLogFilter struct {
	Action     string
	Collection string
	UserID     string
	Page       int
	PageSize   int
}

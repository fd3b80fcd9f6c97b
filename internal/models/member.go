package models

import "time"

// SocialMedia holds optional profile links.
type SocialMedia struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

// Member is a person holding a position during a period.
type Member struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Photo       string       `json:"photo,omitempty"`
	Position    Relation     `json:"position"`
	Period      Relation     `json:"period"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	SocialMedia *SocialMedia `json:"socialMedia,omitempty"`
	IsActive    bool         `json:"isActive"`
	JoinDate    *time.Time   `json:"joinDate,omitempty"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
}

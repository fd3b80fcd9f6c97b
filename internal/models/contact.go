package models

import "time"

// ContactSubmission is the inbound public contact form.
type ContactSubmission struct {
	Name    string `json:"name" validate:"min=3"`
	Email   string `json:"email" validate:"simple_email"`
	Subject string `json:"subject,omitempty" validate:"max=200"`
	Message string `json:"message" validate:"min=10"`
}

// ContactMessage is a stored submission.
type ContactMessage struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Subject   string     `json:"subject,omitempty"`
	Message   string     `json:"message"`
	IPAddress string     `json:"ipAddress,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

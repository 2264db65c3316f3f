package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailLog records a delivery attempt made by the email worker.
type EmailLog struct {
	ID             uuid.UUID `json:"id"`
	EmailType      string    `json:"email_type"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	Error          *string   `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

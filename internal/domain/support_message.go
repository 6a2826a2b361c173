package domain

import "time"

// MessageSenderType indicates who authored a message in a case thread.
type MessageSenderType string

const (
	SenderTypeUser  MessageSenderType = "user"
	SenderTypeAdmin MessageSenderType = "admin"
)

// SupportMessage is a single message in a case thread. The thread is produced
// by the messaging subsystem; this service only reads it.
type SupportMessage struct {
	ID               string
	CaseID           string
	SenderType       MessageSenderType
	Body             string
	ContainsHighRisk bool
	CreatedAt        time.Time
}

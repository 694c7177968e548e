package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the durable long-term memory identity record. ExternalId is the
// caller-supplied user identifier; rows are created lazily on first contact.
type User struct {
	Id          uuid.UUID
	ExternalId  string
	Name        string
	Email       string
	Preferences map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

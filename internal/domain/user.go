package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID
	Email         string
	Name          string
	PasswordHash  string
	Country       string
	Currency      string
	AcceptsCrypto bool
	CreatedAt     time.Time
}

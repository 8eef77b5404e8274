package model

import (
	"time"

	"github.com/google/uuid"
)

// Credential is the identity record kept by the credential store. It is the
// source of user ids; profile data lives in the document database.
type Credential struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"uniqueIndex;not null"`
	DisplayName string    `gorm:"not null"`
	Disabled    bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Credential) TableName() string { return "credentials" }

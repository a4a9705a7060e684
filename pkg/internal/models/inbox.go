package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InboxActivity is an audit row for every payload accepted by the inbox
// endpoint. Old rows are swept by the cleanup cron job.
type InboxActivity struct {
	ID uint `json:"id" gorm:"primaryKey"`

	RecipientID uuid.UUID         `json:"recipient_id" gorm:"type:uuid"`
	Recipient   Author            `json:"recipient"`
	Kind        string            `json:"kind"`
	Payload     datatypes.JSONMap `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

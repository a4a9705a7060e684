package models

import (
	"time"

	"github.com/google/uuid"
)

// Author is an identity on this node. Remote authors are materialized
// lazily on first federation contact as inactive "shadow" rows that can
// never authenticate locally.
type Author struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`

	Name         string `json:"name" gorm:"uniqueIndex"`
	DisplayName  string `json:"display_name"`
	Github       string `json:"github"`
	ProfileImage string `json:"profile_image"`

	// Host is the base API URL of the owning node, always stored with a
	// trailing "/api/". Empty for local authors.
	Host string `json:"host"`

	Password string `json:"-"`

	IsActive   bool `json:"is_active"`
	IsApproved bool `json:"is_approved"`
	IsStaff    bool `json:"is_staff"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v Author) IsLocal() bool {
	return len(v.Host) == 0
}

// AuthorRef is the nested author object of the federation dialect.
type AuthorRef struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	Host         string `json:"host"`
	DisplayName  string `json:"displayName"`
	Github       string `json:"github"`
	ProfileImage string `json:"profileImage"`
	Web          string `json:"web"`
}

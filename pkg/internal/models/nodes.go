package models

import "time"

// RemoteNode is an operator-provisioned federation peer. The shared-secret
// credential is used both to authenticate the peer's inbound calls and to
// sign our outbound inbox deliveries.
type RemoteNode struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Name     string `json:"name"`
	BaseURL  string `json:"base_url" gorm:"uniqueIndex"`
	Username string `json:"username"`
	Password string `json:"-"`

	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

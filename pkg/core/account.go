package core

import (
	"time"
)

// AccountStatus represents the lifecycle state of a platform account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "Active"
	StatusInactive  AccountStatus = "Inactive"
	StatusCreated   AccountStatus = "Created"
	StatusBanned    AccountStatus = "Banned"
	StatusSuspended AccountStatus = "Suspended"
)

// Account is a stored credential record for one platform account.
//
// The surrogate ID is internal; external operations identify accounts by
// (platform, email). Writes enforce uniqueness on (platform, username).
// Soft-deleted rows (IsActive=false) are kept for audit but excluded from
// every read and aggregate path.
type Account struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	Platform  string        `gorm:"index;size:64;not null;uniqueIndex:idx_platform_username" json:"platform"`
	Username  string        `gorm:"size:255;not null;uniqueIndex:idx_platform_username" json:"username"`
	Password  string        `gorm:"size:255;not null" json:"-"`
	Email     string        `gorm:"index;size:255" json:"email"`
	Phone     string        `gorm:"size:32" json:"phone,omitempty"`
	Status    AccountStatus `gorm:"index;size:20;default:'Active'" json:"status"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	LastLogin *time.Time    `json:"last_login,omitempty"`
	ProxyID   *string       `gorm:"size:64" json:"proxy_id,omitempty"`
	Extra     ExtraData     `gorm:"type:text" json:"extra,omitempty"`
	IsActive  bool          `gorm:"index;default:true" json:"is_active"`
}

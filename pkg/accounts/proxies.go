package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

func newID() string { return uuid.New().String() }

// StoredProxy is the persisted proxy record set. The running pool loads its
// entries from configuration; this table exists so the API layer can manage
// proxies across restarts.
type StoredProxy struct {
	ID       string     `gorm:"primaryKey;size:36"`
	Host     string     `gorm:"size:255;not null"`
	Port     int        `gorm:"not null"`
	Username string     `gorm:"size:255"`
	Password string     `gorm:"size:255"`
	IsActive bool       `gorm:"default:true"`
	LastUsed *time.Time `gorm:""`
}

// TableName pins the table to "proxies" instead of the pluralized struct
// name.
func (StoredProxy) TableName() string { return "proxies" }

// SaveProxy upserts a proxy record. Same boolean write contract as Add.
func (s *GormStore) SaveProxy(ctx context.Context, p *StoredProxy) bool {
	if p.ID == "" {
		p.ID = newID()
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		s.fail("save proxy", err)
		return false
	}
	return true
}

// ListProxies returns all active proxy records, empty on failure.
func (s *GormStore) ListProxies(ctx context.Context) []StoredProxy {
	var out []StoredProxy
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		s.fail("list proxies", err)
		return []StoredProxy{}
	}
	return out
}

// Package accounts persists platform account records.
package accounts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

// GormStore implements core.AccountStorage using GORM.
//
// The write path surfaces storage failure as a false return and the read
// path degrades to empty or zero; see core.AccountStorage for why that
// asymmetry is part of the contract.
type GormStore struct {
	db      *gorm.DB
	logger  *slog.Logger
	emitter core.Emitter

	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex
}

// Option configures a GormStore.
type Option interface {
	apply(*GormStore)
}

type optionFunc func(*GormStore)

func (f optionFunc) apply(s *GormStore) { f(s) }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(s *GormStore) { s.logger = l })
}

// WithEmitter sets the event sink for account events.
func WithEmitter(e core.Emitter) Option {
	return optionFunc(func(s *GormStore) { s.emitter = e })
}

// New creates a store over an already opened *gorm.DB.
func New(db *gorm.DB, opts ...Option) *GormStore {
	s := &GormStore{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// Open opens (or creates) the SQLite database at path and returns a store
// over it. The connection pool is pinned to a single connection: SQLite
// wants one writer, and the single handle serializes concurrent access the
// way the engine expects.
func Open(path string, opts ...Option) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, core.NewConfigError("accounts", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, core.NewConfigError("accounts", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return New(db, opts...), nil
}

// Migrate creates the Accounts and Proxies tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return core.NewConfigError("accounts", core.ErrStoreClosed)
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&core.Account{}, &StoredProxy{}); err != nil {
		return core.NewConfigError("accounts", err)
	}
	return nil
}

// Add inserts a new record, assigning a surrogate ID and defaults. On
// storage failure it logs the wrapped PersistenceError and reports false so
// the caller can retry.
func (s *GormStore) Add(ctx context.Context, account *core.Account) bool {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Status == "" {
		account.Status = core.StatusActive
	}
	account.IsActive = true

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		s.fail("add", err)
		return false
	}

	s.logger.Info("account added", "username", account.Username, "platform", account.Platform)
	if s.emitter != nil {
		s.emitter.Emit(&core.AccountAdded{Account: account, Timestamp: time.Now()})
	}
	return true
}

// Update rewrites status, last login and extra data for the record matched
// by (username, platform). It reports true only when a row actually
// changed.
func (s *GormStore) Update(ctx context.Context, account *core.Account) bool {
	res := s.db.WithContext(ctx).
		Model(&core.Account{}).
		Where("username = ? AND platform = ?", account.Username, account.Platform).
		Updates(map[string]any{
			"status":     account.Status,
			"last_login": account.LastLogin,
			"extra":      account.Extra,
		})
	if res.Error != nil {
		s.fail("update", res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		return false
	}

	s.logger.Info("account updated", "username", account.Username, "platform", account.Platform)
	if s.emitter != nil {
		s.emitter.Emit(&core.AccountUpdated{Account: account, Timestamp: time.Now()})
	}
	return true
}

// List returns all active records in insertion order, optionally filtered
// by platform. The read path is best-effort: any failure yields an empty
// slice.
func (s *GormStore) List(ctx context.Context, platform string) []core.Account {
	q := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC")
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}

	var out []core.Account
	if err := q.Find(&out).Error; err != nil {
		s.fail("list", err)
		return []core.Account{}
	}
	return out
}

// CountTotal counts active rows. Returns 0 on any failure.
func (s *GormStore) CountTotal(ctx context.Context) int {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&core.Account{}).
		Where("is_active = ?", true).
		Count(&n).Error
	if err != nil {
		s.fail("count total", err)
		return 0
	}
	return int(n)
}

// CountActive counts active rows whose status is Active. Returns 0 on any
// failure.
func (s *GormStore) CountActive(ctx context.Context) int {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&core.Account{}).
		Where("is_active = ? AND status = ?", true, core.StatusActive).
		Count(&n).Error
	if err != nil {
		s.fail("count active", err)
		return 0
	}
	return int(n)
}

// SoftDelete marks the record matched by (email, platform) inactive and
// reports whether a row was affected.
func (s *GormStore) SoftDelete(ctx context.Context, email, platform string) bool {
	res := s.db.WithContext(ctx).
		Model(&core.Account{}).
		Where("email = ? AND platform = ?", email, platform).
		Update("is_active", false)
	if res.Error != nil {
		s.fail("soft delete", res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		return false
	}
	s.logger.Info("account deleted", "email", email, "platform", platform)
	return true
}

// Connected reports whether the storage handle answers a ping.
func (s *GormStore) Connected(ctx context.Context) bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return false
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx) == nil
}

// Close releases the underlying handle. Safe to call more than once.
func (s *GormStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		var sqlDB interface{ Close() error }
		sqlDB, err = s.db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		s.logger.Info("account store closed")
	})
	return err
}

// fail logs a persistence failure; reads degrade, writes report false, and
// in both cases this log line is the only trace.
func (s *GormStore) fail(op string, err error) {
	perr := &core.PersistenceError{Op: op, Err: err}
	s.logger.Error("account store failure", "op", op, "error", err)
	if s.emitter != nil {
		s.emitter.Emit(&core.LogMessage{Level: "error", Source: "accounts", Text: perr.Error(), Timestamp: time.Now()})
	}
}

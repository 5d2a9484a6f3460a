// Package tokenstore persists bearer tokens between runs, keyed by visitor
// id on the server and by profile name in the CLI.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, token string) error
	Delete(ctx context.Context, key string) error
}

type StoredToken struct {
	Owner     string    `gorm:"primaryKey;size:128" json:"owner"`
	Token     string    `gorm:"not null"            json:"token"`
	UpdatedAt time.Time `gorm:"not null"            json:"updated_at"`
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&StoredToken{}); err != nil {
		return nil, fmt.Errorf("migrate tokens: %w", err)
	}
	return &GormStore{DB: db}, nil
}

// Load returns "" when nothing is stored under key.
func (s *GormStore) Load(ctx context.Context, key string) (string, error) {
	var rec StoredToken
	err := s.DB.WithContext(ctx).Where("owner = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return rec.Token, nil
}

func (s *GormStore) Save(ctx context.Context, key, token string) error {
	rec := StoredToken{Owner: key, Token: token, UpdatedAt: time.Now().UTC()}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	if err := s.DB.WithContext(ctx).Where("owner = ?", key).Delete(&StoredToken{}).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Purge drops tokens not touched since before.
func (s *GormStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("updated_at < ?", before.UTC()).Delete(&StoredToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("db error: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: map[string]string{}}
}

func (m *MemoryStore) Load(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[key], nil
}

func (m *MemoryStore) Save(_ context.Context, key, token string) error {
	m.mu.Lock()
	m.tokens[key] = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.tokens, key)
	m.mu.Unlock()
	return nil
}

// Slot is one key of a Store.
type Slot struct {
	store Store
	key   string
}

func Scope(store Store, key string) *Slot {
	return &Slot{store: store, key: key}
}

func (s *Slot) Load(ctx context.Context) (string, error) { return s.store.Load(ctx, s.key) }

func (s *Slot) Save(ctx context.Context, token string) error { return s.store.Save(ctx, s.key, token) }

func (s *Slot) Clear(ctx context.Context) error { return s.store.Delete(ctx, s.key) }

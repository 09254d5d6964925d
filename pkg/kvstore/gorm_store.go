package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aurelia-jewels/aurelia-backend/pkg/db"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
)

// Entry is the persisted row backing the key-value store.
type Entry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName maps Entry onto kv_entries.
func (Entry) TableName() string {
	return "kv_entries"
}

// GormStore persists entries through the shared database client.
type GormStore struct {
	client *db.Client
}

var _ Store = (*GormStore)(nil)

func NewGormStore(client *db.Client) *GormStore {
	return &GormStore{client: client}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.client.DB().WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading kv entry")
	}
	return entry.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing kv entry")
	}
	return nil
}

func (s *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.client.DB().WithContext(ctx).
		Model(&Entry{}).
		Where("key LIKE ?", prefix+"%").
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing kv keys")
	}
	return keys, nil
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	err := s.client.DB().WithContext(ctx).
		Where("key = ?", key).
		Delete(&Entry{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing kv entry")
	}
	return nil
}

// SPDX-License-Identifier: EPL-2.0

// Package store persists the object graph of a container file in SQLite
// through GORM.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Store is one open container database.
type Store struct {
	db   *gorm.DB
	path string
}

// Open opens or creates the database at path and migrates the schema.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	// rollback journal keeps the whole database in the single file once
	// the connection is closed
	dsn := path + "?_pragma=journal_mode(DELETE)" +
		"&_pragma=synchronous(FULL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 newGormLogger(log),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

// Close releases the connection. The database file is complete afterwards.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// InsertMob creates a mob together with its comments, descriptors and
// locators.
func (s *Store) InsertMob(ctx context.Context, mob *Mob) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(mob).Error
	})
	if err != nil {
		return fmt.Errorf("creating mob %s: %w", mob.ID, err)
	}
	return nil
}

func preloadGraph(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }
	return db.
		Preload("Comments", byPosition).
		Preload("Descriptors", byPosition).
		Preload("Descriptors.Locators", byPosition)
}

// Mobs returns every mob in creation order.
func (s *Store) Mobs(ctx context.Context) ([]Mob, error) {
	var mobs []Mob
	if err := preloadGraph(s.db.WithContext(ctx)).Order("created_at ASC, id ASC").Find(&mobs).Error; err != nil {
		return nil, fmt.Errorf("listing mobs: %w", err)
	}
	return mobs, nil
}

// Mob returns the mob with the given id or ErrNotFound.
func (s *Store) Mob(ctx context.Context, id string) (*Mob, error) {
	var mob Mob
	if err := preloadGraph(s.db.WithContext(ctx)).Where("id = ?", id).First(&mob).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("mob %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting mob %s: %w", id, err)
	}
	return &mob, nil
}

// MobExists reports whether a mob with id was registered.
func (s *Store) MobExists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Mob{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("counting mob %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) CreateEssence(ctx context.Context, e *Essence) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("creating essence for mob %s slot %d: %w", e.MobID, e.SlotID, err)
	}
	return nil
}

func (s *Store) AppendSegment(ctx context.Context, seg *Segment) error {
	if err := s.db.WithContext(ctx).Create(seg).Error; err != nil {
		return fmt.Errorf("writing segment %d of essence %d: %w", seg.Seq, seg.EssenceID, err)
	}
	return nil
}

// CompleteEssence stores the final length, frame and segment counts of e and
// marks it complete.
func (s *Store) CompleteEssence(ctx context.Context, e *Essence) error {
	e.Complete = true
	err := s.db.WithContext(ctx).Model(&Essence{}).Where("id = ?", e.ID).Updates(map[string]any{
		"length":   e.Length,
		"frames":   e.Frames,
		"segments": e.Segments,
		"complete": true,
	}).Error
	if err != nil {
		return fmt.Errorf("completing essence %d: %w", e.ID, err)
	}
	return nil
}

// DiscardEssence removes an essence and its segments.
func (s *Store) DiscardEssence(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("essence_id = ?", id).Delete(&Segment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Essence{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("discarding essence %d: %w", id, err)
	}
	return nil
}

// Essences lists every complete essence.
func (s *Store) Essences(ctx context.Context) ([]Essence, error) {
	var out []Essence
	if err := s.db.WithContext(ctx).Where("complete = ?", true).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing essences: %w", err)
	}
	return out, nil
}

// EssenceFor returns the complete essence of mobID and slot or ErrNotFound.
func (s *Store) EssenceFor(ctx context.Context, mobID string, slot uint32) (*Essence, error) {
	var e Essence
	err := s.db.WithContext(ctx).
		Where("mob_id = ? AND slot_id = ? AND complete = ?", mobID, slot, true).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("essence for mob %s slot %d: %w", mobID, slot, ErrNotFound)
		}
		return nil, fmt.Errorf("getting essence for mob %s slot %d: %w", mobID, slot, err)
	}
	return &e, nil
}

// Segment returns segment seq of an essence or ErrNotFound.
func (s *Store) Segment(ctx context.Context, essenceID uint, seq int) (*Segment, error) {
	var seg Segment
	err := s.db.WithContext(ctx).Where("essence_id = ? AND seq = ?", essenceID, seq).First(&seg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("segment %d of essence %d: %w", seq, essenceID, ErrNotFound)
		}
		return nil, fmt.Errorf("getting segment %d of essence %d: %w", seq, essenceID, err)
	}
	return &seg, nil
}

func (s *Store) AddIdentification(ctx context.Context, id *Identification) error {
	if err := s.db.WithContext(ctx).Create(id).Error; err != nil {
		return fmt.Errorf("creating identification: %w", err)
	}
	return nil
}

// Identifications returns every save record, oldest first.
func (s *Store) Identifications(ctx context.Context) ([]Identification, error) {
	var out []Identification
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing identifications: %w", err)
	}
	return out, nil
}

package devserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devhell/todo/internal/model"
)

// GormStore is a Store backed by gorm. The table is created on open.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// todoRecord is one stored todo. Seq keeps creation order stable when
// timestamps collide.
type todoRecord struct {
	Seq         uint   `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"uniqueIndex;type:char(36)"`
	Owner       string `gorm:"index"`
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r todoRecord) todo() model.Todo {
	return model.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// NewGormStore wraps an open database and migrates the todos table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	s := &GormStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := db.AutoMigrate(&todoRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// OpenSQLite opens (or creates) a SQLite database file.
func OpenSQLite(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return NewGormStore(db)
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) List(ctx context.Context, owner string) ([]model.Todo, error) {
	var recs []todoRecord
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Order("seq asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]model.Todo, len(recs))
	for i, r := range recs {
		out[i] = r.todo()
	}
	return out, nil
}

func (s *GormStore) find(ctx context.Context, owner, id string) (todoRecord, error) {
	var rec todoRecord
	err := s.db.WithContext(ctx).Where("id = ? AND owner = ?", id, owner).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, ErrNotFound
	}
	return rec, err
}

func (s *GormStore) Get(ctx context.Context, owner, id string) (model.Todo, error) {
	rec, err := s.find(ctx, owner, id)
	if err != nil {
		return model.Todo{}, err
	}
	return rec.todo(), nil
}

func (s *GormStore) Create(ctx context.Context, owner string, in model.TodoInput) (model.Todo, error) {
	now := s.now()
	rec := todoRecord{
		ID:          uuid.NewString(),
		Owner:       owner,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Todo{}, err
	}
	return rec.todo(), nil
}

func (s *GormStore) Update(ctx context.Context, owner, id string, in model.TodoInput) (model.Todo, error) {
	rec, err := s.find(ctx, owner, id)
	if err != nil {
		return model.Todo{}, err
	}
	rec.Title = in.Title
	rec.Description = in.Description
	rec.UpdatedAt = s.now()
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return model.Todo{}, err
	}
	return rec.todo(), nil
}

func (s *GormStore) Delete(ctx context.Context, owner, id string) error {
	tx := s.db.WithContext(ctx).Delete(&todoRecord{}, "id = ? AND owner = ?", id, owner)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

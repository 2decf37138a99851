package file

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, f *FileRecord) error
	GetByID(ctx context.Context, id string) (*FileRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*FileRecord, error)
	ExistsAtPath(ctx context.Context, userID, path, name string) (bool, error)
	CountChildren(ctx context.Context, userID, childPath string) (int64, error)
	Update(ctx context.Context, f *FileRecord) error
	Delete(ctx context.Context, id string) error
	TotalSizeByUser(ctx context.Context, userID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *FileRecord) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*FileRecord, error) {
	var f FileRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*FileRecord, error) {
	var records []*FileRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *repository) ExistsAtPath(ctx context.Context, userID, path, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&FileRecord{}).
		Where("user_id = ? AND path = ? AND name = ?", userID, path, name).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountChildren(ctx context.Context, userID, childPath string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&FileRecord{}).
		Where("user_id = ? AND path = ?", userID, childPath).
		Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, f *FileRecord) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&FileRecord{}).Error
}

// TotalSizeByUser sums stored bytes for the quota evaluator. Folders carry
// size 0 and are excluded outright.
func (r *repository) TotalSizeByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&FileRecord{}).
		Select("COALESCE(SUM(size), 0)").
		Where("user_id = ? AND type = ?", userID, TypeFile).
		Scan(&total).Error
	return total, err
}

package repository

import (
	"brainer_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type PartRepository struct {
	DB *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{DB: db}
}

func (r *PartRepository) WithTx(tx *gorm.DB) *PartRepository {
	return &PartRepository{DB: tx}
}

func (r *PartRepository) Create(ctx context.Context, part *model.Part) error {
	return r.DB.WithContext(ctx).Create(part).Error
}

func (r *PartRepository) ListByCourse(ctx context.Context, courseID uint) ([]model.Part, error) {
	var parts []model.Part
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("sort_order ASC, id ASC").
		Find(&parts).Error
	return parts, err
}

func (r *PartRepository) FindByID(ctx context.Context, id uint) (*model.Part, error) {
	var part model.Part
	err := r.DB.WithContext(ctx).First(&part, id).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// FindInCourse 查找属于指定课程的 Part
func (r *PartRepository) FindInCourse(ctx context.Context, courseID, partID uint) (*model.Part, error) {
	var part model.Part
	err := r.DB.WithContext(ctx).
		Where("id = ? AND course_id = ?", partID, courseID).
		First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *PartRepository) OrderTaken(ctx context.Context, courseID uint, order int, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Part{}).
		Where("course_id = ? AND sort_order = ? AND id <> ?", courseID, order, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *PartRepository) Update(ctx context.Context, part *model.Part, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(part).Updates(updates).Error
}

func (r *PartRepository) IDsByCourse(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Part{}).
		Where("course_id = ?", courseID).
		Pluck("id", &ids).Error
	return ids, err
}

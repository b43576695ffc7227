package repository

import (
	"brainer_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewSheetRepository struct {
	DB *gorm.DB
}

func NewReviewSheetRepository(db *gorm.DB) *ReviewSheetRepository {
	return &ReviewSheetRepository{DB: db}
}

func (r *ReviewSheetRepository) WithTx(tx *gorm.DB) *ReviewSheetRepository {
	return &ReviewSheetRepository{DB: tx}
}

// Upsert 插入或替换 Part 的复习资料，已存在时只更新 content 和 updated_at
func (r *ReviewSheetRepository) Upsert(ctx context.Context, partID uint, content string) (*model.ReviewSheet, error) {
	now := time.Now()
	sheet := &model.ReviewSheet{
		BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now},
		PartID:    partID,
		Content:   content,
	}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "part_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(sheet).Error
	if err != nil {
		return nil, err
	}
	return r.FindByPart(ctx, partID)
}

func (r *ReviewSheetRepository) FindByPart(ctx context.Context, partID uint) (*model.ReviewSheet, error) {
	var sheet model.ReviewSheet
	err := r.DB.WithContext(ctx).Where("part_id = ?", partID).First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *ReviewSheetRepository) ListByParts(ctx context.Context, partIDs []uint) ([]model.ReviewSheet, error) {
	var sheets []model.ReviewSheet
	if len(partIDs) == 0 {
		return sheets, nil
	}
	err := r.DB.WithContext(ctx).
		Where("part_id IN ?", partIDs).
		Order("part_id ASC").
		Find(&sheets).Error
	return sheets, err
}

// DeleteByPart reports whether a sheet existed.
func (r *ReviewSheetRepository) DeleteByPart(ctx context.Context, partID uint) (bool, error) {
	result := r.DB.WithContext(ctx).Where("part_id = ?", partID).Delete(&model.ReviewSheet{})
	return result.RowsAffected > 0, result.Error
}

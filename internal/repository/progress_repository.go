package repository

import (
	"brainer_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// Find 获取用户在某章节的完成记录，未记录时返回 gorm.ErrRecordNotFound
func (r *ProgressRepository) Find(ctx context.Context, userID, chapterID uint) (*model.ChapterProgress, error) {
	var progress model.ChapterProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Upsert 设置完成状态；取消完成时清空 completed_at
func (r *ProgressRepository) Upsert(ctx context.Context, userID, chapterID uint, completed bool) (*model.ChapterProgress, error) {
	now := time.Now()
	progress := &model.ChapterProgress{
		UserID:      userID,
		ChapterID:   chapterID,
		IsCompleted: completed,
		UpdatedAt:   now,
	}
	if completed {
		progress.CompletedAt = &now
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_completed", "completed_at", "updated_at"}),
	}).Create(progress).Error
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, userID, chapterID)
}

// CompletedChapterIDs 返回 chapterIDs 中用户已完成的章节
func (r *ProgressRepository) CompletedChapterIDs(ctx context.Context, userID uint, chapterIDs []uint) ([]uint, error) {
	var ids []uint
	if len(chapterIDs) == 0 {
		return ids, nil
	}
	err := r.DB.WithContext(ctx).Model(&model.ChapterProgress{}).
		Where("user_id = ? AND is_completed = ? AND chapter_id IN ?", userID, true, chapterIDs).
		Order("chapter_id ASC").
		Pluck("chapter_id", &ids).Error
	return ids, err
}

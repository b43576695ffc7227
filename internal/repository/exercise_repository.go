package repository

import (
	"brainer_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type ExerciseRepository struct {
	DB *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{DB: db}
}

func (r *ExerciseRepository) WithTx(tx *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{DB: tx}
}

func (r *ExerciseRepository) Create(ctx context.Context, exercise *model.Exercise) error {
	return r.DB.WithContext(ctx).Create(exercise).Error
}

// NextOrder 返回章节内下一个可用的 order（当前最大值 + 1）
func (r *ExerciseRepository) NextOrder(ctx context.Context, chapterID uint) (int, error) {
	var maxOrder int
	err := r.DB.WithContext(ctx).Model(&model.Exercise{}).
		Where("chapter_id = ?", chapterID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

func (r *ExerciseRepository) ListByChapter(ctx context.Context, chapterID uint) ([]model.Exercise, error) {
	var exercises []model.Exercise
	err := r.DB.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("sort_order ASC, id ASC").
		Find(&exercises).Error
	return exercises, err
}

func (r *ExerciseRepository) FindByID(ctx context.Context, id uint) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.DB.WithContext(ctx).First(&exercise, id).Error
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (r *ExerciseRepository) FindInChapter(ctx context.Context, chapterID, exerciseID uint) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.DB.WithContext(ctx).
		Where("id = ? AND chapter_id = ?", exerciseID, chapterID).
		First(&exercise).Error
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (r *ExerciseRepository) Update(ctx context.Context, exercise *model.Exercise, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(exercise).Updates(updates).Error
}

func (r *ExerciseRepository) IDsByChapters(ctx context.Context, chapterIDs []uint) ([]uint, error) {
	var ids []uint
	if len(chapterIDs) == 0 {
		return ids, nil
	}
	err := r.DB.WithContext(ctx).Model(&model.Exercise{}).
		Where("chapter_id IN ?", chapterIDs).
		Pluck("id", &ids).Error
	return ids, err
}

package repository

import (
	"brainer_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// CascadeRepository deletes an entity together with everything that references it.
// Every public method runs in a single transaction: either the whole subtree goes or nothing does.
type CascadeRepository struct {
	DB *gorm.DB
}

func NewCascadeRepository(db *gorm.DB) *CascadeRepository {
	return &CascadeRepository{DB: db}
}

func (r *CascadeRepository) DeleteCourse(ctx context.Context, courseID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chapterIDs []uint
		if err := tx.Model(&model.Chapter{}).Where("course_id = ?", courseID).Pluck("id", &chapterIDs).Error; err != nil {
			return err
		}
		if err := deleteChapters(tx, chapterIDs); err != nil {
			return err
		}

		var partIDs []uint
		if err := tx.Model(&model.Part{}).Where("course_id = ?", courseID).Pluck("id", &partIDs).Error; err != nil {
			return err
		}
		if err := deleteParts(tx, partIDs); err != nil {
			return err
		}

		return tx.Delete(&model.Course{}, courseID).Error
	})
}

func (r *CascadeRepository) DeletePart(ctx context.Context, partID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteParts(tx, []uint{partID})
	})
}

func (r *CascadeRepository) DeleteChapter(ctx context.Context, chapterID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteChapters(tx, []uint{chapterID})
	})
}

func (r *CascadeRepository) DeleteExercise(ctx context.Context, exerciseID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteExercises(tx, []uint{exerciseID})
	})
}

// deleteParts 删除 Part 及其章节和复习资料
func deleteParts(tx *gorm.DB, partIDs []uint) error {
	if len(partIDs) == 0 {
		return nil
	}
	var chapterIDs []uint
	if err := tx.Model(&model.Chapter{}).Where("part_id IN ?", partIDs).Pluck("id", &chapterIDs).Error; err != nil {
		return err
	}
	if err := deleteChapters(tx, chapterIDs); err != nil {
		return err
	}
	if err := tx.Where("part_id IN ?", partIDs).Delete(&model.ReviewSheet{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", partIDs).Delete(&model.Part{}).Error
}

// deleteChapters 删除章节、章节下的练习、提交记录和进度
func deleteChapters(tx *gorm.DB, chapterIDs []uint) error {
	if len(chapterIDs) == 0 {
		return nil
	}
	var exerciseIDs []uint
	if err := tx.Model(&model.Exercise{}).Where("chapter_id IN ?", chapterIDs).Pluck("id", &exerciseIDs).Error; err != nil {
		return err
	}
	if err := deleteExercises(tx, exerciseIDs); err != nil {
		return err
	}
	if err := tx.Where("chapter_id IN ?", chapterIDs).Delete(&model.ChapterProgress{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", chapterIDs).Delete(&model.Chapter{}).Error
}

func deleteExercises(tx *gorm.DB, exerciseIDs []uint) error {
	if len(exerciseIDs) == 0 {
		return nil
	}
	if err := tx.Where("exercise_id IN ?", exerciseIDs).Delete(&model.ExerciseSubmission{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", exerciseIDs).Delete(&model.Exercise{}).Error
}

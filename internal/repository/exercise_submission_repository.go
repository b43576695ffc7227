package repository

import (
	"brainer_backend/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExerciseSubmissionRepository 处理练习提交记录的数据库操作
type ExerciseSubmissionRepository struct {
	DB *gorm.DB
}

// NewExerciseSubmissionRepository 创建新的练习提交记录仓库实例
func NewExerciseSubmissionRepository(db *gorm.DB) *ExerciseSubmissionRepository {
	return &ExerciseSubmissionRepository{DB: db}
}

func (r *ExerciseSubmissionRepository) WithTx(tx *gorm.DB) *ExerciseSubmissionRepository {
	return &ExerciseSubmissionRepository{DB: tx}
}

// Upsert 覆盖同一用户对同一练习的上一次提交
func (r *ExerciseSubmissionRepository) Upsert(ctx context.Context, submission *model.ExerciseSubmission) (*model.ExerciseSubmission, error) {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "exercise_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answer", "is_correct", "submitted_at"}),
	}).Create(submission).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserAndExercise(ctx, submission.UserID, submission.ExerciseID)
}

// FindByUserAndExercise 检查用户是否提交过特定练习
func (r *ExerciseSubmissionRepository) FindByUserAndExercise(ctx context.Context, userID, exerciseID uint) (*model.ExerciseSubmission, error) {
	var submission model.ExerciseSubmission
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListByUserAndExercises only returns rows whose exercise still exists.
func (r *ExerciseSubmissionRepository) ListByUserAndExercises(ctx context.Context, userID uint, exerciseIDs []uint) ([]model.ExerciseSubmission, error) {
	var submissions []model.ExerciseSubmission
	if len(exerciseIDs) == 0 {
		return submissions, nil
	}
	err := r.DB.WithContext(ctx).
		Joins("JOIN exercises ON exercises.id = exercise_submissions.exercise_id").
		Where("exercise_submissions.user_id = ? AND exercise_submissions.exercise_id IN ?", userID, exerciseIDs).
		Order("exercise_submissions.exercise_id ASC").
		Find(&submissions).Error
	return submissions, err
}

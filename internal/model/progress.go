package model

import (
	"time"
)

// ChapterProgress 用户对章节的显式完成标记，与练习正确率相互独立
// swagger:model ChapterProgress
type ChapterProgress struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:uq_progress_user_chapter,priority:1" json:"user_id"`
	ChapterID   uint       `gorm:"not null;index;uniqueIndex:uq_progress_user_chapter,priority:2" json:"chapter_id"`
	IsCompleted bool       `gorm:"not null" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (ChapterProgress) TableName() string {
	return "chapter_progress"
}

// ExerciseSubmission keeps the latest answer of a user to an exercise.
// IsCorrect is nil while a code answer waits for review.
// swagger:model ExerciseSubmission
type ExerciseSubmission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uq_submission_user_exercise,priority:1" json:"user_id"`
	ExerciseID  uint      `gorm:"not null;index;uniqueIndex:uq_submission_user_exercise,priority:2" json:"exercise_id"`
	Answer      Answer    `gorm:"not null" json:"answer" swaggertype:"object"`
	IsCorrect   *bool     `json:"is_correct"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
}

func (ExerciseSubmission) TableName() string {
	return "exercise_submissions"
}

// SubmissionResult is what a user sees of their own submission.
// swagger:model SubmissionResult
type SubmissionResult struct {
	ExerciseID  uint      `json:"exercise_id"`
	Answer      Answer    `json:"answer" swaggertype:"object"`
	IsCorrect   *bool     `json:"is_correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (s *ExerciseSubmission) Result() SubmissionResult {
	return SubmissionResult{
		ExerciseID:  s.ExerciseID,
		Answer:      s.Answer,
		IsCorrect:   s.IsCorrect,
		SubmittedAt: s.SubmittedAt,
	}
}

// swagger:model ChapterProgressView
type ChapterProgressView struct {
	ChapterID   uint               `json:"chapter_id"`
	IsCompleted bool               `json:"is_completed"`
	CompletedAt *time.Time         `json:"completed_at"`
	Submissions []SubmissionResult `json:"submissions"`
}

// swagger:model CourseProgress
type CourseProgress struct {
	CourseID             uint    `json:"course_id"`
	TotalChapters        int     `json:"total_chapters"`
	CompletedChapters    int     `json:"completed_chapters"`
	CompletionPercentage float64 `json:"completion_percentage"`
	TotalExercises       int     `json:"total_exercises"`
	AnsweredExercises    int     `json:"answered_exercises"`
	CorrectExercises     int     `json:"correct_exercises"`
	CompletedChapterIDs  []uint  `json:"completed_chapter_ids"`
}

package service

import (
	"brainer_backend/internal/model"
	"brainer_backend/internal/repository"
	"brainer_backend/pkg/logger"
	"brainer_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CodeEvaluator runs a code answer against the exercise tests.
type CodeEvaluator interface {
	Evaluate(ctx context.Context, content *model.CodeContent, answer string) (bool, error)
}

type SubmitExerciseRequest struct {
	Answer json.RawMessage `json:"answer" swaggertype:"object"`
	UserID *uint           `json:"user_id,omitempty"`
}

type ChapterProgressRequest struct {
	IsCompleted bool  `json:"is_completed"`
	UserID      *uint `json:"user_id,omitempty"`
}

// ProgressService derives completion facts from stored rows on every read. Nothing here is cached.
type ProgressService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	ChapterRepo    *repository.ChapterRepository
	ExerciseRepo   *repository.ExerciseRepository
	ProgressRepo   *repository.ProgressRepository
	SubmissionRepo *repository.ExerciseSubmissionRepository
	Evaluator      CodeEvaluator
}

func NewProgressService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	chapterRepo *repository.ChapterRepository,
	exerciseRepo *repository.ExerciseRepository,
	progressRepo *repository.ProgressRepository,
	submissionRepo *repository.ExerciseSubmissionRepository,
	evaluator CodeEvaluator,
) *ProgressService {
	return &ProgressService{
		DB:             db,
		CourseRepo:     courseRepo,
		ChapterRepo:    chapterRepo,
		ExerciseRepo:   exerciseRepo,
		ProgressRepo:   progressRepo,
		SubmissionRepo: submissionRepo,
		Evaluator:      evaluator,
	}
}

func (s *ProgressService) GetChapterProgress(ctx context.Context, userID, chapterID uint) (*model.ChapterProgressView, error) {
	if _, err := s.ChapterRepo.FindByID(ctx, chapterID); err != nil {
		return nil, notFound(err, "chapter", chapterID)
	}

	view := &model.ChapterProgressView{ChapterID: chapterID, Submissions: []model.SubmissionResult{}}
	progress, err := s.ProgressRepo.Find(ctx, userID, chapterID)
	switch {
	case err == nil:
		view.IsCompleted = progress.IsCompleted
		view.CompletedAt = progress.CompletedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	exerciseIDs, err := s.ExerciseRepo.IDsByChapters(ctx, []uint{chapterID})
	if err != nil {
		return nil, err
	}
	submissions, err := s.SubmissionRepo.ListByUserAndExercises(ctx, userID, exerciseIDs)
	if err != nil {
		return nil, err
	}
	for i := range submissions {
		view.Submissions = append(view.Submissions, submissions[i].Result())
	}
	return view, nil
}

// GetCourseProgress counts a chapter as completed only through its explicit completion mark.
func (s *ProgressService) GetCourseProgress(ctx context.Context, userID uint, courseSlug string) (*model.CourseProgress, error) {
	course, err := s.CourseRepo.FindBySlug(ctx, courseSlug)
	if err != nil {
		return nil, notFound(err, "course", courseSlug)
	}

	chapterIDs, err := s.ChapterRepo.IDsByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.ProgressRepo.CompletedChapterIDs(ctx, userID, chapterIDs)
	if err != nil {
		return nil, err
	}
	exerciseIDs, err := s.ExerciseRepo.IDsByChapters(ctx, chapterIDs)
	if err != nil {
		return nil, err
	}
	submissions, err := s.SubmissionRepo.ListByUserAndExercises(ctx, userID, exerciseIDs)
	if err != nil {
		return nil, err
	}

	result := &model.CourseProgress{
		CourseID:            course.ID,
		TotalChapters:       len(chapterIDs),
		CompletedChapters:   len(completed),
		TotalExercises:      len(exerciseIDs),
		AnsweredExercises:   len(submissions),
		CompletedChapterIDs: completed,
	}
	if result.CompletedChapterIDs == nil {
		result.CompletedChapterIDs = []uint{}
	}
	for _, sub := range submissions {
		if sub.IsCorrect != nil && *sub.IsCorrect {
			result.CorrectExercises++
		}
	}
	if result.TotalChapters > 0 {
		pct := float64(result.CompletedChapters) / float64(result.TotalChapters) * 100
		result.CompletionPercentage = math.Round(pct*10) / 10
	}
	return result, nil
}

// SubmitExercise grades the answer and overwrites any previous submission of the user.
func (s *ProgressService) SubmitExercise(ctx context.Context, userID, exerciseID uint, raw json.RawMessage) (*model.SubmissionResult, error) {
	exercise, err := s.ExerciseRepo.FindByID(ctx, exerciseID)
	if err != nil {
		return nil, notFound(err, "exercise", exerciseID)
	}
	content, err := exercise.DecodeContent()
	if err != nil {
		return nil, err
	}
	answer, err := model.ParseAnswer(content, raw)
	if err != nil {
		return nil, contentValidation(err)
	}

	isCorrect := s.grade(ctx, exercise, content, answer)

	stored, err := json.Marshal(answer)
	if err != nil {
		return nil, err
	}
	submission, err := s.SubmissionRepo.Upsert(ctx, &model.ExerciseSubmission{
		UserID:      userID,
		ExerciseID:  exerciseID,
		Answer:      model.Answer(stored),
		IsCorrect:   isCorrect,
		SubmittedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	monitoring.SubmissionCounter.WithLabelValues(string(exercise.Type), gradeLabel(isCorrect)).Inc()
	result := submission.Result()
	return &result, nil
}

// grade returns nil when the answer cannot be graded automatically.
func (s *ProgressService) grade(ctx context.Context, exercise *model.Exercise, content model.ExerciseContent, answer interface{}) *bool {
	var correct bool
	switch c := content.(type) {
	case *model.MultipleChoiceContent:
		correct = answer.(int) == c.CorrectIndex
	case *model.TrueFalseContent:
		correct = answer.(bool) == c.CorrectAnswer
	case *model.CodeContent:
		if s.Evaluator == nil {
			return nil
		}
		ok, err := s.Evaluator.Evaluate(ctx, c, answer.(string))
		if errors.Is(err, ErrNotGradable) {
			return nil
		}
		if err != nil {
			logger.Log.Warn("code evaluation failed, submission left ungraded",
				zap.Uint("exercise_id", exercise.ID),
				zap.Error(err),
			)
			return nil
		}
		correct = ok
	default:
		return nil
	}
	return &correct
}

func gradeLabel(isCorrect *bool) string {
	if isCorrect == nil {
		return "pending"
	}
	return strconv.FormatBool(*isCorrect)
}

// MarkChapterComplete is idempotent; marking false clears completed_at.
func (s *ProgressService) MarkChapterComplete(ctx context.Context, userID, chapterID uint, completed bool) (*model.ChapterProgress, error) {
	if _, err := s.ChapterRepo.FindByID(ctx, chapterID); err != nil {
		return nil, notFound(err, "chapter", chapterID)
	}
	progress, err := s.ProgressRepo.Upsert(ctx, userID, chapterID, completed)
	if err != nil {
		return nil, err
	}
	monitoring.ChapterCompletionCounter.WithLabelValues(strconv.FormatBool(completed)).Inc()
	return progress, nil
}

package service

import (
	"brainer_backend/internal/model"
	"brainer_backend/internal/repository"
	"brainer_backend/internal/util"
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExerciseInput struct {
	Title         string             `json:"title" binding:"required,max=255"`
	Type          model.ExerciseType `json:"type" binding:"required,oneof=multiple_choice true_false code"`
	Content       json.RawMessage    `json:"content" swaggertype:"object"`
	Image         *string            `json:"image" binding:"omitempty,max=500"`
	AutoGenerated bool               `json:"auto_generated"`
}

// ExercisePatch 修改 type 时必须同时提供匹配的 content
type ExercisePatch struct {
	Title         *string             `json:"title" binding:"omitempty,min=1,max=255"`
	Type          *model.ExerciseType `json:"type" binding:"omitempty,oneof=multiple_choice true_false code"`
	Content       json.RawMessage     `json:"content,omitempty" swaggertype:"object"`
	Image         *string             `json:"image,omitempty" binding:"omitempty,max=500"`
	AutoGenerated *bool               `json:"auto_generated,omitempty"`
}

type ExerciseService struct {
	DB           *gorm.DB
	ChapterRepo  *repository.ChapterRepository
	ExerciseRepo *repository.ExerciseRepository
	CascadeRepo  *repository.CascadeRepository
}

func NewExerciseService(
	db *gorm.DB,
	chapterRepo *repository.ChapterRepository,
	exerciseRepo *repository.ExerciseRepository,
	cascadeRepo *repository.CascadeRepository,
) *ExerciseService {
	return &ExerciseService{
		DB:           db,
		ChapterRepo:  chapterRepo,
		ExerciseRepo: exerciseRepo,
		CascadeRepo:  cascadeRepo,
	}
}

func (s *ExerciseService) ListExercises(ctx context.Context, chapterID uint) ([]model.Exercise, error) {
	if _, err := s.ChapterRepo.FindByID(ctx, chapterID); err != nil {
		return nil, notFound(err, "chapter", chapterID)
	}
	exercises, err := s.ExerciseRepo.ListByChapter(ctx, chapterID)
	if exercises == nil {
		exercises = []model.Exercise{}
	}
	return exercises, err
}

func (s *ExerciseService) GetExercise(ctx context.Context, chapterID, exerciseID uint) (*model.Exercise, error) {
	exercise, err := s.ExerciseRepo.FindInChapter(ctx, chapterID, exerciseID)
	if err != nil {
		return nil, notFound(err, "exercise", exerciseID)
	}
	return exercise, nil
}

// normalizeContent validates raw against t and returns the canonical JSON of the typed variant.
func normalizeContent(t model.ExerciseType, raw json.RawMessage) (datatypes.JSON, error) {
	content, err := model.ParseExerciseContent(t, raw)
	if err != nil {
		return nil, contentValidation(err)
	}
	canonical, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(canonical), nil
}

// CreateExercise appends the exercise after the last one of the chapter.
func (s *ExerciseService) CreateExercise(ctx context.Context, chapterID uint, in ExerciseInput) (*model.Exercise, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, util.ValidationError("invalid title", util.FieldError{Field: "title", Message: "field required"})
	}
	content, err := normalizeContent(in.Type, in.Content)
	if err != nil {
		return nil, err
	}

	var exercise *model.Exercise
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ChapterRepo.WithTx(tx).FindByID(ctx, chapterID); err != nil {
			return notFound(err, "chapter", chapterID)
		}
		repo := s.ExerciseRepo.WithTx(tx)
		order, err := repo.NextOrder(ctx, chapterID)
		if err != nil {
			return err
		}
		exercise = &model.Exercise{
			ChapterID:     chapterID,
			Order:         order,
			Title:         in.Title,
			Type:          in.Type,
			Content:       content,
			Image:         in.Image,
			AutoGenerated: in.AutoGenerated,
		}
		return conflictOnDuplicate(repo.Create(ctx, exercise), "exercise", "exercise order already taken, retry")
	})
	if err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *ExerciseService) UpdateExercise(ctx context.Context, chapterID, exerciseID uint, patch ExercisePatch) (*model.Exercise, error) {
	var updated *model.Exercise
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.ExerciseRepo.WithTx(tx)
		exercise, err := repo.FindInChapter(ctx, chapterID, exerciseID)
		if err != nil {
			return notFound(err, "exercise", exerciseID)
		}

		updates := map[string]interface{}{}
		hasContent := len(patch.Content) > 0 && string(patch.Content) != "null"
		targetType := exercise.Type
		if patch.Type != nil && *patch.Type != exercise.Type {
			if !hasContent {
				return util.ValidationError("content does not match exercise type", util.FieldError{
					Field:   "content",
					Message: "required when changing type",
				})
			}
			targetType = *patch.Type
			updates["type"] = targetType
		}
		if hasContent {
			content, err := normalizeContent(targetType, patch.Content)
			if err != nil {
				return err
			}
			updates["content"] = content
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return util.ValidationError("invalid title", util.FieldError{Field: "title", Message: "must not be empty"})
			}
			updates["title"] = title
		}
		if patch.Image != nil {
			updates["image"] = *patch.Image
		}
		if patch.AutoGenerated != nil {
			updates["auto_generated"] = *patch.AutoGenerated
		}

		if err := repo.Update(ctx, exercise, updates); err != nil {
			return err
		}
		updated, err = repo.FindByID(ctx, exercise.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteExercise also removes every submission made for it.
func (s *ExerciseService) DeleteExercise(ctx context.Context, chapterID, exerciseID uint) error {
	exercise, err := s.GetExercise(ctx, chapterID, exerciseID)
	if err != nil {
		return err
	}
	return s.CascadeRepo.DeleteExercise(ctx, exercise.ID)
}

package service

import (
	"brainer_backend/internal/model"
	"brainer_backend/internal/repository"
	"brainer_backend/internal/util"
	"brainer_backend/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReviewSheetInput struct {
	Content string `json:"content" binding:"required"`
}

const reviewSheetSystemPrompt = "You write concise revision sheets for students. " +
	"Answer in Markdown only, with one section per chapter, key definitions in bold and no preamble."

type ReviewSheetService struct {
	CourseRepo      *repository.CourseRepository
	PartRepo        *repository.PartRepository
	ChapterRepo     *repository.ChapterRepository
	ReviewSheetRepo *repository.ReviewSheetRepository
	AI              *AIService
}

func NewReviewSheetService(
	courseRepo *repository.CourseRepository,
	partRepo *repository.PartRepository,
	chapterRepo *repository.ChapterRepository,
	reviewSheetRepo *repository.ReviewSheetRepository,
	ai *AIService,
) *ReviewSheetService {
	return &ReviewSheetService{
		CourseRepo:      courseRepo,
		PartRepo:        partRepo,
		ChapterRepo:     chapterRepo,
		ReviewSheetRepo: reviewSheetRepo,
		AI:              ai,
	}
}

func (s *ReviewSheetService) findPart(ctx context.Context, partID uint) (*model.Part, error) {
	part, err := s.PartRepo.FindByID(ctx, partID)
	if err != nil {
		return nil, notFound(err, "part", partID)
	}
	return part, nil
}

func (s *ReviewSheetService) GetReviewSheet(ctx context.Context, partID uint) (*model.ReviewSheet, error) {
	if _, err := s.findPart(ctx, partID); err != nil {
		return nil, err
	}
	sheet, err := s.ReviewSheetRepo.FindByPart(ctx, partID)
	if err != nil {
		return nil, notFound(err, "review sheet", partID)
	}
	return sheet, nil
}

func (s *ReviewSheetService) ListReviewSheets(ctx context.Context, courseSlug string) ([]model.ReviewSheet, error) {
	course, err := s.CourseRepo.FindBySlug(ctx, courseSlug)
	if err != nil {
		return nil, notFound(err, "course", courseSlug)
	}
	partIDs, err := s.PartRepo.IDsByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	sheets, err := s.ReviewSheetRepo.ListByParts(ctx, partIDs)
	if sheets == nil {
		sheets = []model.ReviewSheet{}
	}
	return sheets, err
}

// UpsertReviewSheet inserts the sheet or replaces its content. created reports an insert.
func (s *ReviewSheetService) UpsertReviewSheet(ctx context.Context, partID uint, content string) (sheet *model.ReviewSheet, created bool, err error) {
	if strings.TrimSpace(content) == "" {
		return nil, false, util.ValidationError("invalid content", util.FieldError{Field: "content", Message: "field required"})
	}
	if _, err := s.findPart(ctx, partID); err != nil {
		return nil, false, err
	}
	_, err = s.ReviewSheetRepo.FindByPart(ctx, partID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created = true
	case err != nil:
		return nil, false, err
	}

	sheet, err = s.ReviewSheetRepo.Upsert(ctx, partID, content)
	if err != nil {
		return nil, false, err
	}
	return sheet, created, nil
}

func (s *ReviewSheetService) DeleteReviewSheet(ctx context.Context, partID uint) error {
	deleted, err := s.ReviewSheetRepo.DeleteByPart(ctx, partID)
	if err != nil {
		return err
	}
	if !deleted {
		return util.NotFoundError("review sheet", partID)
	}
	return nil
}

// GenerateReviewSheet builds the sheet of a part from its chapter synopses and upserts it.
// With an AI endpoint configured the synopses are rewritten by the model; otherwise they are
// assembled as-is. Chapters without a synopsis are skipped.
func (s *ReviewSheetService) GenerateReviewSheet(ctx context.Context, partID uint) (*model.ReviewSheet, error) {
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	chapters, err := s.ChapterRepo.ListByPart(ctx, partID)
	if err != nil {
		return nil, err
	}

	draft := AssembleReviewSheet(part, chapters)
	if draft == "" {
		return nil, util.ValidationError("part has no chapter synopses", util.FieldError{
			Field:   "synopsis",
			Message: "at least one chapter of the part needs a synopsis",
		})
	}

	content := draft
	if s.AI.Enabled() {
		prompt := "Rewrite the following chapter synopses into a single revision sheet:\n\n" + draft
		reply, err := s.AI.Chat(ctx, reviewSheetSystemPrompt, prompt)
		if err != nil {
			logger.Log.Warn("AI review sheet generation failed, using assembled synopses",
				zap.Uint("part_id", partID), zap.Error(err))
		} else if strings.TrimSpace(reply) != "" {
			content = reply
		}
	}

	return s.ReviewSheetRepo.Upsert(ctx, partID, content)
}

// AssembleReviewSheet renders the synopses of chapters as a Markdown document.
func AssembleReviewSheet(part *model.Part, chapters []model.Chapter) string {
	var b strings.Builder
	sections := 0
	for _, ch := range chapters {
		if ch.Synopsis == nil || strings.TrimSpace(*ch.Synopsis) == "" {
			continue
		}
		if sections == 0 {
			fmt.Fprintf(&b, "# %s\n", part.Title)
		}
		fmt.Fprintf(&b, "\n## %d. %s\n\n%s\n", ch.Order, ch.Title, strings.TrimSpace(*ch.Synopsis))
		sections++
	}
	return b.String()
}

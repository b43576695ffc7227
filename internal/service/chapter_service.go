package service

import (
	"brainer_backend/internal/model"
	"brainer_backend/internal/repository"
	"brainer_backend/internal/util"
	"brainer_backend/pkg/cache"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type ChapterInput struct {
	PartID   *uint   `json:"part_id"`
	Order    int     `json:"order"`
	Title    string  `json:"title" binding:"required,max=255"`
	Slug     string  `json:"slug" binding:"required,slug,max=191"`
	Content  *string `json:"content"`
	Synopsis *string `json:"synopsis"`
	Image    *string `json:"image" binding:"omitempty,max=500"`
}

// ChapterPatch 部分更新：只提供 content 时不会清空 title/slug/order。
// part_id 只能改为另一个 Part，不能通过 PATCH 置空。
type ChapterPatch struct {
	PartID   *uint   `json:"part_id"`
	Order    *int    `json:"order"`
	Title    *string `json:"title" binding:"omitempty,min=1,max=255"`
	Slug     *string `json:"slug" binding:"omitempty,slug,max=191"`
	Content  *string `json:"content"`
	Synopsis *string `json:"synopsis"`
	Image    *string `json:"image" binding:"omitempty,max=500"`
}

type ChapterService struct {
	DB          *gorm.DB
	CourseRepo  *repository.CourseRepository
	PartRepo    *repository.PartRepository
	ChapterRepo *repository.ChapterRepository
	CascadeRepo *repository.CascadeRepository
	Cache       cache.Store
}

func NewChapterService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	partRepo *repository.PartRepository,
	chapterRepo *repository.ChapterRepository,
	cascadeRepo *repository.CascadeRepository,
	store cache.Store,
) *ChapterService {
	if store == nil {
		store = cache.NopStore{}
	}
	return &ChapterService{
		DB:          db,
		CourseRepo:  courseRepo,
		PartRepo:    partRepo,
		ChapterRepo: chapterRepo,
		CascadeRepo: cascadeRepo,
		Cache:       store,
	}
}

// ListChapters returns the chapters of a course in reading order, without content.
func (s *ChapterService) ListChapters(ctx context.Context, courseSlug string) ([]model.ChapterListItem, error) {
	return cachedRead(ctx, s.Cache, cache.ChaptersKey(courseSlug), func() ([]model.ChapterListItem, error) {
		course, err := s.CourseRepo.FindBySlug(ctx, courseSlug)
		if err != nil {
			return nil, notFound(err, "course", courseSlug)
		}
		chapters, err := s.ChapterRepo.ListByCourse(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		items := make([]model.ChapterListItem, 0, len(chapters))
		for i := range chapters {
			items = append(items, chapters[i].ListItem())
		}
		return items, nil
	})
}

// GetChapter returns the full chapter with prev/next links.
func (s *ChapterService) GetChapter(ctx context.Context, courseSlug, chapterSlug string) (*model.ChapterDetail, error) {
	return cachedRead(ctx, s.Cache, cache.ChapterKey(courseSlug, chapterSlug), func() (*model.ChapterDetail, error) {
		course, err := s.CourseRepo.FindBySlug(ctx, courseSlug)
		if err != nil {
			return nil, notFound(err, "course", courseSlug)
		}
		chapter, err := s.ChapterRepo.FindBySlug(ctx, course.ID, chapterSlug)
		if err != nil {
			return nil, notFound(err, "chapter", chapterSlug)
		}
		prev, next, err := s.ChapterRepo.Neighbors(ctx, chapter)
		if err != nil {
			return nil, err
		}
		return &model.ChapterDetail{Chapter: *chapter, Prev: prev, Next: next}, nil
	})
}

func (s *ChapterService) GetChapterByID(ctx context.Context, id uint) (*model.Chapter, error) {
	chapter, err := s.ChapterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "chapter", id)
	}
	return chapter, nil
}

func chapterSlugConflict(slug string) error {
	return util.ConflictError("chapter", fmt.Sprintf("Chapter with slug '%s' already exists in this course", slug))
}

func chapterOrderConflict(order int) error {
	return util.ConflictError("chapter", fmt.Sprintf("Chapter with order %d already exists in this course", order))
}

// checkPart verifies the part belongs to the chapter's course.
func checkPart(ctx context.Context, parts *repository.PartRepository, courseID, partID uint) error {
	if _, err := parts.FindInCourse(ctx, courseID, partID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ValidationError("invalid part_id", util.FieldError{
				Field:   "part_id",
				Message: fmt.Sprintf("part %d does not belong to this course", partID),
			})
		}
		return err
	}
	return nil
}

func (s *ChapterService) CreateChapter(ctx context.Context, courseSlug string, in ChapterInput) (*model.Chapter, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, util.ValidationError("invalid title", util.FieldError{Field: "title", Message: "field required"})
	}
	if err := validateSlug("slug", in.Slug); err != nil {
		return nil, err
	}

	var chapter *model.Chapter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.CourseRepo.WithTx(tx).FindBySlug(ctx, courseSlug)
		if err != nil {
			return notFound(err, "course", courseSlug)
		}
		if in.PartID != nil {
			if err := checkPart(ctx, s.PartRepo.WithTx(tx), course.ID, *in.PartID); err != nil {
				return err
			}
		}

		repo := s.ChapterRepo.WithTx(tx)
		if taken, err := repo.SlugTaken(ctx, course.ID, in.Slug, 0); err != nil {
			return err
		} else if taken {
			return chapterSlugConflict(in.Slug)
		}
		if taken, err := repo.OrderTaken(ctx, course.ID, in.Order, 0); err != nil {
			return err
		} else if taken {
			return chapterOrderConflict(in.Order)
		}

		chapter = &model.Chapter{
			CourseID: course.ID,
			PartID:   in.PartID,
			Order:    in.Order,
			Title:    in.Title,
			Slug:     in.Slug,
			Content:  in.Content,
			Synopsis: in.Synopsis,
			Image:    in.Image,
		}
		return conflictOnDuplicate(repo.Create(ctx, chapter), "chapter", "chapter slug or order already exists in this course")
	})
	if err != nil {
		return nil, err
	}

	invalidateCourses(ctx, s.Cache, false, courseSlug)
	return chapter, nil
}

// UpdateChapter applies a partial patch; absent fields are left untouched.
func (s *ChapterService) UpdateChapter(ctx context.Context, courseSlug, chapterSlug string, patch ChapterPatch) (*model.Chapter, error) {
	var updated *model.Chapter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.CourseRepo.WithTx(tx).FindBySlug(ctx, courseSlug)
		if err != nil {
			return notFound(err, "course", courseSlug)
		}
		repo := s.ChapterRepo.WithTx(tx)
		chapter, err := repo.FindBySlug(ctx, course.ID, chapterSlug)
		if err != nil {
			return notFound(err, "chapter", chapterSlug)
		}

		updates := map[string]interface{}{}
		if patch.PartID != nil && (chapter.PartID == nil || *chapter.PartID != *patch.PartID) {
			if err := checkPart(ctx, s.PartRepo.WithTx(tx), course.ID, *patch.PartID); err != nil {
				return err
			}
			updates["part_id"] = *patch.PartID
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return util.ValidationError("invalid title", util.FieldError{Field: "title", Message: "must not be empty"})
			}
			updates["title"] = title
		}
		if patch.Slug != nil && *patch.Slug != chapter.Slug {
			if err := validateSlug("slug", *patch.Slug); err != nil {
				return err
			}
			if taken, err := repo.SlugTaken(ctx, course.ID, *patch.Slug, chapter.ID); err != nil {
				return err
			} else if taken {
				return chapterSlugConflict(*patch.Slug)
			}
			updates["slug"] = *patch.Slug
		}
		if patch.Order != nil && *patch.Order != chapter.Order {
			if taken, err := repo.OrderTaken(ctx, course.ID, *patch.Order, chapter.ID); err != nil {
				return err
			} else if taken {
				return chapterOrderConflict(*patch.Order)
			}
			updates["sort_order"] = *patch.Order
		}
		if patch.Content != nil {
			updates["content"] = *patch.Content
		}
		if patch.Synopsis != nil {
			updates["synopsis"] = *patch.Synopsis
		}
		if patch.Image != nil {
			updates["image"] = *patch.Image
		}

		if err := repo.Update(ctx, chapter, updates); err != nil {
			return conflictOnDuplicate(err, "chapter", "chapter slug or order already exists in this course")
		}
		updated, err = repo.FindByID(ctx, chapter.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateCourses(ctx, s.Cache, false, courseSlug)
	return updated, nil
}

// DeleteChapter removes the chapter with its exercises, their submissions and the chapter's progress rows.
func (s *ChapterService) DeleteChapter(ctx context.Context, courseSlug, chapterSlug string) error {
	course, err := s.CourseRepo.FindBySlug(ctx, courseSlug)
	if err != nil {
		return notFound(err, "course", courseSlug)
	}
	chapter, err := s.ChapterRepo.FindBySlug(ctx, course.ID, chapterSlug)
	if err != nil {
		return notFound(err, "chapter", chapterSlug)
	}
	if err := s.CascadeRepo.DeleteChapter(ctx, chapter.ID); err != nil {
		return err
	}
	invalidateCourses(ctx, s.Cache, false, courseSlug)
	return nil
}

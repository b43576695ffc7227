package service

import (
	"brainer_backend/internal/model"
	"brainer_backend/internal/repository"
	"brainer_backend/internal/util"
	"brainer_backend/pkg/cache"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type CourseInput struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Slug        string  `json:"slug" binding:"required,slug,max=191"`
	Description *string `json:"description"`
	Image       *string `json:"image" binding:"omitempty,max=500"`
}

// CoursePatch 部分更新，nil 字段保持不变
type CoursePatch struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Slug        *string `json:"slug" binding:"omitempty,slug,max=191"`
	Description *string `json:"description"`
	Image       *string `json:"image" binding:"omitempty,max=500"`
}

type PartInput struct {
	Order       int     `json:"order"`
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
}

type PartPatch struct {
	Order       *int    `json:"order"`
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

// CourseService owns courses and their parts.
type CourseService struct {
	DB          *gorm.DB
	CourseRepo  *repository.CourseRepository
	PartRepo    *repository.PartRepository
	CascadeRepo *repository.CascadeRepository
	Cache       cache.Store
}

func NewCourseService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	partRepo *repository.PartRepository,
	cascadeRepo *repository.CascadeRepository,
	store cache.Store,
) *CourseService {
	if store == nil {
		store = cache.NopStore{}
	}
	return &CourseService{
		DB:          db,
		CourseRepo:  courseRepo,
		PartRepo:    partRepo,
		CascadeRepo: cascadeRepo,
		Cache:       store,
	}
}

func (s *CourseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return cachedRead(ctx, s.Cache, cache.CoursesKey(), func() ([]model.Course, error) {
		courses, err := s.CourseRepo.List(ctx)
		if courses == nil {
			courses = []model.Course{}
		}
		return courses, err
	})
}

func (s *CourseService) GetCourse(ctx context.Context, slug string) (*model.Course, error) {
	return cachedRead(ctx, s.Cache, cache.CourseKey(slug), func() (*model.Course, error) {
		return s.findCourse(ctx, slug)
	})
}

func (s *CourseService) findCourse(ctx context.Context, slug string) (*model.Course, error) {
	course, err := s.CourseRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "course", slug)
	}
	return course, nil
}

func courseSlugConflict(slug string) error {
	return util.ConflictError("course", fmt.Sprintf("Course with slug '%s' already exists", slug))
}

func (s *CourseService) CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, util.ValidationError("invalid title", util.FieldError{Field: "title", Message: "field required"})
	}
	if err := validateSlug("slug", in.Slug); err != nil {
		return nil, err
	}

	course := &model.Course{
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.CourseRepo.WithTx(tx)
		taken, err := repo.SlugTaken(ctx, in.Slug, 0)
		if err != nil {
			return err
		}
		if taken {
			return courseSlugConflict(in.Slug)
		}
		return conflictOnDuplicate(repo.Create(ctx, course), "course", courseSlugConflict(in.Slug).Error())
	})
	if err != nil {
		return nil, err
	}

	invalidateCourses(ctx, s.Cache, true, course.Slug)
	return course, nil
}

// UpdateCourse applies patch to the course at slug. A slug change is re-checked for uniqueness.
func (s *CourseService) UpdateCourse(ctx context.Context, slug string, patch CoursePatch) (*model.Course, error) {
	var updated *model.Course
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.CourseRepo.WithTx(tx)
		course, err := repo.FindBySlug(ctx, slug)
		if err != nil {
			return notFound(err, "course", slug)
		}

		updates := map[string]interface{}{}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return util.ValidationError("invalid title", util.FieldError{Field: "title", Message: "must not be empty"})
			}
			updates["title"] = title
		}
		if patch.Slug != nil && *patch.Slug != course.Slug {
			if err := validateSlug("slug", *patch.Slug); err != nil {
				return err
			}
			taken, err := repo.SlugTaken(ctx, *patch.Slug, course.ID)
			if err != nil {
				return err
			}
			if taken {
				return courseSlugConflict(*patch.Slug)
			}
			updates["slug"] = *patch.Slug
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Image != nil {
			updates["image"] = *patch.Image
		}

		if err := repo.Update(ctx, course, updates); err != nil {
			return conflictOnDuplicate(err, "course", "course slug already exists")
		}
		updated, err = repo.FindByID(ctx, course.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateCourses(ctx, s.Cache, true, slug, updated.Slug)
	return updated, nil
}

// DeleteCourse removes the course with its parts, chapters, exercises, progress, submissions and review sheets.
func (s *CourseService) DeleteCourse(ctx context.Context, slug string) error {
	course, err := s.findCourse(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.CascadeRepo.DeleteCourse(ctx, course.ID); err != nil {
		return err
	}
	invalidateCourses(ctx, s.Cache, true, slug)
	return nil
}

func (s *CourseService) ListParts(ctx context.Context, slug string) ([]model.Part, error) {
	return cachedRead(ctx, s.Cache, cache.PartsKey(slug), func() ([]model.Part, error) {
		course, err := s.findCourse(ctx, slug)
		if err != nil {
			return nil, err
		}
		parts, err := s.PartRepo.ListByCourse(ctx, course.ID)
		if parts == nil {
			parts = []model.Part{}
		}
		return parts, err
	})
}

func (s *CourseService) GetPart(ctx context.Context, slug string, partID uint) (*model.Part, error) {
	course, err := s.findCourse(ctx, slug)
	if err != nil {
		return nil, err
	}
	part, err := s.PartRepo.FindInCourse(ctx, course.ID, partID)
	if err != nil {
		return nil, notFound(err, "part", partID)
	}
	return part, nil
}

func partOrderConflict(order int) error {
	return util.ConflictError("part", fmt.Sprintf("Part with order %d already exists in this course", order))
}

func (s *CourseService) CreatePart(ctx context.Context, slug string, in PartInput) (*model.Part, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, util.ValidationError("invalid title", util.FieldError{Field: "title", Message: "field required"})
	}

	var part *model.Part
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.CourseRepo.WithTx(tx).FindBySlug(ctx, slug)
		if err != nil {
			return notFound(err, "course", slug)
		}
		repo := s.PartRepo.WithTx(tx)
		taken, err := repo.OrderTaken(ctx, course.ID, in.Order, 0)
		if err != nil {
			return err
		}
		if taken {
			return partOrderConflict(in.Order)
		}
		part = &model.Part{
			CourseID:    course.ID,
			Order:       in.Order,
			Title:       in.Title,
			Description: in.Description,
		}
		return conflictOnDuplicate(repo.Create(ctx, part), "part", partOrderConflict(in.Order).Error())
	})
	if err != nil {
		return nil, err
	}

	invalidateCourses(ctx, s.Cache, false, slug)
	return part, nil
}

// UpdatePart never renumbers siblings; an order already used by another part is a conflict.
func (s *CourseService) UpdatePart(ctx context.Context, slug string, partID uint, patch PartPatch) (*model.Part, error) {
	var updated *model.Part
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.CourseRepo.WithTx(tx).FindBySlug(ctx, slug)
		if err != nil {
			return notFound(err, "course", slug)
		}
		repo := s.PartRepo.WithTx(tx)
		part, err := repo.FindInCourse(ctx, course.ID, partID)
		if err != nil {
			return notFound(err, "part", partID)
		}

		updates := map[string]interface{}{}
		if patch.Order != nil && *patch.Order != part.Order {
			taken, err := repo.OrderTaken(ctx, course.ID, *patch.Order, part.ID)
			if err != nil {
				return err
			}
			if taken {
				return partOrderConflict(*patch.Order)
			}
			updates["sort_order"] = *patch.Order
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return util.ValidationError("invalid title", util.FieldError{Field: "title", Message: "must not be empty"})
			}
			updates["title"] = title
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}

		if err := repo.Update(ctx, part, updates); err != nil {
			return conflictOnDuplicate(err, "part", "part order already exists in this course")
		}
		updated, err = repo.FindByID(ctx, part.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateCourses(ctx, s.Cache, false, slug)
	return updated, nil
}

// DeletePart removes the part, its chapters (with their exercises, submissions and progress) and its review sheet.
func (s *CourseService) DeletePart(ctx context.Context, slug string, partID uint) error {
	part, err := s.GetPart(ctx, slug, partID)
	if err != nil {
		return err
	}
	if err := s.CascadeRepo.DeletePart(ctx, part.ID); err != nil {
		return err
	}
	invalidateCourses(ctx, s.Cache, false, slug)
	return nil
}

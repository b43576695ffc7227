package repository

import (
	"brainer_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// SlugTaken reports whether another course (not excludeID) already uses slug.
func (r *CourseRepository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Course{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Update 仅更新 updates 中出现的列
func (r *CourseRepository) Update(ctx context.Context, course *model.Course, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(course).Updates(updates).Error
}

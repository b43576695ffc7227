package repository

import (
	"brainer_backend/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ChapterRepository struct {
	DB *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{DB: db}
}

func (r *ChapterRepository) WithTx(tx *gorm.DB) *ChapterRepository {
	return &ChapterRepository{DB: tx}
}

func (r *ChapterRepository) Create(ctx context.Context, chapter *model.Chapter) error {
	return r.DB.WithContext(ctx).Create(chapter).Error
}

// ListByCourse 列表查询不加载 content 列
func (r *ChapterRepository) ListByCourse(ctx context.Context, courseID uint) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.WithContext(ctx).
		Omit("content").
		Where("course_id = ?", courseID).
		Order("sort_order ASC, id ASC").
		Find(&chapters).Error
	return chapters, err
}

// ListByPart returns the chapters of a part with synopses, in reading order.
func (r *ChapterRepository) ListByPart(ctx context.Context, partID uint) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.WithContext(ctx).
		Omit("content").
		Where("part_id = ?", partID).
		Order("sort_order ASC, id ASC").
		Find(&chapters).Error
	return chapters, err
}

func (r *ChapterRepository) FindByID(ctx context.Context, id uint) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.WithContext(ctx).First(&chapter, id).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *ChapterRepository) FindBySlug(ctx context.Context, courseID uint, slug string) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.WithContext(ctx).
		Where("course_id = ? AND slug = ?", courseID, slug).
		First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// Neighbors 返回课程内按 order 排列的前一章和后一章，不存在时为 nil
func (r *ChapterRepository) Neighbors(ctx context.Context, chapter *model.Chapter) (prev, next *model.ChapterLink, err error) {
	db := r.DB.WithContext(ctx).Model(&model.Chapter{}).Select("id", "slug", "title", "sort_order")

	var p model.Chapter
	err = db.Session(&gorm.Session{}).
		Where("course_id = ? AND (sort_order < ? OR (sort_order = ? AND id < ?))",
			chapter.CourseID, chapter.Order, chapter.Order, chapter.ID).
		Order("sort_order DESC, id DESC").
		First(&p).Error
	if err == nil {
		prev = &model.ChapterLink{ID: p.ID, Slug: p.Slug, Title: p.Title, Order: p.Order}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	var n model.Chapter
	err = db.Session(&gorm.Session{}).
		Where("course_id = ? AND (sort_order > ? OR (sort_order = ? AND id > ?))",
			chapter.CourseID, chapter.Order, chapter.Order, chapter.ID).
		Order("sort_order ASC, id ASC").
		First(&n).Error
	if err == nil {
		next = &model.ChapterLink{ID: n.ID, Slug: n.Slug, Title: n.Title, Order: n.Order}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	return prev, next, nil
}

func (r *ChapterRepository) SlugTaken(ctx context.Context, courseID uint, slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Chapter{}).
		Where("course_id = ? AND slug = ? AND id <> ?", courseID, slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *ChapterRepository) OrderTaken(ctx context.Context, courseID uint, order int, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Chapter{}).
		Where("course_id = ? AND sort_order = ? AND id <> ?", courseID, order, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *ChapterRepository) Update(ctx context.Context, chapter *model.Chapter, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(chapter).Updates(updates).Error
}

func (r *ChapterRepository) IDsByCourse(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Chapter{}).
		Where("course_id = ?", courseID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ChapterRepository) IDsByParts(ctx context.Context, partIDs []uint) ([]uint, error) {
	var ids []uint
	if len(partIDs) == 0 {
		return ids, nil
	}
	err := r.DB.WithContext(ctx).Model(&model.Chapter{}).
		Where("part_id IN ?", partIDs).
		Pluck("id", &ids).Error
	return ids, err
}

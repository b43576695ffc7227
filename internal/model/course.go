package model

// swagger:model Course
type Course struct {
	BaseModel
	Slug        string  `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
	Image       *string `gorm:"size:500" json:"image"`
}

func (Course) TableName() string {
	return "courses"
}

// Part groups chapters inside a course and owns at most one review sheet.
// swagger:model Part
type Part struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID    uint    `gorm:"not null;uniqueIndex:uq_part_course_order,priority:1" json:"course_id"`
	Order       int     `gorm:"column:sort_order;not null;uniqueIndex:uq_part_course_order,priority:2" json:"order"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
}

func (Part) TableName() string {
	return "parts"
}

// Chapter 章节。Order 在课程内唯一，决定跨 Part 的前后导航顺序。
// swagger:model Chapter
type Chapter struct {
	BaseModel
	CourseID uint    `gorm:"not null;uniqueIndex:uq_chapter_course_order,priority:1;uniqueIndex:uq_chapter_course_slug,priority:1" json:"course_id"`
	PartID   *uint   `gorm:"index" json:"part_id"`
	Order    int     `gorm:"column:sort_order;not null;uniqueIndex:uq_chapter_course_order,priority:2" json:"order"`
	Title    string  `gorm:"size:255;not null" json:"title"`
	Slug     string  `gorm:"size:191;not null;uniqueIndex:uq_chapter_course_slug,priority:2" json:"slug"`
	Content  *string `gorm:"size:16777216" json:"content"`
	Synopsis *string `gorm:"type:text" json:"synopsis"`
	Image    *string `gorm:"size:500" json:"image"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// ChapterListItem is the list projection of a chapter; it never carries content.
// swagger:model ChapterListItem
type ChapterListItem struct {
	ID       uint    `json:"id"`
	CourseID uint    `json:"course_id"`
	PartID   *uint   `json:"part_id"`
	Order    int     `json:"order"`
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	Synopsis *string `json:"synopsis"`
	Image    *string `json:"image"`
}

func (c *Chapter) ListItem() ChapterListItem {
	return ChapterListItem{
		ID:       c.ID,
		CourseID: c.CourseID,
		PartID:   c.PartID,
		Order:    c.Order,
		Title:    c.Title,
		Slug:     c.Slug,
		Synopsis: c.Synopsis,
		Image:    c.Image,
	}
}

// ChapterDetail adds prev/next navigation, which follows chapter order across parts.
// swagger:model ChapterDetail
type ChapterDetail struct {
	Chapter
	Prev *ChapterLink `json:"prev"`
	Next *ChapterLink `json:"next"`
}

type ChapterLink struct {
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

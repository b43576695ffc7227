package model

import (
	"gorm.io/datatypes"
)

type ExerciseType string

const (
	ExerciseMultipleChoice ExerciseType = "multiple_choice"
	ExerciseTrueFalse      ExerciseType = "true_false"
	ExerciseCode           ExerciseType = "code"
)

func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseMultipleChoice, ExerciseTrueFalse, ExerciseCode:
		return true
	}
	return false
}

// Exercise 练习题。Content 的结构由 Type 决定，写入前经过 ParseExerciseContent 校验。
// swagger:model Exercise
type Exercise struct {
	BaseModel
	ChapterID     uint           `gorm:"not null;uniqueIndex:uq_exercise_chapter_order,priority:1" json:"chapter_id"`
	Order         int            `gorm:"column:sort_order;not null;uniqueIndex:uq_exercise_chapter_order,priority:2" json:"order"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Type          ExerciseType   `gorm:"size:32;not null" json:"type"`
	Content       datatypes.JSON `gorm:"not null" json:"content" swaggertype:"object"`
	Image         *string        `gorm:"size:500" json:"image"`
	AutoGenerated bool           `gorm:"not null" json:"auto_generated"`
}

func (Exercise) TableName() string {
	return "exercises"
}

// DecodeContent returns the typed variant stored in Content.
func (e *Exercise) DecodeContent() (ExerciseContent, error) {
	return ParseExerciseContent(e.Type, e.Content)
}

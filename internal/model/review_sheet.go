package model

// ReviewSheet is the Markdown revision document of a part. One per part.
// swagger:model ReviewSheet
type ReviewSheet struct {
	BaseModel
	PartID  uint   `gorm:"not null;uniqueIndex" json:"part_id"`
	Content string `gorm:"size:16777216;not null" json:"content"`
}

func (ReviewSheet) TableName() string {
	return "review_sheets"
}
